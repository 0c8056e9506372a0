// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

// Package events consumes CRM change notifications and feeds them to the
// cache synchronizer in batches.
//
// The event-source contract delivers {recordId, changedProperties} messages
// with no ordering guarantee across distinct record IDs; per-record order
// is assumed monotonic. Messages arrive over Watermill: NATS JetStream in
// production, an in-process Go channel pub/sub everywhere else (and in
// tests).
//
// The consumer accumulates messages into a batch, flushing on size or on a
// timer, and acknowledges a message only after the batch containing it has
// been reconciled into the snapshot. A failed reconciliation nacks the
// whole batch for redelivery; reconciliation is idempotent, so redelivery
// is safe.
package events
