// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

// Package sync maintains the local brand cache: a snapshot whose membership
// must always equal the set of remote CRM records satisfying the membership
// predicate.
//
// Two mechanisms keep it fresh:
//
//   - Full rebuild: a paginated fetch of every matching remote record,
//     replacing the snapshot wholesale and atomically.
//   - Incremental reconciliation: batches of partial-change notifications
//     are merged over the cached records; the predicate is re-evaluated on
//     each merged record to decide insert, update, remove, or no-op.
//
// A no-op batch leaves both the snapshot and its generation timestamp
// untouched, so applying the same batch twice equals applying it once.
//
// Concurrent rebuilds are not mutually excluded: snapshot replacement is
// atomic and last-writer-wins, an accepted lost-update risk under true
// concurrency.
package sync
