// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

// Package resolve maps loosely-specified free-text production names to the
// correct remote partnership record when no reliable key exists.
//
// Resolution runs a cascade of progressively looser search strategies, each
// attempted only after the previous yields zero candidates:
//
//  1. exact-match query on the normalized name
//  2. token-containment query on the full name
//  3. for multi-word names, an OR-combined containment query across every
//     significant word
//  4. a broad fetch of the most recently modified partnerships, filtered
//     client-side by substring containment, then by word-overlap ratio
//
// Candidates are scored deterministically (see score.go) with a stable
// tie-break on cascade-discovery order, so a fixed candidate pool and input
// always produce the same winner.
//
// A TTL-bound cache fronts the cascade. Cached payloads pass a corruption
// check before being served: a repairable entry is scrubbed in place and
// re-stored, an invalid one forces re-resolution. Staleness is wall-clock
// TTL only.
package resolve
