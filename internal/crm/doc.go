// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

// Package crm provides the rate-limited, retrying client for the external
// relationship-management store's search API.
//
// Every outbound request draws a credit from a shared token bucket before it
// is dispatched, regardless of how many goroutines issue calls concurrently.
// Responses are classified into a small error taxonomy:
//
//   - 2xx: parsed payload
//   - 401: AuthenticationError, non-retryable, fails immediately
//   - 429: RateLimitedError, retried with the server's wait hint when present,
//     exponential backoff otherwise
//   - other 4xx/5xx: TransientRemoteError, retried once after a fixed delay
//
// Read-only search calls that exhaust their retries degrade to an empty
// result so downstream aggregation stays total; they never surface the
// remote failure as an error. A circuit breaker (sony/gobreaker) sits in
// front of the HTTP layer and short-circuits calls while the remote is
// known-unhealthy; an open breaker is classified like an exhausted retry.
package crm
