// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package crm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// TokenBucket meters outbound CRM requests. One bucket is shared by every
// caller of a Client, no matter how concurrently calls are dispatched.
//
// Credits regenerate at refillPerSec up to capacity, computed from elapsed
// wall-clock time by the underlying x/time/rate limiter. Acquire blocks
// until a credit is available or the context expires, so no caller ever
// spins indefinitely: the per-call budget carried by the context bounds
// the wait.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a bucket with the given capacity and refill rate.
// Non-positive arguments fall back to a conservative 4 credits at 4/sec,
// matching the remote API's documented burst allowance.
func NewTokenBucket(capacity int, refillPerSec float64) *TokenBucket {
	if capacity <= 0 {
		capacity = 4
	}
	if refillPerSec <= 0 {
		refillPerSec = 4
	}
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Limit(refillPerSec), capacity),
	}
}

// Acquire draws one credit, waiting as long as the context allows.
func (b *TokenBucket) Acquire(ctx context.Context) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("acquire rate limit credit: %w", err)
	}
	return nil
}

// TryAcquire draws one credit without waiting. Used by tests and by the
// health endpoint to report limiter pressure.
func (b *TokenBucket) TryAcquire() bool {
	return b.limiter.Allow()
}
