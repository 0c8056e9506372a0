// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package crm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetriesFor(t *testing.T) {
	p := DefaultRetryPolicy()

	tests := []struct {
		kind ErrorKind
		want int
	}{
		{KindRateLimited, 2},
		{KindTransient, 1},
		{KindAuthentication, 0},
		{KindNotFound, 0},
		{KindUnavailable, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.RetriesFor(tt.kind), "kind %s", tt.kind)
	}
}

func TestDelayBackoffAndHint(t *testing.T) {
	p := RetryPolicy{
		MaxRateLimitRetries: 2,
		BaseDelay:           time.Second,
		MaxDelay:            5 * time.Second,
		TransientDelay:      2 * time.Second,
	}

	// Exponential backoff without a hint.
	assert.Equal(t, time.Second, p.Delay(KindRateLimited, 0, 0))
	assert.Equal(t, 2*time.Second, p.Delay(KindRateLimited, 1, 0))
	assert.Equal(t, 4*time.Second, p.Delay(KindRateLimited, 2, 0))
	// Capped at MaxDelay.
	assert.Equal(t, 5*time.Second, p.Delay(KindRateLimited, 5, 0))

	// A server hint wins over backoff but still respects the cap.
	assert.Equal(t, 3*time.Second, p.Delay(KindRateLimited, 0, 3*time.Second))
	assert.Equal(t, 5*time.Second, p.Delay(KindRateLimited, 0, time.Minute))

	// Transient retries use the fixed delay regardless of hint.
	assert.Equal(t, 2*time.Second, p.Delay(KindTransient, 0, 3*time.Second))
}

func TestTokenBucketBurstAndRefill(t *testing.T) {
	bucket := NewTokenBucket(2, 100)

	assert.True(t, bucket.TryAcquire())
	assert.True(t, bucket.TryAcquire())
	assert.False(t, bucket.TryAcquire(), "capacity exhausted")

	// At 100/sec a credit regenerates within ~10ms.
	require.Eventually(t, bucket.TryAcquire, time.Second, time.Millisecond)
}

func TestTokenBucketAcquireRespectsContext(t *testing.T) {
	bucket := NewTokenBucket(1, 0.001)
	require.NoError(t, bucket.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := bucket.Acquire(ctx)
	require.Error(t, err)
}

func TestTokenBucketDefaults(t *testing.T) {
	bucket := NewTokenBucket(0, 0)
	for i := 0; i < 4; i++ {
		assert.True(t, bucket.TryAcquire(), "default capacity allows a burst of 4")
	}
	assert.False(t, bucket.TryAcquire())
}

func TestErrorFormatting(t *testing.T) {
	err := newError(KindRateLimited, 429, "rate limit exceeded")
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate_limited")

	bare := &Error{Kind: KindTransient, Message: "boom"}
	assert.Equal(t, "transient_remote_error: boom", bare.Error())

	assert.Equal(t, ErrorKind(""), KindOf(assert.AnError))
}
