// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package crm

import (
	"time"
)

// RetryPolicy is the single declarative retry policy shared by every remote
// call site. It replaces per-call-site retry counters and inline sleeps:
// the loop in Client.do consults the policy and nothing else.
type RetryPolicy struct {
	// MaxRateLimitRetries is the retry budget for HTTP 429 responses.
	MaxRateLimitRetries int

	// BaseDelay seeds the exponential backoff for rate-limited retries
	// (base * 2^attempt). An explicit server wait hint overrides it.
	BaseDelay time.Duration

	// MaxDelay caps a single backoff wait.
	MaxDelay time.Duration

	// TransientDelay is the fixed delay before the single retry allowed
	// for other 4xx/5xx failures.
	TransientDelay time.Duration
}

// DefaultRetryPolicy matches the remote API's published guidance:
// two retries for rate limiting, one for anything else retryable.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRateLimitRetries: 2,
		BaseDelay:           time.Second,
		MaxDelay:            30 * time.Second,
		TransientDelay:      2 * time.Second,
	}
}

// RetriesFor returns the retry budget for an error kind. Authentication
// failures get none.
func (p RetryPolicy) RetriesFor(kind ErrorKind) int {
	switch kind {
	case KindRateLimited:
		return p.MaxRateLimitRetries
	case KindTransient:
		return 1
	default:
		return 0
	}
}

// Delay computes the wait before retry number attempt (0-based) of an error
// kind. A positive server hint wins over computed backoff for rate limits.
func (p RetryPolicy) Delay(kind ErrorKind, attempt int, hint time.Duration) time.Duration {
	if kind == KindTransient {
		return p.TransientDelay
	}
	if hint > 0 {
		if hint > p.MaxDelay {
			return p.MaxDelay
		}
		return hint
	}
	delay := p.BaseDelay * time.Duration(1<<uint(attempt))
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}
