// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package crm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a remote failure for retry and reporting decisions.
type ErrorKind string

// Remote error kinds.
const (
	KindAuthentication ErrorKind = "authentication_error"
	KindRateLimited    ErrorKind = "rate_limited"
	KindTransient      ErrorKind = "transient_remote_error"
	KindNotFound       ErrorKind = "not_found"
	KindUnavailable    ErrorKind = "remote_unavailable"
)

// Error is a classified remote failure. API handlers serialize Kind and
// Message; the underlying cause is wrapped for logs only.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// newError builds a classified error from an HTTP status code.
func newError(kind ErrorKind, status int, message string) *Error {
	return &Error{Kind: kind, StatusCode: status, Message: message}
}

// KindOf returns the classification of err, or "" if err is not a remote
// client error.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsAuthentication reports whether err is a non-retryable credential failure.
func IsAuthentication(err error) bool { return KindOf(err) == KindAuthentication }

// IsNotFound reports whether err marks an exhausted resolution cascade or a
// missing remote record.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
