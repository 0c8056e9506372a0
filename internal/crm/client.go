// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package crm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/brandscope/brandscope/internal/metrics"
)

// Object types exposed by the CRM search API.
const (
	ObjectBrands       = "brands"
	ObjectPartnerships = "partnerships"
)

// Search filter operators understood by the remote store.
const (
	OpEq            = "EQ"
	OpContainsToken = "CONTAINS_TOKEN"
	OpHasProperty   = "HAS_PROPERTY"
	OpIn            = "IN"
)

// maxErrorBodySize limits how much of an error response body is read back
// for diagnostics.
const maxErrorBodySize = 64 * 1024 // 64KB

// Filter is one property condition. Filters within a group are ANDed;
// groups are ORed by the remote store.
type Filter struct {
	Property string   `json:"propertyName"`
	Operator string   `json:"operator"`
	Value    string   `json:"value,omitempty"`
	Values   []string `json:"values,omitempty"`
}

// FilterGroup is a conjunction of filters.
type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

// Sort orders search results by a property.
type Sort struct {
	Property  string `json:"propertyName"`
	Direction string `json:"direction"` // ASCENDING or DESCENDING
}

// SearchRequest is the remote search contract:
// search(predicate, properties, sort, pageCursor).
type SearchRequest struct {
	ObjectType   string        `json:"-"`
	FilterGroups []FilterGroup `json:"filterGroups,omitempty"`
	Properties   []string      `json:"properties,omitempty"`
	Sorts        []Sort        `json:"sorts,omitempty"`
	Limit        int           `json:"limit,omitempty"`
	After        string        `json:"after,omitempty"`
}

// RemoteRecord is one raw record as returned by the remote store. Property
// names are not canonical at this layer.
type RemoteRecord struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	UpdatedAt  time.Time         `json:"updatedAt,omitempty"`
}

// Paging carries the opaque cursor for the next page, when one exists.
type Paging struct {
	Next *PagingNext `json:"next,omitempty"`
}

// PagingNext holds the cursor value.
type PagingNext struct {
	After string `json:"after"`
}

// SearchResponse is a single page of search results.
type SearchResponse struct {
	Results []RemoteRecord `json:"results"`
	Total   int            `json:"total,omitempty"`
	Paging  *Paging        `json:"paging,omitempty"`
}

// NextCursor returns the next page cursor, or "" on the last page.
func (r *SearchResponse) NextCursor() string {
	if r.Paging == nil || r.Paging.Next == nil {
		return ""
	}
	return r.Paging.Next.After
}

// Config holds client construction parameters. All values come from the
// application config; nothing here is a package-level singleton, so tests
// construct as many independent clients as they need.
type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	BucketCapacity int
	RefillPerSec   float64
	Retry          RetryPolicy
}

// Client is the rate-limited, retrying CRM API client.
//
// Thread safety: safe for concurrent use. All callers share one token
// bucket and one circuit breaker.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	bucket  *TokenBucket
	policy  RetryPolicy
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  zerolog.Logger
}

// NewClient creates a CRM client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	policy := cfg.Retry
	if policy.MaxRateLimitRetries == 0 && policy.BaseDelay == 0 {
		policy = DefaultRetryPolicy()
	}

	c := &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		bucket:  NewTokenBucket(cfg.BucketCapacity, cfg.RefillPerSec),
		policy:  policy,
		logger:  logger.With().Str("component", "crm").Logger(),
	}
	c.breaker = newBreaker("crm-api", c.logger)
	return c
}

// newBreaker configures the circuit breaker in front of the HTTP layer.
// Opens after a 60% failure rate over at least 10 requests; recovers via
// half-open probes after one minute.
func newBreaker(name string, logger zerolog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// Authentication failures are a configuration problem, not
			// remote ill health; they must not trip the breaker.
			return err == nil || IsAuthentication(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Search executes one page of a search. Read path: when retries are
// exhausted or the breaker is open, it returns an empty response and no
// error so downstream aggregation stays total. Authentication failures and
// context cancellation are still surfaced.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	start := time.Now()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	path := fmt.Sprintf("/crm/v3/objects/%s/search", req.ObjectType)
	raw, err := c.execute(ctx, http.MethodPost, path, body)
	if err != nil {
		if degraded := c.degradeReadError(ctx, "search", err, start); degraded != nil {
			return degraded, nil
		}
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	metrics.ObserveRemoteRequest("search", "success", start)
	return &resp, nil
}

// GetByID fetches a single record. Returns (nil, nil) when the record does
// not exist, matching the remote contract's record|null.
func (c *Client) GetByID(ctx context.Context, objectType, id string) (*RemoteRecord, error) {
	start := time.Now()

	path := fmt.Sprintf("/crm/v3/objects/%s/%s", objectType, id)
	raw, err := c.execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		if IsNotFound(err) {
			metrics.ObserveRemoteRequest("get_by_id", "success", start)
			return nil, nil
		}
		if degraded := c.degradeReadError(ctx, "get_by_id", err, start); degraded != nil {
			return nil, nil
		}
		return nil, err
	}

	var rec RemoteRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode record response: %w", err)
	}
	metrics.ObserveRemoteRequest("get_by_id", "success", start)
	return &rec, nil
}

// degradeReadError decides whether a read-path failure degrades to an empty
// result. Exhausted retries, transient failures, an open breaker, and an
// expired per-call budget all degrade; authentication failures and caller
// cancellation do not.
func (c *Client) degradeReadError(ctx context.Context, operation string, err error, start time.Time) *SearchResponse {
	if IsAuthentication(err) {
		metrics.ObserveRemoteRequest(operation, "auth_error", start)
		return nil
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		// The caller's own context was canceled; nothing to degrade to.
		return nil
	}

	c.logger.Warn().
		Str("operation", operation).
		Err(err).
		Msg("remote read degraded to empty result")
	metrics.ObserveRemoteRequest(operation, "empty_fallback", start)
	return &SearchResponse{Results: []RemoteRecord{}}
}

// execute performs one classified, retried HTTP exchange through the
// circuit breaker and returns the raw response body.
func (c *Client) execute(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, method, path, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &Error{Kind: KindUnavailable, Message: "circuit breaker open", Err: err}
		}
		return nil, err
	}
	return raw, nil
}

// do is the single retry loop shared by all remote calls. The loop consults
// the declarative RetryPolicy for budgets and delays; no call site carries
// its own counters or sleeps.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.bucket.Acquire(ctx); err != nil {
			return nil, err
		}

		raw, hint, err := c.roundTrip(ctx, method, path, body)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		kind := KindOf(err)
		if kind == KindNotFound || attempt >= c.policy.RetriesFor(kind) {
			return nil, lastErr
		}

		delay := c.policy.Delay(kind, attempt, hint)
		c.logger.Debug().
			Str("path", path).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Str("kind", string(kind)).
			Msg("retrying remote call")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// roundTrip performs exactly one HTTP exchange and classifies the response.
// The returned duration is the server's explicit wait hint for 429s, or 0.
func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte) ([]byte, time.Duration, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, &Error{Kind: KindTransient, Message: "http request failed", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, 0, &Error{Kind: KindTransient, Message: "read response body", Err: err}
		}
		return raw, 0, nil

	case resp.StatusCode == http.StatusUnauthorized:
		return nil, 0, newError(KindAuthentication, resp.StatusCode, "remote rejected credentials")

	case resp.StatusCode == http.StatusNotFound:
		return nil, 0, newError(KindNotFound, resp.StatusCode, "record not found")

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, retryAfterHint(resp), newError(KindRateLimited, resp.StatusCode, "rate limit exceeded")

	default:
		return nil, 0, newError(KindTransient, resp.StatusCode, truncatedBody(resp.Body))
	}
}

// retryAfterHint parses the Retry-After header (seconds form) into an
// explicit wait hint.
func retryAfterHint(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// truncatedBody reads at most maxErrorBodySize of an error response body
// for diagnostics.
func truncatedBody(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil || len(raw) == 0 {
		return "remote error"
	}
	if len(raw) == maxErrorBodySize {
		raw = append(raw, []byte("... (truncated)")...)
	}
	return string(raw)
}
