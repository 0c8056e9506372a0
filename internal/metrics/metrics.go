// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

// Package metrics provides Prometheus instrumentation for Brandscope:
// remote CRM call outcomes, resolver cascade depth and cache efficiency,
// synchronizer runs, and HTTP endpoint latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Remote CRM client metrics
	RemoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_remote_requests_total",
			Help: "Total CRM API requests by outcome classification",
		},
		[]string{"operation", "outcome"}, // outcome: success, auth_error, rate_limited, transient, empty_fallback
	)

	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_remote_request_duration_seconds",
			Help:    "Duration of CRM API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crm_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Resolver metrics
	ResolveCascadeStage = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolve_cascade_stage_total",
			Help: "Resolutions that ended at each cascade stage",
		},
		[]string{"stage"}, // exact, contains, tokens, broad, overlap, not_found
	)

	ResolveCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resolve_cache_hits_total",
			Help: "Total resolution cache hits",
		},
	)

	ResolveCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resolve_cache_misses_total",
			Help: "Total resolution cache misses (absent or expired)",
		},
	)

	ResolveCacheRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolve_cache_repairs_total",
			Help: "Corrupt cache entries by validation verdict",
		},
		[]string{"verdict"}, // repaired, invalid
	)

	// Synchronizer metrics
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Total synchronization runs by trigger and outcome",
		},
		[]string{"trigger", "outcome"}, // trigger: manual, periodic, event_batch
	)

	SyncSnapshotSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_snapshot_records",
			Help: "Number of brand records in the current snapshot",
		},
	)

	SyncEventsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_events_applied_total",
			Help: "Incremental change events by reconciliation action",
		},
		[]string{"action"}, // insert, update, remove, noop
	)

	SyncThresholdWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_threshold_warnings_total",
			Help: "Full rebuilds that exceeded the snapshot size threshold",
		},
	)

	// HTTP API metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveRemoteRequest records one remote call outcome with its duration.
func ObserveRemoteRequest(operation, outcome string, start time.Time) {
	RemoteRequests.WithLabelValues(operation, outcome).Inc()
	RemoteRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
