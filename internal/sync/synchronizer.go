// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package sync

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/brandscope/brandscope/internal/crm"
	"github.com/brandscope/brandscope/internal/metrics"
	"github.com/brandscope/brandscope/internal/models"
)

// ErrNotBuilt distinguishes a cache that has never been built from a
// genuinely empty result set.
var ErrNotBuilt = errors.New("brand cache has not been built")

// BrandAPI is the slice of the CRM client the synchronizer needs.
type BrandAPI interface {
	Search(ctx context.Context, req crm.SearchRequest) (*crm.SearchResponse, error)
}

// SnapshotStore is the snapshot persistence contract.
type SnapshotStore interface {
	Get(ctx context.Context) (*models.CacheSnapshot, error)
	Set(ctx context.Context, snap *models.CacheSnapshot) error
}

// Config holds synchronizer tuning. Zero values take the defaults below.
type Config struct {
	// PageSize bounds each rebuild fetch page.
	PageSize int

	// PageDelay is the pause between rebuild pages, extra headroom on top
	// of the client's token bucket.
	PageDelay time.Duration

	// MaxPages is the rebuild safety valve against runaway pagination.
	MaxPages int

	// SizeWarnThreshold triggers the non-fatal size warning.
	SizeWarnThreshold int

	// RebuildInterval drives the periodic rebuild loop.
	RebuildInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = 100
	}
	if c.PageDelay < 0 {
		c.PageDelay = 0
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 50
	}
	if c.SizeWarnThreshold <= 0 {
		c.SizeWarnThreshold = 500
	}
	if c.RebuildInterval <= 0 {
		c.RebuildInterval = 6 * time.Hour
	}
	return c
}

// RebuildResult reports a completed full rebuild.
type RebuildResult struct {
	PagesFetched int       `json:"pages_fetched"`
	RecordCount  int       `json:"record_count"`
	Warning      bool      `json:"warning"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// ChangeSummary reports one reconciled event batch.
type ChangeSummary struct {
	Inserted    int       `json:"inserted"`
	Updated     int       `json:"updated"`
	Removed     int       `json:"removed"`
	Noops       int       `json:"noops"`
	Changed     bool      `json:"changed"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
}

// SnapshotView is the display-oriented projection of the current cache.
type SnapshotView struct {
	Records     []models.BrandRecord `json:"records"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// Synchronizer keeps the local brand snapshot equal to the predicate-
// filtered remote population.
//
// There is deliberately no mutex around Rebuild: two concurrent rebuilds
// race to an atomic last-writer-wins snapshot replacement.
type Synchronizer struct {
	api    BrandAPI
	store  SnapshotStore
	cfg    Config
	logger zerolog.Logger
	now    func() time.Time
}

// NewSynchronizer creates a synchronizer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSynchronizer(api BrandAPI, store SnapshotStore, cfg Config, logger zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		api:    api,
		store:  store,
		cfg:    cfg.withDefaults(),
		logger: logger.With().Str("component", "sync").Logger(),
		now:    time.Now,
	}
}

// Rebuild fetches every remote record matching the membership predicate and
// replaces the snapshot wholesale. A snapshot over the size threshold is a
// warning, never a failure; no record is dropped.
func (s *Synchronizer) Rebuild(ctx context.Context) (*RebuildResult, error) {
	start := s.now()
	snap := models.NewCacheSnapshot(start)

	cursor := ""
	pages := 0
	for pages < s.cfg.MaxPages {
		resp, err := s.api.Search(ctx, crm.SearchRequest{
			ObjectType:   crm.ObjectBrands,
			FilterGroups: membershipFilterGroups(),
			Properties:   brandProperties,
			Sorts:        []crm.Sort{{Property: "hs_lastmodifieddate", Direction: "DESCENDING"}},
			Limit:        s.cfg.PageSize,
			After:        cursor,
		})
		if err != nil {
			metrics.SyncRuns.WithLabelValues("manual", "error").Inc()
			return nil, fmt.Errorf("rebuild page %d: %w", pages+1, err)
		}
		pages++

		for _, raw := range resp.Results {
			rec := models.BrandFromProperties(raw.ID, models.CanonicalProperties(raw.Properties))
			// Remote filters pre-narrow; the predicate decides.
			if MemberPredicate(rec) {
				snap.Records[rec.ID] = rec
			}
		}

		cursor = resp.NextCursor()
		if cursor == "" {
			break
		}
		if s.cfg.PageDelay > 0 {
			select {
			case <-time.After(s.cfg.PageDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if cursor != "" {
		s.logger.Warn().
			Int("max_pages", s.cfg.MaxPages).
			Msg("rebuild stopped at page safety valve with results remaining")
	}

	if err := s.store.Set(ctx, snap); err != nil {
		metrics.SyncRuns.WithLabelValues("manual", "error").Inc()
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	result := &RebuildResult{
		PagesFetched: pages,
		RecordCount:  len(snap.Records),
		Warning:      len(snap.Records) > s.cfg.SizeWarnThreshold,
		GeneratedAt:  snap.GeneratedAt,
	}
	if result.Warning {
		metrics.SyncThresholdWarnings.Inc()
		s.logger.Warn().
			Int("records", result.RecordCount).
			Int("threshold", s.cfg.SizeWarnThreshold).
			Msg("brand cache exceeds size threshold")
	}

	metrics.SyncRuns.WithLabelValues("manual", "success").Inc()
	metrics.SyncSnapshotSize.Set(float64(result.RecordCount))
	s.logger.Info().
		Int("pages", result.PagesFetched).
		Int("records", result.RecordCount).
		Dur("duration", s.now().Sub(start)).
		Msg("full rebuild complete")

	return result, nil
}

// ApplyChanges reconciles a batch of partial-change notifications into the
// snapshot. Per-event ordering across distinct IDs is not assumed. The
// snapshot and its generation timestamp are persisted only when the batch
// produced a net change, making reapplication of a batch a no-op.
func (s *Synchronizer) ApplyChanges(ctx context.Context, events []models.ChangeEvent) (*ChangeSummary, error) {
	current, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if current == nil {
		// Reconciliation before any rebuild starts from an empty set.
		current = models.NewCacheSnapshot(time.Time{})
	}

	snap := current.Clone()
	summary := &ChangeSummary{}

	for _, ev := range events {
		if ev.RecordID == "" {
			summary.Noops++
			continue
		}
		props := models.CanonicalProperties(ev.Properties)

		existing, present := snap.Records[ev.RecordID]
		merged := existing
		if !present {
			merged = models.BrandRecord{ID: ev.RecordID}
		}
		// Incoming fields win; fields absent from the event are retained.
		models.ApplyProperties(&merged, props)

		switch member := MemberPredicate(merged); {
		case member && !present:
			snap.Records[ev.RecordID] = merged
			summary.Inserted++
			metrics.SyncEventsApplied.WithLabelValues("insert").Inc()
		case member && present:
			if reflect.DeepEqual(existing, merged) {
				summary.Noops++
				metrics.SyncEventsApplied.WithLabelValues("noop").Inc()
				continue
			}
			snap.Records[ev.RecordID] = merged
			summary.Updated++
			metrics.SyncEventsApplied.WithLabelValues("update").Inc()
		case !member && present:
			delete(snap.Records, ev.RecordID)
			summary.Removed++
			metrics.SyncEventsApplied.WithLabelValues("remove").Inc()
		default:
			summary.Noops++
			metrics.SyncEventsApplied.WithLabelValues("noop").Inc()
		}
	}

	summary.Changed = summary.Inserted+summary.Updated+summary.Removed > 0
	if !summary.Changed {
		// Idempotence: a no-op batch leaves snapshot and timestamp alone.
		return summary, nil
	}

	snap.GeneratedAt = s.now()
	if err := s.store.Set(ctx, snap); err != nil {
		metrics.SyncRuns.WithLabelValues("event_batch", "error").Inc()
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	summary.GeneratedAt = snap.GeneratedAt

	metrics.SyncRuns.WithLabelValues("event_batch", "success").Inc()
	metrics.SyncSnapshotSize.Set(float64(len(snap.Records)))
	s.logger.Info().
		Int("inserted", summary.Inserted).
		Int("updated", summary.Updated).
		Int("removed", summary.Removed).
		Int("noops", summary.Noops).
		Msg("event batch reconciled")

	return summary, nil
}

// Snapshot returns the display projection of the current cache with its
// generation timestamp. A never-built cache returns ErrNotBuilt, distinct
// from an empty result set.
func (s *Synchronizer) Snapshot(ctx context.Context) (*SnapshotView, error) {
	snap, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return nil, ErrNotBuilt
	}

	records := make([]models.BrandRecord, 0, len(snap.Records))
	for _, rec := range snap.Records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})

	return &SnapshotView{Records: records, GeneratedAt: snap.GeneratedAt}, nil
}

// Run drives the periodic rebuild loop until the context is canceled.
// Shaped for supervision: it is the Serve body of the sync service.
func (s *Synchronizer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.RebuildInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Rebuild(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Error().Err(err).Msg("periodic rebuild failed")
			}
		}
	}
}
