// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package resolve

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/brandscope/brandscope/internal/crm"
	"github.com/brandscope/brandscope/internal/metrics"
	"github.com/brandscope/brandscope/internal/models"
	"github.com/brandscope/brandscope/internal/store"
)

// ErrNotFound is returned when the full cascade yields no candidate with a
// positive score.
var ErrNotFound = errors.New("no matching partnership record")

// SearchAPI is the slice of the CRM client the resolver needs.
type SearchAPI interface {
	Search(ctx context.Context, req crm.SearchRequest) (*crm.SearchResponse, error)
}

// Cache is the resolution cache store contract.
type Cache interface {
	Get(ctx context.Context, key string) (*store.ResolutionEntry, error)
	Set(ctx context.Context, key string, entry *store.ResolutionEntry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Config holds resolver tuning. Zero values take the defaults below.
type Config struct {
	// TTL bounds how long a cached resolution is served. Staleness is
	// wall-clock only; there is no event-driven invalidation hook, an
	// accepted bounded-staleness trade-off.
	TTL time.Duration

	// BroadFetchLimit is how many most-recently-modified partnerships the
	// last cascade stage pulls for client-side filtering.
	BroadFetchLimit int

	// CallTimeout bounds each outbound search; an expired budget is
	// treated as an empty stage result.
	CallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = 3 * time.Hour
	}
	if c.BroadFetchLimit <= 0 {
		c.BroadFetchLimit = 100
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 15 * time.Second
	}
	return c
}

// Resolution is a successful name resolution.
type Resolution struct {
	Record    models.PartnershipRecord `json:"record"`
	Score     int                      `json:"score"`
	FromCache bool                     `json:"from_cache"`
	Stage     string                   `json:"stage,omitempty"`
}

// Resolver maps free-text production names to partnership records through a
// cascade of progressively looser searches, with a TTL-bound self-healing
// cache in front.
//
// All state is injected at construction; there are no package-level
// singletons, so tests substitute fakes freely.
type Resolver struct {
	api    SearchAPI
	cache  Cache
	cfg    Config
	logger zerolog.Logger
	now    func() time.Time
}

// NewResolver creates a resolver.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewResolver(api SearchAPI, cache Cache, cfg Config, logger zerolog.Logger) *Resolver {
	return &Resolver{
		api:    api,
		cache:  cache,
		cfg:    cfg.withDefaults(),
		logger: logger.With().Str("component", "resolve").Logger(),
		now:    time.Now,
	}
}

// Resolve maps a free-text name to the single best partnership record.
// Returns ErrNotFound when the cascade exhausts without a positive-score
// candidate.
func (r *Resolver) Resolve(ctx context.Context, name string) (*Resolution, error) {
	key := NormalizeName(name)
	if key == "" {
		return nil, ErrNotFound
	}

	if res := r.fromCache(ctx, key); res != nil {
		return res, nil
	}

	winner, stage, err := r.cascade(ctx, name, key)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		metrics.ResolveCascadeStage.WithLabelValues("not_found").Inc()
		return nil, ErrNotFound
	}
	metrics.ResolveCascadeStage.WithLabelValues(stage).Inc()

	winner.record.NormalizePlaceholders()

	entry := &store.ResolutionEntry{
		Key:      key,
		Record:   winner.record,
		Score:    winner.score,
		CachedAt: r.now(),
	}
	if err := r.cache.Set(ctx, key, entry, r.cfg.TTL); err != nil {
		// Cache write failure degrades to uncached service, not an error.
		r.logger.Warn().Err(err).Str("key", key).Msg("resolution cache write failed")
	}

	return &Resolution{Record: winner.record, Score: winner.score, Stage: stage}, nil
}

// fromCache serves a live cached resolution, repairing or discarding
// corrupt payloads. A corrupt-but-repairable entry is scrubbed in place,
// re-stored, and served; an invalid one is deleted so the caller falls
// through to the cascade.
func (r *Resolver) fromCache(ctx context.Context, key string) *Resolution {
	entry, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("resolution cache read failed")
	}
	if entry == nil || r.now().Sub(entry.CachedAt) > r.cfg.TTL {
		metrics.ResolveCacheMisses.Inc()
		return nil
	}

	switch ValidateEntry(entry) {
	case VerdictOK:
	case VerdictRepaired:
		metrics.ResolveCacheRepairs.WithLabelValues("repaired").Inc()
		r.logger.Info().Str("key", key).Msg("repaired corrupt resolution cache entry")
		// Remaining TTL, not a fresh one: repair must not extend staleness.
		remaining := r.cfg.TTL - r.now().Sub(entry.CachedAt)
		if err := r.cache.Set(ctx, key, entry, remaining); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("re-store of repaired entry failed")
		}
	case VerdictInvalid:
		metrics.ResolveCacheRepairs.WithLabelValues("invalid").Inc()
		r.logger.Warn().Str("key", key).Msg("invalid resolution cache entry, forcing re-resolution")
		if err := r.cache.Delete(ctx, key); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("delete of invalid entry failed")
		}
		metrics.ResolveCacheMisses.Inc()
		return nil
	}

	metrics.ResolveCacheHits.Inc()
	return &Resolution{Record: entry.Record, Score: entry.Score, FromCache: true}
}

// cascade runs the four search stages. A later stage runs only when the
// prior produced zero candidates; a stage that produced candidates is the
// final word, so a zero-score top candidate is not found rather than a
// reason to loosen the query further.
func (r *Resolver) cascade(ctx context.Context, name, key string) (*candidate, string, error) {
	type stage struct {
		name string
		run  func(context.Context) ([]models.PartnershipRecord, error)
	}

	stages := []stage{
		{"exact", func(ctx context.Context) ([]models.PartnershipRecord, error) {
			return r.searchExact(ctx, name)
		}},
		{"contains", func(ctx context.Context) ([]models.PartnershipRecord, error) {
			return r.searchContains(ctx, name)
		}},
		{"tokens", func(ctx context.Context) ([]models.PartnershipRecord, error) {
			return r.searchTokens(ctx, key)
		}},
		{"broad", func(ctx context.Context) ([]models.PartnershipRecord, error) {
			return r.searchBroad(ctx, key)
		}},
	}

	for _, s := range stages {
		records, err := r.runStage(ctx, s.run)
		if err != nil {
			return nil, "", err
		}
		if len(records) == 0 {
			continue
		}

		candidates := dedupe(records)
		ranked := rankCandidates(key, candidates)
		if ranked[0].score <= 0 {
			return nil, "", nil
		}
		top := ranked[0]
		return &top, s.name, nil
	}

	return nil, "", nil
}

// runStage executes one cascade stage under the per-call budget.
func (r *Resolver) runStage(ctx context.Context, run func(context.Context) ([]models.PartnershipRecord, error)) ([]models.PartnershipRecord, error) {
	stageCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	defer cancel()

	records, err := run(stageCtx)
	if err != nil {
		if stageCtx.Err() != nil && ctx.Err() == nil {
			// Budget expired: abandoned call counts as an empty stage.
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

func (r *Resolver) searchExact(ctx context.Context, name string) ([]models.PartnershipRecord, error) {
	return r.search(ctx, []crm.FilterGroup{{Filters: []crm.Filter{
		{Property: "dealname", Operator: crm.OpEq, Value: name},
	}}}, 0)
}

func (r *Resolver) searchContains(ctx context.Context, name string) ([]models.PartnershipRecord, error) {
	return r.search(ctx, []crm.FilterGroup{{Filters: []crm.Filter{
		{Property: "dealname", Operator: crm.OpContainsToken, Value: name},
	}}}, 0)
}

// searchTokens ORs a containment query per significant word. Single-word
// names skip this stage.
func (r *Resolver) searchTokens(ctx context.Context, key string) ([]models.PartnershipRecord, error) {
	words := significantWords(key)
	if len(tokens(key)) < 2 || len(words) == 0 {
		return nil, nil
	}

	groups := make([]crm.FilterGroup, 0, len(words))
	for _, w := range words {
		groups = append(groups, crm.FilterGroup{Filters: []crm.Filter{
			{Property: "dealname", Operator: crm.OpContainsToken, Value: w},
		}})
	}
	return r.search(ctx, groups, 0)
}

// searchBroad pulls the most recently modified partnerships and filters
// client-side: substring containment first, then word-overlap >= 0.5.
func (r *Resolver) searchBroad(ctx context.Context, key string) ([]models.PartnershipRecord, error) {
	records, err := r.search(ctx, nil, r.cfg.BroadFetchLimit)
	if err != nil || len(records) == 0 {
		return nil, err
	}

	var bySubstring []models.PartnershipRecord
	for _, rec := range records {
		normalized := NormalizeName(rec.Name)
		if normalized == "" {
			continue
		}
		if containsEither(normalized, key) {
			bySubstring = append(bySubstring, rec)
		}
	}
	if len(bySubstring) > 0 {
		return bySubstring, nil
	}

	words := significantWords(key)
	var byOverlap []models.PartnershipRecord
	for _, rec := range records {
		if wordOverlapRatio(words, NormalizeName(rec.Name)) >= 0.5 {
			byOverlap = append(byOverlap, rec)
		}
	}
	return byOverlap, nil
}

// search issues one partnership search and maps results to records.
// A nil filter slice requests the recently-modified broad fetch.
func (r *Resolver) search(ctx context.Context, groups []crm.FilterGroup, limit int) ([]models.PartnershipRecord, error) {
	req := crm.SearchRequest{
		ObjectType:   crm.ObjectPartnerships,
		FilterGroups: groups,
		Properties: []string{
			"dealname", "genres", "content_rating", "release_date",
			"start_date", "description", "dealstage", "priority", "network",
		},
		Sorts: []crm.Sort{{Property: "hs_lastmodifieddate", Direction: "DESCENDING"}},
		Limit: limit,
	}

	resp, err := r.api.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]models.PartnershipRecord, 0, len(resp.Results))
	for _, rec := range resp.Results {
		out = append(out, models.PartnershipFromProperties(rec.ID, rec.Properties, rec.UpdatedAt))
	}
	return out, nil
}

// dedupe drops duplicate record IDs, keeping first-discovered order.
func dedupe(records []models.PartnershipRecord) []candidate {
	seen := make(map[string]struct{}, len(records))
	out := make([]candidate, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, candidate{record: rec, order: len(out)})
	}
	return out
}

// containsEither is substring containment in either direction on
// already-normalized strings.
func containsEither(a, b string) bool {
	return a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a))
}
