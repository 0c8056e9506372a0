// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/brandscope/brandscope/internal/crm"
	"github.com/brandscope/brandscope/internal/logging"
	"github.com/brandscope/brandscope/internal/match"
	"github.com/brandscope/brandscope/internal/models"
	"github.com/brandscope/brandscope/internal/resolve"
	syncpkg "github.com/brandscope/brandscope/internal/sync"
)

// BrandCache is the synchronizer surface the API depends on.
type BrandCache interface {
	Snapshot(ctx context.Context) (*syncpkg.SnapshotView, error)
	Rebuild(ctx context.Context) (*syncpkg.RebuildResult, error)
}

// NameResolver is the resolver surface the API depends on.
type NameResolver interface {
	Resolve(ctx context.Context, name string) (*resolve.Resolution, error)
}

// Handler serves the Brandscope HTTP API.
type Handler struct {
	cache    BrandCache
	resolver NameResolver
	validate *validator.Validate
	topK     int
}

// NewHandler creates the API handler. topK bounds how many ranked brands a
// match response carries; a non-positive value takes match.DefaultTopK.
func NewHandler(cache BrandCache, resolver NameResolver, topK int) *Handler {
	return &Handler{
		cache:    cache,
		resolver: resolver,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		topK:     topK,
	}
}

// Health reports liveness. It never touches downstream dependencies, so a
// degraded CRM cannot fail the probe.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Brands returns the current cached brand snapshot.
//
// A cache that has never been built returns 503 with CACHE_NOT_BUILT so
// callers can distinguish "not ready" from a legitimately empty population.
func (h *Handler) Brands(w http.ResponseWriter, r *http.Request) {
	view, err := h.cache.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, syncpkg.ErrNotBuilt) {
			respondError(w, http.StatusServiceUnavailable, CodeNotBuilt,
				"brand cache has not been built yet", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeInternal,
			"failed to read brand cache", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// SyncRebuild triggers a full snapshot rebuild and reports the outcome.
func (h *Handler) SyncRebuild(w http.ResponseWriter, r *http.Request) {
	logger := logging.Ctx(r.Context())
	logger.Info().Msg("manual rebuild requested")

	result, err := h.cache.Rebuild(r.Context())
	if err != nil {
		status, code := classifyUpstream(err)
		respondError(w, status, code, "rebuild failed", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ResolveName resolves a free-text production name to a partnership record.
func (h *Handler) ResolveName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, CodeValidation,
			"query parameter 'name' is required", nil)
		return
	}

	res, err := h.resolver.Resolve(r.Context(), name)
	if err != nil {
		if errors.Is(err, resolve.ErrNotFound) {
			respondError(w, http.StatusNotFound, CodeNotFound,
				"no partnership record matches the given name", nil)
			return
		}
		status, code := classifyUpstream(err)
		respondError(w, status, code, "resolution failed", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// MatchRequest asks for brand matches for one partnership. Either Name
// (resolved through the cascade) or an inline Partnership must be given.
type MatchRequest struct {
	Name        string                    `json:"name" validate:"required_without=Partnership"`
	Partnership *models.PartnershipRecord `json:"partnership"`
}

// Match scores the cached brand pool against a partnership and returns the
// ranked matches.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation,
			"invalid request body", err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation,
			"either 'name' or 'partnership' must be provided", nil)
		return
	}

	partnership := req.Partnership
	if partnership == nil {
		res, err := h.resolver.Resolve(r.Context(), req.Name)
		if err != nil {
			if errors.Is(err, resolve.ErrNotFound) {
				respondError(w, http.StatusNotFound, CodeNotFound,
					"no partnership record matches the given name", nil)
				return
			}
			status, code := classifyUpstream(err)
			respondError(w, status, code, "resolution failed", err)
			return
		}
		partnership = &res.Record
	}

	view, err := h.cache.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, syncpkg.ErrNotBuilt) {
			respondError(w, http.StatusServiceUnavailable, CodeNotBuilt,
				"brand cache has not been built yet", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeInternal,
			"failed to read brand cache", err)
		return
	}

	pool := match.CapBrandPool(view.Records, match.DefaultPoolCaps)
	results := match.MatchBrands([]models.PartnershipRecord{*partnership}, pool, h.topK)
	respondJSON(w, http.StatusOK, results[0])
}

// classifyUpstream maps CRM error kinds onto HTTP statuses and API codes.
func classifyUpstream(err error) (int, string) {
	switch crm.KindOf(err) {
	case crm.KindAuthentication:
		return http.StatusBadGateway, CodeUpstream
	case crm.KindRateLimited:
		return http.StatusServiceUnavailable, CodeRateLimited
	case crm.KindUnavailable, crm.KindTransient:
		return http.StatusServiceUnavailable, CodeUpstream
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
