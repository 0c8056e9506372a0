// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandscope/brandscope/internal/config"
	"github.com/brandscope/brandscope/internal/crm"
	"github.com/brandscope/brandscope/internal/models"
	"github.com/brandscope/brandscope/internal/resolve"
	syncpkg "github.com/brandscope/brandscope/internal/sync"
)

type fakeCache struct {
	view       *syncpkg.SnapshotView
	viewErr    error
	rebuild    *syncpkg.RebuildResult
	rebuildErr error
}

func (f *fakeCache) Snapshot(context.Context) (*syncpkg.SnapshotView, error) {
	return f.view, f.viewErr
}

func (f *fakeCache) Rebuild(context.Context) (*syncpkg.RebuildResult, error) {
	return f.rebuild, f.rebuildErr
}

type fakeResolver struct {
	res *resolve.Resolution
	err error
}

func (f *fakeResolver) Resolve(context.Context, string) (*resolve.Resolution, error) {
	return f.res, f.err
}

func newTestRouter(cache *fakeCache, resolver *fakeResolver) http.Handler {
	cfg := config.ServerConfig{RateLimitPerMinute: 0}
	return NewRouter(NewHandler(cache, resolver, 0), cfg)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestBrandsReturnsSnapshot(t *testing.T) {
	cache := &fakeCache{
		view: &syncpkg.SnapshotView{
			Records: []models.BrandRecord{
				{ID: "b1", Name: "Acme Motors", ClientStatus: models.StatusActive},
			},
			GeneratedAt: time.Now(),
		},
	}
	router := newTestRouter(cache, &fakeResolver{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/brands", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestBrandsNotBuilt(t *testing.T) {
	cache := &fakeCache{viewErr: syncpkg.ErrNotBuilt}
	router := newTestRouter(cache, &fakeResolver{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/brands", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeNotBuilt, resp.Error.Code)
}

func TestSyncRebuild(t *testing.T) {
	cache := &fakeCache{
		rebuild: &syncpkg.RebuildResult{PagesFetched: 3, RecordCount: 250},
	}
	router := newTestRouter(cache, &fakeResolver{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync/rebuild", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "ok", resp.Status)
}

func TestSyncRebuildAuthFailure(t *testing.T) {
	cache := &fakeCache{
		rebuildErr: &crm.Error{Kind: crm.KindAuthentication, Message: "bad token", StatusCode: 401},
	}
	router := newTestRouter(cache, &fakeResolver{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync/rebuild", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeUpstream, resp.Error.Code)
	// Upstream detail must not leak to clients.
	assert.NotContains(t, rec.Body.String(), "bad token")
}

func TestResolveNameRequiresParam(t *testing.T) {
	router := newTestRouter(&fakeCache{}, &fakeResolver{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/resolve", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeValidation, resp.Error.Code)
}

func TestResolveNameNotFound(t *testing.T) {
	router := newTestRouter(&fakeCache{}, &fakeResolver{err: resolve.ErrNotFound})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/resolve?name=Unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolveNameSuccess(t *testing.T) {
	resolver := &fakeResolver{
		res: &resolve.Resolution{
			Record: models.PartnershipRecord{ID: "p1", Name: "Midnight Circuit"},
			Score:  100,
		},
	}
	router := newTestRouter(&fakeCache{}, resolver)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/resolve?name=midnight+circuit", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "ok", resp.Status)
}

func TestMatchByName(t *testing.T) {
	cache := &fakeCache{
		view: &syncpkg.SnapshotView{
			Records: []models.BrandRecord{
				{
					ID:           "b1",
					Name:         "Acme Motors",
					Category:     "Automotive",
					ClientStatus: models.StatusActive,
					TargetAges:   []string{"18-34"},
				},
			},
		},
	}
	resolver := &fakeResolver{
		res: &resolve.Resolution{
			Record: models.PartnershipRecord{
				ID:           "p1",
				Name:         "Midnight Circuit",
				Genres:       []string{"Action"},
				TargetRating: "TV-14",
			},
			Score: 100,
		},
	}
	router := newTestRouter(cache, resolver)

	body, _ := json.Marshal(MatchRequest{Name: "Midnight Circuit"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.MatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "p1", resp.Data.PartnershipID)
	require.Len(t, resp.Data.Matches, 1)
	assert.Equal(t, "b1", resp.Data.Matches[0].BrandID)
	assert.Positive(t, resp.Data.Matches[0].Score)
}

func TestMatchInlinePartnership(t *testing.T) {
	cache := &fakeCache{
		view: &syncpkg.SnapshotView{
			Records: []models.BrandRecord{
				{ID: "b1", Name: "Acme Motors", Category: "Automotive", ClientStatus: models.StatusActive},
			},
		},
	}
	router := newTestRouter(cache, &fakeResolver{err: resolve.ErrNotFound})

	body, _ := json.Marshal(MatchRequest{
		Partnership: &models.PartnershipRecord{ID: "p9", Genres: []string{"Action"}},
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", bytes.NewReader(body))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMatchHonorsConfiguredTopK(t *testing.T) {
	var records []models.BrandRecord
	for i := 0; i < 10; i++ {
		records = append(records, models.BrandRecord{
			ID:       fmt.Sprintf("b%02d", i),
			Category: "Automotive",
		})
	}
	cache := &fakeCache{view: &syncpkg.SnapshotView{Records: records}}
	router := NewRouter(
		NewHandler(cache, &fakeResolver{err: resolve.ErrNotFound}, 3),
		config.ServerConfig{RateLimitPerMinute: 0},
	)

	body, _ := json.Marshal(MatchRequest{
		Partnership: &models.PartnershipRecord{ID: "p1", Genres: []string{"Action"}},
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", bytes.NewReader(body))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.MatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Matches, 3)
}

func TestMatchRejectsEmptyRequest(t *testing.T) {
	router := newTestRouter(&fakeCache{}, &fakeResolver{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", bytes.NewReader([]byte(`{}`)))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchCacheNotBuilt(t *testing.T) {
	cache := &fakeCache{viewErr: syncpkg.ErrNotBuilt}
	resolver := &fakeResolver{
		res: &resolve.Resolution{Record: models.PartnershipRecord{ID: "p1"}, Score: 100},
	}
	router := newTestRouter(cache, resolver)

	body, _ := json.Marshal(MatchRequest{Name: "anything"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", bytes.NewReader(body))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDEcho(t *testing.T) {
	router := newTestRouter(&fakeCache{}, &fakeResolver{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	router.ServeHTTP(rec, req)

	assert.Equal(t, "fixed-id", rec.Header().Get(requestIDHeader))
}

func TestHealthDoesNotTouchCache(t *testing.T) {
	// A nil view with no error would panic if Health consulted the cache.
	router := newTestRouter(&fakeCache{viewErr: assert.AnError}, &fakeResolver{err: assert.AnError})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
