// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package store

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandscope/brandscope/internal/models"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSnapshotStoreNeverBuilt(t *testing.T) {
	s := NewSnapshotStore(openTestDB(t))

	snap, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	s := NewSnapshotStore(openTestDB(t))
	ctx := context.Background()

	generated := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	snap := models.NewCacheSnapshot(generated)
	snap.Records["b1"] = models.BrandRecord{
		ID: "b1", Name: "Acme Motors", Category: "Automotive",
		ClientStatus: models.StatusActive, PartnershipCount: 12,
	}

	require.NoError(t, s.Set(ctx, snap))

	got, err := s.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap.Records, got.Records)
	assert.True(t, got.GeneratedAt.Equal(generated))
}

func TestSnapshotStoreEmptyIsNotNeverBuilt(t *testing.T) {
	s := NewSnapshotStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, models.NewCacheSnapshot(time.Now())))

	got, err := s.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Records)
}

func TestSnapshotStoreReplaceWholesale(t *testing.T) {
	s := NewSnapshotStore(openTestDB(t))
	ctx := context.Background()

	first := models.NewCacheSnapshot(time.Now())
	first.Records["b1"] = models.BrandRecord{ID: "b1"}
	first.Records["b2"] = models.BrandRecord{ID: "b2"}
	require.NoError(t, s.Set(ctx, first))

	second := models.NewCacheSnapshot(time.Now())
	second.Records["b3"] = models.BrandRecord{ID: "b3"}
	require.NoError(t, s.Set(ctx, second))

	got, err := s.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotContains(t, got.Records, "b1")
	assert.Contains(t, got.Records, "b3")
}

func TestSnapshotStoreCanceledContext(t *testing.T) {
	s := NewSnapshotStore(openTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, models.NewCacheSnapshot(time.Now())), context.Canceled)
}

func TestResolutionStoreMiss(t *testing.T) {
	s := NewResolutionStore(openTestDB(t))

	entry, err := s.Get(context.Background(), "17 sundays")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestResolutionStoreRoundTrip(t *testing.T) {
	s := NewResolutionStore(openTestDB(t))
	ctx := context.Background()

	cached := time.Now().UTC().Truncate(time.Second)
	entry := &ResolutionEntry{
		Key: "17 sundays",
		Record: models.PartnershipRecord{
			ID: "p1", Name: "17 Sundays", Genres: []string{"Drama"},
		},
		Score:    100,
		CachedAt: cached,
	}
	require.NoError(t, s.Set(ctx, "17 sundays", entry, 3*time.Hour))

	got, err := s.Get(ctx, "17 sundays")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.Record.ID)
	assert.Equal(t, 100, got.Score)
	assert.True(t, got.CachedAt.Equal(cached))

	// Keys are exact; a different normalized name is a miss.
	other, err := s.Get(ctx, "17 sundays aka the land")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestResolutionStoreExpiry(t *testing.T) {
	s := NewResolutionStore(openTestDB(t))
	ctx := context.Background()

	entry := &ResolutionEntry{Key: "k", Record: models.PartnershipRecord{ID: "p1", Name: "X"}}
	require.NoError(t, s.Set(ctx, "k", entry, 50*time.Millisecond))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Eventually(t, func() bool {
		got, err := s.Get(ctx, "k")
		return err == nil && got == nil
	}, 2*time.Second, 20*time.Millisecond)
}

func TestResolutionStoreDelete(t *testing.T) {
	s := NewResolutionStore(openTestDB(t))
	ctx := context.Background()

	entry := &ResolutionEntry{Key: "k", Record: models.PartnershipRecord{ID: "p1", Name: "X"}}
	require.NoError(t, s.Set(ctx, "k", entry, time.Hour))
	require.NoError(t, s.Delete(ctx, "k"))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an absent key is not an error.
	assert.NoError(t, s.Delete(ctx, "missing"))
}
