// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/brandscope/brandscope/internal/models"
)

const resolutionKeyPrefix = "resolve:"

// ResolutionEntry is one cached name resolution: the normalized query key,
// the resolved payload, and when it was cached. Badger's per-key TTL
// enforces expiry at the storage layer; CachedAt lets the resolver apply
// its own staleness window independently of storage behavior.
type ResolutionEntry struct {
	Key      string                   `json:"key"`
	Record   models.PartnershipRecord `json:"record"`
	Score    int                      `json:"score"`
	CachedAt time.Time                `json:"cached_at"`
}

// ResolutionStore persists resolution cache entries with a TTL.
type ResolutionStore struct {
	db *badger.DB
}

// NewResolutionStore creates a resolution cache store on the given database.
func NewResolutionStore(db *badger.DB) *ResolutionStore {
	return &ResolutionStore{db: db}
}

// Get returns the entry for a normalized key, or (nil, nil) on a miss.
// Expired entries are misses.
func (s *ResolutionStore) Get(ctx context.Context, key string) (*ResolutionEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *ResolutionEntry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(resolutionKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get resolution entry: %w", err)
		}

		var e ResolutionEntry
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		}); err != nil {
			return fmt.Errorf("decode resolution entry: %w", err)
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Set stores an entry under the normalized key with the given TTL.
func (s *ResolutionStore) Set(ctx context.Context, key string, entry *ResolutionEntry, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal resolution entry: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(resolutionKeyPrefix+key), data).WithTTL(ttl)
		if err := txn.SetEntry(e); err != nil {
			return fmt.Errorf("set resolution entry: %w", err)
		}
		return nil
	})
}

// Delete removes an entry. Invalid cached payloads are deleted so the next
// lookup re-resolves instead of serving partially patched data.
func (s *ResolutionStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(resolutionKeyPrefix + key)); err != nil {
			return fmt.Errorf("delete resolution entry: %w", err)
		}
		return nil
	})
}
