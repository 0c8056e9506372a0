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

// Key layout for the snapshot store. The record map and its generation
// timestamp live under paired keys, written in one transaction.
const (
	snapshotKey          = "snapshot:brands"
	snapshotGeneratedKey = "snapshot:brands:generated_at"
)

// SnapshotStore persists the brand cache snapshot.
//
// Writes replace the snapshot wholesale inside a single Badger transaction,
// so readers always observe a record set and a generation timestamp that
// belong together. There is deliberately no cross-process lock around
// writers: concurrent rebuilds resolve by last-writer-wins.
type SnapshotStore struct {
	db *badger.DB
}

// NewSnapshotStore creates a snapshot store on the given database.
func NewSnapshotStore(db *badger.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Get returns the current snapshot, or (nil, nil) when no snapshot has ever
// been built. A never-built cache is distinct from an empty snapshot, which
// comes back non-nil with zero records.
func (s *SnapshotStore) Get(ctx context.Context) (*models.CacheSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snap *models.CacheSnapshot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}

		var records map[string]models.BrandRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &records)
		}); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}

		generatedAt, err := readGeneratedAt(txn)
		if err != nil {
			return err
		}

		snap = &models.CacheSnapshot{Records: records, GeneratedAt: generatedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Set persists the snapshot and stamps its generation time atomically.
func (s *SnapshotStore) Set(ctx context.Context, snap *models.CacheSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(snap.Records)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	stamp, err := snap.GeneratedAt.UTC().MarshalText()
	if err != nil {
		return fmt.Errorf("marshal generation timestamp: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(snapshotKey), data); err != nil {
			return fmt.Errorf("set snapshot: %w", err)
		}
		if err := txn.Set([]byte(snapshotGeneratedKey), stamp); err != nil {
			return fmt.Errorf("set generation timestamp: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

func readGeneratedAt(txn *badger.Txn) (time.Time, error) {
	item, err := txn.Get([]byte(snapshotGeneratedKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get generation timestamp: %w", err)
	}

	var generatedAt time.Time
	if err := item.Value(func(val []byte) error {
		return generatedAt.UnmarshalText(val)
	}); err != nil {
		return time.Time{}, fmt.Errorf("decode generation timestamp: %w", err)
	}
	return generatedAt, nil
}
