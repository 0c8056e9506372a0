// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

// Package store provides the BadgerDB-backed persistence for Brandscope:
// the brand cache snapshot (with its paired generation timestamp) and the
// TTL-bound resolution cache.
package store

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Open opens the BadgerDB database at path. An empty path opens an
// in-memory database, which tests use to avoid filesystem state.
func Open(path string) (*badger.DB, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	// Badger's default logger writes unstructured lines to stderr;
	// silence it and rely on our own logging around store operations.
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}
