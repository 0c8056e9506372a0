// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package supervisor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandscope/brandscope/internal/logging"
)

// blockingService runs until its context is canceled.
type blockingService struct {
	started atomic.Int32
	stopped atomic.Int32
}

func (s *blockingService) Serve(ctx context.Context) error {
	s.started.Add(1)
	defer s.stopped.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestTreeStartsAndStopsServices(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(), DefaultTreeConfig())

	syncSvc := &blockingService{}
	apiSvc := &blockingService{}
	tree.AddSyncService(syncSvc)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tree.Serve(ctx) }()

	require.Eventually(t, func() bool {
		return syncSvc.started.Load() == 1 && apiSvc.started.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}

	assert.Equal(t, int32(1), syncSvc.stopped.Load())
	assert.Equal(t, int32(1), apiSvc.stopped.Load())
}

func TestTreeRestartsFailedService(t *testing.T) {
	cfg := DefaultTreeConfig()
	cfg.FailureBackoff = 50 * time.Millisecond
	tree := NewTree(logging.NewSlogLogger(), cfg)

	var starts atomic.Int32
	tree.AddSyncService(flakyService{starts: &starts})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = tree.Serve(ctx) }()

	require.Eventually(t, func() bool {
		return starts.Load() >= 2
	}, 5*time.Second, 10*time.Millisecond)
}

// flakyService fails immediately on its first run, then blocks.
type flakyService struct {
	starts *atomic.Int32
}

func (s flakyService) Serve(ctx context.Context) error {
	if s.starts.Add(1) == 1 {
		return assert.AnError
	}
	<-ctx.Done()
	return ctx.Err()
}
