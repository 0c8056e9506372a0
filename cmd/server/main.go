// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

// Command server runs the Brandscope sponsorship intelligence server: the
// brand cache synchronizer, the fuzzy name resolver, the compatibility
// matcher, and the HTTP API, all under one supervision tree.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/brandscope/brandscope/internal/api"
	"github.com/brandscope/brandscope/internal/config"
	"github.com/brandscope/brandscope/internal/crm"
	"github.com/brandscope/brandscope/internal/events"
	"github.com/brandscope/brandscope/internal/logging"
	"github.com/brandscope/brandscope/internal/resolve"
	"github.com/brandscope/brandscope/internal/store"
	"github.com/brandscope/brandscope/internal/supervisor"
	"github.com/brandscope/brandscope/internal/supervisor/services"
	syncpkg "github.com/brandscope/brandscope/internal/sync"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("events_source", cfg.Events.Source).
		Msg("starting brandscope")

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to close store")
		}
	}()

	client := crm.NewClient(crm.Config{
		BaseURL:        cfg.CRM.BaseURL,
		APIKey:         cfg.CRM.Token,
		RequestTimeout: cfg.CRM.RequestTimeout,
		BucketCapacity: cfg.CRM.RateBurst,
		RefillPerSec:   cfg.CRM.RateLimit,
		Retry:          crm.DefaultRetryPolicy(),
	}, logging.Logger())

	synchronizer := syncpkg.NewSynchronizer(client, store.NewSnapshotStore(db), syncpkg.Config{
		PageSize:          cfg.Sync.PageSize,
		PageDelay:         cfg.Sync.PageDelay,
		MaxPages:          cfg.Sync.MaxPages,
		SizeWarnThreshold: cfg.Sync.SizeWarnThreshold,
		RebuildInterval:   cfg.Sync.RebuildInterval,
	}, logging.Logger())

	resolver := resolve.NewResolver(client, store.NewResolutionStore(db), resolve.Config{
		TTL:             cfg.Resolve.CacheTTL,
		BroadFetchLimit: cfg.Resolve.BroadFetchLimit,
		CallTimeout:     cfg.Resolve.CallTimeout,
	}, logging.Logger())

	subscriber, publisher, err := events.NewSubscriber(events.SubscriberConfig{
		Source:     cfg.Events.Source,
		URL:        cfg.Events.URL,
		Topic:      cfg.Events.Topic,
		QueueGroup: cfg.Events.QueueGroup,
	}, logging.Logger())
	if err != nil {
		return err
	}
	defer func() {
		// The channel transport returns a paired publisher; NATS does not.
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logging.Error().Err(err).Msg("failed to close publisher")
			}
		}
		if err := subscriber.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to close subscriber")
		}
	}()

	consumer := events.NewConsumer(subscriber, synchronizer, events.ConsumerConfig{
		Topic:         cfg.Events.Topic,
		BatchSize:     cfg.Events.BatchSize,
		FlushInterval: cfg.Events.FlushInterval,
	}, logging.Logger())

	handler := api.NewHandler(synchronizer, resolver, cfg.Match.TopK)
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler, cfg.Server),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddSyncService(services.NewRunnerService("sync-loop", synchronizer))
	tree.AddSyncService(services.NewRunnerService("event-consumer", consumer))
	tree.AddAPIService(services.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logging.Info().Msg("brandscope stopped")
	return nil
}
