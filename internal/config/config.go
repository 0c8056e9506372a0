// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

// Package config loads and validates Brandscope configuration.
//
// Configuration is layered with Koanf v2: built-in defaults first, then an
// optional YAML file, then environment variables. Later layers override
// earlier ones, so a deployment can run entirely from env vars or entirely
// from a file.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the Brandscope server.
type Config struct {
	CRM     CRMConfig     `koanf:"crm"`
	Sync    SyncConfig    `koanf:"sync"`
	Resolve ResolveConfig `koanf:"resolve"`
	Match   MatchConfig   `koanf:"match"`
	Events  EventsConfig  `koanf:"events"`
	Store   StoreConfig   `koanf:"store"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// CRMConfig configures the upstream CRM client.
type CRMConfig struct {
	// BaseURL is the CRM API root, e.g. https://api.hubapi.com.
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// Token is the private-app bearer token.
	Token string `koanf:"token" validate:"required"`

	// RequestTimeout bounds a single HTTP round trip.
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`

	// RateLimit is the sustained request rate per second.
	RateLimit float64 `koanf:"rate_limit" validate:"gt=0"`

	// RateBurst is the token bucket capacity.
	RateBurst int `koanf:"rate_burst" validate:"gte=1"`
}

// SyncConfig configures the brand cache synchronizer.
type SyncConfig struct {
	// PageSize is the number of records requested per CRM page.
	PageSize int `koanf:"page_size" validate:"gte=1,lte=200"`

	// PageDelay is the pause between pages during a full rebuild.
	PageDelay time.Duration `koanf:"page_delay" validate:"gte=0"`

	// MaxPages caps a single rebuild as a runaway-pagination guard.
	MaxPages int `koanf:"max_pages" validate:"gte=1"`

	// SizeWarnThreshold triggers a non-fatal warning when a rebuilt
	// snapshot exceeds this many records.
	SizeWarnThreshold int `koanf:"size_warn_threshold" validate:"gte=1"`

	// RebuildInterval is the period of the background full-rebuild loop.
	// Zero disables periodic rebuilds.
	RebuildInterval time.Duration `koanf:"rebuild_interval" validate:"gte=0"`
}

// ResolveConfig configures the fuzzy entity resolver.
type ResolveConfig struct {
	// CacheTTL bounds how long a resolution result is served from cache.
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gt=0"`

	// BroadFetchLimit is the record count fetched by the last-resort
	// broad scan stage.
	BroadFetchLimit int `koanf:"broad_fetch_limit" validate:"gte=1,lte=200"`

	// CallTimeout bounds each cascade stage's remote call.
	CallTimeout time.Duration `koanf:"call_timeout" validate:"gt=0"`
}

// MatchConfig configures the compatibility scorer.
type MatchConfig struct {
	// TopK is the maximum number of matches returned per partnership.
	TopK int `koanf:"top_k" validate:"gte=1"`
}

// EventsConfig configures the change-event subscriber.
type EventsConfig struct {
	// Source selects the transport: "channel" (in-process) or "nats".
	Source string `koanf:"source" validate:"oneof=channel nats"`

	// URL is the NATS server URL. Required when Source is "nats".
	URL string `koanf:"url"`

	// Topic carries CRM change events.
	Topic string `koanf:"topic" validate:"required"`

	// QueueGroup distributes events across subscriber instances.
	QueueGroup string `koanf:"queue_group"`

	// BatchSize is the number of events reconciled per batch.
	BatchSize int `koanf:"batch_size" validate:"gte=1"`

	// FlushInterval bounds how long a partial batch may wait.
	FlushInterval time.Duration `koanf:"flush_interval" validate:"gt=0"`
}

// StoreConfig configures the embedded Badger store.
type StoreConfig struct {
	// Path is the Badger data directory. Empty selects in-memory mode,
	// which is only suitable for tests.
	Path string `koanf:"path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"gte=1,lte=65535"`

	// ReadTimeout and WriteTimeout bound request handling.
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// RateLimitPerMinute caps requests per client IP. Zero disables.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute" validate:"gte=0"`

	// CORSOrigins lists allowed origins. Empty denies cross-origin use.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// defaultConfig returns a Config with all defaults applied. Defaults are the
// lowest-priority layer; file and env values override them.
func defaultConfig() *Config {
	return &Config{
		CRM: CRMConfig{
			BaseURL:        "https://api.hubapi.com",
			RequestTimeout: 30 * time.Second,
			RateLimit:      4,
			RateBurst:      4,
		},
		Sync: SyncConfig{
			PageSize:          100,
			PageDelay:         300 * time.Millisecond,
			MaxPages:          50,
			SizeWarnThreshold: 500,
			RebuildInterval:   6 * time.Hour,
		},
		Resolve: ResolveConfig{
			CacheTTL:        3 * time.Hour,
			BroadFetchLimit: 100,
			CallTimeout:     15 * time.Second,
		},
		Match: MatchConfig{
			TopK: 30,
		},
		Events: EventsConfig{
			Source:        "channel",
			URL:           "nats://127.0.0.1:4222",
			Topic:         "crm.changes",
			QueueGroup:    "brandscope",
			BatchSize:     100,
			FlushInterval: 5 * time.Second,
		},
		Store: StoreConfig{
			Path: "/data/brandscope",
		},
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8480,
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       30 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			RateLimitPerMinute: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for structural and cross-field errors.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Events.Source == "nats" && c.Events.URL == "" {
		return fmt.Errorf("events.url is required when events.source is nats")
	}
	if c.Sync.PageSize > c.Sync.SizeWarnThreshold {
		return fmt.Errorf("sync.page_size (%d) must not exceed sync.size_warn_threshold (%d)",
			c.Sync.PageSize, c.Sync.SizeWarnThreshold)
	}
	return nil
}
