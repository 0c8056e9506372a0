// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/brandscope/brandscope/internal/models"
	syncpkg "github.com/brandscope/brandscope/internal/sync"
)

// Reconciler applies a change batch to the brand snapshot. Satisfied by
// *sync.Synchronizer.
type Reconciler interface {
	ApplyChanges(ctx context.Context, events []models.ChangeEvent) (*syncpkg.ChangeSummary, error)
}

// ConsumerConfig tunes batching.
type ConsumerConfig struct {
	Topic string

	// BatchSize flushes a batch when this many events have accumulated.
	BatchSize int

	// FlushInterval flushes a partial batch after this long.
	FlushInterval time.Duration
}

func (c ConsumerConfig) withDefaults() ConsumerConfig {
	if c.Topic == "" {
		c.Topic = "crm.changes"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 5 * time.Second
	}
	return c
}

// Consumer batches change messages off the subscriber and reconciles them.
type Consumer struct {
	subscriber message.Subscriber
	reconciler Reconciler
	cfg        ConsumerConfig
	logger     zerolog.Logger
}

// NewConsumer creates an event consumer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewConsumer(subscriber message.Subscriber, reconciler Reconciler, cfg ConsumerConfig, logger zerolog.Logger) *Consumer {
	return &Consumer{
		subscriber: subscriber,
		reconciler: reconciler,
		cfg:        cfg.withDefaults(),
		logger:     logger.With().Str("component", "events").Logger(),
	}
}

// Run consumes until the context is canceled. Shaped for supervision.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.subscriber.Subscribe(ctx, c.cfg.Topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", c.cfg.Topic, err)
	}

	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	var pending []*message.Message
	for {
		select {
		case <-ctx.Done():
			c.flush(context.WithoutCancel(ctx), pending)
			return ctx.Err()

		case msg, ok := <-msgs:
			if !ok {
				c.flush(context.WithoutCancel(ctx), pending)
				return nil
			}
			pending = append(pending, msg)
			if len(pending) >= c.cfg.BatchSize {
				c.flush(ctx, pending)
				pending = nil
			}

		case <-ticker.C:
			if len(pending) > 0 {
				c.flush(ctx, pending)
				pending = nil
			}
		}
	}
}

// flush reconciles one batch. Every message in the batch is acked only
// after a successful apply; a failed apply nacks all of them for
// redelivery (reconciliation is idempotent, so redelivery is safe).
// Malformed messages are acked and dropped: they would never become valid.
func (c *Consumer) flush(ctx context.Context, msgs []*message.Message) {
	if len(msgs) == 0 {
		return
	}

	batch := make([]models.ChangeEvent, 0, len(msgs))
	valid := make([]*message.Message, 0, len(msgs))
	for _, msg := range msgs {
		var ev models.ChangeEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil || ev.RecordID == "" {
			c.logger.Warn().
				Str("message_id", msg.UUID).
				Msg("dropping malformed change event")
			msg.Ack()
			continue
		}
		batch = append(batch, ev)
		valid = append(valid, msg)
	}
	if len(batch) == 0 {
		return
	}

	summary, err := c.reconciler.ApplyChanges(ctx, batch)
	if err != nil {
		c.logger.Error().Err(err).Int("events", len(batch)).Msg("event batch reconciliation failed")
		for _, msg := range valid {
			msg.Nack()
		}
		return
	}

	for _, msg := range valid {
		msg.Ack()
	}
	c.logger.Debug().
		Int("events", len(batch)).
		Bool("changed", summary.Changed).
		Msg("event batch applied")
}
