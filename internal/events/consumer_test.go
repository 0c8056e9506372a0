// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandscope/brandscope/internal/models"
	syncpkg "github.com/brandscope/brandscope/internal/sync"
)

type fakeReconciler struct {
	mu      sync.Mutex
	batches [][]models.ChangeEvent
	err     error
}

func (f *fakeReconciler) ApplyChanges(_ context.Context, events []models.ChangeEvent) (*syncpkg.ChangeSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, events)
	return &syncpkg.ChangeSummary{Changed: true}, nil
}

func (f *fakeReconciler) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func (f *fakeReconciler) applied() []models.ChangeEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ChangeEvent
	for _, b := range f.batches {
		out = append(out, b...)
	}
	return out
}

func newTestPubSub(t *testing.T) (message.Subscriber, message.Publisher) {
	t.Helper()
	sub, pub, err := NewSubscriber(SubscriberConfig{Source: SourceChannel}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, pub)
	t.Cleanup(func() { _ = sub.Close() })
	return sub, pub
}

func publishChange(t *testing.T, pub message.Publisher, topic string, ev models.ChangeEvent) {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	require.NoError(t, pub.Publish(topic, message.NewMessage(watermill.NewUUID(), payload)))
}

func TestConsumerFlushesFullBatch(t *testing.T) {
	sub, pub := newTestPubSub(t)
	rec := &fakeReconciler{}
	c := NewConsumer(sub, rec, ConsumerConfig{
		Topic:     "crm.changes",
		BatchSize: 2,
		// Long interval so the size trigger is what flushes.
		FlushInterval: time.Minute,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	// GoChannel only delivers to already-open subscriptions.
	time.Sleep(50 * time.Millisecond)
	publishChange(t, pub, "crm.changes", models.ChangeEvent{
		RecordID:   "b1",
		Properties: map[string]string{models.PropClientStatus: "Active"},
	})
	publishChange(t, pub, "crm.changes", models.ChangeEvent{
		RecordID:   "b2",
		Properties: map[string]string{models.PropClientStatus: "Inactive"},
	})

	assert.Eventually(t, func() bool { return rec.batchCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	applied := rec.applied()
	require.Len(t, applied, 2)
	assert.Equal(t, "b1", applied[0].RecordID)
	assert.Equal(t, "b2", applied[1].RecordID)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestConsumerFlushesPartialBatchOnInterval(t *testing.T) {
	sub, pub := newTestPubSub(t)
	rec := &fakeReconciler{}
	c := NewConsumer(sub, rec, ConsumerConfig{
		Topic:         "crm.changes",
		BatchSize:     100,
		FlushInterval: 30 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	publishChange(t, pub, "crm.changes", models.ChangeEvent{RecordID: "b1"})

	assert.Eventually(t, func() bool { return rec.batchCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Len(t, rec.applied(), 1)
}

func TestConsumerFlushesPendingOnShutdown(t *testing.T) {
	sub, pub := newTestPubSub(t)
	rec := &fakeReconciler{}
	c := NewConsumer(sub, rec, ConsumerConfig{
		Topic:         "crm.changes",
		BatchSize:     100,
		FlushInterval: time.Minute,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	publishChange(t, pub, "crm.changes", models.ChangeEvent{RecordID: "b1"})
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 1, rec.batchCount())
}

func TestConsumerDropsMalformedMessages(t *testing.T) {
	sub, pub := newTestPubSub(t)
	rec := &fakeReconciler{}
	c := NewConsumer(sub, rec, ConsumerConfig{
		Topic:         "crm.changes",
		BatchSize:     3,
		FlushInterval: time.Minute,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, pub.Publish("crm.changes", message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	// Valid JSON but no record ID is equally useless.
	require.NoError(t, pub.Publish("crm.changes", message.NewMessage(watermill.NewUUID(), []byte(`{"properties":{}}`))))
	publishChange(t, pub, "crm.changes", models.ChangeEvent{RecordID: "b1"})

	assert.Eventually(t, func() bool { return rec.batchCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	applied := rec.applied()
	require.Len(t, applied, 1)
	assert.Equal(t, "b1", applied[0].RecordID)
}

func TestConsumerNacksBatchOnReconcileFailure(t *testing.T) {
	sub, pub := newTestPubSub(t)
	rec := &fakeReconciler{err: errors.New("snapshot write failed")}
	c := NewConsumer(sub, rec, ConsumerConfig{
		Topic:         "crm.changes",
		BatchSize:     1,
		FlushInterval: time.Minute,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)

	payload, err := json.Marshal(models.ChangeEvent{RecordID: "b1"})
	require.NoError(t, err)
	msg := message.NewMessage(watermill.NewUUID(), payload)
	require.NoError(t, pub.Publish("crm.changes", msg))

	// A nacked message on GoChannel is redelivered; once the reconciler
	// recovers, the same event applies.
	time.Sleep(100 * time.Millisecond)
	rec.mu.Lock()
	rec.err = nil
	rec.mu.Unlock()

	assert.Eventually(t, func() bool { return rec.batchCount() >= 1 }, 5*time.Second, 20*time.Millisecond)
	applied := rec.applied()
	require.NotEmpty(t, applied)
	assert.Equal(t, "b1", applied[0].RecordID)
}

func TestNewSubscriberRejectsUnknownSource(t *testing.T) {
	_, _, err := NewSubscriber(SubscriberConfig{Source: "kafka"}, zerolog.Nop())
	assert.Error(t, err)
}
