// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinecompass/internal/metrics"
)

// Recomputer recomputes one user's cached recommendations.
type Recomputer interface {
	Recompute(ctx context.Context, userID int, trigger string) error
}

// retryable is implemented by errors that may succeed on redelivery.
type retryable interface {
	Retryable() bool
}

func isRetryable(err error) bool {
	var r retryable
	return errors.As(err, &r) && r.Retryable()
}

// RecomputeWorker consumes rating events and recomputes. It implements
// suture.Service.
type RecomputeWorker struct {
	subscriber message.Subscriber
	topic      string
	workers    int
	timeout    time.Duration
	engine     Recomputer
	trigger    string
	logger     zerolog.Logger

	attemptsMu sync.Mutex
	attempts   map[string]int // message uuid -> deliveries seen
}

// NewRecomputeWorker creates a worker pool of cfg.Workers goroutines.
// timeout bounds each recompute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecomputeWorker(subscriber message.Subscriber, engine Recomputer, cfg Config, timeout time.Duration, trigger string, logger zerolog.Logger) *RecomputeWorker {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &RecomputeWorker{
		subscriber: subscriber,
		topic:      cfg.Topic,
		workers:    workers,
		timeout:    timeout,
		engine:     engine,
		trigger:    trigger,
		logger:     logger.With().Str("component", "recompute-worker").Logger(),
		attempts:   make(map[string]int),
	}
}

// Serve subscribes and processes events until ctx is canceled.
func (w *RecomputeWorker) Serve(ctx context.Context) error {
	messages, err := w.subscriber.Subscribe(ctx, w.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", w.topic, err)
	}
	w.logger.Info().Str("topic", w.topic).Int("workers", w.workers).Msg("recompute worker started")

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range messages {
				w.handle(ctx, msg)
			}
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.New("subscription channel closed")
}

// String names the service in supervisor logs.
func (w *RecomputeWorker) String() string { return "recompute-worker" }

// handle recomputes for one event. Retryable failures are nacked for
// redelivery until MaxDeliveries is reached; everything else is acked.
func (w *RecomputeWorker) handle(ctx context.Context, msg *message.Message) {
	event, err := FromMessage(msg)
	if err != nil {
		metrics.EventsConsumed.WithLabelValues("invalid").Inc()
		w.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed rating event")
		msg.Ack()
		return
	}

	rctx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	err = w.engine.Recompute(rctx, event.UserID, w.trigger)
	if err == nil {
		w.forget(msg.UUID)
		metrics.EventsConsumed.WithLabelValues("success").Inc()
		msg.Ack()
		return
	}

	attempt := w.recordAttempt(msg.UUID)
	if isRetryable(err) && attempt < MaxDeliveries && ctx.Err() == nil {
		metrics.EventsConsumed.WithLabelValues("retry").Inc()
		w.logger.Warn().Err(err).
			Str("event_id", event.EventID).
			Int("user_id", event.UserID).
			Int("attempt", attempt).
			Msg("recompute from event failed, requesting redelivery")
		msg.Nack()
		return
	}

	w.forget(msg.UUID)
	metrics.EventsConsumed.WithLabelValues("failure").Inc()
	w.logger.Warn().Err(err).
		Str("event_id", event.EventID).
		Int("user_id", event.UserID).
		Str("origin", event.Trigger).
		Int("attempt", attempt).
		Msg("recompute from event failed")
	msg.Ack()
}

func (w *RecomputeWorker) recordAttempt(id string) int {
	w.attemptsMu.Lock()
	defer w.attemptsMu.Unlock()
	w.attempts[id]++
	return w.attempts[id]
}

func (w *RecomputeWorker) forget(id string) {
	w.attemptsMu.Lock()
	defer w.attemptsMu.Unlock()
	delete(w.attempts, id)
}
