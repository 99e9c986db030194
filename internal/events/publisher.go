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
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cinecompass/internal/metrics"
)

// breakerName labels the publisher's circuit breaker metrics.
const breakerName = "rating_events"

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// NewCircuitBreaker trips after maxFailures consecutive failures and probes
// again after openTimeout. State changes are exported as metrics.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCircuitBreaker(name string, maxFailures uint32, openTimeout time.Duration, logger zerolog.Logger) *gobreaker.CircuitBreaker[struct{}] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}

// RecomputePublisher publishes RatingsSubmitted events. It implements
// recommend.RecomputeScheduler.
type RecomputePublisher struct {
	publisher message.Publisher
	topic     string
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker[struct{}]
	logger    zerolog.Logger
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
}

// NewRecomputePublisher wraps publisher with a circuit breaker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecomputePublisher(publisher message.Publisher, cfg Config, logger zerolog.Logger) *RecomputePublisher {
	logger = logger.With().Str("component", "recompute-publisher").Logger()
	return &RecomputePublisher{
		publisher: publisher,
		topic:     cfg.Topic,
		timeout:   cfg.PublishTimeout,
		breaker:   NewCircuitBreaker(breakerName, cfg.BreakerMaxFailures, cfg.BreakerOpenTimeout, logger),
		logger:    logger,
		now:       time.Now,
	}
}

// ScheduleRecompute publishes one event for userID. An open breaker returns
// gobreaker.ErrOpenState without touching the publisher.
func (p *RecomputePublisher) ScheduleRecompute(ctx context.Context, userID int, trigger string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	event := NewRatingsSubmitted(userID, trigger, p.now())
	msg, err := event.ToMessage()
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publishWithTimeout(ctx, msg)
	})

	switch {
	case err == nil:
		metrics.EventsPublished.WithLabelValues("success").Inc()
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.EventsPublished.WithLabelValues("rejected").Inc()
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		return fmt.Errorf("publish recompute event: %w", err)
	default:
		metrics.EventsPublished.WithLabelValues("failure").Inc()
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return fmt.Errorf("publish recompute event: %w", err)
	}
}

// publishWithTimeout bounds a publish call. Watermill's Publish takes no
// context, so a stuck publish is abandoned after the timeout.
func (p *RecomputePublisher) publishWithTimeout(ctx context.Context, msg *message.Message) error {
	if p.timeout <= 0 {
		return p.publisher.Publish(p.topic, msg)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.publisher.Publish(p.topic, msg) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BreakerState returns the breaker state for health reporting.
func (p *RecomputePublisher) BreakerState() string {
	return p.breaker.State().String()
}

// Close stops accepting events. The underlying publisher is owned by Bus.
func (p *RecomputePublisher) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
