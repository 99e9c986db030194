// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package main

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinecompass/internal/config"
	"github.com/tomtom215/cinecompass/internal/events"
	"github.com/tomtom215/cinecompass/internal/recommend"
	"github.com/tomtom215/cinecompass/internal/supervisor"
)

// EventComponents holds the async recompute pipeline.
type EventComponents struct {
	Bus       *events.Bus
	Publisher *events.RecomputePublisher
}

// Close stops publishing and closes the bus.
func (c *EventComponents) Close() error {
	c.Publisher.Close()
	return c.Bus.Close()
}

func buildEventsConfig(cfg *config.Config) events.Config {
	e := cfg.Events
	return events.Config{
		Backend:             e.Backend,
		NATSURL:             e.NATSURL,
		Topic:               e.Topic,
		QueueGroup:          e.QueueGroup,
		EmbeddedPort:        e.EmbeddedPort,
		EmbeddedStoreDir:    e.EmbeddedStoreDir,
		Workers:             e.Workers,
		BreakerMaxFailures:  e.BreakerMaxFailures,
		BreakerOpenTimeout:  e.BreakerOpenTimeout,
		PublishTimeout:      e.PublishTimeout,
		SubscriberCloseWait: e.SubscriberCloseWait,
	}
}

// initEvents wires the event bus in async recompute mode and returns nil
// in sync mode. The publisher becomes the engine's scheduler and the worker
// joins the messaging layer.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEvents(cfg *config.Config, engine *recommend.Engine, tree *supervisor.Tree, logger zerolog.Logger) (*EventComponents, error) {
	if cfg.Recommend.RecomputeMode != recommend.RecomputeAsync {
		logger.Info().Msg("synchronous recompute mode, event bus disabled")
		return nil, nil
	}

	ecfg := buildEventsConfig(cfg)
	bus, err := events.NewBus(ecfg, logger)
	if err != nil {
		return nil, err
	}

	publisher := events.NewRecomputePublisher(bus.Publisher, ecfg, logger)
	engine.SetScheduler(publisher)

	worker := events.NewRecomputeWorker(bus.Subscriber, engine, ecfg, cfg.Recommend.RecomputeTimeout, recommend.TriggerEvent, logger)
	tree.AddMessagingService(worker)

	logger.Info().
		Str("backend", bus.Backend()).
		Str("topic", ecfg.Topic).
		Int("workers", ecfg.Workers).
		Msg("rating event bus started")
	return &EventComponents{Bus: bus, Publisher: publisher}, nil
}
