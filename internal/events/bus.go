// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Bus owns the Watermill publisher and subscriber for one backend.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	backend string
	server  *EmbeddedServer
}

// NewBus opens the configured backend. For the embedded backend the NATS
// server is started first and shut down by Close.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg Config, logger zerolog.Logger) (*Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid events config: %w", err)
	}
	wmLogger := NewLoggerAdapter(logger.With().Str("component", "events").Logger())

	switch cfg.Backend {
	case BackendGoChannel:
		gc := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1024}, wmLogger)
		return &Bus{Publisher: gc, Subscriber: gc, backend: cfg.Backend}, nil

	case BackendEmbedded:
		srv, err := StartEmbeddedServer(cfg.EmbeddedPort, cfg.EmbeddedStoreDir)
		if err != nil {
			return nil, err
		}
		cfg.NATSURL = srv.ClientURL()
		bus, err := newNATSBus(cfg, wmLogger)
		if err != nil {
			srv.Shutdown()
			return nil, err
		}
		bus.server = srv
		return bus, nil

	default:
		return newNATSBus(cfg, wmLogger)
	}
}

func newNATSBus(cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ensureStream(ctx, cfg.NATSURL, cfg.Topic); err != nil {
		return nil, err
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: cfg.Workers,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     cfg.SubscriberCloseWait,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(StreamName),
				natsgo.MaxDeliver(MaxDeliveries),
				natsgo.AckWait(30 * time.Second),
				natsgo.DeliverNew(),
			},
			DurablePrefix: cfg.QueueGroup,
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	return &Bus{Publisher: pub, Subscriber: sub, backend: cfg.Backend}, nil
}

// Backend returns the configured backend name.
func (b *Bus) Backend() string { return b.backend }

// Close closes the publisher, the subscriber and any embedded server.
func (b *Bus) Close() error {
	var errs []error
	if err := b.Publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if b.backend != BackendGoChannel {
		if err := b.Subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	if b.server != nil {
		b.server.Shutdown()
	}
	return errors.Join(errs...)
}
