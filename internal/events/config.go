// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package events

import (
	"fmt"
	"time"
)

// Backends.
const (
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
	BackendEmbedded  = "embedded"
)

// StreamName is the JetStream stream holding rating events.
const StreamName = "RATINGS"

// MaxDeliveries caps how often one rating event is handed to a worker.
const MaxDeliveries = 3

// Config configures the event bus, publisher and workers.
type Config struct {
	Backend    string
	NATSURL    string
	Topic      string
	QueueGroup string

	// Embedded server settings, used by BackendEmbedded.
	EmbeddedPort     int
	EmbeddedStoreDir string

	Workers int

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration

	PublishTimeout      time.Duration
	SubscriberCloseWait time.Duration
}

// DefaultConfig returns an in-process bus with four workers.
func DefaultConfig() Config {
	return Config{
		Backend:             BackendGoChannel,
		NATSURL:             "nats://127.0.0.1:4222",
		Topic:               "ratings.submitted",
		QueueGroup:          "recompute-workers",
		EmbeddedPort:        4222,
		Workers:             4,
		BreakerMaxFailures:  5,
		BreakerOpenTimeout:  30 * time.Second,
		PublishTimeout:      5 * time.Second,
		SubscriberCloseWait: 10 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendGoChannel, BackendNATS, BackendEmbedded:
	default:
		return fmt.Errorf("unknown event backend %q", c.Backend)
	}
	if c.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.BreakerMaxFailures < 1 {
		return fmt.Errorf("breaker_max_failures must be at least 1")
	}
	if c.Backend != BackendGoChannel && c.QueueGroup == "" {
		return fmt.Errorf("queue_group is required for the %s backend", c.Backend)
	}
	return nil
}
