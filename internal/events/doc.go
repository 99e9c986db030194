// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

/*
Package events carries recompute requests from the rating write path to
background workers over Watermill.

Three backends are supported:

  - gochannel: in-process pub/sub, no persistence
  - nats: an external NATS server with JetStream
  - embedded: an in-process nats-server with JetStream, stored on disk

RecomputePublisher implements recommend.RecomputeScheduler. Publishing runs
through a gobreaker circuit breaker; when the breaker is open or a publish
fails the engine falls back to a synchronous recompute.

RecomputeWorker subscribes to the topic and calls Recompute for every event.
Events are always acked: a failed recompute is retried by the next read of
the user's recommendations, which sees a stale cache.
*/
package events
