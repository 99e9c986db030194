// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

// Package metrics defines the Prometheus instrumentation for CineCompass.
//
// All collectors are registered with the default registry through promauto
// and exposed by the HTTP server at /metrics. Coverage:
//
//   - DuckDB query latency and errors
//   - API request counts, latency and in-flight requests
//   - Recommendation recomputes, cache replace failures and sync gate decisions
//   - Catalogue build latency, version and size
//   - Circuit breaker state around the rating event publisher
package metrics
