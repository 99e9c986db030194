// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

// Package middleware provides the HTTP middleware chain shared by every route:
//
//   - RequestID: propagates or assigns X-Request-ID and stores it for logging
//   - PrometheusMetrics: request counters, latency histogram, in-flight gauge
//   - AccessLog: one structured zerolog line per request
//
// All middleware use the func(http.Handler) http.Handler shape so they mount
// directly with chi's Use.
package middleware
