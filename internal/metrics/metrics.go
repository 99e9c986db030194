// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Recommendation Metrics
	RecomputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_recompute_duration_seconds",
			Help:    "Duration of per-user recommendation recomputes",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"trigger"},
	)

	RecomputeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_recompute_total",
			Help: "Total number of recomputes by trigger and result",
		},
		[]string{"trigger", "result"},
	)

	CacheReplaceFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_replace_failures_total",
			Help: "Total number of rolled back recommendation cache replaces",
		},
	)

	SyncGateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_sync_gate_total",
			Help: "Sync gate decisions on reads",
		},
		[]string{"decision"}, // "fresh", "needs_sync", "needs_recompute", "fallback"
	)

	DiversityBlends = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_diversity_blends_total",
			Help: "Total number of pages blended with diversity alternates",
		},
	)

	// Catalogue Metrics
	CatalogueBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalogue_build_duration_seconds",
			Help:    "Duration of feature catalogue builds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	CatalogueVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalogue_version",
			Help: "Version of the live feature catalogue",
		},
	)

	CatalogueItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalogue_items",
			Help: "Number of items in the live feature catalogue",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_events_published_total",
			Help: "Total number of rating events published",
		},
		[]string{"result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_events_consumed_total",
			Help: "Total number of rating events consumed",
		},
		[]string{"result"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecompute records a per-user recompute.
func RecordRecompute(trigger string, duration time.Duration, err error) {
	RecomputeDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "failure"
	}
	RecomputeTotal.WithLabelValues(trigger, result).Inc()
}

// RecordCatalogueBuild records a completed catalogue build.
func RecordCatalogueBuild(version int64, items int, duration time.Duration) {
	CatalogueBuildDuration.Observe(duration.Seconds())
	CatalogueVersion.Set(float64(version))
	CatalogueItems.Set(float64(items))
}

// RecordSyncDecision counts a sync gate outcome.
func RecordSyncDecision(decision string) {
	SyncGateDecisions.WithLabelValues(decision).Inc()
}
