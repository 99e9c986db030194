// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cinecompass/internal/middleware"
)

// Router wires handlers and middleware into a Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware config uses the defaults.
func NewRouter(handler *Handler, cfg *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(cfg),
	}
}

// Setup builds the HTTP handler tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(router.handler.NotFound)
	r.MethodNotAllowed(router.handler.MethodNotAllowed)

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/ratings", router.handler.UserRatings)
			r.Post("/ratings", router.handler.SubmitRating)
			r.Post("/ratings/batch", router.handler.SubmitBatchRatings)
			r.Get("/recommendations", router.handler.GetRecommendations)
		})

		r.Get("/movies/popular", router.handler.GetPopular)

		r.Route("/catalogue", func(r chi.Router) {
			r.Get("/status", router.handler.CatalogueStatus)
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitCatalogue())
				r.Post("/movies", router.handler.ImportCatalogue)
				r.Post("/rebuild", router.handler.RebuildCatalogue)
			})
		})
	})

	return r
}
