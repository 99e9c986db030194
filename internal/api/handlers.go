// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/cinecompass/internal/models"
	"github.com/tomtom215/cinecompass/internal/recommend"
)

// Recommender is the engine surface the handlers use.
// *recommend.Engine implements it.
type Recommender interface {
	SubmitRating(ctx context.Context, userID, movieID int, score float64) (*recommend.RatingResult, error)
	SubmitBatchRatings(ctx context.Context, userID int, inputs []recommend.RatingInput) (*recommend.BatchResult, error)
	GetRecommendations(ctx context.Context, req recommend.RecommendationRequest) (*recommend.RecommendationPage, error)
	GetPopular(ctx context.Context, limit int) ([]models.Movie, bool, error)
	UserRatings(ctx context.Context, userID int) ([]models.Rating, error)
	ImportCatalogue(ctx context.Context, movies []models.Movie) (*recommend.ImportResult, error)
	RebuildCatalogue(ctx context.Context) (*recommend.CatalogueStatus, error)
	CatalogueStatus() recommend.CatalogueStatus
}

// Pinger reports storage connectivity for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the HTTP endpoints.
type Handler struct {
	engine    Recommender
	db        Pinger
	timeout   time.Duration
	startTime time.Time
}

// NewHandler creates a handler. timeout bounds each engine call; zero
// means the request context alone governs cancellation.
func NewHandler(engine Recommender, db Pinger, timeout time.Duration) *Handler {
	return &Handler{
		engine:    engine,
		db:        db,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

func (h *Handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

// HealthLive reports that the process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now(), false)
}

// HealthReady reports 200 once the database answers. An empty catalogue
// still serves the popularity fallback, so it does not block readiness.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbConnected := h.db != nil && h.db.Ping(ctx) == nil
	cat := h.engine.CatalogueStatus()

	status, code := "ready", http.StatusOK
	if !dbConnected {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	respondJSON(w, code, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": dbConnected,
			"catalogue_ready":    cat.Ready,
			"catalogue_version":  cat.Version,
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// NotFound answers unmatched routes with the JSON envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
}

// MethodNotAllowed answers known routes called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
}
