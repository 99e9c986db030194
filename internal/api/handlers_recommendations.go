// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinecompass/internal/logging"
	"github.com/tomtom215/cinecompass/internal/models"
	"github.com/tomtom215/cinecompass/internal/recommend"
)

// GetRecommendations handles GET /api/v1/users/{userID}/recommendations.
//
// Query parameters:
//   - page: 1-based page number (default 1)
//   - page_size: items per page (default and maximum from configuration)
//   - last_sync_time: client's last sync, RFC 3339 or unix seconds
//
// When the client is behind the server the response has needs_sync=true,
// no items, and the ratings the client is missing.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, perr := userIDParam(r)
	if perr != nil {
		respondError(w, r, perr.status, perr.code, perr.message, nil)
		return
	}
	page, perr := intQuery(r, "page", 0)
	if perr != nil {
		respondError(w, r, perr.status, ErrCodeValidation, perr.message, nil)
		return
	}
	pageSize, perr := intQuery(r, "page_size", 0)
	if perr != nil {
		respondError(w, r, perr.status, ErrCodeValidation, perr.message, nil)
		return
	}
	lastSync, err := parseSyncTime(r.URL.Query().Get("last_sync_time"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()
	ctx = logging.ContextWithUserID(ctx, userID)

	res, err := h.engine.GetRecommendations(ctx, recommend.RecommendationRequest{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
		LastSync: lastSync,
	})
	if err != nil {
		respondEngineError(w, r.WithContext(ctx), err)
		return
	}
	respondSuccess(w, http.StatusOK, res, start, false)
}

// GetPopular handles GET /api/v1/movies/popular?limit=N.
// limit defaults to 10 and is clamped to [1, 100] by the engine.
func (h *Handler) GetPopular(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, perr := intQuery(r, "limit", recommend.DefaultPopularLimit)
	if perr != nil {
		respondError(w, r, perr.status, ErrCodeValidation, perr.message, nil)
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	movies, cached, err := h.engine.GetPopular(ctx, limit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	out := make([]models.PopularMovie, len(movies))
	for i := range movies {
		out[i] = models.ToPopular(movies[i])
	}
	respondSuccess(w, http.StatusOK, out, start, cached)
}
