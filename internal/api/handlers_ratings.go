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
	"github.com/tomtom215/cinecompass/internal/validation"
)

// SubmitRating handles POST /api/v1/users/{userID}/ratings.
func (h *Handler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, perr := userIDParam(r)
	if perr != nil {
		respondError(w, r, perr.status, perr.code, perr.message, nil)
		return
	}

	var req RatingRequest
	if perr := decodeJSON(w, r, maxRatingBodyBytes, &req); perr != nil {
		respondError(w, r, perr.status, perr.code, perr.message, nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondAPIError(w, r, http.StatusBadRequest, verr.ToAPIError())
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()
	ctx = logging.ContextWithUserID(ctx, userID)

	res, err := h.engine.SubmitRating(ctx, userID, req.MovieID, *req.Rating)
	if err != nil {
		respondEngineError(w, r.WithContext(ctx), err)
		return
	}
	respondSuccess(w, http.StatusOK, res, start, false)
}

// SubmitBatchRatings handles POST /api/v1/users/{userID}/ratings/batch.
func (h *Handler) SubmitBatchRatings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, perr := userIDParam(r)
	if perr != nil {
		respondError(w, r, perr.status, perr.code, perr.message, nil)
		return
	}

	var req BatchRatingRequest
	if perr := decodeJSON(w, r, maxRatingBodyBytes, &req); perr != nil {
		respondError(w, r, perr.status, perr.code, perr.message, nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondAPIError(w, r, http.StatusBadRequest, verr.ToAPIError())
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()
	ctx = logging.ContextWithUserID(ctx, userID)

	res, err := h.engine.SubmitBatchRatings(ctx, userID, req.Ratings)
	if err != nil {
		respondEngineError(w, r.WithContext(ctx), err)
		return
	}
	respondSuccess(w, http.StatusOK, res, start, false)
}

// UserRatings handles GET /api/v1/users/{userID}/ratings.
func (h *Handler) UserRatings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, perr := userIDParam(r)
	if perr != nil {
		respondError(w, r, perr.status, perr.code, perr.message, nil)
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	ratings, err := h.engine.UserRatings(ctx, userID)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"ratings": ratings,
		"total":   len(ratings),
	}, start, false)
}
