// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package api

import (
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinecompass/internal/models"
	"github.com/tomtom215/cinecompass/internal/recommend"
)

// Request body limits.
const (
	maxRatingBodyBytes    = 1 << 20
	maxCatalogueBodyBytes = 32 << 20
)

// RatingRequest is the body of POST /users/{userID}/ratings.
// Rating is a pointer so that a missing score is distinct from 0.
type RatingRequest struct {
	MovieID int      `json:"movie_id" validate:"required,gt=0"`
	Rating  *float64 `json:"rating" validate:"required,rating"`
}

// BatchRatingRequest is the body of POST /users/{userID}/ratings/batch.
// Entries are not validated here; the engine rejects bad entries one by one
// and enforces the batch size.
type BatchRatingRequest struct {
	Ratings []recommend.RatingInput `json:"ratings" validate:"required,min=1"`
}

// ImportCatalogueRequest is the body of POST /catalogue/movies.
type ImportCatalogueRequest struct {
	Movies []models.Movie `json:"movies" validate:"required,min=1,max=5000,dive"`
}

// requestError is a malformed request that never reached the engine.
type requestError struct {
	status  int
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(format string, args ...interface{}) *requestError {
	return &requestError{status: http.StatusBadRequest, code: ErrCodeBadRequest, message: fmt.Sprintf(format, args...)}
}

// decodeJSON reads a single JSON object from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) *requestError {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return &requestError{status: http.StatusUnsupportedMediaType, code: ErrCodeUnsupportedContent, message: "Content-Type must be application/json"}
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &requestError{status: http.StatusRequestEntityTooLarge, code: ErrCodeRequestTooLarge, message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
		}
		return badRequest("invalid JSON body: %v", err)
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

// userIDParam parses the {userID} path parameter.
func userIDParam(r *http.Request) (int, *requestError) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, &requestError{status: http.StatusBadRequest, code: ErrCodeInvalidUserID, message: fmt.Sprintf("invalid user id %q", raw)}
	}
	return id, nil
}

// intQuery parses an optional integer query parameter. Absent means def.
func intQuery(r *http.Request, name string, def int) (int, *requestError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// parseSyncTime accepts RFC 3339 or unix seconds, optionally fractional.
func parseSyncTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return &t, nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return nil, fmt.Errorf("last_sync_time must be RFC 3339 or unix seconds, got %q", raw)
	}
	whole, frac := math.Modf(secs)
	t := time.Unix(int64(whole), int64(frac*1e9)).UTC()
	return &t, nil
}
