// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinecompass/internal/logging"
	"github.com/tomtom215/cinecompass/internal/models"
	"github.com/tomtom215/cinecompass/internal/recommend"
	"github.com/tomtom215/cinecompass/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeInvalidUserID      = "INVALID_USER_ID"
	ErrCodeBatchSizeExceeded  = "BATCH_SIZE_EXCEEDED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeRebuildInProgress  = "REBUILD_IN_PROGRESS"
	ErrCodeEmptyCatalogue     = "EMPTY_CATALOGUE"
	ErrCodeCacheTransaction   = "CACHE_TRANSACTION_FAILED"
	ErrCodeUnavailable        = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	ErrCodeUnsupportedContent = "UNSUPPORTED_MEDIA_TYPE"
)

// retryAfterSeconds is advertised on retryable 503 responses.
const retryAfterSeconds = "1"

// respondJSON writes response with the given status.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, start time.Time, cached bool) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	})
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	respondAPIError(w, r, status, &models.APIError{Code: code, Message: message, Details: details})
}

func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError) {
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Str("code", apiErr.Code).Str("message", apiErr.Message).Msg("API error")
	}
	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: apiErr,
	})
}

// respondEngineError maps err to a status and error code and writes it.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := errorStatus(err)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")
	}
	respondAPIError(w, r, status, apiErr)
}

// errorStatus maps engine and validation errors to HTTP responses.
// Internal failures never leak their cause to the client.
func errorStatus(err error) (int, *models.APIError) {
	var (
		verr  *validation.RequestValidationError
		batch *recommend.BatchSizeError
		item  *recommend.UnknownItemError
		empty *recommend.EmptyCorpusError
		cache *recommend.CacheTransactionError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.ToAPIError()
	case errors.As(err, &batch):
		return http.StatusBadRequest, &models.APIError{
			Code:    ErrCodeBatchSizeExceeded,
			Message: batch.Error(),
			Details: map[string]interface{}{"size": batch.Size, "max": batch.Max},
		}
	case errors.As(err, &item):
		return http.StatusNotFound, &models.APIError{
			Code:    ErrCodeNotFound,
			Message: item.Error(),
			Details: map[string]interface{}{"movie_id": item.MovieID},
		}
	case errors.Is(err, recommend.ErrInvalidScore), errors.Is(err, recommend.ErrInvalidPage):
		return http.StatusBadRequest, &models.APIError{Code: ErrCodeValidation, Message: err.Error()}
	case errors.Is(err, recommend.ErrRebuildInProgress):
		return http.StatusConflict, &models.APIError{Code: ErrCodeRebuildInProgress, Message: err.Error()}
	case errors.As(err, &empty):
		return http.StatusConflict, &models.APIError{
			Code:    ErrCodeEmptyCatalogue,
			Message: "catalogue has no movies to build features from",
			Details: map[string]interface{}{"items": empty.Items},
		}
	case errors.As(err, &cache):
		return http.StatusServiceUnavailable, &models.APIError{
			Code:    ErrCodeCacheTransaction,
			Message: "recommendations could not be refreshed, retry shortly",
			Details: map[string]interface{}{"user_id": cache.UserID, "retryable": cache.Retryable()},
		}
	case errors.Is(err, recommend.ErrCatalogueUnavailable):
		return http.StatusServiceUnavailable, &models.APIError{Code: ErrCodeUnavailable, Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, &models.APIError{Code: ErrCodeTimeout, Message: "request timed out"}
	default:
		return http.StatusInternalServerError, &models.APIError{Code: ErrCodeInternal, Message: "internal server error"}
	}
}
