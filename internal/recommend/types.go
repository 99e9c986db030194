// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package recommend

import (
	"time"

	"github.com/tomtom215/cinecompass/internal/models"
)

// Recompute triggers, used as metric labels and in logs.
const (
	TriggerRating    = "rating"
	TriggerBatch     = "batch"
	TriggerStaleRead = "stale_read"
	TriggerRetry     = "retry"
	TriggerEvent     = "event"
	TriggerManual    = "manual"
)

// RecommendationRequest is the input of GetRecommendations.
type RecommendationRequest struct {
	UserID   int
	Page     int
	PageSize int

	// LastSync is the client's last synchronization time, if known.
	LastSync *time.Time
}

// NewRating is a rating newer than the client's last sync.
type NewRating struct {
	MovieID   int       `json:"movie_id"`
	Rating    float64   `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// RecommendationPage is one page of a user's recommendations.
//
// NeedsSync is set when the client holds ratings older than the server's;
// Items is then empty and NewRatings lists what changed. NeedsRecompute is
// set when the cache was built for an older catalogue and a recompute has
// been scheduled.
type RecommendationPage struct {
	Items            []models.RecommendationItem `json:"items"`
	Total            int                         `json:"total"`
	Page             int                         `json:"page"`
	PageSize         int                         `json:"page_size"`
	NeedsSync        bool                        `json:"needs_sync"`
	NewRatings       []NewRating                 `json:"new_ratings,omitempty"`
	NeedsRecompute   bool                        `json:"needs_recompute,omitempty"`
	CatalogueVersion int64                       `json:"catalogue_version"`
	Diversified      bool                        `json:"diversified"`
	Fallback         string                      `json:"fallback,omitempty"`
}

// RatingInput is one entry of a batch submission.
type RatingInput struct {
	MovieID int     `json:"movie_id" validate:"required,gt=0"`
	Rating  float64 `json:"rating" validate:"gte=0,lte=5"`
}

// RatingResult is the outcome of SubmitRating.
type RatingResult struct {
	Status     string `json:"status"`
	Recomputed bool   `json:"recomputed"`
}

// RejectedRating explains why a batch entry was not stored.
type RejectedRating struct {
	MovieID int    `json:"movie_id"`
	Reason  string `json:"reason"`
}

// BatchResult is the outcome of SubmitBatchRatings.
type BatchResult struct {
	Status     string           `json:"status"`
	Message    string           `json:"message"`
	Accepted   int              `json:"accepted"`
	Rejected   int              `json:"rejected"`
	Rejections []RejectedRating `json:"rejections,omitempty"`
}

// CatalogueStatus describes the live feature catalogue.
type CatalogueStatus struct {
	Ready      bool      `json:"ready"`
	Version    int64     `json:"version"`
	Items      int       `json:"items"`
	Terms      int       `json:"terms"`
	BuiltAt    time.Time `json:"built_at,omitempty"`
	Rebuilding bool      `json:"rebuilding"`
}

// ImportResult is the outcome of ImportCatalogue.
type ImportResult struct {
	Imported  int              `json:"imported"`
	Rebuilt   bool             `json:"rebuilt"`
	Catalogue *CatalogueStatus `json:"catalogue,omitempty"`
}
