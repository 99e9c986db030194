// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/cinecompass/internal/models"
)

// CatalogueProvider supplies catalogue items. Implemented by the database layer.
type CatalogueProvider interface {
	ListMovies(ctx context.Context) ([]models.Movie, error)
	UpsertMovies(ctx context.Context, movies []models.Movie) (int, error)
	ExistingMovieIDs(ctx context.Context, ids []int) (map[int]struct{}, error)
	PopularMovies(ctx context.Context, limit int) ([]models.Movie, error)

	// CatalogueFingerprint changes whenever the movie table changes.
	CatalogueFingerprint(ctx context.Context) (string, error)
}

// RatingStore persists ratings with upsert semantics.
type RatingStore interface {
	UpsertRating(ctx context.Context, r models.Rating) error

	// UpsertRatings writes all ratings in one transaction.
	UpsertRatings(ctx context.Context, rs []models.Rating) error

	RatingsForUser(ctx context.Context, userID int) ([]models.Rating, error)

	// RatingsSince returns ratings with timestamp strictly after since.
	RatingsSince(ctx context.Context, userID int, since time.Time) ([]models.Rating, error)
}

// RecommendationStore is the materialized recommendation cache.
type RecommendationStore interface {
	// ReplaceRecommendations atomically swaps a user's cached set.
	ReplaceRecommendations(ctx context.Context, userID int, version int64, recs []models.CachedRecommendation) error

	PageRecommendations(ctx context.Context, userID int, version int64, page, pageSize int) ([]models.CachedRecommendation, int, error)
	RecommendationPool(ctx context.Context, userID int, version int64, offset, limit int) ([]models.CachedRecommendation, error)

	// NextCatalogueVersion records a build and returns its monotonic version.
	NextCatalogueVersion(ctx context.Context, fingerprint string, items int) (int64, error)
	LatestCatalogueBuild(ctx context.Context) (version int64, fingerprint string, ok bool, err error)
}

// Store is everything the engine needs from persistence.
type Store interface {
	CatalogueProvider
	RatingStore
	RecommendationStore
}

// RecomputeScheduler hands recomputes to an asynchronous worker.
type RecomputeScheduler interface {
	ScheduleRecompute(ctx context.Context, userID int, trigger string) error
}
