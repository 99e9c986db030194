// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/cinecompass/internal/config"
	"github.com/tomtom215/cinecompass/internal/models"
	"github.com/tomtom215/cinecompass/internal/recommend"
)

var _ recommend.Store = (*DB)(nil)

// testDBSemaphore serializes DuckDB tests; concurrent CGO connections
// across many parallel tests can stall under CI load.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func sampleMovies() []models.Movie {
	return []models.Movie{
		{ID: 1, Title: "Heat", Genres: []string{"Crime", "Thriller"}, Cast: []string{"Al Pacino", "Robert De Niro"}, Director: "Michael Mann", Popularity: 40},
		{ID: 2, Title: "Alien", Genres: []string{"Horror", "Science Fiction"}, Cast: []string{"Sigourney Weaver"}, Director: "Ridley Scott", Popularity: 55},
		{ID: 3, Title: "Amelie", Genres: []string{"Comedy", "Romance"}, Director: "Jean-Pierre Jeunet", Popularity: 55},
	}
}

func TestNew_AppliesMigrations(t *testing.T) {
	db := setupTestDB(t)

	v, err := db.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if want := len(migrations()); v != want {
		t.Errorf("SchemaVersion() = %d, want %d", v, want)
	}
	if err := db.runVersionedMigrations(); err != nil {
		t.Errorf("re-running migrations error = %v", err)
	}
}

func TestNew_NilConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); err == nil {
		t.Error("New(nil) error = nil")
	}
}

func TestMovies_UpsertListPopular(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	n, err := db.UpsertMovies(ctx, sampleMovies())
	if err != nil || n != 3 {
		t.Fatalf("UpsertMovies() = (%d, %v), want (3, nil)", n, err)
	}

	movies, err := db.ListMovies(ctx)
	if err != nil {
		t.Fatalf("ListMovies() error = %v", err)
	}
	if len(movies) != 3 || movies[0].ID != 1 || movies[1].Genres[1] != "Science Fiction" {
		t.Fatalf("ListMovies() = %+v", movies)
	}
	if movies[2].Cast == nil || len(movies[2].Cast) != 0 {
		t.Errorf("nil cast should round-trip as empty, got %#v", movies[2].Cast)
	}

	popular, err := db.PopularMovies(ctx, 2)
	if err != nil {
		t.Fatalf("PopularMovies() error = %v", err)
	}
	if len(popular) != 2 || popular[0].ID != 2 || popular[1].ID != 3 {
		t.Errorf("PopularMovies() ids = %d,%d, want 2,3", popular[0].ID, popular[1].ID)
	}

	updated := sampleMovies()[:1]
	updated[0].Title = "Heat (1995)"
	if _, err := db.UpsertMovies(ctx, updated); err != nil {
		t.Fatalf("re-upsert error = %v", err)
	}
	if count, _ := db.MovieCount(ctx); count != 3 {
		t.Errorf("MovieCount() = %d, want 3", count)
	}
	movies, _ = db.ListMovies(ctx)
	if movies[0].Title != "Heat (1995)" {
		t.Errorf("title = %q, want updated", movies[0].Title)
	}
}

func TestExistingMovieIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	if _, err := db.UpsertMovies(ctx, sampleMovies()); err != nil {
		t.Fatal(err)
	}

	found, err := db.ExistingMovieIDs(ctx, []int{1, 3, 99})
	if err != nil {
		t.Fatalf("ExistingMovieIDs() error = %v", err)
	}
	if len(found) != 2 {
		t.Errorf("found = %v, want {1, 3}", found)
	}
	if _, ok := found[99]; ok {
		t.Error("unknown id reported present")
	}
	empty, err := db.ExistingMovieIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("ExistingMovieIDs(nil) = (%v, %v)", empty, err)
	}
}

func TestCatalogueFingerprint_Changes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	empty, err := db.CatalogueFingerprint(ctx)
	if err != nil {
		t.Fatalf("CatalogueFingerprint() error = %v", err)
	}
	if empty != "0:0" {
		t.Errorf("empty fingerprint = %q, want 0:0", empty)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return base }
	if _, err := db.UpsertMovies(ctx, sampleMovies()); err != nil {
		t.Fatal(err)
	}
	first, _ := db.CatalogueFingerprint(ctx)

	db.now = func() time.Time { return base.Add(time.Minute) }
	if _, err := db.UpsertMovies(ctx, sampleMovies()[:1]); err != nil {
		t.Fatal(err)
	}
	second, _ := db.CatalogueFingerprint(ctx)
	if first == empty || first == second {
		t.Errorf("fingerprints %q, %q, %q should all differ", empty, first, second)
	}
}

func TestRatings_UpsertAndSince(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := db.UpsertRating(ctx, models.Rating{UserID: 7, MovieID: 1, Score: 3, Timestamp: t0}); err != nil {
		t.Fatalf("UpsertRating() error = %v", err)
	}
	if err := db.UpsertRatings(ctx, []models.Rating{
		{UserID: 7, MovieID: 1, Score: 4.5, Timestamp: t0.Add(time.Hour)},
		{UserID: 7, MovieID: 2, Score: 2, Timestamp: t0.Add(2 * time.Hour)},
		{UserID: 8, MovieID: 2, Score: 5, Timestamp: t0},
	}); err != nil {
		t.Fatalf("UpsertRatings() error = %v", err)
	}

	rs, err := db.RatingsForUser(ctx, 7)
	if err != nil {
		t.Fatalf("RatingsForUser() error = %v", err)
	}
	if len(rs) != 2 || rs[0].Score != 4.5 {
		t.Fatalf("RatingsForUser() = %+v, want 2 rows with movie 1 updated to 4.5", rs)
	}

	since, err := db.RatingsSince(ctx, 7, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("RatingsSince() error = %v", err)
	}
	if len(since) != 1 || since[0].MovieID != 2 {
		t.Errorf("RatingsSince() = %+v, want only movie 2", since)
	}
}

func TestUpsertRatings_RollsBackOnInvalid(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	err := db.UpsertRatings(ctx, []models.Rating{
		{UserID: 3, MovieID: 1, Score: 4, Timestamp: time.Now()},
		{UserID: 3, MovieID: 2, Score: 9, Timestamp: time.Now()},
	})
	if err == nil {
		t.Fatal("UpsertRatings() with out-of-range score error = nil")
	}
	rs, _ := db.RatingsForUser(ctx, 3)
	if len(rs) != 0 {
		t.Errorf("ratings after rollback = %d, want 0", len(rs))
	}
}

func recsFor(userID int, version int64, ids ...int) []models.CachedRecommendation {
	out := make([]models.CachedRecommendation, 0, len(ids))
	for i, id := range ids {
		out = append(out, models.CachedRecommendation{
			UserID:           userID,
			MovieID:          id,
			Score:            1 - float64(i)*0.1,
			Details:          models.RecommendationDetails{Title: "t", Genres: []string{"Drama"}},
			Reason:           models.ReasonContentSimilarity,
			CatalogueVersion: version,
			CreatedAt:        time.Now(),
		})
	}
	return out
}

func TestRecommendations_ReplaceAndPage(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceRecommendations(ctx, 1, 1, recsFor(1, 1, 10, 11, 12, 13, 14)); err != nil {
		t.Fatalf("ReplaceRecommendations() error = %v", err)
	}
	page, total, err := db.PageRecommendations(ctx, 1, 1, 2, 2)
	if err != nil {
		t.Fatalf("PageRecommendations() error = %v", err)
	}
	if total != 5 || len(page) != 2 || page[0].MovieID != 12 || page[1].MovieID != 13 {
		t.Fatalf("page 2 = %+v total %d, want movies 12,13 of 5", page, total)
	}
	if page[0].Details.Genres[0] != "Drama" {
		t.Errorf("details not decoded: %+v", page[0].Details)
	}

	pool, err := db.RecommendationPool(ctx, 1, 1, 3, 10)
	if err != nil || len(pool) != 2 || pool[0].MovieID != 13 {
		t.Errorf("RecommendationPool() = (%+v, %v), want movies 13,14", pool, err)
	}

	if err := db.ReplaceRecommendations(ctx, 1, 2, recsFor(1, 2, 20, 21)); err != nil {
		t.Fatalf("second ReplaceRecommendations() error = %v", err)
	}
	if n, _ := db.CountRecommendations(ctx, 1); n != 2 {
		t.Errorf("rows after replace = %d, want 2", n)
	}
	if _, total, _ := db.PageRecommendations(ctx, 1, 1, 1, 10); total != 0 {
		t.Errorf("stale version total = %d, want 0", total)
	}

	if _, _, err := db.PageRecommendations(ctx, 1, 2, 0, 10); err == nil {
		t.Error("page 0 error = nil")
	}
}

func TestRecommendations_TieBreakByMovieID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	recs := recsFor(4, 1, 30, 10, 20)
	for i := range recs {
		recs[i].Score = 0.5
	}
	if err := db.ReplaceRecommendations(ctx, 4, 1, recs); err != nil {
		t.Fatal(err)
	}
	page, _, err := db.PageRecommendations(ctx, 4, 1, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []int{10, 20, 30} {
		if page[i].MovieID != want {
			t.Errorf("position %d = %d, want %d", i, page[i].MovieID, want)
		}
	}
}

func TestRecommendations_ExcludeRatedMovies(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceRecommendations(ctx, 5, 1, recsFor(5, 1, 10, 11, 12, 13)); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertRatings(ctx, []models.Rating{
		{UserID: 5, MovieID: 10, Score: 4, Timestamp: time.Now()},
		{UserID: 6, MovieID: 12, Score: 2, Timestamp: time.Now()},
	}); err != nil {
		t.Fatal(err)
	}

	page, total, err := db.PageRecommendations(ctx, 5, 1, 1, 10)
	if err != nil {
		t.Fatalf("PageRecommendations() error = %v", err)
	}
	if total != 3 || len(page) != 3 || page[0].MovieID != 11 {
		t.Fatalf("page = %+v total %d, want movies 11,12,13 of 3", page, total)
	}

	pool, err := db.RecommendationPool(ctx, 5, 1, 0, 10)
	if err != nil {
		t.Fatalf("RecommendationPool() error = %v", err)
	}
	for _, r := range pool {
		if r.MovieID == 10 {
			t.Errorf("pool contains rated movie 10: %+v", pool)
		}
	}
	if n, _ := db.CountRecommendations(ctx, 5); n != 4 {
		t.Errorf("stored rows = %d, want 4 until the next recompute", n)
	}
}

func TestCatalogueBuilds(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, _, ok, err := db.LatestCatalogueBuild(ctx); err != nil || ok {
		t.Fatalf("LatestCatalogueBuild() on empty = (ok %v, %v)", ok, err)
	}
	v1, err := db.NextCatalogueVersion(ctx, "3:1", 3)
	if err != nil || v1 != 1 {
		t.Fatalf("NextCatalogueVersion() = (%d, %v), want 1", v1, err)
	}
	v2, _ := db.NextCatalogueVersion(ctx, "4:2", 4)
	if v2 != 2 {
		t.Errorf("second version = %d, want 2", v2)
	}
	v, fp, ok, err := db.LatestCatalogueBuild(ctx)
	if err != nil || !ok || v != 2 || fp != "4:2" {
		t.Errorf("LatestCatalogueBuild() = (%d, %q, %v, %v)", v, fp, ok, err)
	}
}

func TestWithConflictRetry(t *testing.T) {
	t.Parallel()

	db := &DB{maxRetries: 3}
	calls := 0
	err := db.withConflictRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("TransactionContext Error: Transaction conflict: cannot update")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("retry = (%v, %d calls), want success on third call", err, calls)
	}

	calls = 0
	err = db.withConflictRetry(context.Background(), func() error {
		calls++
		return errors.New("constraint violated")
	})
	if err == nil || calls != 1 {
		t.Errorf("non-conflict error retried %d times", calls)
	}
}
