// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package database

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinecompass/internal/models"
	"github.com/tomtom215/cinecompass/internal/recommend"
	"github.com/tomtom215/cinecompass/internal/userstate"
)

func engineMovies(n int) []models.Movie {
	genres := []string{"Crime", "Drama", "Comedy", "Horror"}
	movies := make([]models.Movie, 0, n)
	for i := 1; i <= n; i++ {
		movies = append(movies, models.Movie{
			ID:         i,
			Title:      fmt.Sprintf("Film %d", i),
			Genres:     []string{genres[i%len(genres)]},
			Director:   fmt.Sprintf("Director %d", i%3),
			Cast:       []string{fmt.Sprintf("Actor %d", i%5)},
			Overview:   fmt.Sprintf("A story about %s number %d.", genres[(i+1)%len(genres)], i),
			Popularity: float64(i),
		})
	}
	return movies
}

func setupEngine(t *testing.T, db *DB, movies int) *recommend.Engine {
	t.Helper()
	ctx := context.Background()
	if _, err := db.UpsertMovies(ctx, engineMovies(movies)); err != nil {
		t.Fatalf("UpsertMovies() error = %v", err)
	}
	cfg := recommend.DefaultConfig()
	cfg.DiversityEnabled = false
	e, err := recommend.NewEngine(cfg, db, userstate.NewMemoryStore(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := e.LoadCatalogue(ctx); err != nil {
		t.Fatalf("LoadCatalogue() error = %v", err)
	}
	t.Cleanup(e.Wait)
	return e
}

func TestEngine_ConcurrentRecomputesKeepOneRanking(t *testing.T) {
	db := setupTestDB(t)
	const movies = 16
	e := setupEngine(t, db, movies)
	ctx := context.Background()

	if _, err := e.SubmitRating(ctx, 1, 1, 5); err != nil {
		t.Fatalf("SubmitRating() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := e.Recompute(ctx, 1, recommend.TriggerManual); err != nil {
				t.Errorf("Recompute() error = %v", err)
			}
		}()
		go func(movieID int) {
			defer wg.Done()
			if _, err := e.SubmitBatchRatings(ctx, 1, []recommend.RatingInput{{MovieID: movieID, Rating: 3}}); err != nil {
				t.Errorf("SubmitBatchRatings() error = %v", err)
			}
		}(2 + i)
	}
	wg.Wait()

	if err := e.Recompute(ctx, 1, recommend.TriggerManual); err != nil {
		t.Fatalf("final Recompute() error = %v", err)
	}
	rated, err := db.RatingsForUser(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := movies - len(rated)

	if n, err := db.CountRecommendations(ctx, 1); err != nil || n != want {
		t.Fatalf("CountRecommendations() = (%d, %v), want %d", n, err, want)
	}
	page, err := e.GetRecommendations(ctx, recommend.RecommendationRequest{UserID: 1, PageSize: 100})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if page.Total != want || len(page.Items) != want {
		t.Fatalf("total = %d items = %d, want %d", page.Total, len(page.Items), want)
	}
	seen := make(map[int]bool, want)
	for _, item := range page.Items {
		if seen[item.MovieID] {
			t.Errorf("movie %d served twice", item.MovieID)
		}
		seen[item.MovieID] = true
	}
}

func TestReplaceRecommendations_ReadersSeeOneRanking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	small := recsFor(3, 1, 1, 2, 3, 4, 5)
	large := recsFor(3, 1, 1, 2, 3, 4, 5, 6, 7, 8)
	for i := range small {
		small[i].Score = 0.25
	}
	for i := range large {
		large[i].Score = 0.75
	}
	if err := db.ReplaceRecommendations(ctx, 3, 1, small); err != nil {
		t.Fatal(err)
	}

	var (
		done  atomic.Bool
		wg    sync.WaitGroup
		reads atomic.Int32
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer done.Store(true)
		for i := 0; i < 30; i++ {
			next := large
			if i%2 == 1 {
				next = small
			}
			if err := db.ReplaceRecommendations(ctx, 3, 1, next); err != nil {
				t.Errorf("ReplaceRecommendations() error = %v", err)
				return
			}
		}
	}()

	for !done.Load() || reads.Load() == 0 {
		page, total, err := db.PageRecommendations(ctx, 3, 1, 1, 50)
		if err != nil {
			t.Fatalf("PageRecommendations() error = %v", err)
		}
		reads.Add(1)
		if len(page) != total {
			t.Fatalf("page rows = %d, total = %d", len(page), total)
		}
		var want float64
		switch total {
		case len(small):
			want = 0.25
		case len(large):
			want = 0.75
		default:
			t.Fatalf("total = %d, want %d or %d", total, len(small), len(large))
		}
		for _, r := range page {
			if r.Score != want {
				t.Fatalf("mixed rankings: movie %d score %v in a page of %d rows", r.MovieID, r.Score, total)
			}
		}
	}
	wg.Wait()
}
