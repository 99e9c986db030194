// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package models

import (
	"testing"
	"time"
)

func TestImageURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want string
	}{
		{"empty path", "", ""},
		{"poster path", "/abc.jpg", "https://image.tmdb.org/t/p/w500/abc.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ImageURL(tt.path); got != tt.want {
				t.Errorf("ImageURL(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestValidScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  bool
	}{
		{-0.5, false},
		{0, true},
		{2.5, true},
		{5, true},
		{5.01, false},
	}

	for _, tt := range tests {
		if got := ValidScore(tt.score); got != tt.want {
			t.Errorf("ValidScore(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestToItem(t *testing.T) {
	t.Parallel()

	movie := Movie{
		ID:          603,
		Title:       "The Matrix",
		Genres:      []string{"Action", "Science Fiction"},
		Cast:        []string{"Keanu Reeves", "Laurence Fishburne"},
		Director:    "Lana Wachowski",
		Overview:    "A hacker learns the truth.",
		VoteAverage: 8.2,
		Popularity:  90.5,
		PosterPath:  "/poster.jpg",
	}

	rec := CachedRecommendation{
		UserID:           7,
		MovieID:          movie.ID,
		Score:            0.75,
		Details:          DetailsFromMovie(movie),
		Reason:           ReasonContentSimilarity,
		CatalogueVersion: 3,
		CreatedAt:        time.Now(),
	}

	item := ToItem(rec)
	if item.MovieID != 603 {
		t.Errorf("MovieID = %d, want 603", item.MovieID)
	}
	if item.Title != "The Matrix" {
		t.Errorf("Title = %q, want %q", item.Title, "The Matrix")
	}
	if item.PosterURL != TMDBImageBaseURL+"/poster.jpg" {
		t.Errorf("PosterURL = %q", item.PosterURL)
	}
	if item.BackdropURL != "" {
		t.Errorf("BackdropURL = %q, want empty", item.BackdropURL)
	}
	if item.Reason != ReasonContentSimilarity {
		t.Errorf("Reason = %q, want %q", item.Reason, ReasonContentSimilarity)
	}
}

func TestToPopular(t *testing.T) {
	t.Parallel()

	p := ToPopular(Movie{ID: 1, Title: "Heat", Popularity: 12, BackdropPath: "/b.jpg"})
	if p.ID != 1 || p.Title != "Heat" || p.Popularity != 12 {
		t.Errorf("ToPopular() = %+v", p)
	}
	if p.BackdropURL != TMDBImageBaseURL+"/b.jpg" {
		t.Errorf("BackdropURL = %q", p.BackdropURL)
	}
	if p.PosterURL != "" {
		t.Errorf("PosterURL = %q, want empty", p.PosterURL)
	}
}
