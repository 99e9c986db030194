// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package reranking

import (
	"context"
	"testing"

	"github.com/tomtom215/cinecompass/internal/models"
)

func rec(id int, director string, genres ...string) models.CachedRecommendation {
	return models.CachedRecommendation{
		MovieID: id,
		Reason:  models.ReasonContentSimilarity,
		Details: models.RecommendationDetails{Genres: genres, Director: director},
	}
}

func TestDiversity_Name(t *testing.T) {
	if NewDiversity(1).Name() != "diversity" {
		t.Errorf("Name() = %q, want %q", NewDiversity(1).Name(), "diversity")
	}
}

func TestDiversity_Score(t *testing.T) {
	t.Parallel()

	d := NewDiversity(42)
	tests := []struct {
		name   string
		window []models.CachedRecommendation
		want   float64
	}{
		{"empty window", nil, 0},
		{"single item", []models.CachedRecommendation{rec(1, "A", "Drama", "Crime", "War")}, 1},
		{"homogeneous", []models.CachedRecommendation{rec(1, "A", "Drama"), rec(2, "A", "Drama")}, (1.0/6 + 0.5) / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := d.Score(tt.window); got != tt.want {
				t.Errorf("Score() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDiversity_AboveThresholdUnchanged(t *testing.T) {
	t.Parallel()

	d := NewDiversity(42)
	cands := []models.CachedRecommendation{rec(1, "A", "Drama", "Crime", "War"), rec(2, "B", "Comedy", "Romance", "Music")}
	pool := []models.CachedRecommendation{rec(9, "Z", "Horror")}
	got, blended := d.Diversify(context.Background(), cands, pool, 2, 0.35)
	if blended {
		t.Error("blended = true, want false")
	}
	if len(got) != 2 || got[0].MovieID != 1 || got[1].MovieID != 2 {
		t.Errorf("Diversify() = %v, want candidates unchanged", got)
	}
}

func TestDiversity_HomogeneousTriggersBlend(t *testing.T) {
	t.Parallel()

	d := NewDiversity(42)
	var cands []models.CachedRecommendation
	for i := 1; i <= 6; i++ {
		cands = append(cands, rec(i, "Same", "Action"))
	}
	pool := []models.CachedRecommendation{
		rec(2, "Same", "Action"),
		rec(10, "X", "Comedy"),
		rec(11, "Y", "Drama"),
		rec(12, "Z", "Horror"),
	}
	got, blended := d.Diversify(context.Background(), cands, pool, 6, 0.35)
	if !blended {
		t.Fatal("blended = false, want true")
	}
	if len(got) != 6 {
		t.Fatalf("len = %d, want 6", len(got))
	}
	seen := map[int]bool{}
	alts := 0
	for _, r := range got {
		if seen[r.MovieID] {
			t.Errorf("duplicate movie %d", r.MovieID)
		}
		seen[r.MovieID] = true
		if r.Reason == models.ReasonDiversity {
			alts++
		}
	}
	if alts == 0 {
		t.Error("no diversity alternates blended")
	}
	if got[0].MovieID != 1 {
		t.Errorf("first = %d, want original top 1", got[0].MovieID)
	}

	again, _ := d.Diversify(context.Background(), cands, pool, 6, 0.35)
	for i := range got {
		if got[i].MovieID != again[i].MovieID {
			t.Errorf("non-deterministic at %d", i)
		}
	}
}
