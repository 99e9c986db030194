// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package reranking

import (
	"context"
	"math/rand"
	"strings"

	"github.com/tomtom215/cinecompass/internal/models"
)

// Diversity blends random alternates into a page whose genre and director
// spread falls below a threshold.
//
// The diversity score of a window of n items is
//
//	mean(distinctGenres/(3n), distinctDirectors/n)
//
// and an empty window scores 0.
type Diversity struct {
	seed int64
}

// NewDiversity creates a diversity reranker with a fixed permutation seed.
func NewDiversity(seed int64) *Diversity {
	return &Diversity{seed: seed}
}

// Name returns the reranker identifier.
func (d *Diversity) Name() string {
	return "diversity"
}

// Score returns the diversity score of window.
func (d *Diversity) Score(window []models.CachedRecommendation) float64 {
	n := len(window)
	if n == 0 {
		return 0
	}
	genres := make(map[string]struct{})
	directors := make(map[string]struct{})
	for i := range window {
		for _, g := range window[i].Details.Genres {
			genres[strings.ToLower(g)] = struct{}{}
		}
		if dir := window[i].Details.Director; dir != "" {
			directors[strings.ToLower(dir)] = struct{}{}
		}
	}
	g := float64(len(genres)) / (3 * float64(n))
	r := float64(len(directors)) / float64(n)
	return (g + r) / 2
}

// Diversify returns the first targetSize candidates unchanged when their score
// meets threshold. Otherwise it interleaves candidates with a seeded permutation
// of pool, skipping duplicate movie ids, and marks blended alternates with
// the diversity reason. The second return reports whether blending happened.
func (d *Diversity) Diversify(ctx context.Context, candidates, pool []models.CachedRecommendation, targetSize int, threshold float64) ([]models.CachedRecommendation, bool) {
	if targetSize <= 0 {
		return nil, false
	}
	window := candidates
	if len(window) > targetSize {
		window = window[:targetSize]
	}
	if d.Score(window) >= threshold || len(pool) == 0 {
		return window, false
	}

	rng := rand.New(rand.NewSource(d.seed)) //nolint:gosec // math/rand is fine for recommendation shuffling
	perm := rng.Perm(len(pool))

	out := make([]models.CachedRecommendation, 0, targetSize)
	seen := make(map[int]struct{}, targetSize)
	i, j := 0, 0
	for len(out) < targetSize && (i < len(candidates) || j < len(perm)) {
		if ctx.Err() != nil {
			break
		}
		for i < len(candidates) {
			c := candidates[i]
			i++
			if _, dup := seen[c.MovieID]; dup {
				continue
			}
			seen[c.MovieID] = struct{}{}
			out = append(out, c)
			break
		}
		if len(out) >= targetSize {
			break
		}
		for j < len(perm) {
			a := pool[perm[j]]
			j++
			if _, dup := seen[a.MovieID]; dup {
				continue
			}
			seen[a.MovieID] = struct{}{}
			a.Reason = models.ReasonDiversity
			out = append(out, a)
			break
		}
	}
	return out, true
}
