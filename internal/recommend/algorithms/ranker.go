// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/cinecompass/internal/recommend/features"
)

// ErrVersionMismatch is returned when a profile and catalogue versions differ.
var ErrVersionMismatch = errors.New("profile and catalogue versions differ")

// Ranked is one scored candidate.
type Ranked struct {
	MovieID int
	Index   int
	Raw     float64
	Score   float64
}

// Ranker scores catalogue items against a profile.
type Ranker struct{}

// NewRanker creates a ranker.
func NewRanker() *Ranker { return &Ranker{} }

// Rank returns every non-excluded item ordered by score desc then movie id asc.
// Scores are min-max rescaled to [0, 1]; equal raw scores all map to 0.
func (r *Ranker) Rank(ctx context.Context, profile Profile, catalog *features.Catalog, exclude map[int]struct{}) ([]Ranked, error) {
	if profile.Version != catalog.Version() {
		return nil, fmt.Errorf("%w: profile %d, catalogue %d", ErrVersionMismatch, profile.Version, catalog.Version())
	}

	pnorm := profile.Vector.Norm()
	out := make([]Ranked, 0, catalog.Len())
	for i := 0; i < catalog.Len(); i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		id := catalog.Item(i).ID
		if _, skip := exclude[id]; skip {
			continue
		}
		var raw float64
		if pnorm > 0 {
			v := catalog.Vector(i)
			if vn := v.Norm(); vn > 0 {
				raw = profile.Vector.Dot(v) / (pnorm * vn)
			}
		}
		out = append(out, Ranked{MovieID: id, Index: i, Raw: raw})
	}

	normalizeScores(out)
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].MovieID < out[b].MovieID
	})
	return out, nil
}

// normalizeScores applies min-max normalization to Raw into Score.
func normalizeScores(items []Ranked) {
	if len(items) == 0 {
		return
	}
	lo, hi := items[0].Raw, items[0].Raw
	for _, it := range items[1:] {
		if it.Raw < lo {
			lo = it.Raw
		}
		if it.Raw > hi {
			hi = it.Raw
		}
	}
	rang := hi - lo
	for i := range items {
		if rang == 0 {
			items[i].Score = 0
			continue
		}
		items[i].Score = (items[i].Raw - lo) / rang
	}
}
