// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package algorithms

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinecompass/internal/models"
	"github.com/tomtom215/cinecompass/internal/recommend/features"
)

// ProfileConfig controls preference boosts.
type ProfileConfig struct {
	MinGenreSupport     int     `json:"min_genre_support"`
	MinDirectorSupport  int     `json:"min_director_support"`
	GenreBoostFactor    float64 `json:"genre_boost_factor"`
	DirectorBoostFactor float64 `json:"director_boost_factor"`
}

// DefaultProfileConfig returns the default boost settings.
func DefaultProfileConfig() ProfileConfig {
	return ProfileConfig{
		MinGenreSupport:     3,
		MinDirectorSupport:  2,
		GenreBoostFactor:    0.2,
		DirectorBoostFactor: 0.3,
	}
}

// Profile is a user's taste vector bound to one catalogue version.
// Vector has unit norm when Resolved > 0 and is empty otherwise.
type Profile struct {
	Vector   features.SparseVector
	Version  int64
	Resolved int
	Skipped  int
}

// IsZero reports whether the profile has no direction. That is the case when
// no rating resolved and also when every resolved rating scored 0.
func (p Profile) IsZero() bool { return p.Resolved == 0 || p.Vector.IsZero() }

// ProfileBuilder turns ratings into profiles.
type ProfileBuilder struct {
	cfg    ProfileConfig
	logger zerolog.Logger
}

// NewProfileBuilder creates a profile builder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProfileBuilder(cfg ProfileConfig, logger zerolog.Logger) *ProfileBuilder {
	return &ProfileBuilder{cfg: cfg, logger: logger.With().Str("component", "profile_builder").Logger()}
}

// timeDecay is 1/(1+ln(1+d)) for age d in days.
func timeDecay(days float64) float64 {
	if days < 0 {
		days = 0
	}
	return 1 / (1 + math.Log1p(days))
}

func (b *ProfileBuilder) genreBoost(genres []string, st GenreDirectorStats) float64 {
	boost := 1.0
	for _, g := range genres {
		s, ok := st.Genres[strings.ToLower(g)]
		if ok && s.Count >= b.cfg.MinGenreSupport {
			boost *= 1 + b.cfg.GenreBoostFactor*(s.Avg/models.MaxRatingScore)
		}
	}
	return boost
}

func (b *ProfileBuilder) directorBoost(director string, st GenreDirectorStats) float64 {
	if director == "" {
		return 1
	}
	s, ok := st.Directors[strings.ToLower(director)]
	if ok && s.Count >= b.cfg.MinDirectorSupport {
		return 1 + b.cfg.DirectorBoostFactor*(s.Avg/models.MaxRatingScore)
	}
	return 1
}

// Build computes the weighted, normalized profile for ratings.
// Unknown movies are skipped and counted in Profile.Skipped. Ratings of 0
// resolve but contribute no weight.
func (b *ProfileBuilder) Build(ctx context.Context, ratings []models.Rating, catalog *features.Catalog, stats GenreDirectorStats, now time.Time) (Profile, error) {
	p := Profile{Version: catalog.Version()}
	acc := make([]float64, catalog.Vocabulary().Size())

	for i, r := range ratings {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return Profile{}, err
			}
		}
		idx, ok := catalog.Index(r.MovieID)
		if !ok {
			p.Skipped++
			b.logger.Debug().Int("user_id", r.UserID).Int("movie_id", r.MovieID).Msg("skipping rating for unknown movie")
			continue
		}
		m := catalog.Item(idx)
		days := now.Sub(r.Timestamp).Hours() / 24
		w := (r.Score / models.MaxRatingScore) * timeDecay(days) *
			b.genreBoost(m.Genres, stats) * b.directorBoost(m.Director, stats)
		catalog.Vector(idx).AddTo(acc, w)
		p.Resolved++
	}

	if p.Resolved == 0 {
		return p, nil
	}
	p.Vector = features.FromDense(acc).Normalized()
	return p, nil
}
