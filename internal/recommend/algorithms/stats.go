// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package algorithms

import (
	"strings"

	"github.com/tomtom215/cinecompass/internal/models"
	"github.com/tomtom215/cinecompass/internal/recommend/features"
)

// Stat is a running count and mean score.
type Stat struct {
	Count int
	Avg   float64
}

func (s *Stat) add(score float64) {
	s.Count++
	s.Avg = (s.Avg*float64(s.Count-1) + score) / float64(s.Count)
}

// GenreDirectorStats aggregates a user's historical scores per genre and director.
// Keys are lowercased names.
type GenreDirectorStats struct {
	Genres    map[string]Stat
	Directors map[string]Stat
}

// BuildStats makes one pass over ratings, skipping unknown movies.
func BuildStats(ratings []models.Rating, catalog *features.Catalog) GenreDirectorStats {
	st := GenreDirectorStats{
		Genres:    make(map[string]Stat),
		Directors: make(map[string]Stat),
	}
	if catalog == nil {
		return st
	}
	for _, r := range ratings {
		idx, ok := catalog.Index(r.MovieID)
		if !ok {
			continue
		}
		m := catalog.Item(idx)
		for _, g := range m.Genres {
			k := strings.ToLower(g)
			s := st.Genres[k]
			s.add(r.Score)
			st.Genres[k] = s
		}
		if m.Director != "" {
			k := strings.ToLower(m.Director)
			s := st.Directors[k]
			s.add(r.Score)
			st.Directors[k] = s
		}
	}
	return st
}
