// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package models

import "time"

// Rating score bounds.
const (
	MinRatingScore = 0.0
	MaxRatingScore = 5.0
)

// Rating is an explicit user rating for one movie.
// At most one rating exists per (UserID, MovieID); a re-rating overwrites
// Score and Timestamp.
type Rating struct {
	UserID    int       `json:"user_id"`
	MovieID   int       `json:"movie_id"`
	Score     float64   `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidScore reports whether score lies in [MinRatingScore, MaxRatingScore].
func ValidScore(score float64) bool {
	return score >= MinRatingScore && score <= MaxRatingScore
}
