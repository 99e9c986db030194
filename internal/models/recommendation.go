// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package models

import "time"

// Recommendation reasons.
const (
	ReasonContentSimilarity = "content_similarity"
	ReasonDiversity         = "diversity"
	ReasonPopular           = "popular"
)

// RecommendationDetails is the metadata snapshot stored with a cached score.
// It is captured at recompute time so reads never join against the catalogue.
type RecommendationDetails struct {
	Title        string   `json:"title"`
	Genres       []string `json:"genres"`
	Cast         []string `json:"cast"`
	Director     string   `json:"director"`
	Overview     string   `json:"overview"`
	PosterPath   string   `json:"poster_path,omitempty"`
	BackdropPath string   `json:"backdrop_path,omitempty"`
	VoteAverage  float64  `json:"vote_average"`
	Popularity   float64  `json:"popularity"`
}

// DetailsFromMovie captures the snapshot fields of m.
//
//nolint:gocritic // hugeParam: Movie passed by value for immutability
func DetailsFromMovie(m Movie) RecommendationDetails {
	return RecommendationDetails{
		Title:        m.Title,
		Genres:       m.Genres,
		Cast:         m.Cast,
		Director:     m.Director,
		Overview:     m.Overview,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		VoteAverage:  m.VoteAverage,
		Popularity:   m.Popularity,
	}
}

// CachedRecommendation is one row of a user's materialized ranking.
//
// The whole set for a user is replaced atomically on every recompute.
// CatalogueVersion records which feature catalogue produced the score so
// rows from an older catalogue can be excluded from reads.
type CachedRecommendation struct {
	UserID           int                   `json:"user_id"`
	MovieID          int                   `json:"movie_id"`
	Score            float64               `json:"score"`
	Details          RecommendationDetails `json:"details"`
	Reason           string                `json:"reason"`
	CatalogueVersion int64                 `json:"catalogue_version"`
	CreatedAt        time.Time             `json:"created_at"`
}

// RecommendationItem is the API representation of a recommended movie.
type RecommendationItem struct {
	MovieID     int      `json:"movie_id"`
	Title       string   `json:"title"`
	Score       float64  `json:"score"`
	Reason      string   `json:"reason"`
	Genres      []string `json:"genres"`
	Cast        []string `json:"cast,omitempty"`
	Director    string   `json:"director,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	VoteAverage float64  `json:"vote_average"`
	PosterURL   string   `json:"poster_url,omitempty"`
	BackdropURL string   `json:"backdrop_url,omitempty"`
}

// ToItem converts a cached row into its API form.
//
//nolint:gocritic // hugeParam: CachedRecommendation passed by value for immutability
func ToItem(r CachedRecommendation) RecommendationItem {
	return RecommendationItem{
		MovieID:     r.MovieID,
		Title:       r.Details.Title,
		Score:       r.Score,
		Reason:      r.Reason,
		Genres:      r.Details.Genres,
		Cast:        r.Details.Cast,
		Director:    r.Details.Director,
		Overview:    r.Details.Overview,
		VoteAverage: r.Details.VoteAverage,
		PosterURL:   ImageURL(r.Details.PosterPath),
		BackdropURL: ImageURL(r.Details.BackdropPath),
	}
}
