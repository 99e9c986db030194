// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package models

import (
	"time"
)

// TMDBImageBaseURL is the prefix used to render poster and backdrop paths.
const TMDBImageBaseURL = "https://image.tmdb.org/t/p/w500"

// Movie is a single catalogue item.
//
// A Movie is immutable within one catalogue version. Cast is kept in billing
// order because feature weighting decreases with billing position.
//
// Key Fields:
//   - ID: Stable catalogue identifier (TMDB movie id)
//   - Genres: Genre names, e.g. "Science Fiction"
//   - Cast: Billed cast, lead first
//   - Director: Director name (empty when unknown)
//   - Overview: Free-text synopsis
//   - Popularity: Provider popularity used by the popular listing
type Movie struct {
	ID           int       `json:"id" validate:"required,gt=0"`
	Title        string    `json:"title" validate:"required,max=500"`
	Genres       []string  `json:"genres" validate:"max=20,dive,max=100"`
	Cast         []string  `json:"cast" validate:"max=100,dive,max=200"`
	Director     string    `json:"director" validate:"max=200"`
	Overview     string    `json:"overview" validate:"max=10000"`
	Popularity   float64   `json:"popularity" validate:"gte=0"`
	VoteAverage  float64   `json:"vote_average" validate:"gte=0,lte=10"`
	PosterPath   string    `json:"poster_path,omitempty" validate:"max=500"`
	BackdropPath string    `json:"backdrop_path,omitempty" validate:"max=500"`
	ReleaseDate  string    `json:"release_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// ImageURL renders a TMDB image path as an absolute URL.
// Empty paths stay empty.
func ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return TMDBImageBaseURL + path
}

// PopularMovie is the API representation of a movie in the popular listing.
type PopularMovie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	Director    string   `json:"director,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	Popularity  float64  `json:"popularity"`
	VoteAverage float64  `json:"vote_average"`
	PosterURL   string   `json:"poster_url,omitempty"`
	BackdropURL string   `json:"backdrop_url,omitempty"`
}

// ToPopular converts a catalogue movie into its popular-listing form.
//
//nolint:gocritic // hugeParam: Movie passed by value for immutability
func ToPopular(m Movie) PopularMovie {
	return PopularMovie{
		ID:          m.ID,
		Title:       m.Title,
		Genres:      m.Genres,
		Director:    m.Director,
		Overview:    m.Overview,
		Popularity:  m.Popularity,
		VoteAverage: m.VoteAverage,
		PosterURL:   ImageURL(m.PosterPath),
		BackdropURL: ImageURL(m.BackdropPath),
	}
}
