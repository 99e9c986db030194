// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package features

import "fmt"

// Config controls feature string construction and TF-IDF fitting.
type Config struct {
	// GenreWeight is how many times each genre token is repeated.
	GenreWeight int `json:"genre_weight"`

	// DirectorWeight is how many times the director token is repeated.
	DirectorWeight int `json:"director_weight"`

	// CastWeight is the repetition of the lead; member i gets max(1, CastWeight-i).
	CastWeight int `json:"cast_weight"`

	// MaxCast limits how many billed cast members contribute.
	MaxCast int `json:"max_cast"`

	// MinDF is the minimum number of documents a term must appear in.
	MinDF int `json:"min_df"`

	// MaxDF is the maximum fraction of documents a term may appear in.
	MaxDF float64 `json:"max_df"`

	// NGramMin and NGramMax bound the token n-gram range.
	NGramMin int `json:"ngram_min"`
	NGramMax int `json:"ngram_max"`

	// MaxFeatures keeps only the most frequent terms. Zero means unbounded.
	MaxFeatures int `json:"max_features"`

	// SublinearTF replaces tf with 1 + ln(tf).
	SublinearTF bool `json:"sublinear_tf"`
}

// DefaultConfig returns the default feature configuration.
func DefaultConfig() Config {
	return Config{
		GenreWeight:    3,
		DirectorWeight: 2,
		CastWeight:     5,
		MaxCast:        5,
		MinDF:          1,
		MaxDF:          1.0,
		NGramMin:       1,
		NGramMax:       1,
		MaxFeatures:    5000,
		SublinearTF:    false,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.GenreWeight < 1 {
		return fmt.Errorf("genre_weight must be at least 1, got %d", c.GenreWeight)
	}
	if c.DirectorWeight < 1 {
		return fmt.Errorf("director_weight must be at least 1, got %d", c.DirectorWeight)
	}
	if c.CastWeight < 1 {
		return fmt.Errorf("cast_weight must be at least 1, got %d", c.CastWeight)
	}
	if c.MaxCast < 0 {
		return fmt.Errorf("max_cast must be non-negative, got %d", c.MaxCast)
	}
	if c.MinDF < 1 {
		return fmt.Errorf("min_df must be at least 1, got %d", c.MinDF)
	}
	if c.MaxDF <= 0 || c.MaxDF > 1 {
		return fmt.Errorf("max_df must be in (0, 1], got %f", c.MaxDF)
	}
	if c.NGramMin < 1 || c.NGramMax < c.NGramMin {
		return fmt.Errorf("invalid ngram range [%d, %d]", c.NGramMin, c.NGramMax)
	}
	if c.MaxFeatures < 0 {
		return fmt.Errorf("max_features must be non-negative, got %d", c.MaxFeatures)
	}
	return nil
}
