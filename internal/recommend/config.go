// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/cinecompass/internal/recommend/algorithms"
	"github.com/tomtom215/cinecompass/internal/recommend/features"
)

// Recompute modes.
const (
	RecomputeSync  = "sync"
	RecomputeAsync = "async"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// UpdateThreshold is how long a recompute stays fresh.
	UpdateThreshold time.Duration `json:"update_threshold"`

	// MaxBatchSize bounds SubmitBatchRatings.
	MaxBatchSize int `json:"max_batch_size"`

	DefaultPageSize int `json:"default_page_size"`
	MaxPageSize     int `json:"max_page_size"`

	// Diversity reranking of served pages.
	DiversityEnabled   bool    `json:"diversity_enabled"`
	DiversityThreshold float64 `json:"diversity_threshold"`
	DiversityPoolSize  int     `json:"diversity_pool_size"`

	// Seed fixes the diversity permutation.
	Seed int64 `json:"seed"`

	// RecomputeMode is "sync" or "async".
	RecomputeMode    string        `json:"recompute_mode"`
	RecomputeTimeout time.Duration `json:"recompute_timeout"`

	PopularCacheSize int           `json:"popular_cache_size"`
	PopularCacheTTL  time.Duration `json:"popular_cache_ttl"`

	// SnapshotsKept is how many catalogue snapshots survive a prune.
	SnapshotsKept int `json:"snapshots_kept"`

	Features features.Config          `json:"features"`
	Profile  algorithms.ProfileConfig `json:"profile"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		UpdateThreshold:    4 * time.Hour,
		MaxBatchSize:       20,
		DefaultPageSize:    20,
		MaxPageSize:        100,
		DiversityEnabled:   true,
		DiversityThreshold: 0.35,
		DiversityPoolSize:  200,
		Seed:               42,
		RecomputeMode:      RecomputeSync,
		RecomputeTimeout:   30 * time.Second,
		PopularCacheSize:   128,
		PopularCacheTTL:    5 * time.Minute,
		SnapshotsKept:      3,
		Features:           features.DefaultConfig(),
		Profile:            algorithms.DefaultProfileConfig(),
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.UpdateThreshold <= 0 {
		return fmt.Errorf("update_threshold must be positive")
	}
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("max_batch_size must be at least 1, got %d", c.MaxBatchSize)
	}
	if c.DefaultPageSize < 1 || c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("invalid page sizes: default %d, max %d", c.DefaultPageSize, c.MaxPageSize)
	}
	if c.DiversityThreshold < 0 || c.DiversityThreshold > 1 {
		return fmt.Errorf("diversity_threshold must be in [0, 1], got %f", c.DiversityThreshold)
	}
	if c.DiversityPoolSize < 0 {
		return fmt.Errorf("diversity_pool_size must be non-negative")
	}
	if c.RecomputeMode != RecomputeSync && c.RecomputeMode != RecomputeAsync {
		return fmt.Errorf("recompute_mode must be %q or %q, got %q", RecomputeSync, RecomputeAsync, c.RecomputeMode)
	}
	if c.SnapshotsKept < 1 {
		return fmt.Errorf("snapshots_kept must be at least 1, got %d", c.SnapshotsKept)
	}
	if c.RecomputeTimeout <= 0 {
		return fmt.Errorf("recompute_timeout must be positive")
	}
	if err := c.Features.Validate(); err != nil {
		return fmt.Errorf("features: %w", err)
	}
	if c.Profile.MinGenreSupport < 1 || c.Profile.MinDirectorSupport < 1 {
		return fmt.Errorf("profile support thresholds must be at least 1")
	}
	return nil
}
