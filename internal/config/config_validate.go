// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package config

import (
	"fmt"
	"strings"
)

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateLogging,
		c.validateRecommend,
		c.validateFeatures,
		c.validateProfile,
		c.validateCatalogue,
		c.validateUserState,
		c.validateEvents,
		c.validateSecurity,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled", "off":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	switch {
	case r.UpdateThreshold <= 0:
		return fmt.Errorf("RECOMMEND_UPDATE_THRESHOLD must be positive, got %v", r.UpdateThreshold)
	case r.MaxBatchSize < 1:
		return fmt.Errorf("RECOMMEND_MAX_BATCH_SIZE must be >= 1, got %d", r.MaxBatchSize)
	case r.MaxPageSize < 1:
		return fmt.Errorf("RECOMMEND_MAX_PAGE_SIZE must be >= 1, got %d", r.MaxPageSize)
	case r.DefaultPageSize < 1 || r.DefaultPageSize > r.MaxPageSize:
		return fmt.Errorf("RECOMMEND_DEFAULT_PAGE_SIZE must be in [1, %d], got %d", r.MaxPageSize, r.DefaultPageSize)
	case r.DiversityThreshold < 0 || r.DiversityThreshold > 1:
		return fmt.Errorf("RECOMMEND_DIVERSITY_THRESHOLD must be in [0, 1], got %v", r.DiversityThreshold)
	case r.DiversityPoolSize < 0:
		return fmt.Errorf("RECOMMEND_DIVERSITY_POOL_SIZE must be >= 0, got %d", r.DiversityPoolSize)
	case r.RecomputeMode != "sync" && r.RecomputeMode != "async":
		return fmt.Errorf("RECOMMEND_RECOMPUTE_MODE must be sync or async, got %q", r.RecomputeMode)
	case r.RecomputeTimeout <= 0:
		return fmt.Errorf("RECOMMEND_RECOMPUTE_TIMEOUT must be positive, got %v", r.RecomputeTimeout)
	}
	return nil
}

func (c *Config) validateFeatures() error {
	f := c.Features
	switch {
	case f.GenreWeight < 0 || f.DirectorWeight < 0 || f.CastWeight < 0:
		return fmt.Errorf("feature weights must be >= 0")
	case f.MinDF < 1:
		return fmt.Errorf("FEATURES_MIN_DF must be >= 1, got %d", f.MinDF)
	case f.MaxDF <= 0 || f.MaxDF > 1:
		return fmt.Errorf("FEATURES_MAX_DF must be in (0, 1], got %v", f.MaxDF)
	case f.NGramMin < 1 || f.NGramMax < f.NGramMin:
		return fmt.Errorf("n-gram range [%d, %d] is invalid", f.NGramMin, f.NGramMax)
	case f.MaxFeatures < 0:
		return fmt.Errorf("FEATURES_MAX_FEATURES must be >= 0, got %d", f.MaxFeatures)
	}
	return nil
}

func (c *Config) validateProfile() error {
	p := c.Profile
	if p.MinGenreSupport < 1 || p.MinDirectorSupport < 1 {
		return fmt.Errorf("profile support minimums must be >= 1")
	}
	if p.GenreBoostFactor < 0 || p.DirectorBoostFactor < 0 {
		return fmt.Errorf("profile boost factors must be >= 0")
	}
	return nil
}

func (c *Config) validateCatalogue() error {
	cat := c.Catalogue
	switch {
	case cat.RefreshInterval < 0:
		return fmt.Errorf("CATALOGUE_REFRESH_INTERVAL must be >= 0, got %v", cat.RefreshInterval)
	case cat.RefreshInterval > 0 && cat.RefreshBurst < 1:
		return fmt.Errorf("CATALOGUE_REFRESH_BURST must be >= 1, got %d", cat.RefreshBurst)
	case cat.SnapshotsKept < 1 && cat.SnapshotDir != "":
		return fmt.Errorf("CATALOGUE_SNAPSHOTS_KEPT must be >= 1, got %d", cat.SnapshotsKept)
	case cat.PopularCacheSize < 1:
		return fmt.Errorf("POPULAR_CACHE_SIZE must be >= 1, got %d", cat.PopularCacheSize)
	}
	return nil
}

func (c *Config) validateUserState() error {
	switch c.UserState.Store {
	case "memory":
		return nil
	case "badger":
		if c.UserState.Path == "" {
			return fmt.Errorf("USERSTATE_PATH is required when USERSTATE_STORE=badger")
		}
		return nil
	default:
		return fmt.Errorf("USERSTATE_STORE must be memory or badger, got %q", c.UserState.Store)
	}
}

func (c *Config) validateEvents() error {
	e := c.Events
	switch e.Backend {
	case "gochannel":
	case "nats":
		if !strings.HasPrefix(e.NATSURL, "nats://") && !strings.HasPrefix(e.NATSURL, "tls://") {
			return fmt.Errorf("NATS_URL must start with nats:// or tls://, got %q", e.NATSURL)
		}
	case "embedded":
		if e.EmbeddedPort < 1 || e.EmbeddedPort > 65535 {
			return fmt.Errorf("NATS_EMBEDDED_PORT must be between 1 and 65535, got %d", e.EmbeddedPort)
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be gochannel, nats or embedded, got %q", e.Backend)
	}
	if e.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required")
	}
	if e.Workers < 1 {
		return fmt.Errorf("EVENTS_WORKERS must be >= 1, got %d", e.Workers)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if s.RateLimitDisabled {
		return nil
	}
	if s.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be >= 1, got %d", s.RateLimitReqs)
	}
	if s.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", s.RateLimitWindow)
	}
	return nil
}
