// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Features  FeaturesConfig  `koanf:"features"`
	Profile   ProfileConfig   `koanf:"profile"`
	Catalogue CatalogueConfig `koanf:"catalogue"`
	UserState UserStateConfig `koanf:"userstate"`
	Events    EventsConfig    `koanf:"events"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"` // 0 = runtime.NumCPU()
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds the update orchestration and paging settings.
type RecommendConfig struct {
	UpdateThreshold    time.Duration `koanf:"update_threshold"`
	MaxBatchSize       int           `koanf:"max_batch_size"`
	DefaultPageSize    int           `koanf:"default_page_size"`
	MaxPageSize        int           `koanf:"max_page_size"`
	DiversityEnabled   bool          `koanf:"diversity_enabled"`
	DiversityThreshold float64       `koanf:"diversity_threshold"`
	DiversityPoolSize  int           `koanf:"diversity_pool_size"`
	Seed               int64         `koanf:"seed"`
	RecomputeMode      string        `koanf:"recompute_mode"` // sync | async
	RecomputeTimeout   time.Duration `koanf:"recompute_timeout"`
}

// FeaturesConfig holds catalogue vectorization settings.
type FeaturesConfig struct {
	GenreWeight    int     `koanf:"genre_weight"`
	DirectorWeight int     `koanf:"director_weight"`
	CastWeight     int     `koanf:"cast_weight"`
	MaxCast        int     `koanf:"max_cast"`
	MinDF          int     `koanf:"min_df"`
	MaxDF          float64 `koanf:"max_df"`
	NGramMin       int     `koanf:"ngram_min"`
	NGramMax       int     `koanf:"ngram_max"`
	MaxFeatures    int     `koanf:"max_features"`
	SublinearTF    bool    `koanf:"sublinear_tf"`
}

// ProfileConfig holds user profile boost settings.
type ProfileConfig struct {
	MinGenreSupport     int     `koanf:"min_genre_support"`
	MinDirectorSupport  int     `koanf:"min_director_support"`
	GenreBoostFactor    float64 `koanf:"genre_boost_factor"`
	DirectorBoostFactor float64 `koanf:"director_boost_factor"`
}

// CatalogueConfig holds catalogue lifecycle settings.
type CatalogueConfig struct {
	SnapshotDir      string        `koanf:"snapshot_dir"`
	SnapshotsKept    int           `koanf:"snapshots_kept"`
	RefreshInterval  time.Duration `koanf:"refresh_interval"` // 0 disables the refresher
	RefreshBurst     int           `koanf:"refresh_burst"`
	PopularCacheSize int           `koanf:"popular_cache_size"`
	PopularCacheTTL  time.Duration `koanf:"popular_cache_ttl"`
}

// UserStateConfig selects the per-user state store.
type UserStateConfig struct {
	Store string `koanf:"store"` // memory | badger
	Path  string `koanf:"path"`
}

// EventsConfig selects the rating event bus used in async recompute mode.
type EventsConfig struct {
	Backend             string        `koanf:"backend"` // gochannel | nats | embedded
	NATSURL             string        `koanf:"nats_url"`
	Topic               string        `koanf:"topic"`
	QueueGroup          string        `koanf:"queue_group"`
	EmbeddedPort        int           `koanf:"embedded_port"`
	EmbeddedStoreDir    string        `koanf:"embedded_store_dir"`
	Workers             int           `koanf:"workers"`
	BreakerMaxFailures  uint32        `koanf:"breaker_max_failures"`
	BreakerOpenTimeout  time.Duration `koanf:"breaker_open_timeout"`
	PublishTimeout      time.Duration `koanf:"publish_timeout"`
	SubscriberCloseWait time.Duration `koanf:"subscriber_close_wait"`
}

// SecurityConfig holds HTTP edge protections.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}
