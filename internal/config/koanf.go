// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinecompass/config.yaml",
	"/etc/cinecompass/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8484,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Path:                   "/data/cinecompass.duckdb",
			MaxMemory:              "2GB",
			Threads:                0,
			PreserveInsertionOrder: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: RecommendConfig{
			UpdateThreshold:    4 * time.Hour,
			MaxBatchSize:       20,
			DefaultPageSize:    20,
			MaxPageSize:        100,
			DiversityEnabled:   true,
			DiversityThreshold: 0.35,
			DiversityPoolSize:  200,
			Seed:               42,
			RecomputeMode:      "sync",
			RecomputeTimeout:   30 * time.Second,
		},
		Features: FeaturesConfig{
			GenreWeight:    3,
			DirectorWeight: 2,
			CastWeight:     5,
			MaxCast:        5,
			MinDF:          1,
			MaxDF:          1.0,
			NGramMin:       1,
			NGramMax:       1,
			MaxFeatures:    5000,
		},
		Profile: ProfileConfig{
			MinGenreSupport:     3,
			MinDirectorSupport:  2,
			GenreBoostFactor:    0.2,
			DirectorBoostFactor: 0.3,
		},
		Catalogue: CatalogueConfig{
			SnapshotDir:      "/data/catalogue",
			SnapshotsKept:    3,
			RefreshInterval:  10 * time.Minute,
			RefreshBurst:     1,
			PopularCacheSize: 128,
			PopularCacheTTL:  5 * time.Minute,
		},
		UserState: UserStateConfig{
			Store: "memory",
			Path:  "/data/userstate",
		},
		Events: EventsConfig{
			Backend:             "gochannel",
			NATSURL:             "nats://127.0.0.1:4222",
			Topic:               "ratings.submitted",
			QueueGroup:          "recompute-workers",
			EmbeddedPort:        4222,
			EmbeddedStoreDir:    "",
			Workers:             4,
			BreakerMaxFailures:  5,
			BreakerOpenTimeout:  30 * time.Second,
			PublishTimeout:      5 * time.Second,
			SubscriberCloseWait: 10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
	}
}

// Load reads configuration from defaults, the config file and the environment.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is Load with an explicit config file path. An empty path skips the file layer.
func LoadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"duckdb_path":           "database.path",
	"duckdb_max_memory":     "database.max_memory",
	"duckdb_threads":        "database.threads",
	"duckdb_preserve_order": "database.preserve_insertion_order",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"recommend_update_threshold":    "recommend.update_threshold",
	"recommend_max_batch_size":      "recommend.max_batch_size",
	"recommend_default_page_size":   "recommend.default_page_size",
	"recommend_max_page_size":       "recommend.max_page_size",
	"recommend_diversity_enabled":   "recommend.diversity_enabled",
	"recommend_diversity_threshold": "recommend.diversity_threshold",
	"recommend_diversity_pool_size": "recommend.diversity_pool_size",
	"recommend_seed":                "recommend.seed",
	"recommend_recompute_mode":      "recommend.recompute_mode",
	"recommend_recompute_timeout":   "recommend.recompute_timeout",

	"features_genre_weight":    "features.genre_weight",
	"features_director_weight": "features.director_weight",
	"features_cast_weight":     "features.cast_weight",
	"features_max_cast":        "features.max_cast",
	"features_min_df":          "features.min_df",
	"features_max_df":          "features.max_df",
	"features_ngram_min":       "features.ngram_min",
	"features_ngram_max":       "features.ngram_max",
	"features_max_features":    "features.max_features",
	"features_sublinear_tf":    "features.sublinear_tf",

	"profile_min_genre_support":    "profile.min_genre_support",
	"profile_min_director_support": "profile.min_director_support",
	"profile_genre_boost":          "profile.genre_boost_factor",
	"profile_director_boost":       "profile.director_boost_factor",

	"catalogue_snapshot_dir":     "catalogue.snapshot_dir",
	"catalogue_snapshots_kept":   "catalogue.snapshots_kept",
	"catalogue_refresh_interval": "catalogue.refresh_interval",
	"catalogue_refresh_burst":    "catalogue.refresh_burst",
	"popular_cache_size":         "catalogue.popular_cache_size",
	"popular_cache_ttl":          "catalogue.popular_cache_ttl",

	"userstate_store": "userstate.store",
	"userstate_path":  "userstate.path",

	"events_backend":              "events.backend",
	"nats_url":                    "events.nats_url",
	"events_topic":                "events.topic",
	"events_queue_group":          "events.queue_group",
	"nats_embedded_port":          "events.embedded_port",
	"nats_store_dir":              "events.embedded_store_dir",
	"events_workers":              "events.workers",
	"events_breaker_max_failures": "events.breaker_max_failures",
	"events_breaker_open_timeout": "events.breaker_open_timeout",
	"events_publish_timeout":      "events.publish_timeout",
	"events_close_wait":           "events.subscriber_close_wait",

	"cors_origins":       "security.cors_origins",
	"rate_limit_reqs":    "security.rate_limit_reqs",
	"rate_limit_window":  "security.rate_limit_window",
	"disable_rate_limit": "security.rate_limit_disabled",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped names return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
