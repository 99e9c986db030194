// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinecompass/internal/config"
	"github.com/tomtom215/cinecompass/internal/database"
	"github.com/tomtom215/cinecompass/internal/recommend"
	"github.com/tomtom215/cinecompass/internal/recommend/algorithms"
	"github.com/tomtom215/cinecompass/internal/recommend/features"
	"github.com/tomtom215/cinecompass/internal/recommend/storage"
	"github.com/tomtom215/cinecompass/internal/userstate"
)

// RecommendComponents holds the engine and the stores it owns.
type RecommendComponents struct {
	Engine *recommend.Engine
	States userstate.Store
}

// Close releases the user state store after background recomputes finish.
func (c *RecommendComponents) Close() error {
	c.Engine.Wait()
	return c.States.Close()
}

// buildEngineConfig maps application configuration onto the engine's.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	kept := cfg.Catalogue.SnapshotsKept
	if kept < 1 {
		kept = 1
	}
	return &recommend.Config{
		UpdateThreshold:    cfg.Recommend.UpdateThreshold,
		MaxBatchSize:       cfg.Recommend.MaxBatchSize,
		DefaultPageSize:    cfg.Recommend.DefaultPageSize,
		MaxPageSize:        cfg.Recommend.MaxPageSize,
		DiversityEnabled:   cfg.Recommend.DiversityEnabled,
		DiversityThreshold: cfg.Recommend.DiversityThreshold,
		DiversityPoolSize:  cfg.Recommend.DiversityPoolSize,
		Seed:               cfg.Recommend.Seed,
		RecomputeMode:      cfg.Recommend.RecomputeMode,
		RecomputeTimeout:   cfg.Recommend.RecomputeTimeout,
		PopularCacheSize:   cfg.Catalogue.PopularCacheSize,
		PopularCacheTTL:    cfg.Catalogue.PopularCacheTTL,
		SnapshotsKept:      kept,
		Features: features.Config{
			GenreWeight:    cfg.Features.GenreWeight,
			DirectorWeight: cfg.Features.DirectorWeight,
			CastWeight:     cfg.Features.CastWeight,
			MaxCast:        cfg.Features.MaxCast,
			MinDF:          cfg.Features.MinDF,
			MaxDF:          cfg.Features.MaxDF,
			NGramMin:       cfg.Features.NGramMin,
			NGramMax:       cfg.Features.NGramMax,
			MaxFeatures:    cfg.Features.MaxFeatures,
			SublinearTF:    cfg.Features.SublinearTF,
		},
		Profile: algorithms.ProfileConfig{
			MinGenreSupport:     cfg.Profile.MinGenreSupport,
			MinDirectorSupport:  cfg.Profile.MinDirectorSupport,
			GenreBoostFactor:    cfg.Profile.GenreBoostFactor,
			DirectorBoostFactor: cfg.Profile.DirectorBoostFactor,
		},
	}
}

// initRecommend opens the user state store, creates the engine and loads
// the catalogue.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, db *database.DB, logger zerolog.Logger) (*RecommendComponents, error) {
	states, err := userstate.New(userstate.Backend(cfg.UserState.Store), cfg.UserState.Path)
	if err != nil {
		return nil, fmt.Errorf("open user state store: %w", err)
	}

	var snapshots *storage.Store
	if cfg.Catalogue.SnapshotDir != "" {
		snapshots, err = storage.NewStore(cfg.Catalogue.SnapshotDir)
		if err != nil {
			_ = states.Close()
			return nil, fmt.Errorf("open catalogue snapshot store: %w", err)
		}
	}

	engine, err := recommend.NewEngine(buildEngineConfig(cfg), db, states, snapshots, logger)
	if err != nil {
		_ = states.Close()
		return nil, fmt.Errorf("create engine: %w", err)
	}

	logger.Info().
		Dur("update_threshold", cfg.Recommend.UpdateThreshold).
		Str("recompute_mode", cfg.Recommend.RecomputeMode).
		Str("user_state", cfg.UserState.Store).
		Bool("snapshots", snapshots != nil).
		Msg("loading feature catalogue")

	if err := engine.LoadCatalogue(ctx); err != nil {
		_ = states.Close()
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	st := engine.CatalogueStatus()
	logger.Info().Bool("ready", st.Ready).Int64("version", st.Version).Int("items", st.Items).Msg("recommendation engine ready")

	return &RecommendComponents{Engine: engine, States: states}, nil
}
