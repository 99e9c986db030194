// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/cinecompass/internal/metrics"
	"github.com/tomtom215/cinecompass/internal/models"
	"github.com/tomtom215/cinecompass/internal/recommend/features"
	"github.com/tomtom215/cinecompass/internal/recommend/storage"
)

// LoadCatalogue restores the latest snapshot when it matches the newest
// recorded build, and rebuilds otherwise. An empty movie table is not an
// error; reads then fall back to the popular listing.
func (e *Engine) LoadCatalogue(ctx context.Context) error {
	if e.snapshots != nil {
		version, fp, ok, err := e.store.LatestCatalogueBuild(ctx)
		if err != nil {
			return fmt.Errorf("latest catalogue build: %w", err)
		}
		if ok {
			cat, _, err := e.snapshots.Load(ctx, version)
			switch {
			case err == nil:
				e.publish(cat, fp)
				e.logger.Info().Int64("version", version).Int("items", cat.Len()).Msg("restored catalogue snapshot")
				return nil
			case errors.Is(err, storage.ErrNoSnapshot):
			default:
				e.logger.Warn().Err(err).Int64("version", version).Msg("catalogue snapshot unreadable, rebuilding")
			}
		}
	}

	_, err := e.RebuildCatalogue(ctx)
	if errors.Is(err, ErrEmptyCorpus) {
		e.logger.Info().Msg("catalogue is empty, serving popular fallback")
		return nil
	}
	return err
}

// RebuildCatalogue performs a full feature rebuild under a new version.
// Concurrent callers get ErrRebuildInProgress.
func (e *Engine) RebuildCatalogue(ctx context.Context) (*CatalogueStatus, error) {
	if !e.rebuildMu.TryLock() {
		return nil, ErrRebuildInProgress
	}
	defer e.rebuildMu.Unlock()
	e.rebuilding.Store(true)
	defer e.rebuilding.Store(false)

	start := time.Now()
	fp, err := e.store.CatalogueFingerprint(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalogue fingerprint: %w", err)
	}
	movies, err := e.store.ListMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	if len(movies) == 0 {
		return nil, &EmptyCorpusError{Items: 0}
	}

	version, err := e.store.NextCatalogueVersion(ctx, fp, len(movies))
	if err != nil {
		return nil, fmt.Errorf("allocate catalogue version: %w", err)
	}
	cat, err := features.Build(movies, e.config.Features, version)
	if err != nil {
		return nil, fmt.Errorf("build catalogue: %w", err)
	}

	if e.snapshots != nil {
		if _, err := e.snapshots.Save(ctx, cat); err != nil {
			e.logger.Warn().Err(err).Int64("version", version).Msg("failed to save catalogue snapshot")
		} else if _, err := e.snapshots.Prune(ctx, e.config.SnapshotsKept); err != nil {
			e.logger.Warn().Err(err).Msg("failed to prune catalogue snapshots")
		}
	}

	e.publish(cat, fp)
	metrics.RecordCatalogueBuild(version, cat.Len(), time.Since(start))
	e.logger.Info().
		Int64("version", version).
		Int("items", cat.Len()).
		Int("terms", cat.Vocabulary().Size()).
		Dur("duration", time.Since(start)).
		Msg("catalogue rebuilt")

	st := e.CatalogueStatus()
	return &st, nil
}

func (e *Engine) publish(cat *features.Catalog, fingerprint string) {
	e.catalogue.Store(cat)
	e.popular.Clear()
	e.fingerprintMu.Lock()
	e.lastFingerprint = fingerprint
	e.fingerprintMu.Unlock()
}

// RefreshIfChanged rebuilds when the movie table changed since the last build.
func (e *Engine) RefreshIfChanged(ctx context.Context) (bool, error) {
	fp, err := e.store.CatalogueFingerprint(ctx)
	if err != nil {
		return false, fmt.Errorf("catalogue fingerprint: %w", err)
	}
	e.fingerprintMu.Lock()
	unchanged := fp == e.lastFingerprint && e.catalogue.Load() != nil
	e.fingerprintMu.Unlock()
	if unchanged {
		return false, nil
	}
	if _, err := e.RebuildCatalogue(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ImportCatalogue upserts movies and rebuilds the catalogue. When another
// rebuild is running the import still succeeds and Rebuilt is false.
func (e *Engine) ImportCatalogue(ctx context.Context, movies []models.Movie) (*ImportResult, error) {
	n, err := e.store.UpsertMovies(ctx, movies)
	if err != nil {
		return nil, fmt.Errorf("upsert movies: %w", err)
	}
	e.popular.Clear()

	res := &ImportResult{Imported: n}
	st, err := e.RebuildCatalogue(ctx)
	switch {
	case err == nil:
		res.Rebuilt = true
		res.Catalogue = st
	case errors.Is(err, ErrRebuildInProgress):
	default:
		return nil, err
	}
	return res, nil
}

// CatalogueStatus describes the live catalogue.
func (e *Engine) CatalogueStatus() CatalogueStatus {
	st := CatalogueStatus{Rebuilding: e.rebuilding.Load()}
	cat := e.catalogue.Load()
	if cat == nil {
		return st
	}
	st.Ready = true
	st.Version = cat.Version()
	st.Items = cat.Len()
	st.Terms = cat.Vocabulary().Size()
	st.BuiltAt = cat.BuiltAt()
	return st
}
