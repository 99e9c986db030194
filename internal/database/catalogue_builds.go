// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/cinecompass/internal/metrics"
)

// NextCatalogueVersion records a new build and returns its version, one
// greater than any previous build. Versions survive restarts.
func (db *DB) NextCatalogueVersion(ctx context.Context, fingerprint string, items int) (version int64, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("next_version", tableBuilds, time.Since(start), err) }()

	err = db.withConflictRetry(ctx, func() error {
		var e error
		version, e = db.nextCatalogueVersionTx(ctx, fingerprint, items)
		return e
	})
	return version, err
}

func (db *DB) nextCatalogueVersionTx(ctx context.Context, fingerprint string, items int) (version int64, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) + 1 FROM catalogue_builds`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read catalogue version: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalogue_builds (version, fingerprint, items, built_at) VALUES (?, ?, ?, ?)`,
		version, fingerprint, items, db.now().UTC()); err != nil {
		return 0, fmt.Errorf("failed to record catalogue build: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit catalogue build: %w", err)
	}
	return version, nil
}

// LatestCatalogueBuild returns the newest recorded build. ok is false when
// no build has been recorded.
func (db *DB) LatestCatalogueBuild(ctx context.Context) (version int64, fingerprint string, ok bool, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	err = db.conn.QueryRowContext(ctx,
		`SELECT version, fingerprint FROM catalogue_builds ORDER BY version DESC LIMIT 1`).Scan(&version, &fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, fmt.Errorf("failed to read latest catalogue build: %w", err)
	}
	return version, fingerprint, true, nil
}
