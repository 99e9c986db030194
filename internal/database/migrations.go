// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package database

import (
	"context"
	"fmt"
	"time"
)

// Migration is one versioned, append-only schema change.
type Migration struct {
	Version     int
	Name        string
	Description string
	SQL         string
	AppliedAt   time.Time
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	applied_at TIMESTAMP NOT NULL DEFAULT current_timestamp
);
`

// migrations returns every migration in version order. Never edit or remove
// an entry once released; append a new version instead.
func migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Name:        "cached_recommendations_user_version_idx",
			Description: "Index paging reads by user and catalogue version",
			SQL:         `CREATE INDEX IF NOT EXISTS idx_cached_recs_user_version ON cached_recommendations (user_id, catalogue_version);`,
		},
		{
			Version:     2,
			Name:        "ratings_user_rated_at_idx",
			Description: "Index last-sync lookups by user and rating time",
			SQL:         `CREATE INDEX IF NOT EXISTS idx_ratings_user_rated_at ON ratings (user_id, rated_at);`,
		},
		{
			Version:     3,
			Name:        "movies_popularity_idx",
			Description: "Index the popular listing",
			SQL:         `CREATE INDEX IF NOT EXISTS idx_movies_popularity ON movies (popularity);`,
		},
	}
}

func (db *DB) appliedMigrations(ctx context.Context) (map[int]Migration, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT version, name, description, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]Migration)
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.Description, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[m.Version] = m
	}
	return applied, rows.Err()
}

// runVersionedMigrations applies each migration not yet recorded in schema_migrations.
func (db *DB) runVersionedMigrations() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	applied, err := db.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	count := 0
	for _, m := range migrations() {
		if _, done := applied[m.Version]; done {
			continue
		}
		if _, err := db.conn.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name, description) VALUES (?, ?, ?)`,
			m.Version, m.Name, m.Description); err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
		}
		count++
	}
	if count > 0 {
		db.logger.Info().Int("applied", count).Msg("Applied database migrations")
	}
	return nil
}

// SchemaVersion returns the highest applied migration version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	var version int
	if err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
