// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package database

import "fmt"

// Table names, also used as metric labels.
const (
	tableMovies          = "movies"
	tableRatings         = "ratings"
	tableRecommendations = "cached_recommendations"
	tableBuilds          = "catalogue_builds"
)

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS movies (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			genres TEXT NOT NULL DEFAULT '[]',
			cast_members TEXT NOT NULL DEFAULT '[]',
			director TEXT NOT NULL DEFAULT '',
			overview TEXT NOT NULL DEFAULT '',
			popularity DOUBLE NOT NULL DEFAULT 0,
			vote_average DOUBLE NOT NULL DEFAULT 0,
			poster_path TEXT NOT NULL DEFAULT '',
			backdrop_path TEXT NOT NULL DEFAULT '',
			release_date TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ratings (
			user_id INTEGER NOT NULL,
			movie_id INTEGER NOT NULL,
			rating DOUBLE NOT NULL CHECK (rating >= 0 AND rating <= 5),
			rated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, movie_id)
		);`,
		// No primary key: rows are only ever deleted and inserted per user inside
		// one transaction, and DuckDB rejects delete+insert of the same key.
		`CREATE TABLE IF NOT EXISTS cached_recommendations (
			user_id INTEGER NOT NULL,
			movie_id INTEGER NOT NULL,
			score DOUBLE NOT NULL,
			details TEXT NOT NULL,
			reason TEXT NOT NULL,
			catalogue_version BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogue_builds (
			version BIGINT PRIMARY KEY,
			fingerprint TEXT NOT NULL,
			items INTEGER NOT NULL,
			built_at TIMESTAMP NOT NULL
		);`,
	}
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()
	for _, q := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}
