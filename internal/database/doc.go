// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

// Package database is the DuckDB persistence layer for CineCompass.
//
// # Tables
//
//   - movies: the catalogue, genres and cast stored as JSON text
//   - ratings: one row per (user_id, movie_id), upserted
//   - cached_recommendations: each user's materialized ranking, tagged with
//     the catalogue version it was computed against
//   - catalogue_builds: the monotonic catalogue version counter with the
//     movie-table fingerprint observed at each build
//   - schema_migrations: applied versioned migrations
//
// # Transactions
//
// ReplaceRecommendations deletes and inserts a user's rows in a single
// transaction, so readers see either the old set or the new set. DuckDB
// uses optimistic concurrency; conflicting writers are retried with a
// short exponential backoff before the error is surfaced.
//
// *DB satisfies recommend.Store.
package database
