// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinecompass/internal/metrics"
	"github.com/tomtom215/cinecompass/internal/models"
)

// ReplaceRecommendations swaps userID's cached ranking for recs in one
// transaction. Rows from every catalogue version are removed, so a user
// holds at most one ranking.
func (db *DB) ReplaceRecommendations(ctx context.Context, userID int, version int64, recs []models.CachedRecommendation) (err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("replace", tableRecommendations, time.Since(start), err) }()

	return db.withConflictRetry(ctx, func() error { return db.replaceRecommendationsTx(ctx, userID, version, recs) })
}

func (db *DB) replaceRecommendationsTx(ctx context.Context, userID int, version int64, recs []models.CachedRecommendation) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				db.logger.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cached_recommendations WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete cached recommendations: %w", err)
	}

	if len(recs) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO cached_recommendations
			(user_id, movie_id, score, details, reason, catalogue_version, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare recommendation insert: %w", err)
		}
		defer closeWithLog(stmt, db.logger, "prepared statement")

		for i := range recs {
			r := &recs[i]
			details, err := json.Marshal(r.Details)
			if err != nil {
				return fmt.Errorf("movie %d: encode details: %w", r.MovieID, err)
			}
			if _, err := stmt.ExecContext(ctx, userID, r.MovieID, r.Score, string(details), r.Reason, version, r.CreatedAt.UTC()); err != nil {
				return fmt.Errorf("failed to insert recommendation for movie %d: %w", r.MovieID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recommendations: %w", err)
	}
	return nil
}

const recommendationColumns = `user_id, movie_id, score, details, reason, catalogue_version, created_at`

// unratedRecommendations filters a user's ranking at one catalogue version to
// movies the user has not rated. Args: user id, version, user id.
const unratedRecommendations = `FROM cached_recommendations
		WHERE user_id = ? AND catalogue_version = ?
		AND movie_id NOT IN (SELECT movie_id FROM ratings WHERE user_id = ?)`

// PageRecommendations returns one page of userID's ranking at version,
// ordered by score desc then movie id asc, plus the total row count.
// Movies the user has rated are excluded.
func (db *DB) PageRecommendations(ctx context.Context, userID int, version int64, page, pageSize int) (recs []models.CachedRecommendation, total int, err error) {
	if page < 1 || pageSize < 1 {
		return nil, 0, fmt.Errorf("invalid page %d / page size %d", page, pageSize)
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("page", tableRecommendations, time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) `+unratedRecommendations,
		userID, version, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count recommendations: %w", err)
	}
	if total == 0 {
		return []models.CachedRecommendation{}, 0, nil
	}

	rows, err := tx.QueryContext(ctx, `SELECT `+recommendationColumns+` `+unratedRecommendations+`
		ORDER BY score DESC, movie_id ASC
		LIMIT ? OFFSET ?`, userID, version, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()
	recs, err = scanRecommendations(rows)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// RecommendationPool returns up to limit unrated rows of userID's ranking
// starting at offset.
func (db *DB) RecommendationPool(ctx context.Context, userID int, version int64, offset, limit int) (recs []models.CachedRecommendation, err error) {
	if limit <= 0 {
		return []models.CachedRecommendation{}, nil
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("pool", tableRecommendations, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+recommendationColumns+` `+unratedRecommendations+`
		ORDER BY score DESC, movie_id ASC
		LIMIT ? OFFSET ?`, userID, version, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation pool: %w", err)
	}
	defer rows.Close()
	return scanRecommendations(rows)
}

func scanRecommendations(rows *sql.Rows) ([]models.CachedRecommendation, error) {
	out := make([]models.CachedRecommendation, 0)
	for rows.Next() {
		var (
			r       models.CachedRecommendation
			details string
		)
		if err := rows.Scan(&r.UserID, &r.MovieID, &r.Score, &details, &r.Reason, &r.CatalogueVersion, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		if err := json.Unmarshal([]byte(details), &r.Details); err != nil {
			return nil, fmt.Errorf("movie %d: decode details: %w", r.MovieID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRecommendations returns how many cached rows userID holds across all versions.
func (db *DB) CountRecommendations(ctx context.Context, userID int) (int, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM cached_recommendations WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count recommendations: %w", err)
	}
	return n, nil
}
