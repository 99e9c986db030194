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

	"github.com/tomtom215/cinecompass/internal/metrics"
	"github.com/tomtom215/cinecompass/internal/models"
)

const upsertRatingSQL = `INSERT INTO ratings (user_id, movie_id, rating, rated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (user_id, movie_id) DO UPDATE SET
		rating = EXCLUDED.rating,
		rated_at = EXCLUDED.rated_at`

// UpsertRating inserts or replaces one rating.
func (db *DB) UpsertRating(ctx context.Context, r models.Rating) (err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", tableRatings, time.Since(start), err) }()

	return db.withConflictRetry(ctx, func() error {
		if _, err := db.conn.ExecContext(ctx, upsertRatingSQL, r.UserID, r.MovieID, r.Score, r.Timestamp.UTC()); err != nil {
			return fmt.Errorf("failed to upsert rating: %w", err)
		}
		return nil
	})
}

// UpsertRatings upserts every rating in one transaction. Either all are
// stored or none are.
func (db *DB) UpsertRatings(ctx context.Context, rs []models.Rating) (err error) {
	if len(rs) == 0 {
		return nil
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert_batch", tableRatings, time.Since(start), err) }()

	return db.withConflictRetry(ctx, func() error { return db.upsertRatingsTx(ctx, rs) })
}

func (db *DB) upsertRatingsTx(ctx context.Context, rs []models.Rating) (err error) {
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

	stmt, err := tx.PrepareContext(ctx, upsertRatingSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare rating upsert: %w", err)
	}
	defer closeWithLog(stmt, db.logger, "prepared statement")

	for _, r := range rs {
		if _, err := stmt.ExecContext(ctx, r.UserID, r.MovieID, r.Score, r.Timestamp.UTC()); err != nil {
			return fmt.Errorf("failed to upsert rating for movie %d: %w", r.MovieID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ratings: %w", err)
	}
	return nil
}

// RatingsForUser returns every rating by userID ordered by movie id.
func (db *DB) RatingsForUser(ctx context.Context, userID int) (rs []models.Rating, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("for_user", tableRatings, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, movie_id, rating, rated_at FROM ratings WHERE user_id = ? ORDER BY movie_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()
	return scanRatings(rows)
}

// RatingsSince returns userID's ratings stored strictly after since, oldest first.
func (db *DB) RatingsSince(ctx context.Context, userID int, since time.Time) (rs []models.Rating, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("since", tableRatings, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, movie_id, rating, rated_at FROM ratings
		WHERE user_id = ? AND rated_at > ? ORDER BY rated_at, movie_id`, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings since: %w", err)
	}
	defer rows.Close()
	return scanRatings(rows)
}

func scanRatings(rows *sql.Rows) ([]models.Rating, error) {
	out := make([]models.Rating, 0)
	for rows.Next() {
		var r models.Rating
		if err := rows.Scan(&r.UserID, &r.MovieID, &r.Score, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
