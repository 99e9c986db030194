// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinecompass/internal/metrics"
	"github.com/tomtom215/cinecompass/internal/models"
)

const movieColumns = `id, title, genres, cast_members, director, overview, popularity,
	vote_average, poster_path, backdrop_path, release_date, updated_at`

// ListMovies returns the whole catalogue ordered by id.
func (db *DB) ListMovies(ctx context.Context) (movies []models.Movie, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list", tableMovies, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()
	return scanMovies(rows)
}

// PopularMovies returns up to limit movies by popularity, ties by id.
func (db *DB) PopularMovies(ctx context.Context, limit int) (movies []models.Movie, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("popular", tableMovies, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies ORDER BY popularity DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular movies: %w", err)
	}
	defer rows.Close()
	return scanMovies(rows)
}

func scanMovies(rows *sql.Rows) ([]models.Movie, error) {
	movies := make([]models.Movie, 0)
	for rows.Next() {
		var (
			m              models.Movie
			genres, castJS string
		)
		if err := rows.Scan(&m.ID, &m.Title, &genres, &castJS, &m.Director, &m.Overview, &m.Popularity,
			&m.VoteAverage, &m.PosterPath, &m.BackdropPath, &m.ReleaseDate, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		if err := json.Unmarshal([]byte(genres), &m.Genres); err != nil {
			return nil, fmt.Errorf("movie %d: decode genres: %w", m.ID, err)
		}
		if err := json.Unmarshal([]byte(castJS), &m.Cast); err != nil {
			return nil, fmt.Errorf("movie %d: decode cast: %w", m.ID, err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// UpsertMovies inserts or replaces movies in one transaction. A zero
// UpdatedAt is stamped with the current time.
func (db *DB) UpsertMovies(ctx context.Context, movies []models.Movie) (n int, err error) {
	if len(movies) == 0 {
		return 0, nil
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", tableMovies, time.Since(start), err) }()

	err = db.withConflictRetry(ctx, func() error {
		var e error
		n, e = db.upsertMovies(ctx, movies)
		return e
	})
	return n, err
}

func (db *DB) upsertMovies(ctx context.Context, movies []models.Movie) (n int, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				db.logger.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO movies (`+movieColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			genres = EXCLUDED.genres,
			cast_members = EXCLUDED.cast_members,
			director = EXCLUDED.director,
			overview = EXCLUDED.overview,
			popularity = EXCLUDED.popularity,
			vote_average = EXCLUDED.vote_average,
			poster_path = EXCLUDED.poster_path,
			backdrop_path = EXCLUDED.backdrop_path,
			release_date = EXCLUDED.release_date,
			updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare movie upsert: %w", err)
	}
	defer closeWithLog(stmt, db.logger, "prepared statement")

	now := db.now().UTC()
	for i := range movies {
		m := &movies[i]
		genres, err := encodeList(m.Genres)
		if err != nil {
			return 0, fmt.Errorf("movie %d: encode genres: %w", m.ID, err)
		}
		castJS, err := encodeList(m.Cast)
		if err != nil {
			return 0, fmt.Errorf("movie %d: encode cast: %w", m.ID, err)
		}
		updated := m.UpdatedAt.UTC()
		if m.UpdatedAt.IsZero() {
			updated = now
		}
		if _, err := stmt.ExecContext(ctx, m.ID, m.Title, genres, castJS, m.Director, m.Overview, m.Popularity,
			m.VoteAverage, m.PosterPath, m.BackdropPath, m.ReleaseDate, updated); err != nil {
			return 0, fmt.Errorf("failed to upsert movie %d: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit movies: %w", err)
	}
	return len(movies), nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ExistingMovieIDs returns the subset of ids present in the catalogue.
func (db *DB) ExistingMovieIDs(ctx context.Context, ids []int) (found map[int]struct{}, err error) {
	found = make(map[int]struct{}, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("exists", tableMovies, time.Since(start), err) }()

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM movies WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movie ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan movie id: %w", err)
		}
		found[id] = struct{}{}
	}
	return found, rows.Err()
}

// CatalogueFingerprint summarizes the movie table as "<count>:<max updated_at>".
// It changes whenever a movie is added or re-imported.
func (db *DB) CatalogueFingerprint(ctx context.Context) (fp string, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("fingerprint", tableMovies, time.Since(start), err) }()

	var (
		count   int64
		updated sql.NullTime
	)
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*), MAX(updated_at) FROM movies`).Scan(&count, &updated); err != nil {
		return "", fmt.Errorf("failed to fingerprint movies: %w", err)
	}
	var nanos int64
	if updated.Valid {
		nanos = updated.Time.UnixNano()
	}
	return fmt.Sprintf("%d:%d", count, nanos), nil
}

// MovieCount returns the number of catalogue rows.
func (db *DB) MovieCount(ctx context.Context) (int, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}
