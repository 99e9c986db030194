// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/cinecompass/internal/metrics"
	"github.com/tomtom215/cinecompass/internal/models"
	"github.com/tomtom215/cinecompass/internal/recommend/algorithms"
	"github.com/tomtom215/cinecompass/internal/userstate"
)

// Recompute rebuilds userID's profile and atomically replaces the cached ranking.
//
// Recomputes for one user are serialized; different users run in parallel.
// On failure the previous cache and LastRecomputeAt are left untouched and
// the failure is recorded so a later read retries it.
func (e *Engine) Recompute(ctx context.Context, userID int, trigger string) (err error) {
	unlock := e.states.Lock(userID)
	defer unlock()

	e.inflight.Store(userID, struct{}{})
	defer e.inflight.Delete(userID)

	start := time.Now()
	defer func() {
		e.recomputes.Add(1)
		metrics.RecordRecompute(trigger, time.Since(start), err)
		if err != nil {
			e.recordFailure(context.WithoutCancel(ctx), userID)
		}
	}()

	cat := e.catalogue.Load()
	if cat == nil {
		return ErrCatalogueUnavailable
	}

	ratings, err := e.store.RatingsForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("ratings for user: %w", err)
	}

	now := e.now()
	stats := algorithms.BuildStats(ratings, cat)
	profile, err := e.profiles.Build(ctx, ratings, cat, stats, now)
	if err != nil {
		return fmt.Errorf("build profile: %w", err)
	}

	var recs []models.CachedRecommendation
	if !profile.IsZero() {
		exclude := make(map[int]struct{}, len(ratings))
		for _, r := range ratings {
			exclude[r.MovieID] = struct{}{}
		}
		ranked, err := e.ranker.Rank(ctx, profile, cat, exclude)
		if err != nil {
			return fmt.Errorf("rank candidates: %w", err)
		}
		recs = make([]models.CachedRecommendation, 0, len(ranked))
		for _, r := range ranked {
			recs = append(recs, models.CachedRecommendation{
				UserID:           userID,
				MovieID:          r.MovieID,
				Score:            r.Score,
				Details:          models.DetailsFromMovie(cat.Item(r.Index)),
				Reason:           models.ReasonContentSimilarity,
				CatalogueVersion: cat.Version(),
				CreatedAt:        now,
			})
		}
	}

	if err := e.store.ReplaceRecommendations(ctx, userID, cat.Version(), recs); err != nil {
		metrics.CacheReplaceFailures.Inc()
		return &CacheTransactionError{UserID: userID, Err: err}
	}

	version := cat.Version()
	if _, err := e.states.Update(ctx, userID, func(st *userstate.State) {
		st.LastRecomputeAt = now
		st.CatalogueVersion = version
		st.RecomputeCount++
		st.LastFailureAt = time.Time{}
	}); err != nil {
		return fmt.Errorf("update user state: %w", err)
	}

	e.logger.Debug().
		Int("user_id", userID).
		Str("trigger", trigger).
		Int("ratings", len(ratings)).
		Int("skipped", profile.Skipped).
		Int("ranked", len(recs)).
		Int64("catalogue_version", cat.Version()).
		Dur("duration", time.Since(start)).
		Msg("recompute complete")
	return nil
}

// triggerRecompute runs a recompute through the scheduler in async mode and
// falls back to a synchronous recompute when scheduling fails.
func (e *Engine) triggerRecompute(ctx context.Context, userID int, trigger string) error {
	if e.config.RecomputeMode == RecomputeAsync {
		e.schedulerMu.RLock()
		s := e.scheduler
		e.schedulerMu.RUnlock()
		if s != nil {
			err := s.ScheduleRecompute(ctx, userID, trigger)
			if err == nil {
				return nil
			}
			e.logger.Warn().Err(err).Int("user_id", userID).Msg("recompute scheduling failed, recomputing synchronously")
		}
	}

	rctx, cancel := context.WithTimeout(ctx, e.config.RecomputeTimeout)
	defer cancel()
	return e.Recompute(rctx, userID, trigger)
}

func (e *Engine) recordFailure(ctx context.Context, userID int) {
	at := e.now()
	if _, err := e.states.Update(ctx, userID, func(st *userstate.State) {
		st.LastFailureAt = at
	}); err != nil {
		e.logger.Warn().Err(err).Int("user_id", userID).Msg("failed to record recompute failure")
	}
}

// scheduleBackground starts an in-process recompute without blocking the
// caller. At most one background recompute per user is pending at a time.
func (e *Engine) scheduleBackground(userID int, trigger string) {
	if _, running := e.inflight.Load(userID); running {
		return
	}
	if _, claimed := e.pending.LoadOrStore(userID, struct{}{}); claimed {
		return
	}
	e.background.Add(1)
	go func() {
		defer e.background.Done()
		defer e.pending.Delete(userID)

		ctx, cancel := context.WithTimeout(context.Background(), e.config.RecomputeTimeout)
		defer cancel()
		if err := e.Recompute(ctx, userID, trigger); err != nil {
			e.logger.Warn().Err(err).Int("user_id", userID).Str("trigger", trigger).Msg("background recompute failed")
		}
	}()
}
