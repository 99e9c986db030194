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

	"github.com/tomtom215/cinecompass/internal/models"
	"github.com/tomtom215/cinecompass/internal/userstate"
)

// Freshness is the per-user cache lifecycle state.
type Freshness string

const (
	// FreshnessFresh means the cache reflects every stored rating.
	FreshnessFresh Freshness = "fresh"
	// FreshnessStalePendingSync means ratings arrived after the last recompute.
	FreshnessStalePendingSync Freshness = "stale_pending_sync"
	// FreshnessRecomputing means a recompute is running.
	FreshnessRecomputing Freshness = "recomputing"
)

// SyncDecision is the result of SyncGate.Check.
type SyncDecision struct {
	NeedsSync  bool
	NewRatings []models.Rating
}

// SyncGate decides whether cached pages may be served and when a user's
// cache must be recomputed.
type SyncGate struct {
	ratings   RatingStore
	states    userstate.Store
	threshold time.Duration
	version   func() int64
}

// NewSyncGate creates a gate. version returns the live catalogue version.
func NewSyncGate(ratings RatingStore, states userstate.Store, threshold time.Duration, version func() int64) *SyncGate {
	return &SyncGate{ratings: ratings, states: states, threshold: threshold, version: version}
}

// Check reports NeedsSync when lastSync is set and the user has ratings newer than it.
func (g *SyncGate) Check(ctx context.Context, userID int, lastSync *time.Time) (SyncDecision, error) {
	if lastSync == nil {
		return SyncDecision{}, nil
	}
	newer, err := g.ratings.RatingsSince(ctx, userID, *lastSync)
	if err != nil {
		return SyncDecision{}, fmt.Errorf("ratings since last sync: %w", err)
	}
	if len(newer) == 0 {
		return SyncDecision{}, nil
	}
	return SyncDecision{NeedsSync: true, NewRatings: newer}, nil
}

// ShouldRecompute reports whether userID's cache is due for a recompute at now.
// It is due when the user was never recomputed, when UpdateThreshold has
// elapsed, or when the catalogue version changed.
func (g *SyncGate) ShouldRecompute(ctx context.Context, userID int, now time.Time) (bool, error) {
	st, err := g.states.Get(ctx, userID)
	if errors.Is(err, userstate.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get user state: %w", err)
	}
	return g.due(st, now), nil
}

//nolint:gocritic // hugeParam: State passed by value for immutability
func (g *SyncGate) due(st userstate.State, now time.Time) bool {
	if st.LastRecomputeAt.IsZero() {
		return true
	}
	if now.Sub(st.LastRecomputeAt) > g.threshold {
		return true
	}
	return st.CatalogueVersion != g.version()
}
