// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

// Package userstate tracks per-user recompute lifecycle state.
//
// A State is created on a user's first interaction. It is implicitly
// invalidated when the live catalogue version differs from the version it
// recorded. Recomputes for one user are serialized through per-user locks;
// different users never contend.
package userstate

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when no state exists for a user.
var ErrNotFound = errors.New("user state not found")

// State is the lifecycle record for one user.
type State struct {
	UserID           int       `json:"user_id"`
	LastRecomputeAt  time.Time `json:"last_recompute_at"`
	CatalogueVersion int64     `json:"catalogue_version"`
	LastRatingAt     time.Time `json:"last_rating_at"`
	RecomputeCount   int64     `json:"recompute_count"`

	// LastFailureAt is set when a recompute fails and cleared by the next
	// successful one.
	LastFailureAt time.Time `json:"last_failure_at"`
}

// Store persists user states and hands out per-user locks.
type Store interface {
	// Get returns the state for userID or ErrNotFound.
	Get(ctx context.Context, userID int) (State, error)

	// Put creates or replaces a state.
	Put(ctx context.Context, st State) error

	// Update applies fn to userID's state as one atomic read-modify-write
	// and returns the stored result. A missing state starts as the zero
	// State with UserID set. fn may run more than once and must only
	// mutate the state it is given.
	Update(ctx context.Context, userID int, fn func(*State)) (State, error)

	// Delete removes a state. Missing users are not an error.
	Delete(ctx context.Context, userID int) error

	// Lock acquires the recompute lock for userID and returns its release func.
	Lock(userID int) func()

	// Close releases resources.
	Close() error
}

// keyedMutex hands out one mutex per user id. Entries are reference
// counted and removed when the last holder or waiter releases them, so the
// map only holds users with a lock in use.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int]*refMutex
}

type refMutex struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int]*refMutex)}
}

// Lock blocks until the mutex for key is held.
func (k *keyedMutex) Lock(key int) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Unlock()
			k.mu.Lock()
			m.refs--
			if m.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}

// size returns the number of live lock entries.
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
