// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package userstate

import (
	"context"
	"sync"
)

// MemoryStore keeps states in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[int]State
	locks  *keyedMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[int]State),
		locks:  newKeyedMutex(),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, userID int) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[userID]
	if !ok {
		return State{}, ErrNotFound
	}
	return st, nil
}

// Put implements Store.
//
//nolint:gocritic // hugeParam: State passed by value for immutability
func (s *MemoryStore) Put(_ context.Context, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[st.UserID] = st
	return nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, userID int, fn func(*State)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[userID]
	if !ok {
		st = State{UserID: userID}
	}
	fn(&st)
	st.UserID = userID
	s.states[userID] = st
	return st, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
	return nil
}

// Lock implements Store.
func (s *MemoryStore) Lock(userID int) func() { return s.locks.Lock(userID) }

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
