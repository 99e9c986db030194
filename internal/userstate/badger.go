// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package userstate

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const stateKeyPrefix = "userstate:"

// BadgerStore persists states in BadgerDB so they survive restarts.
// Locks are process-local.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
	locks  *keyedMutex
	writes *keyedMutex
}

// NewBadgerStore wraps an open BadgerDB. The caller keeps ownership of db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, locks: newKeyedMutex(), writes: newKeyedMutex()}
}

// OpenBadgerStore opens a BadgerDB at path and owns it.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for user state: %w", err)
	}
	s := NewBadgerStore(db)
	s.ownsDB = true
	return s, nil
}

func stateKey(userID int) []byte {
	return []byte(stateKeyPrefix + strconv.Itoa(userID))
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, userID int) (State, error) {
	var st State
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stateKey(userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get user state: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &st)
		})
	})
	if err != nil {
		return State{}, err
	}
	return st, nil
}

// Put implements Store.
//
//nolint:gocritic // hugeParam: State passed by value for immutability
func (s *BadgerStore) Put(_ context.Context, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal user state: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(stateKey(st.UserID), data); err != nil {
			return fmt.Errorf("set user state: %w", err)
		}
		return nil
	})
}

// maxUpdateAttempts bounds retries of an Update that lost a transaction conflict.
const maxUpdateAttempts = 10

// Update implements Store. The read and write share one Badger transaction.
// Updates for one user are serialized within the process; conflicts with
// other writers of the same DB are retried.
func (s *BadgerStore) Update(ctx context.Context, userID int, fn func(*State)) (State, error) {
	release := s.writes.Lock(userID)
	defer release()

	var st State
	for attempt := 1; ; attempt++ {
		err := s.db.Update(func(txn *badger.Txn) error {
			st = State{UserID: userID}
			item, err := txn.Get(stateKey(userID))
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
			case err != nil:
				return fmt.Errorf("get user state: %w", err)
			default:
				if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &st) }); err != nil {
					return fmt.Errorf("decode user state: %w", err)
				}
			}

			fn(&st)
			st.UserID = userID
			data, err := json.Marshal(st)
			if err != nil {
				return fmt.Errorf("marshal user state: %w", err)
			}
			if err := txn.Set(stateKey(userID), data); err != nil {
				return fmt.Errorf("set user state: %w", err)
			}
			return nil
		})
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, badger.ErrConflict) || attempt >= maxUpdateAttempts {
			return State{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return State{}, ctxErr
		}
	}
}

// Delete implements Store.
func (s *BadgerStore) Delete(_ context.Context, userID int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(stateKey(userID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete user state: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored states.
func (s *BadgerStore) Count(_ context.Context) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(stateKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Lock implements Store.
func (s *BadgerStore) Lock(userID int) func() { return s.locks.Lock(userID) }

// Close implements Store. The DB is closed only when opened by OpenBadgerStore.
func (s *BadgerStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

var _ Store = (*BadgerStore)(nil)
