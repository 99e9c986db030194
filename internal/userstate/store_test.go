// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package userstate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

func newTestBadger(t *testing.T) *BadgerStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerStore(db)
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": newTestBadger(t),
	}
}

func TestStore_Lifecycle(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := s.Get(ctx, 1); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get() error = %v, want ErrNotFound", err)
			}
			now := time.Now().UTC().Truncate(time.Second)
			want := State{UserID: 1, LastRecomputeAt: now, CatalogueVersion: 3, RecomputeCount: 2}
			if err := s.Put(ctx, want); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			got, err := s.Get(ctx, 1)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.CatalogueVersion != 3 || got.RecomputeCount != 2 || !got.LastRecomputeAt.Equal(now) {
				t.Errorf("Get() = %+v, want %+v", got, want)
			}
			if err := s.Delete(ctx, 1); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if err := s.Delete(ctx, 1); err != nil {
				t.Errorf("second Delete() error = %v", err)
			}
			if _, err := s.Get(ctx, 1); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() after delete error = %v", err)
			}
		})
	}
}

func TestStore_UpdateIsAtomic(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

			st, err := s.Update(ctx, 4, func(st *State) { st.LastRatingAt = at })
			if err != nil {
				t.Fatalf("Update() on missing state error = %v", err)
			}
			if st.UserID != 4 || !st.LastRatingAt.Equal(at) {
				t.Fatalf("Update() = %+v, want user 4 with rating time", st)
			}

			const writers = 16
			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					if _, err := s.Update(ctx, 4, func(st *State) { st.RecomputeCount++ }); err != nil {
						t.Errorf("Update() error = %v", err)
					}
				}()
				go func(i int) {
					defer wg.Done()
					ts := at.Add(time.Duration(i) * time.Minute)
					if _, err := s.Update(ctx, 4, func(st *State) {
						if ts.After(st.LastRatingAt) {
							st.LastRatingAt = ts
						}
					}); err != nil {
						t.Errorf("Update() error = %v", err)
					}
				}(i)
			}
			wg.Wait()

			got, err := s.Get(ctx, 4)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.RecomputeCount != writers {
				t.Errorf("RecomputeCount = %d, want %d", got.RecomputeCount, writers)
			}
			if want := at.Add((writers - 1) * time.Minute); !got.LastRatingAt.Equal(want) {
				t.Errorf("LastRatingAt = %v, want %v", got.LastRatingAt, want)
			}
		})
	}
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	t.Parallel()

	k := newKeyedMutex()
	for user := 1; user <= 100; user++ {
		unlock := k.Lock(user)
		unlock()
	}
	if n := k.size(); n != 0 {
		t.Errorf("entries after release = %d, want 0", n)
	}

	unlock := k.Lock(1)
	done := make(chan struct{})
	go func() {
		u := k.Lock(1)
		u()
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	if n := k.size(); n != 1 {
		t.Errorf("entries with a holder and a waiter = %d, want 1", n)
	}
	unlock()
	unlock()
	<-done
	if n := k.size(); n != 0 {
		t.Errorf("entries after both released = %d, want 0", n)
	}
}

func TestKeyedMutex_SerializesPerUser(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock(7)
			defer unlock()
			n := active.Add(1)
			if n > maxActive.Load() {
				maxActive.Store(n)
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()
	if maxActive.Load() != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxActive.Load())
	}
}

func TestKeyedMutex_DifferentUsersIndependent(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	unlock := s.Lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		u := s.Lock(2)
		u()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for user 2 blocked on user 1")
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	s, err := New(BackendMemory, "")
	if err != nil {
		t.Fatalf("New(memory) error = %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("New(memory) type = %T", s)
	}
	if _, err := New(BackendBadger, ""); err == nil {
		t.Error("New(badger, \"\") error = nil, want error")
	}
	if _, err := New("redis", ""); err == nil {
		t.Error("New(redis) error = nil, want error")
	}
	dir := t.TempDir()
	bs, err := New(BackendBadger, dir)
	if err != nil {
		t.Fatalf("New(badger) error = %v", err)
	}
	if err := bs.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
