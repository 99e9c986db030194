// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package cache

import (
	"testing"
	"time"
)

func TestNewLRU_Defaults(t *testing.T) {
	t.Parallel()

	c := NewLRU[int, string](0, 0)
	if c.capacity != 10000 {
		t.Errorf("capacity = %d, want 10000", c.capacity)
	}
	if c.ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", c.ttl)
	}
}

func TestLRU_GetAdd(t *testing.T) {
	t.Parallel()

	c := NewLRU[int, string](2, time.Minute)
	c.Add(1, "a")
	c.Add(2, "b")
	if v, ok := c.Get(1); !ok || v != "a" {
		t.Errorf("Get(1) = (%q, %v), want (a, true)", v, ok)
	}
	c.Add(3, "c")
	if _, ok := c.Get(2); ok {
		t.Error("Get(2) ok = true, want evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	hits, misses, _ := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", hits, misses)
	}
}

func TestLRU_Expiry(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](10, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Add("k", 1)
	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Error("Get() ok = true, want expired")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestLRU_ClearRemove(t *testing.T) {
	t.Parallel()

	c := NewLRU[int, int](10, time.Minute)
	c.Add(1, 1)
	c.Add(2, 2)
	if !c.Remove(1) || c.Remove(1) {
		t.Error("Remove() results unexpected")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
	c.Add(3, 3)
	if v, ok := c.Get(3); !ok || v != 3 {
		t.Error("Add after Clear failed")
	}
}
