// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

// Package cache provides an in-process LRU cache with TTL expiry.
// The recommendation engine uses it for popular-listing results, cleared
// whenever the catalogue changes.
package cache
