// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

// Package recommend implements the content-based recommendation engine.
//
// # Architecture
//
// The engine ranks movies for a user by cosine similarity between a taste
// profile and TF-IDF item vectors, and serves the ranking from a
// materialized per-user cache:
//
//   - features: weighted feature strings and the TF-IDF catalogue
//   - algorithms: profile building and similarity ranking
//   - reranking: genre and director diversity blending of served pages
//   - storage: catalogue snapshots that survive restarts
//
// # Write Path
//
// A rating is upserted, then the SyncGate decides whether the user's cache is
// due (never recomputed, older than UpdateThreshold, or built for another
// catalogue version). A batch of up to MaxBatchSize ratings always forces
// exactly one recompute. A recompute rebuilds the profile, ranks every unrated
// movie and replaces the user's cache in one transaction.
//
// # Read Path
//
// A read carrying last_sync_time first checks for ratings newer than the
// client's sync point and answers with needs_sync instead of a page when
// any exist. Otherwise a page is read from the cache at the live catalogue
// version. A cache built for an older catalogue yields an empty page with
// needs_recompute and a background recompute. An empty catalogue falls back
// to the popular listing.
//
// # Thread Safety
//
// The live catalogue is an atomic pointer swapped after each rebuild, so
// in-flight rankings keep the version they loaded. Rebuilds are serialized
// with TryLock. Recomputes are serialized per user by the user state store.
package recommend
