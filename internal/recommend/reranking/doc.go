// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

// Package reranking diversifies served recommendation pages.
//
// A page is scored by the spread of its genres and directors. When the score
// falls below the configured threshold, Diversify interleaves the ranked
// candidates with a seeded permutation of the wider pool:
//
//	ranked page -> Score < threshold? -> interleave(candidates, perm(pool))
//
// The fixed seed makes repeated reads of the same cached list return the same
// page. Diversify never repeats a movie and never exceeds the target size.
package reranking
