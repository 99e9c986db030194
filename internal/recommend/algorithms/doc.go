// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

// Package algorithms builds user taste profiles and ranks the catalogue
// against them.
//
// # Profiles
//
// ProfileBuilder folds a user's ratings into one sparse vector over the
// catalogue's feature space. Each rated movie contributes its item vector
// scaled by
//
//	w = score/5 * decay(ageDays) * genreBoost * directorBoost
//	decay(d) = 1 / (1 + ln(1 + d))
//
// A genre or director boost of 1 + factor*(avg/5) applies only once the user
// has rated enough movies sharing it (MinGenreSupport, MinDirectorSupport).
// The accumulated vector is L2-normalized. Ratings for movies missing from
// the catalogue are skipped and counted in Profile.Skipped.
//
// # Ranking
//
// Ranker scores every catalogue item by cosine similarity to the profile,
// drops the user's rated movies, min-max normalizes into [0, 1] and sorts by
// score descending with movie ID ascending as the tie-break. When every raw
// score is equal all normalized scores are 0. A profile built against another
// catalogue version is rejected with ErrVersionMismatch.
package algorithms
