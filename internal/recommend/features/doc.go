// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

// Package features builds the TF-IDF feature catalogue for movies.
//
// # Feature Strings
//
// Each movie is turned into a weighted bag of tokens. Categorical signals are
// emphasized by repetition:
//
//   - Genres: each genre token repeated GenreWeight times (default 3)
//   - Director: repeated DirectorWeight times (default 2)
//   - Cast: top MaxCast members, member i repeated max(1, CastWeight-i) times
//   - Overview: lowercased with "the movie" and "the film" removed
//
// Multi-word names are joined into one token ("Science Fiction" becomes
// "sciencefiction") so people and genres never share tokens with ordinary
// words.
//
// # Weighting
//
// Terms are weighted with smooth inverse document frequency:
//
//	idf(t) = ln((1+n) / (1+df(t))) + 1
//
// and every row is L2-normalized, so the dot product of two rows is their
// cosine similarity.
//
// # Versions
//
// A Catalog is immutable and bound to one catalogue version. Vectors from
// different versions use different vocabularies and must never be compared.
package features
