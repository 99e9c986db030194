// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

/*
Package models defines data structures for the CineCompass service.

This package is the single source of truth for records shared by the
storage, ranking and transport layers. It has no dependencies on other
internal packages so every layer can import it.

Key Components:

  - Movie: Catalogue item with the metadata used for feature extraction
  - Rating: Explicit user rating, at most one per (user, movie) pair
  - CachedRecommendation: One row of a user's materialized ranking
  - APIResponse: Standardized API response wrapper

Model Categories:

1. Catalogue Models:
  - Movie: Title, genres, billed cast, director, overview and popularity
  - ImageURL: TMDB image URL rendering for poster and backdrop paths

2. Interaction Models:
  - Rating: Score in [0, 5] with the time it was submitted

3. Recommendation Models:
  - CachedRecommendation: Score in [0, 1], metadata snapshot and reason
  - RecommendationDetails: Metadata snapshot stored next to each score

4. API Request/Response Models:
  - APIResponse: Standard response wrapper
  - APIError: Error details
  - Metadata: Response metadata (timestamp, query time)

JSON Serialization:

All models use snake_case JSON tags. Optional fields use omitempty so that
responses stay small for sparse catalogue metadata.
*/
package models
