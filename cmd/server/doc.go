// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

/*
Package main is the entry point for the CineCompass server.

CineCompass recommends movies from their content: genres, director, cast
and synopsis are vectorized with TF-IDF, each user's ratings are folded into
a profile vector, and the catalogue is ranked by cosine similarity. Ranked
lists are cached per user in DuckDB and served page by page.

# Application Architecture

	RootSupervisor ("cinecompass")
	├── DataSupervisor ("data-layer")
	│   └── Catalogue refresher (rebuilds when the movie table changes)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Recompute worker (RECOMMEND_RECOMPUTE_MODE=async only)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog
 3. Database: DuckDB (movies, ratings, cached recommendations, builds)
 4. User state: in-memory or Badger
 5. Engine: restores the newest catalogue snapshot or rebuilds
 6. Events (async mode): Watermill over GoChannel or NATS
 7. Supervisor tree: refresher, worker, HTTP server

# Configuration

Common environment variables:

	HTTP_PORT=8484
	DUCKDB_PATH=/data/cinecompass.duckdb
	LOG_LEVEL=info
	RECOMMEND_UPDATE_THRESHOLD=4h
	RECOMMEND_RECOMPUTE_MODE=sync      # or async
	EVENTS_BACKEND=gochannel           # or nats, embedded
	USERSTATE_STORE=badger
	USERSTATE_PATH=/data/userstate

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
in-flight requests, background recomputes finish, and the database is
checkpointed and closed.
*/
package main
