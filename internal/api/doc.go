// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

/*
Package api exposes the recommendation engine over HTTP using the Chi router.

Routes (all under /api/v1 except /metrics):

	POST /users/{userID}/ratings              submit one rating
	POST /users/{userID}/ratings/batch        submit up to 20 ratings
	GET  /users/{userID}/ratings              list a user's ratings
	GET  /users/{userID}/recommendations      page, page_size, last_sync_time
	GET  /movies/popular                      limit (1-100, default 10)
	POST /catalogue/movies                    import or update movies
	POST /catalogue/rebuild                   force a catalogue rebuild
	GET  /catalogue/status                    live catalogue version
	GET  /health/live, /health/ready          probes
	GET  /metrics                             Prometheus exposition

Every JSON body uses the models.APIResponse envelope. Engine errors are
mapped to status codes by errorStatus; a failed cache transaction answers
503 with Retry-After so clients can retry.

Middleware order: request id, real ip, panic recovery, access log, CORS,
then per-group rate limiting and Prometheus metrics.
*/
package api
