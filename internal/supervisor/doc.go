// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

/*
Package supervisor runs the long-lived services under a suture v4 tree.

The tree has three layers so that a failing layer restarts on its own:

	cinecompass
	├── data-layer        catalogue refresher
	├── messaging-layer   recompute worker (async mode only)
	└── api-layer         HTTP server

Supervisor events are logged through sutureslog, which receives a slog
logger backed by zerolog (see logging.NewSlogLogger).

Service wrappers live in the services subpackage.
*/
package supervisor
