// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package userstate

import "fmt"

// Backend selects a Store implementation.
type Backend string

// Supported backends.
const (
	BackendMemory Backend = "memory"
	BackendBadger Backend = "badger"
)

// New opens a Store for backend. path is only used by the Badger backend.
func New(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendBadger:
		if path == "" {
			return nil, fmt.Errorf("badger user state store requires a path")
		}
		return OpenBadgerStore(path)
	default:
		return nil, fmt.Errorf("unknown user state backend %q", backend)
	}
}
