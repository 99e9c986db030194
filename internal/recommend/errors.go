// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package recommend

import (
	"errors"
	"fmt"

	"github.com/tomtom215/cinecompass/internal/recommend/algorithms"
	"github.com/tomtom215/cinecompass/internal/recommend/features"
)

// Sentinel errors. Match with errors.Is.
var (
	// ErrEmptyCorpus means no feature catalogue can be built.
	ErrEmptyCorpus = features.ErrEmptyCorpus

	// ErrVersionMismatch means a profile was ranked against another catalogue version.
	ErrVersionMismatch = algorithms.ErrVersionMismatch

	ErrUnknownItem          = errors.New("unknown catalogue item")
	ErrBatchSizeExceeded    = errors.New("batch size exceeded")
	ErrCacheTransaction     = errors.New("recommendation cache transaction failed")
	ErrRebuildInProgress    = errors.New("catalogue rebuild already in progress")
	ErrCatalogueUnavailable = errors.New("feature catalogue not available")
	ErrInvalidPage          = errors.New("invalid page request")
	ErrInvalidScore         = errors.New("rating score out of range")
)

// EmptyCorpusError reports the number of items offered to a build.
type EmptyCorpusError = features.EmptyCorpusError

// UnknownItemError names a movie id missing from the catalogue.
type UnknownItemError struct {
	MovieID int
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown catalogue item: movie %d", e.MovieID)
}

func (e *UnknownItemError) Unwrap() error { return ErrUnknownItem }

// BatchSizeError reports an oversized rating batch.
type BatchSizeError struct {
	Size int
	Max  int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("batch of %d ratings exceeds the limit of %d", e.Size, e.Max)
}

func (e *BatchSizeError) Unwrap() error { return ErrBatchSizeExceeded }

// CacheTransactionError wraps a failed atomic cache replace.
// The previous cache for the user is left intact.
type CacheTransactionError struct {
	UserID int
	Err    error
}

func (e *CacheTransactionError) Error() string {
	return fmt.Sprintf("replace recommendations for user %d: %v", e.UserID, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *CacheTransactionError) Unwrap() []error { return []error{ErrCacheTransaction, e.Err} }

// Retryable reports that the caller may retry.
func (e *CacheTransactionError) Retryable() bool { return true }
