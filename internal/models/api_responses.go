// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status field values:
//   - "success": Request completed, see Data
//   - "error": Request failed, see Error
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"items": [...], "total": 240, "page": 1, "page_size": 20},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 4}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "BATCH_SIZE_EXCEEDED",
//	    "message": "batch of 21 ratings exceeds the limit of 20",
//	    "details": {"size": 21, "max": 20}
//	  },
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing and cache information for a response.
//
// Fields:
//   - Timestamp: Server time when the response was generated
//   - QueryTimeMS: Time spent in the engine in milliseconds
//   - Cached: Whether the payload came from an in-process cache
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is the structured error body.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - BATCH_SIZE_EXCEEDED: Too many ratings in one batch
//   - NOT_FOUND: Unknown movie or user resource
//   - CACHE_TRANSACTION_FAILED: Atomic cache replace failed, retry later
//   - REBUILD_IN_PROGRESS: Another catalogue rebuild is running
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
