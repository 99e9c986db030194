// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinecompass/internal/logging"
	"github.com/tomtom215/cinecompass/internal/validation"
)

// ImportCatalogue handles POST /api/v1/catalogue/movies.
// Movies are upserted by id and the catalogue is rebuilt under a new version.
func (h *Handler) ImportCatalogue(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req ImportCatalogueRequest
	if perr := decodeJSON(w, r, maxCatalogueBodyBytes, &req); perr != nil {
		respondError(w, r, perr.status, perr.code, perr.message, nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondAPIError(w, r, http.StatusBadRequest, verr.ToAPIError())
		return
	}

	res, err := h.engine.ImportCatalogue(r.Context(), req.Movies)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Int("imported", res.Imported).
		Bool("rebuilt", res.Rebuilt).
		Msg("catalogue import")
	respondSuccess(w, http.StatusOK, res, start, false)
}

// RebuildCatalogue handles POST /api/v1/catalogue/rebuild.
// A rebuild already running answers 409.
func (h *Handler) RebuildCatalogue(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	st, err := h.engine.RebuildCatalogue(r.Context())
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, st, start, false)
}

// CatalogueStatus handles GET /api/v1/catalogue/status.
func (h *Handler) CatalogueStatus(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.engine.CatalogueStatus(), time.Now(), false)
}
