// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

// Package api exposes the recommendation service over HTTP.
package api

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/miru-app/miru-recs/internal/middleware"
	"github.com/miru-app/miru-recs/internal/models"
)

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, status int, data any, queryTime time.Duration) {
	resp := models.APIResponse{
		Status: "ok",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			RequestID:   middleware.GetRequestID(r.Context()),
			QueryTimeMS: queryTime.Milliseconds(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("encoding response")
	}
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, status int, code, message string) {
	resp := models.APIResponse{
		Status: "error",
		Error:  &models.APIError{Code: code, Message: message},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(r.Context()),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("encoding error response")
	}
}
