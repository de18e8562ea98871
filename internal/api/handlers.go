// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/miru-app/miru-recs/internal/config"
	"github.com/miru-app/miru-recs/internal/middleware"
	"github.com/miru-app/miru-recs/internal/recommend"
)

// Pinger reports read-store liveness for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	engine   *recommend.Engine
	store    Pinger
	cfg      *config.Config
	logger   zerolog.Logger
	validate *validator.Validate
}

// NewHandler builds the handler set.
func NewHandler(engine *recommend.Engine, store Pinger, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:   engine,
		store:    store,
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// forYouParams carries the validated pagination parameters.
type forYouParams struct {
	Limit  int `validate:"min=1"`
	Offset int `validate:"min=0"`
}

func (h *Handler) parseForYouParams(r *http.Request) (forYouParams, error) {
	params := forYouParams{Limit: h.cfg.API.DefaultPageSize}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return params, err
		}
		params.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return params, err
		}
		params.Offset = offset
	}

	if params.Limit > h.cfg.API.MaxPageSize {
		params.Limit = h.cfg.API.MaxPageSize
	}

	return params, h.validate.Struct(params)
}

// ForYou serves GET /api/v1/recommendations/for-you. Anonymous requests get
// the popularity-only feed.
func (h *Handler) ForYou(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseForYouParams(r)
	if err != nil {
		respondError(w, r, h.logger, http.StatusBadRequest, "invalid_pagination",
			"limit must be a positive integer and offset a non-negative integer")
		return
	}

	userID := middleware.GetUserID(r.Context())

	start := time.Now()
	page, err := h.engine.ForYou(r.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("for-you computation failed")
		respondError(w, r, h.logger, http.StatusInternalServerError, "recommendation_failed",
			"could not compute recommendations")
		return
	}

	respondJSON(w, r, h.logger, http.StatusOK, page, time.Since(start))
}

// Genres serves GET /api/v1/genres from the cached taxonomy.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	genres, err := h.engine.Genres(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("genre catalog fetch failed")
		respondError(w, r, h.logger, http.StatusBadGateway, "metadata_unavailable",
			"genre catalog temporarily unavailable")
		return
	}

	respondJSON(w, r, h.logger, http.StatusOK, genres, time.Since(start))
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, h.logger, http.StatusOK, map[string]string{"status": "alive"}, 0)
}

// HealthReady reports readiness, which requires a reachable read store.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("readiness check failed")
		respondError(w, r, h.logger, http.StatusServiceUnavailable, "store_unavailable",
			"read store is not reachable")
		return
	}

	respondJSON(w, r, h.logger, http.StatusOK, map[string]string{"status": "ready"}, 0)
}
