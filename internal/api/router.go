// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/miru-app/miru-recs/internal/config"
	"github.com/miru-app/miru-recs/internal/middleware"
)

// Router wires handlers, middleware, and configuration into one HTTP
// handler.
type Router struct {
	handler *Handler
	cfg     *config.Config
	logger  zerolog.Logger
}

// NewRouter builds the service router.
func NewRouter(handler *Handler, cfg *config.Config, logger zerolog.Logger) *Router {
	return &Router{handler: handler, cfg: cfg, logger: logger}
}

// chiMiddleware adapts http.HandlerFunc middleware to chi's shape.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all routes.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", rt.handler.HealthLive)
		r.Get("/ready", rt.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rt.cfg.Security.RateLimitReqs, rt.cfg.Security.RateLimitWindow))
		r.Use(chiMiddleware(middleware.Metrics))
		r.Use(chiMiddleware(middleware.Session(rt.cfg.Security.JWTSecret,
			func(w http.ResponseWriter, req *http.Request, status int, code, message string) {
				respondError(w, req, rt.logger, status, code, message)
			})))

		r.Get("/recommendations/for-you", rt.handler.ForYou)
		r.Get("/genres", rt.handler.Genres)
	})

	return r
}
