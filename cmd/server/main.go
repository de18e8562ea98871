// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

// Package main is the entry point for the Miru recommendation service.
//
// The service computes the personalized "for you" movie feed for the Miru
// social app. It reads the catalog and social graph from a DuckDB store
// written by the main application, fetches the genre taxonomy from the
// external metadata provider, and serves recommendations over a small REST
// API.
//
// Startup order: configuration (koanf v2 layered sources), logging
// (zerolog), read store (DuckDB), metadata client, recommendation engine,
// HTTP server (chi). Shutdown is graceful on SIGINT and SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/miru-app/miru-recs/internal/api"
	"github.com/miru-app/miru-recs/internal/config"
	"github.com/miru-app/miru-recs/internal/logging"
	"github.com/miru-app/miru-recs/internal/metadata"
	"github.com/miru-app/miru-recs/internal/recommend"
	"github.com/miru-app/miru-recs/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logging is not configured yet; panic prints the reason.
		panic(fmt.Sprintf("loading configuration: %v", err))
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	db, err := store.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("opening read store")
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logging.Error().Err(cerr).Msg("closing read store")
		}
	}()
	logging.Info().Str("path", cfg.Database.Path).Msg("read store opened")

	metadataClient := metadata.NewClient(&cfg.Metadata, logger)
	genreCatalog := recommend.NewGenreCatalog(
		metadataClient, cfg.Recommend.GenreCacheTTL, nil, logger)

	engine, err := recommend.New(&recommend.Config{
		Weights: recommend.Weights{
			Friend:        cfg.Recommend.FriendWeight,
			Genre:         cfg.Recommend.GenreWeight,
			Collaborative: cfg.Recommend.CollaborativeWeight,
			Quality:       cfg.Recommend.QualityWeight,
			Streaming:     cfg.Recommend.StreamingWeight,
			Platform:      cfg.Recommend.PlatformWeight,
		},
		Limits: recommend.Limits{
			GenreSource:    cfg.Recommend.GenreSourceLimit,
			PopularSource:  cfg.Recommend.PopularSourceLimit,
			TrendingSource: cfg.Recommend.TrendingSourceLimit,
			MaxNeighbors:   cfg.Recommend.MaxNeighbors,
		},
	}, db, genreCatalog, logger, nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("building recommendation engine")
	}

	handler := api.NewHandler(engine, db, cfg, logger)
	router := api.NewRouter(handler, cfg, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}

	logging.Info().Msg("server stopped")
}
