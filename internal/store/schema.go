// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package store

import (
	"context"
	"fmt"
	"time"
)

// createTables creates the catalog and social tables if they do not exist.
// The schema mirrors what the main application writes; CREATE IF NOT EXISTS
// keeps a fresh development database usable without a separate migration
// step.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS movies (
			id BIGINT PRIMARY KEY,
			title VARCHAR NOT NULL,
			poster_path VARCHAR,
			release_date DATE,
			vote_average DOUBLE NOT NULL DEFAULT 0,
			vote_count INTEGER NOT NULL DEFAULT 0,
			popularity DOUBLE NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS genres (
			id BIGINT PRIMARY KEY,
			name VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS watch_providers (
			id BIGINT PRIMARY KEY,
			name VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS follows (
			follower_id BIGINT NOT NULL,
			followee_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (follower_id, followee_id)
		)`,
		`CREATE TABLE IF NOT EXISTS watchlist_items (
			user_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, movie_id)
		)`,
		`CREATE TABLE IF NOT EXISTS watched_items (
			user_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			watched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, movie_id)
		)`,
		`CREATE TABLE IF NOT EXISTS movie_genres (
			movie_id BIGINT NOT NULL,
			genre_id BIGINT NOT NULL,
			PRIMARY KEY (movie_id, genre_id)
		)`,
		`CREATE TABLE IF NOT EXISTS movie_providers (
			movie_id BIGINT NOT NULL,
			provider_id BIGINT NOT NULL,
			PRIMARY KEY (movie_id, provider_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_genres (
			user_id BIGINT NOT NULL,
			genre_id BIGINT NOT NULL,
			PRIMARY KEY (user_id, genre_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_providers (
			user_id BIGINT NOT NULL,
			provider_id BIGINT NOT NULL,
			PRIMARY KEY (user_id, provider_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_watchlist_user ON watchlist_items (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlist_movie ON watchlist_items (movie_id)`,
		`CREATE INDEX IF NOT EXISTS idx_watched_user ON watched_items (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_follows_followee ON follows (followee_id)`,
		`CREATE INDEX IF NOT EXISTS idx_movie_genres_genre ON movie_genres (genre_id)`,
	}

	for _, stmt := range indexes {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}

	return nil
}
