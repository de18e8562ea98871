// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/miru-app/miru-recs/internal/metrics"
)

// GenreSource supplies the canonical genre taxonomy, typically backed by the
// external metadata provider.
type GenreSource interface {
	Genres(ctx context.Context) ([]Genre, error)
}

type genreSnapshot struct {
	genres    []Genre
	fetchedAt time.Time
}

// GenreCatalog caches the genre taxonomy with a TTL. Reads are lock-free via
// an atomically swapped snapshot; an expired snapshot triggers a refresh
// serialized by a mutex so concurrent readers never stampede the source.
// When a refresh fails and a stale snapshot exists, the stale data is served
// and the error is logged rather than propagated.
type GenreCatalog struct {
	source GenreSource
	ttl    time.Duration
	clock  func() time.Time
	logger zerolog.Logger

	snapshot  atomic.Pointer[genreSnapshot]
	refreshMu sync.Mutex
}

// NewGenreCatalog builds an empty catalog; the first Genres call populates it.
// clock may be nil, in which case time.Now is used.
func NewGenreCatalog(source GenreSource, ttl time.Duration, clock func() time.Time, logger zerolog.Logger) *GenreCatalog {
	if clock == nil {
		clock = time.Now
	}
	return &GenreCatalog{
		source: source,
		ttl:    ttl,
		clock:  clock,
		logger: logger,
	}
}

// Genres returns the cached taxonomy, refreshing from the source when the
// snapshot is missing or older than the TTL. An error is returned only when
// no snapshot exists at all; otherwise stale data is served.
func (c *GenreCatalog) Genres(ctx context.Context) ([]Genre, error) {
	if snap := c.snapshot.Load(); snap != nil && c.clock().Sub(snap.fetchedAt) < c.ttl {
		return snap.genres, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another goroutine may have refreshed while we waited on the lock.
	if snap := c.snapshot.Load(); snap != nil && c.clock().Sub(snap.fetchedAt) < c.ttl {
		return snap.genres, nil
	}

	genres, err := c.source.Genres(ctx)
	if err != nil {
		metrics.GenreCacheRefreshes.WithLabelValues("error").Inc()
		if snap := c.snapshot.Load(); snap != nil {
			c.logger.Warn().Err(err).
				Time("fetched_at", snap.fetchedAt).
				Msg("genre catalog refresh failed, serving stale snapshot")
			return snap.genres, nil
		}
		return nil, fmt.Errorf("refreshing genre catalog: %w", err)
	}

	metrics.GenreCacheRefreshes.WithLabelValues("ok").Inc()
	c.snapshot.Store(&genreSnapshot{genres: genres, fetchedAt: c.clock()})
	return genres, nil
}
