// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

// Package metadata talks to the external movie metadata provider. The only
// call this service needs is the genre taxonomy; catalog sync is owned by
// the main application.
package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/miru-app/miru-recs/internal/config"
	"github.com/miru-app/miru-recs/internal/metrics"
	"github.com/miru-app/miru-recs/internal/recommend"
)

// defaultBurst allows short request bursts above the sustained rate.
const defaultBurst = 4

// Client is a rate-limited, circuit-broken HTTP client for the metadata
// provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]recommend.Genre]
	logger     zerolog.Logger
}

var _ recommend.GenreSource = (*Client)(nil)

// NewClient builds a metadata client from configuration.
func NewClient(cfg *config.MetadataConfig, logger zerolog.Logger) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), defaultBurst),
		logger:     logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]recommend.Genre](gobreaker.Settings{
		Name:        "metadata-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("metadata circuit breaker state change")
		},
	})

	return c
}

// genreListResponse matches the provider's genre list payload.
type genreListResponse struct {
	Genres []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// Genres fetches the movie genre taxonomy.
func (c *Client) Genres(ctx context.Context) ([]recommend.Genre, error) {
	return c.breaker.Execute(func() ([]recommend.Genre, error) {
		return c.fetchGenres(ctx)
	})
}

func (c *Client) fetchGenres(ctx context.Context) ([]recommend.Genre, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	defer func(start time.Time) {
		metrics.MetadataRequestDuration.WithLabelValues("genre_list").
			Observe(time.Since(start).Seconds())
	}(time.Now())

	endpoint, err := url.JoinPath(c.baseURL, "genre", "movie", "list")
	if err != nil {
		return nil, fmt.Errorf("building genre list URL: %w", err)
	}
	endpoint += "?api_key=" + url.QueryEscape(c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building genre list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching genre list: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug().Err(cerr).Msg("closing genre list response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("genre list request returned status %d", resp.StatusCode)
	}

	var payload genreListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding genre list: %w", err)
	}

	genres := make([]recommend.Genre, len(payload.Genres))
	for i, g := range payload.Genres {
		genres[i] = recommend.Genre{ID: g.ID, Name: g.Name}
	}
	return genres, nil
}
