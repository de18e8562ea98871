// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

import (
	"fmt"
	"math"
)

// Config contains the recommendation engine tunables.
type Config struct {
	// Weights defines the contribution of each signal to the combined
	// score. Weights must sum to exactly 1.0 so scores stay in [0, 1].
	Weights Weights `json:"weights"`

	// Limits contains candidate source limits.
	Limits Limits `json:"limits"`
}

// Weights holds the per-signal scoring weights.
type Weights struct {
	Friend        float64 `json:"friend"`
	Genre         float64 `json:"genre"`
	Collaborative float64 `json:"collaborative"`
	Quality       float64 `json:"quality"`
	Streaming     float64 `json:"streaming"`
	Platform      float64 `json:"platform"`
}

// Sum returns the total of all six weights.
func (w Weights) Sum() float64 {
	return w.Friend + w.Genre + w.Collaborative + w.Quality + w.Streaming + w.Platform
}

// Combine computes the weighted total of the given signals.
func (w Weights) Combine(s Signals) float64 {
	return w.Friend*s.Friend +
		w.Genre*s.Genre +
		w.Collaborative*s.Collaborative +
		w.Quality*s.Quality +
		w.Streaming*s.Streaming +
		w.Platform*s.Platform
}

// Limits contains per-source candidate caps.
type Limits struct {
	// GenreSource caps the genre-matching catalog source.
	GenreSource int `json:"genre_source"`

	// PopularSource caps the platform most-watchlisted source.
	PopularSource int `json:"popular_source"`

	// TrendingSource caps the global trending quality-floor source.
	TrendingSource int `json:"trending_source"`

	// MaxNeighbors caps the taste-neighbor set.
	MaxNeighbors int `json:"max_neighbors"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			Friend:        0.30,
			Genre:         0.20,
			Collaborative: 0.15,
			Quality:       0.15,
			Streaming:     0.10,
			Platform:      0.10,
		},
		Limits: Limits{
			GenreSource:    200,
			PopularSource:  100,
			TrendingSource: 200,
			MaxNeighbors:   50,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	for _, w := range []struct {
		name string
		val  float64
	}{
		{"friend", c.Weights.Friend},
		{"genre", c.Weights.Genre},
		{"collaborative", c.Weights.Collaborative},
		{"quality", c.Weights.Quality},
		{"streaming", c.Weights.Streaming},
		{"platform", c.Weights.Platform},
	} {
		if w.val < 0 || w.val > 1 {
			return fmt.Errorf("weight %s must be in [0, 1], got %f", w.name, w.val)
		}
	}
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("signal weights must sum to 1.0, got %f", sum)
	}

	if c.Limits.GenreSource < 1 {
		return fmt.Errorf("genre source limit must be at least 1, got %d", c.Limits.GenreSource)
	}
	if c.Limits.PopularSource < 1 {
		return fmt.Errorf("popular source limit must be at least 1, got %d", c.Limits.PopularSource)
	}
	if c.Limits.TrendingSource < 1 {
		return fmt.Errorf("trending source limit must be at least 1, got %d", c.Limits.TrendingSource)
	}
	if c.Limits.MaxNeighbors < 1 {
		return fmt.Errorf("max neighbors must be at least 1, got %d", c.Limits.MaxNeighbors)
	}
	return nil
}
