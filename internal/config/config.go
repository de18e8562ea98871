// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

// Package config loads and validates service configuration using Koanf v2
// with layered sources: built-in defaults, optional YAML file, environment
// variables.
package config

import (
	"fmt"
	"math"
	"time"
)

// Config is the root configuration for the recommendation service.
type Config struct {
	Server    ServerConfig    `koanf:"server" json:"server"`
	Database  DatabaseConfig  `koanf:"database" json:"database"`
	Metadata  MetadataConfig  `koanf:"metadata" json:"metadata"`
	API       APIConfig       `koanf:"api" json:"api"`
	Security  SecurityConfig  `koanf:"security" json:"security"`
	Logging   LoggingConfig   `koanf:"logging" json:"logging"`
	Recommend RecommendConfig `koanf:"recommend" json:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host" json:"host"`
	Port    int           `koanf:"port" json:"port"`
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
}

// DatabaseConfig holds DuckDB settings for the catalog/social read store.
type DatabaseConfig struct {
	Path      string `koanf:"path" json:"path"`
	MaxMemory string `koanf:"max_memory" json:"max_memory"`

	// Threads is the DuckDB thread count. 0 = use runtime.NumCPU().
	Threads int `koanf:"threads" json:"threads"`
}

// MetadataConfig holds settings for the external movie metadata provider.
type MetadataConfig struct {
	BaseURL string        `koanf:"base_url" json:"base_url"`
	APIKey  string        `koanf:"api_key" json:"-"`
	Timeout time.Duration `koanf:"timeout" json:"timeout"`

	// RateLimit is the maximum number of requests per second.
	RateLimit float64 `koanf:"rate_limit" json:"rate_limit"`
}

// APIConfig holds pagination defaults for the HTTP API.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size" json:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size" json:"max_page_size"`
}

// SecurityConfig holds session and rate-limit settings. Token issuance is
// owned by the main application; this service only verifies session tokens.
type SecurityConfig struct {
	JWTSecret       string        `koanf:"jwt_secret" json:"-"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" json:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" json:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins" json:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" json:"level"`
	Format string `koanf:"format" json:"format"`
	Caller bool   `koanf:"caller" json:"caller"`
}

// RecommendConfig holds recommendation engine tunables. Signal weights must
// sum to 1.0.
type RecommendConfig struct {
	FriendWeight        float64 `koanf:"friend_weight" json:"friend_weight"`
	GenreWeight         float64 `koanf:"genre_weight" json:"genre_weight"`
	CollaborativeWeight float64 `koanf:"collaborative_weight" json:"collaborative_weight"`
	QualityWeight       float64 `koanf:"quality_weight" json:"quality_weight"`
	StreamingWeight     float64 `koanf:"streaming_weight" json:"streaming_weight"`
	PlatformWeight      float64 `koanf:"platform_weight" json:"platform_weight"`

	GenreSourceLimit    int `koanf:"genre_source_limit" json:"genre_source_limit"`
	PopularSourceLimit  int `koanf:"popular_source_limit" json:"popular_source_limit"`
	TrendingSourceLimit int `koanf:"trending_source_limit" json:"trending_source_limit"`
	MaxNeighbors        int `koanf:"max_neighbors" json:"max_neighbors"`

	GenreCacheTTL time.Duration `koanf:"genre_cache_ttl" json:"genre_cache_ttl"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.Metadata.RateLimit <= 0 {
		return fmt.Errorf("metadata.rate_limit must be positive, got %f", c.Metadata.RateLimit)
	}
	if err := c.Recommend.validate(); err != nil {
		return err
	}
	return nil
}

func (r *RecommendConfig) validate() error {
	weights := []struct {
		name string
		val  float64
	}{
		{"friend_weight", r.FriendWeight},
		{"genre_weight", r.GenreWeight},
		{"collaborative_weight", r.CollaborativeWeight},
		{"quality_weight", r.QualityWeight},
		{"streaming_weight", r.StreamingWeight},
		{"platform_weight", r.PlatformWeight},
	}

	sum := 0.0
	for _, w := range weights {
		if w.val < 0 || w.val > 1 {
			return fmt.Errorf("recommend.%s must be in [0, 1], got %f", w.name, w.val)
		}
		sum += w.val
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("recommend signal weights must sum to 1.0, got %f", sum)
	}

	if r.GenreSourceLimit < 1 {
		return fmt.Errorf("recommend.genre_source_limit must be at least 1, got %d", r.GenreSourceLimit)
	}
	if r.PopularSourceLimit < 1 {
		return fmt.Errorf("recommend.popular_source_limit must be at least 1, got %d", r.PopularSourceLimit)
	}
	if r.TrendingSourceLimit < 1 {
		return fmt.Errorf("recommend.trending_source_limit must be at least 1, got %d", r.TrendingSourceLimit)
	}
	if r.MaxNeighbors < 1 {
		return fmt.Errorf("recommend.max_neighbors must be at least 1, got %d", r.MaxNeighbors)
	}
	if r.GenreCacheTTL <= 0 {
		return fmt.Errorf("recommend.genre_cache_ttl must be positive, got %s", r.GenreCacheTTL)
	}
	return nil
}
