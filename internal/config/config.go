// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	Storage   StorageConfig   `koanf:"storage"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging or production
}

// DataConfig holds the dataset locations.
type DataConfig struct {
	// MoviesPath is the movies.csv path. Required.
	MoviesPath string `koanf:"movies_path"`

	// TagsPath is the optional tags.csv path.
	TagsPath string `koanf:"tags_path"`

	// RatingsPath is the optional ratings.csv path. Without it only the
	// content algorithm is available.
	RatingsPath string `koanf:"ratings_path"`

	// DuplicateTitles is "reject" (fail the load) or "disambiguate"
	// (suffix later duplicates with their movie id).
	// Default: reject
	DuplicateTitles string `koanf:"duplicate_titles"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	Selector      SelectorConfig      `koanf:"selector"`
	Content       ContentConfig       `koanf:"content"`
	Collaborative CollaborativeConfig `koanf:"collaborative"`
	Build         BuildConfig         `koanf:"build"`
	Limits        LimitsConfig        `koanf:"limits"`
	Cache         CacheConfig         `koanf:"cache"`
}

// SelectorConfig holds candidate retrieval and merge settings.
type SelectorConfig struct {
	CandidateMultiplier int       `koanf:"candidate_multiplier"`
	Aggregation         string    `koanf:"aggregation"`
	SeedWeights         []float64 `koanf:"seed_weights"`
}

// ContentConfig holds attribute token weights for the content index.
type ContentConfig struct {
	GenreWeight  float64 `koanf:"genre_weight"`
	TagWeight    float64 `koanf:"tag_weight"`
	DecadeWeight float64 `koanf:"decade_weight"`
}

// CollaborativeConfig holds ALS training settings.
type CollaborativeConfig struct {
	Factors    int     `koanf:"factors"`
	Iterations int     `koanf:"iterations"`
	Lambda     float64 `koanf:"lambda"`
	Seed       int64   `koanf:"seed"`
	Workers    int     `koanf:"workers"` // 0 = runtime.NumCPU()
	MinRatings int     `koanf:"min_ratings"`
}

// BuildConfig holds rebuild scheduling settings.
type BuildConfig struct {
	Timeout  time.Duration `koanf:"timeout"`
	Interval time.Duration `koanf:"interval"` // 0 disables scheduled rebuilds

	// MinGap is the minimum time between manually triggered rebuilds.
	MinGap time.Duration `koanf:"min_gap"`
}

// LimitsConfig holds request size limits.
type LimitsConfig struct {
	DefaultTopN int `koanf:"default_top_n"`
	MaxTopN     int `koanf:"max_top_n"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// StorageConfig holds model store settings.
type StorageConfig struct {
	// Enabled turns on model persistence. When false the collaborative
	// model is trained on every build.
	Enabled        bool   `koanf:"enabled"`
	Path           string `koanf:"path"`
	InMemory       bool   `koanf:"in_memory"`
	SyncWrites     bool   `koanf:"sync_writes"`
	RetainVersions int    `koanf:"retain_versions"`

	BreakerThreshold uint32        `koanf:"breaker_threshold"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`
}

// SecurityConfig holds HTTP security settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// RebuildRateLimitReqs is the per-window request limit on POST /rebuild.
	RebuildRateLimitReqs int `koanf:"rebuild_rate_limit_reqs"`

	// AdminJWTSecret is the HS256 secret for admin tokens. Empty leaves
	// administrative endpoints unauthenticated.
	AdminJWTSecret string `koanf:"admin_jwt_secret"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes file:line in log entries.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Addr returns the host:port listen address.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
