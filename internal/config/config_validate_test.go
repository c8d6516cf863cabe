// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/reelpick/internal/catalog"
	"github.com/tomtom215/reelpick/internal/recommend"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Data.MoviesPath = "movies.csv"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port must be between 1 and 65535, got 0"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"zero write timeout", func(c *Config) { c.Server.WriteTimeout = 0 }, "server.write_timeout must be positive"},
		{"missing movies", func(c *Config) { c.Data.MoviesPath = " " }, "data.movies_path is required"},
		{"duplicate titles policy", func(c *Config) { c.Data.DuplicateTitles = "merge" }, "data.duplicate_titles"},
		{"disambiguate duplicates", func(c *Config) { c.Data.DuplicateTitles = "disambiguate" }, ""},
		{"candidate multiplier", func(c *Config) { c.Recommend.Selector.CandidateMultiplier = 0 },
			"recommend.selector.candidate_multiplier must be positive, got 0"},
		{"unknown aggregation", func(c *Config) { c.Recommend.Selector.Aggregation = "median" },
			"recommend.selector.aggregation"},
		{"two seed weights", func(c *Config) { c.Recommend.Selector.SeedWeights = []float64{1, 1} },
			"recommend.selector.seed_weights must have 3 values, got 2"},
		{"negative seed weight", func(c *Config) { c.Recommend.Selector.SeedWeights = []float64{1, -1, 1} },
			"recommend.selector.seed_weights[1]"},
		{"max below default", func(c *Config) { c.Recommend.Limits.MaxTopN = 5 }, "recommend.limits.max_top_n"},
		{"zero build timeout", func(c *Config) { c.Recommend.Build.Timeout = 0 }, "recommend.build.timeout"},
		{"negative min gap", func(c *Config) { c.Recommend.Build.MinGap = -time.Second }, "recommend.build.min_gap"},
		{"cache ttl", func(c *Config) { c.Recommend.Cache.TTL = 0 }, "recommend.cache.ttl"},
		{"cache disabled ignores ttl", func(c *Config) {
			c.Recommend.Cache.Enabled = false
			c.Recommend.Cache.TTL = 0
		}, ""},
		{"negative tag weight", func(c *Config) { c.Recommend.Content.TagWeight = -1 }, "recommend.content.tag_weight"},
		{"zero factors", func(c *Config) { c.Recommend.Collaborative.Factors = 0 },
			"recommend.collaborative.factors must be positive"},
		{"negative workers", func(c *Config) { c.Recommend.Collaborative.Workers = -2 },
			"recommend.collaborative.workers must be non-negative"},
		{"zero workers means all cpus", func(c *Config) { c.Recommend.Collaborative.Workers = 0 }, ""},
		{"store path", func(c *Config) { c.Storage.Path = "" }, "storage.path is required"},
		{"in-memory store needs no path", func(c *Config) {
			c.Storage.Path = ""
			c.Storage.InMemory = true
		}, ""},
		{"retain versions", func(c *Config) { c.Storage.RetainVersions = 0 }, "storage.retain_versions"},
		{"disabled store skips checks", func(c *Config) {
			c.Storage.Enabled = false
			c.Storage.RetainVersions = 0
		}, ""},
		{"breaker threshold", func(c *Config) { c.Storage.BreakerThreshold = 0 }, "storage.breaker_threshold"},
		{"rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, "security.rate_limit_reqs"},
		{"rate limit disabled", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"rate limit window", func(c *Config) { c.Security.RateLimitWindow = time.Millisecond }, "security.rate_limit_window"},
		{"short admin secret", func(c *Config) { c.Security.AdminJWTSecret = "short" }, "at least 32 characters"},
		{"placeholder admin secret", func(c *Config) {
			c.Security.AdminJWTSecret = "changeme-changeme-changeme-changeme"
		}, "placeholder"},
		{"good admin secret", func(c *Config) {
			c.Security.AdminJWTSecret = "k3p9Q2vX8mL5tR7wZ1aB4cD6eF0gH2jN"
		}, ""},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestEngineConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Recommend.Selector.Aggregation = "Weighted"
	cfg.Recommend.Selector.SeedWeights = []float64{2, 1, 1}
	cfg.Recommend.Limits.MaxTopN = 50
	cfg.Recommend.Cache.Enabled = false

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig: %v", err)
	}
	if engineCfg.Selector.Aggregation != recommend.AggregateWeighted {
		t.Errorf("Aggregation = %q", engineCfg.Selector.Aggregation)
	}
	if engineCfg.Selector.SeedWeights != [3]float64{2, 1, 1} {
		t.Errorf("SeedWeights = %v", engineCfg.Selector.SeedWeights)
	}
	if engineCfg.Limits.MaxTopN != 50 || engineCfg.Cache.Enabled {
		t.Errorf("engine config = %+v", engineCfg)
	}
	if err := engineCfg.Validate(); err != nil {
		t.Errorf("converted config should validate: %v", err)
	}
}

func TestBuildConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Data.TagsPath = "tags.csv"
	cfg.Data.RatingsPath = "ratings.csv"
	cfg.Recommend.Collaborative.Workers = 0
	cfg.Storage.RetainVersions = 5
	cfg.Data.DuplicateTitles = "disambiguate"

	b := cfg.BuildConfig()
	if b.MoviesPath != "movies.csv" || b.TagsPath != "tags.csv" || b.RatingsPath != "ratings.csv" {
		t.Errorf("paths = %q %q %q", b.MoviesPath, b.TagsPath, b.RatingsPath)
	}
	if b.Collaborative.Workers < 1 {
		t.Errorf("Workers = %d, want NumCPU", b.Collaborative.Workers)
	}
	if b.Collaborative.Factors != 32 || b.Content.TagWeight != 0.5 {
		t.Errorf("model config = %+v %+v", b.Collaborative, b.Content)
	}
	if b.Catalog.DuplicateTitles != catalog.DuplicatesDisambiguate {
		t.Errorf("Catalog = %+v, want disambiguate", b.Catalog)
	}
	if b.RetainVersions != 5 {
		t.Errorf("RetainVersions = %d, want 5", b.RetainVersions)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("converted build config should validate: %v", err)
	}
}

func TestStoreAndLoggingConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.InMemory = true
	cfg.Logging.Format = "console"

	if s := cfg.StoreConfig(); s.Path != "/data/models" || !s.InMemory {
		t.Errorf("StoreConfig = %+v", s)
	}

	var buf bytes.Buffer
	l := cfg.LoggingConfig(&buf)
	if l.Format != "console" || l.Output != &buf || !l.Timestamp {
		t.Errorf("LoggingConfig = %+v", l)
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	cfg := validConfig()
	if cfg.ShouldWarnAboutCORS() {
		t.Error("no admin secret: no warning")
	}
	cfg.Security.AdminJWTSecret = "k3p9Q2vX8mL5tR7wZ1aB4cD6eF0gH2jN"
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("wildcard CORS with admin secret should warn")
	}
	cfg.Security.CORSOrigins = []string{"https://reelpick.example.org"}
	if cfg.ShouldWarnAboutCORS() {
		t.Error("explicit origins should not warn")
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", got)
	}
}
