// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/reelpick/internal/catalog"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelpick/config.yaml",
	"/etc/reelpick/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Data: DataConfig{
			MoviesPath:      "",
			DuplicateTitles: string(catalog.DuplicatesReject),
		},
		Recommend: RecommendConfig{
			Selector: SelectorConfig{
				CandidateMultiplier: 3,
				Aggregation:         "sum",
				SeedWeights:         []float64{1, 1, 1},
			},
			Content: ContentConfig{
				GenreWeight:  1.0,
				TagWeight:    0.5,
				DecadeWeight: 0.25,
			},
			Collaborative: CollaborativeConfig{
				Factors:    32,
				Iterations: 12,
				Lambda:     0.05,
				Seed:       42,
				Workers:    4,
				MinRatings: 1,
			},
			Build: BuildConfig{
				Timeout:  10 * time.Minute,
				Interval: 24 * time.Hour,
				MinGap:   time.Minute,
			},
			Limits: LimitsConfig{
				DefaultTopN: 10,
				MaxTopN:     100,
			},
			Cache: CacheConfig{
				Enabled:    true,
				TTL:        10 * time.Minute,
				MaxEntries: 10000,
			},
		},
		Storage: StorageConfig{
			Enabled:          true,
			Path:             "/data/models",
			RetainVersions:   3,
			BreakerThreshold: 3,
			BreakerTimeout:   5 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:          []string{"*"},
			RateLimitReqs:        100,
			RateLimitWindow:      time.Minute,
			RebuildRateLimitReqs: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration from defaults, the optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"recommend.selector.seed_weights",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML lists are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Data mappings
	"movies_path":      "data.movies_path",
	"tags_path":        "data.tags_path",
	"ratings_path":     "data.ratings_path",
	"duplicate_titles": "data.duplicate_titles",

	// Selector mappings
	"recommend_candidate_multiplier": "recommend.selector.candidate_multiplier",
	"recommend_aggregation":          "recommend.selector.aggregation",
	"recommend_seed_weights":         "recommend.selector.seed_weights",

	// Content index mappings
	"recommend_content_genre_weight":  "recommend.content.genre_weight",
	"recommend_content_tag_weight":    "recommend.content.tag_weight",
	"recommend_content_decade_weight": "recommend.content.decade_weight",

	// Collaborative (ALS) mappings
	"recommend_als_factors":     "recommend.collaborative.factors",
	"recommend_als_iterations":  "recommend.collaborative.iterations",
	"recommend_als_lambda":      "recommend.collaborative.lambda",
	"recommend_als_seed":        "recommend.collaborative.seed",
	"recommend_als_workers":     "recommend.collaborative.workers",
	"recommend_als_min_ratings": "recommend.collaborative.min_ratings",

	// Build mappings
	"recommend_build_timeout":    "recommend.build.timeout",
	"recommend_rebuild_interval": "recommend.build.interval",
	"recommend_rebuild_min_gap":  "recommend.build.min_gap",

	// Limits and cache mappings
	"recommend_default_top_n":     "recommend.limits.default_top_n",
	"recommend_max_top_n":         "recommend.limits.max_top_n",
	"recommend_cache_enabled":     "recommend.cache.enabled",
	"recommend_cache_ttl":         "recommend.cache.ttl",
	"recommend_cache_max_entries": "recommend.cache.max_entries",

	// Model store mappings
	"model_store_enabled":           "storage.enabled",
	"model_store_path":              "storage.path",
	"model_store_in_memory":         "storage.in_memory",
	"model_store_sync_writes":       "storage.sync_writes",
	"model_store_retain_versions":   "storage.retain_versions",
	"model_store_breaker_threshold": "storage.breaker_threshold",
	"model_store_breaker_timeout":   "storage.breaker_timeout",

	// Security mappings
	"cors_origins":                "security.cors_origins",
	"rate_limit_requests":         "security.rate_limit_reqs",
	"rate_limit_window":           "security.rate_limit_window",
	"disable_rate_limit":          "security.rate_limit_disabled",
	"rebuild_rate_limit_requests": "security.rebuild_rate_limit_reqs",
	"admin_jwt_secret":            "security.admin_jwt_secret",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - MOVIES_PATH -> data.movies_path
//   - HTTP_PORT -> server.port
//   - RECOMMEND_ALS_FACTORS -> recommend.collaborative.factors
//
// Unmapped keys return "" and are skipped, so unrelated environment
// variables never reach the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
