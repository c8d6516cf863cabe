// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Aggregation is the rule for merging the three per-seed candidate lists.
type Aggregation string

const (
	// AggregateSum adds a candidate's scores across seeds, rewarding
	// movies relevant to several seeds. This is the default.
	AggregateSum Aggregation = "sum"

	// AggregateMax keeps a candidate's best single-seed score.
	AggregateMax Aggregation = "max"

	// AggregateWeighted adds scores multiplied by per-seed weights.
	AggregateWeighted Aggregation = "weighted"
)

// ParseAggregation parses an aggregation name case-insensitively.
func ParseAggregation(s string) (Aggregation, error) {
	switch a := Aggregation(strings.ToLower(strings.TrimSpace(s))); a {
	case AggregateSum, AggregateMax, AggregateWeighted:
		return a, nil
	default:
		return "", fmt.Errorf("unknown aggregation %q (want sum, max or weighted)", s)
	}
}

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Selector controls candidate retrieval and merging.
	Selector SelectorConfig `json:"selector"`

	// Build controls the rebuild phase.
	Build BuildConfig `json:"build"`

	// Limits contains request limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains result caching parameters.
	Cache CacheConfig `json:"cache"`
}

// SelectorConfig contains parameters for the recommendation selector.
type SelectorConfig struct {
	// CandidateMultiplier sets the per-seed candidate depth
	// K = TopN*CandidateMultiplier + 3.
	// Default: 3.
	CandidateMultiplier int `json:"candidate_multiplier"`

	// Aggregation is the merge rule.
	// Default: sum.
	Aggregation Aggregation `json:"aggregation"`

	// SeedWeights are the per-seed multipliers used by AggregateWeighted,
	// in seed order.
	// Default: 1, 1, 1.
	SeedWeights [SeedCount]float64 `json:"seed_weights"`
}

// BuildConfig contains rebuild parameters.
type BuildConfig struct {
	// Timeout bounds a single rebuild, including model training.
	// Default: 10m.
	Timeout time.Duration `json:"timeout"`

	// Interval is the time between scheduled rebuilds. Zero disables
	// periodic rebuilds.
	// Default: 24h.
	Interval time.Duration `json:"interval"`
}

// LimitsConfig contains request limits.
type LimitsConfig struct {
	// DefaultTopN applies when a request leaves TopN unset.
	// Default: 10.
	DefaultTopN int `json:"default_top_n"`

	// MaxTopN caps TopN and SimilarTo's k.
	// Default: 100.
	MaxTopN int `json:"max_top_n"`
}

// CacheConfig contains result caching parameters.
type CacheConfig struct {
	// Enabled controls whether results are cached.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 10m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached responses.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Selector: SelectorConfig{
			CandidateMultiplier: 3,
			Aggregation:         AggregateSum,
			SeedWeights:         [SeedCount]float64{1, 1, 1},
		},
		Build: BuildConfig{
			Timeout:  10 * time.Minute,
			Interval: 24 * time.Hour,
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
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Selector.CandidateMultiplier < 1 {
		return fmt.Errorf("selector.candidate_multiplier must be positive, got %d", c.Selector.CandidateMultiplier)
	}
	if _, err := ParseAggregation(string(c.Selector.Aggregation)); err != nil {
		return fmt.Errorf("selector.aggregation: %w", err)
	}
	for i, w := range c.Selector.SeedWeights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("selector.seed_weights[%d] must be a non-negative number, got %v", i, w)
		}
	}

	if c.Build.Timeout <= 0 {
		return fmt.Errorf("build.timeout must be positive, got %v", c.Build.Timeout)
	}
	if c.Build.Interval < 0 {
		return fmt.Errorf("build.interval must be non-negative, got %v", c.Build.Interval)
	}

	if c.Limits.DefaultTopN < 1 {
		return fmt.Errorf("limits.default_top_n must be positive, got %d", c.Limits.DefaultTopN)
	}
	if c.Limits.MaxTopN < c.Limits.DefaultTopN {
		return fmt.Errorf("limits.max_top_n must be >= limits.default_top_n, got %d < %d", c.Limits.MaxTopN, c.Limits.DefaultTopN)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs hold value types only.
	clone := *c
	return &clone
}

// CandidateDepth returns the per-seed candidate depth K for a result of topN.
func (c *SelectorConfig) CandidateDepth(topN int) int {
	return topN*c.CandidateMultiplier + SeedCount
}
