// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package config

import (
	"fmt"
	"io"
	"runtime"

	"github.com/tomtom215/reelpick/internal/catalog"
	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/recommend"
	"github.com/tomtom215/reelpick/internal/recommend/algorithms"
	"github.com/tomtom215/reelpick/internal/recommend/builder"
	"github.com/tomtom215/reelpick/internal/recommend/storage"
)

// EngineConfig converts the recommend section into an engine configuration.
func (c *Config) EngineConfig() (*recommend.Config, error) {
	r := c.Recommend

	aggregation, err := recommend.ParseAggregation(r.Selector.Aggregation)
	if err != nil {
		return nil, fmt.Errorf("recommend.selector.aggregation: %w", err)
	}

	cfg := recommend.DefaultConfig()
	cfg.Selector.CandidateMultiplier = r.Selector.CandidateMultiplier
	cfg.Selector.Aggregation = aggregation
	copy(cfg.Selector.SeedWeights[:], r.Selector.SeedWeights)
	cfg.Build.Timeout = r.Build.Timeout
	cfg.Build.Interval = r.Build.Interval
	cfg.Limits.DefaultTopN = r.Limits.DefaultTopN
	cfg.Limits.MaxTopN = r.Limits.MaxTopN
	cfg.Cache.Enabled = r.Cache.Enabled
	cfg.Cache.TTL = r.Cache.TTL
	cfg.Cache.MaxEntries = r.Cache.MaxEntries
	return cfg, nil
}

// CatalogOptions converts the data section into catalog load options.
func (c *Config) CatalogOptions() catalog.Options {
	return catalog.Options{DuplicateTitles: catalog.DuplicatePolicy(c.Data.DuplicateTitles)}
}

// BuildConfig converts the data, recommend and storage sections into a
// build phase configuration. Zero workers selects runtime.NumCPU().
func (c *Config) BuildConfig() builder.Config {
	workers := c.Recommend.Collaborative.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	cfg := builder.DefaultConfig()
	cfg.MoviesPath = c.Data.MoviesPath
	cfg.TagsPath = c.Data.TagsPath
	cfg.RatingsPath = c.Data.RatingsPath
	cfg.Catalog = c.CatalogOptions()
	cfg.Content = algorithms.ContentConfig{
		GenreWeight:  c.Recommend.Content.GenreWeight,
		TagWeight:    c.Recommend.Content.TagWeight,
		DecadeWeight: c.Recommend.Content.DecadeWeight,
	}
	cfg.Collaborative = algorithms.ALSConfig{
		Factors:    c.Recommend.Collaborative.Factors,
		Iterations: c.Recommend.Collaborative.Iterations,
		Lambda:     c.Recommend.Collaborative.Lambda,
		Seed:       c.Recommend.Collaborative.Seed,
		Workers:    workers,
		MinRatings: c.Recommend.Collaborative.MinRatings,
	}
	if c.Storage.Enabled {
		cfg.RetainVersions = c.Storage.RetainVersions
		cfg.Breaker.FailureThreshold = c.Storage.BreakerThreshold
		cfg.Breaker.Timeout = c.Storage.BreakerTimeout
	}
	return cfg
}

// StoreConfig converts the storage section into a model store configuration.
func (c *Config) StoreConfig() storage.Config {
	return storage.Config{
		Path:       c.Storage.Path,
		InMemory:   c.Storage.InMemory,
		SyncWrites: c.Storage.SyncWrites,
	}
}

// LoggingConfig converts the logging section, writing to out.
func (c *Config) LoggingConfig(out io.Writer) logging.Config {
	return logging.Config{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		Caller:    c.Logging.Caller,
		Timestamp: true,
		Output:    out,
	}
}
