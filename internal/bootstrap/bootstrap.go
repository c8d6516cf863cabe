// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package bootstrap assembles the recommendation engine from configuration.
// Both the HTTP server and the CLI start through it.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/recommend"
	"github.com/tomtom215/reelpick/internal/recommend/builder"
	"github.com/tomtom215/reelpick/internal/recommend/storage"
)

// Components holds the engine and the resources it owns.
type Components struct {
	Engine  *recommend.Engine
	Builder *builder.Builder

	// Store is nil when model persistence is disabled.
	Store *storage.Store
}

// New wires the model store, builder and engine. The engine is not ready
// until Rebuild succeeds; see Start.
//
//nolint:gocritic // logger passed by value for zerolog chaining
func New(cfg *config.Config, logger zerolog.Logger) (*Components, error) {
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, err
	}

	c := &Components{}

	// A nil *storage.Store must not reach the builder as a non-nil interface.
	var store builder.ModelStore
	if cfg.Storage.Enabled {
		c.Store, err = storage.Open(cfg.StoreConfig())
		if err != nil {
			return nil, fmt.Errorf("open model store: %w", err)
		}
		store = c.Store
		logger.Info().
			Str("path", cfg.Storage.Path).
			Bool("in_memory", cfg.Storage.InMemory).
			Msg("Model store opened")
	}

	c.Builder, err = builder.New(cfg.BuildConfig(), store, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Engine, err = recommend.NewEngine(engineCfg, c.Builder, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Start builds the first snapshot. A failure here is a startup failure.
func (c *Components) Start(ctx context.Context) error {
	if err := c.Engine.Rebuild(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}
	return nil
}

// Close releases the model store.
func (c *Components) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}
