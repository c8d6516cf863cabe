// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelpick/internal/metrics"
	"github.com/tomtom215/reelpick/internal/recommend"
)

// Rebuild trigger sources
const (
	SourceSchedule = "schedule"
	SourceManual   = "manual"
)

// Rebuilder builds and swaps in a new snapshot. *recommend.Engine
// implements it.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// RebuildServiceConfig holds configuration for the rebuild service.
type RebuildServiceConfig struct {
	// Interval is how often to rebuild on schedule. Zero disables
	// scheduled rebuilds.
	Interval time.Duration

	// MinGap is the minimum time between accepted manual triggers.
	// Zero accepts every trigger that does not collide with a running
	// rebuild.
	MinGap time.Duration
}

// RebuildService runs snapshot rebuilds for Suture supervision: on a fixed
// schedule and whenever TriggerRebuild accepts a manual request. Rebuilds
// run one at a time on the service goroutine. A failed rebuild is logged
// and the engine keeps serving its previous snapshot; it never fails the
// service.
type RebuildService struct {
	engine   Rebuilder
	config   RebuildServiceConfig
	limiter  *rate.Limiter
	requests chan struct{}
	running  atomic.Bool
	logger   zerolog.Logger
	name     string
}

// NewRebuildService creates a new rebuild service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRebuildService(engine Rebuilder, cfg RebuildServiceConfig, logger zerolog.Logger) *RebuildService {
	limit := rate.Inf
	if cfg.MinGap > 0 {
		limit = rate.Every(cfg.MinGap)
	}
	return &RebuildService{
		engine:   engine,
		config:   cfg,
		limiter:  rate.NewLimiter(limit, 1),
		requests: make(chan struct{}, 1),
		logger:   logger.With().Str("service", "rebuild").Logger(),
		name:     "rebuild-service",
	}
}

// TriggerRebuild queues a manual rebuild. It returns
// recommend.ErrRebuildInProgress when a rebuild is running or already
// queued, and recommend.ErrRebuildThrottled when the previous accepted
// trigger was less than MinGap ago.
func (s *RebuildService) TriggerRebuild(_ context.Context) error {
	if s.running.Load() || len(s.requests) > 0 {
		metrics.RecordRebuildTrigger(SourceManual, "busy")
		return recommend.ErrRebuildInProgress
	}
	if !s.limiter.Allow() {
		metrics.RecordRebuildTrigger(SourceManual, "throttled")
		return recommend.ErrRebuildThrottled
	}

	select {
	case s.requests <- struct{}{}:
		metrics.RecordRebuildTrigger(SourceManual, "accepted")
		s.logger.Info().Msg("manual rebuild queued")
		return nil
	default:
		metrics.RecordRebuildTrigger(SourceManual, "busy")
		return recommend.ErrRebuildInProgress
	}
}

// Rebuilding reports whether a rebuild started by this service is running.
func (s *RebuildService) Rebuilding() bool {
	return s.running.Load()
}

// Serve implements the suture.Service interface.
func (s *RebuildService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.Interval).
		Dur("min_gap", s.config.MinGap).
		Msg("rebuild service starting")

	var tick <-chan time.Time
	if s.config.Interval > 0 {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("rebuild service shutting down")
			return ctx.Err()

		case <-tick:
			s.rebuild(ctx, SourceSchedule)

		case <-s.requests:
			s.rebuild(ctx, SourceManual)
		}
	}
}

// rebuild runs one rebuild and logs its outcome.
func (s *RebuildService) rebuild(ctx context.Context, source string) {
	s.running.Store(true)
	defer s.running.Store(false)

	start := time.Now()
	s.logger.Info().Str("source", source).Msg("rebuild starting")

	err := s.engine.Rebuild(ctx)

	// Manual triggers are counted when TriggerRebuild accepts them.
	if source == SourceSchedule {
		result := "accepted"
		if errors.Is(err, recommend.ErrRebuildInProgress) {
			result = "busy"
		}
		metrics.RecordRebuildTrigger(source, result)
	}

	switch {
	case err == nil:
		s.logger.Info().
			Str("source", source).
			Dur("duration", time.Since(start)).
			Msg("rebuild complete")
	case errors.Is(err, recommend.ErrRebuildInProgress):
		s.logger.Debug().Str("source", source).Msg("rebuild skipped, another rebuild is running")
	default:
		s.logger.Warn().
			Err(err).
			Str("source", source).
			Str("kind", recommend.Kind(err)).
			Dur("duration", time.Since(start)).
			Msg("rebuild failed, previous snapshot still serving")
	}
}

// String returns the service name for logging.
func (s *RebuildService) String() string {
	return s.name
}
