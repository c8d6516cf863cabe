// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package api

import (
	"context"
	"time"

	"github.com/tomtom215/reelpick/internal/recommend"
)

// DefaultRequestTimeout bounds a single recommendation or similarity lookup.
const DefaultRequestTimeout = 10 * time.Second

// Recommender is the engine surface the API serves. *recommend.Engine
// implements it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	SimilarTo(ctx context.Context, alg recommend.Algorithm, title string, k int) ([]recommend.Recommendation, error)
	ListTitles() ([]string, error)
	SearchTitles(query string, limit int) ([]string, error)
	Ready() bool
	Status() recommend.Status
}

// RebuildTrigger queues a snapshot rebuild. It returns nil once the rebuild
// is accepted, recommend.ErrRebuildThrottled when the previous manual
// trigger was too recent and recommend.ErrRebuildInProgress when a rebuild
// is already running.
type RebuildTrigger interface {
	TriggerRebuild(ctx context.Context) error
}

// Handler serves the API endpoints.
type Handler struct {
	engine         Recommender
	rebuilds       RebuildTrigger
	startTime      time.Time
	requestTimeout time.Duration
}

// NewHandler creates a handler for engine. rebuilds may be nil, in which
// case POST /rebuild answers 503.
func NewHandler(engine Recommender, rebuilds RebuildTrigger) *Handler {
	return &Handler{
		engine:         engine,
		rebuilds:       rebuilds,
		startTime:      time.Now(),
		requestTimeout: DefaultRequestTimeout,
	}
}

// SetRequestTimeout overrides DefaultRequestTimeout. Non-positive values
// are ignored.
func (h *Handler) SetRequestTimeout(d time.Duration) {
	if d > 0 {
		h.requestTimeout = d
	}
}
