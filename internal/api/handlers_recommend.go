// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/reelpick/internal/auth"
	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/recommend"
)

// ErrCodeRebuildUnavailable is returned when no rebuild service is wired.
const ErrCodeRebuildUnavailable = "REBUILD_UNAVAILABLE"

// Titles handles GET /api/v1/titles?q=&limit=
// Returns catalog titles in catalog order, optionally filtered by a
// case-insensitive substring. A limit of zero returns every match.
func (h *Handler) Titles(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}

	q := TitlesQuery{
		Query: r.URL.Query().Get("q"),
		Limit: limit,
	}
	if !validateRequest(w, r, &q) {
		return
	}

	var titles []string
	if q.Query == "" && q.Limit == 0 {
		titles, err = h.engine.ListTitles()
	} else {
		titles, err = h.engine.SearchTitles(q.Query, q.Limit)
	}
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	WriteSuccess(w, r, map[string]interface{}{
		"titles": titles,
		"count":  len(titles),
	})
}

// Recommend handles POST /api/v1/recommendations
// Returns up to top_n movies for exactly three seed titles.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	alg, err := parseAlgorithm(req.Algorithm)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	resp, err := h.engine.Recommend(ctx, recommend.Request{
		Seeds:     req.Seeds,
		TopN:      req.TopN,
		Algorithm: alg,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	WriteSuccess(w, r, resp)
}

// Similar handles GET /api/v1/movies/similar?title=&algorithm=&k=
// Returns the nearest neighbours of a single movie.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	k, err := intParam(r, "k", 0)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}

	q := SimilarQuery{
		Title:     r.URL.Query().Get("title"),
		Algorithm: r.URL.Query().Get("algorithm"),
		K:         k,
	}
	if !validateRequest(w, r, &q) {
		return
	}

	alg, err := parseAlgorithm(q.Algorithm)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	items, err := h.engine.SimilarTo(ctx, alg, q.Title, q.K)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	WriteSuccess(w, r, map[string]interface{}{
		"title":     q.Title,
		"algorithm": alg.String(),
		"items":     items,
	})
}

// Status handles GET /api/v1/status
// Returns snapshot version, build statistics, rebuild state and counters.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.engine.Status())
}

// Rebuild handles POST /api/v1/rebuild
// Queues an asynchronous snapshot rebuild and answers 202 once accepted,
// naming the token subject that asked for it.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if h.rebuilds == nil {
		NewResponseWriter(w, r).Error(http.StatusServiceUnavailable, ErrCodeRebuildUnavailable, "Rebuilds are not enabled")
		return
	}

	if err := h.rebuilds.TriggerRebuild(r.Context()); err != nil {
		if !errors.Is(err, recommend.ErrRebuildThrottled) && !errors.Is(err, recommend.ErrRebuildInProgress) {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Rebuild trigger failed")
		}
		writeEngineError(w, r, err)
		return
	}

	// Claims are absent when admin auth is disabled.
	requestedBy := "anonymous"
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		requestedBy = claims.Subject
	}

	logging.Ctx(r.Context()).Info().Str("requested_by", requestedBy).Msg("Rebuild queued")
	NewResponseWriter(w, r).Accepted(map[string]interface{}{
		"status":       "accepted",
		"version":      h.engine.Status().Version,
		"requested_by": requestedBy,
	})
}
