// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package api

import (
	"net/http"
	"time"
)

// HealthLive handles liveness check requests.
// Returns 200 OK as long as the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness check requests.
// Returns 200 OK once a snapshot is being served and 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Ready() {
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeNotReady, "Service is not ready",
			map[string]interface{}{
				"ready":  false,
				"uptime": time.Since(h.startTime).Seconds(),
			})
		return
	}

	st := h.engine.Status()
	WriteSuccess(w, r, map[string]interface{}{
		"ready":            true,
		"uptime":           time.Since(h.startTime).Seconds(),
		"snapshot_version": st.Version,
		"algorithms":       st.Algorithms,
	})
}
