// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package middleware

import (
	"net/http"

	"github.com/tomtom215/reelpick/internal/logging"
)

// Request tracing headers
const (
	RequestIDHeader     = "X-Request-ID"
	CorrelationIDHeader = "X-Correlation-ID"
)

// maxIDLength bounds IDs accepted from clients.
const maxIDLength = 128

// RequestID adds a request ID, a correlation ID and a request logger to the
// request context and echoes the request ID in the response header. The
// request logger carries the method and path; logging.Ctx adds the IDs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := headerID(r, RequestIDHeader)
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}
		correlationID := headerID(r, CorrelationIDHeader)
		if correlationID == "" {
			correlationID = logging.GenerateCorrelationID()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithCorrelationID(ctx, correlationID)
		ctx = logging.ContextWithLogger(ctx, logging.WithComponent("http").With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger())

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func headerID(r *http.Request, header string) string {
	id := r.Header.Get(header)
	if len(id) > maxIDLength {
		return ""
	}
	return id
}
