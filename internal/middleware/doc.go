// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

/*
Package middleware provides HTTP middleware for the Reelpick API.

Key Components:

  - RequestID: request and correlation IDs for log tracing
  - PrometheusMetrics: HTTP request instrumentation labelled by chi route pattern

Both are standard func(http.Handler) http.Handler middleware and mount
directly on a chi router:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

RequestID honours incoming X-Request-ID and X-Correlation-ID headers from
upstream proxies and generates them otherwise. Handlers read the IDs through
logging.Ctx(r.Context()).
*/
package middleware
