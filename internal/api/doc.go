// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

/*
Package api provides the HTTP REST API for Reelpick.

The API is the machine-facing boundary to the recommendation engine. Every
endpoint returns the same JSON envelope:

	{
	  "success": true,
	  "data": {...},
	  "error": {"code": "...", "message": "...", "details": {...}, "request_id": "..."},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

Endpoints:

  - GET  /api/v1/health/live: process liveness
  - GET  /api/v1/health/ready: 200 once a snapshot is served, 503 before
  - GET  /api/v1/titles?q=&limit=: catalog titles in catalog order
  - POST /api/v1/recommendations: three-seed recommendation
  - GET  /api/v1/movies/similar?title=&algorithm=&k=: neighbours of one movie
  - GET  /api/v1/status: snapshot version, build statistics and counters
  - POST /api/v1/rebuild: queue a snapshot rebuild (admin token when configured)
  - GET  /metrics: Prometheus metrics

Error Codes:

Recommendation failures carry a distinct machine-readable code
(UNKNOWN_MOVIE, INSUFFICIENT_DATA, MODEL_ERROR, NOT_READY) but always the
same human message, GenericFailureMessage. Clients that need the kind switch
on the code; people only ever see one message.

Request validation (VALIDATION_ERROR, 400) checks shape only: exactly three
seeds, non-negative sizes, a title present. The content of a title is never
judged there, so a blank or garbled seed reaches the engine and comes back
as UNKNOWN_MOVIE like any other title the catalog does not hold.

Middleware:

The router applies request IDs, real client IP extraction, panic recovery
and CORS globally. API routes add per-IP rate limiting (go-chi/httprate),
security headers and Prometheus instrumentation. The rebuild route has its
own stricter limit and, when an admin secret is configured, requires an
admin bearer token.
*/
package api
