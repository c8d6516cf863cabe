// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

/*
Package metrics defines the process-level Prometheus metrics of the Reelpick
server: HTTP traffic, rate limiting, the model store circuit breaker and the
rebuild trigger service.

Engine metrics (recommendation latency, cache lookups, snapshot gauges) live
next to the engine in internal/recommend.

All metrics are registered with the default registry through promauto and
exposed on GET /metrics by promhttp.

Metrics:

	reelpick_http_requests_total{method,route,status_code}
	reelpick_http_request_duration_seconds{method,route}
	reelpick_http_active_requests
	reelpick_http_rate_limit_hits_total{route}
	reelpick_circuit_breaker_state{name}             0=closed, 1=half-open, 2=open
	reelpick_circuit_breaker_state_transitions_total{name,from_state,to_state}
	reelpick_rebuild_triggers_total{source,result}

Routes are chi route patterns (for example /api/v1/movies/similar), never raw
paths, so label cardinality stays bounded.
*/
package metrics
