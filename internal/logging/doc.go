// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package logging provides the process-wide zerolog logger for Reelpick.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Int("movies", n).Msg("Catalog loaded")
//	logging.Ctx(ctx).Warn().Str("kind", kind).Msg("Recommendation failed")
//
// Component loggers carry a "component" field:
//
//	log := logging.WithComponent("rebuild")
//
// # Request Scope
//
// HTTP middleware stores a request ID (and optionally a correlation ID) in
// the request context. Ctx(ctx) returns a logger with both attached, so
// every log line of one request can be joined.
//
// # slog Bridge
//
// Libraries that only accept *slog.Logger, such as sutureslog, get one
// backed by zerolog through NewSlogLogger.
//
// # Configuration
//
// The server maps these environment variables through internal/config:
//
//	LOG_LEVEL   trace, debug, info, warn, error, fatal, panic, disabled (default: info)
//	LOG_FORMAT  json or console (default: json)
//	LOG_CALLER  include caller file:line (default: false)
package logging
