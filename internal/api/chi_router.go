// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/reelpick/internal/auth"
	"github.com/tomtom215/reelpick/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
}

// NewRouter creates a router. A nil chiMW uses DefaultChiMiddlewareConfig;
// a nil authMW leaves the rebuild endpoint unauthenticated.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, authMW *auth.Middleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	if authMW == nil {
		authMW = auth.NewMiddleware(nil, WriteError)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMW,
		auth:          authMW,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(auth.SecurityHeaders)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(auth.SecurityHeaders)
		r.Use(middleware.PrometheusMetrics)

		r.Get("/titles", router.handler.Titles)
		r.Post("/recommendations", router.handler.Recommend)
		r.Get("/movies/similar", router.handler.Similar)
		r.Get("/status", router.handler.Status)

		r.With(
			router.chiMiddleware.RateLimitRebuild(),
			router.auth.RequireAdmin,
		).Post("/rebuild", router.handler.Rebuild)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
