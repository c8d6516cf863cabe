// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tomtom215/reelpick/internal/api"
	"github.com/tomtom215/reelpick/internal/auth"
	"github.com/tomtom215/reelpick/internal/bootstrap"
	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/supervisor"
	"github.com/tomtom215/reelpick/internal/supervisor/services"
)

func main() {
	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggingConfig(os.Stdout))

	logging.Info().
		Str("movies_path", cfg.Data.MoviesPath).
		Str("ratings_path", cfg.Data.RatingsPath).
		Bool("model_store", cfg.Storage.Enabled).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Reelpick with supervisor tree")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Reelpick stopped with an error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, err := bootstrap.New(cfg, logging.Logger())
	if err != nil {
		return err
	}
	defer func() {
		if err := components.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing model store")
		}
	}()

	// Serving without a first snapshot is pointless; build errors are fatal.
	if err := components.Start(ctx); err != nil {
		return err
	}

	var jwtManager *auth.JWTManager
	if cfg.Security.AdminJWTSecret != "" {
		jwtManager, err = auth.NewJWTManager(cfg.Security.AdminJWTSecret)
		if err != nil {
			return err
		}
		logging.Info().Msg("Admin JWT authentication enabled for rebuild endpoint")
	} else {
		logging.Warn().Msg("ADMIN_JWT_SECRET is not set; POST /api/v1/rebuild is unauthenticated")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().
			Strs("cors_origins", cfg.Security.CORSOrigins).
			Msg("Wildcard CORS origin combined with admin authentication; set CORS_ORIGINS to specific origins in production")
	}

	rebuildService := services.NewRebuildService(components.Engine, services.RebuildServiceConfig{
		Interval: cfg.Recommend.Build.Interval,
		MinGap:   cfg.Recommend.Build.MinGap,
	}, logging.Logger())

	handler := api.NewHandler(components.Engine, rebuildService)
	chiMW := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
		cfg.Security.RebuildRateLimitReqs,
	)
	router := api.NewRouter(handler, chiMW, auth.NewMiddleware(jwtManager, api.WriteError))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}
	tree.AddDataService(rebuildService)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.Logger()))

	logging.Info().
		Str("addr", server.Addr).
		Dur("rebuild_interval", cfg.Recommend.Build.Interval).
		Msg("Starting supervisor tree")

	err = tree.Serve(ctx)

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
