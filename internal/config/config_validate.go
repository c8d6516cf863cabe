// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/recommend"
)

// Validate checks that required configuration is present and valid.
// The first invalid field is reported by its configuration path.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateData,
		c.validateRecommend,
		c.validateStorage,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"read_timeout", c.Server.ReadTimeout},
		{"write_timeout", c.Server.WriteTimeout},
		{"idle_timeout", c.Server.IdleTimeout},
		{"shutdown_timeout", c.Server.ShutdownTimeout},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("server.%s must be positive, got %v", t.name, t.value)
		}
	}
	return nil
}

func (c *Config) validateData() error {
	if strings.TrimSpace(c.Data.MoviesPath) == "" {
		return fmt.Errorf("data.movies_path is required (set MOVIES_PATH)")
	}
	return c.CatalogOptions().Validate()
}

// validateRecommend delegates to the engine and builder validators, which
// name fields relative to their own section.
func (c *Config) validateRecommend() error {
	if n := len(c.Recommend.Selector.SeedWeights); n != recommend.SeedCount {
		return fmt.Errorf("recommend.selector.seed_weights must have %d values, got %d", recommend.SeedCount, n)
	}
	engineCfg, err := c.EngineConfig()
	if err != nil {
		return err
	}
	if err := engineCfg.Validate(); err != nil {
		return fmt.Errorf("recommend.%w", err)
	}
	if c.Recommend.Build.MinGap < 0 {
		return fmt.Errorf("recommend.build.min_gap must be non-negative, got %v", c.Recommend.Build.MinGap)
	}
	if c.Recommend.Collaborative.Workers < 0 {
		return fmt.Errorf("recommend.collaborative.workers must be non-negative, got %d", c.Recommend.Collaborative.Workers)
	}

	buildCfg := c.BuildConfig()
	if err := buildCfg.Content.Validate(); err != nil {
		return fmt.Errorf("recommend.%w", err)
	}
	if err := buildCfg.Collaborative.Validate(); err != nil {
		return fmt.Errorf("recommend.%w", err)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	if !c.Storage.InMemory && strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("storage.path is required when storage is enabled and not in memory")
	}
	if c.Storage.RetainVersions < 1 {
		return fmt.Errorf("storage.retain_versions must be positive, got %d", c.Storage.RetainVersions)
	}
	if c.Storage.BreakerThreshold < 1 {
		return fmt.Errorf("storage.breaker_threshold must be positive, got %d", c.Storage.BreakerThreshold)
	}
	if c.Storage.BreakerTimeout <= 0 {
		return fmt.Errorf("storage.breaker_timeout must be positive, got %v", c.Storage.BreakerTimeout)
	}
	return nil
}

// Rate limit bounds
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
	minAdminSecretLength = 32
)

func (c *Config) validateSecurity() error {
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateAdminSecret()
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("security.rate_limit_reqs must be between %d and %d, got %d",
			minRateLimitRequests, maxRateLimitRequests, c.Security.RateLimitReqs)
	}
	if c.Security.RebuildRateLimitReqs < minRateLimitRequests || c.Security.RebuildRateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("security.rebuild_rate_limit_reqs must be between %d and %d, got %d",
			minRateLimitRequests, maxRateLimitRequests, c.Security.RebuildRateLimitReqs)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("security.rate_limit_window must be between %v and %v, got %v",
			minRateLimitWindow, maxRateLimitWindow, c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateAdminSecret() error {
	secret := c.Security.AdminJWTSecret
	if secret == "" {
		return nil
	}
	if len(secret) < minAdminSecretLength {
		return fmt.Errorf("security.admin_jwt_secret must be at least %d characters", minAdminSecretLength)
	}
	if containsPlaceholder(secret) {
		return fmt.Errorf("security.admin_jwt_secret contains a placeholder value - generate a secret with: openssl rand -base64 32")
	}
	return nil
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, console, got %q", c.Logging.Format)
	}
	return nil
}

// IsProduction reports whether the environment is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// ShouldWarnAboutCORS reports whether wildcard CORS is combined with admin
// authentication, which the server logs at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	if c.Security.AdminJWTSecret == "" {
		return false
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// placeholderPatterns are fragments that indicate an unset secret.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
	"EXAMPLE",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
