// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package commands

import (
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tomtom215/reelpick/internal/bootstrap"
	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/logging"
)

// loadConfig reads .env, then the configured file and environment.
func loadConfig(opts *options) (*config.Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if opts.noStore {
		cfg.Storage.Enabled = false
	}
	return cfg, nil
}

// initLogging sends logs to stderr so they never mix with command output.
// Without --verbose logging is off and failures show only the generic
// message.
func initLogging(cmd *cobra.Command, opts *options) {
	level := "disabled"
	if opts.verbose {
		level = "debug"
	}
	logging.Init(logging.Config{
		Level:     level,
		Format:    "console",
		Timestamp: true,
		Output:    cmd.ErrOrStderr(),
	})
}

// openEngine builds a ready engine from configuration. The caller closes
// the returned components.
func openEngine(cmd *cobra.Command, opts *options) (*bootstrap.Components, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	initLogging(cmd, opts)

	c, err := bootstrap.New(cfg, logging.Logger())
	if err != nil {
		return nil, err
	}
	if err := c.Start(cmd.Context()); err != nil {
		closeEngine(c)
		return nil, err
	}
	return c, nil
}

// closeEngine releases the model store, logging a failure. The command's
// own result is already decided by then.
func closeEngine(c io.Closer) {
	if err := c.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing model store")
	}
}
