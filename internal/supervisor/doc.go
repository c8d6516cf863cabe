// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

/*
Package supervisor provides process supervision for Reelpick using suture v4.

The tree keeps the long-running services of the server process alive with
Erlang/OTP-style restarts and orderly shutdown.

# Overview

	RootSupervisor ("reelpick")
	├── DataSupervisor ("data-layer")
	│   └── RebuildService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crash in the rebuild service restarts only the data layer. The engine keeps
serving its current snapshot in the meantime, so API availability is not
affected.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewRebuildService(engine, rebuildCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, timeout, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("supervisor stopped")
	}

# Configuration

Zero fields of TreeConfig take suture's defaults:
  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

# Service Contract

Services implement suture.Service. Returning nil stops the service for good,
returning an error restarts it, and a canceled context must be honored
promptly. Supervisor events go to slog through the sutureslog adapter.

# Debugging Shutdown Issues

UnstoppedServiceReport lists services that did not return within the
shutdown timeout.
*/
package supervisor
