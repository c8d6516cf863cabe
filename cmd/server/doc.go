// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

/*
Package main is the entry point for the Reelpick HTTP server.

Reelpick recommends movies from three seed titles using either a
metadata-based content model or a collaborative model trained on user
ratings.

# Application Architecture

	RootSupervisor ("reelpick")
	├── DataSupervisor ("data-layer")
	│   └── RebuildService (scheduled and manual snapshot rebuilds)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (chi router)

Startup order:

 1. Configuration: optional .env (godotenv), then Koanf v2 layers
 2. Logging: zerolog with JSON or console output
 3. Engine: model store (BadgerDB, optional), builder and engine
 4. Initial build: a failure here exits the process
 5. Authentication: HS256 admin tokens when ADMIN_JWT_SECRET is set
 6. Supervisor tree: rebuild service and HTTP server

# Configuration

Priority: environment variables > config file > defaults.

	MOVIES_PATH=/data/movies.csv       # required
	TAGS_PATH=/data/tags.csv           # optional
	RATINGS_PATH=/data/ratings.csv     # optional, enables the collaborative model
	HTTP_PORT=8080
	MODEL_STORE_PATH=/data/models
	RECOMMEND_REBUILD_INTERVAL=24h
	ADMIN_JWT_SECRET=...               # 32+ characters
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests within HTTP_SHUTDOWN_TIMEOUT and the model store is
closed before exit.
*/
package main
