// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

/*
Package config provides layered configuration for the Reelpick server and CLI.

# Configuration Sources

Configuration is loaded with koanf in three layers, later layers winning:

 1. Struct defaults (defaultConfig)
 2. Optional YAML file: CONFIG_PATH, else ./config.yaml, ./config.yml,
    /etc/reelpick/config.yaml
 3. Environment variables, through an explicit mapping table. Unmapped
    variables are ignored.

Callers that want .env support load it with godotenv before calling Load.

# Sections

  - server: HTTP bind address, timeouts and environment
  - data: movies.csv, tags.csv and ratings.csv paths
  - recommend: selector, content, collaborative, build, limits and cache
  - storage: BadgerDB model store and its circuit breaker
  - security: CORS, rate limits and the admin JWT secret
  - logging: level, format and caller

# Environment Variables

Data:
  - MOVIES_PATH (required), TAGS_PATH, RATINGS_PATH
  - DUPLICATE_TITLES (reject or disambiguate, default: reject)

HTTP Server:
  - HTTP_HOST (default: 0.0.0.0), HTTP_PORT (default: 8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - ENVIRONMENT (default: development)

Recommendation engine:
  - RECOMMEND_CANDIDATE_MULTIPLIER (default: 3)
  - RECOMMEND_AGGREGATION: sum, max or weighted (default: sum)
  - RECOMMEND_SEED_WEIGHTS: comma-separated, three values (default: 1,1,1)
  - RECOMMEND_CONTENT_GENRE_WEIGHT, RECOMMEND_CONTENT_TAG_WEIGHT, RECOMMEND_CONTENT_DECADE_WEIGHT
  - RECOMMEND_ALS_FACTORS, RECOMMEND_ALS_ITERATIONS, RECOMMEND_ALS_LAMBDA,
    RECOMMEND_ALS_SEED, RECOMMEND_ALS_WORKERS, RECOMMEND_ALS_MIN_RATINGS
  - RECOMMEND_BUILD_TIMEOUT (default: 10m), RECOMMEND_REBUILD_INTERVAL (default: 24h),
    RECOMMEND_REBUILD_MIN_GAP (default: 1m)
  - RECOMMEND_DEFAULT_TOP_N (default: 10), RECOMMEND_MAX_TOP_N (default: 100)
  - RECOMMEND_CACHE_ENABLED, RECOMMEND_CACHE_TTL, RECOMMEND_CACHE_MAX_ENTRIES

Model store:
  - MODEL_STORE_ENABLED (default: true), MODEL_STORE_PATH (default: /data/models),
    MODEL_STORE_IN_MEMORY, MODEL_STORE_SYNC_WRITES, MODEL_STORE_RETAIN_VERSIONS,
    MODEL_STORE_BREAKER_THRESHOLD, MODEL_STORE_BREAKER_TIMEOUT

Security:
  - CORS_ORIGINS (default: *), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW,
    DISABLE_RATE_LIMIT, REBUILD_RATE_LIMIT_REQUESTS
  - ADMIN_JWT_SECRET: enables admin auth on POST /api/v1/rebuild (32+ characters)

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Validation

Validate reports the first invalid field by its configuration path, for
example "recommend.selector.candidate_multiplier must be positive, got 0".
*/
package config
