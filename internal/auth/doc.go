// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

/*
Package auth guards Reelpick's administrative endpoints with HS256 JWTs.

Only one capability is protected: triggering a rebuild (POST /api/v1/rebuild).
Tokens are minted offline with the CLI (reelpick token --subject ops) using
the same ADMIN_JWT_SECRET as the server, and sent as

	Authorization: Bearer <token>

When no secret is configured the middleware is a pass-through, which suits
local development.

Token rules:
  - signing method must be HS256 (algorithm confusion is rejected)
  - issuer must be "reelpick"
  - exp is required; nbf and iat are honoured
  - role claim must be "admin"
*/
package auth
