// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/reelpick/internal/logging"
)

type contextKey string

// ClaimsContextKey is the context key of validated *Claims.
const ClaimsContextKey contextKey = "claims"

// Error codes passed to ErrorResponder.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
)

// ErrorResponder writes an error response. The API layer supplies one that
// renders its envelope.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware enforces admin authentication.
type Middleware struct {
	jwtManager *JWTManager
	respond    ErrorResponder
}

// NewMiddleware creates the auth middleware. A nil jwtManager disables
// authentication. A nil respond falls back to http.Error.
func NewMiddleware(jwtManager *JWTManager, respond ErrorResponder) *Middleware {
	if respond == nil {
		respond = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{jwtManager: jwtManager, respond: respond}
}

// Enabled reports whether tokens are required.
func (m *Middleware) Enabled() bool {
	return m.jwtManager != nil
}

// RequireAdmin is middleware that requires a valid admin bearer token.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.jwtManager == nil {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="reelpick"`)
			m.respond(w, r, http.StatusUnauthorized, CodeUnauthorized, "Missing or malformed bearer token")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Admin token validation failed")
			w.Header().Set("WWW-Authenticate", `Bearer realm="reelpick", error="invalid_token"`)
			m.respond(w, r, http.StatusUnauthorized, CodeUnauthorized, "Invalid token")
			return
		}

		if claims.Role != RoleAdmin {
			m.respond(w, r, http.StatusForbidden, CodeForbidden, "Insufficient permissions")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the claims stored by RequireAdmin.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok
}

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// SecurityHeaders adds security headers suited to a JSON API.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")

		// HSTS (only if using HTTPS - check X-Forwarded-Proto)
		if r.Header.Get("X-Forwarded-Proto") == "https" || r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
