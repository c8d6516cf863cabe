// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/recommend"
)

// GenericFailureMessage is the only human-readable message a failed
// recommendation ever carries. The error code tells clients what happened.
const GenericFailureMessage = recommend.GenericFailureMessage

// errorMapping is the HTTP rendering of one recommend error kind.
type errorMapping struct {
	status int
	code   string
}

var engineErrors = map[string]errorMapping{
	recommend.KindUnknownMovie:      {http.StatusUnprocessableEntity, ErrCodeUnknownMovie},
	recommend.KindInsufficientData:  {http.StatusUnprocessableEntity, ErrCodeInsufficientData},
	recommend.KindInvalidRequest:    {http.StatusBadRequest, ErrCodeInvalidRequest},
	recommend.KindNotReady:          {http.StatusServiceUnavailable, ErrCodeNotReady},
	recommend.KindRebuildInProgress: {http.StatusConflict, ErrCodeRebuildInProgress},
	recommend.KindRebuildThrottled:  {http.StatusTooManyRequests, ErrCodeRebuildThrottled},
	recommend.KindCanceled:          {http.StatusGatewayTimeout, ErrCodeTimeout},
	recommend.KindCatalogLoad:       {http.StatusInternalServerError, ErrCodeModelError},
	recommend.KindModelError:        {http.StatusInternalServerError, ErrCodeModelError},
}

// mapEngineError returns the status and code for err.
func mapEngineError(err error) (int, string) {
	if m, ok := engineErrors[recommend.Kind(err)]; ok {
		return m.status, m.code
	}
	return http.StatusInternalServerError, ErrCodeModelError
}

// writeEngineError renders an engine error. Invalid requests explain which
// field was wrong; every other kind gets GenericFailureMessage.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapEngineError(err)

	logging.Ctx(r.Context()).Debug().
		Err(err).
		Str("kind", recommend.Kind(err)).
		Int("status", status).
		Msg("Request failed")

	rw := NewResponseWriter(w, r)

	var ire *recommend.InvalidRequestError
	if errors.As(err, &ire) {
		rw.ErrorWithDetails(status, code, "Invalid request", map[string]interface{}{
			"field":  ire.Field,
			"reason": ire.Reason,
		})
		return
	}

	rw.Error(status, code, GenericFailureMessage)
}
