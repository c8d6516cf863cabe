// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelpick/internal/recommend"
	"github.com/tomtom215/reelpick/internal/validation"
)

// maxRequestBodyBytes bounds JSON request bodies.
const maxRequestBodyBytes = 64 << 10

// RecommendRequest is the body of POST /api/v1/recommendations.
//
// TopN of zero selects the configured default; larger values than the
// configured maximum are capped by the engine, not rejected. Validation
// checks shape only: seed titles, blank ones included, are classified by
// the engine so an unmatched title is always UNKNOWN_MOVIE.
type RecommendRequest struct {
	Seeds     []string `json:"seeds" validate:"required,len=3"`
	TopN      int      `json:"top_n" validate:"min=0"`
	Algorithm string   `json:"algorithm"`
}

// SimilarQuery holds the query parameters of GET /api/v1/movies/similar.
type SimilarQuery struct {
	Title     string `query:"title" validate:"required"`
	Algorithm string `query:"algorithm"`
	K         int    `query:"k" validate:"min=0"`
}

// TitlesQuery holds the query parameters of GET /api/v1/titles.
type TitlesQuery struct {
	Query string `query:"q" validate:"max=512"`
	Limit int    `query:"limit" validate:"min=0,max=100000"`
}

// requestError is a malformed request detected before validation, such as
// invalid JSON or a non-numeric query parameter.
type requestError struct {
	message string
}

func (e *requestError) Error() string {
	return e.message
}

// decodeJSONBody decodes a single JSON object from r into dst, rejecting
// unknown fields, trailing data and oversized bodies.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &requestError{message: fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit)}
		case errors.Is(err, io.EOF):
			return &requestError{message: "request body must not be empty"}
		default:
			return &requestError{message: "request body is not valid JSON: " + err.Error()}
		}
	}

	if dec.More() {
		return &requestError{message: "request body must contain a single JSON object"}
	}
	return nil
}

// intParam parses an optional integer query parameter. Missing parameters
// yield def.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &requestError{message: name + " must be an integer"}
	}
	return v, nil
}

// parseAlgorithm resolves the algorithm name of a request. Empty selects
// the content model.
func parseAlgorithm(name string) (recommend.Algorithm, error) {
	if name == "" {
		return recommend.ContentBased, nil
	}
	alg, err := recommend.ParseAlgorithm(name)
	if err != nil {
		return 0, &recommend.InvalidRequestError{Field: "algorithm", Reason: "must be content or collaborative"}
	}
	return alg, nil
}

// validateRequest validates req and writes the 400 response on failure.
// It reports whether the request was valid.
func validateRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	verr := validation.ValidateStruct(req)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
	return false
}
