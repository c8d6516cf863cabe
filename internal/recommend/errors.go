// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/reelpick/internal/catalog"
)

// GenericFailureMessage is what users see for any failed recommendation,
// whatever the error kind.
const GenericFailureMessage = "Oops! Looks like this algorithm doesn't work. We'll need to fix it!"

// Sentinel errors for errors.Is matching. The typed errors below match
// their sentinel through an Is method.
var (
	ErrUnknownMovie      = errors.New("unknown movie")
	ErrInsufficientData  = errors.New("insufficient rating data")
	ErrModel             = errors.New("model error")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNotReady          = errors.New("recommendation index not ready")
	ErrRebuildInProgress = errors.New("rebuild already in progress")
	ErrRebuildThrottled  = errors.New("rebuild requested too soon after the previous one")

	// ErrSourceUnavailable means the snapshot has no source for the
	// requested algorithm, e.g. no ratings were configured.
	ErrSourceUnavailable = errors.New("similarity source unavailable")
)

// Error kinds returned by Kind.
const (
	KindUnknownMovie      = "unknown_movie"
	KindInsufficientData  = "insufficient_data"
	KindModelError        = "model_error"
	KindInvalidRequest    = "invalid_request"
	KindNotReady          = "not_ready"
	KindRebuildInProgress = "rebuild_in_progress"
	KindRebuildThrottled  = "rebuild_throttled"
	KindCatalogLoad       = "catalog_load"
	KindCanceled          = "canceled"
)

// UnknownMovieError reports a seed or query title that is not in the catalog.
type UnknownMovieError struct {
	Title string
}

func (e *UnknownMovieError) Error() string {
	return fmt.Sprintf("unknown movie %q", e.Title)
}

// Is matches ErrUnknownMovie.
func (e *UnknownMovieError) Is(target error) bool {
	return target == ErrUnknownMovie
}

// InsufficientDataError reports a movie without enough rating history for a
// meaningful collaborative embedding.
type InsufficientDataError struct {
	MovieID int
	Title   string

	// Ratings is the number of ratings the movie has in the training corpus.
	Ratings int

	// Required is the minimum needed to be embedded.
	Required int
}

func (e *InsufficientDataError) Error() string {
	name := e.Title
	if name == "" {
		name = fmt.Sprintf("movie %d", e.MovieID)
	} else {
		name = fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("insufficient rating data for %s: %d ratings, need %d", name, e.Ratings, e.Required)
}

// Is matches ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// ModelError is the catch-all for build-phase and numerical failures.
type ModelError struct {
	Op  string
	Err error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("model error: %s", e.Op)
	}
	return fmt.Sprintf("model error: %s: %v", e.Op, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// Is matches ErrModel.
func (e *ModelError) Is(target error) bool {
	return target == ErrModel
}

// InvalidRequestError reports a malformed request, such as the wrong
// number of seeds.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// Is matches ErrInvalidRequest.
func (e *InvalidRequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// Kind maps err to a stable identifier for logs, metrics and API codes.
// Unrecognised errors are reported as model errors. Kind(nil) is "".
func Kind(err error) string {
	var le *catalog.LoadError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownMovie):
		return KindUnknownMovie
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrNotReady):
		return KindNotReady
	case errors.Is(err, ErrRebuildInProgress):
		return KindRebuildInProgress
	case errors.Is(err, ErrRebuildThrottled):
		return KindRebuildThrottled
	case errors.As(err, &le):
		return KindCatalogLoad
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindModelError
	}
}

// asModelError wraps err as a ModelError unless it is already one of the
// typed request errors.
func asModelError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch Kind(err) {
	case KindUnknownMovie, KindInsufficientData, KindInvalidRequest, KindNotReady, KindCanceled:
		return err
	}
	var me *ModelError
	if errors.As(err, &me) {
		return err
	}
	return &ModelError{Op: op, Err: err}
}
