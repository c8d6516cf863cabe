// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package catalog

import (
	"errors"
	"fmt"
)

// Load failure causes, matchable with errors.Is through a LoadError.
var (
	ErrEmptyCatalog    = errors.New("catalog is empty")
	ErrBlankTitle      = errors.New("blank title")
	ErrDuplicateID     = errors.New("duplicate movie id")
	ErrDuplicateTitle  = errors.New("duplicate title")
	ErrDuplicateRating = errors.New("duplicate (user, movie) rating")
	ErrMissingColumn   = errors.New("missing required column")
	ErrMalformedRow    = errors.New("malformed row")
)

// LoadError reports a missing or malformed tabular source. It is fatal at
// startup: a catalog that fails to load is never served.
type LoadError struct {
	// Source names the input ("movies", "tags", "ratings").
	Source string

	// Path is the file path, if the source was a file.
	Path string

	// Line is the 1-based CSV line, or zero when not line specific.
	Line int

	Err error
}

func (e *LoadError) Error() string {
	loc := e.Source
	if e.Path != "" {
		loc = fmt.Sprintf("%s (%s)", e.Source, e.Path)
	}
	if e.Line > 0 {
		return fmt.Sprintf("load %s line %d: %v", loc, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", loc, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
