// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package catalog holds the canonical set of known movies.
//
// A Catalog is loaded once from flat tabular sources (MovieLens-style
// movies.csv and an optional tags.csv) and is read-only afterwards. It is
// safe for concurrent use without synchronization because no method mutates
// it after construction.
//
// The package also reads the ratings corpus (ratings.csv) consumed by the
// collaborative model, joining it against a loaded Catalog.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned by Resolve when a title is not in the catalog.
var ErrNotFound = errors.New("movie not found")

// Movie is one catalog entry. Movies are immutable after load.
type Movie struct {
	// ID is the stable identifier shared with the ratings source.
	ID int `json:"id"`

	// Title is the display string and the exact match key for Resolve.
	Title string `json:"title"`

	// Year is parsed from a trailing "(YYYY)" in the title; zero if absent.
	Year int `json:"year,omitempty"`

	// Genres in source order, deduplicated.
	Genres []string `json:"genres,omitempty"`

	// Tags are lower-cased free-text tags, sorted, with per-tag counts in TagCounts.
	Tags []string `json:"tags,omitempty"`

	// TagCounts maps each tag to how often it was applied to this movie.
	TagCounts map[string]int `json:"-"`
}

// Catalog is an immutable, indexed set of movies.
type Catalog struct {
	movies  []Movie // ascending by ID
	byID    map[int]int
	byTitle map[string]int
	titles  []string
}

// DuplicatePolicy selects how New treats movies that share a title.
type DuplicatePolicy string

// Duplicate title policies
const (
	// DuplicatesReject fails the load with ErrDuplicateTitle.
	DuplicatesReject DuplicatePolicy = "reject"

	// DuplicatesDisambiguate keeps the bare title for the lowest movie id
	// and renames every later holder to "Title [id]".
	DuplicatesDisambiguate DuplicatePolicy = "disambiguate"
)

// Options controls catalog construction. The zero value rejects duplicate
// titles.
type Options struct {
	DuplicateTitles DuplicatePolicy `json:"duplicate_titles"`
}

// Validate checks the options for errors.
func (o Options) Validate() error {
	switch o.DuplicateTitles {
	case "", DuplicatesReject, DuplicatesDisambiguate:
		return nil
	default:
		return fmt.Errorf("data.duplicate_titles must be %q or %q, got %q", DuplicatesReject, DuplicatesDisambiguate, o.DuplicateTitles)
	}
}

// New builds a catalog from movies, enforcing unique identifiers and, per
// opts, unique titles. The input slice is copied and ordered by ascending
// identifier.
func New(movies []Movie, opts Options) (*Catalog, error) {
	if err := opts.Validate(); err != nil {
		return nil, &LoadError{Source: "movies", Err: err}
	}
	if len(movies) == 0 {
		return nil, &LoadError{Source: "movies", Err: ErrEmptyCatalog}
	}

	sorted := make([]Movie, len(movies))
	copy(sorted, movies)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	c := &Catalog{
		movies:  sorted,
		byID:    make(map[int]int, len(sorted)),
		byTitle: make(map[string]int, len(sorted)),
		titles:  make([]string, len(sorted)),
	}

	for i := range sorted {
		m := &sorted[i]
		if strings.TrimSpace(m.Title) == "" {
			return nil, &LoadError{Source: "movies", Err: fmt.Errorf("movie %d: %w", m.ID, ErrBlankTitle)}
		}
		if prev, ok := c.byID[m.ID]; ok {
			return nil, &LoadError{
				Source: "movies",
				Err:    fmt.Errorf("movie id %d used by %q and %q: %w", m.ID, sorted[prev].Title, m.Title, ErrDuplicateID),
			}
		}
		if _, ok := c.byTitle[m.Title]; ok && opts.DuplicateTitles == DuplicatesDisambiguate {
			m.Title = fmt.Sprintf("%s [%d]", m.Title, m.ID)
		}
		if prev, ok := c.byTitle[m.Title]; ok {
			return nil, &LoadError{
				Source: "movies",
				Err:    fmt.Errorf("title %q used by ids %d and %d: %w", m.Title, sorted[prev].ID, m.ID, ErrDuplicateTitle),
			}
		}
		c.byID[m.ID] = i
		c.byTitle[m.Title] = i
		c.titles[i] = m.Title
	}

	return c, nil
}

// ListTitles returns every title in ascending identifier order.
// The returned slice is a copy and may be modified by the caller.
func (c *Catalog) ListTitles() []string {
	out := make([]string, len(c.titles))
	copy(out, c.titles)
	return out
}

// Resolve looks up a movie by its exact title.
func (c *Catalog) Resolve(title string) (Movie, error) {
	idx, ok := c.byTitle[title]
	if !ok {
		return Movie{}, fmt.Errorf("%q: %w", title, ErrNotFound)
	}
	return c.movies[idx], nil
}

// Movie returns the movie with the given identifier.
func (c *Catalog) Movie(id int) (Movie, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Movie{}, false
	}
	return c.movies[idx], true
}

// Contains reports whether id is a catalog identifier.
func (c *Catalog) Contains(id int) bool {
	_, ok := c.byID[id]
	return ok
}

// Movies returns the movies in ascending identifier order.
// The slice is shared and must be treated as read-only.
func (c *Catalog) Movies() []Movie {
	return c.movies
}

// Len returns the number of movies.
func (c *Catalog) Len() int {
	return len(c.movies)
}

// Search returns up to limit titles containing query (case-insensitive),
// in ListTitles order. An empty query matches every title.
func (c *Catalog) Search(query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	capHint := 64
	if limit > 0 && limit < capHint {
		capHint = limit
	}
	out := make([]string, 0, capHint)
	for _, t := range c.titles {
		if limit > 0 && len(out) >= limit {
			break
		}
		if q == "" || strings.Contains(strings.ToLower(t), q) {
			out = append(out, t)
		}
	}
	return out
}
