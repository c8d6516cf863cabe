// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package catalog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// noGenres is the MovieLens placeholder for an empty genre list.
const noGenres = "(no genres listed)"

// yearSuffix matches a trailing release year such as "Heat (1995)".
var yearSuffix = regexp.MustCompile(`\((\d{4})\)\s*$`)

// Load reads movies from moviesPath and, when tagsPath is non-empty, merges
// user tags into each movie's attributes.
func Load(moviesPath, tagsPath string, opts Options) (*Catalog, error) {
	mf, err := os.Open(moviesPath) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, &LoadError{Source: "movies", Path: moviesPath, Err: err}
	}
	defer func() { _ = mf.Close() }() //nolint:errcheck // read-only file

	var tags io.Reader
	if tagsPath != "" {
		tf, err := os.Open(tagsPath) //nolint:gosec // path comes from operator configuration
		if err != nil {
			return nil, &LoadError{Source: "tags", Path: tagsPath, Err: err}
		}
		defer func() { _ = tf.Close() }() //nolint:errcheck // read-only file
		tags = tf
	}

	c, err := Parse(bufio.NewReader(mf), tags, opts)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Path == "" {
			switch le.Source {
			case "movies":
				le.Path = moviesPath
			case "tags":
				le.Path = tagsPath
			}
		}
		return nil, err
	}
	return c, nil
}

// Parse builds a catalog from a movies CSV stream and an optional tags CSV
// stream (tags may be nil).
func Parse(movies io.Reader, tags io.Reader, opts Options) (*Catalog, error) {
	list, err := parseMovies(movies)
	if err != nil {
		return nil, err
	}

	if tags != nil {
		if err := mergeTags(list, tags); err != nil {
			return nil, err
		}
	}

	return New(list, opts)
}

// parseMovies reads movieId,title,genres rows.
func parseMovies(r io.Reader) ([]Movie, error) {
	reader := newCSVReader(r)
	cols, err := readHeader(reader, "movies", "movieid", "title", "genres")
	if errors.Is(err, io.EOF) {
		return nil, &LoadError{Source: "movies", Err: ErrEmptyCatalog}
	}
	if err != nil {
		return nil, err
	}

	var movies []Movie
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line := rowLine(reader, row, err)
		if err != nil {
			return nil, &LoadError{Source: "movies", Line: line, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
		}
		if len(row) < cols.width {
			return nil, &LoadError{Source: "movies", Line: line, Err: fmt.Errorf("%w: %d fields", ErrMalformedRow, len(row))}
		}

		id, err := strconv.Atoi(strings.TrimSpace(row[cols.index("movieid")]))
		if err != nil {
			return nil, &LoadError{Source: "movies", Line: line, Err: fmt.Errorf("%w: movieId %q", ErrMalformedRow, row[cols.index("movieid")])}
		}

		title := strings.TrimSpace(row[cols.index("title")])
		movies = append(movies, Movie{
			ID:     id,
			Title:  title,
			Year:   parseYear(title),
			Genres: parseGenres(row[cols.index("genres")]),
		})
	}

	return movies, nil
}

// mergeTags aggregates userId,movieId,tag rows into the movies' tag sets.
// Tags for identifiers not in movies are ignored.
func mergeTags(movies []Movie, r io.Reader) error {
	index := make(map[int]int, len(movies))
	for i := range movies {
		index[movies[i].ID] = i
	}

	reader := newCSVReader(r)
	cols, err := readHeader(reader, "tags", "movieid", "tag")
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line := rowLine(reader, row, err)
		if err != nil {
			return &LoadError{Source: "tags", Line: line, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
		}
		if len(row) < cols.width {
			return &LoadError{Source: "tags", Line: line, Err: fmt.Errorf("%w: %d fields", ErrMalformedRow, len(row))}
		}

		id, err := strconv.Atoi(strings.TrimSpace(row[cols.index("movieid")]))
		if err != nil {
			return &LoadError{Source: "tags", Line: line, Err: fmt.Errorf("%w: movieId %q", ErrMalformedRow, row[cols.index("movieid")])}
		}
		idx, ok := index[id]
		if !ok {
			continue
		}

		tag := strings.ToLower(strings.TrimSpace(row[cols.index("tag")]))
		if tag == "" {
			continue
		}
		m := &movies[idx]
		if m.TagCounts == nil {
			m.TagCounts = make(map[string]int)
		}
		m.TagCounts[tag]++
	}

	for i := range movies {
		m := &movies[i]
		if len(m.TagCounts) == 0 {
			continue
		}
		m.Tags = make([]string, 0, len(m.TagCounts))
		for t := range m.TagCounts {
			m.Tags = append(m.Tags, t)
		}
		sort.Strings(m.Tags)
	}

	return nil
}

// newCSVReader returns a reader tolerant of ragged rows; row width is
// checked against the header explicitly.
func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	return reader
}

// header maps lower-cased column names to their index.
type header struct {
	cols  map[string]int
	width int // minimum row width covering every required column
}

func (h header) index(name string) int {
	idx, ok := h.cols[name]
	if !ok {
		return -1
	}
	return idx
}

// readHeader reads the header row and locates the required columns by
// case-insensitive name. Optional columns are recorded when present.
func readHeader(reader *csv.Reader, source string, required ...string) (header, error) {
	row, err := reader.Read()
	if err != nil {
		return header{}, &LoadError{Source: source, Line: 1, Err: fmt.Errorf("read header: %w", err)}
	}

	h := header{cols: make(map[string]int, len(row))}
	for i, name := range row {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := h.cols[key]; !dup {
			h.cols[key] = i
		}
	}

	for _, name := range required {
		idx, ok := h.cols[name]
		if !ok {
			return header{}, &LoadError{Source: source, Line: 1, Err: fmt.Errorf("%w: %s", ErrMissingColumn, name)}
		}
		if idx+1 > h.width {
			h.width = idx + 1
		}
	}
	return h, nil
}

// rowLine returns the 1-based line of the last record read, or of the
// parse error when reading failed.
func rowLine(reader *csv.Reader, row []string, err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.StartLine
	}
	if err != nil || len(row) == 0 {
		return 0
	}
	line, _ := reader.FieldPos(0)
	return line
}

// parseYear extracts a four-digit release year from the end of a title.
func parseYear(title string) int {
	match := yearSuffix.FindStringSubmatch(title)
	if match == nil {
		return 0
	}
	year, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return year
}

// parseGenres splits a pipe-separated genre list, dropping blanks and duplicates.
func parseGenres(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == noGenres {
		return nil
	}

	parts := strings.Split(raw, "|")
	genres := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		g := strings.TrimSpace(p)
		if g == "" || g == noGenres {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		genres = append(genres, g)
	}
	if len(genres) == 0 {
		return nil
	}
	return genres
}
