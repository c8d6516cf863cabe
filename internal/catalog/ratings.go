// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Rating is one historical (user, movie, score) observation.
type Rating struct {
	UserID    int       `json:"user_id"`
	MovieID   int       `json:"movie_id"`
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// RatingsStats summarises a ratings load.
type RatingsStats struct {
	// Rows is the number of data rows read.
	Rows int `json:"rows"`

	// Kept is the number of ratings joined to a catalog movie.
	Kept int `json:"kept"`

	// DroppedUnknownMovie counts rows whose movie is not in the catalog.
	DroppedUnknownMovie int `json:"dropped_unknown_movie"`

	// Users and Movies count the distinct identifiers among kept ratings.
	Users  int `json:"users"`
	Movies int `json:"movies"`
}

type ratingKey struct {
	user  int
	movie int
}

// LoadRatings reads the ratings file at path and joins it against c.
func LoadRatings(path string, c *Catalog) ([]Rating, RatingsStats, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, RatingsStats{}, &LoadError{Source: "ratings", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	ratings, stats, err := ParseRatings(bufio.NewReader(f), c)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Path == "" {
			le.Path = path
		}
		return nil, RatingsStats{}, err
	}
	return ratings, stats, nil
}

// ParseRatings reads userId,movieId,rating[,timestamp] rows from r.
// Ratings for movies absent from c are dropped and counted. A repeated
// (user, movie) pair or a non-finite score fails the whole load.
func ParseRatings(r io.Reader, c *Catalog) ([]Rating, RatingsStats, error) {
	var stats RatingsStats

	reader := newCSVReader(r)
	cols, err := readHeader(reader, "ratings", "userid", "movieid", "rating")
	if errors.Is(err, io.EOF) {
		return nil, stats, nil
	}
	if err != nil {
		return nil, stats, err
	}

	tsCol := cols.index("timestamp")

	seen := make(map[ratingKey]int)
	users := make(map[int]struct{})
	movies := make(map[int]struct{})
	var ratings []Rating

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line := rowLine(reader, row, err)
		if err != nil {
			return nil, stats, &LoadError{Source: "ratings", Line: line, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
		}
		if len(row) < cols.width {
			return nil, stats, &LoadError{Source: "ratings", Line: line, Err: fmt.Errorf("%w: %d fields", ErrMalformedRow, len(row))}
		}
		stats.Rows++

		userID, err := strconv.Atoi(strings.TrimSpace(row[cols.index("userid")]))
		if err != nil {
			return nil, stats, &LoadError{Source: "ratings", Line: line, Err: fmt.Errorf("%w: userId %q", ErrMalformedRow, row[cols.index("userid")])}
		}
		movieID, err := strconv.Atoi(strings.TrimSpace(row[cols.index("movieid")]))
		if err != nil {
			return nil, stats, &LoadError{Source: "ratings", Line: line, Err: fmt.Errorf("%w: movieId %q", ErrMalformedRow, row[cols.index("movieid")])}
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(row[cols.index("rating")]), 64)
		if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, stats, &LoadError{Source: "ratings", Line: line, Err: fmt.Errorf("%w: rating %q", ErrMalformedRow, row[cols.index("rating")])}
		}

		key := ratingKey{user: userID, movie: movieID}
		if first, dup := seen[key]; dup {
			return nil, stats, &LoadError{
				Source: "ratings",
				Line:   line,
				Err:    fmt.Errorf("user %d movie %d (first on line %d): %w", userID, movieID, first, ErrDuplicateRating),
			}
		}
		seen[key] = line

		if c != nil && !c.Contains(movieID) {
			stats.DroppedUnknownMovie++
			continue
		}

		rating := Rating{UserID: userID, MovieID: movieID, Score: score}
		if tsCol >= 0 && tsCol < len(row) {
			if raw := strings.TrimSpace(row[tsCol]); raw != "" {
				secs, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return nil, stats, &LoadError{Source: "ratings", Line: line, Err: fmt.Errorf("%w: timestamp %q", ErrMalformedRow, raw)}
				}
				rating.Timestamp = time.Unix(secs, 0).UTC()
			}
		}

		ratings = append(ratings, rating)
		users[userID] = struct{}{}
		movies[movieID] = struct{}{}
	}

	stats.Kept = len(ratings)
	stats.Users = len(users)
	stats.Movies = len(movies)
	return ratings, stats, nil
}
