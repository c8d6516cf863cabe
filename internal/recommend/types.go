// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/reelpick/internal/catalog"
)

// SeedCount is the number of seed titles a request must carry.
const SeedCount = 3

// Algorithm selects the similarity source behind a recommendation.
type Algorithm int

const (
	// ContentBased ranks by movie metadata similarity.
	ContentBased Algorithm = iota
	// Collaborative ranks by similarity of latent rating embeddings.
	Collaborative
)

// Algorithms lists every supported algorithm in declaration order.
func Algorithms() []Algorithm {
	return []Algorithm{ContentBased, Collaborative}
}

// String returns the canonical algorithm name.
func (a Algorithm) String() string {
	switch a {
	case ContentBased:
		return "content"
	case Collaborative:
		return "collaborative"
	default:
		return "unknown"
	}
}

// ParseAlgorithm accepts the canonical names and a few common aliases,
// case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "content", "content-based", "content_based":
		return ContentBased, nil
	case "collaborative", "collaborative-based", "collaborative_based", "collab", "cf":
		return Collaborative, nil
	default:
		return 0, fmt.Errorf("unknown algorithm %q (want content or collaborative)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	if a != ContentBased && a != Collaborative {
		return nil, fmt.Errorf("invalid algorithm %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Neighbor is one entry of a SimilarTo result.
type Neighbor struct {
	MovieID int     `json:"movie_id"`
	Score   float64 `json:"score"`
}

// Source is a similarity capability over catalog movies.
//
// SimilarTo returns up to k movies most similar to movieID, ordered by
// descending score with ties broken by ascending movie identifier. The
// query movie itself is never included. Implementations must be safe for
// concurrent use and must not mutate state after construction.
type Source interface {
	// Name returns the source identifier ("content", "collaborative").
	Name() string

	// SimilarTo returns the k nearest neighbours of movieID.
	SimilarTo(ctx context.Context, movieID, k int) ([]Neighbor, error)
}

// Request is one recommendation invocation.
type Request struct {
	// Seeds are exactly three catalog titles. Order only matters for
	// weighted aggregation and tie-breaking.
	Seeds []string `json:"seeds"`

	// TopN is the maximum result size. Zero selects Config.Limits.DefaultTopN;
	// values above Config.Limits.MaxTopN are capped.
	TopN int `json:"top_n"`

	// Algorithm selects the similarity source.
	Algorithm Algorithm `json:"algorithm"`

	// RequestID is echoed into logs and the response.
	RequestID string `json:"request_id,omitempty"`
}

// Recommendation is one ranked result entry.
type Recommendation struct {
	MovieID int     `json:"movie_id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`

	// SeedHits is how many seed occurrences listed this movie as a candidate.
	SeedHits int `json:"seed_hits,omitempty"`
}

// Response is the result of a recommendation request.
type Response struct {
	// Items is the ranked result, at most TopN long.
	Items []Recommendation `json:"items"`

	Algorithm string   `json:"algorithm"`
	Seeds     []string `json:"seeds"`
	TopN      int      `json:"top_n"`

	// SnapshotVersion identifies the index the result was computed from.
	SnapshotVersion int `json:"snapshot_version"`

	RequestID string    `json:"request_id,omitempty"`
	CacheHit  bool      `json:"cache_hit"`
	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// Titles returns the ranked titles.
func (r *Response) Titles() []string {
	titles := make([]string, len(r.Items))
	for i, item := range r.Items {
		titles[i] = item.Title
	}
	return titles
}

// BuildStats describes the data behind a snapshot.
type BuildStats struct {
	Movies              int   `json:"movies"`
	Vocabulary          int   `json:"vocabulary"`
	Ratings             int   `json:"ratings"`
	DroppedRatings      int   `json:"dropped_ratings"`
	Users               int   `json:"users"`
	EmbeddedMovies      int   `json:"embedded_movies"`
	ModelRestored       bool  `json:"model_restored"`
	ModelVersion        int   `json:"model_version,omitempty"`
	BuildDurationMS     int64 `json:"build_duration_ms"`
	CollaborativeActive bool  `json:"collaborative_active"`
}

// Snapshot is an immutable, fully built index. Readers share it freely.
type Snapshot struct {
	Version int
	BuiltAt time.Time
	Catalog *catalog.Catalog
	Sources map[Algorithm]Source
	Stats   BuildStats
}

// Source returns the similarity source for alg, or a ModelError when the
// snapshot was built without it.
func (s *Snapshot) Source(alg Algorithm) (Source, error) {
	src, ok := s.Sources[alg]
	if !ok || src == nil {
		return nil, &ModelError{Op: "source " + alg.String(), Err: ErrSourceUnavailable}
	}
	return src, nil
}

// Status reports engine health and the active snapshot.
type Status struct {
	Ready      bool       `json:"ready"`
	Version    int        `json:"version"`
	BuiltAt    time.Time  `json:"built_at,omitempty"`
	Algorithms []string   `json:"algorithms"`
	Stats      BuildStats `json:"stats"`

	Rebuilding            bool      `json:"rebuilding"`
	LastRebuildAt         time.Time `json:"last_rebuild_at,omitempty"`
	LastRebuildDurationMS int64     `json:"last_rebuild_duration_ms"`
	LastError             string    `json:"last_error,omitempty"`
	Rebuilds              int64     `json:"rebuilds"`
	FailedRebuilds        int64     `json:"failed_rebuilds"`

	Requests    int64 `json:"requests"`
	Errors      int64 `json:"errors"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	CacheEntries int   `json:"cache_entries"`
}
