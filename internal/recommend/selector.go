// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/reelpick/internal/catalog"
)

// Selector merges per-seed neighbour lists into one ranked result.
//
// Ranking rule, for seeds s0, s1, s2 and candidate c:
//
//	sum:      score(c) = Σ_i sim_i(c)
//	weighted: score(c) = Σ_i w_i · sim_i(c)
//	max:      score(c) = max_i sim_i(c)
//
// where the terms range over the seeds whose top-K list contains c. Results
// are ordered by score descending, then by the position of the first seed
// that listed the candidate, then by movie identifier ascending. Seed movies
// are never returned. A seed title given twice is excluded once but
// contributes to the scores once per occurrence.
type Selector struct {
	cfg SelectorConfig
}

// NewSelector creates a selector with cfg.
func NewSelector(cfg SelectorConfig) *Selector {
	return &Selector{cfg: cfg}
}

type candidate struct {
	id        int
	score     float64
	firstSeed int
	hits      int
}

// Select produces up to topN recommendations for seeds from src.
// Any seed failure fails the whole request; partial results are never
// returned.
func (s *Selector) Select(ctx context.Context, cat *catalog.Catalog, src Source, seeds []string, topN int) ([]Recommendation, error) {
	seedMovies, err := ResolveSeeds(cat, seeds)
	if err != nil {
		return nil, err
	}
	return s.SelectResolved(ctx, cat, src, seedMovies, topN)
}

// ResolveSeeds looks up exactly SeedCount titles in cat. The first title
// the catalog does not hold is reported as an UnknownMovieError.
func ResolveSeeds(cat *catalog.Catalog, seeds []string) ([]catalog.Movie, error) {
	if len(seeds) != SeedCount {
		return nil, &InvalidRequestError{Field: "seeds", Reason: fmt.Sprintf("must contain exactly %d titles, got %d", SeedCount, len(seeds))}
	}
	movies := make([]catalog.Movie, len(seeds))
	for i, title := range seeds {
		m, err := cat.Resolve(title)
		if err != nil {
			return nil, &UnknownMovieError{Title: title}
		}
		movies[i] = m
	}
	return movies, nil
}

// SelectResolved ranks candidates for seed movies already resolved by
// ResolveSeeds.
func (s *Selector) SelectResolved(ctx context.Context, cat *catalog.Catalog, src Source, seedMovies []catalog.Movie, topN int) ([]Recommendation, error) {
	if len(seedMovies) != SeedCount {
		return nil, &InvalidRequestError{Field: "seeds", Reason: fmt.Sprintf("must contain exactly %d titles, got %d", SeedCount, len(seedMovies))}
	}
	if topN < 1 {
		return nil, &InvalidRequestError{Field: "top_n", Reason: fmt.Sprintf("must be positive, got %d", topN)}
	}

	exclude := make(map[int]struct{}, len(seedMovies))
	for _, m := range seedMovies {
		exclude[m.ID] = struct{}{}
	}

	k := s.cfg.CandidateDepth(topN)
	merged := make(map[int]*candidate)

	for i, seed := range seedMovies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		neighbors, err := src.SimilarTo(ctx, seed.ID, k)
		if err != nil {
			return nil, annotateSeedError(err, seed)
		}

		weight := s.seedWeight(i)
		for _, n := range neighbors {
			if _, isSeed := exclude[n.MovieID]; isSeed {
				continue
			}
			c, ok := merged[n.MovieID]
			if !ok {
				c = &candidate{id: n.MovieID, firstSeed: i}
				merged[n.MovieID] = c
			}
			s.accumulate(c, n.Score, weight)
		}
	}

	ranked := make([]*candidate, 0, len(merged))
	for _, c := range merged {
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.firstSeed != b.firstSeed {
			return a.firstSeed < b.firstSeed
		}
		return a.id < b.id
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	out := make([]Recommendation, 0, len(ranked))
	for _, c := range ranked {
		m, ok := cat.Movie(c.id)
		if !ok {
			return nil, &ModelError{Op: "select", Err: fmt.Errorf("source returned movie %d not in catalog", c.id)}
		}
		out = append(out, Recommendation{
			MovieID:  c.id,
			Title:    m.Title,
			Score:    c.score,
			SeedHits: c.hits,
		})
	}
	return out, nil
}

func (s *Selector) seedWeight(i int) float64 {
	if s.cfg.Aggregation != AggregateWeighted {
		return 1
	}
	return s.cfg.SeedWeights[i]
}

func (s *Selector) accumulate(c *candidate, score, weight float64) {
	switch s.cfg.Aggregation {
	case AggregateMax:
		if c.hits == 0 || score > c.score {
			c.score = score
		}
	default:
		c.score += weight * score
	}
	c.hits++
}

// annotateSeedError attaches the seed title to cold-start errors and wraps
// untyped source failures as ModelError.
func annotateSeedError(err error, seed catalog.Movie) error {
	var ide *InsufficientDataError
	if errors.As(err, &ide) {
		annotated := *ide
		annotated.MovieID = seed.ID
		annotated.Title = seed.Title
		return &annotated
	}
	return asModelError("similar to "+fmt.Sprintf("%q", seed.Title), err)
}
