// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package recommend turns three seed titles into a ranked list of movies.
//
// # Architecture
//
// Two similarity sources implement the same capability, SimilarTo(movieID, k):
//
//   - Content-based: metadata similarity over genres, tags and decade
//   - Collaborative: cosine similarity between ALS item embeddings
//
// The Selector is written once against the Source interface. For each seed
// it fetches the K most similar movies, merges the three candidate lists
// with a configurable aggregation rule, removes the seeds and truncates to
// the requested size.
//
// # Snapshots
//
// The catalog and both sources live in an immutable Snapshot. The Engine
// publishes the active snapshot through an atomic pointer, so concurrent
// requests read it without locks. Rebuild produces a complete new snapshot
// and swaps it in only on success; a failed rebuild leaves the previous one
// serving.
//
// # Errors
//
// Request-time failures are typed (UnknownMovieError, InsufficientDataError,
// ModelError, InvalidRequestError) so callers can tell them apart in logs,
// metrics and tests. Kind maps any error to a stable identifier. Whether a
// user interface collapses them into one message is up to the caller.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), b, logger)
//	if err := engine.Rebuild(ctx); err != nil {
//	    return err
//	}
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    Seeds:     []string{"Toy Story (1995)", "Jumanji (1995)", "Heat (1995)"},
//	    TopN:      10,
//	    Algorithm: recommend.ContentBased,
//	})
//
// # Thread Safety
//
// Engine is safe for concurrent use. Only Rebuild writes, and at most one
// rebuild runs at a time; a concurrent call returns ErrRebuildInProgress.
package recommend
