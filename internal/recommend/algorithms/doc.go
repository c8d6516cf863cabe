// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package algorithms implements the two similarity sources behind the
// recommendation selector.
//
// Both sources implement recommend.Source:
//
//	type Source interface {
//	    Name() string
//	    SimilarTo(ctx context.Context, movieID, k int) ([]Neighbor, error)
//	}
//
// # Sources
//
// ContentIndex ("content") scores movies by metadata. Every catalog movie
// becomes a sparse TF-IDF style vector over genre, tag and decade tokens;
// similarity is the cosine of two vectors. Scores are computed on demand
// with a single pass over the catalog, so no M×M matrix is held.
//
// CollaborativeModel ("collaborative") scores movies by the cosine of
// latent item factors learned with explicit-feedback ALS (weighted-λ
// regularization) over the ratings corpus. Movies without enough ratings
// are cold-start and fail with recommend.InsufficientDataError.
//
// # Ordering
//
// SimilarTo results are ordered by score descending, ties broken by movie
// identifier ascending. The query movie is never included.
//
// # Thread Safety
//
// Both sources are immutable after construction and safe for concurrent
// use without locking.
//
// # Determinism
//
// Building either source twice from the same input yields bit-identical
// vectors. ALS initialization uses a seeded PRNG in ascending movie order,
// and every row is solved independently with a fixed summation order, so
// the worker count does not affect the result.
package algorithms
