// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package algorithms

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/reelpick/internal/recommend"
)

// Source names.
const (
	ContentName       = "content"
	CollaborativeName = "collaborative"
)

// ctxCheckInterval is how many scored candidates pass between context checks.
const ctxCheckInterval = 1024

// worse reports whether a ranks below b: lower score, or equal score and
// higher movie identifier.
func worse(a, b recommend.Neighbor) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.MovieID > b.MovieID
}

// neighborHeap is a min-heap with the worst neighbour at the root.
type neighborHeap []recommend.Neighbor

func (h neighborHeap) Len() int           { return len(h) }
func (h neighborHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h neighborHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *neighborHeap) Push(x any) {
	*h = append(*h, x.(recommend.Neighbor))
}

func (h *neighborHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topK collects the k best neighbours seen so far.
type topK struct {
	k int
	h neighborHeap
}

func newTopK(k int) *topK {
	return &topK{k: k, h: make(neighborHeap, 0, k)}
}

func (t *topK) offer(n recommend.Neighbor) {
	if t.k <= 0 {
		return
	}
	if len(t.h) < t.k {
		heap.Push(&t.h, n)
		return
	}
	if worse(t.h[0], n) {
		t.h[0] = n
		heap.Fix(&t.h, 0)
	}
}

// result returns the collected neighbours, best first.
func (t *topK) result() []recommend.Neighbor {
	out := make([]recommend.Neighbor, len(t.h))
	copy(out, t.h)
	sort.Slice(out, func(i, j int) bool { return worse(out[j], out[i]) })
	return out
}

// checkK rejects negative result sizes.
func checkK(k int) error {
	if k < 0 {
		return &recommend.InvalidRequestError{Field: "k", Reason: fmt.Sprintf("must be non-negative, got %d", k)}
	}
	return nil
}

// checkCtx returns ctx.Err() every ctxCheckInterval iterations.
func checkCtx(ctx context.Context, i int) error {
	if i%ctxCheckInterval != 0 {
		return nil
	}
	return ctx.Err()
}

// dot returns the inner product of two equal-length vectors.
func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// norm returns the Euclidean length of v.
func norm(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}

// clamp limits cosine scores to [lo, hi], absorbing rounding error.
func clamp(x, lo, hi float64) float64 {
	switch {
	case x < lo:
		return lo
	case x > hi:
		return hi
	default:
		return x
	}
}

// finite reports whether every element of v is a finite number.
func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Compile-time interface checks.
var (
	_ recommend.Source = (*ContentIndex)(nil)
	_ recommend.Source = (*CollaborativeModel)(nil)
)
