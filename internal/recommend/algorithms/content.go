// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package algorithms

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tomtom215/reelpick/internal/catalog"
	"github.com/tomtom215/reelpick/internal/recommend"
)

// Token prefixes of the metadata vocabulary.
const (
	genrePrefix  = "genre:"
	tagPrefix    = "tag:"
	decadePrefix = "decade:"
)

// ContentConfig contains configuration for the metadata similarity index.
type ContentConfig struct {
	// GenreWeight is the raw weight of each genre token.
	// Default: 1.0.
	GenreWeight float64 `json:"genre_weight"`

	// TagWeight scales tag tokens as TagWeight * ln(1 + count).
	// Default: 0.5.
	TagWeight float64 `json:"tag_weight"`

	// DecadeWeight is the raw weight of the release decade token.
	// Default: 0.25.
	DecadeWeight float64 `json:"decade_weight"`
}

// DefaultContentConfig returns default content index configuration.
func DefaultContentConfig() ContentConfig {
	return ContentConfig{
		GenreWeight:  1.0,
		TagWeight:    0.5,
		DecadeWeight: 0.25,
	}
}

// Validate checks the configuration for errors.
func (c ContentConfig) Validate() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"genre_weight", c.GenreWeight},
		{"tag_weight", c.TagWeight},
		{"decade_weight", c.DecadeWeight},
	}
	var total float64
	for _, w := range weights {
		if math.IsNaN(w.value) || math.IsInf(w.value, 0) || w.value < 0 {
			return fmt.Errorf("content.%s must be a non-negative number, got %v", w.name, w.value)
		}
		total += w.value
	}
	if total == 0 {
		return fmt.Errorf("content weights must not all be zero")
	}
	return nil
}

// term is one non-zero vector component.
type term struct {
	index  int32
	weight float64
}

// ContentIndex is the metadata similarity index.
//
// Each movie is a vector over the sorted vocabulary of genre, tag and
// decade tokens. A token's weight is its raw weight times its inverse
// document frequency ln((1+M)/(1+df))+1, and each vector is L2-normalized.
// Movies with no tokens keep a zero vector and score 0 against everything.
type ContentIndex struct {
	config  ContentConfig
	vocab   []string
	ids     []int       // ascending movie identifiers
	pos     map[int]int // movie identifier -> position in ids
	vectors [][]term    // terms ascending by index
}

// NewContentIndex builds the index for every movie in cat.
func NewContentIndex(ctx context.Context, cat *catalog.Catalog, cfg ContentConfig) (*ContentIndex, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, &recommend.ModelError{Op: "build content index", Err: catalog.ErrEmptyCatalog}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &recommend.ModelError{Op: "build content index", Err: err}
	}

	movies := cat.Movies()
	raw := make([]map[string]float64, len(movies))
	df := make(map[string]int)

	for i := range movies {
		if err := checkCtx(ctx, i); err != nil {
			return nil, err
		}
		raw[i] = cfg.features(&movies[i])
		for token := range raw[i] {
			df[token]++
		}
	}

	vocab := make([]string, 0, len(df))
	for token := range df {
		vocab = append(vocab, token)
	}
	sort.Strings(vocab)

	idx := &ContentIndex{
		config:  cfg,
		vocab:   vocab,
		ids:     make([]int, len(movies)),
		pos:     make(map[int]int, len(movies)),
		vectors: make([][]term, len(movies)),
	}

	m := float64(len(movies))
	idf := make([]float64, len(vocab))
	for i, token := range vocab {
		idf[i] = math.Log((1+m)/(1+float64(df[token]))) + 1
	}

	for i := range movies {
		if err := checkCtx(ctx, i); err != nil {
			return nil, err
		}
		idx.ids[i] = movies[i].ID
		idx.pos[movies[i].ID] = i
		idx.vectors[i] = vectorize(raw[i], vocab, idf)
	}

	return idx, nil
}

// features returns the raw token weights of one movie. Tokens with zero
// weight are omitted.
func (c ContentConfig) features(m *catalog.Movie) map[string]float64 {
	out := make(map[string]float64, len(m.Genres)+len(m.Tags)+1)
	if c.GenreWeight > 0 {
		for _, g := range m.Genres {
			g = strings.ToLower(strings.TrimSpace(g))
			if g != "" {
				out[genrePrefix+g] = c.GenreWeight
			}
		}
	}
	if c.TagWeight > 0 {
		for _, t := range m.Tags {
			count := m.TagCounts[t]
			if count < 1 {
				count = 1
			}
			out[tagPrefix+t] = c.TagWeight * math.Log1p(float64(count))
		}
	}
	if c.DecadeWeight > 0 && m.Year > 0 {
		out[fmt.Sprintf("%s%ds", decadePrefix, m.Year/10*10)] = c.DecadeWeight
	}
	return out
}

// vectorize applies IDF and L2 normalization. Terms come out in ascending
// vocabulary order because both the vocabulary and the token walk are sorted.
func vectorize(raw map[string]float64, vocab []string, idf []float64) []term {
	if len(raw) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(raw))
	for token := range raw {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	terms := make([]term, 0, len(tokens))
	var sumSq float64
	for _, token := range tokens {
		i := sort.SearchStrings(vocab, token)
		w := raw[token] * idf[i]
		terms = append(terms, term{index: int32(i), weight: w}) //nolint:gosec // vocabulary is far below 2^31
		sumSq += w * w
	}

	if sumSq == 0 {
		return nil
	}
	n := math.Sqrt(sumSq)
	for i := range terms {
		terms[i].weight /= n
	}
	return terms
}

// Name returns the source identifier.
func (c *ContentIndex) Name() string {
	return ContentName
}

// Len returns the number of indexed movies.
func (c *ContentIndex) Len() int {
	return len(c.ids)
}

// VocabularySize returns the vector dimension.
func (c *ContentIndex) VocabularySize() int {
	return len(c.vocab)
}

// Vocabulary returns a copy of the sorted token vocabulary.
func (c *ContentIndex) Vocabulary() []string {
	out := make([]string, len(c.vocab))
	copy(out, c.vocab)
	return out
}

// Vector returns the non-zero components of a movie's vector keyed by token.
func (c *ContentIndex) Vector(movieID int) (map[string]float64, bool) {
	p, ok := c.pos[movieID]
	if !ok {
		return nil, false
	}
	out := make(map[string]float64, len(c.vectors[p]))
	for _, t := range c.vectors[p] {
		out[c.vocab[t.index]] = t.weight
	}
	return out, true
}

// Score returns the similarity of two indexed movies.
func (c *ContentIndex) Score(a, b int) (float64, error) {
	pa, ok := c.pos[a]
	if !ok {
		return 0, c.unknown(a)
	}
	pb, ok := c.pos[b]
	if !ok {
		return 0, c.unknown(b)
	}
	return cosineTerms(c.vectors[pa], c.vectors[pb]), nil
}

// SimilarTo returns the k movies whose metadata is most similar to movieID.
// The result size is min(k, Len()-1); zero-score movies fill the tail in
// identifier order.
func (c *ContentIndex) SimilarTo(ctx context.Context, movieID, k int) ([]recommend.Neighbor, error) {
	if err := checkK(k); err != nil {
		return nil, err
	}
	p, ok := c.pos[movieID]
	if !ok {
		return nil, c.unknown(movieID)
	}

	query := c.vectors[p]
	best := newTopK(min(k, len(c.ids)-1))
	for i, v := range c.vectors {
		if err := checkCtx(ctx, i); err != nil {
			return nil, err
		}
		if i == p {
			continue
		}
		best.offer(recommend.Neighbor{MovieID: c.ids[i], Score: cosineTerms(query, v)})
	}
	return best.result(), nil
}

func (c *ContentIndex) unknown(movieID int) error {
	return &recommend.ModelError{Op: "content similar", Err: fmt.Errorf("movie %d is not indexed", movieID)}
}

// cosineTerms is the dot product of two unit vectors, merged in index
// order so that cosineTerms(a, b) == cosineTerms(b, a) exactly.
func cosineTerms(a, b []term) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].index < b[j].index:
			i++
		case a[i].index > b[j].index:
			j++
		default:
			sum += a[i].weight * b[j].weight
			i++
			j++
		}
	}
	return clamp(sum, 0, 1)
}
