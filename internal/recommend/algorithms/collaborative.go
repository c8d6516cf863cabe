// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package algorithms

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelpick/internal/catalog"
	"github.com/tomtom215/reelpick/internal/recommend"
)

// initScale is the standard deviation of the initial item factors.
const initScale = 0.1

// ALSConfig contains configuration for the collaborative model.
type ALSConfig struct {
	// Factors is the dimension of the latent factor vectors.
	// Default: 32.
	Factors int `json:"factors"`

	// Iterations is the number of alternating user/item passes.
	// Default: 12.
	Iterations int `json:"iterations"`

	// Lambda is the L2 regularization strength. Each row is penalized by
	// Lambda times its number of ratings (weighted-λ regularization).
	// Default: 0.05.
	Lambda float64 `json:"lambda"`

	// Seed seeds the item factor initialization.
	// Default: 42.
	Seed int64 `json:"seed"`

	// Workers is the number of goroutines solving rows in parallel.
	// Default: 4.
	Workers int `json:"workers"`

	// MinRatings is the minimum number of ratings a movie needs to be
	// embedded. Movies below it are cold-start.
	// Default: 1.
	MinRatings int `json:"min_ratings"`
}

// DefaultALSConfig returns default collaborative model configuration.
func DefaultALSConfig() ALSConfig {
	return ALSConfig{
		Factors:    32,
		Iterations: 12,
		Lambda:     0.05,
		Seed:       42,
		Workers:    4,
		MinRatings: 1,
	}
}

// Validate checks the configuration for errors.
func (c ALSConfig) Validate() error {
	if c.Factors < 1 {
		return fmt.Errorf("collaborative.factors must be positive, got %d", c.Factors)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("collaborative.iterations must be positive, got %d", c.Iterations)
	}
	if math.IsNaN(c.Lambda) || math.IsInf(c.Lambda, 0) || c.Lambda <= 0 {
		return fmt.Errorf("collaborative.lambda must be a positive number, got %v", c.Lambda)
	}
	if c.Workers < 1 {
		return fmt.Errorf("collaborative.workers must be positive, got %d", c.Workers)
	}
	if c.MinRatings < 1 {
		return fmt.Errorf("collaborative.min_ratings must be positive, got %d", c.MinRatings)
	}
	return nil
}

// entry is one observed rating in a row, centred on the global mean.
type entry struct {
	index int32
	value float64
}

// CollaborativeModel is the ratings embedding model.
//
// It learns user and movie factors with explicit-feedback ALS, minimizing
//
//	Σ_observed (r_ui − μ − x_uᵀy_i)² + λ (n_u‖x_u‖² + n_i‖y_i‖²)
//
// where μ is the global mean rating and n_u, n_i are row rating counts.
// Missing ratings are not treated as zeros. Only movie factors are kept
// after training; similarity is the cosine of two movie factors.
type CollaborativeModel struct {
	config       ALSConfig
	mean         float64
	users        int
	trainingRMSE float64

	ids          []int       // embedded movie identifiers, ascending
	pos          map[int]int // movie identifier -> position in ids
	factors      [][]float64
	norms        []float64
	ratingCounts map[int]int // every rated movie, embedded or not
}

// TrainCollaborative fits the model to ratings. The returned model is
// immutable. Training honours ctx between and within half-steps.
//
//nolint:gocyclo // training pipeline reads best as one function
func TrainCollaborative(ctx context.Context, ratings []catalog.Rating, cfg ALSConfig) (*CollaborativeModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &recommend.ModelError{Op: "train collaborative", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[int]int)
	for i := range ratings {
		counts[ratings[i].MovieID]++
	}

	var ids []int
	for id, n := range counts {
		if n >= cfg.MinRatings {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	itemPos := make(map[int]int, len(ids))
	for i, id := range ids {
		itemPos[id] = i
	}

	kept := make([]catalog.Rating, 0, len(ratings))
	for i := range ratings {
		if _, ok := itemPos[ratings[i].MovieID]; ok {
			kept = append(kept, ratings[i])
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].UserID != kept[j].UserID {
			return kept[i].UserID < kept[j].UserID
		}
		return kept[i].MovieID < kept[j].MovieID
	})

	model := &CollaborativeModel{
		config:       cfg,
		ids:          ids,
		pos:          itemPos,
		ratingCounts: counts,
	}
	if len(kept) == 0 {
		model.factors = [][]float64{}
		model.norms = []float64{}
		return model, nil
	}

	var sum float64
	for i := range kept {
		sum += kept[i].Score
	}
	model.mean = sum / float64(len(kept))

	// Rows are filled in (user, movie) order, so every row is sorted by
	// the index of its counterpart.
	var userRows [][]entry
	itemRows := make([][]entry, len(ids))
	lastUser := 0
	for i := range kept {
		r := &kept[i]
		if len(userRows) == 0 || r.UserID != lastUser {
			userRows = append(userRows, nil)
			lastUser = r.UserID
		}
		u := len(userRows) - 1
		it := itemPos[r.MovieID]
		v := r.Score - model.mean
		userRows[u] = append(userRows[u], entry{index: int32(it), value: v}) //nolint:gosec // bounded by catalog size
		itemRows[it] = append(itemRows[it], entry{index: int32(u), value: v}) //nolint:gosec // bounded by user count
	}
	model.users = len(userRows)

	k := cfg.Factors
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible initialization, not security
	itemFactors := make([][]float64, len(ids))
	for i := range itemFactors {
		itemFactors[i] = make([]float64, k)
		for f := range itemFactors[i] {
			itemFactors[i][f] = rng.NormFloat64() * initScale
		}
	}
	userFactors := make([][]float64, len(userRows))
	for u := range userFactors {
		userFactors[u] = make([]float64, k)
	}

	for iter := 0; iter < cfg.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := solveHalf(ctx, userFactors, itemFactors, userRows, cfg); err != nil {
			return nil, err
		}
		if err := solveHalf(ctx, itemFactors, userFactors, itemRows, cfg); err != nil {
			return nil, err
		}
	}

	for u, x := range userFactors {
		if !finite(x) {
			return nil, &recommend.ModelError{Op: "train collaborative", Err: fmt.Errorf("non-finite factor for user row %d", u)}
		}
	}
	model.norms = make([]float64, len(ids))
	for i, y := range itemFactors {
		if !finite(y) {
			return nil, &recommend.ModelError{Op: "train collaborative", Err: fmt.Errorf("non-finite factor for movie %d", ids[i])}
		}
		model.norms[i] = norm(y)
	}
	model.factors = itemFactors

	var sse float64
	for u, row := range userRows {
		for _, e := range row {
			d := e.value - dot(userFactors[u], itemFactors[e.index])
			sse += d * d
		}
	}
	model.trainingRMSE = math.Sqrt(sse / float64(len(kept)))

	return model, nil
}

// solveHalf recomputes every row of dst with fixed held constant. Rows are
// split into contiguous chunks, one goroutine per chunk.
func solveHalf(ctx context.Context, dst, fixed [][]float64, rows [][]entry, cfg ALSConfig) error {
	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(rows) + cfg.Workers - 1) / cfg.Workers

	for start := 0; start < len(rows); start += chunk {
		end := min(start+chunk, len(rows))
		g.Go(func() error {
			s := newSolver(cfg.Factors)
			for r := start; r < end; r++ {
				if (r-start)%64 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				s.solve(dst[r], rows[r], fixed, cfg.Lambda)
			}
			return nil
		})
	}
	return g.Wait()
}

// solver holds per-goroutine scratch space for the normal equations.
type solver struct {
	a [][]float64
	b []float64
	z []float64
}

func newSolver(k int) *solver {
	a := make([][]float64, k)
	for i := range a {
		a[i] = make([]float64, k)
	}
	return &solver{a: a, b: make([]float64, k), z: make([]float64, k)}
}

// solve writes into x the minimizer of Σ_row (v − xᵀy)² + λ n ‖x‖², i.e.
// the solution of (Σ y yᵀ + λ n I) x = Σ v y.
func (s *solver) solve(x []float64, row []entry, fixed [][]float64, lambda float64) {
	k := len(x)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			s.a[i][j] = 0
		}
		s.b[i] = 0
	}

	for _, e := range row {
		y := fixed[e.index]
		for i := 0; i < k; i++ {
			for j := 0; j <= i; j++ {
				s.a[i][j] += y[i] * y[j]
			}
			s.b[i] += e.value * y[i]
		}
	}

	reg := lambda * float64(len(row))
	for i := 0; i < k; i++ {
		s.a[i][i] += reg
	}

	choleskySolve(s.a, s.b, s.z, x)
}

// choleskySolve solves A x = b for symmetric positive definite A, reading
// only the lower triangle of A and overwriting it with the factor L.
// z is scratch of length n.
//
//nolint:gocritic // A, L follow standard linear algebra notation
func choleskySolve(A [][]float64, b, z, x []float64) {
	n := len(b)

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := A[i][j]
			for p := 0; p < j; p++ {
				sum -= A[i][p] * A[j][p]
			}
			if i == j {
				if sum <= 0 {
					// Not positive definite; nudge the pivot.
					sum = 1e-10
				}
				A[i][i] = math.Sqrt(sum)
			} else {
				A[i][j] = sum / A[j][j]
			}
		}
	}

	// L z = b
	for i := 0; i < n; i++ {
		sum := b[i]
		for j := 0; j < i; j++ {
			sum -= A[i][j] * z[j]
		}
		z[i] = sum / A[i][i]
	}

	// Lᵀ x = z
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for j := i + 1; j < n; j++ {
			sum -= A[j][i] * x[j]
		}
		x[i] = sum / A[i][i]
	}
}

// Name returns the source identifier.
func (m *CollaborativeModel) Name() string {
	return CollaborativeName
}

// Config returns the training configuration.
func (m *CollaborativeModel) Config() ALSConfig {
	return m.config
}

// Embedded returns the number of movies with a factor vector.
func (m *CollaborativeModel) Embedded() int {
	return len(m.ids)
}

// Users returns the number of users seen in training.
func (m *CollaborativeModel) Users() int {
	return m.users
}

// Mean returns the global mean rating.
func (m *CollaborativeModel) Mean() float64 {
	return m.mean
}

// TrainingRMSE returns the root mean squared error on the training ratings.
func (m *CollaborativeModel) TrainingRMSE() float64 {
	return m.trainingRMSE
}

// Ratings returns how many ratings movieID had in the training corpus.
func (m *CollaborativeModel) Ratings(movieID int) int {
	return m.ratingCounts[movieID]
}

// Factor returns a copy of the factor vector of movieID.
func (m *CollaborativeModel) Factor(movieID int) ([]float64, bool) {
	p, ok := m.pos[movieID]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(m.factors[p]))
	copy(out, m.factors[p])
	return out, true
}

// SimilarTo returns the k embedded movies closest to movieID by cosine
// similarity of their factors. The result size is min(k, Embedded()-1).
// A movie below MinRatings yields InsufficientDataError. An embedded movie
// whose factor vector is zero yields ModelError.
func (m *CollaborativeModel) SimilarTo(ctx context.Context, movieID, k int) ([]recommend.Neighbor, error) {
	if err := checkK(k); err != nil {
		return nil, err
	}
	p, ok := m.pos[movieID]
	if !ok {
		return nil, &recommend.InsufficientDataError{
			MovieID:  movieID,
			Ratings:  m.ratingCounts[movieID],
			Required: m.config.MinRatings,
		}
	}
	if m.norms[p] == 0 {
		return nil, &recommend.ModelError{
			Op:  "collaborative similar",
			Err: fmt.Errorf("movie %d has a zero factor vector after training on %d ratings", movieID, m.ratingCounts[movieID]),
		}
	}

	query, qn := m.factors[p], m.norms[p]
	best := newTopK(min(k, len(m.ids)-1))
	for i, y := range m.factors {
		if err := checkCtx(ctx, i); err != nil {
			return nil, err
		}
		if i == p {
			continue
		}
		var score float64
		if m.norms[i] > 0 {
			score = clamp(dot(query, y)/(qn*m.norms[i]), -1, 1)
		}
		best.offer(recommend.Neighbor{MovieID: m.ids[i], Score: score})
	}
	return best.result(), nil
}

// CollaborativeState is the serializable form of a trained model.
type CollaborativeState struct {
	Config       ALSConfig
	Mean         float64
	Users        int
	TrainingRMSE float64
	MovieIDs     []int
	Factors      [][]float64
	RatingCounts map[int]int
}

// State returns a deep copy of the model's persistent state.
func (m *CollaborativeModel) State() *CollaborativeState {
	s := &CollaborativeState{
		Config:       m.config,
		Mean:         m.mean,
		Users:        m.users,
		TrainingRMSE: m.trainingRMSE,
		MovieIDs:     append([]int(nil), m.ids...),
		Factors:      make([][]float64, len(m.factors)),
		RatingCounts: make(map[int]int, len(m.ratingCounts)),
	}
	for i, f := range m.factors {
		s.Factors[i] = append([]float64(nil), f...)
	}
	for id, n := range m.ratingCounts {
		s.RatingCounts[id] = n
	}
	return s
}

// RestoreCollaborative rebuilds a model from saved state after checking
// that it is internally consistent.
func RestoreCollaborative(s *CollaborativeState) (*CollaborativeModel, error) {
	op := "restore collaborative"
	if s == nil {
		return nil, &recommend.ModelError{Op: op, Err: fmt.Errorf("nil state")}
	}
	if err := s.Config.Validate(); err != nil {
		return nil, &recommend.ModelError{Op: op, Err: err}
	}
	if len(s.MovieIDs) != len(s.Factors) {
		return nil, &recommend.ModelError{Op: op, Err: fmt.Errorf("%d movie ids but %d factor rows", len(s.MovieIDs), len(s.Factors))}
	}

	m := &CollaborativeModel{
		config:       s.Config,
		mean:         s.Mean,
		users:        s.Users,
		trainingRMSE: s.TrainingRMSE,
		ids:          make([]int, len(s.MovieIDs)),
		pos:          make(map[int]int, len(s.MovieIDs)),
		factors:      make([][]float64, len(s.Factors)),
		norms:        make([]float64, len(s.Factors)),
		ratingCounts: make(map[int]int, len(s.RatingCounts)),
	}
	for i, id := range s.MovieIDs {
		if i > 0 && id <= s.MovieIDs[i-1] {
			return nil, &recommend.ModelError{Op: op, Err: fmt.Errorf("movie ids not strictly ascending at %d", id)}
		}
		f := s.Factors[i]
		if len(f) != s.Config.Factors || !finite(f) {
			return nil, &recommend.ModelError{Op: op, Err: fmt.Errorf("invalid factor row for movie %d", id)}
		}
		m.ids[i] = id
		m.pos[id] = i
		m.factors[i] = append([]float64(nil), f...)
		m.norms[i] = norm(f)
	}
	for id, n := range s.RatingCounts {
		m.ratingCounts[id] = n
	}
	return m, nil
}
