// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package builder runs the build phase: it loads the catalog and ratings,
// builds both similarity sources and returns an immutable snapshot.
//
// The collaborative model is the expensive part. When a model store is
// configured, a trained model is saved together with a fingerprint of its
// training input, and a later build whose input has the same fingerprint
// restores it instead of training again. Store calls go through a circuit
// breaker so an unhealthy store stops being consulted and builds fall back
// to training.
package builder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelpick/internal/catalog"
	"github.com/tomtom215/reelpick/internal/metrics"
	"github.com/tomtom215/reelpick/internal/recommend"
	"github.com/tomtom215/reelpick/internal/recommend/algorithms"
	"github.com/tomtom215/reelpick/internal/recommend/storage"
)

// ModelName is the store key of the collaborative model.
const ModelName = "collaborative"

// ModelStore persists trained models. *storage.Store implements it.
type ModelStore interface {
	Save(ctx context.Context, name string, version int, data any, meta storage.ModelMetadata) error
	Load(ctx context.Context, name string, version int, target any) (*storage.ModelMetadata, error)
	LatestVersion(ctx context.Context, name string) (int, bool, error)
	Prune(ctx context.Context, name string, keep int) (int, error)
}

// BreakerConfig configures the circuit breaker around the model store.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive store failures that
	// opens the breaker.
	// Default: 3.
	FailureThreshold uint32 `json:"failure_threshold"`

	// Timeout is how long the breaker stays open before a trial call.
	// Default: 5m.
	Timeout time.Duration `json:"timeout"`
}

// Config contains build phase configuration.
type Config struct {
	// MoviesPath is the movies.csv path. Required.
	MoviesPath string `json:"movies_path"`

	// TagsPath is the optional tags.csv path.
	TagsPath string `json:"tags_path"`

	// RatingsPath is the optional ratings.csv path. Without it the
	// snapshot has no collaborative source.
	RatingsPath string `json:"ratings_path"`

	// Catalog controls title uniqueness handling.
	Catalog catalog.Options `json:"catalog"`

	Content       algorithms.ContentConfig `json:"content"`
	Collaborative algorithms.ALSConfig     `json:"collaborative"`

	// RetainVersions is how many stored model versions are kept.
	// Default: 3.
	RetainVersions int `json:"retain_versions"`

	Breaker BreakerConfig `json:"breaker"`
}

// DefaultConfig returns default build configuration without data paths.
func DefaultConfig() Config {
	return Config{
		Content:        algorithms.DefaultContentConfig(),
		Collaborative:  algorithms.DefaultALSConfig(),
		RetainVersions: 3,
		Breaker: BreakerConfig{
			FailureThreshold: 3,
			Timeout:          5 * time.Minute,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MoviesPath == "" {
		return fmt.Errorf("data.movies_path is required")
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Collaborative.Validate(); err != nil {
		return err
	}
	if c.RetainVersions < 1 {
		return fmt.Errorf("storage.retain_versions must be positive, got %d", c.RetainVersions)
	}
	if c.Breaker.FailureThreshold < 1 {
		return fmt.Errorf("storage.breaker.failure_threshold must be positive, got %d", c.Breaker.FailureThreshold)
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("storage.breaker.timeout must be positive, got %v", c.Breaker.Timeout)
	}
	return nil
}

// Builder implements recommend.Builder.
type Builder struct {
	config  Config
	store   ModelStore
	breaker *gobreaker.CircuitBreaker[any]
	logger  zerolog.Logger
}

// New creates a builder. store may be nil, in which case the collaborative
// model is trained on every build.
//
//nolint:gocritic // cfg and logger passed by value are read once at construction
func New(cfg Config, store ModelStore, logger zerolog.Logger) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid build config: %w", err)
	}

	b := &Builder{
		config: cfg,
		store:  store,
		logger: logger.With().Str("component", "builder").Logger(),
	}

	b.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "model-store",
		MaxRequests: 1,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Breaker.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, storage.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Model store circuit breaker state changed")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})

	return b, nil
}

// BreakerState returns the model store breaker state.
func (b *Builder) BreakerState() gobreaker.State {
	return b.breaker.State()
}

// Build loads all inputs and builds a snapshot with the given version.
// Catalog and ratings load errors are returned as *catalog.LoadError.
func (b *Builder) Build(ctx context.Context, version int) (*recommend.Snapshot, error) {
	log := b.logger.With().Int("version", version).Logger()

	cat, err := catalog.Load(b.config.MoviesPath, b.config.TagsPath, b.config.Catalog)
	if err != nil {
		return nil, err
	}
	log.Info().Int("movies", cat.Len()).Msg("Catalog loaded")

	var (
		ratings      []catalog.Rating
		ratingsStats catalog.RatingsStats
	)
	if b.config.RatingsPath != "" {
		ratings, ratingsStats, err = catalog.LoadRatings(b.config.RatingsPath, cat)
		if err != nil {
			return nil, err
		}
		log.Info().
			Int("rows", ratingsStats.Rows).
			Int("kept", ratingsStats.Kept).
			Int("dropped_unknown_movie", ratingsStats.DroppedUnknownMovie).
			Int("users", ratingsStats.Users).
			Msg("Ratings loaded")
	}

	var (
		content *algorithms.ContentIndex
		collab  *algorithms.CollaborativeModel
		outcome modelOutcome
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		idx, err := algorithms.NewContentIndex(gctx, cat, b.config.Content)
		if err != nil {
			return err
		}
		content = idx
		log.Info().
			Int("vocabulary", idx.VocabularySize()).
			Dur("duration", time.Since(start)).
			Msg("Content index built")
		return nil
	})
	if b.config.RatingsPath != "" {
		g.Go(func() error {
			m, o, err := b.collaborative(gctx, ratings)
			if err != nil {
				return err
			}
			collab, outcome = m, o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &recommend.Snapshot{
		Version: version,
		Catalog: cat,
		Sources: map[recommend.Algorithm]recommend.Source{
			recommend.ContentBased: content,
		},
		Stats: recommend.BuildStats{
			Movies:         cat.Len(),
			Vocabulary:     content.VocabularySize(),
			Ratings:        ratingsStats.Kept,
			DroppedRatings: ratingsStats.DroppedUnknownMovie,
		},
	}
	if collab != nil {
		snap.Sources[recommend.Collaborative] = collab
		snap.Stats.Users = collab.Users()
		snap.Stats.EmbeddedMovies = collab.Embedded()
		snap.Stats.ModelRestored = outcome.restored
		snap.Stats.ModelVersion = outcome.version
		snap.Stats.CollaborativeActive = true
	}
	return snap, nil
}

// modelOutcome records where the collaborative model came from.
type modelOutcome struct {
	restored bool
	version  int
}

// collaborative restores the model from the store when the fingerprint
// matches, and otherwise trains, saves and prunes.
func (b *Builder) collaborative(ctx context.Context, ratings []catalog.Rating) (*algorithms.CollaborativeModel, modelOutcome, error) {
	fp := Fingerprint(ratings, b.config.Collaborative)
	log := b.logger.With().Str("fingerprint", fp[:12]).Logger()

	latest := 0
	if b.store != nil {
		m, version, err := b.restore(ctx, fp)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, modelOutcome{}, ctx.Err()
		case err != nil:
			log.Warn().Err(err).Msg("Model store unavailable, training")
		case m != nil:
			log.Info().
				Int("model_version", version).
				Int("embedded", m.Embedded()).
				Msg("Collaborative model restored")
			return m, modelOutcome{restored: true, version: version}, nil
		}
		latest = version
	}

	start := time.Now()
	m, err := algorithms.TrainCollaborative(ctx, ratings, b.config.Collaborative)
	if err != nil {
		return nil, modelOutcome{}, err
	}
	trainDuration := time.Since(start)
	log.Info().
		Int("embedded", m.Embedded()).
		Int("users", m.Users()).
		Float64("rmse", m.TrainingRMSE()).
		Dur("duration", trainDuration).
		Msg("Collaborative model trained")

	outcome := modelOutcome{}
	if b.store != nil {
		version := latest + 1
		if err := b.save(ctx, version, m, fp, len(ratings), start, trainDuration); err != nil {
			log.Warn().Err(err).Msg("Failed to save collaborative model")
		} else {
			outcome.version = version
		}
	}
	return m, outcome, nil
}

// restore loads the latest stored model if its fingerprint matches fp.
// It always reports the latest stored version, zero when nothing is
// stored, so a newly trained model can be saved after it.
func (b *Builder) restore(ctx context.Context, fp string) (*algorithms.CollaborativeModel, int, error) {
	res, err := b.breaker.Execute(func() (any, error) {
		v, ok, err := b.store.LatestVersion(ctx, ModelName)
		if err != nil || !ok {
			return 0, err
		}
		return v, nil
	})
	if err != nil {
		return nil, 0, err
	}
	latest, _ := res.(int) //nolint:errcheck // type is fixed above
	if latest == 0 {
		return nil, 0, nil
	}

	var state algorithms.CollaborativeState
	res, err = b.breaker.Execute(func() (any, error) {
		return b.store.Load(ctx, ModelName, latest, &state)
	})
	if err != nil {
		return nil, latest, err
	}
	meta, _ := res.(*storage.ModelMetadata) //nolint:errcheck // type is fixed by Load
	if meta == nil || meta.Fingerprint != fp {
		return nil, latest, nil
	}

	m, err := algorithms.RestoreCollaborative(&state)
	if err != nil {
		b.logger.Warn().Err(err).Int("model_version", latest).Msg("Stored model rejected")
		return nil, latest, nil
	}
	return m, latest, nil
}

func (b *Builder) save(ctx context.Context, version int, m *algorithms.CollaborativeModel, fp string, ratings int, trainedAt time.Time, took time.Duration) error {
	meta := storage.ModelMetadata{
		Fingerprint:        fp,
		TrainedAt:          trainedAt.UTC(),
		RatingCount:        ratings,
		MovieCount:         m.Embedded(),
		UserCount:          m.Users(),
		TrainingDurationMS: took.Milliseconds(),
	}
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.store.Save(ctx, ModelName, version, m.State(), meta)
	})
	if err != nil {
		return err
	}

	removed, err := b.breaker.Execute(func() (any, error) {
		return b.store.Prune(ctx, ModelName, b.config.RetainVersions)
	})
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	if n, _ := removed.(int); n > 0 { //nolint:errcheck // type is fixed by Prune
		b.logger.Debug().Int("removed", n).Msg("Pruned stored models")
	}
	return nil
}

// Fingerprint identifies a training run: the ratings in (user, movie)
// order plus every configuration field that affects the trained factors.
// The worker count is excluded because it does not change the result.
//
//nolint:gocritic // cfg is small and read-only
func Fingerprint(ratings []catalog.Rating, cfg algorithms.ALSConfig) string {
	sorted := make([]catalog.Rating, len(ratings))
	copy(sorted, ratings)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].UserID != sorted[j].UserID {
			return sorted[i].UserID < sorted[j].UserID
		}
		return sorted[i].MovieID < sorted[j].MovieID
	})

	h := sha256.New()
	fmt.Fprintf(h, "als factors=%d iterations=%d lambda=%x seed=%d min_ratings=%d\n",
		cfg.Factors, cfg.Iterations, math.Float64bits(cfg.Lambda), cfg.Seed, cfg.MinRatings)
	for i := range sorted {
		r := &sorted[i]
		fmt.Fprintf(h, "%d,%d,%x\n", r.UserID, r.MovieID, math.Float64bits(r.Score))
	}
	return hex.EncodeToString(h.Sum(nil))
}
