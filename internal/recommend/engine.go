// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelpick/internal/cache"
)

// Builder produces a complete snapshot. It must not return a partially built
// snapshot: either every configured source is ready or an error is returned.
type Builder interface {
	Build(ctx context.Context, version int) (*Snapshot, error)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(ctx context.Context, version int) (*Snapshot, error)

// Build calls f.
func (f BuilderFunc) Build(ctx context.Context, version int) (*Snapshot, error) {
	return f(ctx, version)
}

// Engine owns the active snapshot and answers recommendation requests.
// It is safe for concurrent use.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	builder  Builder
	selector *Selector

	snapshot atomic.Pointer[Snapshot]

	// rebuildMu serialises rebuilds; readers never take it.
	rebuildMu sync.Mutex

	statusMu      sync.RWMutex
	rebuilding    bool
	lastRebuildAt time.Time
	lastDuration  time.Duration
	lastError     string

	rebuilds       atomic.Int64
	failedRebuilds atomic.Int64
	requestCount   atomic.Int64
	errorCount     atomic.Int64
	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64

	cache *cache.LRU[*Response]
}

// NewEngine creates an engine. It serves ErrNotReady until the first
// successful Rebuild.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, builder Builder, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if builder == nil {
		return nil, errors.New("builder is required")
	}

	e := &Engine{
		config:   cfg.Clone(),
		logger:   logger.With().Str("component", "recommend").Logger(),
		builder:  builder,
		selector: NewSelector(cfg.Selector),
	}
	if cfg.Cache.Enabled {
		e.cache = cache.NewLRU[*Response](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// Rebuild builds a new snapshot and atomically swaps it in. On failure the
// previous snapshot keeps serving. A concurrent call returns
// ErrRebuildInProgress without waiting.
func (e *Engine) Rebuild(ctx context.Context) error {
	if !e.rebuildMu.TryLock() {
		return ErrRebuildInProgress
	}
	defer e.rebuildMu.Unlock()

	version := 1
	if cur := e.snapshot.Load(); cur != nil {
		version = cur.Version + 1
	}

	start := time.Now()
	e.setRebuilding(true)
	e.logger.Info().Int("version", version).Msg("starting snapshot rebuild")

	buildCtx, cancel := context.WithTimeout(ctx, e.config.Build.Timeout)
	defer cancel()

	snap, err := e.builder.Build(buildCtx, version)
	if err == nil && (snap == nil || snap.Catalog == nil) {
		err = &ModelError{Op: "build", Err: errors.New("builder returned an incomplete snapshot")}
	}
	duration := time.Since(start)
	rebuildDuration.Observe(duration.Seconds())

	if err != nil {
		e.failedRebuilds.Add(1)
		rebuildsTotal.WithLabelValues("failure").Inc()
		e.finishRebuild(start, duration, err)
		e.logger.Error().
			Err(err).
			Str("kind", Kind(err)).
			Int("version", version).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("snapshot rebuild failed, keeping previous snapshot")
		return err
	}

	snap.Version = version
	if snap.BuiltAt.IsZero() {
		snap.BuiltAt = time.Now()
	}
	snap.Stats.BuildDurationMS = duration.Milliseconds()

	e.snapshot.Store(snap)
	if e.cache != nil {
		e.cache.Clear()
	}

	e.rebuilds.Add(1)
	rebuildsTotal.WithLabelValues("success").Inc()
	snapshotVersion.Set(float64(version))
	snapshotMovies.Set(float64(snap.Stats.Movies))
	snapshotEmbeddedMovies.Set(float64(snap.Stats.EmbeddedMovies))
	e.finishRebuild(start, duration, nil)

	e.logger.Info().
		Int("version", version).
		Int("movies", snap.Stats.Movies).
		Int("vocabulary", snap.Stats.Vocabulary).
		Int("ratings", snap.Stats.Ratings).
		Int("users", snap.Stats.Users).
		Int("embedded_movies", snap.Stats.EmbeddedMovies).
		Bool("model_restored", snap.Stats.ModelRestored).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("snapshot rebuild complete")

	return nil
}

func (e *Engine) setRebuilding(v bool) {
	e.statusMu.Lock()
	e.rebuilding = v
	e.statusMu.Unlock()
}

func (e *Engine) finishRebuild(start time.Time, duration time.Duration, err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.rebuilding = false
	e.lastRebuildAt = start
	e.lastDuration = duration
	if err != nil {
		e.lastError = err.Error()
	} else {
		e.lastError = ""
	}
}

// Recommend returns up to TopN movies for the request's three seeds.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	resp, err := e.recommend(ctx, req, start)

	outcome := "ok"
	if err != nil {
		outcome = Kind(err)
		e.errorCount.Add(1)
		e.logger.Warn().
			Err(err).
			Str("kind", outcome).
			Str("request_id", req.RequestID).
			Str("algorithm", req.Algorithm.String()).
			Strs("seeds", req.Seeds).
			Msg("recommendation failed")
	}
	recommendRequestsTotal.WithLabelValues(req.Algorithm.String(), outcome).Inc()
	recommendLatency.WithLabelValues(req.Algorithm.String()).Observe(time.Since(start).Seconds())

	return resp, err
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) recommend(ctx context.Context, req Request, start time.Time) (*Response, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}

	topN, err := e.normalizeTopN(req.TopN, "top_n")
	if err != nil {
		return nil, err
	}
	if len(req.Seeds) != SeedCount {
		return nil, &InvalidRequestError{Field: "seeds", Reason: fmt.Sprintf("must contain exactly %d titles, got %d", SeedCount, len(req.Seeds))}
	}

	key := cacheKey(snap.Version, req.Algorithm, topN, req.Seeds)
	if cached := e.lookupCache(key); cached != nil {
		cached.RequestID = req.RequestID
		cached.CacheHit = true
		cached.LatencyMS = time.Since(start).Milliseconds()
		cached.Timestamp = time.Now()
		return cached, nil
	}

	// Unknown seeds are reported before the source is consulted, so the
	// error does not depend on which sources the snapshot carries.
	seedMovies, err := ResolveSeeds(snap.Catalog, req.Seeds)
	if err != nil {
		return nil, err
	}

	src, err := snap.Source(req.Algorithm)
	if err != nil {
		return nil, err
	}

	items, err := e.selector.SelectResolved(ctx, snap.Catalog, src, seedMovies, topN)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Items:           items,
		Algorithm:       req.Algorithm.String(),
		Seeds:           append([]string(nil), req.Seeds...),
		TopN:            topN,
		SnapshotVersion: snap.Version,
		RequestID:       req.RequestID,
		LatencyMS:       time.Since(start).Milliseconds(),
		Timestamp:       time.Now(),
	}
	e.storeCache(key, resp)

	e.logger.Debug().
		Str("request_id", req.RequestID).
		Str("algorithm", resp.Algorithm).
		Int("returned", len(items)).
		Int64("latency_ms", resp.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// SimilarTo returns up to k neighbours of the titled movie under alg.
// k of zero selects Config.Limits.DefaultTopN.
func (e *Engine) SimilarTo(ctx context.Context, alg Algorithm, title string, k int) ([]Recommendation, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}

	k, err := e.normalizeTopN(k, "k")
	if err != nil {
		return nil, err
	}

	m, err := snap.Catalog.Resolve(title)
	if err != nil {
		return nil, &UnknownMovieError{Title: title}
	}

	src, err := snap.Source(alg)
	if err != nil {
		return nil, err
	}

	neighbors, err := src.SimilarTo(ctx, m.ID, k)
	if err != nil {
		err = annotateSeedError(err, m)
		e.logger.Warn().Err(err).Str("kind", Kind(err)).Str("title", title).Msg("similar lookup failed")
		return nil, err
	}

	out := make([]Recommendation, 0, len(neighbors))
	for _, n := range neighbors {
		nm, ok := snap.Catalog.Movie(n.MovieID)
		if !ok {
			return nil, &ModelError{Op: "similar", Err: fmt.Errorf("source returned movie %d not in catalog", n.MovieID)}
		}
		out = append(out, Recommendation{MovieID: n.MovieID, Title: nm.Title, Score: n.Score, SeedHits: 1})
	}
	return out, nil
}

// ListTitles returns every catalog title in stable order.
func (e *Engine) ListTitles() ([]string, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap.Catalog.ListTitles(), nil
}

// SearchTitles returns up to limit titles containing query.
func (e *Engine) SearchTitles(query string, limit int) ([]string, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap.Catalog.Search(query, limit), nil
}

// Ready reports whether a snapshot is being served.
func (e *Engine) Ready() bool {
	return e.snapshot.Load() != nil
}

// Snapshot returns the active snapshot, or nil before the first build.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Status returns engine health and statistics.
func (e *Engine) Status() Status {
	st := Status{
		Rebuilds:       e.rebuilds.Load(),
		FailedRebuilds: e.failedRebuilds.Load(),
		Requests:       e.requestCount.Load(),
		Errors:         e.errorCount.Load(),
		CacheHits:      e.cacheHits.Load(),
		CacheMisses:    e.cacheMisses.Load(),
		Algorithms:     []string{},
	}
	if e.cache != nil {
		st.CacheEntries = e.cache.Len()
	}

	if snap := e.snapshot.Load(); snap != nil {
		st.Ready = true
		st.Version = snap.Version
		st.BuiltAt = snap.BuiltAt
		st.Stats = snap.Stats
		for _, alg := range Algorithms() {
			if src, ok := snap.Sources[alg]; ok && src != nil {
				st.Algorithms = append(st.Algorithms, alg.String())
			}
		}
	}

	e.statusMu.RLock()
	st.Rebuilding = e.rebuilding
	st.LastRebuildAt = e.lastRebuildAt
	st.LastRebuildDurationMS = e.lastDuration.Milliseconds()
	st.LastError = e.lastError
	e.statusMu.RUnlock()

	return st
}

func (e *Engine) normalizeTopN(n int, field string) (int, error) {
	switch {
	case n == 0:
		return e.config.Limits.DefaultTopN, nil
	case n < 0:
		return 0, &InvalidRequestError{Field: field, Reason: fmt.Sprintf("must be positive, got %d", n)}
	case n > e.config.Limits.MaxTopN:
		return e.config.Limits.MaxTopN, nil
	default:
		return n, nil
	}
}

// cacheKey identifies a result by snapshot version, algorithm, size and
// ordered seeds.
func cacheKey(version int, alg Algorithm, topN int, seeds []string) string {
	return fmt.Sprintf("v%d|%s|%d|%s", version, alg, topN, strings.Join(seeds, "\x1f"))
}

// lookupCache returns a copy of the cached response so callers may mutate it.
func (e *Engine) lookupCache(key string) *Response {
	if e.cache == nil {
		return nil
	}
	resp, ok := e.cache.Get(key)
	if !ok {
		e.cacheMisses.Add(1)
		recommendCacheLookups.WithLabelValues("miss").Inc()
		return nil
	}
	e.cacheHits.Add(1)
	recommendCacheLookups.WithLabelValues("hit").Inc()
	return cloneResponse(resp)
}

// storeCache sweeps expired entries before a full cache would evict a live
// one.
func (e *Engine) storeCache(key string, resp *Response) {
	if e.cache == nil {
		return
	}
	if e.cache.Len() >= e.config.Cache.MaxEntries {
		if swept := e.cache.CleanupExpired(); swept > 0 {
			e.logger.Debug().Int("swept", swept).Msg("expired cache entries removed")
		}
	}
	e.cache.Add(key, cloneResponse(resp))
}

func cloneResponse(resp *Response) *Response {
	cp := *resp
	cp.Items = make([]Recommendation, len(resp.Items))
	copy(cp.Items, resp.Items)
	cp.Seeds = make([]string, len(resp.Seeds))
	copy(cp.Seeds, resp.Seeds)
	return &cp
}
