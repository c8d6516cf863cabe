// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// mockBuilder hands out snapshots built around fixed sources.
type mockBuilder struct {
	t       *testing.T
	content Source
	collab  Source
	err     error
	calls   atomic.Int32

	// block, when set, holds Build until it is closed or ctx ends.
	block chan struct{}
}

func (m *mockBuilder) Build(ctx context.Context, version int) (*Snapshot, error) {
	m.calls.Add(1)
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	sources := map[Algorithm]Source{ContentBased: m.content}
	if m.collab != nil {
		sources[Collaborative] = m.collab
	}
	cat := testCatalog(m.t)
	return &Snapshot{
		Catalog: cat,
		Sources: sources,
		Stats:   BuildStats{Movies: cat.Len()},
	}, nil
}

func newTestEngine(t *testing.T, b Builder, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	e, err := NewEngine(cfg, b, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func readyEngine(t *testing.T, mutate func(*Config)) (*Engine, *mockBuilder) {
	t.Helper()
	b := &mockBuilder{t: t, content: fiveMovieSource()}
	e := newTestEngine(t, b, mutate)
	if err := e.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	return e, b
}

func TestNewEngine_Validation(t *testing.T) {
	b := &mockBuilder{t: t}

	if _, err := NewEngine(nil, b, zerolog.Nop()); err != nil {
		t.Errorf("NewEngine(nil config) error = %v, want defaults", err)
	}
	if _, err := NewEngine(DefaultConfig(), nil, zerolog.Nop()); err == nil {
		t.Error("NewEngine(nil builder) succeeded")
	}

	bad := DefaultConfig()
	bad.Limits.DefaultTopN = 0
	if _, err := NewEngine(bad, b, zerolog.Nop()); err == nil {
		t.Error("NewEngine(invalid config) succeeded")
	}
}

func TestEngine_NotReadyBeforeRebuild(t *testing.T) {
	e := newTestEngine(t, &mockBuilder{t: t}, nil)

	if e.Ready() {
		t.Error("Ready() = true before first build")
	}
	if _, err := e.Recommend(context.Background(), Request{Seeds: []string{toyStory, jumanji, heat}}); !errors.Is(err, ErrNotReady) {
		t.Errorf("Recommend() error = %v, want ErrNotReady", err)
	}
	if _, err := e.SimilarTo(context.Background(), ContentBased, toyStory, 5); !errors.Is(err, ErrNotReady) {
		t.Errorf("SimilarTo() error = %v, want ErrNotReady", err)
	}
	if _, err := e.ListTitles(); !errors.Is(err, ErrNotReady) {
		t.Errorf("ListTitles() error = %v, want ErrNotReady", err)
	}
	if _, err := e.SearchTitles("a", 5); !errors.Is(err, ErrNotReady) {
		t.Errorf("SearchTitles() error = %v, want ErrNotReady", err)
	}
	if st := e.Status(); st.Ready || st.Version != 0 {
		t.Errorf("Status() = %+v", st)
	}
}

func TestEngine_Recommend(t *testing.T) {
	e, _ := readyEngine(t, nil)

	resp, err := e.Recommend(context.Background(), Request{
		Seeds:     []string{toyStory, jumanji, heat},
		TopN:      2,
		Algorithm: ContentBased,
		RequestID: "req-1",
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if want := []string{goldenEye, casino}; !reflect.DeepEqual(resp.Titles(), want) {
		t.Errorf("Titles() = %v, want %v", resp.Titles(), want)
	}
	if resp.SnapshotVersion != 1 || resp.RequestID != "req-1" || resp.CacheHit {
		t.Errorf("response metadata = %+v", resp)
	}
	if resp.Algorithm != "content" || resp.TopN != 2 {
		t.Errorf("Algorithm/TopN = %q/%d", resp.Algorithm, resp.TopN)
	}
}

func TestEngine_RecommendCache(t *testing.T) {
	e, b := readyEngine(t, nil)
	src := b.content.(*mockSource)
	req := Request{Seeds: []string{toyStory, jumanji, heat}, TopN: 2}

	first, err := e.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	callsAfterFirst := len(src.calls)

	req.RequestID = "second"
	second, err := e.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !second.CacheHit {
		t.Error("second call not served from cache")
	}
	if second.RequestID != "second" {
		t.Errorf("cached RequestID = %q, want caller's", second.RequestID)
	}
	if len(src.calls) != callsAfterFirst {
		t.Error("cache hit still queried the source")
	}
	if !reflect.DeepEqual(first.Items, second.Items) {
		t.Errorf("cached items differ: %v vs %v", second.Items, first.Items)
	}

	// Mutating a returned response must not leak into the cache.
	second.Items[0].Title = "mutated"
	third, _ := e.Recommend(context.Background(), req)
	if third.Items[0].Title != goldenEye {
		t.Errorf("cache entry mutated through response: %q", third.Items[0].Title)
	}

	st := e.Status()
	if st.CacheHits != 2 || st.CacheMisses != 1 || st.Requests != 3 {
		t.Errorf("Status() counters = %+v", st)
	}
}

func TestEngine_CacheSweepsExpiredWhenFull(t *testing.T) {
	e, _ := readyEngine(t, func(c *Config) {
		c.Cache.MaxEntries = 2
		c.Cache.TTL = 20 * time.Millisecond
	})
	seeds := []string{toyStory, jumanji, heat}

	for _, topN := range []int{1, 2} {
		if _, err := e.Recommend(context.Background(), Request{Seeds: seeds, TopN: topN}); err != nil {
			t.Fatalf("Recommend(top %d) error = %v", topN, err)
		}
	}
	if got := e.Status().CacheEntries; got != 2 {
		t.Fatalf("CacheEntries = %d, want 2", got)
	}

	time.Sleep(50 * time.Millisecond)

	// Both earlier entries have expired and are swept before the new one
	// is added, rather than only the oldest being evicted.
	if _, err := e.Recommend(context.Background(), Request{Seeds: seeds, TopN: 3}); err != nil {
		t.Fatalf("Recommend(top 3) error = %v", err)
	}
	if got := e.Status().CacheEntries; got != 1 {
		t.Errorf("CacheEntries after sweep = %d, want 1", got)
	}
}

func TestEngine_CacheDisabled(t *testing.T) {
	e, _ := readyEngine(t, func(c *Config) { c.Cache.Enabled = false })
	req := Request{Seeds: []string{toyStory, jumanji, heat}, TopN: 2}

	for i := 0; i < 2; i++ {
		resp, err := e.Recommend(context.Background(), req)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if resp.CacheHit {
			t.Error("CacheHit with cache disabled")
		}
	}
}

func TestEngine_TopNNormalization(t *testing.T) {
	e, _ := readyEngine(t, func(c *Config) {
		c.Limits.DefaultTopN = 1
		c.Limits.MaxTopN = 5
	})
	seeds := []string{toyStory, jumanji, heat}

	tests := []struct {
		name     string
		topN     int
		wantTopN int
		wantErr  error
	}{
		{name: "default", topN: 0, wantTopN: 1},
		{name: "explicit", topN: 2, wantTopN: 2},
		{name: "capped", topN: 500, wantTopN: 5},
		{name: "negative", topN: -1, wantErr: ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.Recommend(context.Background(), Request{Seeds: seeds, TopN: tt.topN})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if resp.TopN != tt.wantTopN {
				t.Errorf("TopN = %d, want %d", resp.TopN, tt.wantTopN)
			}
			if len(resp.Items) > tt.wantTopN {
				t.Errorf("len(Items) = %d exceeds %d", len(resp.Items), tt.wantTopN)
			}
		})
	}
}

func TestEngine_RecommendErrors(t *testing.T) {
	e, _ := readyEngine(t, nil)

	tests := []struct {
		name     string
		req      Request
		wantErr  error
		wantKind string
	}{
		{
			name:     "unknown movie",
			req:      Request{Seeds: []string{toyStory, "NotAMovie", heat}},
			wantErr:  ErrUnknownMovie,
			wantKind: KindUnknownMovie,
		},
		{
			name:     "unknown movie without collaborative source",
			req:      Request{Seeds: []string{toyStory, "NotAMovie", heat}, Algorithm: Collaborative},
			wantErr:  ErrUnknownMovie,
			wantKind: KindUnknownMovie,
		},
		{
			name:     "too many seeds",
			req:      Request{Seeds: []string{toyStory, jumanji, heat, casino}},
			wantErr:  ErrInvalidRequest,
			wantKind: KindInvalidRequest,
		},
		{
			name:     "collaborative source missing",
			req:      Request{Seeds: []string{toyStory, jumanji, heat}, Algorithm: Collaborative},
			wantErr:  ErrSourceUnavailable,
			wantKind: KindModelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.Recommend(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if resp != nil {
				t.Errorf("response returned with error: %+v", resp)
			}
			if got := Kind(err); got != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", got, tt.wantKind)
			}
		})
	}

	if st := e.Status(); st.Errors != int64(len(tests)) {
		t.Errorf("Status().Errors = %d, want %d", st.Errors, len(tests))
	}
}

func TestEngine_ColdStartOnlyAffectsCollaborative(t *testing.T) {
	b := &mockBuilder{
		t:       t,
		content: fiveMovieSource(),
		collab: &mockSource{
			neighbors: map[int][]Neighbor{1: {{4, 0.5}}, 3: {{5, 0.5}}},
			errs:      map[int]error{2: &InsufficientDataError{MovieID: 2, Required: 1}},
		},
	}
	e := newTestEngine(t, b, nil)
	if err := e.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	seeds := []string{toyStory, jumanji, heat}

	_, err := e.Recommend(context.Background(), Request{Seeds: seeds, Algorithm: Collaborative})
	var ide *InsufficientDataError
	if !errors.As(err, &ide) || ide.Title != jumanji {
		t.Fatalf("collaborative error = %v, want InsufficientDataError for %q", err, jumanji)
	}

	if _, err := e.Recommend(context.Background(), Request{Seeds: seeds, Algorithm: ContentBased}); err != nil {
		t.Errorf("content-based error = %v, want success", err)
	}

	if got := e.Status().Algorithms; !reflect.DeepEqual(got, []string{"content", "collaborative"}) {
		t.Errorf("Status().Algorithms = %v", got)
	}
}

func TestEngine_SimilarTo(t *testing.T) {
	e, _ := readyEngine(t, nil)

	got, err := e.SimilarTo(context.Background(), ContentBased, toyStory, 2)
	if err != nil {
		t.Fatalf("SimilarTo() error = %v", err)
	}
	if want := []string{jumanji, heat}; !reflect.DeepEqual(titles(got), want) {
		t.Errorf("SimilarTo() = %v, want %v", titles(got), want)
	}

	if _, err := e.SimilarTo(context.Background(), ContentBased, "NotAMovie", 2); !errors.Is(err, ErrUnknownMovie) {
		t.Errorf("SimilarTo(unknown) error = %v", err)
	}
	if _, err := e.SimilarTo(context.Background(), ContentBased, toyStory, -3); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("SimilarTo(k<0) error = %v", err)
	}
}

func TestEngine_ListAndSearchTitles(t *testing.T) {
	e, _ := readyEngine(t, nil)

	all, err := e.ListTitles()
	if err != nil {
		t.Fatalf("ListTitles() error = %v", err)
	}
	if len(all) != 8 || all[0] != toyStory {
		t.Errorf("ListTitles() = %v", all)
	}

	found, err := e.SearchTitles("su", 0)
	if err != nil {
		t.Fatalf("SearchTitles() error = %v", err)
	}
	if !reflect.DeepEqual(found, []string{"Sudden Death"}) {
		t.Errorf("SearchTitles(su) = %v", found)
	}
}

func TestEngine_RebuildSwapsSnapshot(t *testing.T) {
	e, _ := readyEngine(t, nil)
	first := e.Snapshot()

	if err := e.Rebuild(context.Background()); err != nil {
		t.Fatalf("second Rebuild() error = %v", err)
	}
	second := e.Snapshot()

	if second == first {
		t.Error("snapshot pointer not swapped")
	}
	if first.Version != 1 || second.Version != 2 {
		t.Errorf("versions = %d, %d; want 1, 2", first.Version, second.Version)
	}
	if second.BuiltAt.IsZero() {
		t.Error("BuiltAt not set")
	}

	st := e.Status()
	if st.Version != 2 || st.Rebuilds != 2 || st.Rebuilding || st.LastError != "" {
		t.Errorf("Status() = %+v", st)
	}
}

func TestEngine_FailedRebuildKeepsPreviousSnapshot(t *testing.T) {
	e, b := readyEngine(t, nil)
	before := e.Snapshot()

	b.err = &ModelError{Op: "train", Err: errors.New("factorization diverged")}
	err := e.Rebuild(context.Background())
	if !errors.Is(err, ErrModel) {
		t.Fatalf("Rebuild() error = %v, want ErrModel", err)
	}

	if e.Snapshot() != before {
		t.Error("failed rebuild replaced the snapshot")
	}
	if _, err := e.Recommend(context.Background(), Request{Seeds: []string{toyStory, jumanji, heat}}); err != nil {
		t.Errorf("Recommend() after failed rebuild error = %v", err)
	}

	st := e.Status()
	if st.Version != 1 || st.FailedRebuilds != 1 || st.LastError == "" {
		t.Errorf("Status() = %+v", st)
	}

	// The next successful rebuild clears the error and continues numbering.
	b.err = nil
	if err := e.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if st := e.Status(); st.Version != 2 || st.LastError != "" {
		t.Errorf("Status() after recovery = %+v", st)
	}
}

func TestEngine_RebuildIncompleteSnapshot(t *testing.T) {
	b := BuilderFunc(func(context.Context, int) (*Snapshot, error) { return nil, nil })
	e := newTestEngine(t, b, nil)

	if err := e.Rebuild(context.Background()); !errors.Is(err, ErrModel) {
		t.Errorf("Rebuild() error = %v, want ErrModel", err)
	}
	if e.Ready() {
		t.Error("engine ready after incomplete build")
	}
}

func TestEngine_ConcurrentRebuild(t *testing.T) {
	b := &mockBuilder{t: t, content: fiveMovieSource(), block: make(chan struct{})}
	e := newTestEngine(t, b, nil)

	done := make(chan error, 1)
	go func() { done <- e.Rebuild(context.Background()) }()

	// Wait until the first rebuild is inside Build.
	deadline := time.After(5 * time.Second)
	for b.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("first rebuild never started")
		case <-time.After(time.Millisecond):
		}
	}

	if err := e.Rebuild(context.Background()); !errors.Is(err, ErrRebuildInProgress) {
		t.Errorf("concurrent Rebuild() error = %v, want ErrRebuildInProgress", err)
	}
	if !e.Status().Rebuilding {
		t.Error("Status().Rebuilding = false during build")
	}

	close(b.block)
	if err := <-done; err != nil {
		t.Fatalf("first Rebuild() error = %v", err)
	}
	if b.calls.Load() != 1 {
		t.Errorf("Build called %d times, want 1", b.calls.Load())
	}
}

func TestEngine_RebuildTimeout(t *testing.T) {
	b := &mockBuilder{t: t, content: fiveMovieSource(), block: make(chan struct{})}
	e := newTestEngine(t, b, func(c *Config) { c.Build.Timeout = 20 * time.Millisecond })

	err := e.Rebuild(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Rebuild() error = %v, want deadline exceeded", err)
	}
	if Kind(err) != KindCanceled {
		t.Errorf("Kind() = %q, want %q", Kind(err), KindCanceled)
	}
	if e.Ready() {
		t.Error("engine ready after timed out build")
	}
}

func TestEngine_Deterministic(t *testing.T) {
	e, _ := readyEngine(t, func(c *Config) { c.Cache.Enabled = false })
	req := Request{Seeds: []string{heat, toyStory, jumanji}, TopN: 3}

	first, err := e.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.Recommend(context.Background(), req)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if !reflect.DeepEqual(first.Items, again.Items) {
			t.Fatalf("run %d differs", i)
		}
	}
}
