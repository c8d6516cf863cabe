// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelpick/internal/recommend"
)

// fakeEngine records calls and returns canned results.
type fakeEngine struct {
	mu sync.Mutex

	ready   bool
	titles  []string
	resp    *recommend.Response
	similar []recommend.Recommendation
	status  recommend.Status
	err     error

	lastRequest recommend.Request
	lastAlg     recommend.Algorithm
	lastTitle   string
	lastK       int
	lastQuery   string
	lastLimit   int
	listCalls   int
	searchCalls int
}

func (f *fakeEngine) Recommend(_ context.Context, req recommend.Request) (*recommend.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeEngine) SimilarTo(_ context.Context, alg recommend.Algorithm, title string, k int) ([]recommend.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAlg, f.lastTitle, f.lastK = alg, title, k
	if f.err != nil {
		return nil, f.err
	}
	return f.similar, nil
}

func (f *fakeEngine) ListTitles() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.titles, nil
}

func (f *fakeEngine) SearchTitles(query string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	f.lastQuery, f.lastLimit = query, limit
	if f.err != nil {
		return nil, f.err
	}
	return f.titles, nil
}

func (f *fakeEngine) Ready() bool {
	return f.ready
}

func (f *fakeEngine) Status() recommend.Status {
	return f.status
}

// fakeTrigger returns err from every trigger.
type fakeTrigger struct {
	err   error
	calls int
}

func (f *fakeTrigger) TriggerRebuild(context.Context) error {
	f.calls++
	return f.err
}

// envelope mirrors APIResponse with a raw data payload for assertions.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func newTestServer(engine Recommender, trigger RebuildTrigger) http.Handler {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	return NewRouter(NewHandler(engine, trigger), NewChiMiddleware(cfg), nil).SetupChi()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthLive(t *testing.T) {
	h := newTestServer(&fakeEngine{}, nil)
	rec := do(t, h, http.MethodGet, "/api/v1/health/live", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Meta == nil || env.Meta.RequestID == "" {
		t.Errorf("unexpected envelope: %s", rec.Body.String())
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		wantStatus int
		wantCode   string
	}{
		{name: "ready", ready: true, wantStatus: http.StatusOK},
		{name: "not ready", ready: false, wantStatus: http.StatusServiceUnavailable, wantCode: ErrCodeNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{ready: tt.ready, status: recommend.Status{Ready: tt.ready, Version: 3, Algorithms: []string{"content"}}}
			rec := do(t, newTestServer(engine, nil), http.MethodGet, "/api/v1/health/ready", "")

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			env := decodeEnvelope(t, rec)
			if tt.wantCode == "" {
				if !env.Success {
					t.Errorf("success = false, body %s", rec.Body.String())
				}
				return
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}

func TestRecommend_Success(t *testing.T) {
	engine := &fakeEngine{
		ready: true,
		resp: &recommend.Response{
			Items:     []recommend.Recommendation{{MovieID: 4, Title: "Heat (1995)", Score: 1.5, SeedHits: 2}},
			Algorithm: "collaborative",
			TopN:      5,
		},
	}
	h := newTestServer(engine, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations",
		strings.NewReader(`{"seeds":["A (1990)","B (1991)","C (1992)"],"top_n":5,"algorithm":"collaborative"}`))
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	got := engine.lastRequest
	if got.Algorithm != recommend.Collaborative || got.TopN != 5 || len(got.Seeds) != 3 || got.Seeds[2] != "C (1992)" {
		t.Errorf("engine request = %+v", got)
	}
	if got.RequestID != "req-123" {
		t.Errorf("request id = %q, want req-123", got.RequestID)
	}

	env := decodeEnvelope(t, rec)
	var resp recommend.Response
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Title != "Heat (1995)" {
		t.Errorf("items = %+v", resp.Items)
	}
	if env.Meta.RequestID != "req-123" {
		t.Errorf("meta request id = %q", env.Meta.RequestID)
	}
}

func TestRecommend_DefaultAlgorithm(t *testing.T) {
	engine := &fakeEngine{ready: true, resp: &recommend.Response{}}
	rec := do(t, newTestServer(engine, nil), http.MethodPost, "/api/v1/recommendations", `{"seeds":["A","B","C"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if engine.lastRequest.Algorithm != recommend.ContentBased || engine.lastRequest.TopN != 0 {
		t.Errorf("engine request = %+v, want content with default size", engine.lastRequest)
	}
}

func TestRecommend_EngineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "unknown movie", err: &recommend.UnknownMovieError{Title: "Nope"}, wantStatus: http.StatusUnprocessableEntity, wantCode: ErrCodeUnknownMovie},
		{name: "insufficient data", err: &recommend.InsufficientDataError{MovieID: 1, Ratings: 0, Required: 1}, wantStatus: http.StatusUnprocessableEntity, wantCode: ErrCodeInsufficientData},
		{name: "model error", err: &recommend.ModelError{Op: "select", Err: errors.New("nan")}, wantStatus: http.StatusInternalServerError, wantCode: ErrCodeModelError},
		{name: "untyped error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: ErrCodeModelError},
		{name: "not ready", err: recommend.ErrNotReady, wantStatus: http.StatusServiceUnavailable, wantCode: ErrCodeNotReady},
		{name: "deadline", err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout, wantCode: ErrCodeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{ready: true, err: tt.err}
			rec := do(t, newTestServer(engine, nil), http.MethodPost, "/api/v1/recommendations", `{"seeds":["A","B","C"]}`)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			env := decodeEnvelope(t, rec)
			if env.Success || env.Error == nil {
				t.Fatalf("expected error envelope, got %s", rec.Body.String())
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", env.Error.Code, tt.wantCode)
			}
			if env.Error.Message != GenericFailureMessage {
				t.Errorf("message = %q, want the generic failure message", env.Error.Message)
			}
			if env.Error.Details != nil {
				t.Errorf("details = %v, want none", env.Error.Details)
			}
		})
	}
}

func TestRecommend_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{name: "empty body", body: "", wantCode: ErrCodeBadRequest},
		{name: "invalid json", body: `{"seeds":`, wantCode: ErrCodeBadRequest},
		{name: "unknown field", body: `{"seeds":["A","B","C"],"limit":3}`, wantCode: ErrCodeBadRequest},
		{name: "trailing object", body: `{"seeds":["A","B","C"]}{}`, wantCode: ErrCodeBadRequest},
		{name: "two seeds", body: `{"seeds":["A","B"]}`, wantCode: ErrCodeValidationFailed},
		{name: "four seeds", body: `{"seeds":["A","B","C","D"]}`, wantCode: ErrCodeValidationFailed},
		{name: "negative top_n", body: `{"seeds":["A","B","C"],"top_n":-2}`, wantCode: ErrCodeValidationFailed},
		{name: "unknown algorithm", body: `{"seeds":["A","B","C"],"algorithm":"popularity"}`, wantCode: ErrCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{ready: true, resp: &recommend.Response{}}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			newTestServer(engine, nil).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
			}
			env := decodeEnvelope(t, rec)
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
			if engine.lastRequest.Seeds != nil {
				t.Error("engine should not be called for a bad request")
			}
		})
	}
}

func TestRecommend_OversizedBody(t *testing.T) {
	body := fmt.Sprintf(`{"seeds":["%s","B","C"]}`, strings.Repeat("x", maxRequestBodyBytes))
	rec := do(t, newTestServer(&fakeEngine{ready: true}, nil), http.MethodPost, "/api/v1/recommendations", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSimilar(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		err        error
		wantStatus int
		wantCode   string
		wantAlg    recommend.Algorithm
		wantK      int
	}{
		{name: "content default", target: "/api/v1/movies/similar?title=Heat+(1995)", wantStatus: http.StatusOK, wantAlg: recommend.ContentBased},
		{name: "collaborative with k", target: "/api/v1/movies/similar?title=Heat+(1995)&algorithm=cf&k=7", wantStatus: http.StatusOK, wantAlg: recommend.Collaborative, wantK: 7},
		{name: "missing title", target: "/api/v1/movies/similar", wantStatus: http.StatusBadRequest, wantCode: ErrCodeValidationFailed},
		{name: "non-numeric k", target: "/api/v1/movies/similar?title=Heat&k=ten", wantStatus: http.StatusBadRequest, wantCode: ErrCodeBadRequest},
		{name: "negative k", target: "/api/v1/movies/similar?title=Heat&k=-1", wantStatus: http.StatusBadRequest, wantCode: ErrCodeValidationFailed},
		{name: "bad algorithm", target: "/api/v1/movies/similar?title=Heat&algorithm=random", wantStatus: http.StatusBadRequest, wantCode: ErrCodeInvalidRequest},
		{name: "unknown title", target: "/api/v1/movies/similar?title=Nope", err: &recommend.UnknownMovieError{Title: "Nope"}, wantStatus: http.StatusUnprocessableEntity, wantCode: ErrCodeUnknownMovie},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{
				ready:   true,
				err:     tt.err,
				similar: []recommend.Recommendation{{MovieID: 2, Title: "Casino (1995)", Score: 0.8, SeedHits: 1}},
			}
			rec := do(t, newTestServer(engine, nil), http.MethodGet, tt.target, "")

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			env := decodeEnvelope(t, rec)
			if tt.wantCode != "" {
				if env.Error == nil || env.Error.Code != tt.wantCode {
					t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
				}
				return
			}
			if engine.lastAlg != tt.wantAlg || engine.lastK != tt.wantK || engine.lastTitle != "Heat (1995)" {
				t.Errorf("engine call = %v/%q/%d", engine.lastAlg, engine.lastTitle, engine.lastK)
			}
			var data struct {
				Algorithm string                     `json:"algorithm"`
				Items     []recommend.Recommendation `json:"items"`
			}
			if err := json.Unmarshal(env.Data, &data); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if data.Algorithm != tt.wantAlg.String() || len(data.Items) != 1 {
				t.Errorf("data = %+v", data)
			}
		})
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantList   int
		wantSearch int
		wantQuery  string
		wantLimit  int
	}{
		{name: "all titles", target: "/api/v1/titles", wantStatus: http.StatusOK, wantList: 1},
		{name: "search", target: "/api/v1/titles?q=heat", wantStatus: http.StatusOK, wantSearch: 1, wantQuery: "heat"},
		{name: "limited", target: "/api/v1/titles?limit=2", wantStatus: http.StatusOK, wantSearch: 1, wantLimit: 2},
		{name: "bad limit", target: "/api/v1/titles?limit=x", wantStatus: http.StatusBadRequest},
		{name: "negative limit", target: "/api/v1/titles?limit=-3", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{ready: true, titles: []string{"Heat (1995)", "Casino (1995)"}}
			rec := do(t, newTestServer(engine, nil), http.MethodGet, tt.target, "")

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if engine.listCalls != tt.wantList || engine.searchCalls != tt.wantSearch {
				t.Errorf("list/search calls = %d/%d, want %d/%d", engine.listCalls, engine.searchCalls, tt.wantList, tt.wantSearch)
			}
			if tt.wantSearch > 0 && (engine.lastQuery != tt.wantQuery || engine.lastLimit != tt.wantLimit) {
				t.Errorf("search(%q, %d), want (%q, %d)", engine.lastQuery, engine.lastLimit, tt.wantQuery, tt.wantLimit)
			}
		})
	}
}

func TestTitles_NotReady(t *testing.T) {
	engine := &fakeEngine{err: recommend.ErrNotReady}
	rec := do(t, newTestServer(engine, nil), http.MethodGet, "/api/v1/titles", "")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	engine := &fakeEngine{status: recommend.Status{Ready: true, Version: 7, LastError: "previous failure"}}
	rec := do(t, newTestServer(engine, nil), http.MethodGet, "/api/v1/status", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var st recommend.Status
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Version != 7 || st.LastError != "previous failure" {
		t.Errorf("status = %+v", st)
	}
}

func TestRebuild(t *testing.T) {
	tests := []struct {
		name       string
		trigger    *fakeTrigger
		wantStatus int
		wantCode   string
	}{
		{name: "accepted", trigger: &fakeTrigger{}, wantStatus: http.StatusAccepted},
		{name: "throttled", trigger: &fakeTrigger{err: recommend.ErrRebuildThrottled}, wantStatus: http.StatusTooManyRequests, wantCode: ErrCodeRebuildThrottled},
		{name: "in progress", trigger: &fakeTrigger{err: recommend.ErrRebuildInProgress}, wantStatus: http.StatusConflict, wantCode: ErrCodeRebuildInProgress},
		{name: "no service", trigger: nil, wantStatus: http.StatusServiceUnavailable, wantCode: ErrCodeRebuildUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var trigger RebuildTrigger
			if tt.trigger != nil {
				trigger = tt.trigger
			}
			rec := do(t, newTestServer(&fakeEngine{ready: true}, trigger), http.MethodPost, "/api/v1/rebuild", "")

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			env := decodeEnvelope(t, rec)
			if tt.wantCode != "" && (env.Error == nil || env.Error.Code != tt.wantCode) {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
			if tt.trigger != nil && tt.trigger.calls != 1 {
				t.Errorf("trigger calls = %d, want 1", tt.trigger.calls)
			}
			if tt.wantStatus == http.StatusAccepted && !strings.Contains(string(env.Data), `"requested_by":"anonymous"`) {
				t.Errorf("data = %s, want anonymous requester without auth", env.Data)
			}
		})
	}
}
