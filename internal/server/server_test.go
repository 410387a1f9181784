package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/sidediff/internal/cachemanager"
	"github.com/zjrosen/sidediff/internal/diff"
	"github.com/zjrosen/sidediff/internal/fold"
	"github.com/zjrosen/sidediff/internal/presentation"
)

type computeFunc func(ctx context.Context, req cachemanager.DiffRequest) (diff.Result, error)

func (f computeFunc) Compute(ctx context.Context, req cachemanager.DiffRequest) (diff.Result, error) {
	return f(ctx, req)
}

func newTestServer(t *testing.T, cfg Config) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	cfg.Registry = reg
	return New(cachemanager.NewDiffEngine(nil, time.Minute, false), cfg), reg
}

func post(t *testing.T, s *Server, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, strings.NewReader(body)))
	return rec
}

func TestDiff_Result(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	rec := post(t, s, "/v1/diff", `{"old":"a\nb","new":"a\nc","method":"diffWords","lines_offset":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var dto presentation.ResultDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	require.Len(t, dto.Lines, 2)
	assert.Equal(t, 3, dto.Lines[0].Left.LineNumber)
	assert.Equal(t, []int{1}, dto.DiffBlockStarts)
	assert.Equal(t, []presentation.TokenDTO{{Type: "added", Text: "c"}}, dto.Lines[1].Right.Tokens)
}

func TestDiff_DefaultsApply(t *testing.T) {
	var got diff.Options
	engine := computeFunc(func(_ context.Context, req cachemanager.DiffRequest) (diff.Result, error) {
		got = req.Options
		return diff.Result{}, nil
	})
	s := New(engine, Config{Defaults: diff.Options{CompareMethod: diff.MethodCSS, DisableWordDiff: true}})

	rec := post(t, s, "/v1/diff", `{"old":"","new":"","disable_word_diff":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, diff.Options{CompareMethod: diff.MethodCSS}, got)
}

func TestDiff_Plan(t *testing.T) {
	s, _ := newTestServer(t, Config{Fold: fold.Options{ContextLines: 1}})
	rec := post(t, s, "/v1/diff?format=yaml", `{"old":"a\nb\nc\nd\ne","new":"a\nb\nc\nd\nE","fold":{}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

	var plan presentation.PlanDTO
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &plan))
	require.Len(t, plan.Rows, 3)
	assert.Equal(t, "fold", plan.Rows[0].Kind)
	assert.Equal(t, 3, plan.Rows[0].Fold.Count)

	rec = post(t, s, "/v1/diff", `{"old":"a\nb\nc\nd\ne","new":"a\nb\nc\nd\nE","fold":{"context_lines":0,"expanded":[0]}}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	require.Len(t, plan.Rows, 5, "expanded fold shows its lines")
}

func TestDiff_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		substr string
	}{
		{name: "not json", target: "/v1/diff", body: `{`, status: http.StatusBadRequest, substr: "decoding request body"},
		{name: "non-string old", target: "/v1/diff", body: `{"old":1,"new":"x"}`, status: http.StatusBadRequest, substr: "old value is float64"},
		{name: "missing new", target: "/v1/diff", body: `{"old":"x"}`, status: http.StatusBadRequest, substr: "new value is <nil>"},
		{name: "bad format", target: "/v1/diff?format=xml", body: `{}`, status: http.StatusBadRequest, substr: "unknown output format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, Config{})
			rec := post(t, s, tt.target, tt.body)
			require.Equal(t, tt.status, rec.Code)

			var body presentation.ErrorDTO
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body.Error, tt.substr)
			assert.Equal(t, rec.Header().Get("X-Request-Id"), body.RequestID)
		})
	}
}

func TestDiff_InvalidUTF8InJSONString(t *testing.T) {
	// encoding/json replaces invalid bytes with U+FFFD, so the engine sees valid text.
	s, _ := newTestServer(t, Config{})
	rec := post(t, s, "/v1/diff", "{\"old\":\"\xff\",\"new\":\"\xff\"}")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDiff_BodyLimit(t *testing.T) {
	s, _ := newTestServer(t, Config{MaxBodyBytes: 32})
	rec := post(t, s, "/v1/diff", `{"old":"`+strings.Repeat("x", 64)+`","new":""}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceeds 32 bytes")
}

func TestDiff_EngineFailureIs500(t *testing.T) {
	engine := computeFunc(func(context.Context, cachemanager.DiffRequest) (diff.Result, error) {
		return diff.Result{}, errors.New("disk on fire")
	})
	s := New(engine, Config{})
	rec := post(t, s, "/v1/diff", `{"old":"a","new":"b"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestDiff_PanicRecovered(t *testing.T) {
	engine := computeFunc(func(context.Context, cachemanager.DiffRequest) (diff.Result, error) {
		panic("boom")
	})
	s := New(engine, Config{})
	rec := post(t, s, "/v1/diff", `{"old":"a","new":"b"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodPost, "/v1/diff", strings.NewReader(`{"old":1}`))
	req.Header.Set("X-Request-Id", "caller-id")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "caller-id", rec.Header().Get("X-Request-Id"))
	assert.Contains(t, rec.Body.String(), `"request_id": "caller-id"`)
}

func TestMethods(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/methods", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var methods []presentation.MethodDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &methods))
	assert.Equal(t, presentation.FromMethods(), methods)
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	s, reg := newTestServer(t, Config{})
	post(t, s, "/v1/diff", `{"old":"a\nb","new":"a\nc\nd"}`)
	post(t, s, "/v1/diff", `{"old":1,"new":"x"}`)

	families, err := reg.Gather()
	require.NoError(t, err)
	var computed uint64
	for _, mf := range families {
		if mf.GetName() == "sidediff_compute_duration_seconds" {
			computed = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(1), computed, "rejected bodies never reach the engine")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	text := rec.Body.String()
	assert.Contains(t, text, `sidediff_requests_total{status="200"} 1`)
	assert.Contains(t, text, `sidediff_requests_total{status="400"} 1`)
	assert.Contains(t, text, `sidediff_lines_total{side="old"} 2`)
	assert.Contains(t, text, `sidediff_lines_total{side="new"} 3`)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/v1/diff", "application/json",
		bytes.NewBufferString(`{"old":"x","new":"x"}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
