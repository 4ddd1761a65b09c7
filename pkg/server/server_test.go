package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/layoutmetrics/pkg/errors"
	"github.com/matzehuels/layoutmetrics/pkg/pipeline"
	"github.com/matzehuels/layoutmetrics/pkg/store"
)

const crossingDiagram = `{
  "name": "cross",
  "nodes": [{"id": "S"}, {"id": "A"}, {"id": "B"}, {"id": "E"}],
  "flows": [
    {"id": "f1", "source": "S", "target": "A", "waypoints": [[0, 0], [10, 10]]},
    {"id": "f2", "source": "S", "target": "B", "waypoints": [[0, 10], [10, 0]]},
    {"id": "f3", "source": "A", "target": "E", "waypoints": [[10, 10], [20, 30]]},
    {"id": "f4", "source": "B", "target": "E", "waypoints": [[10, 0], [20, -30]]}
  ]
}`

func newTestServer(t *testing.T, st store.Store) http.Handler {
	t.Helper()
	logger := log.New(io.Discard)
	r := pipeline.NewRunner(nil, nil, st, logger)
	return New(r, Options{Logger: logger}).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody[map[string]string](t, rec); got["status"] != "ok" {
		t.Errorf("body = %v", got)
	}
}

func TestMetrics(t *testing.T) {
	st := store.NewMemoryStore()
	h := newTestServer(t, st)

	rec := do(t, h, http.MethodPost, "/v1/metrics?crossings=true", crossingDiagram)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	res := decodeBody[pipeline.Result](t, rec)
	if res.Report.Crossings != 1 || res.Report.Segments != 4 || res.Report.LongestPathLength != 3 {
		t.Errorf("report = %+v", res.Report)
	}
	if !slices.Equal(res.Report.LongestPath, []string{"S", "A", "E"}) {
		t.Errorf("LongestPath = %v", res.Report.LongestPath)
	}
	if len(res.Crossings) != 1 {
		t.Errorf("Crossings = %+v", res.Crossings)
	}
	if res.RecordID == "" {
		t.Fatal("report was not saved")
	}

	// The saved report is retrievable and listed.
	rec = do(t, h, http.MethodGet, "/v1/reports/"+res.RecordID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", rec.Code, rec.Body)
	}
	if got := decodeBody[store.Record](t, rec); got.DiagramName != "cross" || got.Report.Crossings != 1 {
		t.Errorf("record = %+v", got)
	}

	rec = do(t, h, http.MethodGet, "/v1/reports?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decodeBody[struct{ Reports []store.Record }](t, rec)
	if len(list.Reports) != 1 || list.Reports[0].ID != res.RecordID {
		t.Errorf("list = %+v", list)
	}
}

func TestMetricsNoSave(t *testing.T) {
	st := store.NewMemoryStore()
	h := newTestServer(t, st)

	rec := do(t, h, http.MethodPost, "/v1/metrics?save=false", crossingDiagram)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if res := decodeBody[pipeline.Result](t, rec); res.RecordID != "" {
		t.Errorf("RecordID = %q with save=false", res.RecordID)
	}
	rec = do(t, h, http.MethodGet, "/v1/reports", "")
	if list := decodeBody[struct{ Reports []store.Record }](t, rec); len(list.Reports) != 0 {
		t.Errorf("reports = %+v, want none", list.Reports)
	}
}

func TestMetricsErrors(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		name   string
		target string
		body   string
		ctype  string
		status int
		code   apperrors.Code
	}{
		{"bad json", "/v1/metrics", `{"nodes": [`, "application/json", http.StatusBadRequest, apperrors.ErrCodeInvalidFormat},
		{"unknown field", "/v1/metrics", `{"vertices": []}`, "application/json", http.StatusBadRequest, apperrors.ErrCodeInvalidFormat},
		{"two values", "/v1/metrics", `{}{}`, "application/json", http.StatusBadRequest, apperrors.ErrCodeInvalidFormat},
		{"wrong content type", "/v1/metrics", crossingDiagram, "text/plain", http.StatusBadRequest, apperrors.ErrCodeInvalidFormat},
		{
			"dangling flow", "/v1/metrics",
			`{"nodes": [{"id": "A"}], "flows": [{"id": "f", "source": "A", "target": "Z", "waypoints": [[0,0],[1,1]]}]}`,
			"application/json", http.StatusBadRequest, apperrors.ErrCodeInvalidDiagram,
		},
		{
			"one waypoint", "/v1/metrics",
			`{"nodes": [{"id": "A"}, {"id": "B"}], "flows": [{"id": "f", "source": "A", "target": "B", "waypoints": [[0,0]]}]}`,
			"application/json", http.StatusBadRequest, apperrors.ErrCodeInvalidDiagram,
		},
		{
			"three-value waypoint", "/v1/metrics",
			`{"nodes": [{"id": "A"}, {"id": "B"}], "flows": [{"id": "f", "source": "A", "target": "B", "waypoints": [[1,2,3],[4,5]]}]}`,
			"application/json", http.StatusBadRequest, apperrors.ErrCodeInvalidDiagram,
		},
		{
			"one-value waypoint", "/v1/metrics",
			`{"nodes": [{"id": "A"}, {"id": "B"}], "flows": [{"id": "f", "source": "A", "target": "B", "waypoints": [[1,2],[4]]}]}`,
			"application/json", http.StatusBadRequest, apperrors.ErrCodeInvalidDiagram,
		},
		{"bad bool", "/v1/metrics?crossings=maybe", crossingDiagram, "application/json", http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.ctype)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			if got := decodeBody[errorResponse](t, rec); got.Code != tt.code || got.Error == "" {
				t.Errorf("error body = %+v, want code %s", got, tt.code)
			}
		})
	}
}

func TestMetricsEmptyDiagram(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodPost, "/v1/metrics", `{"nodes": [], "flows": []}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	res := decodeBody[pipeline.Result](t, rec)
	if res.Report.Crossings != 0 || res.Report.Segments != 0 || res.Report.LongestPathLength != 0 {
		t.Errorf("report = %+v, want zeros", res.Report)
	}
}

func TestReportsErrors(t *testing.T) {
	h := newTestServer(t, store.NewMemoryStore())

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"malformed id", "/v1/reports/not-a-uuid", http.StatusBadRequest},
		{"unknown id", "/v1/reports/6f1c1c4e-8a8e-4d1c-9b7a-2f4b8f8d9e01", http.StatusNotFound},
		{"bad limit", "/v1/reports?limit=abc", http.StatusBadRequest},
		{"zero limit", "/v1/reports?limit=0", http.StatusBadRequest},
		{"unknown route", "/v1/nothing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, http.MethodGet, tt.target, ""); rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestReportsWithoutStore(t *testing.T) {
	h := newTestServer(t, nil)
	for _, target := range []string{"/v1/reports", "/v1/reports/6f1c1c4e-8a8e-4d1c-9b7a-2f4b8f8d9e01"} {
		if rec := do(t, h, http.MethodGet, target, ""); rec.Code != http.StatusNotImplemented {
			t.Errorf("%s: status = %d, want 501", target, rec.Code)
		}
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(pipeline.NewRunner(nil, nil, nil, log.New(io.Discard)), Options{Logger: log.New(io.Discard)})

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
