package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutmetrics/pkg/cache"
	"github.com/matzehuels/layoutmetrics/pkg/config"
	apperrors "github.com/matzehuels/layoutmetrics/pkg/errors"
	"github.com/matzehuels/layoutmetrics/pkg/metrics"
	"github.com/matzehuels/layoutmetrics/pkg/pipeline"
	"github.com/matzehuels/layoutmetrics/pkg/render"
	"github.com/matzehuels/layoutmetrics/pkg/server"
	"github.com/matzehuels/layoutmetrics/pkg/store"
)

const sampleDiagram = `{
  "name": "cross",
  "nodes": [{"id": "S", "kind": "startEvent"}, {"id": "A"}, {"id": "B"}, {"id": "E", "kind": "endEvent"}],
  "flows": [
    {"id": "f1", "source": "S", "target": "A", "waypoints": [[0, 0], [10, 10]]},
    {"id": "f2", "source": "S", "target": "B", "waypoints": [[0, 10], [10, 0]]},
    {"id": "f3", "source": "A", "target": "E", "waypoints": [[10, 10], [20, 30]]},
    {"id": "f4", "source": "B", "target": "E", "waypoints": [[10, 0], [20, -30]]}
  ]
}`

// setup writes the sample diagram and isolates config, cache and data dirs.
func setup(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	path = filepath.Join(dir, "cross.json")
	if err := os.WriteFile(path, []byte(sampleDiagram), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	var logs bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestRootCommand(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := map[string]bool{"metrics": false, "render": false, "serve": false, "reports": false, "cache": false, "completion": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestMetricsCommand(t *testing.T) {
	_, path := setup(t)
	if err := execute(t, "metrics", path, "--json", "--crossings"); err != nil {
		t.Fatalf("metrics: %v", err)
	}
	// Second run is served from the file cache.
	if err := execute(t, "metrics", path, "--save"); err != nil {
		t.Fatalf("metrics (cached): %v", err)
	}
	cacheDir := filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName)
	if _, err := os.Stat(cacheDir); err != nil {
		t.Errorf("cache dir not created: %v", err)
	}
}

func TestMetricsCommandErrors(t *testing.T) {
	dir, _ := setup(t)

	err := execute(t, "metrics", filepath.Join(dir, "missing.json"))
	if !apperrors.Is(err, apperrors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v, want FILE_NOT_FOUND", err)
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte(`{"nodes": [{"id": "A"}], "flows": [{"id": "f", "source": "A", "target": "Z", "waypoints": [[0,0],[1,1]]}]}`), 0o644)
	err = execute(t, "metrics", bad, "--no-cache")
	if !apperrors.Is(err, apperrors.ErrCodeInvalidDiagram) {
		t.Errorf("dangling flow: err = %v, want INVALID_DIAGRAM", err)
	}

	nan := filepath.Join(dir, "nan.toml")
	_ = os.WriteFile(nan, []byte("[[nodes]]\nid = \"A\"\n\n[[nodes]]\nid = \"B\"\n\n[[flows]]\nid = \"f\"\nsource = \"A\"\ntarget = \"B\"\nwaypoints = [[nan, 0.0], [1.0, 1.0]]\n"), 0o644)
	err = execute(t, "metrics", nan, "--no-cache")
	if !apperrors.Is(err, apperrors.ErrCodeInvalidDiagram) {
		t.Errorf("NaN waypoint: err = %v, want INVALID_DIAGRAM", err)
	}

	cfg := filepath.Join(dir, "bad.toml")
	_ = os.WriteFile(cfg, []byte("[store]\nbackend = \"sqlite\"\n"), 0o644)
	err = execute(t, "--config", cfg, "metrics", filepath.Join(dir, "cross.json"))
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("bad config: err = %v, want INVALID_CONFIG", err)
	}
}

func TestRenderCommandDOT(t *testing.T) {
	dir, path := setup(t)
	out := filepath.Join(dir, "cross.dot")
	if err := execute(t, "render", path, "-o", out, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(data)
	if !strings.HasPrefix(dot, `digraph "cross"`) {
		t.Errorf("not a DOT file:\n%s", dot)
	}
	if !strings.Contains(dot, "penwidth=3") {
		t.Errorf("longest path not highlighted:\n%s", dot)
	}
	if !strings.Contains(dot, "style=dashed") {
		t.Errorf("crossing flows not marked:\n%s", dot)
	}
}

func TestRenderCommandBadFormat(t *testing.T) {
	dir, path := setup(t)
	err := execute(t, "render", path, "-o", filepath.Join(dir, "out.gif"))
	if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"out.svg", "svg", false},
		{"out.SVG", "svg", false},
		{"dir/out.dot", "dot", false},
		{"out.pdf", "pdf", false},
		{"out.png", "png", false},
		{"out.jpg", "", true},
		{"out", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := outputFormat(tt.path)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("outputFormat(%q) = %q, %v", tt.path, got, err)
			}
		})
	}
}

func TestRenderDiagramDOT(t *testing.T) {
	_, path := setup(t)
	d, err := readDiagram(path)
	if err != nil {
		t.Fatal(err)
	}
	data, err := renderDiagram(context.Background(), d, "dot", render.Options{LeftToRight: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "rankdir=LR") {
		t.Errorf("DOT = %s", data)
	}
}

func TestFormatReport(t *testing.T) {
	res := &pipeline.Result{
		Report: metrics.Report{
			Crossings:         1,
			Segments:          4,
			LongestPath:       []string{"S", "A", "E"},
			LongestPathLength: 3,
			NodeCount:         4,
			FlowCount:         4,
		},
		Crossings: []metrics.Crossing{{A: 0, B: 1, FlowA: "f1", FlowB: "f2"}},
		CacheHit:  true,
		RecordID:  "rec-1",
	}
	out := formatReport("cross", res)
	for _, want := range []string{"Layout metrics", "cross", "crossings", "segments", "S → A → E", "f1 × f2 (segments 0, 1)", "4 nodes", "4 flows", "cached", "saved as rec-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	res.CacheHit = false
	if out := formatReport("", res); !strings.Contains(out, "fresh") {
		t.Errorf("uncached report should say fresh:\n%s", out)
	}
}

func TestNewCache(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	ctx := context.Background()

	ch, err := c.newCache(ctx, config.Default(), true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(cache.NullCache); !ok {
		t.Errorf("--no-cache: got %T, want NullCache", ch)
	}

	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	ch, err = c.newCache(ctx, cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := ch.(*cache.FileCache); !ok || fc.Dir() != cfg.Cache.Dir {
		t.Errorf("got %T, want FileCache in %s", ch, cfg.Cache.Dir)
	}

	// Unreachable redis falls back to the file cache.
	cfg.Cache.RedisAddr = "127.0.0.1:1"
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	ch, err = c.newCache(ctx, cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(*cache.FileCache); !ok {
		t.Errorf("redis fallback: got %T, want FileCache", ch)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	st, err := openStore(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*store.MemoryStore); !ok {
		t.Errorf("got %T, want MemoryStore", st)
	}

	cfg = config.Default()
	cfg.Store.Dir = filepath.Join(t.TempDir(), "reports")
	st, err = openStore(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if fs, ok := st.(*store.FileStore); !ok || fs.Dir() != cfg.Store.Dir {
		t.Errorf("got %T, want FileStore at %s", st, cfg.Store.Dir)
	}

	cfg.Store.Backend = "sqlite"
	if _, err := openStore(ctx, cfg); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestLocalReportHistory(t *testing.T) {
	dir, path := setup(t)
	if err := execute(t, "metrics", path, "--save", "--no-cache"); err != nil {
		t.Fatalf("metrics --save: %v", err)
	}

	st, err := store.NewFileStore(filepath.Join(dir, "data", appName, "reports"))
	if err != nil {
		t.Fatal(err)
	}
	recs, err := st.List(context.Background(), 10)
	if err != nil || len(recs) != 1 {
		t.Fatalf("file store holds %d reports (%v), want 1", len(recs), err)
	}
	if recs[0].DiagramName != "cross" || recs[0].Report.Crossings != 1 {
		t.Errorf("stored record = %+v", recs[0])
	}

	// A later process finds the record.
	if err := execute(t, "reports", "show", recs[0].ID); err != nil {
		t.Errorf("reports show: %v", err)
	}
	if err := execute(t, "reports", "list", "--json"); err != nil {
		t.Errorf("reports list: %v", err)
	}
}

func TestMemoryStoreRejectedLocally(t *testing.T) {
	dir, path := setup(t)
	cfg := filepath.Join(dir, "memory.toml")
	if err := os.WriteFile(cfg, []byte("[store]\nbackend = \"memory\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"metrics save", []string{"metrics", path, "--save"}},
		{"reports list", []string{"reports", "list"}},
		{"reports show", []string{"reports", "show", "6f1c1c4e-8a8e-4d1c-9b7a-2f4b8f8d9e01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, append([]string{"--config", cfg}, tt.args...)...)
			if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}

	// Without --save the memory backend is never opened.
	if err := execute(t, "--config", cfg, "metrics", path); err != nil {
		t.Errorf("metrics without --save: %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	_, path := setup(t)
	if err := execute(t, "metrics", path); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "cache", "path"); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName)
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("cache not empty after clear: %d entries", len(entries))
	}
}

func TestRemoteCommands(t *testing.T) {
	_, path := setup(t)
	st := store.NewMemoryStore()
	srv := server.New(pipeline.NewRunner(nil, nil, st, nil), server.Options{Logger: log.New(io.Discard)})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	if err := execute(t, "metrics", path, "--server", ts.URL, "--save"); err != nil {
		t.Fatalf("remote metrics: %v", err)
	}
	recs, err := st.List(context.Background(), 10)
	if err != nil || len(recs) != 1 {
		t.Fatalf("server stored %d reports (%v), want 1", len(recs), err)
	}

	if err := execute(t, "reports", "list", "--server", ts.URL, "--json"); err != nil {
		t.Errorf("reports list: %v", err)
	}
	if err := execute(t, "reports", "show", recs[0].ID, "--server", ts.URL); err != nil {
		t.Errorf("reports show: %v", err)
	}
	err = execute(t, "reports", "show", "6f1c1c4e-8a8e-4d1c-9b7a-2f4b8f8d9e01", "--server", ts.URL)
	if !apperrors.Is(err, apperrors.ErrCodeNotFound) {
		t.Errorf("unknown id: err = %v, want NOT_FOUND", err)
	}
}

func TestReportsLocal(t *testing.T) {
	setup(t)
	if err := execute(t, "reports", "list"); err != nil {
		t.Errorf("reports list: %v", err)
	}
	if err := execute(t, "reports", "list", "-n", "0"); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("zero limit: err = %v, want INVALID_INPUT", err)
	}
	if err := execute(t, "reports", "show", "not-a-uuid"); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("bad id: err = %v, want INVALID_INPUT", err)
	}
	err := execute(t, "reports", "show", "6f1c1c4e-8a8e-4d1c-9b7a-2f4b8f8d9e01")
	if !apperrors.Is(err, apperrors.ErrCodeNotFound) {
		t.Errorf("unknown id: err = %v, want NOT_FOUND", err)
	}
}

func TestFormatRecordLine(t *testing.T) {
	line := formatRecordLine(store.Record{
		ID:          "6f1c1c4e-8a8e-4d1c-9b7a-2f4b8f8d9e01",
		DiagramHash: "0123456789abcdef0123",
		Report:      metrics.Report{Crossings: 2, Segments: 7, LongestPathLength: 4},
		CreatedAt:   time.Now(),
	})
	for _, want := range []string{"6f1c1c4e", "0123456789ab", "2 crossings", "7 segments", "path 4"} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q: %s", want, line)
		}
	}
}

func TestExampleDiagrams(t *testing.T) {
	tests := []struct {
		file      string
		crossings int
		segments  int
		path      []string
	}{
		{"order.json", 1, 14, []string{"start", "check", "gw", "pack", "join", "end"}},
		{"loop.toml", 0, 7, []string{"start", "draft", "review", "ok", "end"}},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			d, err := readDiagram(filepath.Join("..", "..", "examples", "diagrams", tt.file))
			if err != nil {
				t.Fatal(err)
			}
			if got := metrics.CountCrossings(d); got != tt.crossings {
				t.Errorf("crossings = %d, want %d", got, tt.crossings)
			}
			if got := metrics.CountSegments(d); got != tt.segments {
				t.Errorf("segments = %d, want %d", got, tt.segments)
			}
			path, n := metrics.LongestPath(d)
			if n != len(tt.path) || strings.Join(path.IDs(), ",") != strings.Join(tt.path, ",") {
				t.Errorf("longest path = %v (%d), want %v", path.IDs(), n, tt.path)
			}
		})
	}
}
