package pipeline

import (
	"context"
	"fmt"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutmetrics/pkg/cache"
	"github.com/matzehuels/layoutmetrics/pkg/diagram"
	apperrors "github.com/matzehuels/layoutmetrics/pkg/errors"
	"github.com/matzehuels/layoutmetrics/pkg/geometry"
	"github.com/matzehuels/layoutmetrics/pkg/store"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// crossing returns S -> A -> E and S -> B -> E where A and B's
// incoming flows cross once.
func crossing(t *testing.T) *diagram.Diagram {
	t.Helper()
	d := diagram.New("crossing")
	for _, id := range []string{"S", "A", "B", "E"} {
		if err := d.AddNode(diagram.Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	flows := []diagram.Flow{
		{ID: "f1", SourceID: "S", TargetID: "A", Waypoints: []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}},
		{ID: "f2", SourceID: "S", TargetID: "B", Waypoints: []geometry.Point{{X: 0, Y: 10}, {X: 10, Y: 0}}},
		{ID: "f3", SourceID: "A", TargetID: "E", Waypoints: []geometry.Point{{X: 10, Y: 10}, {X: 20, Y: 30}}},
		{ID: "f4", SourceID: "B", TargetID: "E", Waypoints: []geometry.Point{{X: 10, Y: 0}, {X: 20, Y: -30}}},
	}
	for _, f := range flows {
		if err := d.AddFlow(f); err != nil {
			t.Fatal(err)
		}
	}
	return d
}

// layered builds a complete layered DAG with w^layers root-to-sink paths.
func layered(t *testing.T, layers, w int) *diagram.Diagram {
	t.Helper()
	d := diagram.New("layered")
	id := func(l, i int) string { return fmt.Sprintf("n%d_%d", l, i) }
	_ = d.AddNode(diagram.Node{ID: "root"})
	for l := 0; l < layers; l++ {
		for i := 0; i < w; i++ {
			_ = d.AddNode(diagram.Node{ID: id(l, i)})
		}
	}
	n := 0
	add := func(from, to string) {
		n++
		wp := []geometry.Point{{X: 0, Y: float64(n)}, {X: 1, Y: float64(n)}}
		if err := d.AddFlow(diagram.Flow{ID: fmt.Sprintf("f%d", n), SourceID: from, TargetID: to, Waypoints: wp}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < w; i++ {
		add("root", id(0, i))
	}
	for l := 0; l+1 < layers; l++ {
		for i := 0; i < w; i++ {
			for j := 0; j < w; j++ {
				add(id(l, i), id(l+1, j))
			}
		}
	}
	return d
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero", Options{}, false},
		{"timeout", Options{Timeout: time.Second}, false},
		{"negative timeout", Options{Timeout: -time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("code = %s, want INVALID_INPUT", apperrors.GetCode(err))
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	r := NewRunner(nil, nil, nil, quietLogger())
	res, err := r.Analyze(context.Background(), crossing(t), Options{WithCrossings: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.CacheHit {
		t.Error("null cache should never hit")
	}
	if res.Report.Crossings != 1 || res.Report.Segments != 4 {
		t.Errorf("crossings=%d segments=%d, want 1 and 4", res.Report.Crossings, res.Report.Segments)
	}
	if want := []string{"S", "A", "E"}; !slices.Equal(res.Report.LongestPath, want) {
		t.Errorf("LongestPath = %v, want %v", res.Report.LongestPath, want)
	}
	if len(res.Crossings) != 1 || res.Crossings[0].FlowA != "f1" || res.Crossings[0].FlowB != "f2" {
		t.Errorf("Crossings = %+v, want one f1/f2 pair", res.Crossings)
	}
	if len(res.DiagramHash) != 64 {
		t.Errorf("DiagramHash = %q, want sha256 hex", res.DiagramHash)
	}
	if res.RecordID != "" {
		t.Errorf("RecordID = %q without a store", res.RecordID)
	}
}

func TestAnalyzeCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil, quietLogger())
	ctx := context.Background()
	d := crossing(t)

	first, err := r.Analyze(ctx, d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Analyze(ctx, d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit || !second.CacheHit {
		t.Errorf("CacheHit = %v, %v; want false, true", first.CacheHit, second.CacheHit)
	}
	if first.Report.Crossings != second.Report.Crossings ||
		!slices.Equal(first.Report.LongestPath, second.Report.LongestPath) {
		t.Errorf("cached report differs: %+v vs %+v", first.Report, second.Report)
	}

	// Crossing details are keyed separately.
	third, err := r.Analyze(ctx, d, Options{WithCrossings: true})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit || len(third.Crossings) != 1 {
		t.Errorf("WithCrossings: hit=%v crossings=%d", third.CacheHit, len(third.Crossings))
	}
}

func TestAnalyzeCorruptCacheEntry(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	d := crossing(t)
	hash, err := Hash(d)
	if err != nil {
		t.Fatal(err)
	}
	key := cache.NewDefaultKeyer().ReportKey(hash, cache.ReportKeyOpts{})
	if err := fc.Set(ctx, key, []byte("not json"), time.Hour); err != nil {
		t.Fatal(err)
	}

	res, err := NewRunner(fc, nil, nil, quietLogger()).Analyze(ctx, d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit || res.Report.Crossings != 1 {
		t.Errorf("hit=%v crossings=%d, want recomputed report", res.CacheHit, res.Report.Crossings)
	}
}

func TestAnalyzeSave(t *testing.T) {
	st := store.NewMemoryStore()
	r := NewRunner(nil, nil, st, quietLogger())
	ctx := context.Background()

	res, err := r.Analyze(ctx, crossing(t), Options{Save: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.RecordID == "" {
		t.Fatal("RecordID empty with Save")
	}
	rec, err := st.Get(ctx, res.RecordID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.DiagramName != "crossing" || rec.DiagramHash != res.DiagramHash || rec.Report.Crossings != 1 {
		t.Errorf("stored record = %+v", rec)
	}

	unsaved, err := r.Analyze(ctx, crossing(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if unsaved.RecordID != "" {
		t.Errorf("RecordID = %q without Save", unsaved.RecordID)
	}
}

func TestAnalyzeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, nil, quietLogger()).Analyze(ctx, crossing(t), Options{})
	if !apperrors.Is(err, apperrors.ErrCodeCanceled) {
		t.Fatalf("err = %v, want CANCELED", err)
	}
}

func TestAnalyzeTimeout(t *testing.T) {
	d := layered(t, 12, 6)
	_, err := NewRunner(nil, nil, nil, quietLogger()).Analyze(context.Background(), d, Options{Timeout: time.Nanosecond})
	if !apperrors.Is(err, apperrors.ErrCodeTimeout) {
		t.Fatalf("err = %v, want TIMEOUT", err)
	}
}

func TestHashStable(t *testing.T) {
	a, err := Hash(crossing(t))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Hash(crossing(t))
	if a != b {
		t.Errorf("Hash not stable: %s != %s", a, b)
	}
	c, _ := Hash(layered(t, 2, 2))
	if a == c {
		t.Error("different diagrams share a hash")
	}
}
