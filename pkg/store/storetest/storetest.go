// Package storetest provides a conformance suite run against every
// store.Store backend.
package storetest

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/layoutmetrics/pkg/metrics"
	"github.com/matzehuels/layoutmetrics/pkg/store"
)

// Run saves three records into s and checks Get and List behaviour. s must
// be empty.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	base := time.Now().UTC().Truncate(time.Millisecond)
	var recs []*store.Record
	for i := range 3 {
		rec := store.NewRecord("order", "hash", metrics.Report{
			Crossings:         i,
			Segments:          10 + i,
			LongestPath:       []string{"start", "task", "end"},
			LongestPathLength: 3,
		})
		rec.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
		recs = append(recs, rec)
	}

	got, err := s.Get(ctx, recs[1].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DiagramName != "order" || got.Report.Segments != 11 {
		t.Errorf("Get returned %+v", got)
	}
	if !slices.Equal(got.Report.LongestPath, []string{"start", "task", "end"}) {
		t.Errorf("LongestPath = %v", got.Report.LongestPath)
	}
	if !got.CreatedAt.Equal(recs[1].CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, recs[1].CreatedAt)
	}

	if _, err := s.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}

	list, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != recs[2].ID || list[1].ID != recs[1].ID {
		t.Errorf("List(2) should return the two newest records, got %d", len(list))
	}
}
