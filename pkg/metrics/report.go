package metrics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/layoutmetrics/pkg/diagram"
)

// Report collects the layout metrics of one diagram.
type Report struct {
	Crossings         int      `json:"crossings" bson:"crossings"`
	Segments          int      `json:"segments" bson:"segments"`
	LongestPath       []string `json:"longest_path" bson:"longest_path"`
	LongestPathLength int      `json:"longest_path_length" bson:"longest_path_length"`
	NodeCount         int      `json:"node_count" bson:"node_count"`
	FlowCount         int      `json:"flow_count" bson:"flow_count"`
}

// Analyze computes all metrics for d. The three metrics run concurrently;
// only the longest-path search observes ctx.
func Analyze(ctx context.Context, d *diagram.Diagram) (*Report, error) {
	r := &Report{
		NodeCount: d.NodeCount(),
		FlowCount: d.FlowCount(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.Crossings = CountCrossings(d)
		return nil
	})
	g.Go(func() error {
		r.Segments = CountSegments(d)
		return nil
	})
	g.Go(func() error {
		p, err := LongestPathContext(ctx, d)
		if err != nil {
			return err
		}
		r.LongestPath = p.IDs()
		r.LongestPathLength = len(p)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, nil
}
