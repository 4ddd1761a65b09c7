package metrics

import (
	"github.com/matzehuels/layoutmetrics/pkg/diagram"
	"github.com/matzehuels/layoutmetrics/pkg/geometry"
)

// flowSegment is a segment tagged with the flow it was cut from.
type flowSegment struct {
	geometry.Segment
	flowID string
}

func extract(d *diagram.Diagram) []flowSegment {
	var out []flowSegment
	for _, f := range d.Flows() {
		for _, s := range f.Segments() {
			out = append(out, flowSegment{Segment: s, flowID: f.ID})
		}
	}
	return out
}

// Segments returns the segments of every flow in d, ordered by flow and then
// by position along the flow.
func Segments(d *diagram.Diagram) []geometry.Segment {
	owned := extract(d)
	segs := make([]geometry.Segment, len(owned))
	for i, s := range owned {
		segs[i] = s.Segment
	}
	return segs
}

// CountSegments returns the total number of segments across all flows.
func CountSegments(d *diagram.Diagram) int { return len(extract(d)) }
