package metrics

import (
	"github.com/matzehuels/layoutmetrics/pkg/diagram"
	"github.com/matzehuels/layoutmetrics/pkg/geometry"
)

// Crossing identifies one counted pair of intersecting segments. A and B
// index into the slice returned by [Segments], with A < B.
type Crossing struct {
	A     int    `json:"a" bson:"a"`
	B     int    `json:"b" bson:"b"`
	FlowA string `json:"flow_a" bson:"flow_a"`
	FlowB string `json:"flow_b" bson:"flow_b"`
}

// Crosses reports whether two segments count as a layout crossing: they
// intersect and do not share an endpoint.
func Crosses(a, b geometry.Segment) bool {
	return !geometry.SharesEndpoint(a, b) && geometry.Intersects(a, b)
}

// CountCrossings returns the number of segment pairs in d that cross.
func CountCrossings(d *diagram.Diagram) int {
	segs := Segments(d)
	n := 0
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			if Crosses(segs[i], segs[j]) {
				n++
			}
		}
	}
	return n
}

// Crossings lists every counted pair. len(Crossings(d)) == CountCrossings(d).
func Crossings(d *diagram.Diagram) []Crossing {
	segs := extract(d)
	var out []Crossing
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			if Crosses(segs[i].Segment, segs[j].Segment) {
				out = append(out, Crossing{A: i, B: j, FlowA: segs[i].flowID, FlowB: segs[j].flowID})
			}
		}
	}
	return out
}
