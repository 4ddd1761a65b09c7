package geometry

import "fmt"

// Point is a 2D coordinate in diagram space.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Equal reports whether p and q have bit-for-bit identical coordinates.
func (p Point) Equal(q Point) bool { return p.X == q.X && p.Y == q.Y }

func (p Point) String() string { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }

// Segment is one straight piece of a flow's route.
type Segment struct {
	Source Point `json:"source" bson:"source"`
	Target Point `json:"target" bson:"target"`
}

func (s Segment) String() string { return s.Source.String() + "-" + s.Target.String() }

// Polyline splits a waypoint sequence into consecutive segments. A sequence
// of k points yields k-1 segments; fewer than two points yield none.
func Polyline(points []Point) []Segment {
	if len(points) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		segs = append(segs, Segment{Source: points[i-1], Target: points[i]})
	}
	return segs
}

// Orientation classifies an ordered triple of points.
type Orientation int

const (
	Collinear        Orientation = 0
	Clockwise        Orientation = 1
	CounterClockwise Orientation = 2
)

func (o Orientation) String() string {
	switch o {
	case Collinear:
		return "collinear"
	case Clockwise:
		return "clockwise"
	case CounterClockwise:
		return "counterclockwise"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Orient returns the orientation of p1, p2, p3 from the sign of
// (p2.y-p1.y)*(p3.x-p2.x) - (p2.x-p1.x)*(p3.y-p2.y).
func Orient(p1, p2, p3 Point) Orientation {
	val := (p2.Y-p1.Y)*(p3.X-p2.X) - (p2.X-p1.X)*(p3.Y-p2.Y)
	switch {
	case val == 0:
		return Collinear
	case val > 0:
		return Clockwise
	default:
		return CounterClockwise
	}
}

// OnSegment reports whether p3 lies inside the bounding box of the segment
// p1-p2. Callers use it only after establishing that the three points are
// collinear, at which point the box test is equivalent to lying on the segment.
func OnSegment(p1, p2, p3 Point) bool {
	return min(p1.X, p2.X) <= p3.X && p3.X <= max(p1.X, p2.X) &&
		min(p1.Y, p2.Y) <= p3.Y && p3.Y <= max(p1.Y, p2.Y)
}

// Intersects reports whether a and b share at least one point, either by a
// proper crossing or by a collinear touch or overlap.
func Intersects(a, b Segment) bool {
	o1 := Orient(a.Source, a.Target, b.Source)
	o2 := Orient(a.Source, a.Target, b.Target)
	o3 := Orient(b.Source, b.Target, a.Source)
	o4 := Orient(b.Source, b.Target, a.Target)

	if o1 != o2 && o3 != o4 {
		return true
	}

	switch {
	case o1 == Collinear && OnSegment(a.Source, a.Target, b.Source):
		return true
	case o2 == Collinear && OnSegment(a.Source, a.Target, b.Target):
		return true
	case o3 == Collinear && OnSegment(b.Source, b.Target, a.Source):
		return true
	case o4 == Collinear && OnSegment(b.Source, b.Target, a.Target):
		return true
	}
	return false
}

// SharesEndpoint reports whether any endpoint of a equals any endpoint of b.
// Comparison is exact.
func SharesEndpoint(a, b Segment) bool {
	return a.Source.Equal(b.Source) ||
		a.Source.Equal(b.Target) ||
		a.Target.Equal(b.Source) ||
		a.Target.Equal(b.Target)
}
