// Package geometry provides the exact 2D predicates used to measure the
// visual quality of routed diagram flows.
//
// # Points and Segments
//
// A [Point] is a pair of float64 coordinates taken straight from diagram
// layout data. A [Segment] is the straight line between two consecutive
// waypoints of a flow. [Polyline] splits a waypoint sequence into segments.
//
// # Exactness
//
// No epsilon tolerance is applied anywhere. Point equality is bit-exact
// float comparison, and [Orient] classifies three points by the sign of
// a cross product. Two segments that are visually touching but whose
// endpoints differ in the last bit are therefore not considered to share
// an endpoint. Changing this would change crossing counts for existing
// diagrams.
//
// # Intersection
//
// [Intersects] reports whether two segments share at least one point,
// covering both proper crossings and collinear overlaps or touches:
//
//	a := geometry.Segment{Source: geometry.Point{X: 0, Y: 0}, Target: geometry.Point{X: 4, Y: 4}}
//	b := geometry.Segment{Source: geometry.Point{X: 0, Y: 4}, Target: geometry.Point{X: 4, Y: 0}}
//	geometry.Intersects(a, b) // true
//
// [SharesEndpoint] is the companion test used by crossing counters to
// exempt segments that meet at a waypoint or a node.
package geometry
