// Package diagram holds the process diagram model consumed by the layout
// metrics: nodes, flows between them, and the waypoint polylines along which
// each flow is drawn.
//
// Build a diagram with [New], [Diagram.AddNode] and [Diagram.AddFlow], or
// load one with [ReadFile], [ReadJSON] or [ReadTOML]. AddFlow keeps each
// node's ordered Incoming and Outgoing flow lists up to date, so the
// exploration order of graph searches follows the order in which flows were
// added.
//
// Once built, a Diagram is a read-only snapshot and may be shared by
// concurrent readers.
package diagram
