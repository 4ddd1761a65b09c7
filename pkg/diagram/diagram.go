package diagram

import (
	"errors"
	"math"
	"slices"

	"github.com/matzehuels/layoutmetrics/pkg/geometry"
)

var (
	// ErrInvalidNodeID is returned by [Diagram.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Diagram.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidFlowID is returned by [Diagram.AddFlow] when the flow ID is empty.
	ErrInvalidFlowID = errors.New("flow ID must not be empty")

	// ErrDuplicateFlowID is returned by [Diagram.AddFlow] when a flow with the
	// same ID already exists.
	ErrDuplicateFlowID = errors.New("duplicate flow ID")

	// ErrUnknownSourceNode is returned by [Diagram.AddFlow] when the source
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Diagram.AddFlow] when the target
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrTooFewWaypoints is returned by [Diagram.AddFlow] when a flow has
	// fewer than two waypoints and therefore no segment.
	ErrTooFewWaypoints = errors.New("flow needs at least two waypoints")

	// ErrInvalidWaypoint is returned by [Diagram.AddFlow] when a waypoint
	// coordinate is NaN or infinite.
	ErrInvalidWaypoint = errors.New("waypoint coordinates must be finite")

	// ErrMalformedWaypoint is returned by [FromFile] when a serialized
	// waypoint is not an [x, y] pair.
	ErrMalformedWaypoint = errors.New("malformed waypoint")
)

// NodeKind classifies process diagram elements. The metrics treat every
// kind alike; the kind only affects import/export and rendering.
type NodeKind string

const (
	KindTask              NodeKind = "task"
	KindSubProcess        NodeKind = "subProcess"
	KindStartEvent        NodeKind = "startEvent"
	KindEndEvent          NodeKind = "endEvent"
	KindIntermediateEvent NodeKind = "intermediateEvent"
	KindExclusiveGateway  NodeKind = "exclusiveGateway"
	KindParallelGateway   NodeKind = "parallelGateway"
	KindInclusiveGateway  NodeKind = "inclusiveGateway"
	KindEventGateway      NodeKind = "eventBasedGateway"
	KindOther             NodeKind = ""
)

// IsGateway reports whether the kind is one of the gateway kinds.
func (k NodeKind) IsGateway() bool {
	switch k {
	case KindExclusiveGateway, KindParallelGateway, KindInclusiveGateway, KindEventGateway:
		return true
	}
	return false
}

// IsEvent reports whether the kind is one of the event kinds.
func (k NodeKind) IsEvent() bool {
	switch k {
	case KindStartEvent, KindEndEvent, KindIntermediateEvent:
		return true
	}
	return false
}

// Node is a vertex of the process graph. Incoming and Outgoing hold flow
// IDs in the order the flows were added to the diagram.
type Node struct {
	ID       string
	Name     string
	Kind     NodeKind
	Incoming []string
	Outgoing []string
}

// Label returns Name if set, otherwise ID.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Flow is a directed edge between two nodes, routed along Waypoints.
type Flow struct {
	ID        string
	Name      string
	SourceID  string
	TargetID  string
	Waypoints []geometry.Point
}

// Segments splits the flow's route into straight pieces.
func (f *Flow) Segments() []geometry.Segment { return geometry.Polyline(f.Waypoints) }

// Diagram is a process graph with routing geometry.
//
// The zero value is not usable - use New. A Diagram is built once and then
// treated as a read-only snapshot; concurrent readers are safe as long as no
// goroutine calls AddNode or AddFlow.
type Diagram struct {
	name      string
	nodes     map[string]*Node
	flows     map[string]*Flow
	nodeOrder []string
	flowOrder []string
}

// New creates an empty diagram.
func New(name string) *Diagram {
	return &Diagram{
		name:  name,
		nodes: make(map[string]*Node),
		flows: make(map[string]*Flow),
	}
}

// Name returns the diagram's name, which may be empty.
func (d *Diagram) Name() string { return d.name }

// AddNode adds a node. Incoming and Outgoing on n are ignored; they are
// maintained by AddFlow.
func (d *Diagram) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	n.Incoming = nil
	n.Outgoing = nil
	d.nodes[n.ID] = &n
	d.nodeOrder = append(d.nodeOrder, n.ID)
	return nil
}

// AddFlow adds a flow between two existing nodes and appends its ID to the
// source's outgoing and the target's incoming lists. The waypoints are copied.
func (d *Diagram) AddFlow(f Flow) error {
	if f.ID == "" {
		return ErrInvalidFlowID
	}
	if _, exists := d.flows[f.ID]; exists {
		return ErrDuplicateFlowID
	}
	src, ok := d.nodes[f.SourceID]
	if !ok {
		return ErrUnknownSourceNode
	}
	dst, ok := d.nodes[f.TargetID]
	if !ok {
		return ErrUnknownTargetNode
	}
	if len(f.Waypoints) < 2 {
		return ErrTooFewWaypoints
	}
	for _, p := range f.Waypoints {
		if !finite(p.X) || !finite(p.Y) {
			return ErrInvalidWaypoint
		}
	}
	f.Waypoints = slices.Clone(f.Waypoints)
	d.flows[f.ID] = &f
	d.flowOrder = append(d.flowOrder, f.ID)
	src.Outgoing = append(src.Outgoing, f.ID)
	dst.Incoming = append(dst.Incoming, f.ID)
	return nil
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// diagram's own nodes and must not be modified.
func (d *Diagram) Nodes() []*Node {
	nodes := make([]*Node, len(d.nodeOrder))
	for i, id := range d.nodeOrder {
		nodes[i] = d.nodes[id]
	}
	return nodes
}

// Flows returns all flows in insertion order. The pointers refer to the
// diagram's own flows and must not be modified.
func (d *Diagram) Flows() []*Flow {
	flows := make([]*Flow, len(d.flowOrder))
	for i, id := range d.flowOrder {
		flows[i] = d.flows[id]
	}
	return flows
}

// Node returns the node with the given ID.
func (d *Diagram) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Flow returns the flow with the given ID.
func (d *Diagram) Flow(id string) (*Flow, bool) {
	f, ok := d.flows[id]
	return f, ok
}

// NodeCount returns the number of nodes.
func (d *Diagram) NodeCount() int { return len(d.nodes) }

// FlowCount returns the number of flows.
func (d *Diagram) FlowCount() int { return len(d.flows) }

// Roots returns nodes with no incoming flows, in insertion order.
func (d *Diagram) Roots() []*Node {
	var roots []*Node
	for _, id := range d.nodeOrder {
		if n := d.nodes[id]; len(n.Incoming) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// Sinks returns nodes with no outgoing flows, in insertion order.
func (d *Diagram) Sinks() []*Node {
	var sinks []*Node
	for _, id := range d.nodeOrder {
		if n := d.nodes[id]; len(n.Outgoing) == 0 {
			sinks = append(sinks, n)
		}
	}
	return sinks
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
