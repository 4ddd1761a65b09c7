package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/layoutmetrics/pkg/diagram"
	"github.com/matzehuels/layoutmetrics/pkg/metrics"
)

const (
	pathColor     = "#d62728"
	crossingColor = "#ff7f0e"
)

// Options configures DOT generation.
type Options struct {
	// HighlightPath is an ordered list of node IDs. Between consecutive
	// nodes the first outgoing flow to the next node is drawn bold, matching
	// the flow the longest-path search follows.
	HighlightPath []string

	// CrossingFlows marks flows that take part in at least one crossing.
	CrossingFlows map[string]bool

	// LeftToRight lays the graph out horizontally, which suits most
	// process diagrams. The default is top to bottom.
	LeftToRight bool
}

// CrossingFlows returns the set of flow IDs appearing in cs.
func CrossingFlows(cs []metrics.Crossing) map[string]bool {
	set := make(map[string]bool, 2*len(cs))
	for _, c := range cs {
		set[c.FlowA] = true
		set[c.FlowB] = true
	}
	return set
}

// ToDOT converts a diagram to Graphviz DOT source.
func ToDOT(d *diagram.Diagram, opts Options) string {
	rankdir := "TB"
	if opts.LeftToRight {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", d.Name())
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=14, style=filled, fillcolor=white];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	onPath := make(map[string]bool, len(opts.HighlightPath))
	for _, id := range opts.HighlightPath {
		onPath[id] = true
	}
	for _, n := range d.Nodes() {
		attrs := nodeAttrs(n)
		if onPath[n.ID] {
			attrs = append(attrs, fmt.Sprintf("color=%q", pathColor), "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	pathFlows := pathFlowIDs(d, opts.HighlightPath)
	buf.WriteString("\n")
	for _, f := range d.Flows() {
		var attrs []string
		if f.Name != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", f.Name))
		}
		onPath, crossing := pathFlows[f.ID], opts.CrossingFlows[f.ID]
		switch {
		case onPath:
			attrs = append(attrs, fmt.Sprintf("color=%q", pathColor), "penwidth=3")
		case crossing:
			attrs = append(attrs, fmt.Sprintf("color=%q", crossingColor))
		}
		if crossing {
			attrs = append(attrs, "style=dashed")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", f.SourceID, f.TargetID)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", f.SourceID, f.TargetID, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// pathFlowIDs resolves a node path to flow IDs. Parallel flows between two
// path nodes contribute only the first in outgoing order.
func pathFlowIDs(d *diagram.Diagram, path []string) map[string]bool {
	ids := make(map[string]bool, len(path))
	for i := 0; i+1 < len(path); i++ {
		n, ok := d.Node(path[i])
		if !ok {
			continue
		}
		for _, fid := range n.Outgoing {
			if f, ok := d.Flow(fid); ok && f.TargetID == path[i+1] {
				ids[fid] = true
				break
			}
		}
	}
	return ids
}

func nodeAttrs(n *diagram.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.Label())}
	switch {
	case n.Kind == diagram.KindStartEvent:
		attrs = append(attrs, "shape=circle", "fillcolor=\"#e8f5e9\"")
	case n.Kind == diagram.KindEndEvent:
		attrs = append(attrs, "shape=doublecircle", "fillcolor=\"#ffebee\"")
	case n.Kind.IsEvent():
		attrs = append(attrs, "shape=circle")
	case n.Kind.IsGateway():
		attrs = append(attrs, "shape=diamond", "fillcolor=\"#fff8e1\"")
	case n.Kind == diagram.KindSubProcess:
		attrs = append(attrs, "shape=box", "style=\"rounded,filled,bold\"")
	default:
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"")
	}
	return attrs
}
