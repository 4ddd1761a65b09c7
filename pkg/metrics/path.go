package metrics

import (
	"context"

	"github.com/matzehuels/layoutmetrics/pkg/diagram"
)

// Path is an ordered sequence of nodes with no node repeated.
type Path []*diagram.Node

// IDs returns the node IDs along the path.
func (p Path) IDs() []string {
	ids := make([]string, len(p))
	for i, n := range p {
		ids[i] = n.ID
	}
	return ids
}

func (p Path) contains(n *diagram.Node) bool {
	for _, m := range p {
		if m.ID == n.ID {
			return true
		}
	}
	return false
}

// LongestPath returns the longest simple path starting at a root of d and
// ending at a node without outgoing flows, together with its length.
// It returns (nil, 0) when d has no roots.
func LongestPath(d *diagram.Diagram) (Path, int) {
	p, _ := LongestPathContext(context.Background(), d)
	return p, len(p)
}

// ctxCheckInterval is how many search steps run between context checks.
const ctxCheckInterval = 1 << 10

// LongestPathContext is like [LongestPath] but stops with ctx.Err() once ctx
// is done.
func LongestPathContext(ctx context.Context, d *diagram.Diagram) (Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var longest Path
	steps := 0
	for _, root := range d.Roots() {
		p, err := longestFrom(ctx, d, root, &steps)
		if err != nil {
			return nil, err
		}
		if len(p) > len(longest) {
			longest = p
		}
	}
	return longest, nil
}

// frame is one level of the depth-first search. path ends with node.
type frame struct {
	node *diagram.Node
	path Path
	next int  // index of the next outgoing flow to explore
	best Path // longest completed branch below this node
}

// longestFrom runs the depth-first search from root with an explicit stack.
// Outgoing flows are explored in order and a child's result replaces the
// parent's best only when strictly longer, so ties keep the first branch.
func longestFrom(ctx context.Context, d *diagram.Diagram, root *diagram.Node, steps *int) (Path, error) {
	stack := []*frame{{node: root, path: Path{root}}}
	var result Path

	for len(stack) > 0 {
		if *steps++; *steps%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		top := stack[len(stack)-1]
		out := top.node.Outgoing

		var done Path
		switch {
		case len(out) == 0:
			done = top.path
		case top.next < len(out):
			flowID := out[top.next]
			top.next++
			child, ok := target(d, flowID)
			if !ok || top.path.contains(child) {
				continue
			}
			path := make(Path, len(top.path), len(top.path)+1)
			copy(path, top.path)
			stack = append(stack, &frame{node: child, path: append(path, child)})
			continue
		default:
			done = top.best
		}

		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			result = done
			break
		}
		if parent := stack[len(stack)-1]; len(done) > len(parent.best) {
			parent.best = done
		}
	}
	return result, nil
}

func target(d *diagram.Diagram, flowID string) (*diagram.Node, bool) {
	f, ok := d.Flow(flowID)
	if !ok {
		return nil, false
	}
	return d.Node(f.TargetID)
}
