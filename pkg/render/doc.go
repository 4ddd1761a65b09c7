// Package render draws process diagrams as node-link graphs.
//
// [ToDOT] produces Graphviz DOT source with nodes shaped by their kind.
// The flows along a highlighted path (usually the longest path found by
// the metrics package) are drawn bold, and flows taking part in a crossing
// can be marked as well:
//
//	dot := render.ToDOT(d, render.Options{
//		HighlightPath:  report.LongestPath,
//		CrossingFlows:  render.CrossingFlows(metrics.Crossings(d)),
//	})
//	svg, err := render.RenderSVG(ctx, dot)
//
// SVG rendering runs in-process through [github.com/goccy/go-graphviz].
// [ToPDF] and [ToPNG] convert the SVG with the external rsvg-convert tool
// from librsvg.
package render
