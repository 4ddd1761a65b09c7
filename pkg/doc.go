// Package pkg holds the libraries behind the layoutmetrics CLI and server.
//
// # Overview
//
// Layoutmetrics scores how readable a process diagram's layout is. A diagram
// is a directed graph whose flows are routed as polylines; three metrics are
// computed from it:
//
//   - crossings: pairs of flow segments that intersect without sharing an endpoint
//   - segments: the total number of straight segments over all flows
//   - longest path: the longest simple path from a node without incoming flows
//
// # Layout
//
//	[geometry]       points, segments, orientation and intersection tests
//	[diagram]        nodes and flows, JSON/TOML import and export
//	[metrics]        the three metrics and the combined Report
//	[pipeline]       cached, time-bounded analysis shared by CLI and server
//	[cache]          null, file and redis caches
//	[store]          report history: memory, MongoDB, PostgreSQL
//	[render]         Graphviz rendering with the longest path highlighted
//	[server]         HTTP API
//	[client]         Go client for the HTTP API
//	[config]         TOML configuration file
//	[errors]         error codes shared by the outer layers
//	[observability]  hooks for analysis, cache and HTTP events
//
// # Data Flow
//
//	diagram file / HTTP body
//	         ↓
//	    [diagram] (validated graph)
//	         ↓
//	    [pipeline] → [cache] hit? ─── yes ──→ report
//	         ↓ no
//	    [metrics] (crossings ∥ segments ∥ longest path)
//	         ↓
//	    report → [store] (optional) → CLI / HTTP response / [render]
//
// # Quick Start
//
//	d, err := diagram.ReadFile("order.json")
//	if err != nil {
//	    return err
//	}
//	crossings := metrics.CountCrossings(d)
//	segments := metrics.CountSegments(d)
//	path, length := metrics.LongestPath(d)
//
// [geometry]: https://pkg.go.dev/github.com/matzehuels/layoutmetrics/pkg/geometry
// [diagram]: https://pkg.go.dev/github.com/matzehuels/layoutmetrics/pkg/diagram
// [metrics]: https://pkg.go.dev/github.com/matzehuels/layoutmetrics/pkg/metrics
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/layoutmetrics/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/layoutmetrics/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/layoutmetrics/pkg/store
// [render]: https://pkg.go.dev/github.com/matzehuels/layoutmetrics/pkg/render
// [server]: https://pkg.go.dev/github.com/matzehuels/layoutmetrics/pkg/server
// [client]: https://pkg.go.dev/github.com/matzehuels/layoutmetrics/pkg/client
// [config]: https://pkg.go.dev/github.com/matzehuels/layoutmetrics/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/layoutmetrics/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/layoutmetrics/pkg/observability
package pkg
