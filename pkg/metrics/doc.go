// Package metrics computes layout-quality metrics for process diagrams.
//
// # Metrics
//
// Three independent measurements are provided, each a pure function of a
// [diagram.Diagram] snapshot:
//
//   - [CountCrossings]: pairs of flow segments that touch or cross, excluding
//     pairs that share an exact endpoint
//   - [CountSegments]: total number of straight segments across all flows
//   - [LongestPath]: the longest simple path, by node count, from a root
//     (a node without incoming flows) to a node without outgoing flows
//
// [Analyze] runs all three concurrently and collects them in a [Report].
//
// # Crossings
//
// Every flow is split into segments with [Segments]. Each unordered pair of
// segments is compared exactly once, so n segments cost n(n-1)/2 intersection
// tests. There is no spatial index. A transversal crossing and a collinear
// overlap count the same.
//
// Segments that share an endpoint are never counted. Consecutive segments of
// one flow always share an endpoint, as do flows that leave or enter the same
// node at the same docking point. Endpoint comparison is exact float equality,
// so two flows docking one ulp apart will be counted as crossing.
//
// # Longest Path
//
// The search starts at every root in diagram order and explores outgoing
// flows in order. A target already on the current path is skipped; nodes are
// not marked globally, so a node can appear on different branches. At each
// node the strictly longest branch wins and the first one found wins ties.
// A branch that runs into only already-visited targets contributes nothing.
//
// The search is exponential in the worst case. [LongestPathContext] accepts a
// context so callers can bound it. A diagram without roots yields an empty
// path of length 0.
package metrics
