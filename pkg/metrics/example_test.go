package metrics_test

import (
	"fmt"

	"github.com/matzehuels/layoutmetrics/pkg/diagram"
	"github.com/matzehuels/layoutmetrics/pkg/geometry"
	"github.com/matzehuels/layoutmetrics/pkg/metrics"
)

func ExampleCountCrossings() {
	d := diagram.New("x")
	for _, id := range []string{"a", "b", "c", "d"} {
		_ = d.AddNode(diagram.Node{ID: id})
	}
	_ = d.AddFlow(diagram.Flow{ID: "f1", SourceID: "a", TargetID: "b",
		Waypoints: []geometry.Point{{X: 0, Y: 0}, {X: 4, Y: 4}}})
	_ = d.AddFlow(diagram.Flow{ID: "f2", SourceID: "c", TargetID: "d",
		Waypoints: []geometry.Point{{X: 0, Y: 4}, {X: 4, Y: 0}}})

	fmt.Println("crossings:", metrics.CountCrossings(d))
	fmt.Println("segments:", metrics.CountSegments(d))
	// Output:
	// crossings: 1
	// segments: 2
}

func ExampleLongestPath() {
	// start -> review -> approve, and start -> reject
	d := diagram.New("approval")
	for _, id := range []string{"start", "review", "approve", "reject"} {
		_ = d.AddNode(diagram.Node{ID: id})
	}
	wp := []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}
	_ = d.AddFlow(diagram.Flow{ID: "f1", SourceID: "start", TargetID: "review", Waypoints: wp})
	_ = d.AddFlow(diagram.Flow{ID: "f2", SourceID: "review", TargetID: "approve", Waypoints: wp})
	_ = d.AddFlow(diagram.Flow{ID: "f3", SourceID: "start", TargetID: "reject", Waypoints: wp})

	path, n := metrics.LongestPath(d)
	fmt.Println(path.IDs(), n)
	// Output:
	// [start review approve] 3
}
