package graph

import (
	"sort"

	"github.com/vanderheijden86/marketgraph/pkg/model"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Stats holds structural metrics over the assembled graph. All fields are
// populated by Analyze and read-only afterwards.
type Stats struct {
	NodeCount int
	EdgeCount int
	// Degree is the neighbor count per node ID; it feeds the visual-radius
	// mapping used by exporters and the TUI.
	Degree map[string]int
	// Density is 2E / N(N-1) for the undirected graph, 0 for N < 2.
	Density float64
	// Components lists connected components, largest first, each sorted by
	// node ID.
	Components [][]string
}

// Analyze computes Stats via a gonum undirected graph. The string-keyed
// model is mapped onto dense int64 gonum IDs for the duration of the call.
func Analyze(g *model.GraphData) *Stats {
	stats := &Stats{
		NodeCount: len(g.Nodes),
		Degree:    make(map[string]int, len(g.Nodes)),
	}

	ug := simple.NewUndirectedGraph()
	idOf := make(map[string]int64, len(g.Nodes))
	nameOf := make(map[int64]string, len(g.Nodes))
	for i := range g.Nodes {
		id := int64(i)
		idOf[g.Nodes[i].ID] = id
		nameOf[id] = g.Nodes[i].ID
		ug.AddNode(simple.Node(id))
		stats.Degree[g.Nodes[i].ID] = 0
	}
	for _, c := range g.Connections {
		from, ok := idOf[c.Source]
		to, ok2 := idOf[c.Target]
		if !ok || !ok2 || from == to {
			continue
		}
		ug.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		stats.Degree[c.Source]++
		stats.Degree[c.Target]++
	}
	// Count what the graph actually holds: dangling and self edges were
	// skipped above, so len(g.Connections) can overstate this on
	// unsanitized input.
	stats.EdgeCount = ug.Edges().Len()

	if n := stats.NodeCount; n > 1 {
		stats.Density = float64(2*stats.EdgeCount) / float64(n*(n-1))
	}

	for _, comp := range topo.ConnectedComponents(ug) {
		ids := make([]string, 0, len(comp))
		for _, n := range comp {
			ids = append(ids, nameOf[n.ID()])
		}
		sort.Strings(ids)
		stats.Components = append(stats.Components, ids)
	}
	sort.SliceStable(stats.Components, func(i, j int) bool {
		if len(stats.Components[i]) != len(stats.Components[j]) {
			return len(stats.Components[i]) > len(stats.Components[j])
		}
		return stats.Components[i][0] < stats.Components[j][0]
	})

	return stats
}

// NodeRadius maps a node's degree and volatility to a display radius in
// layout units. This is the documented mapping the collision force and the
// renderers share: base 8, +1.5 per neighbor (capped), +up to 6 for
// volatility.
func NodeRadius(degree int, volatility float64) float64 {
	const (
		base      = 8.0
		perEdge   = 1.5
		maxEdges  = 10
		volaScale = 6.0
	)
	d := degree
	if d > maxEdges {
		d = maxEdges
	}
	if volatility < 0 {
		volatility = 0
	} else if volatility > 1 {
		volatility = 1
	}
	return base + perEdge*float64(d) + volaScale*volatility
}
