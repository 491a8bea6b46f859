// Package testutil provides shared helpers for building and asserting on
// market graphs in tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/vanderheijden86/marketgraph/pkg/model"
)

// Node builds a minimal valid node.
func Node(id string) model.Node {
	return model.Node{
		ID:         id,
		Name:       "Market " + id,
		Group:      "Test",
		Volatility: 0.5,
		Volume:     1000,
		LastUpdate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Conn builds a connection with the given correlation.
func Conn(src, dst string, correlation float64) model.Connection {
	return model.Connection{Source: src, Target: dst, Correlation: correlation, Pressure: 0.5}
}

// Graph builds a graph from node IDs and connections.
func Graph(ids []string, conns ...model.Connection) *model.GraphData {
	g := &model.GraphData{Connections: conns}
	for _, id := range ids {
		g.Nodes = append(g.Nodes, Node(id))
	}
	return g
}

// LineGraph builds a path graph a-b-c-... over n nodes with the given
// correlation on each edge.
func LineGraph(n int, correlation float64) *model.GraphData {
	g := &model.GraphData{}
	for i := 0; i < n; i++ {
		g.Nodes = append(g.Nodes, Node(fmt.Sprintf("n%d", i)))
		if i > 0 {
			g.Connections = append(g.Connections,
				Conn(fmt.Sprintf("n%d", i-1), fmt.Sprintf("n%d", i), correlation))
		}
	}
	return g
}

// AssertNoDuplicateIDs verifies all node IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, g *model.GraphData) {
	t.Helper()
	seen := make(map[string]bool)
	for _, n := range g.Nodes {
		if seen[n.ID] {
			t.Errorf("duplicate node ID: %s", n.ID)
		}
		seen[n.ID] = true
	}
}

// AssertNoDanglingRefs verifies every connection and hot trade references
// only nodes present in the graph.
func AssertNoDanglingRefs(t *testing.T, g *model.GraphData) {
	t.Helper()
	ids := g.NodeIDs()
	for _, c := range g.Connections {
		if !ids[c.Source] {
			t.Errorf("connection references missing source %s", c.Source)
		}
		if !ids[c.Target] {
			t.Errorf("connection references missing target %s", c.Target)
		}
	}
	for _, h := range g.HotTrades {
		for _, id := range h.RelatedNodes {
			if !ids[id] {
				t.Errorf("hot trade %s references missing node %s", h.ID, id)
			}
		}
	}
}

// AssertValid verifies the graph passes structural validation.
func AssertValid(t *testing.T, g *model.GraphData) {
	t.Helper()
	if err := g.Validate(); err != nil {
		t.Errorf("graph invalid: %v", err)
	}
}
