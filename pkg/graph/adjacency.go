package graph

import (
	"sort"

	"github.com/vanderheijden86/marketgraph/pkg/model"
)

// AdjacencyIndex maps a node ID to the set of its directly connected
// neighbors. It is derived state: rebuild it with NewAdjacencyIndex whenever
// the node or edge set changes, never mutate it in place.
//
// The index is always symmetric regardless of edge storage order — an edge
// (A,B) puts B in A's set and A in B's set.
type AdjacencyIndex struct {
	neighbors map[string]map[string]bool
}

// NewAdjacencyIndex builds the neighbor map in O(N+E).
func NewAdjacencyIndex(g *model.GraphData) *AdjacencyIndex {
	idx := &AdjacencyIndex{neighbors: make(map[string]map[string]bool, len(g.Nodes))}
	for i := range g.Nodes {
		idx.neighbors[g.Nodes[i].ID] = make(map[string]bool)
	}
	for _, c := range g.Connections {
		a, ok := idx.neighbors[c.Source]
		b, ok2 := idx.neighbors[c.Target]
		if !ok || !ok2 {
			continue // dangling edge; Sanitize should have caught it
		}
		a[c.Target] = true
		b[c.Source] = true
	}
	return idx
}

// Neighbors returns the neighbor set of id. The returned map is shared;
// callers must not mutate it.
func (a *AdjacencyIndex) Neighbors(id string) map[string]bool {
	return a.neighbors[id]
}

// NeighborIDs returns the neighbors of id sorted for deterministic output.
func (a *AdjacencyIndex) NeighborIDs(id string) []string {
	set := a.neighbors[id]
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for n := range set {
		ids = append(ids, n)
	}
	sort.Strings(ids)
	return ids
}

// Degree returns the number of direct neighbors of id.
func (a *AdjacencyIndex) Degree(id string) int {
	return len(a.neighbors[id])
}

// Contains reports whether id is a known node.
func (a *AdjacencyIndex) Contains(id string) bool {
	_, ok := a.neighbors[id]
	return ok
}

// Len returns the number of indexed nodes.
func (a *AdjacencyIndex) Len() int {
	return len(a.neighbors)
}
