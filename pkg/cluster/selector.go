// Package cluster maintains the single-node selection and derives the
// highlighted subgraph (the selected market plus its one-hop neighbors)
// together with the per-node and per-edge visual weights renderers apply.
//
// Cluster radius is fixed at one hop. Deeper neighborhoods for dense graphs
// are a possible future option, not something this package guesses at.
package cluster

import (
	"github.com/vanderheijden86/marketgraph/pkg/graph"
	"github.com/vanderheijden86/marketgraph/pkg/model"
)

// Visual-weight constants shared with renderers.
const (
	// FullOpacity is the baseline and cluster-member opacity.
	FullOpacity = 1.0
	// DimOpacity applies to everything outside an active cluster.
	DimOpacity = 0.15
	// SelectedScale is the size emphasis for the selected node only.
	SelectedScale = 1.3
	// BaselineScale applies to every other node.
	BaselineScale = 1.0
)

// State is an immutable selection snapshot. Zero value means no selection.
type State struct {
	// SelectedID is the selected node, empty when nothing is selected.
	SelectedID string
	// NodeIDs is the cluster membership: the selected node plus its direct
	// neighbors. Empty when nothing is selected.
	NodeIDs map[string]bool
	// ConnectionIndices indexes g.Connections entries with both endpoints
	// inside the cluster.
	ConnectionIndices map[int]bool
}

// Active reports whether a selection is in effect.
func (s State) Active() bool {
	return s.SelectedID != ""
}

// Selector translates select-node events into cluster state. Updates are
// transactional: Select returns a fully-formed new State, so observers never
// see a half-built cluster when switching between selections.
type Selector struct {
	g     *model.GraphData
	adj   *graph.AdjacencyIndex
	state State
}

// NewSelector builds a selector over the graph and its adjacency index.
// Rebuild the selector whenever the graph is replaced; it holds derived
// state only.
func NewSelector(g *model.GraphData, adj *graph.AdjacencyIndex) *Selector {
	return &Selector{g: g, adj: adj}
}

// State returns the current selection snapshot.
func (s *Selector) State() State {
	return s.state
}

// Select handles a click on nodeID: selecting the current selection clears
// it, selecting anything else atomically replaces the cluster. Unknown IDs
// clear the selection. The new state is returned.
func (s *Selector) Select(nodeID string) State {
	if nodeID == "" || nodeID == s.state.SelectedID || !s.adj.Contains(nodeID) {
		return s.Clear()
	}
	s.state = s.computeCluster(nodeID)
	return s.state
}

// Clear drops any selection, returning every weight to baseline.
func (s *Selector) Clear() State {
	s.state = State{}
	return s.state
}

// computeCluster derives {nodeID} ∪ neighbors(nodeID) and the edge indices
// fully inside that set.
func (s *Selector) computeCluster(nodeID string) State {
	members := map[string]bool{nodeID: true}
	for n := range s.adj.Neighbors(nodeID) {
		members[n] = true
	}
	edges := make(map[int]bool)
	for i, c := range s.g.Connections {
		if members[c.Source] && members[c.Target] {
			edges[i] = true
		}
	}
	return State{SelectedID: nodeID, NodeIDs: members, ConnectionIndices: edges}
}

// NodeOpacity returns the display opacity for a node under the given state.
// Pure function of its inputs.
func NodeOpacity(st State, nodeID string) float64 {
	if !st.Active() || st.NodeIDs[nodeID] {
		return FullOpacity
	}
	return DimOpacity
}

// NodeScale returns the display scale for a node: the selected node gets
// the emphasis multiplier, everything else stays at baseline.
func NodeScale(st State, nodeID string) float64 {
	if st.Active() && nodeID == st.SelectedID {
		return SelectedScale
	}
	return BaselineScale
}

// EdgeOpacity returns the display opacity for the connection at index i.
func EdgeOpacity(st State, i int) float64 {
	if !st.Active() || st.ConnectionIndices[i] {
		return FullOpacity
	}
	return DimOpacity
}
