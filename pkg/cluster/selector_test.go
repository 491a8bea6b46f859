package cluster

import (
	"testing"

	"github.com/vanderheijden86/marketgraph/pkg/graph"
	"github.com/vanderheijden86/marketgraph/pkg/model"
	"github.com/vanderheijden86/marketgraph/pkg/testutil"
)

func newSelector(g *model.GraphData) *Selector {
	return NewSelector(g, graph.NewAdjacencyIndex(g))
}

// Three markets: a-b strongly correlated, b-c weakly. Selecting b pulls in
// both neighbors; selecting a pulls in b but not c.
func TestSelectOneHopCluster(t *testing.T) {
	g := testutil.Graph([]string{"a", "b", "c"},
		testutil.Conn("a", "b", 0.9),
		testutil.Conn("b", "c", 0.5),
	)
	s := newSelector(g)

	st := s.Select("b")
	if st.SelectedID != "b" {
		t.Fatalf("SelectedID = %q, want b", st.SelectedID)
	}
	for _, id := range []string{"a", "b", "c"} {
		if !st.NodeIDs[id] {
			t.Errorf("cluster(b) missing %s", id)
		}
	}
	if len(st.ConnectionIndices) != 2 {
		t.Errorf("cluster(b) edge count = %d, want 2", len(st.ConnectionIndices))
	}

	st = s.Select("a")
	if st.SelectedID != "a" {
		t.Fatalf("SelectedID = %q, want a", st.SelectedID)
	}
	if !st.NodeIDs["a"] || !st.NodeIDs["b"] || st.NodeIDs["c"] {
		t.Errorf("cluster(a) = %v, want {a, b}", st.NodeIDs)
	}
	if len(st.ConnectionIndices) != 1 || !st.ConnectionIndices[0] {
		t.Errorf("cluster(a) edges = %v, want just index 0", st.ConnectionIndices)
	}
}

func TestSelectToggle(t *testing.T) {
	s := newSelector(testutil.LineGraph(3, 0.5))
	s.Select("n1")
	st := s.Select("n1")
	if st.Active() {
		t.Error("re-selecting the selected node should clear")
	}
	if s.State().Active() {
		t.Error("selector state should be cleared after toggle")
	}
}

func TestSelectUnknownClears(t *testing.T) {
	s := newSelector(testutil.LineGraph(3, 0.5))
	s.Select("n1")
	if st := s.Select("ghost"); st.Active() {
		t.Error("unknown ID should clear the selection")
	}
	s.Select("n1")
	if st := s.Select(""); st.Active() {
		t.Error("empty ID should clear the selection")
	}
}

func TestSelectReplacesAtomically(t *testing.T) {
	s := newSelector(testutil.LineGraph(4, 0.5))
	s.Select("n0")
	st := s.Select("n3")
	if st.SelectedID != "n3" {
		t.Fatalf("SelectedID = %q, want n3", st.SelectedID)
	}
	if st.NodeIDs["n0"] || st.NodeIDs["n1"] {
		t.Errorf("old cluster leaked into new state: %v", st.NodeIDs)
	}
}

func TestSelectIsolatedNode(t *testing.T) {
	s := newSelector(testutil.Graph([]string{"a", "b"}))
	st := s.Select("a")
	if len(st.NodeIDs) != 1 || !st.NodeIDs["a"] {
		t.Errorf("isolated cluster = %v, want {a}", st.NodeIDs)
	}
	if len(st.ConnectionIndices) != 0 {
		t.Errorf("isolated cluster has edges: %v", st.ConnectionIndices)
	}
}

func TestVisualWeights(t *testing.T) {
	g := testutil.Graph([]string{"a", "b", "c"}, testutil.Conn("a", "b", 0.9), testutil.Conn("b", "c", 0.5))
	s := newSelector(g)

	// No selection: everything at baseline.
	idle := s.State()
	if NodeOpacity(idle, "c") != FullOpacity || NodeScale(idle, "c") != BaselineScale || EdgeOpacity(idle, 1) != FullOpacity {
		t.Error("baseline weights wrong without a selection")
	}

	st := s.Select("a")
	if NodeOpacity(st, "a") != FullOpacity || NodeOpacity(st, "b") != FullOpacity {
		t.Error("cluster members should stay at full opacity")
	}
	if NodeOpacity(st, "c") != DimOpacity {
		t.Errorf("outsider opacity = %v, want %v", NodeOpacity(st, "c"), DimOpacity)
	}
	if NodeScale(st, "a") != SelectedScale {
		t.Errorf("selected scale = %v, want %v", NodeScale(st, "a"), SelectedScale)
	}
	if NodeScale(st, "b") != BaselineScale {
		t.Error("neighbors keep baseline scale")
	}
	if EdgeOpacity(st, 0) != FullOpacity {
		t.Error("in-cluster edge should be full opacity")
	}
	if EdgeOpacity(st, 1) != DimOpacity {
		t.Error("out-of-cluster edge should dim")
	}
}
