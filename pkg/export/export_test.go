package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/marketgraph/pkg/cluster"
	"github.com/vanderheijden86/marketgraph/pkg/graph"
	"github.com/vanderheijden86/marketgraph/pkg/testutil"
)

func TestSaveSnapshotSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.svg")
	g := testutil.Graph([]string{"a", "b", "c"},
		testutil.Conn("a", "b", 0.9),
		testutil.Conn("b", "c", 0.5),
	)

	err := SaveSnapshot(SnapshotOptions{
		Path:     path,
		Title:    "Correlation snapshot",
		Graph:    g,
		MaxTicks: 50,
		DataHash: graph.DataHash(g),
	})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	doc := string(data)
	if !strings.Contains(doc, "<svg") {
		t.Error("output is not SVG")
	}
	if !strings.Contains(doc, "Correlation snapshot") {
		t.Error("title missing from summary block")
	}
	if strings.Count(doc, "<circle") < 3 {
		t.Errorf("expected a circle per market, got %d", strings.Count(doc, "<circle"))
	}
}

func TestSaveSnapshotPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.png")
	g := testutil.Graph([]string{"a", "b"}, testutil.Conn("a", "b", 0.8))

	if err := SaveSnapshot(SnapshotOptions{Path: path, Graph: g, MaxTicks: 50}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// PNG signature.
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Error("output is not PNG")
	}
}

func TestSaveSnapshotInfersFormat(t *testing.T) {
	dir := t.TempDir()
	g := testutil.Graph([]string{"a"})

	bare := filepath.Join(dir, "graph")
	if err := SaveSnapshot(SnapshotOptions{Path: bare, Graph: g, MaxTicks: 10}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if _, err := os.Stat(bare + ".svg"); err != nil {
		t.Error("extensionless path should get .svg appended")
	}

	err := SaveSnapshot(SnapshotOptions{
		Path:   filepath.Join(dir, "graph.bmp"),
		Format: "bmp",
		Graph:  g,
	})
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSaveSnapshotRejectsEmpty(t *testing.T) {
	if err := SaveSnapshot(SnapshotOptions{Path: "x.svg", Graph: nil}); err == nil {
		t.Error("expected error for nil graph")
	}
	if err := SaveSnapshot(SnapshotOptions{Path: "x.svg", Graph: testutil.Graph(nil)}); err == nil {
		t.Error("expected error for empty graph")
	}
	if err := SaveSnapshot(SnapshotOptions{Graph: testutil.Graph([]string{"a"})}); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestSaveSnapshotClusterDimsOutsiders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.svg")
	g := testutil.Graph([]string{"a", "b", "c"},
		testutil.Conn("a", "b", 0.9),
		testutil.Conn("b", "c", 0.5),
	)
	sel := cluster.NewSelector(g, graph.NewAdjacencyIndex(g))
	st := sel.Select("a") // cluster {a, b}; c dims

	if err := SaveSnapshot(SnapshotOptions{Path: path, Graph: g, Cluster: st, MaxTicks: 50}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "0.15") {
		t.Error("dimmed opacity not present in output")
	}
}
