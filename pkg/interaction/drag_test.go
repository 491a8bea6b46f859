package interaction

import (
	"testing"

	"github.com/vanderheijden86/marketgraph/pkg/layout"
	"github.com/vanderheijden86/marketgraph/pkg/testutil"
	"github.com/vanderheijden86/marketgraph/pkg/viewport"
)

type fixture struct {
	drag   *DragController
	engine *layout.Engine
	view   *viewport.Controller

	clicked  []string
	bgClicks int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g := testutil.Graph([]string{"a", "b"}, testutil.Conn("a", "b", 0.8))
	engine := layout.New(g, layout.Config{Width: 800, Height: 600})
	engine.Pin("a", 100, 100)
	engine.Pin("b", 400, 400)
	view := viewport.New(viewport.Config{Width: 800, Height: 600})

	f := &fixture{engine: engine, view: view}
	f.drag = NewDragController(engine, view, 5)
	f.drag.OnNodeClick(func(id string) { f.clicked = append(f.clicked, id) })
	f.drag.OnBackgroundClick(func() { f.bgClicks++ })
	return f
}

func TestNodeClickBelowThreshold(t *testing.T) {
	f := newFixture(t)
	f.drag.PointerDown(101, 101)
	f.drag.PointerMove(103, 101) // 2px, under threshold
	f.drag.PointerUp(103, 101)

	if len(f.clicked) != 1 || f.clicked[0] != "a" {
		t.Errorf("clicked = %v, want [a]", f.clicked)
	}
	if f.drag.Dragging() {
		t.Error("click should not leave dragging set")
	}
	// The body stays where it was pinned by the fixture.
	if p, _ := f.engine.Position("a"); p.X != 100 || p.Y != 100 {
		t.Errorf("click moved the node to %+v", p)
	}
}

func TestNodeDragPastThreshold(t *testing.T) {
	f := newFixture(t)
	f.drag.PointerDown(100, 100)
	f.drag.PointerMove(120, 100) // 20px, past threshold
	if !f.drag.Dragging() {
		t.Fatal("expected a committed drag")
	}
	f.drag.PointerMove(160, 140)
	f.drag.PointerUp(160, 140)

	if len(f.clicked) != 0 {
		t.Errorf("drag fired click handlers: %v", f.clicked)
	}
	p, ok := f.engine.Position("a")
	if !ok || p.X != 160 || p.Y != 140 {
		t.Errorf("dragged node at %+v, want (160, 140)", p)
	}
	// Released, not pinned: the simulation should move it again.
	f.engine.Run(30)
	if p2, _ := f.engine.Position("a"); p2 == p {
		t.Error("node stayed pinned after release")
	}
}

func TestBackgroundClick(t *testing.T) {
	f := newFixture(t)
	f.drag.PointerDown(700, 50) // empty space
	f.drag.PointerUp(700, 50)
	if f.bgClicks != 1 {
		t.Errorf("background clicks = %d, want 1", f.bgClicks)
	}
	if len(f.clicked) != 0 {
		t.Errorf("unexpected node clicks: %v", f.clicked)
	}
}

func TestBackgroundDragPans(t *testing.T) {
	f := newFixture(t)
	f.drag.PointerDown(700, 50)
	f.drag.PointerMove(650, 50)
	f.drag.PointerUp(650, 50)

	if f.bgClicks != 0 {
		t.Error("background drag should not fire the click handler")
	}
	if tx := f.view.Current().TranslateX; tx >= 0 {
		t.Errorf("translateX = %v, want negative after leftward pan", tx)
	}
}

func TestDragThresholdRespectsZoom(t *testing.T) {
	f := newFixture(t)
	// Zoom 2x about the origin: node a at layout (100,100) renders at
	// (200,200).
	f.view.Apply(viewport.Transform{Scale: 2}, 0)

	f.drag.PointerDown(200, 200)
	f.drag.PointerMove(220, 220)
	f.drag.PointerUp(220, 220)

	p, _ := f.engine.Position("a")
	if p.X != 110 || p.Y != 110 {
		t.Errorf("drag under zoom landed at %+v, want layout (110, 110)", p)
	}
}

func TestMoveWithoutPressIgnored(t *testing.T) {
	f := newFixture(t)
	f.drag.PointerMove(10, 10)
	f.drag.PointerUp(10, 10)
	if f.bgClicks != 0 || len(f.clicked) != 0 {
		t.Error("events without a press should be ignored")
	}
}
