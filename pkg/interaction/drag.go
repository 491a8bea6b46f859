// Package interaction turns the raw pointer stream into graph intents: a
// press-move-release sequence becomes either a click (selection) or a drag
// (manual reposition pinned into the running simulation). A background drag
// pans the viewport.
package interaction

import (
	"math"

	"github.com/vanderheijden86/marketgraph/pkg/layout"
	"github.com/vanderheijden86/marketgraph/pkg/viewport"
)

// DefaultDragThreshold is the cumulative pointer displacement, in screen
// pixels, past which a press commits to being a drag.
const DefaultDragThreshold = 5.0

// DragController disambiguates clicks from drags. All node writes go
// through the engine's body arena (Pin/Unpin), never a copy, so the drag
// and the simulation cannot diverge.
//
// Not safe for concurrent use; drive it from the UI loop.
type DragController struct {
	engine    *layout.Engine
	view      *viewport.Controller
	threshold float64

	onNodeClick       func(id string)
	onBackgroundClick func()

	pressed  bool
	dragging bool
	nodeID   string // empty for a background press
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
}

// NewDragController wires the controller to the engine whose bodies it
// pins and the viewport whose transform maps screen to layout space.
// A non-positive threshold falls back to the default.
func NewDragController(engine *layout.Engine, view *viewport.Controller, threshold float64) *DragController {
	if threshold <= 0 {
		threshold = DefaultDragThreshold
	}
	return &DragController{engine: engine, view: view, threshold: threshold}
}

// OnNodeClick registers the click handler (selection feed).
func (d *DragController) OnNodeClick(fn func(id string)) {
	d.onNodeClick = fn
}

// OnBackgroundClick registers the background-click handler (deselect feed).
func (d *DragController) OnBackgroundClick(fn func()) {
	d.onBackgroundClick = fn
}

// Dragging reports whether a drag is in progress.
func (d *DragController) Dragging() bool {
	return d.dragging
}

// PointerDown records the press. Whether this becomes a click or a drag is
// decided by later movement, not here. Presses over a node without a
// resolved position fall through to the background.
func (d *DragController) PointerDown(x, y float64) {
	d.pressed = true
	d.dragging = false
	d.startX, d.startY = x, y
	d.lastX, d.lastY = x, y

	lx, ly := d.toLayout(x, y)
	if id, ok := d.engine.NodeAt(lx, ly); ok {
		d.nodeID = id
	} else {
		d.nodeID = ""
	}
}

// PointerMove updates an active press. Once cumulative displacement clears
// the threshold the press commits to a drag: a node press pins the body to
// the pointer from then on, a background press pans the viewport.
func (d *DragController) PointerMove(x, y float64) {
	if !d.pressed {
		return
	}
	if !d.dragging {
		if math.Hypot(x-d.startX, y-d.startY) < d.threshold {
			d.lastX, d.lastY = x, y
			return
		}
		d.dragging = true
	}

	if d.nodeID != "" {
		lx, ly := d.toLayout(x, y)
		d.engine.Pin(d.nodeID, lx, ly)
	} else {
		t := d.view.Current()
		t.TranslateX += x - d.lastX
		t.TranslateY += y - d.lastY
		d.view.Apply(t, 0)
	}
	d.lastX, d.lastY = x, y
}

// PointerUp resolves the gesture: below the threshold it was a click and
// the appropriate handler fires; past it the pin is released and the
// simulation resumes free movement from the dragged position.
func (d *DragController) PointerUp(x, y float64) {
	if !d.pressed {
		return
	}
	d.pressed = false

	if d.dragging {
		d.dragging = false
		if d.nodeID != "" {
			lx, ly := d.toLayout(x, y)
			d.engine.Pin(d.nodeID, lx, ly)
			d.engine.Unpin(d.nodeID)
		}
		d.nodeID = ""
		return
	}

	if d.nodeID != "" {
		if d.onNodeClick != nil {
			d.onNodeClick(d.nodeID)
		}
	} else if d.onBackgroundClick != nil {
		d.onBackgroundClick()
	}
	d.nodeID = ""
}

// toLayout inverts the viewport transform, mapping a screen point into
// layout space.
func (d *DragController) toLayout(x, y float64) (float64, float64) {
	t := d.view.Current()
	if t.Scale == 0 {
		return x, y
	}
	return (x - t.TranslateX) / t.Scale, (y - t.TranslateY) / t.Scale
}
