// Package layout runs the force-directed positioning simulation for the
// market graph. The engine owns a body arena keyed by node ID and is the
// only mutator of position and velocity state for its lifetime; everything
// else reads snapshots or writes through Pin/Unpin.
package layout

import (
	"math"
	"sync"
	"time"

	"github.com/vanderheijden86/marketgraph/pkg/model"
)

// State is the engine lifecycle: Idle until started, Running while the
// scheduler ticks, Stopped once halted. Stopped is terminal; build a new
// engine to simulate again.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Body is a simulated node. Position and velocity are owned by the engine;
// read them through Position/Positions snapshots.
type Body struct {
	ID     string
	X, Y   float64
	VX, VY float64
	// Radius is the collision radius, fixed at construction via the shared
	// node-radius mapping.
	Radius float64

	pinned   bool
	pinX     float64
	pinY     float64
	linkDeg  int
	hasPlace bool // true once the simulation has placed the body at least once
}

// Point is a position snapshot entry.
type Point struct {
	X, Y float64
}

// link is a resolved edge: body pointers bound once at construction so the
// tick loop never looks up IDs.
type link struct {
	a, b     *Body
	distance float64
	strength float64
}

// Config tunes the simulation. Zero values fall back to defaults matching
// the interactive viewer's feel.
type Config struct {
	Width, Height float64

	LinkDistance   float64 // rest length when the edge has none (default 100)
	LinkStrength   float64 // base spring stiffness, scaled by correlation (default 0.5)
	ChargeStrength float64 // repulsion magnitude, applied negatively (default 160)
	ChargeRadius   float64 // max repulsion interaction distance (default 400)
	CollidePadding float64 // extra separation beyond summed radii (default 4)
	CenterStrength float64 // pull toward viewport center (default 0.03)

	Alpha         float64 // initial heat (default 1)
	AlphaMin      float64 // convergence threshold (default 0.001)
	AlphaDecay    float64 // per-tick cooling (default 0.0228)
	VelocityDecay float64 // per-tick velocity damping (default 0.25)

	TickInterval time.Duration // scheduler period (default 16ms)

	// Radius maps a node to its collision radius. Nil falls back to a
	// degree-independent default.
	Radius func(n *model.Node, degree int) float64
}

func (c Config) withDefaults() Config {
	if c.LinkDistance <= 0 {
		c.LinkDistance = 100
	}
	if c.LinkStrength <= 0 {
		c.LinkStrength = 0.5
	}
	if c.ChargeStrength <= 0 {
		c.ChargeStrength = 160
	}
	if c.ChargeRadius <= 0 {
		c.ChargeRadius = 400
	}
	if c.CollidePadding <= 0 {
		c.CollidePadding = 4
	}
	if c.CenterStrength <= 0 {
		c.CenterStrength = 0.03
	}
	if c.Alpha <= 0 {
		c.Alpha = 1
	}
	if c.AlphaMin <= 0 {
		c.AlphaMin = 0.001
	}
	if c.AlphaDecay <= 0 {
		c.AlphaDecay = 0.0228
	}
	if c.VelocityDecay <= 0 {
		c.VelocityDecay = 0.25
	}
	if c.TickInterval <= 0 {
		c.TickInterval = 16 * time.Millisecond
	}
	return c
}

// Engine is the force simulation. All exported methods are safe for
// concurrent use; the tick callback fires outside the lock, after the
// tick's position writes are complete.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	bodies  []*Body
	byID    map[string]*Body
	links   []link
	alpha   float64
	centerX float64
	centerY float64
	state   State
	viable  bool

	onTick func()

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New builds an engine over the graph's nodes and connections. With zero
// nodes or a non-positive viewport the engine is permanently non-viable:
// Start is a no-op and every position query misses. That is a deliberate
// no-op per the error-handling contract, not a failure.
func New(g *model.GraphData, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		cfg:     cfg,
		byID:    make(map[string]*Body),
		alpha:   cfg.Alpha,
		centerX: cfg.Width / 2,
		centerY: cfg.Height / 2,
		state:   StateIdle,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	if g == nil || len(g.Nodes) == 0 || cfg.Width <= 0 || cfg.Height <= 0 {
		return e
	}
	e.viable = true

	degree := make(map[string]int, len(g.Nodes))
	for _, c := range g.Connections {
		degree[c.Source]++
		degree[c.Target]++
	}

	e.bodies = make([]*Body, 0, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if _, dup := e.byID[n.ID]; dup {
			continue // sanitized input should not have these
		}
		radius := 10.0
		if cfg.Radius != nil {
			radius = cfg.Radius(n, degree[n.ID])
		}
		b := &Body{ID: n.ID, Radius: radius, linkDeg: degree[n.ID]}
		e.placeInitial(b, i)
		e.bodies = append(e.bodies, b)
		e.byID[n.ID] = b
	}

	for _, c := range g.Connections {
		a, ok := e.byID[c.Source]
		b, ok2 := e.byID[c.Target]
		if !ok || !ok2 {
			continue
		}
		dist := c.Distance
		if dist <= 0 {
			dist = cfg.LinkDistance
		}
		e.links = append(e.links, link{
			a:        a,
			b:        b,
			distance: dist,
			strength: cfg.LinkStrength * c.Correlation,
		})
	}
	return e
}

// placeInitial seeds bodies on a phyllotaxis spiral around the viewport
// center, the standard deterministic seeding that avoids coincident starts.
func (e *Engine) placeInitial(b *Body, i int) {
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	radius := 12 * math.Sqrt(float64(i)+0.5)
	angle := float64(i) * goldenAngle
	b.X = e.centerX + radius*math.Cos(angle)
	b.Y = e.centerY + radius*math.Sin(angle)
	b.hasPlace = true
}

// Viable reports whether the engine has anything to simulate.
func (e *Engine) Viable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viable
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// OnTick registers the single tick notification. It fires after each tick's
// position writes, outside the engine lock. Must be set before Start.
func (e *Engine) OnTick(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = fn
}

// Start launches the internal scheduler. It is a no-op on a non-viable,
// already-running, or stopped engine. Consumers must not assume the tick
// frequency, only that positions advance until Stop.
func (e *Engine) Start() {
	e.mu.Lock()
	if !e.viable || e.state != StateIdle {
		e.mu.Unlock()
		return
	}
	e.state = StateRunning
	interval := e.cfg.TickInterval
	e.mu.Unlock()

	go func() {
		defer close(e.doneCh)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-e.stopCh:
				return
			case <-ticker.C:
				if !e.Step() {
					return
				}
			}
		}
	}()
}

// Stop halts the simulation. Idempotent and immediately preemptive: safe to
// call twice, or after the simulation cooled down on its own. The engine is
// terminal afterwards.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		wasRunning := e.state == StateRunning
		e.state = StateStopped
		e.mu.Unlock()
		close(e.stopCh)
		if wasRunning {
			<-e.doneCh
		}
	})
}

// Step advances the simulation one tick and fires the tick callback. It
// returns false once the simulation has converged (alpha below minimum) or
// the engine is stopped; convergence transitions the engine to Stopped.
// Step may be driven externally instead of Start for deterministic runs.
func (e *Engine) Step() bool {
	e.mu.Lock()
	if !e.viable || e.state == StateStopped {
		e.mu.Unlock()
		return false
	}
	e.alpha += (0 - e.alpha) * e.cfg.AlphaDecay
	converged := e.alpha < e.cfg.AlphaMin
	if !converged {
		e.tickLocked()
	}
	cb := e.onTick
	if converged {
		e.state = StateStopped
	}
	e.mu.Unlock()

	if !converged && cb != nil {
		cb()
	}
	return !converged
}

// Run drives the simulation synchronously until convergence or maxTicks,
// whichever comes first, and returns the number of ticks executed. Used by
// exporters that want a settled layout without a scheduler.
func (e *Engine) Run(maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		if !e.Step() {
			return i
		}
	}
	return maxTicks
}

// Resize retargets the centering force without recreating the engine, so
// momentum and convergence progress survive a viewport change.
func (e *Engine) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	e.mu.Lock()
	e.cfg.Width = width
	e.cfg.Height = height
	e.centerX = width / 2
	e.centerY = height / 2
	e.mu.Unlock()
}

// Pin fixes a body at (x, y) until Unpin. The simulation treats pinned
// bodies as immovable; other bodies still react to them. Unknown IDs are
// ignored.
func (e *Engine) Pin(id string, x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.byID[id]
	if !ok {
		return
	}
	b.pinned = true
	b.pinX, b.pinY = x, y
	b.X, b.Y = x, y
	b.VX, b.VY = 0, 0
	// Reheat so neighbors re-settle around the new position.
	if e.alpha < 0.3 {
		e.alpha = 0.3
	}
}

// Unpin releases a pinned body; the simulation resumes free movement from
// its last pinned position.
func (e *Engine) Unpin(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.byID[id]; ok {
		b.pinned = false
	}
}

// Position returns the body's position as of the last tick.
func (e *Engine) Position(id string) (Point, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.byID[id]
	if !ok || !b.hasPlace {
		return Point{}, false
	}
	return Point{X: b.X, Y: b.Y}, true
}

// Positions returns a snapshot of every body position. The map is a copy;
// mutating it does not affect the simulation.
func (e *Engine) Positions() map[string]Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]Point, len(e.bodies))
	for _, b := range e.bodies {
		out[b.ID] = Point{X: b.X, Y: b.Y}
	}
	return out
}

// Radius returns the collision radius for id, or zero if unknown.
func (e *Engine) Radius(id string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.byID[id]; ok {
		return b.Radius
	}
	return 0
}

// NodeAt returns the ID of the body whose radius covers the layout-space
// point (x, y), preferring the closest center on overlap. Used for pointer
// hit testing.
func (e *Engine) NodeAt(x, y float64) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	bestID := ""
	bestDist := math.MaxFloat64
	for _, b := range e.bodies {
		dx := b.X - x
		dy := b.Y - y
		d := math.Hypot(dx, dy)
		if d <= b.Radius && d < bestDist {
			bestID = b.ID
			bestDist = d
		}
	}
	return bestID, bestID != ""
}
