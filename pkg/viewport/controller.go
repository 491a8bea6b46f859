// Package viewport owns the zoom/pan transform applied to the whole graph:
// gesture-driven zoom steps, programmatic zoom-to-cluster, and the animation
// between transforms.
//
// The controller has no scheduler of its own. The host frame loop calls
// Tick with the current time; between an Apply and the animation's end the
// controller interpolates and reports each intermediate transform through
// the change callback. That keeps exactly one tick source per mounted view.
package viewport

import (
	"errors"
	"math"
	"time"

	"github.com/vanderheijden86/marketgraph/pkg/layout"
)

// ErrScaleLimit signals a zoom step that would leave the scale bounds; the
// transform is unchanged. Callers that don't care can ignore it.
var ErrScaleLimit = errors.New("viewport: scale already at bound")

// Transform is the zoom scale and pan offset for display. Identity means
// "unzoomed, unpanned".
type Transform struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

// ApplyTo maps a layout-space point to screen space.
func (t Transform) ApplyTo(x, y float64) (float64, float64) {
	return x*t.Scale + t.TranslateX, y*t.Scale + t.TranslateY
}

// Config sizes and tunes a Controller. Zero values fall back to defaults.
type Config struct {
	Width, Height float64

	MinScale       float64 // default 0.1
	MaxScale       float64 // default 8
	MaxClusterZoom float64 // cap for ZoomToCluster (default 2.5)
	ClusterPadding float64 // bbox expansion in layout units (default 60)
	// PanSlackRatio extends the translate bounds beyond the nominal
	// viewport by this fraction of its size (default 0.5).
	PanSlackRatio float64

	ZoomDuration          time.Duration // zoom in/out/reset (default 300ms)
	ClusterDuration       time.Duration // first zoom-to-cluster (default 750ms)
	ClusterSwitchDuration time.Duration // cluster-to-cluster (default 250ms)
}

func (c Config) withDefaults() Config {
	if c.MinScale <= 0 {
		c.MinScale = 0.1
	}
	if c.MaxScale <= 0 {
		c.MaxScale = 8
	}
	if c.MaxClusterZoom <= 0 {
		c.MaxClusterZoom = 2.5
	}
	if c.ClusterPadding <= 0 {
		c.ClusterPadding = 60
	}
	if c.PanSlackRatio <= 0 {
		c.PanSlackRatio = 0.5
	}
	if c.ZoomDuration <= 0 {
		c.ZoomDuration = 300 * time.Millisecond
	}
	if c.ClusterDuration <= 0 {
		c.ClusterDuration = 750 * time.Millisecond
	}
	if c.ClusterSwitchDuration <= 0 {
		c.ClusterSwitchDuration = 250 * time.Millisecond
	}
	return c
}

// animation is an in-flight eased transition between two transforms.
type animation struct {
	from, to Transform
	start    time.Time
	duration time.Duration
}

// Controller is the zoom/pan state machine. It is not safe for concurrent
// use; drive it from the single UI loop like every other interactive piece.
type Controller struct {
	cfg         Config
	initialized bool
	current     Transform
	anim        *animation
	// clusterFocused tracks whether the current transform came from a
	// cluster zoom, so switching clusters animates faster than entering
	// focus from the neutral view.
	clusterFocused bool
	onChange       func(Transform)
	now            func() time.Time
}

// New builds a controller for the given viewport. With non-positive
// dimensions the controller is uninitialized and every operation is a
// deliberate no-op until Resize provides real bounds.
func New(cfg Config) *Controller {
	cfg = cfg.withDefaults()
	c := &Controller{cfg: cfg, current: Identity(), now: time.Now}
	c.initialized = cfg.Width > 0 && cfg.Height > 0
	return c
}

// OnChange registers the transform-change callback. It fires for every
// intermediate animation frame and for instant applies.
func (c *Controller) OnChange(fn func(Transform)) {
	c.onChange = fn
}

// Current returns the transform as of the last Tick or instant apply.
func (c *Controller) Current() Transform {
	return c.current
}

// Initialized reports whether the controller is attached to a measured
// viewport.
func (c *Controller) Initialized() bool {
	return c.initialized
}

// Resize updates the viewport bounds. The current transform is re-clamped
// against the new bounds but not otherwise changed.
func (c *Controller) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	c.cfg.Width = width
	c.cfg.Height = height
	c.initialized = true
	c.setCurrent(c.clamp(c.current))
}

// ZoomIn multiplies the scale by factor about the viewport center, animated
// over the standard zoom duration. Returns ErrScaleLimit if the scale is
// already pinned at its bound.
func (c *Controller) ZoomIn(factor float64) error {
	return c.zoomBy(factor)
}

// ZoomOut divides the scale by factor about the viewport center.
func (c *Controller) ZoomOut(factor float64) error {
	if factor == 0 {
		return nil
	}
	return c.zoomBy(1 / factor)
}

func (c *Controller) zoomBy(factor float64) error {
	if !c.initialized || factor <= 0 {
		return nil
	}
	from := c.targetOrCurrent()
	newScale := clampFloat(from.Scale*factor, c.cfg.MinScale, c.cfg.MaxScale)
	if newScale == from.Scale {
		return ErrScaleLimit
	}
	// Keep the viewport center fixed while the scale changes.
	cx, cy := c.cfg.Width/2, c.cfg.Height/2
	ratio := newScale / from.Scale
	target := Transform{
		Scale:      newScale,
		TranslateX: cx - (cx-from.TranslateX)*ratio,
		TranslateY: cy - (cy-from.TranslateY)*ratio,
	}
	c.clusterFocused = false
	c.Apply(target, c.cfg.ZoomDuration)
	return nil
}

// ResetZoom animates back to the identity transform.
func (c *Controller) ResetZoom() {
	if !c.initialized {
		return
	}
	c.clusterFocused = false
	c.Apply(Identity(), c.cfg.ZoomDuration)
}

// ZoomToCluster frames the given positions: bounding box plus padding,
// scaled to fit (capped at MaxClusterZoom) and centered. Positions without
// a placed body were already filtered by the caller reading the engine; an
// empty set is a no-op. A non-positive duration picks the configured one:
// ClusterDuration, or the shorter ClusterSwitchDuration when jumping
// straight from one cluster to another.
func (c *Controller) ZoomToCluster(points []layout.Point, duration time.Duration) {
	if !c.initialized || len(points) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	pad := c.cfg.ClusterPadding
	minX, minY = minX-pad, minY-pad
	maxX, maxY = maxX+pad, maxY+pad

	// Padding keeps a degenerate (single-point) box strictly positive, so
	// the fit below never divides by zero.
	bw := maxX - minX
	bh := maxY - minY
	scale := math.Min(c.cfg.Width/bw, c.cfg.Height/bh)
	scale = math.Min(scale, c.cfg.MaxClusterZoom)
	scale = clampFloat(scale, c.cfg.MinScale, c.cfg.MaxScale)

	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	target := Transform{
		Scale:      scale,
		TranslateX: c.cfg.Width/2 - scale*cx,
		TranslateY: c.cfg.Height/2 - scale*cy,
	}

	if duration <= 0 {
		duration = c.cfg.ClusterDuration
		if c.clusterFocused {
			duration = c.cfg.ClusterSwitchDuration
		}
	}
	c.clusterFocused = true
	c.Apply(target, duration)
}

// Apply animates to the clamped target transform over the given duration.
// A non-positive duration applies instantly. Any in-flight animation is
// preempted from its current interpolated value.
func (c *Controller) Apply(target Transform, duration time.Duration) {
	if !c.initialized {
		return
	}
	target = c.clamp(target)
	c.Cancel()
	if duration <= 0 {
		c.setCurrent(target)
		return
	}
	c.anim = &animation{from: c.current, to: target, start: c.now(), duration: duration}
}

// Cancel preempts an in-flight animation, freezing the transform at its
// current interpolated value. Safe to call repeatedly or after completion.
func (c *Controller) Cancel() {
	c.anim = nil
}

// Animating reports whether a transition is in flight.
func (c *Controller) Animating() bool {
	return c.anim != nil
}

// Tick advances an in-flight animation to now and reports whether one is
// still running. The host frame loop calls this every frame.
func (c *Controller) Tick(now time.Time) bool {
	a := c.anim
	if a == nil {
		return false
	}
	t := float64(now.Sub(a.start)) / float64(a.duration)
	if t >= 1 {
		c.anim = nil
		c.setCurrent(a.to)
		return false
	}
	if t < 0 {
		t = 0
	}
	e := easeCubicInOut(t)
	c.setCurrent(Transform{
		Scale:      lerp(a.from.Scale, a.to.Scale, e),
		TranslateX: lerp(a.from.TranslateX, a.to.TranslateX, e),
		TranslateY: lerp(a.from.TranslateY, a.to.TranslateY, e),
	})
	return true
}

// targetOrCurrent returns the animation target when one is in flight, so
// rapid zoom steps compound rather than restart.
func (c *Controller) targetOrCurrent() Transform {
	if c.anim != nil {
		return c.anim.to
	}
	return c.current
}

func (c *Controller) setCurrent(t Transform) {
	c.current = t
	if c.onChange != nil {
		c.onChange(t)
	}
}

// clamp enforces the scale bounds and the extended translate bounds: the
// pan offset may overshoot the nominal viewport by PanSlackRatio of its
// size, preventing panning into unbounded empty space.
func (c *Controller) clamp(t Transform) Transform {
	t.Scale = clampFloat(t.Scale, c.cfg.MinScale, c.cfg.MaxScale)
	slackX := c.cfg.Width * c.cfg.PanSlackRatio
	slackY := c.cfg.Height * c.cfg.PanSlackRatio
	t.TranslateX = clampFloat(t.TranslateX, c.cfg.Width-c.cfg.Width*t.Scale-slackX, slackX)
	t.TranslateY = clampFloat(t.TranslateY, c.cfg.Height-c.cfg.Height*t.Scale-slackY, slackY)
	return t
}

func clampFloat(v, lo, hi float64) float64 {
	if lo > hi {
		// Degenerate bound (scale < 1 shrinks the range past itself); pin
		// to the midpoint.
		return (lo + hi) / 2
	}
	return math.Min(math.Max(v, lo), hi)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeCubicInOut is the standard symmetric cubic easing.
func easeCubicInOut(t float64) float64 {
	t *= 2
	if t < 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}
