package viewport

import (
	"errors"
	"math"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/marketgraph/pkg/layout"
)

func testController() (*Controller, func(d time.Duration)) {
	c := New(Config{Width: 800, Height: 600})
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }
	advance := func(d time.Duration) {
		clock = clock.Add(d)
		c.Tick(clock)
	}
	return c, advance
}

// settle finishes whatever animation is in flight.
func settle(c *Controller, advance func(time.Duration)) {
	advance(10 * time.Second)
	if c.Animating() {
		panic("animation did not settle")
	}
}

func TestUninitializedNoOps(t *testing.T) {
	c := New(Config{})
	if c.Initialized() {
		t.Fatal("zero-size controller should be uninitialized")
	}
	if err := c.ZoomIn(1.2); err != nil {
		t.Errorf("ZoomIn on uninitialized = %v, want nil", err)
	}
	c.ZoomToCluster([]layout.Point{{X: 1, Y: 1}}, 0)
	c.ResetZoom()
	c.Apply(Transform{Scale: 3}, 0)
	if c.Current() != Identity() {
		t.Errorf("transform changed while uninitialized: %+v", c.Current())
	}

	c.Resize(800, 600)
	if !c.Initialized() {
		t.Error("Resize should initialize the controller")
	}
}

func TestZoomRoundTrip(t *testing.T) {
	c, advance := testController()
	if err := c.ZoomIn(1.2); err != nil {
		t.Fatalf("ZoomIn: %v", err)
	}
	settle(c, advance)
	if math.Abs(c.Current().Scale-1.2) > 1e-9 {
		t.Fatalf("scale after zoom in = %v, want 1.2", c.Current().Scale)
	}

	if err := c.ZoomOut(1.2); err != nil {
		t.Fatalf("ZoomOut: %v", err)
	}
	settle(c, advance)
	got := c.Current()
	if math.Abs(got.Scale-1) > 1e-9 {
		t.Errorf("scale after round trip = %v, want 1", got.Scale)
	}
	if math.Abs(got.TranslateX) > 1e-6 || math.Abs(got.TranslateY) > 1e-6 {
		t.Errorf("translate after round trip = (%v, %v), want origin", got.TranslateX, got.TranslateY)
	}
}

func TestZoomStepsCompound(t *testing.T) {
	c, advance := testController()
	// Two quick steps before any frame renders should land on 1.2².
	c.ZoomIn(1.2)
	c.ZoomIn(1.2)
	settle(c, advance)
	if math.Abs(c.Current().Scale-1.44) > 1e-9 {
		t.Errorf("scale = %v, want 1.44", c.Current().Scale)
	}
}

func TestZoomScaleLimit(t *testing.T) {
	c, advance := testController()
	c.Apply(Transform{Scale: 8}, 0)
	if err := c.ZoomIn(1.2); !errors.Is(err, ErrScaleLimit) {
		t.Errorf("ZoomIn at max = %v, want ErrScaleLimit", err)
	}
	// Near the bound the step clamps instead of failing.
	c.Apply(Transform{Scale: 7.5}, 0)
	if err := c.ZoomIn(1.2); err != nil {
		t.Errorf("clamping step should succeed, got %v", err)
	}
	settle(c, advance)
	if c.Current().Scale != 8 {
		t.Errorf("scale = %v, want clamped to 8", c.Current().Scale)
	}

	c.Apply(Transform{Scale: 0.1}, 0)
	if err := c.ZoomOut(1.2); !errors.Is(err, ErrScaleLimit) {
		t.Errorf("ZoomOut at min = %v, want ErrScaleLimit", err)
	}
}

func TestZoomKeepsCenterFixed(t *testing.T) {
	c, advance := testController()
	cx, cy := 400.0, 300.0
	beforeX, beforeY := invert(c.Current(), cx, cy)
	c.ZoomIn(1.5)
	settle(c, advance)
	afterX, afterY := invert(c.Current(), cx, cy)
	if math.Abs(afterX-beforeX) > 1e-6 || math.Abs(afterY-beforeY) > 1e-6 {
		t.Errorf("layout point under viewport center moved: (%v,%v) -> (%v,%v)",
			beforeX, beforeY, afterX, afterY)
	}
}

// invert maps a screen point back to layout space.
func invert(tr Transform, sx, sy float64) (float64, float64) {
	return (sx - tr.TranslateX) / tr.Scale, (sy - tr.TranslateY) / tr.Scale
}

func TestResetZoom(t *testing.T) {
	c, advance := testController()
	c.Apply(Transform{Scale: 3, TranslateX: -200, TranslateY: -100}, 0)
	c.ResetZoom()
	settle(c, advance)
	if c.Current() != Identity() {
		t.Errorf("transform after reset = %+v, want identity", c.Current())
	}
}

func TestZoomToCluster(t *testing.T) {
	c, advance := testController()
	c.ZoomToCluster([]layout.Point{{X: 100, Y: 100}, {X: 300, Y: 200}}, 0)
	settle(c, advance)
	tr := c.Current()
	if tr.Scale <= 1 || tr.Scale > 2.5 {
		t.Errorf("cluster scale = %v, want in (1, 2.5]", tr.Scale)
	}
	// The bbox center should land on the viewport center.
	sx, sy := tr.ApplyTo(200, 150)
	if math.Abs(sx-400) > 1e-6 || math.Abs(sy-300) > 1e-6 {
		t.Errorf("cluster center maps to (%v, %v), want (400, 300)", sx, sy)
	}
}

func TestZoomToClusterSingleNode(t *testing.T) {
	c, advance := testController()
	c.ZoomToCluster([]layout.Point{{X: 50, Y: 50}}, 0)
	settle(c, advance)
	tr := c.Current()
	if math.IsNaN(tr.Scale) || math.IsInf(tr.Scale, 0) {
		t.Fatalf("degenerate bbox produced non-finite scale: %v", tr.Scale)
	}
	if tr.Scale != 2.5 {
		t.Errorf("single-node scale = %v, want capped at 2.5", tr.Scale)
	}
}

func TestZoomToClusterEmpty(t *testing.T) {
	c, _ := testController()
	before := c.Current()
	c.ZoomToCluster(nil, 0)
	if c.Current() != before || c.Animating() {
		t.Error("empty cluster should be a no-op")
	}
}

func TestAnimationInterpolates(t *testing.T) {
	c, advance := testController()
	c.Apply(Transform{Scale: 2}, 300*time.Millisecond)
	if !c.Animating() {
		t.Fatal("expected in-flight animation")
	}
	advance(150 * time.Millisecond)
	mid := c.Current().Scale
	if mid <= 1 || mid >= 2 {
		t.Errorf("midpoint scale = %v, want strictly between 1 and 2", mid)
	}
	advance(200 * time.Millisecond)
	if c.Animating() || c.Current().Scale != 2 {
		t.Errorf("animation should complete at target, got %v", c.Current().Scale)
	}
}

func TestCancelFreezesTransform(t *testing.T) {
	c, advance := testController()
	c.Apply(Transform{Scale: 2}, 300*time.Millisecond)
	advance(150 * time.Millisecond)
	frozen := c.Current()
	c.Cancel()
	c.Cancel() // idempotent
	advance(time.Second)
	if c.Current() != frozen {
		t.Errorf("transform moved after cancel: %+v vs %+v", c.Current(), frozen)
	}
}

func TestOnChangeFires(t *testing.T) {
	c, advance := testController()
	var calls int
	c.OnChange(func(Transform) { calls++ })
	c.Apply(Transform{Scale: 2}, 0)
	if calls != 1 {
		t.Fatalf("instant apply fired %d callbacks, want 1", calls)
	}
	c.Apply(Transform{Scale: 1}, 300*time.Millisecond)
	advance(100 * time.Millisecond)
	advance(100 * time.Millisecond)
	advance(200 * time.Millisecond)
	if calls < 3 {
		t.Errorf("animation fired %d callbacks, want one per tick", calls)
	}
}

func TestClampProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := New(Config{Width: 800, Height: 600})
		target := Transform{
			Scale:      rapid.Float64Range(-10, 100).Draw(t, "scale"),
			TranslateX: rapid.Float64Range(-1e6, 1e6).Draw(t, "tx"),
			TranslateY: rapid.Float64Range(-1e6, 1e6).Draw(t, "ty"),
		}
		c.Apply(target, 0)
		got := c.Current()
		if got.Scale < 0.1 || got.Scale > 8 {
			t.Fatalf("scale %v escaped bounds", got.Scale)
		}
		slackX, slackY := 400.0, 300.0
		loX := 800 - 800*got.Scale - slackX
		loY := 600 - 600*got.Scale - slackY
		if loX <= slackX && (got.TranslateX < loX-1e-9 || got.TranslateX > slackX+1e-9) {
			t.Fatalf("translateX %v escaped [%v, %v]", got.TranslateX, loX, slackX)
		}
		if loY <= slackY && (got.TranslateY < loY-1e-9 || got.TranslateY > slackY+1e-9) {
			t.Fatalf("translateY %v escaped [%v, %v]", got.TranslateY, loY, slackY)
		}
	})
}

func TestZoomToClusterDurationOverride(t *testing.T) {
	c, advance := testController()
	pts := []layout.Point{{X: 100, Y: 100}, {X: 300, Y: 200}}

	c.ZoomToCluster(pts, 2*time.Second)
	advance(1 * time.Second)
	if !c.Animating() {
		t.Fatal("explicit 2s duration finished within 1s")
	}
	advance(1100 * time.Millisecond)
	if c.Animating() {
		t.Error("animation still running past the explicit duration")
	}

	// Zero falls back to the configured cluster-switch duration.
	c.ZoomToCluster([]layout.Point{{X: 500, Y: 400}}, 0)
	advance(c.cfg.ClusterSwitchDuration + 50*time.Millisecond)
	if c.Animating() {
		t.Error("default-duration switch did not settle in ClusterSwitchDuration")
	}
}
