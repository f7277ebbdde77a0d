package ui

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClampIdempotent(t *testing.T) {
	bounds := []Bounds{
		{MinX: 0, MinY: 0},
		{MinX: -1500, MinY: 0},
		{MinX: -1500, MinY: -300},
		{MinX: -0.5, MinY: -12345.6},
	}
	proposals := []Vec{
		{X: 0, Y: 0},
		{X: 100, Y: 250},
		{X: -100, Y: -250},
		{X: -1e9, Y: 1e9},
		{X: -1500, Y: -300},
		{X: -1499.999, Y: 0.001},
	}
	for _, b := range bounds {
		for _, p := range proposals {
			once := Clamp(p, b)
			require.Equal(t, once, Clamp(once, b), "clamp(%v, %v) not idempotent", p, b)
		}
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		b := Bounds{MinX: -rng.Float64() * 5000, MinY: -rng.Float64() * 5000}
		p := Vec{X: (rng.Float64() - 0.5) * 20000, Y: (rng.Float64() - 0.5) * 20000}
		once := Clamp(p, b)
		require.Equal(t, once, Clamp(once, b))
	}
}

func TestClampSaturates(t *testing.T) {
	b := Bounds{MinX: -1500, MinY: -300}

	got := Clamp(Vec{X: -1e12, Y: -1e12}, b)
	require.Equal(t, Vec{X: -1500, Y: -300}, got)

	got = Clamp(Vec{X: 1e12, Y: 1e12}, b)
	require.Equal(t, Vec{X: 0, Y: 0}, got)
}

func TestBoundsForSmallContentPinsAxis(t *testing.T) {
	// Content smaller than the viewport on both axes: no panning at all.
	b := BoundsFor(1000, 800, 600, 300, 32)
	require.Equal(t, Bounds{MinX: 0, MinY: 0}, b)
}

func TestBoundsForZeroExtents(t *testing.T) {
	b := BoundsFor(0, 0, 0, 0, 0)
	require.Equal(t, Bounds{MinX: 0, MinY: 0}, b)
	require.False(t, math.IsNaN(b.MinX))
	require.False(t, math.IsNaN(b.MinY))
}

func TestSmallContentDragIsPinned(t *testing.T) {
	b := BoundsFor(1000, 800, 600, 300, 32)
	m := NewMotion(DefaultMotionConfig())

	m.PointerDown(500, 400)
	m.PointerMove(100, 50, b)
	m.PointerMove(900, 750, b)
	m.PointerUp()
	for m.Coasting() {
		m.Step(b)
	}

	require.Equal(t, Vec{X: 0, Y: 0}, m.Offset())
}

func TestClampedDragScenario(t *testing.T) {
	// Viewport 500x500, content 2000 wide, tallest card 150, padding 32:
	// minX = -1500, minY = min(0, 500-150-32) = 0.
	b := BoundsFor(500, 500, 2000, 150, 32)
	require.Equal(t, Bounds{MinX: -1500, MinY: 0}, b)

	m := NewMotion(DefaultMotionConfig())
	m.PointerDown(3000, 0)
	// Drag left by 3000px total, in 100px moves.
	for x := 2900.0; x >= 0; x -= 100 {
		m.PointerMove(x, 0, b)
	}
	require.Equal(t, Vec{X: -1500, Y: 0}, m.Offset())
}

func TestCoastSettlesAfter29Steps(t *testing.T) {
	b := Bounds{MinX: -10000, MinY: 0}
	m := NewMotion(DefaultMotionConfig())

	m.PointerDown(0, 0)
	m.PointerMove(-500, 0, b) // carry the offset away from the right edge
	m.PointerMove(-490, 0, b) // last move: velocity (10, 0)
	m.PointerUp()
	require.True(t, m.Coasting())

	start := m.Offset()
	steps := 0
	for m.Coasting() {
		m.Step(b)
		steps++
		require.Less(t, steps, 1000, "coasting failed to terminate")
	}
	require.Equal(t, 29, steps)

	// Total coast displacement is the geometric series sum
	// 10 * (1 - 0.9^29) / (1 - 0.9), since nothing clamps along the way.
	want := 10 * (1 - math.Pow(0.9, 29)) / (1 - 0.9)
	require.InDelta(t, want, m.Offset().X-start.X, 1e-9)
	require.Equal(t, 0.0, m.Offset().Y)
}

func TestCoastDecayConvergenceBound(t *testing.T) {
	b := Bounds{MinX: -1e9, MinY: -1e9}
	for _, v0 := range []float64{0.6, 1, 5, 10, 100, 1000} {
		m := NewMotion(DefaultMotionConfig())
		m.PointerDown(0, 0)
		m.PointerMove(-v0, 0, b)
		m.PointerUp()

		bound := int(math.Ceil(math.Log(0.5/v0) / math.Log(0.9)))
		steps := 0
		for m.Coasting() {
			m.Step(b)
			steps++
			require.LessOrEqual(t, steps, bound, "v0=%v exceeded the decay bound", v0)
		}
		require.Equal(t, bound, steps, "v0=%v", v0)
	}
}

func TestZeroVelocityCoastIsNoop(t *testing.T) {
	b := Bounds{MinX: -1000, MinY: -1000}
	m := NewMotion(DefaultMotionConfig())

	m.PointerDown(10, 10)
	m.PointerUp()
	require.True(t, m.Coasting())

	moved := m.Step(b)
	require.False(t, moved, "zero-velocity coast produced motion")
	require.False(t, m.Coasting())
	require.Equal(t, Vec{X: 0, Y: 0}, m.Offset())
}

func TestNewGestureCancelsCoasting(t *testing.T) {
	b := Bounds{MinX: -10000, MinY: -10000}
	m := NewMotion(DefaultMotionConfig())

	m.PointerDown(0, 0)
	m.PointerMove(-40, -40, b)
	m.PointerUp()
	m.Step(b)
	m.Step(b)
	require.True(t, m.Coasting())

	// A new gesture takes ownership before its first mutation.
	m.PointerDown(100, 100)
	require.True(t, m.Dragging())
	require.False(t, m.Coasting())

	// No coast step may fire while the gesture owns the offset.
	before := m.Offset()
	require.False(t, m.Step(b))
	require.Equal(t, before, m.Offset())

	require.True(t, m.PointerMove(90, 100, b))
	require.Equal(t, before.X-10, m.Offset().X)
}

func TestBoundsRespectedThroughGestureAndCoast(t *testing.T) {
	b := Bounds{MinX: -400, MinY: -50}
	inRange := func(o Vec) {
		t.Helper()
		require.GreaterOrEqual(t, o.X, b.MinX)
		require.LessOrEqual(t, o.X, 0.0)
		require.GreaterOrEqual(t, o.Y, b.MinY)
		require.LessOrEqual(t, o.Y, 0.0)
	}

	rng := rand.New(rand.NewSource(7))
	m := NewMotion(DefaultMotionConfig())
	x, y := 0.0, 0.0
	m.PointerDown(x, y)
	inRange(m.Offset())
	for i := 0; i < 200; i++ {
		x += (rng.Float64() - 0.5) * 500
		y += (rng.Float64() - 0.5) * 500
		m.PointerMove(x, y, b)
		inRange(m.Offset())
	}
	m.PointerUp()
	for m.Coasting() {
		m.Step(b)
		inRange(m.Offset())
	}
}

func TestBoundaryLimitedAxisWhileOtherCoasts(t *testing.T) {
	// X has almost no travel, Y has plenty: after release the offset
	// sticks at MinX while Y keeps coasting.
	b := Bounds{MinX: -10, MinY: -10000}
	m := NewMotion(DefaultMotionConfig())

	m.PointerDown(0, 0)
	m.PointerMove(-50, -20, b)
	m.PointerUp()

	m.Step(b)
	require.Equal(t, b.MinX, m.Offset().X)
	require.True(t, m.Coasting())

	yBefore := m.Offset().Y
	m.Step(b)
	require.Equal(t, b.MinX, m.Offset().X, "offset must stick at the boundary, not bounce")
	require.Less(t, m.Offset().Y, yBefore, "free axis must keep coasting")
}

func TestStrayEventsAreNoops(t *testing.T) {
	b := Bounds{MinX: -100, MinY: -100}
	m := NewMotion(DefaultMotionConfig())

	// Move and release with no gesture active.
	require.False(t, m.PointerMove(50, 50, b))
	m.PointerUp()
	require.False(t, m.Coasting())
	require.Equal(t, Vec{X: 0, Y: 0}, m.Offset())

	// Step with nothing coasting.
	require.False(t, m.Step(b))
}

func TestNudgeClampsAndCancelsCoasting(t *testing.T) {
	b := Bounds{MinX: -100, MinY: 0}
	m := NewMotion(DefaultMotionConfig())

	m.PointerDown(0, 0)
	m.PointerMove(-30, 0, b)
	m.PointerUp()
	require.True(t, m.Coasting())

	require.True(t, m.NudgeBy(-1000, 0, b))
	require.False(t, m.Coasting())
	require.Equal(t, Vec{X: -100, Y: 0}, m.Offset())

	// Subsequent steps do nothing: the nudge took ownership.
	require.False(t, m.Step(b))
}

func TestZeroConfigFallsBackToDefaults(t *testing.T) {
	b := Bounds{MinX: -10000, MinY: 0}
	m := NewMotion(MotionConfig{})

	m.PointerDown(0, 0)
	m.PointerMove(-10, 0, b)
	m.PointerMove(0, 0, b)
	m.PointerMove(-10, 0, b) // velocity (-10, 0)
	m.PointerUp()

	steps := 0
	for m.Coasting() {
		m.Step(b)
		steps++
	}
	// Same settle count as the default 0.9/0.5 tunables.
	require.Equal(t, 29, steps)
}
