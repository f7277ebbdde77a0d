package ui

import "math"

// motionPhase identifies the current owner of the offset. Drag handlers
// mutate the offset only while dragging; Step mutates it only while
// coasting. The phase is the single ownership token, so no other
// synchronization is needed on the game loop.
type motionPhase int

const (
	phaseIdle motionPhase = iota
	phaseDragging
	phaseCoasting
)

// Vec is a 2D vector in screen pixels.
type Vec struct {
	X, Y float64
}

// Bounds is the legal offset range for the content translation:
// [MinX, 0] on the X axis and [MinY, 0] on the Y axis.
type Bounds struct {
	MinX, MinY float64
}

// BoundsFor derives the legal offset range from the current viewport and
// content extents. Content smaller than the viewport on an axis pins the
// offset to zero on that axis. Zero or missing extents degrade to a
// zero-range bounds rather than producing invalid offsets.
func BoundsFor(viewportW, viewportH, contentW, contentH, padY float64) Bounds {
	return Bounds{
		MinX: math.Min(0, viewportW-contentW),
		MinY: math.Min(0, viewportH-contentH-padY),
	}
}

// Clamp saturates a proposed offset into the legal range. It never
// rejects or wraps; an arbitrarily out-of-range proposal lands on the
// nearest edge.
func Clamp(p Vec, b Bounds) Vec {
	return Vec{
		X: math.Max(b.MinX, math.Min(0, p.X)),
		Y: math.Max(b.MinY, math.Min(0, p.Y)),
	}
}

// MotionConfig holds the coasting tunables.
type MotionConfig struct {
	// Friction is the fraction of velocity retained per coast step.
	// Must be in (0, 1); out-of-range values fall back to the default.
	Friction float64
	// StopThreshold is the per-axis speed, in pixels per step, below
	// which coasting ends.
	StopThreshold float64
}

// DefaultMotionConfig returns the standard coasting tunables: 10% of the
// velocity is lost per step, and motion under half a pixel per step on
// both axes counts as at rest.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		Friction:      0.9,
		StopThreshold: 0.5,
	}
}

// Motion converts pointer input into a clamped 2D content offset, and
// coasts the offset under exponential friction after the pointer is
// released. All methods must be called from the game loop; Motion relies
// on Ebiten's one-Update-per-frame model instead of its own scheduler,
// so one Step call corresponds to one display refresh.
type Motion struct {
	cfg   MotionConfig
	phase motionPhase

	offset   Vec
	velocity Vec

	// Last raw pointer position, used to compute the per-move
	// displacement. Only meaningful while dragging.
	lastX, lastY float64
}

// NewMotion creates a motion controller. Zero-value or out-of-range
// config fields are replaced with defaults.
func NewMotion(cfg MotionConfig) *Motion {
	def := DefaultMotionConfig()
	if cfg.Friction <= 0 || cfg.Friction >= 1 {
		cfg.Friction = def.Friction
	}
	if cfg.StopThreshold <= 0 {
		cfg.StopThreshold = def.StopThreshold
	}
	return &Motion{cfg: cfg}
}

// Offset returns the current content translation. Both components are
// always within the most recently applied bounds.
func (m *Motion) Offset() Vec {
	return m.offset
}

// Dragging reports whether a pointer gesture currently owns the offset.
func (m *Motion) Dragging() bool {
	return m.phase == phaseDragging
}

// Coasting reports whether the offset is moving under momentum.
func (m *Motion) Coasting() bool {
	return m.phase == phaseCoasting
}

// PointerDown begins a drag gesture at the given pointer position. Any
// in-flight coasting is cancelled before the gesture takes ownership, so
// there is never a pending coast step once a drag is active.
func (m *Motion) PointerDown(x, y float64) {
	m.phase = phaseDragging
	m.velocity = Vec{}
	m.lastX, m.lastY = x, y
}

// PointerMove applies the displacement since the last pointer position
// to the offset, clamped into b, and records that displacement as the
// current velocity. The velocity is deliberately the raw last-move
// displacement, not a smoothed average. No-op unless dragging.
// It reports whether the offset changed.
func (m *Motion) PointerMove(x, y float64, b Bounds) bool {
	if m.phase != phaseDragging {
		return false
	}
	dx := x - m.lastX
	dy := y - m.lastY
	old := m.offset
	m.offset = Clamp(Vec{X: m.offset.X + dx, Y: m.offset.Y + dy}, b)
	m.velocity = Vec{X: dx, Y: dy}
	m.lastX, m.lastY = x, y
	return m.offset != old
}

// PointerUp ends the drag gesture and hands the last-known velocity to
// the coasting simulation. The offset itself is untouched. Calling it
// with no gesture active is a no-op, so a stray release is harmless.
// A gesture with zero net movement still enters coasting; the first
// Step observes the sub-threshold velocity and stops immediately.
func (m *Motion) PointerUp() {
	if m.phase != phaseDragging {
		return
	}
	m.phase = phaseCoasting
}

// NudgeBy shifts the offset by (dx, dy), clamped into b. It takes
// ownership the same way a drag does: any in-flight coasting is
// cancelled first. Used for wheel scrolling. It reports whether the
// offset changed.
func (m *Motion) NudgeBy(dx, dy float64, b Bounds) bool {
	if m.phase == phaseCoasting {
		m.phase = phaseIdle
		m.velocity = Vec{}
	}
	old := m.offset
	m.offset = Clamp(Vec{X: m.offset.X + dx, Y: m.offset.Y + dy}, b)
	return m.offset != old
}

// Step advances the coasting simulation by one frame: the velocity is
// applied to the offset through the same clamp as dragging, then decays
// by the friction factor on each axis independently. Hitting a boundary
// does not bounce; the offset sticks at the edge while the velocity
// keeps decaying, so one axis can be boundary-limited while the other
// still coasts. Once both components fall to the stop threshold the
// controller returns to idle. No-op unless coasting. It reports whether
// the offset changed.
func (m *Motion) Step(b Bounds) bool {
	if m.phase != phaseCoasting {
		return false
	}
	old := m.offset
	m.offset = Clamp(Vec{X: m.offset.X + m.velocity.X, Y: m.offset.Y + m.velocity.Y}, b)
	m.velocity.X *= m.cfg.Friction
	m.velocity.Y *= m.cfg.Friction
	if math.Abs(m.velocity.X) <= m.cfg.StopThreshold && math.Abs(m.velocity.Y) <= m.cfg.StopThreshold {
		m.phase = phaseIdle
		m.velocity = Vec{}
	}
	return m.offset != old
}
