// Package viewport owns the pan/zoom transform applied on top of the radial
// scene: the initial centring, user gestures, reset and resize.
package viewport

import (
	"math"
	"time"

	"github.com/abhisek/orbit/internal/geom"
)

// Transform maps diagram coordinates to viewport coordinates:
// screen = p*K + (X, Y).
type Transform struct {
	X float64
	Y float64
	K float64
}

// Identity is the transform that changes nothing.
var Identity = Transform{K: 1}

// Apply maps a diagram point into the viewport.
func (t Transform) Apply(p geom.Point) geom.Point {
	return geom.Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a viewport point back into diagram coordinates.
func (t Transform) Invert(p geom.Point) geom.Point {
	return geom.Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

func lerp(a, b Transform, t float64) Transform {
	return Transform{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		K: a.K + (b.K-a.K)*t,
	}
}

// State is the controller's lifecycle state.
type State int

const (
	Uninitialized State = iota
	Homed
	Adjusted
)

func (s State) String() string {
	switch s {
	case Homed:
		return "homed"
	case Adjusted:
		return "adjusted"
	default:
		return "uninitialized"
	}
}

// Config tunes the controller.
type Config struct {
	MinScale float64
	MaxScale float64
	// InitialScale is the home scale on first mount.
	InitialScale float64
	// ResizeScale is the home scale after a resize. The user's scale is
	// not carried over.
	ResizeScale    float64
	ResetDuration  time.Duration
	ResizeDuration time.Duration
}

// DefaultConfig returns the standard viewport settings.
func DefaultConfig() Config {
	return Config{
		MinScale:       0.1,
		MaxScale:       4,
		InitialScale:   0.8,
		ResizeScale:    1,
		ResetDuration:  500 * time.Millisecond,
		ResizeDuration: 500 * time.Millisecond,
	}
}

type animation struct {
	from     Transform
	to       Transform
	start    time.Time
	duration time.Duration
}

// Controller holds one transform. It is not safe for concurrent use; the
// host's event loop serializes every call.
type Controller struct {
	cfg     Config
	state   State
	width   float64
	height  float64
	home    Transform
	current Transform
	anim    *animation
}

// New creates a controller in the Uninitialized state.
func New(cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.MinScale <= 0 {
		cfg.MinScale = def.MinScale
	}
	if cfg.MaxScale < cfg.MinScale {
		cfg.MaxScale = math.Max(def.MaxScale, cfg.MinScale)
	}
	if cfg.InitialScale <= 0 {
		cfg.InitialScale = def.InitialScale
	}
	if cfg.ResizeScale <= 0 {
		cfg.ResizeScale = def.ResizeScale
	}
	if cfg.ResetDuration < 0 {
		cfg.ResetDuration = 0
	}
	if cfg.ResizeDuration < 0 {
		cfg.ResizeDuration = 0
	}
	c := &Controller{cfg: cfg, current: Identity}
	c.cfg.InitialScale = c.clamp(cfg.InitialScale)
	c.cfg.ResizeScale = c.clamp(cfg.ResizeScale)
	return c
}

// Config returns the effective settings.
func (c *Controller) Config() Config { return c.cfg }

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Size returns the last nonzero viewport size.
func (c *Controller) Size() (width, height float64) { return c.width, c.height }

// Home returns the transform that Reset returns to.
func (c *Controller) Home() Transform { return c.home }

// OnResize reacts to a container size change. The first nonzero size mounts
// the controller at the initial scale with no animation. Later changes
// compute a new home centred on the new size and animate to it. A zero
// dimension is ignored. It reports whether the size was accepted.
func (c *Controller) OnResize(now time.Time, width, height float64) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if c.state == Uninitialized {
		c.width, c.height = width, height
		c.home = c.centered(c.cfg.InitialScale)
		c.current = c.home
		c.anim = nil
		c.state = Homed
		return true
	}
	if width == c.width && height == c.height {
		return true
	}
	c.width, c.height = width, height
	c.home = c.centered(c.cfg.ResizeScale)
	c.animateTo(now, c.home, c.cfg.ResizeDuration)
	c.state = Homed
	return true
}

// ApplyUserTransform replaces the transform immediately, clamping the
// scale. Any running animation is dropped.
func (c *Controller) ApplyUserTransform(t Transform) Transform {
	if c.state == Uninitialized {
		return c.current
	}
	t.K = c.clamp(t.K)
	c.anim = nil
	c.current = t
	c.state = Adjusted
	return t
}

// Pan shifts the transform by (dx, dy) viewport units.
func (c *Controller) Pan(now time.Time, dx, dy float64) Transform {
	t := c.At(now)
	t.X += dx
	t.Y += dy
	return c.ApplyUserTransform(t)
}

// ZoomAt scales by factor while keeping the viewport point (px, py) fixed.
func (c *Controller) ZoomAt(now time.Time, factor, px, py float64) Transform {
	t := c.At(now)
	if factor <= 0 {
		return t
	}
	k := c.clamp(t.K * factor)
	anchor := t.Invert(geom.Point{X: px, Y: py})
	return c.ApplyUserTransform(Transform{
		X: px - anchor.X*k,
		Y: py - anchor.Y*k,
		K: k,
	})
}

// Reset animates back to the home transform.
func (c *Controller) Reset(now time.Time) {
	if c.state == Uninitialized {
		return
	}
	c.animateTo(now, c.home, c.cfg.ResetDuration)
	c.state = Homed
}

// At returns the transform at now. Once an animation has run its course
// the exact target is returned.
func (c *Controller) At(now time.Time) Transform {
	a := c.anim
	if a == nil {
		return c.current
	}
	elapsed := now.Sub(a.start)
	if elapsed >= a.duration {
		return a.to
	}
	if elapsed <= 0 {
		return a.from
	}
	return lerp(a.from, a.to, geom.EaseCubicInOut(float64(elapsed)/float64(a.duration)))
}

// Animating reports whether a reset or resize animation is running at now.
func (c *Controller) Animating(now time.Time) bool {
	return c.anim != nil && now.Sub(c.anim.start) < c.anim.duration
}

func (c *Controller) animateTo(now time.Time, target Transform, d time.Duration) {
	from := c.At(now)
	c.current = target
	if d <= 0 {
		c.anim = nil
		return
	}
	c.anim = &animation{from: from, to: target, start: now, duration: d}
}

func (c *Controller) centered(k float64) Transform {
	return Transform{X: c.width / 2, Y: c.height / 2, K: k}
}

func (c *Controller) clamp(k float64) float64 {
	if math.IsNaN(k) {
		return c.cfg.MinScale
	}
	return math.Min(c.cfg.MaxScale, math.Max(c.cfg.MinScale, k))
}
