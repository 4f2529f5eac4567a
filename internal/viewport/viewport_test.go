package viewport

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/orbit/internal/geom"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func mounted(t *testing.T) *Controller {
	t.Helper()
	c := New(DefaultConfig())
	require.True(t, c.OnResize(t0, 200, 100))
	return c
}

func TestOnResize_ZeroSizeDefers(t *testing.T) {
	c := New(DefaultConfig())
	assert.False(t, c.OnResize(t0, 0, 0))
	assert.False(t, c.OnResize(t0, 100, 0))
	assert.Equal(t, Uninitialized, c.State())

	c.Reset(t0)
	assert.Equal(t, Uninitialized, c.State())
	c.ApplyUserTransform(Transform{X: 5, K: 2})
	assert.Equal(t, Uninitialized, c.State())
}

func TestOnResize_FirstMountCentersAtInitialScale(t *testing.T) {
	c := mounted(t)
	want := Transform{X: 100, Y: 50, K: 0.8}
	assert.Equal(t, Homed, c.State())
	assert.Equal(t, want, c.Home())
	assert.Equal(t, want, c.At(t0))
	assert.False(t, c.Animating(t0))

	root := c.At(t0).Apply(geom.Point{})
	assert.Equal(t, geom.Point{X: 100, Y: 50}, root)
}

func TestApplyUserTransform_ClampsAndAdjusts(t *testing.T) {
	c := mounted(t)
	got := c.ApplyUserTransform(Transform{X: 3, Y: 4, K: 10})
	assert.Equal(t, Transform{X: 3, Y: 4, K: 4}, got)
	assert.Equal(t, Adjusted, c.State())

	got = c.ApplyUserTransform(Transform{K: 0.001})
	assert.Equal(t, 0.1, got.K)
	assert.Equal(t, got, c.At(t0))
}

func TestReset_RestoresExactHome(t *testing.T) {
	c := mounted(t)
	home := c.Home()
	r := rand.New(rand.NewPCG(1, 2))
	now := t0
	for i := 0; i < 40; i++ {
		now = now.Add(10 * time.Millisecond)
		switch r.IntN(3) {
		case 0:
			c.Pan(now, r.Float64()*50-25, r.Float64()*50-25)
		case 1:
			c.ZoomAt(now, 0.5+r.Float64(), r.Float64()*200, r.Float64()*100)
		default:
			c.ApplyUserTransform(Transform{X: r.Float64() * 300, Y: r.Float64() * 300, K: r.Float64() * 5})
		}
	}
	require.Equal(t, Adjusted, c.State())

	c.Reset(now)
	assert.Equal(t, Homed, c.State())
	assert.True(t, c.Animating(now))
	mid := c.At(now.Add(250 * time.Millisecond))
	assert.NotEqual(t, home, mid)
	assert.Equal(t, home, c.At(now.Add(500*time.Millisecond)))
	assert.Equal(t, home, c.At(now.Add(time.Hour)))
}

func TestReset_InterruptsAndResumesFromCurrent(t *testing.T) {
	c := mounted(t)
	c.ApplyUserTransform(Transform{X: 0, Y: 0, K: 2})
	c.Reset(t0)
	mid := c.At(t0.Add(200 * time.Millisecond))

	// A drag during the animation starts from the animated position.
	got := c.Pan(t0.Add(200*time.Millisecond), 10, 0)
	assert.InDelta(t, mid.X+10, got.X, 1e-9)
	assert.InDelta(t, mid.K, got.K, 1e-9)
	assert.False(t, c.Animating(t0.Add(200*time.Millisecond)))
}

func TestOnResize_RecentersAndDiscardsScale(t *testing.T) {
	c := mounted(t)
	c.ZoomAt(t0, 3, 10, 10)
	require.Equal(t, Adjusted, c.State())

	t1 := t0.Add(time.Second)
	require.True(t, c.OnResize(t1, 400, 300))
	want := Transform{X: 200, Y: 150, K: 1}
	assert.Equal(t, want, c.Home())
	assert.Equal(t, Homed, c.State())
	assert.True(t, c.Animating(t1))
	assert.Equal(t, want, c.At(t1.Add(500*time.Millisecond)))

	// Reset now targets the resized home.
	c.Pan(t1.Add(time.Second), 5, 5)
	c.Reset(t1.Add(time.Second))
	assert.Equal(t, want, c.At(t1.Add(2*time.Second)))
}

func TestOnResize_SameSizeIsNoop(t *testing.T) {
	c := mounted(t)
	c.Pan(t0, 7, 0)
	assert.True(t, c.OnResize(t0, 200, 100))
	assert.Equal(t, Adjusted, c.State())
	assert.False(t, c.Animating(t0))
}

func TestZoomAt_KeepsAnchorFixed(t *testing.T) {
	c := mounted(t)
	before := c.At(t0)
	anchor := geom.Point{X: 150, Y: 30}
	world := before.Invert(anchor)

	after := c.ZoomAt(t0, 2, anchor.X, anchor.Y)
	got := after.Apply(world)
	assert.InDelta(t, anchor.X, got.X, 1e-9)
	assert.InDelta(t, anchor.Y, got.Y, 1e-9)
	assert.InDelta(t, 1.6, after.K, 1e-9)
}

func TestTransform_InvertRoundTrip(t *testing.T) {
	tr := Transform{X: 12, Y: -4, K: 2.5}
	p := geom.Point{X: 3, Y: 7}
	assert.Equal(t, p, tr.Invert(tr.Apply(p)))
}

func TestNew_SanitizesConfig(t *testing.T) {
	cfg := New(Config{MinScale: 1, MaxScale: 0.5, InitialScale: 0.2, ResetDuration: -1}).Config()
	assert.Equal(t, 1.0, cfg.MinScale)
	assert.Equal(t, 4.0, cfg.MaxScale)
	assert.Equal(t, 1.0, cfg.InitialScale)
	assert.Equal(t, time.Duration(0), cfg.ResetDuration)
}
