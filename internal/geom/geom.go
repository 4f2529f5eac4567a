// Package geom holds the small amount of plane geometry shared by the
// diagram packages: polar coordinates on the radial layout and cartesian
// points on the viewport.
package geom

import "math"

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// Polar is a position on the radial layout. Angle 0 points up and grows
// clockwise.
type Polar struct {
	Angle  float64
	Radius float64
}

// Point is a cartesian position in diagram or screen units.
type Point struct {
	X float64
	Y float64
}

// Cartesian converts a polar position to a point around the origin.
func (p Polar) Cartesian() Point {
	return Point{
		X: p.Radius * math.Sin(p.Angle),
		Y: -p.Radius * math.Cos(p.Angle),
	}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Lerp interpolates between a and b; t=0 yields a, t=1 yields b exactly.
func Lerp(a, b Point, t float64) Point {
	if t >= 1 {
		return b
	}
	if t <= 0 {
		return a
	}
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// NormalizeAngle maps any angle into [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	if a >= TwoPi {
		a = 0
	}
	return a
}

// EaseCubicInOut is the easing used by every transition.
func EaseCubicInOut(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return 4 * t * t * t
	default:
		u := 2*t - 2
		return 1 + u*u*u/2
	}
}
