// Package radial computes the polar layout of the visible part of a
// concept hierarchy: depth picks the ring, and each parent splits its arc
// among its visible children by separation weight.
package radial

import (
	"math"

	"github.com/abhisek/orbit/internal/geom"
	"github.com/abhisek/orbit/internal/hierarchy"
)

// Config tunes the layout.
type Config struct {
	// Margin is the share of the half-extent used by the outermost ring.
	Margin float64
	// SiblingSeparation and CousinSeparation are the relative gaps between
	// adjacent nodes sharing a parent and between neighbouring branches.
	SiblingSeparation float64
	CousinSeparation  float64
}

// DefaultConfig returns the standard layout settings.
func DefaultConfig() Config {
	return Config{
		Margin:            0.85,
		SiblingSeparation: 2,
		CousinSeparation:  3,
	}
}

// Arc is the angular allotment of a node, [Start, End).
type Arc struct {
	Start float64
	End   float64
}

// Span returns the angular width of the arc.
func (a Arc) Span() float64 { return a.End - a.Start }

// Mid returns the angle halfway through the arc.
func (a Arc) Mid() float64 { return (a.Start + a.End) / 2 }

// Layout is the result of one layout pass.
type Layout struct {
	Coords   map[string]geom.Polar
	Arcs     map[string]Arc
	RingStep float64
	MaxDepth int
	// Order lists the visible node ids in pre-order.
	Order []string
}

// Engine computes layouts. The zero value is not usable; use New.
type Engine struct {
	cfg Config
}

// New creates an Engine, replacing out-of-range settings with defaults.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Margin <= 0 || cfg.Margin > 1 {
		cfg.Margin = def.Margin
	}
	if cfg.SiblingSeparation <= 0 {
		cfg.SiblingSeparation = def.SiblingSeparation
	}
	if cfg.CousinSeparation < cfg.SiblingSeparation {
		cfg.CousinSeparation = cfg.SiblingSeparation
	}
	return &Engine{cfg: cfg}
}

// Config returns the effective settings.
func (e *Engine) Config() Config { return e.cfg }

// Compute lays out the visible nodes of tree in a width x height viewport.
// It reports false, and computes nothing, when either dimension is not
// positive.
func (e *Engine) Compute(tree *hierarchy.Tree, width, height float64) (Layout, bool) {
	if tree == nil || width <= 0 || height <= 0 {
		return Layout{}, false
	}

	visible := tree.Visible()
	l := Layout{
		Coords: make(map[string]geom.Polar, len(visible)),
		Arcs:   make(map[string]Arc, len(visible)),
		Order:  make([]string, 0, len(visible)),
	}
	for _, n := range visible {
		l.Order = append(l.Order, n.ID)
		if n.Depth > l.MaxDepth {
			l.MaxDepth = n.Depth
		}
	}
	if l.MaxDepth > 0 {
		half := math.Min(width, height) / 2
		l.RingStep = math.Min(half*e.cfg.Margin/float64(l.MaxDepth), half/float64(l.MaxDepth))
	}

	weights := make(map[string]float64, len(visible))
	e.weigh(tree.Root(), weights)

	var place func(n *hierarchy.Node, arc Arc)
	place = func(n *hierarchy.Node, arc Arc) {
		l.Arcs[n.ID] = arc
		if n.Depth == 0 {
			l.Coords[n.ID] = geom.Polar{}
		} else {
			l.Coords[n.ID] = geom.Polar{
				Angle:  geom.NormalizeAngle(arc.Mid()),
				Radius: float64(n.Depth) * l.RingStep,
			}
		}

		children := n.VisibleChildren()
		if len(children) == 0 {
			return
		}
		total := 0.0
		for _, c := range children {
			total += weights[c.ID]
		}
		start, acc := arc.Start, 0.0
		for i, c := range children {
			acc += weights[c.ID]
			end := arc.Start + arc.Span()*acc/total
			if i == len(children)-1 {
				end = arc.End
			}
			place(c, Arc{Start: start, End: end})
			start = end
		}
	}
	place(tree.Root(), Arc{Start: 0, End: geom.TwoPi})

	return l, true
}

// weigh fills in the separation weight of n and its visible descendants.
// A node showing no children needs one sibling gap at its depth; an
// expanded node needs room for all its children plus one cousin gap at the
// next ring.
func (e *Engine) weigh(n *hierarchy.Node, out map[string]float64) float64 {
	depth := math.Max(float64(n.Depth), 1)
	own := e.cfg.SiblingSeparation / depth

	children := n.VisibleChildren()
	if len(children) == 0 {
		out[n.ID] = own
		return own
	}
	sum := 0.0
	for _, c := range children {
		sum += e.weigh(c, out)
	}
	sum += (e.cfg.CousinSeparation - e.cfg.SiblingSeparation) / (depth + 1)
	w := math.Max(own, sum)
	out[n.ID] = w
	return w
}
