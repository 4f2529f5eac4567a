package diagram

import (
	"math"
	"time"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/geom"
	"github.com/abhisek/orbit/internal/reconcile"
	"github.com/abhisek/orbit/internal/search"
	"github.com/abhisek/orbit/internal/viewport"
)

// HitRadius is how far from a marker centre, in viewport units at scale 1,
// a pointer still hits the node.
const HitRadius = 10.0

// Opacities by search state.
const (
	OpacityFull       = 1.0
	OpacityDimmed     = 0.2
	LinkOpacityNormal = 0.6
	LinkOpacityMatch  = 0.9
	LinkOpacityDimmed = 0.1
)

// Style is every visual fact about a node. The flags are independent; a
// node can be dimmed by search and mastered at the same time.
type Style struct {
	Search      search.State
	Mastered    bool
	HasChildren bool
	Collapsed   bool
	Application bool
	Hovered     bool
	Selected    bool
	Focused     bool
	Opacity     float64
	// LabelLeft places the label on the left of the marker, for nodes on
	// the left half of the circle.
	LabelLeft bool
}

// Emphasized reports whether the node is drawn enlarged.
func (s Style) Emphasized() bool { return s.Hovered || s.Focused }

// NodeView is a node ready to draw, in viewport coordinates.
type NodeView struct {
	ID      string
	Name    string
	Concept *concept.Node
	Depth   int
	Coord   geom.Polar
	Point   geom.Point
	Phase   reconcile.Phase
	Style   Style
}

// LinkView is an edge ready to draw, in viewport coordinates.
type LinkView struct {
	Key     reconcile.LinkKey
	From    geom.Point
	To      geom.Point
	Phase   reconcile.Phase
	State   search.LinkState
	Opacity float64
}

// Frame is the diagram at an instant.
type Frame struct {
	Width     float64
	Height    float64
	Transform viewport.Transform
	Nodes     []NodeView
	Links     []LinkView
	Err       error
}

// Node returns the view of node id in the frame.
func (f Frame) Node(id string) (NodeView, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeView{}, false
}

// Frame samples the diagram at now.
func (d *Diagram) Frame(now time.Time) Frame {
	f := Frame{Width: d.width, Height: d.height, Err: d.err}
	if d.tree == nil || d.width <= 0 || d.height <= 0 {
		return f
	}
	t := d.view.At(now)
	f.Transform = t
	sf := d.scene.At(now)

	f.Nodes = make([]NodeView, 0, len(sf.Nodes))
	drawn := make(map[string]bool, len(sf.Nodes))
	for _, sn := range sf.Nodes {
		n, ok := d.lookup(sn.ID)
		if !ok {
			continue
		}
		drawn[sn.ID] = true
		st := d.result.State(sn.ID)
		style := Style{
			Search:      st,
			Mastered:    d.mastered[sn.ID],
			HasChildren: n.HasChildren(),
			Collapsed:   n.IsCollapsed(),
			Application: n.Concept.IsApplication,
			Hovered:     d.ctl.Hovered() == sn.ID,
			Selected:    d.ctl.Selected() == sn.ID,
			Focused:     d.ctl.Focused() == sn.ID,
			Opacity:     OpacityFull,
			LabelLeft:   sn.Coord.Radius > 0 && sn.Coord.Angle >= math.Pi,
		}
		if st == search.Dimmed {
			style.Opacity = OpacityDimmed
		}
		f.Nodes = append(f.Nodes, NodeView{
			ID:      sn.ID,
			Name:    n.Concept.Name,
			Concept: n.Concept,
			Depth:   n.Depth,
			Coord:   sn.Coord,
			Point:   t.Apply(sn.Point),
			Phase:   sn.Phase,
			Style:   style,
		})
	}

	f.Links = make([]LinkView, 0, len(sf.Links))
	for _, sl := range sf.Links {
		if !drawn[sl.Key.Parent] || !drawn[sl.Key.Child] {
			continue
		}
		ls := d.result.Link(sl.Key.Parent, sl.Key.Child)
		op := LinkOpacityNormal
		switch ls {
		case search.BridgesMatch:
			op = LinkOpacityMatch
		case search.LinkDimmed:
			op = LinkOpacityDimmed
		}
		f.Links = append(f.Links, LinkView{
			Key:     sl.Key,
			From:    t.Apply(sl.From),
			To:      t.Apply(sl.To),
			Phase:   sl.Phase,
			State:   ls,
			Opacity: op,
		})
	}
	return f
}
