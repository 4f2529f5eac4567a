package reconcile

import (
	"math"
	"time"

	"github.com/abhisek/orbit/internal/geom"
	"github.com/abhisek/orbit/internal/hierarchy"
)

// DefaultDuration is the transition length shared by every entity.
const DefaultDuration = 400 * time.Millisecond

// NodeState is a visible node as seen by one layout pass.
type NodeState struct {
	ID       string
	ParentID string
	Coord    geom.Polar
}

// LinkKey identifies the edge between a parent and a child.
type LinkKey struct {
	Parent string
	Child  string
}

// Link is an edge with its endpoint coordinates in one pass.
type Link struct {
	Parent geom.Polar
	Child  geom.Polar
}

// Phase is where an entity is in its lifecycle.
type Phase int

const (
	Settled Phase = iota
	Entering
	Updating
	Exiting
)

func (p Phase) String() string {
	switch p {
	case Entering:
		return "enter"
	case Updating:
		return "update"
	case Exiting:
		return "exit"
	default:
		return "settled"
	}
}

// Pass is the edit script produced by one reconciliation.
type Pass struct {
	Nodes Script[string, NodeState]
	Links Script[LinkKey, Link]
}

// NodeFrame is a node sampled at an instant.
type NodeFrame struct {
	ID       string
	ParentID string
	Coord    geom.Polar
	Point    geom.Point
	Phase    Phase
}

// LinkFrame is an edge sampled at an instant. Its endpoints are the sampled
// positions of the two nodes.
type LinkFrame struct {
	Key   LinkKey
	From  geom.Point
	To    geom.Point
	Phase Phase
}

// Frame is the whole scene at an instant.
type Frame struct {
	Nodes []NodeFrame
	Links []LinkFrame
}

type track struct {
	parentID string
	from     geom.Polar
	to       geom.Polar
	start    time.Time
	phase    Phase
}

// Scene holds the entities currently on screen and their transitions.
type Scene struct {
	duration time.Duration
	tracks   map[string]*track
	// order is the render order: the last pass's visible nodes followed by
	// nodes still exiting.
	order []string
	last  []NodeState
}

// NewScene creates an empty scene. A non-positive duration uses
// DefaultDuration.
func NewScene(duration time.Duration) *Scene {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Scene{duration: duration, tracks: make(map[string]*track)}
}

// Duration returns the transition length.
func (s *Scene) Duration() time.Duration { return s.duration }

// Previous returns the snapshot of the last pass.
func (s *Scene) Previous() []NodeState { return s.last }

// FromTree snapshots the visible nodes of tree with their current layout
// coordinates, in pre-order.
func FromTree(tree *hierarchy.Tree) []NodeState {
	visible := tree.Visible()
	out := make([]NodeState, len(visible))
	for i, n := range visible {
		out[i] = NodeState{ID: n.ID, ParentID: n.ParentID(), Coord: n.Coord}
	}
	return out
}

// Reconcile starts the transition from the current scene to next at time
// now. Entities already in flight restart from wherever they are at now,
// so a new pass always supersedes the previous targets. The snapshot next
// becomes the previous one for the following pass.
func (s *Scene) Reconcile(now time.Time, next []NodeState) Pass {
	prev := s.last
	nodeScript := Diff(nodeItems(prev), nodeItems(next))
	linkScript := Diff(linkItems(prev), linkItems(next))

	prevByID := indexStates(prev)
	nextByID := indexStates(next)

	current := make(map[string]geom.Polar, len(s.tracks))
	for id, tr := range s.tracks {
		current[id] = s.sample(tr, now)
	}
	lastKnown := func(id string) (geom.Polar, bool) {
		if c, ok := current[id]; ok {
			return c, true
		}
		if st, ok := prevByID[id]; ok {
			return st.Coord, true
		}
		return geom.Polar{}, false
	}

	tracks := make(map[string]*track, len(next)+len(nodeScript.Exit))
	order := make([]string, 0, len(next)+len(nodeScript.Exit))

	for _, it := range nodeScript.Enter {
		st := it.Value
		from, ok := current[st.ID]
		if !ok {
			from = s.origin(st, prevByID, nextByID, lastKnown)
		}
		tracks[st.ID] = &track{parentID: st.ParentID, from: from, to: st.Coord, start: now, phase: Entering}
	}
	for _, ch := range nodeScript.Update {
		st := ch.Next
		from, ok := current[st.ID]
		if !ok {
			from = ch.Prev.Coord
		}
		phase := Updating
		if from == st.Coord {
			phase = Settled
		}
		tracks[st.ID] = &track{parentID: st.ParentID, from: from, to: st.Coord, start: now, phase: phase}
	}
	for _, st := range next {
		order = append(order, st.ID)
	}

	for _, it := range nodeScript.Exit {
		st := it.Value
		from, ok := current[st.ID]
		if !ok {
			from = st.Coord
		}
		tracks[st.ID] = &track{parentID: st.ParentID, from: from, to: exitTarget(st, prevByID, nextByID), start: now, phase: Exiting}
		order = append(order, st.ID)
	}

	// Nodes still finishing an earlier exit keep going to their target.
	for _, id := range s.order {
		tr := s.tracks[id]
		if tr == nil || tr.phase != Exiting {
			continue
		}
		if _, placed := tracks[id]; placed {
			continue
		}
		if s.finished(tr, now) {
			continue
		}
		tracks[id] = tr
		order = append(order, id)
	}

	s.tracks = tracks
	s.order = order
	s.last = next

	return Pass{Nodes: nodeScript, Links: linkScript}
}

// origin is where an entering node starts: the last known position of its
// nearest ancestor that was already on screen, else the root's.
func (s *Scene) origin(st NodeState, prevByID, nextByID map[string]NodeState, lastKnown func(string) (geom.Polar, bool)) geom.Polar {
	for pid := st.ParentID; pid != ""; {
		if _, wasShown := prevByID[pid]; wasShown {
			if c, ok := lastKnown(pid); ok {
				return c
			}
		}
		p, ok := nextByID[pid]
		if !ok {
			break
		}
		pid = p.ParentID
	}
	for id, p := range nextByID {
		if p.ParentID == "" {
			if c, ok := lastKnown(id); ok {
				return c
			}
			return p.Coord
		}
	}
	return geom.Polar{}
}

// exitTarget is the new position of the nearest ancestor that is still
// visible, or the centre if none is.
func exitTarget(st NodeState, prevByID, nextByID map[string]NodeState) geom.Polar {
	for pid := st.ParentID; pid != ""; {
		if a, ok := nextByID[pid]; ok {
			return a.Coord
		}
		p, ok := prevByID[pid]
		if !ok {
			break
		}
		pid = p.ParentID
	}
	return geom.Polar{}
}

// At samples the scene at now. Nodes whose exit has completed are left out.
func (s *Scene) At(now time.Time) Frame {
	var f Frame
	points := make(map[string]geom.Point, len(s.order))
	phases := make(map[string]Phase, len(s.order))
	for _, id := range s.order {
		tr := s.tracks[id]
		if tr.phase == Exiting && s.finished(tr, now) {
			continue
		}
		c := s.sample(tr, now)
		phase := tr.phase
		if phase != Exiting && s.finished(tr, now) {
			phase = Settled
		}
		p := c.Cartesian()
		points[id] = p
		phases[id] = phase
		f.Nodes = append(f.Nodes, NodeFrame{ID: id, ParentID: tr.parentID, Coord: c, Point: p, Phase: phase})
	}

	for _, n := range f.Nodes {
		if n.ParentID == "" {
			continue
		}
		from, ok := points[n.ParentID]
		if !ok {
			continue
		}
		phase := n.Phase
		if phases[n.ParentID] == Exiting {
			phase = Exiting
		}
		f.Links = append(f.Links, LinkFrame{
			Key:   LinkKey{Parent: n.ParentID, Child: n.ID},
			From:  from,
			To:    n.Point,
			Phase: phase,
		})
	}
	return f
}

// Animating reports whether any transition is still running at now.
func (s *Scene) Animating(now time.Time) bool {
	for _, tr := range s.tracks {
		if tr.phase != Settled && !s.finished(tr, now) {
			return true
		}
	}
	return false
}

// Prune drops nodes whose exit completed before now and settles the rest.
func (s *Scene) Prune(now time.Time) {
	order := s.order[:0]
	for _, id := range s.order {
		tr := s.tracks[id]
		if !s.finished(tr, now) {
			order = append(order, id)
			continue
		}
		if tr.phase == Exiting {
			delete(s.tracks, id)
			continue
		}
		tr.from = tr.to
		tr.phase = Settled
		order = append(order, id)
	}
	s.order = order
}

// Has reports whether id is in the scene, exiting or not.
func (s *Scene) Has(id string) bool {
	_, ok := s.tracks[id]
	return ok
}

// Len returns the number of entities in the scene, exiting ones included.
func (s *Scene) Len() int { return len(s.order) }

func (s *Scene) finished(tr *track, now time.Time) bool {
	return !now.Before(tr.start.Add(s.duration))
}

func (s *Scene) sample(tr *track, now time.Time) geom.Polar {
	elapsed := now.Sub(tr.start)
	if elapsed >= s.duration || tr.from == tr.to {
		return tr.to
	}
	if elapsed <= 0 {
		return tr.from
	}
	t := geom.EaseCubicInOut(float64(elapsed) / float64(s.duration))
	return interpolate(tr.from, tr.to, t)
}

// interpolate moves between two polar positions, turning the short way
// round. A zero radius carries no direction, so the angle is borrowed from
// the other end.
func interpolate(a, b geom.Polar, t float64) geom.Polar {
	if a.Radius == 0 {
		a.Angle = b.Angle
	}
	if b.Radius == 0 {
		b.Angle = a.Angle
	}
	delta := b.Angle - a.Angle
	if delta > math.Pi {
		delta -= geom.TwoPi
	} else if delta < -math.Pi {
		delta += geom.TwoPi
	}
	return geom.Polar{
		Angle:  geom.NormalizeAngle(a.Angle + delta*t),
		Radius: a.Radius + (b.Radius-a.Radius)*t,
	}
}

func nodeItems(states []NodeState) []Item[string, NodeState] {
	out := make([]Item[string, NodeState], len(states))
	for i, st := range states {
		out[i] = Item[string, NodeState]{Key: st.ID, Value: st}
	}
	return out
}

func linkItems(states []NodeState) []Item[LinkKey, Link] {
	byID := indexStates(states)
	out := make([]Item[LinkKey, Link], 0, len(states))
	for _, st := range states {
		p, ok := byID[st.ParentID]
		if !ok {
			continue
		}
		out = append(out, Item[LinkKey, Link]{
			Key:   LinkKey{Parent: st.ParentID, Child: st.ID},
			Value: Link{Parent: p.Coord, Child: st.Coord},
		})
	}
	return out
}

func indexStates(states []NodeState) map[string]NodeState {
	m := make(map[string]NodeState, len(states))
	for _, st := range states {
		m[st.ID] = st
	}
	return m
}
