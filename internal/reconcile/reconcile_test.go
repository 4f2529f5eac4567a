package reconcile

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/geom"
	"github.com/abhisek/orbit/internal/hierarchy"
	"github.com/abhisek/orbit/internal/radial"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func item(k string, v int) Item[string, int] { return Item[string, int]{Key: k, Value: v} }

func TestDiff_Classifies(t *testing.T) {
	prev := []Item[string, int]{item("a", 1), item("b", 2), item("c", 3)}
	next := []Item[string, int]{item("d", 4), item("b", 20), item("a", 10)}

	s := Diff(prev, next)
	assert.Equal(t, []string{"d"}, s.EnterKeys())
	assert.Equal(t, []string{"b", "a"}, s.UpdateKeys())
	assert.Equal(t, []string{"c"}, s.ExitKeys())
	assert.Equal(t, Change[string, int]{Key: "b", Prev: 2, Next: 20}, s.Update[0])
	assert.False(t, s.Empty())
}

func TestDiff_EdgeCases(t *testing.T) {
	tests := []struct {
		name                string
		prev, next          []Item[string, int]
		enter, update, exit []string
	}{
		{"both empty", nil, nil, []string{}, []string{}, []string{}},
		{"all enter", nil, []Item[string, int]{item("a", 1)}, []string{"a"}, []string{}, []string{}},
		{"all exit", []Item[string, int]{item("a", 1)}, nil, []string{}, []string{}, []string{"a"}},
		{"repeated key", []Item[string, int]{item("a", 1), item("a", 2)}, []Item[string, int]{item("a", 3), item("a", 4)}, []string{}, []string{"a"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Diff(tt.prev, tt.next)
			assert.Equal(t, tt.enter, s.EnterKeys())
			assert.Equal(t, tt.update, s.UpdateKeys())
			assert.Equal(t, tt.exit, s.ExitKeys())
		})
	}
}

func TestDiff_Disjoint(t *testing.T) {
	prev := []Item[string, int]{item("a", 1), item("b", 1), item("c", 1), item("e", 1)}
	next := []Item[string, int]{item("b", 1), item("d", 1), item("e", 1), item("f", 1)}
	s := Diff(prev, next)

	seen := map[string]int{}
	for _, k := range s.EnterKeys() {
		seen[k]++
	}
	for _, k := range s.UpdateKeys() {
		seen[k]++
	}
	for _, k := range s.ExitKeys() {
		seen[k]++
	}
	assert.Len(t, seen, 6)
	for k, n := range seen {
		assert.Equal(t, 1, n, "key %s classified %d times", k, n)
	}
}

// fixture lays out A -> {B, C -> {D}} and reconciles it into a scene.
type fixture struct {
	tree   *hierarchy.Tree
	engine *radial.Engine
	scene  *Scene
}

func newFixture(t *testing.T, extra ...*concept.Node) *fixture {
	t.Helper()
	root := &concept.Node{ID: "A", Name: "A", Children: []*concept.Node{
		{ID: "B", Name: "B"},
		{ID: "C", Name: "C", Children: append([]*concept.Node{{ID: "D", Name: "D"}}, extra...)},
	}}
	tree, err := hierarchy.Build(root)
	require.NoError(t, err)
	return &fixture{tree: tree, engine: radial.New(radial.DefaultConfig()), scene: NewScene(0)}
}

func (f *fixture) pass(t *testing.T, now time.Time) Pass {
	t.Helper()
	l, ok := f.engine.Compute(f.tree, 200, 200)
	require.True(t, ok)
	f.tree.Apply(l.Coords)
	return f.scene.Reconcile(now, FromTree(f.tree))
}

func (f *fixture) coord(id string) geom.Polar {
	n, _ := f.tree.Node(id)
	return n.Coord
}

func nodeAt(fr Frame, id string) (NodeFrame, bool) {
	for _, n := range fr.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeFrame{}, false
}

func assertPolar(t *testing.T, want, got geom.Polar) {
	t.Helper()
	assert.InDelta(t, want.Radius, got.Radius, 1e-9)
	if want.Radius > 0 {
		d := math.Abs(geom.NormalizeAngle(want.Angle) - geom.NormalizeAngle(got.Angle))
		assert.True(t, d < 1e-9 || math.Abs(d-geom.TwoPi) < 1e-9, "angle %v != %v", got.Angle, want.Angle)
	}
}

func TestScene_InitialPassEntersFromRoot(t *testing.T) {
	f := newFixture(t)
	p := f.pass(t, t0)
	assert.Equal(t, []string{"A", "B", "C"}, p.Nodes.EnterKeys())
	assert.Equal(t, []LinkKey{{"A", "B"}, {"A", "C"}}, p.Links.EnterKeys())

	fr := f.scene.At(t0)
	b, ok := nodeAt(fr, "B")
	require.True(t, ok)
	assert.Equal(t, Entering, b.Phase)
	assert.InDelta(t, 0, b.Coord.Radius, 1e-9)

	end := f.scene.At(t0.Add(DefaultDuration))
	b, _ = nodeAt(end, "B")
	assert.Equal(t, Settled, b.Phase)
	assertPolar(t, f.coord("B"), b.Coord)
	assert.False(t, f.scene.Animating(t0.Add(DefaultDuration)))
}

func TestScene_ToggleEntersAndExitsAtSource(t *testing.T) {
	f := newFixture(t)
	f.pass(t, t0)

	c, _ := f.tree.Node("C")
	oldC := f.coord("C")
	f.tree.Toggle(c)
	t1 := t0.Add(time.Second)
	p := f.pass(t, t1)

	assert.Equal(t, []string{"D"}, p.Nodes.EnterKeys())
	assert.Empty(t, p.Nodes.ExitKeys())
	assert.Equal(t, []LinkKey{{"C", "D"}}, p.Links.EnterKeys())

	d, ok := nodeAt(f.scene.At(t1), "D")
	require.True(t, ok)
	assert.Equal(t, Entering, d.Phase)
	assertPolar(t, oldC, d.Coord)

	d, _ = nodeAt(f.scene.At(t1.Add(DefaultDuration)), "D")
	assertPolar(t, f.coord("D"), d.Coord)

	f.tree.Toggle(c)
	t2 := t1.Add(time.Second)
	p = f.pass(t, t2)
	assert.Equal(t, []string{"D"}, p.Nodes.ExitKeys())
	assert.Equal(t, []LinkKey{{"C", "D"}}, p.Links.ExitKeys())

	mid := f.scene.At(t2.Add(DefaultDuration / 2))
	d, ok = nodeAt(mid, "D")
	require.True(t, ok)
	assert.Equal(t, Exiting, d.Phase)

	// The exit heads for C's new position and then leaves the scene.
	almost := f.scene.At(t2.Add(DefaultDuration - time.Nanosecond))
	d, ok = nodeAt(almost, "D")
	require.True(t, ok)
	assert.InDelta(t, f.coord("C").Radius, d.Coord.Radius, 1e-3)

	done := f.scene.At(t2.Add(DefaultDuration))
	_, ok = nodeAt(done, "D")
	assert.False(t, ok)
	for _, l := range done.Links {
		assert.NotEqual(t, "D", l.Key.Child)
	}
}

func TestScene_LinksShareNodePositions(t *testing.T) {
	f := newFixture(t)
	f.pass(t, t0)
	fr := f.scene.At(t0.Add(DefaultDuration / 3))
	points := map[string]geom.Point{}
	for _, n := range fr.Nodes {
		points[n.ID] = n.Point
	}
	require.Len(t, fr.Links, 2)
	for _, l := range fr.Links {
		assert.Equal(t, points[l.Key.Parent], l.From)
		assert.Equal(t, points[l.Key.Child], l.To)
	}
}

func TestScene_NewPassSupersedesInFlight(t *testing.T) {
	f := newFixture(t, &concept.Node{ID: "E", Name: "E"})
	f.pass(t, t0)
	f.scene.Prune(t0.Add(DefaultDuration))
	collapsedB := f.coord("B")

	c, _ := f.tree.Node("C")
	f.tree.Toggle(c)
	t1 := t0.Add(time.Second)
	f.pass(t, t1)
	expandedB := f.coord("B")
	require.NotEqual(t, collapsedB, expandedB, "expanding C should move B")

	half := t1.Add(DefaultDuration / 2)
	bMid, _ := nodeAt(f.scene.At(half), "B")
	assert.NotEqual(t, expandedB, bMid.Coord)

	// Collapse again before the expand finished: B restarts from where it is.
	f.tree.Toggle(c)
	f.pass(t, half)
	bNow, _ := nodeAt(f.scene.At(half), "B")
	assertPolar(t, bMid.Coord, bNow.Coord)

	bEnd, _ := nodeAt(f.scene.At(half.Add(DefaultDuration)), "B")
	assertPolar(t, f.coord("B"), bEnd.Coord)

	// D was mid-enter; it now exits from its interpolated position.
	d, ok := nodeAt(f.scene.At(half), "D")
	require.True(t, ok)
	assert.Equal(t, Exiting, d.Phase)
}

func TestScene_PreviousIsLastSnapshot(t *testing.T) {
	f := newFixture(t)
	f.pass(t, t0)
	prev := f.scene.Previous()
	require.Len(t, prev, 3)
	assert.Equal(t, f.coord("C"), prev[2].Coord)
}

func TestScene_PruneDropsFinishedExits(t *testing.T) {
	f := newFixture(t)
	f.pass(t, t0)
	c, _ := f.tree.Node("C")
	f.tree.Toggle(c)
	f.pass(t, t0.Add(time.Second))
	f.tree.Toggle(c)
	f.pass(t, t0.Add(2*time.Second))
	assert.Equal(t, 4, f.scene.Len())

	f.scene.Prune(t0.Add(2*time.Second + DefaultDuration))
	assert.Equal(t, 3, f.scene.Len())
	assert.False(t, f.scene.Animating(t0.Add(3*time.Second)))
}

func TestInterpolate_ShortWayRound(t *testing.T) {
	a := geom.Polar{Angle: 0.1, Radius: 10}
	b := geom.Polar{Angle: geom.TwoPi - 0.1, Radius: 10}
	mid := interpolate(a, b, 0.5)
	assert.InDelta(t, 0, math.Min(mid.Angle, geom.TwoPi-mid.Angle), 1e-9)
}
