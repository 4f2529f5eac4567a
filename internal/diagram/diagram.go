// Package diagram composes the radial concept diagram: hierarchy, layout,
// scene reconciliation, interaction, search and viewport behind one
// event-driven API. Every method is meant to be called from a single event
// loop; nothing here blocks or spawns goroutines.
package diagram

import (
	"log/slog"
	"math"
	"time"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/geom"
	"github.com/abhisek/orbit/internal/hierarchy"
	"github.com/abhisek/orbit/internal/interaction"
	"github.com/abhisek/orbit/internal/radial"
	"github.com/abhisek/orbit/internal/reconcile"
	"github.com/abhisek/orbit/internal/search"
	"github.com/abhisek/orbit/internal/viewport"
)

// Diagram is the interactive radial view of one concept tree.
type Diagram struct {
	opts   options
	logger *slog.Logger

	layout *radial.Engine
	view   *viewport.Controller
	scene  *reconcile.Scene
	ctl    *interaction.Controller

	root *concept.Node
	tree *hierarchy.Tree
	err  error

	// retired holds nodes of replaced trees that are still exiting.
	retired map[string]*hierarchy.Node

	result   search.Result
	mastered map[string]bool

	resetKnown bool
	resetValue bool

	width, height float64
	passes        int
	lastPass      reconcile.Pass
}

// New creates an empty diagram. Nothing is laid out until both data and a
// nonzero size have been supplied.
func New(opts ...Option) *Diagram {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Diagram{
		opts:     o,
		logger:   o.logger,
		layout:   radial.New(o.layout),
		view:     viewport.New(o.viewport),
		scene:    reconcile.NewScene(o.transition),
		ctl:      interaction.New(),
		mastered: make(map[string]bool),
	}
}

// SetData replaces the concept tree. The hierarchy is rebuilt wholesale;
// ids present in both trees animate from where they were. A malformed tree
// is rejected with a *hierarchy.DataError and the previous tree stays on
// screen.
func (d *Diagram) SetData(now time.Time, root *concept.Node) error {
	if root != nil && root == d.root && d.err == nil {
		return nil
	}
	tree, err := hierarchy.Build(root, hierarchy.WithCollapseDepth(d.opts.collapseDepth))
	if err != nil {
		d.err = err
		d.logger.Warn("concept tree rejected, keeping previous", "error", err)
		return err
	}
	d.err = nil
	d.root = root
	d.retire(d.tree)
	d.tree = tree

	hadSelection := d.ctl.Selected() != ""
	d.ctl.SetTree(tree)
	if hadSelection && d.ctl.Selected() == "" {
		d.report(nil)
	}

	d.result = search.Compute(d.result.Term, tree)
	if d.opts.revealMatches {
		search.Reveal(tree, d.result)
	}
	d.logger.Debug("concept tree rebuilt", "nodes", tree.Len())
	d.relayout(now)
	d.forgetRetired()
	return nil
}

// retire remembers every node of a tree being replaced, so the ones that
// vanish can still be drawn on their way out.
func (d *Diagram) retire(old *hierarchy.Tree) {
	if old == nil {
		return
	}
	if d.retired == nil {
		d.retired = make(map[string]*hierarchy.Node, old.Len())
	}
	old.Walk(func(n *hierarchy.Node) { d.retired[n.ID] = n })
}

// forgetRetired drops retired nodes that are back in the tree or gone
// from the scene.
func (d *Diagram) forgetRetired() {
	for id := range d.retired {
		if _, ok := d.tree.Node(id); ok || !d.scene.Has(id) {
			delete(d.retired, id)
		}
	}
}

// lookup finds id in the current tree, or among retired nodes.
func (d *Diagram) lookup(id string) (*hierarchy.Node, bool) {
	if n, ok := d.tree.Node(id); ok {
		return n, true
	}
	n, ok := d.retired[id]
	return n, ok
}

// SetSearchTerm re-runs the search. A blank term clears all highlighting.
func (d *Diagram) SetSearchTerm(now time.Time, term string) {
	if search.Normalize(term) == d.result.Term {
		return
	}
	if d.tree == nil {
		d.result = search.Result{Term: search.Normalize(term)}
		return
	}
	d.result = search.Compute(term, d.tree)
	if d.opts.revealMatches && search.Reveal(d.tree, d.result) {
		d.relayout(now)
	}
}

// SearchTerm returns the normalized active term.
func (d *Diagram) SearchTerm() string { return d.result.Term }

// SetResetToggle feeds the reset signal. Any change of value after the
// first observation resets the view.
func (d *Diagram) SetResetToggle(now time.Time, v bool) {
	if !d.resetKnown {
		d.resetKnown = true
		d.resetValue = v
		return
	}
	if v == d.resetValue {
		return
	}
	d.resetValue = v
	d.Reset(now)
}

// Reset animates the view back to its home transform.
func (d *Diagram) Reset(now time.Time) {
	d.view.Reset(now)
}

// SetMastered replaces the set of mastered ids. Ids not in the tree are
// ignored. Mastery only affects styling.
func (d *Diagram) SetMastered(ids []string) {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	d.mastered = m
}

// Resize reports a new container size. Zero dimensions are ignored until a
// usable size arrives; a size change triggers exactly one layout pass.
func (d *Diagram) Resize(now time.Time, width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == d.width && height == d.height {
		return
	}
	d.width, d.height = width, height
	d.view.OnResize(now, width, height)
	d.relayout(now)
}

// Size returns the current container size.
func (d *Diagram) Size() (width, height float64) { return d.width, d.height }

// Click handles a click on node id and returns the intents it produced.
func (d *Diagram) Click(now time.Time, id string, mods interaction.Modifiers) []interaction.Intent {
	intents := d.ctl.Click(id, mods)
	d.apply(now, intents)
	return intents
}

// ClickAt handles a click at a viewport position. A click on empty space
// does nothing.
func (d *Diagram) ClickAt(now time.Time, p geom.Point, mods interaction.Modifiers) []interaction.Intent {
	id, ok := d.NodeAt(now, p)
	if !ok {
		return nil
	}
	return d.Click(now, id, mods)
}

// Deselect clears the selection and reports nil to the select handler.
func (d *Diagram) Deselect() {
	d.apply(time.Time{}, d.ctl.Deselect())
}

// ClearSelection drops the selection without reporting it.
func (d *Diagram) ClearSelection() { d.ctl.ClearSelection() }

// Hover emphasizes node id. It reports whether the emphasis changed.
func (d *Diagram) Hover(id string) bool { return d.ctl.Hover(id) }

// HoverAt hovers whatever node sits at a viewport position.
func (d *Diagram) HoverAt(now time.Time, p geom.Point) bool {
	if id, ok := d.NodeAt(now, p); ok {
		return d.ctl.Hover(id)
	}
	return d.ctl.Leave()
}

// Leave drops the hover emphasis.
func (d *Diagram) Leave() bool { return d.ctl.Leave() }

// FocusNext moves keyboard focus forward through the visible nodes.
func (d *Diagram) FocusNext() string { return d.ctl.FocusNext() }

// FocusPrev moves keyboard focus backward through the visible nodes.
func (d *Diagram) FocusPrev() string { return d.ctl.FocusPrev() }

// Activate clicks the focused node, toggling it when toggle is set.
func (d *Diagram) Activate(now time.Time, toggle bool) []interaction.Intent {
	intents := d.ctl.Activate(toggle)
	d.apply(now, intents)
	return intents
}

// Pan moves the view by (dx, dy) viewport units.
func (d *Diagram) Pan(now time.Time, dx, dy float64) { d.view.Pan(now, dx, dy) }

// ZoomAt zooms by factor around a viewport point.
func (d *Diagram) ZoomAt(now time.Time, factor float64, p geom.Point) {
	d.view.ZoomAt(now, factor, p.X, p.Y)
}

// ApplyUserTransform sets the view transform directly.
func (d *Diagram) ApplyUserTransform(t viewport.Transform) { d.view.ApplyUserTransform(t) }

// Transform returns the view transform at now.
func (d *Diagram) Transform(now time.Time) viewport.Transform { return d.view.At(now) }

// ViewState returns the viewport lifecycle state.
func (d *Diagram) ViewState() viewport.State { return d.view.State() }

// Animating reports whether anything is still moving at now.
func (d *Diagram) Animating(now time.Time) bool {
	return d.scene.Animating(now) || d.view.Animating(now)
}

// Tick drops finished transitions. Hosts call it on every animation frame.
func (d *Diagram) Tick(now time.Time) {
	d.scene.Prune(now)
	if d.tree != nil {
		d.forgetRetired()
	}
}

// Err returns the last data error, or nil if the current data is good.
func (d *Diagram) Err() error { return d.err }

// Tree returns the current hierarchy, or nil before the first good data.
func (d *Diagram) Tree() *hierarchy.Tree { return d.tree }

// Passes returns the number of layout passes run so far.
func (d *Diagram) Passes() int { return d.passes }

// LastPass returns the edit script of the latest layout pass.
func (d *Diagram) LastPass() reconcile.Pass { return d.lastPass }

// Search returns the active search result.
func (d *Diagram) Search() search.Result { return d.result }

// Selected returns the selected concept, or nil.
func (d *Diagram) Selected() *concept.Node {
	if d.tree == nil {
		return nil
	}
	if n, ok := d.tree.Node(d.ctl.Selected()); ok {
		return n.Concept
	}
	return nil
}

// Expand makes the node with the given id visible, expanding its
// ancestors.
func (d *Diagram) Expand(now time.Time, id string) bool {
	if d.tree == nil {
		return false
	}
	n, ok := d.tree.Node(id)
	if !ok || !d.tree.ExpandPath(n) {
		return false
	}
	d.relayout(now)
	return true
}

// Expanded returns the ids of nodes with children that are currently
// expanded, in pre-order.
func (d *Diagram) Expanded() []string {
	if d.tree == nil {
		return nil
	}
	var ids []string
	d.tree.Walk(func(n *hierarchy.Node) {
		if n.HasChildren() && !n.IsCollapsed() {
			ids = append(ids, n.ID)
		}
	})
	return ids
}

// Restore expands exactly the given nodes and collapses every other node
// with children, then runs one pass. Unknown ids are ignored.
func (d *Diagram) Restore(now time.Time, expanded []string) {
	if d.tree == nil {
		return
	}
	want := make(map[string]bool, len(expanded))
	for _, id := range expanded {
		want[id] = true
	}
	d.tree.Walk(func(n *hierarchy.Node) {
		if n.HasChildren() {
			d.tree.SetExpanded(n, want[n.ID])
		}
	})
	d.ctl.SetTree(d.tree)
	d.relayout(now)
}

// NodeAt returns the visible node nearest to a viewport point, if one is
// within its marker's reach.
func (d *Diagram) NodeAt(now time.Time, p geom.Point) (string, bool) {
	t := d.view.At(now)
	reach := HitRadius * math.Max(t.K, 1)
	best, bestDist := "", math.Inf(1)
	for _, n := range d.scene.At(now).Nodes {
		if n.Phase == reconcile.Exiting {
			continue
		}
		dist := t.Apply(n.Point).Dist(p)
		if dist <= reach && dist < bestDist {
			best, bestDist = n.ID, dist
		}
	}
	return best, best != ""
}

func (d *Diagram) apply(now time.Time, intents []interaction.Intent) {
	for _, in := range intents {
		switch in.Kind {
		case interaction.Toggle:
			if n, ok := d.tree.Node(in.ID); ok {
				d.tree.Toggle(n)
				d.relayout(now)
			}
		case interaction.Select:
			d.report(in.Concept)
		case interaction.Deselect:
			d.report(nil)
		}
	}
}

func (d *Diagram) report(c *concept.Node) {
	if d.opts.onSelect != nil {
		d.opts.onSelect(c)
	}
}

// relayout runs one layout and reconciliation pass, or nothing while data
// or a usable size is missing.
func (d *Diagram) relayout(now time.Time) {
	if d.tree == nil || d.width <= 0 || d.height <= 0 {
		return
	}
	l, ok := d.layout.Compute(d.tree, d.width, d.height)
	if !ok {
		return
	}
	d.tree.Apply(l.Coords)
	d.lastPass = d.scene.Reconcile(now, reconcile.FromTree(d.tree))
	d.passes++
	d.logger.Debug("layout pass",
		"pass", d.passes,
		"visible", len(l.Order),
		"ring_step", l.RingStep,
		"enter", len(d.lastPass.Nodes.Enter),
		"exit", len(d.lastPass.Nodes.Exit),
	)
}
