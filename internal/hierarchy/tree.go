package hierarchy

import (
	"fmt"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/geom"
)

// ErrorKind classifies a malformed concept tree.
type ErrorKind string

const (
	NilRoot     ErrorKind = "nil root"
	MissingID   ErrorKind = "missing id"
	DuplicateID ErrorKind = "duplicate id"
	Cycle       ErrorKind = "cycle"
)

// DataError is returned by Build when the input is not a strict tree of
// uniquely identified concepts.
type DataError struct {
	Kind ErrorKind
	ID   string
}

func (e *DataError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("concept tree: %s", e.Kind)
	}
	return fmt.Sprintf("concept tree: %s %q", e.Kind, e.ID)
}

// Tree is the built hierarchy plus an id index. Parents are resolved
// through the index; nodes never point up.
type Tree struct {
	root  *Node
	byID  map[string]*Node
	order []*Node
}

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	collapseDepth int
}

// WithCollapseDepth sets the depth from which nodes with children start
// Collapsed. A negative depth starts everything expanded.
func WithCollapseDepth(depth int) Option {
	return func(o *buildOptions) { o.collapseDepth = depth }
}

// Build wraps root in one pass, assigning depths and the initial
// visibility. It fails with a *DataError on a nil root, an empty id, a
// duplicate id, or a concept reached twice (cycle or shared child).
func Build(root *concept.Node, opts ...Option) (*Tree, error) {
	o := buildOptions{collapseDepth: DefaultCollapseDepth}
	for _, opt := range opts {
		opt(&o)
	}
	if root == nil {
		return nil, &DataError{Kind: NilRoot}
	}

	t := &Tree{byID: make(map[string]*Node)}
	placed := make(map[*concept.Node]bool)

	var build func(c *concept.Node, parentID string, depth int) (*Node, error)
	build = func(c *concept.Node, parentID string, depth int) (*Node, error) {
		if c == nil {
			return nil, &DataError{Kind: MissingID}
		}
		if placed[c] {
			return nil, &DataError{Kind: Cycle, ID: c.ID}
		}
		placed[c] = true
		if c.ID == "" {
			return nil, &DataError{Kind: MissingID}
		}
		if _, dup := t.byID[c.ID]; dup {
			return nil, &DataError{Kind: DuplicateID, ID: c.ID}
		}

		n := &Node{Concept: c, ID: c.ID, Depth: depth, parentID: parentID}
		t.byID[c.ID] = n
		t.order = append(t.order, n)

		children := make([]*Node, 0, len(c.Children))
		for _, cc := range c.Children {
			child, err := build(cc, c.ID, depth+1)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		if o.collapseDepth >= 0 && depth >= o.collapseDepth {
			n.Visibility = Collapsed{Hidden: children}
		} else {
			n.Visibility = Expanded{Children: children}
		}
		return n, nil
	}

	r, err := build(root, "", 0)
	if err != nil {
		return nil, err
	}
	t.root = r
	return t, nil
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Len returns the number of nodes in the tree, visible or not.
func (t *Tree) Len() int { return len(t.order) }

// Node looks up a node by id.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.byID[id]
	return n, ok
}

// Parent returns n's parent, or nil for the root.
func (t *Tree) Parent(n *Node) *Node {
	if n == nil || n.parentID == "" {
		return nil
	}
	return t.byID[n.parentID]
}

// Ancestors returns n's ancestors from its parent up to the root.
func (t *Tree) Ancestors(n *Node) []*Node {
	var out []*Node
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		out = append(out, p)
	}
	return out
}

// Walk visits every node in pre-order, hidden ones included.
func (t *Tree) Walk(fn func(*Node)) {
	for _, n := range t.order {
		fn(n)
	}
}

// VisibleDescendants returns n and every node reachable from it through
// Expanded nodes only, in pre-order.
func (t *Tree) VisibleDescendants(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	var visit func(*Node)
	visit = func(x *Node) {
		out = append(out, x)
		for _, c := range x.VisibleChildren() {
			visit(c)
		}
	}
	visit(n)
	return out
}

// Visible returns the visible nodes from the root.
func (t *Tree) Visible() []*Node { return t.VisibleDescendants(t.root) }

// IsVisible reports whether every ancestor of n is expanded.
func (t *Tree) IsVisible(n *Node) bool {
	for _, a := range t.Ancestors(n) {
		if _, ok := a.Visibility.(Expanded); !ok {
			return false
		}
	}
	return true
}

// Toggle swaps n between Expanded and Collapsed in place. The child list
// moves across unchanged.
func (t *Tree) Toggle(n *Node) {
	switch v := n.Visibility.(type) {
	case Expanded:
		n.Visibility = Collapsed{Hidden: v.Children}
	case Collapsed:
		n.Visibility = Expanded{Children: v.Hidden}
	}
}

// SetExpanded forces n into the given state.
func (t *Tree) SetExpanded(n *Node, expanded bool) {
	if _, isExpanded := n.Visibility.(Expanded); isExpanded != expanded {
		t.Toggle(n)
	}
}

// ExpandPath expands every ancestor of n so that n becomes visible. It
// reports whether anything changed.
func (t *Tree) ExpandPath(n *Node) bool {
	changed := false
	for _, a := range t.Ancestors(n) {
		if _, ok := a.Visibility.(Collapsed); ok {
			t.Toggle(a)
			changed = true
		}
	}
	return changed
}

// MaxVisibleDepth returns the depth of the deepest visible node.
func (t *Tree) MaxVisibleDepth() int {
	maxDepth := 0
	for _, n := range t.Visible() {
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
	}
	return maxDepth
}

// Apply writes a layout result into the visible nodes. The node's current
// coordinate becomes its previous one.
func (t *Tree) Apply(coords map[string]geom.Polar) {
	for id, c := range coords {
		n, ok := t.byID[id]
		if !ok {
			continue
		}
		if n.Placed {
			n.Prev = n.Coord
		} else {
			n.Prev = c
		}
		n.Coord = c
		n.Placed = true
	}
}
