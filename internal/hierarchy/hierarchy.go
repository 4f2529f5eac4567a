// Package hierarchy wraps a concept tree with the per-node state the radial
// diagram needs: depth, expand/collapse visibility and layout coordinates.
package hierarchy

import (
	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/geom"
)

// DefaultCollapseDepth is the depth from which nodes start Collapsed, so
// only the root and its direct children are shown initially.
const DefaultCollapseDepth = 1

// Visibility is the expand state of a node. It is always exactly one of
// Expanded or Collapsed; both carry the same child list, so toggling never
// loses structure.
type Visibility interface {
	children() []*Node
	isVisibility()
}

// Expanded shows its children.
type Expanded struct{ Children []*Node }

// Collapsed hides its children.
type Collapsed struct{ Hidden []*Node }

func (v Expanded) children() []*Node  { return v.Children }
func (v Collapsed) children() []*Node { return v.Hidden }
func (Expanded) isVisibility()        {}
func (Collapsed) isVisibility()       {}

// Node is the internal wrapper around one concept.
type Node struct {
	Concept    *concept.Node
	ID         string
	Depth      int
	Visibility Visibility

	// Coord is the position from the latest layout pass and Prev the one
	// before it. Both are written only by Tree.Apply.
	Coord geom.Polar
	Prev  geom.Polar
	// Placed reports whether Coord holds a layout result.
	Placed bool

	parentID string
}

// ParentID returns the id of the node's parent, or "" for the root.
func (n *Node) ParentID() string { return n.parentID }

// Children returns the node's children regardless of visibility.
func (n *Node) Children() []*Node { return n.Visibility.children() }

// HasChildren reports whether the node has any children, visible or hidden.
func (n *Node) HasChildren() bool { return len(n.Visibility.children()) > 0 }

// IsCollapsed reports whether the node hides its children. A leaf is never
// reported as collapsed.
func (n *Node) IsCollapsed() bool {
	_, ok := n.Visibility.(Collapsed)
	return ok && n.HasChildren()
}

// VisibleChildren returns the children currently shown.
func (n *Node) VisibleChildren() []*Node {
	if v, ok := n.Visibility.(Expanded); ok {
		return v.Children
	}
	return nil
}
