// Package interaction turns pointer and keyboard gestures on diagram nodes
// into toggle and selection intents.
package interaction

import (
	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/hierarchy"
)

// Modifiers is the set of modifier keys held during a gesture.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModAlt
	ModCtrl
	ModMeta
)

// Toggles reports whether the modifiers qualify a click as expand/collapse.
func (m Modifiers) Toggles() bool { return m&(ModCtrl|ModMeta) != 0 }

// Kind is the kind of an intent.
type Kind int

const (
	Select Kind = iota
	Toggle
	Deselect
)

func (k Kind) String() string {
	switch k {
	case Toggle:
		return "toggle"
	case Deselect:
		return "deselect"
	default:
		return "select"
	}
}

// Intent is one effect a gesture asks the diagram to carry out. Concept is
// the caller's own node, untouched, and nil for Deselect.
type Intent struct {
	Kind    Kind
	ID      string
	Concept *concept.Node
}

// Controller tracks selection, hover and keyboard focus.
type Controller struct {
	tree     *hierarchy.Tree
	selected string
	hovered  string
	focused  string
}

// New creates a Controller with nothing selected.
func New() *Controller { return &Controller{} }

// SetTree points the controller at a rebuilt tree. State that refers to
// nodes no longer present is dropped.
func (c *Controller) SetTree(tree *hierarchy.Tree) {
	c.tree = tree
	for _, id := range []*string{&c.selected, &c.hovered, &c.focused} {
		if *id == "" {
			continue
		}
		if tree == nil {
			*id = ""
			continue
		}
		if _, ok := tree.Node(*id); !ok {
			*id = ""
		}
	}
}

// Selected returns the selected node id, or "".
func (c *Controller) Selected() string { return c.selected }

// Hovered returns the hovered node id, or "".
func (c *Controller) Hovered() string { return c.hovered }

// Focused returns the keyboard-focused node id, or "".
func (c *Controller) Focused() string { return c.focused }

// Click handles a click on node id. A ctrl- or meta-click on a node with
// children, hidden or shown, toggles it and selects it; any other click
// only selects. Clicking the selected node again re-reports it.
func (c *Controller) Click(id string, mods Modifiers) []Intent {
	n := c.node(id)
	if n == nil {
		return nil
	}
	var out []Intent
	if mods.Toggles() && n.HasChildren() {
		out = append(out, Intent{Kind: Toggle, ID: id, Concept: n.Concept})
	}
	c.selected = id
	c.focused = id
	return append(out, Intent{Kind: Select, ID: id, Concept: n.Concept})
}

// Deselect clears the selection.
func (c *Controller) Deselect() []Intent {
	c.selected = ""
	return []Intent{{Kind: Deselect}}
}

// ClearSelection drops the selection without reporting it.
func (c *Controller) ClearSelection() { c.selected = "" }

// Hover marks id as hovered. It reports whether the hover target changed.
func (c *Controller) Hover(id string) bool {
	if c.node(id) == nil {
		return c.Leave()
	}
	if c.hovered == id {
		return false
	}
	c.hovered = id
	return true
}

// Leave clears the hover. It reports whether anything was hovered.
func (c *Controller) Leave() bool {
	if c.hovered == "" {
		return false
	}
	c.hovered = ""
	return true
}

// FocusNext moves keyboard focus to the next visible node in pre-order,
// wrapping around.
func (c *Controller) FocusNext() string { return c.moveFocus(1) }

// FocusPrev moves keyboard focus to the previous visible node.
func (c *Controller) FocusPrev() string { return c.moveFocus(-1) }

// Activate acts on the focused node as a click would: plain for select,
// with toggle set for expand/collapse plus select.
func (c *Controller) Activate(toggle bool) []Intent {
	if c.focused == "" {
		return nil
	}
	var mods Modifiers
	if toggle {
		mods = ModCtrl
	}
	return c.Click(c.focused, mods)
}

func (c *Controller) moveFocus(step int) string {
	if c.tree == nil {
		return ""
	}
	visible := c.tree.Visible()
	if len(visible) == 0 {
		return ""
	}
	idx := -1
	for i, n := range visible {
		if n.ID == c.focused {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && step > 0:
		idx = 0
	case idx < 0:
		idx = len(visible) - 1
	default:
		idx = (idx + step + len(visible)) % len(visible)
	}
	c.focused = visible[idx].ID
	return c.focused
}

func (c *Controller) node(id string) *hierarchy.Node {
	if c.tree == nil || id == "" {
		return nil
	}
	n, ok := c.tree.Node(id)
	if !ok {
		return nil
	}
	return n
}
