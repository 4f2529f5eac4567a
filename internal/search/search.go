// Package search partitions a concept hierarchy into highlighted and dimmed
// nodes for a free-text term.
package search

import (
	"strings"

	"github.com/abhisek/orbit/internal/hierarchy"
)

// State is the search styling of a node.
type State int

const (
	Neutral State = iota
	DirectMatch
	AncestorOfMatch
	Dimmed
)

func (s State) String() string {
	switch s {
	case DirectMatch:
		return "match"
	case AncestorOfMatch:
		return "ancestor"
	case Dimmed:
		return "dimmed"
	default:
		return "neutral"
	}
}

// Highlighted reports whether the state is part of the highlighted closure.
func (s State) Highlighted() bool { return s == DirectMatch || s == AncestorOfMatch }

// LinkState is the search styling of an edge.
type LinkState int

const (
	LinkNeutral LinkState = iota
	BridgesMatch
	LinkDimmed
)

// Result is the outcome of one search over a tree.
type Result struct {
	Term    string
	states  map[string]State
	Matches []string
}

// Active reports whether a non-blank term was applied.
func (r Result) Active() bool { return r.Term != "" }

// State returns the styling for a node id. Ids not in the tree are
// Neutral when the search is inactive and Dimmed otherwise.
func (r Result) State(id string) State {
	if !r.Active() {
		return Neutral
	}
	if s, ok := r.states[id]; ok {
		return s
	}
	return Dimmed
}

// Link returns the styling for the edge between parent and child.
func (r Result) Link(parentID, childID string) LinkState {
	if !r.Active() {
		return LinkNeutral
	}
	if r.State(parentID).Highlighted() && r.State(childID).Highlighted() {
		return BridgesMatch
	}
	return LinkDimmed
}

// Highlighted returns the ids in the highlighted closure.
func (r Result) Highlighted() map[string]bool {
	out := make(map[string]bool)
	for id, s := range r.states {
		if s.Highlighted() {
			out[id] = true
		}
	}
	return out
}

// Normalize trims and lower-cases a search term.
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Compute matches term against every node name in tree, collapsed branches
// included, and marks each match plus all of its ancestors. A blank term
// yields an inactive result where everything is Neutral.
func Compute(term string, tree *hierarchy.Tree) Result {
	r := Result{Term: Normalize(term)}
	if !r.Active() || tree == nil {
		return r
	}

	r.states = make(map[string]State, tree.Len())
	tree.Walk(func(n *hierarchy.Node) {
		r.states[n.ID] = Dimmed
	})
	tree.Walk(func(n *hierarchy.Node) {
		if !strings.Contains(strings.ToLower(n.Concept.Name), r.Term) {
			return
		}
		r.Matches = append(r.Matches, n.ID)
		r.states[n.ID] = DirectMatch
		for _, a := range tree.Ancestors(n) {
			if r.states[a.ID] == DirectMatch {
				continue
			}
			r.states[a.ID] = AncestorOfMatch
		}
	})
	return r
}

// Reveal expands every collapsed ancestor of a match so that all matches
// become visible. It reports whether the tree changed.
func Reveal(tree *hierarchy.Tree, r Result) bool {
	changed := false
	for _, id := range r.Matches {
		if n, ok := tree.Node(id); ok && tree.ExpandPath(n) {
			changed = true
		}
	}
	return changed
}
