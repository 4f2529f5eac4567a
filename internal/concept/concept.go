// Package concept defines the concept tree that orbit explores and the
// document format it is loaded from.
package concept

// Quiz is a single multiple-choice question attached to a concept.
type Quiz struct {
	Question      string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
}

// CorrectIndex returns the index of the correct answer within Options,
// or -1 if the answer is not one of the options.
func (q *Quiz) CorrectIndex() int {
	for i, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return i
		}
	}
	return -1
}

// Node is one concept in the tree. Nodes are treated as immutable once
// loaded; the diagram never writes to them.
type Node struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Description   string  `json:"description,omitempty" yaml:"description,omitempty"`
	Link          string  `json:"link,omitempty" yaml:"link,omitempty"`
	IsApplication bool    `json:"isApplication,omitempty" yaml:"isApplication,omitempty"`
	Quiz          *Quiz   `json:"quiz,omitempty" yaml:"quiz,omitempty"`
	Children      []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Document is the on-disk envelope of a concept tree.
type Document struct {
	SchemaVersion string `json:"schemaVersion" yaml:"schemaVersion"`
	Root          *Node  `json:"root" yaml:"root"`
}

// Walk visits root and its descendants in pre-order. Returning false from
// fn skips that node's children. Walk does not guard against cycles; use
// Validate or hierarchy.Build on untrusted trees first.
func Walk(root *Node, fn func(n *Node, depth int) bool) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if n == nil || !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(root, 0)
}

// Find returns the node with the given id, or nil.
func Find(root *Node, id string) *Node {
	var found *Node
	Walk(root, func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// QuizIDs returns the ids of every concept carrying a quiz, in pre-order.
// These are the concepts that count towards overall progress.
func QuizIDs(root *Node) []string {
	var ids []string
	Walk(root, func(n *Node, _ int) bool {
		if n.Quiz != nil {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

// Count returns the number of nodes in the tree.
func Count(root *Node) int {
	count := 0
	Walk(root, func(*Node, int) bool {
		count++
		return true
	})
	return count
}
