package concept

import (
	"fmt"
	"strings"
)

// Validate performs the structural checks on a concept tree that the file
// schema cannot express. Returns a combined error describing all problems
// found, or nil if the tree is usable.
func Validate(root *Node) error {
	if root == nil {
		return fmt.Errorf("concept tree validation failed:\n  missing root concept")
	}

	var errs []string
	seenID := make(map[string]bool)
	seenNode := make(map[*Node]bool)

	var visit func(n *Node, path string)
	visit = func(n *Node, path string) {
		if n == nil {
			errs = append(errs, fmt.Sprintf("%s: nil child", path))
			return
		}
		if seenNode[n] {
			errs = append(errs, fmt.Sprintf("concept %q is reachable more than once (cycle or shared child)", n.ID))
			return
		}
		seenNode[n] = true

		if n.ID == "" {
			errs = append(errs, fmt.Sprintf("%s: concept has empty ID", path))
		} else if seenID[n.ID] {
			errs = append(errs, fmt.Sprintf("duplicate concept ID: %q", n.ID))
		}
		seenID[n.ID] = true

		if strings.TrimSpace(n.Name) == "" {
			errs = append(errs, fmt.Sprintf("concept %q has empty name", n.ID))
		}
		if q := n.Quiz; q != nil {
			prefix := fmt.Sprintf("concept %q quiz", n.ID)
			if len(q.Options) < 2 {
				errs = append(errs, fmt.Sprintf("%s: needs at least 2 options, got %d", prefix, len(q.Options)))
			}
			if q.CorrectIndex() < 0 {
				errs = append(errs, fmt.Sprintf("%s: correct answer %q is not one of the options", prefix, q.CorrectAnswer))
			}
		}

		for i, c := range n.Children {
			visit(c, fmt.Sprintf("%s/%d", n.ID, i))
		}
	}
	visit(root, "root")

	if len(errs) > 0 {
		return fmt.Errorf("concept tree validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
