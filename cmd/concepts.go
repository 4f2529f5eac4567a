package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/hierarchy"
	"github.com/abhisek/orbit/internal/search"
)

var conceptsCmd = &cobra.Command{
	Use:   "concepts",
	Short: "Browse and check concept files",
}

var conceptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the concept tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		root, source, err := loadConcepts(cfg)
		if err != nil {
			return err
		}
		maxDepth, _ := cmd.Flags().GetInt("depth")

		quizzes := 0
		concept.Walk(root, func(n *concept.Node, depth int) bool {
			if maxDepth >= 0 && depth > maxDepth {
				return false
			}
			var tags []string
			if n.IsApplication {
				tags = append(tags, "app")
			}
			if n.Quiz != nil {
				tags = append(tags, "quiz")
				quizzes++
			}
			line := fmt.Sprintf("%s%-*s  %s", strings.Repeat("  ", depth), max(40-2*depth, 1), n.Name, n.ID)
			if len(tags) > 0 {
				line += "  [" + strings.Join(tags, ", ") + "]"
			}
			fmt.Println(line)
			return true
		})

		fmt.Printf("\n%d concepts, %d quizzes (%s)\n", concept.Count(root), len(concept.QuizIDs(root)), source)
		return nil
	},
}

var conceptsValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a concept file against the schema and tree rules",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			cfg.Concepts.Path = args[0]
		}
		root, source, err := loadConcepts(cfg)
		if err != nil {
			return err
		}
		if _, err := hierarchy.Build(root); err != nil {
			return err
		}
		fmt.Printf("%s: ok, %d concepts, %d quizzes\n", source, concept.Count(root), len(concept.QuizIDs(root)))
		return nil
	},
}

var conceptsSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Find concepts whose name contains term",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		root, _, err := loadConcepts(cfg)
		if err != nil {
			return err
		}
		tree, err := hierarchy.Build(root)
		if err != nil {
			return err
		}

		r := search.Compute(strings.Join(args, " "), tree)
		if !r.Active() || len(r.Matches) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, id := range r.Matches {
			n, _ := tree.Node(id)
			var path []string
			for _, a := range tree.Ancestors(n) {
				path = append(path, a.Concept.Name)
			}
			slices.Reverse(path)
			fmt.Printf("%-32s  %s\n", id, strings.Join(append(path, n.Concept.Name), " › "))
		}
		fmt.Printf("\n%d matches\n", len(r.Matches))
		return nil
	},
}

func init() {
	conceptsListCmd.Flags().Int("depth", -1, "Maximum depth to print (-1 for all)")

	conceptsCmd.AddCommand(conceptsListCmd)
	conceptsCmd.AddCommand(conceptsValidateCmd)
	conceptsCmd.AddCommand(conceptsSearchCmd)
}
