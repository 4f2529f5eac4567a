package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/progress"
	"github.com/abhisek/orbit/internal/store"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show or reset learning progress",
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show mastered concepts and quiz statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		root, _, err := loadConcepts(cfg)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		tracker, err := progress.NewTracker(ctx, root, st.MasteryRepo(), st.AttemptRepo())
		if err != nil {
			return err
		}
		stats, err := st.AttemptRepo().Stats(ctx)
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}
		attempts := make(map[string]store.AttemptStats, len(stats))
		for _, s := range stats {
			attempts[s.ConceptID] = s
		}

		m, total := tracker.Counts()
		fmt.Printf("Mastered %d of %d quizzes (%.0f%%)\n\n", m, total, tracker.Percent())

		fmt.Printf("%-40s  %-8s  %8s  %7s\n", "Concept", "Status", "Attempts", "Correct")
		fmt.Println(strings.Repeat("─", 70))
		for _, id := range concept.QuizIDs(root) {
			n := concept.Find(root, id)
			status := "·"
			if tracker.IsMastered(id) {
				status = "✓"
			}
			a := attempts[id]
			fmt.Printf("%-40s  %-8s  %8d  %7d\n", truncate(n.Name, 40), status, a.Attempts, a.Correct)
		}

		if tracker.Complete() {
			fmt.Println("\nCongratulations! You have mastered the entire AI Concept Map.")
		}
		return nil
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget every mastered concept",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm("Restart and clear all progress?") {
			fmt.Println("Cancelled.")
			return nil
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.MasteryRepo().Reset(context.Background())
		if err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}
		fmt.Printf("Cleared %d mastered concepts.\n", n)
		return nil
	},
}

// confirm asks a yes/no question on stdin.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func init() {
	progressResetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressResetCmd)
}
