package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/progress"
)

var quizCmd = &cobra.Command{
	Use:   "quiz [concept-id...]",
	Short: "Answer concept quizzes in the terminal",
	Long: `Ask the quizzes of the given concepts, or of every concept not yet
mastered, one after another. Answers are recorded like in the explorer.`,
	RunE: runQuiz,
}

func init() {
	quizCmd.Flags().Int("count", 0, "Stop after this many questions (0 for no limit)")
}

func runQuiz(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
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

	queue, err := quizQueue(root, tracker, args)
	if err != nil {
		return err
	}
	if len(queue) == 0 {
		fmt.Println("Nothing left to quiz. Every concept is mastered.")
		return nil
	}
	if count > 0 && count < len(queue) {
		queue = queue[:count]
	}

	scanner := bufio.NewScanner(os.Stdin)
	var correct int
	for i, n := range queue {
		q := n.Quiz
		fmt.Printf("── %d/%d · %s ──\n", i+1, len(queue), n.Name)
		fmt.Println(q.Question)
		for j, opt := range q.Options {
			fmt.Printf("  %d) %s\n", j+1, opt)
		}

		fmt.Print("\nYour answer: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		answer, ok := pickOption(scanner.Text(), q.Options)
		if !ok {
			fmt.Print("(skipped)\n\n")
			continue
		}

		out, err := tracker.Answer(ctx, n, answer)
		if err != nil {
			return err
		}
		if out.Correct {
			correct++
			fmt.Println("\033[32m✨ Concept Mastered! ✨\033[0m")
		} else {
			fmt.Println("\033[31mNot quite! Review the material and try again later.\033[0m")
		}
		fmt.Println()
	}

	m, total := tracker.Counts()
	fmt.Printf("── %d correct · %d of %d mastered (%.0f%%) ──\n", correct, m, total, tracker.Percent())
	return nil
}

// quizQueue returns the concepts named by ids, or every unmastered quiz
// concept when ids is empty.
func quizQueue(root *concept.Node, tracker *progress.Tracker, ids []string) ([]*concept.Node, error) {
	var queue []*concept.Node
	if len(ids) > 0 {
		for _, id := range ids {
			n := concept.Find(root, id)
			if n == nil {
				return nil, fmt.Errorf("unknown concept %q", id)
			}
			if n.Quiz == nil {
				return nil, fmt.Errorf("concept %q has no quiz", id)
			}
			queue = append(queue, n)
		}
		return queue, nil
	}
	for _, id := range concept.QuizIDs(root) {
		if !tracker.IsMastered(id) {
			queue = append(queue, concept.Find(root, id))
		}
	}
	return queue, nil
}

// pickOption accepts an option number or the option text itself.
func pickOption(input string, options []string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if i, err := strconv.Atoi(input); err == nil {
		if i >= 1 && i <= len(options) {
			return options[i-1], true
		}
		return "", false
	}
	for _, opt := range options {
		if strings.EqualFold(opt, input) {
			return opt, true
		}
	}
	return "", false
}
