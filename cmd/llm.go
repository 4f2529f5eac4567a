package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/llm"
	"github.com/abhisek/orbit/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the insight requests sent to the LLM",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent insight requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		conceptID, _ := cmd.Flags().GetString("concept")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		root, _, err := loadConcepts(cfg)
		if err != nil {
			return err
		}

		events, err := st.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, ConceptID: conceptID})
		if err != nil {
			return fmt.Errorf("query insight requests: %w", err)
		}
		writeRequestList(cmd.OutOrStdout(), root, events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one insight request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid request id %q", args[0])
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		root, _, err := loadConcepts(cfg)
		if err != nil {
			return err
		}

		e, err := st.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get insight request: %w", err)
		}
		if e == nil {
			return fmt.Errorf("insight request %d not found", id)
		}
		writeRequest(cmd.OutOrStdout(), root, e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per concept and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		root, _, err := loadConcepts(cfg)
		if err != nil {
			return err
		}

		byConcept, err := st.EventRepo().LLMUsageByConcept(cmd.Context())
		if err != nil {
			return fmt.Errorf("usage by concept: %w", err)
		}
		byModel, err := st.EventRepo().LLMUsageByModel(cmd.Context())
		if err != nil {
			return fmt.Errorf("usage by model: %w", err)
		}
		writeUsage(cmd.OutOrStdout(), root, byConcept, byModel)
		return nil
	},
}

// conceptLabel names a logged concept id. Ids that are no longer in the
// tree are shown as they were stored.
func conceptLabel(root *concept.Node, id string) string {
	if id == "" {
		return "-"
	}
	if n := concept.Find(root, id); n != nil {
		return n.Name
	}
	return id
}

func writeRequestList(w io.Writer, root *concept.Node, events []store.LLMRequestEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No insight requests recorded.")
		return
	}
	fmt.Fprintf(w, "%-5s  %-16s  %-24s  %-26s  %5s  %5s  %6s  %s\n",
		"ID", "Time", "Concept", "Model", "In", "Out", "Ms", "OK")
	fmt.Fprintln(w, strings.Repeat("─", 100))
	for _, e := range events {
		ok := "✓"
		if !e.Success {
			ok = "✗"
		}
		fmt.Fprintf(w, "%-5d  %-16s  %-24s  %-26s  %5d  %5d  %6d  %s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			truncate(conceptLabel(root, e.ConceptID), 24),
			truncate(e.Model, 26),
			e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
	}
}

func writeRequest(w io.Writer, root *concept.Node, e *store.LLMRequestEvent) {
	fmt.Fprintf(w, "Request:   %d\n", e.ID)
	fmt.Fprintf(w, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Concept:   %s (%s)\n", conceptLabel(root, e.ConceptID), e.ConceptID)
	fmt.Fprintf(w, "Model:     %s via %s\n", e.Model, e.Provider)
	fmt.Fprintf(w, "Tokens:    %d in / %d out in %dms\n", e.InputTokens, e.OutputTokens, e.LatencyMs)
	if e.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:     %s\n", e.ErrorMessage)
	}

	for _, part := range []struct{ title, body string }{
		{"PROMPT", e.RequestBody},
		{"REPLY", e.ResponseBody},
	} {
		fmt.Fprintf(w, "\n── %s %s\n", part.title, strings.Repeat("─", 56-len(part.title)))
		if part.body == "" {
			fmt.Fprintln(w, "(not captured)")
			continue
		}
		fmt.Fprintln(w, strings.TrimRight(part.body, "\n"))
	}
}

func writeUsage(w io.Writer, root *concept.Node, byConcept, byModel []store.LLMUsage) {
	if len(byConcept) == 0 {
		fmt.Fprintln(w, "No insight requests recorded.")
		return
	}

	rule := strings.Repeat("─", 72)
	fmt.Fprintln(w, "Insights by concept")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-28s  %6s  %6s  %10s  %10s  %6s\n", "Concept", "Calls", "Failed", "Input", "Output", "Avg ms")
	var calls, in, out int
	for _, u := range byConcept {
		fmt.Fprintf(w, "%-28s  %6d  %6d  %10d  %10d  %6d\n",
			truncate(conceptLabel(root, u.Key), 28), u.Requests, u.Failures, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		calls += u.Requests
		in += u.InputTokens
		out += u.OutputTokens
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-28s  %6d  %6s  %10d  %10d\n", "TOTAL", calls, "", in, out)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Estimated cost (USD)")
	fmt.Fprintln(w, rule)
	var total float64
	var unpriced []string
	for _, u := range byModel {
		price := llm.LookupCost(u.Key)
		if price == nil {
			unpriced = append(unpriced, u.Key)
			fmt.Fprintf(w, "%-32s  %6d  %10s\n", truncate(u.Key, 32), u.Requests, "?")
			continue
		}
		c := price.Cost(u.InputTokens, u.OutputTokens)
		total += c
		fmt.Fprintf(w, "%-32s  %6d  %10s\n", truncate(u.Key, 32), u.Requests, formatCost(c))
	}
	fmt.Fprintln(w, rule)
	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s\n", label, "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("concept", "c", "", "Only requests about this concept id")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
