package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/insight"
)

var insightCmd = &cobra.Command{
	Use:   "insight <concept-id>",
	Short: "Generate a short AI insight about a concept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		root, _, err := loadConcepts(cfg)
		if err != nil {
			return err
		}
		n := concept.Find(root, args[0])
		if n == nil {
			return fmt.Errorf("unknown concept %q", args[0])
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		logger := cliLogger(cfg)
		gen := newInsightGenerator(ctx, cfg, st.EventRepo(), logger)

		text, err := gen.Generate(ctx, n)
		if err != nil {
			logger.Debug("insight failed", "concept", n.ID, "error", err)
			fmt.Println(insight.Message(err))
			return err
		}
		fmt.Printf("%s\n\n💡 %s\n", n.Name, text)
		return nil
	},
}
