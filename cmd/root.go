package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/config"
	"github.com/abhisek/orbit/internal/logging"
	"github.com/abhisek/orbit/internal/store"
)

// builtinSource names the bundled concept map in saved explorer state.
const builtinSource = "builtin"

var rootCmd = &cobra.Command{
	Use:   "orbit",
	Short: "Explore the AI concept map in your terminal",
	Long: "Orbit draws a radial map of Artificial Intelligence concepts. Expand branches,\n" +
		"search, read about each concept and master it by passing its quiz.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/orbit/config.toml)")
	pf.String("db", "", "Path to SQLite database file (overrides ORBIT_DB env var)")
	pf.String("concepts", "", "Concept file, YAML or JSON (default: built-in AI concept map)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-file", "", "Log file for the TUI (default $XDG_STATE_HOME/orbit/orbit.log)")

	rootCmd.AddCommand(conceptsCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(insightCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flag := func(name string, dst *string) {
		if v, _ := cmd.Flags().GetString(name); v != "" {
			*dst = v
		}
	}
	flag("db", &cfg.Store.Path)
	flag("concepts", &cfg.Concepts.Path)
	flag("log-level", &cfg.Log.Level)
	flag("log-file", &cfg.Log.File)
	return cfg, nil
}

// cliLogger returns a stderr logger for non-interactive commands.
func cliLogger(cfg *config.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
	// Subcommands print their results on stdout; keep stderr quiet unless asked.
	if cfg.Log.Level == "" || cfg.Log.Level == "info" {
		level = slog.LevelWarn
	}
	return logging.New(os.Stderr, level)
}

// resolveDBPath returns the database path from config (flag, ORBIT_DB or
// the file), then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.Store.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// loadConcepts returns the configured concept tree and the source name
// saved with explorer state.
func loadConcepts(cfg *config.Config) (*concept.Node, string, error) {
	if cfg.Concepts.Path == "" {
		return concept.Default(), builtinSource, nil
	}
	doc, err := concept.Load(cfg.Concepts.Path)
	if err != nil {
		return nil, "", err
	}
	return doc.Root, cfg.Concepts.Path, nil
}
