package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/orbit/internal/app"
	"github.com/abhisek/orbit/internal/config"
	"github.com/abhisek/orbit/internal/insight"
	"github.com/abhisek/orbit/internal/llm"
	"github.com/abhisek/orbit/internal/logging"
	"github.com/abhisek/orbit/internal/progress"
	"github.com/abhisek/orbit/internal/screens/common"
	"github.com/abhisek/orbit/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := tuiLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	root, source, err := loadConcepts(cfg)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	tracker, err := progress.NewTracker(ctx, root, st.MasteryRepo(), st.AttemptRepo())
	if err != nil {
		return err
	}

	deps := &common.Deps{
		Root:      root,
		Source:    source,
		Tracker:   tracker,
		Insight:   newInsightGenerator(ctx, cfg, st.EventRepo(), logger),
		Snapshots: st.SnapshotRepo(),
		Diagram:   cfg.Diagram,
		Logger:    logger,
	}

	opts := app.Options{Deps: deps}
	if cfg.Concepts.Watch && cfg.Concepts.Path != "" {
		opts.WatchPath = cfg.Concepts.Path
	}

	logger.Info("starting", "version", resolvedVersion(), "concepts", source)
	return app.Run(ctx, opts)
}

// tuiLogger logs to a file, since the terminal belongs to the TUI.
func tuiLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	path := cfg.Log.File
	if path == "" {
		if path, err = logging.DefaultPath(); err != nil {
			return nil, nil, err
		}
	}
	return logging.OpenFile(path, level)
}

// newInsightGenerator builds the insight generator. Without a usable
// provider it still returns a generator, which answers every request with
// the not-configured message.
func newInsightGenerator(ctx context.Context, cfg *config.Config, events store.EventRepo, logger *slog.Logger) *insight.Generator {
	icfg := insight.DefaultConfig()
	lcfg, ok := cfg.LLMSettings(os.Getenv)
	if !ok {
		logger.Info("LLM provider not configured; insights unavailable", "provider", lcfg.Provider)
		return insight.New(nil, icfg)
	}
	provider, err := llm.NewProvider(ctx, lcfg, events, logger)
	if err != nil {
		logger.Warn("LLM provider unavailable", "provider", lcfg.Provider, "error", err)
		return insight.New(nil, icfg)
	}
	if lcfg.Timeout > 0 {
		icfg.Timeout = lcfg.Timeout
	}
	logger.Info("LLM provider ready", "provider", lcfg.Provider, "model", provider.ModelID())
	return insight.New(provider, icfg)
}
