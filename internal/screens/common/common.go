// Package common holds what the orbit screens share: their dependencies
// and the messages they exchange through the router.
package common

import (
	"log/slog"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/config"
	"github.com/abhisek/orbit/internal/insight"
	"github.com/abhisek/orbit/internal/progress"
	"github.com/abhisek/orbit/internal/screen"
	"github.com/abhisek/orbit/internal/store"
)

// Deps is shared by every screen of one program run.
type Deps struct {
	// Root is the current concept tree. Reloads replace it.
	Root *concept.Node
	// Source names where Root came from: a file path or "builtin".
	Source string

	Tracker   *progress.Tracker
	Insight   *insight.Generator
	Snapshots store.SnapshotRepo // nil disables explorer state restore
	Diagram   config.DiagramConfig
	Logger    *slog.Logger

	// Landing builds a fresh landing screen. Restarting returns there.
	Landing func() screen.Screen
}

// ReloadMsg carries the result of re-reading the concept file. Doc is nil
// when Err is set.
type ReloadMsg struct {
	Doc *concept.Document
	Err error
}

// SaveMsg asks screens to persist their state before the program exits.
type SaveMsg struct{}
