// Package app runs the orbit TUI: a router of screens framed by a header
// with the learner's progress and a footer of key hints.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/router"
	"github.com/abhisek/orbit/internal/screen"
	"github.com/abhisek/orbit/internal/screens/common"
	"github.com/abhisek/orbit/internal/screens/explorer"
	"github.com/abhisek/orbit/internal/screens/landing"
	"github.com/abhisek/orbit/internal/ui/layout"
)

// Options holds the dependencies for the TUI.
type Options struct {
	Deps *common.Deps

	// WatchPath is the concept file to reload on change. Empty disables
	// reloading.
	WatchPath string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	deps   *common.Deps
	width  int
	height int
}

// newAppModel creates a new AppModel starting on the landing screen.
func newAppModel(deps *common.Deps) AppModel {
	newExplorer := func() screen.Screen { return explorer.New(deps) }
	deps.Landing = func() screen.Screen { return landing.New(deps, newExplorer) }
	return AppModel{
		router: router.New(deps.Landing()),
		deps:   deps,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.router.Broadcast(msg)

	case common.ReloadMsg:
		return m, m.router.Broadcast(msg)

	case router.PushScreenMsg, router.ReplaceScreenMsg, router.ResetScreenMsg:
		// A screen that arrives after the last resize still needs a size.
		cmd := m.router.Update(msg)
		return m, tea.Batch(cmd, m.sizeActive())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.Broadcast(common.SaveMsg{})
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// sizeActive tells the active screen the current terminal size.
func (m AppModel) sizeActive() tea.Cmd {
	if m.width == 0 || m.height == 0 {
		return nil
	}
	return m.router.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	v.WindowTitle = "orbit"
	return v
}

// render draws the active screen, framed unless it is full-screen.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	if fs, ok := active.(screen.FullScreen); ok && fs.FullScreen() {
		return m.router.View(m.width, m.height)
	}

	header := layout.RenderHeader(active.Title(), m.deps.Tracker.Percent(), m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	content := m.router.View(m.width, layout.ContentHeight(m.height))
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	var hints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Run starts the Bubble Tea program and, when asked, reloads the concept
// file into it on every change.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Deps.Logger
	p := tea.NewProgram(newAppModel(opts.Deps), tea.WithContext(ctx))

	if opts.WatchPath != "" {
		w := concept.NewWatcher(opts.WatchPath)
		w.OnChange(func(doc *concept.Document, err error) {
			p.Send(common.ReloadMsg{Doc: doc, Err: err})
		})
		stop, err := w.Watch(ctx)
		if err != nil {
			logger.Warn("concept reload disabled", "path", opts.WatchPath, "error", err)
		} else {
			defer stop()
			logger.Debug("watching concepts", "path", opts.WatchPath)
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
