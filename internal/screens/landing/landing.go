// Package landing is the first screen: a title, a short pitch, and the
// way in.
package landing

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/router"
	"github.com/abhisek/orbit/internal/screen"
	"github.com/abhisek/orbit/internal/screens/common"
	"github.com/abhisek/orbit/internal/ui/components"
	"github.com/abhisek/orbit/internal/ui/layout"
	"github.com/abhisek/orbit/internal/ui/theme"
)

const tickInterval = 150 * time.Millisecond

const bannerArt = `
  ██████╗ ██████╗ ██████╗ ██╗████████╗
 ██╔═══██╗██╔══██╗██╔══██╗██║╚══██╔══╝
 ██║   ██║██████╔╝██████╔╝██║   ██║
 ██║   ██║██╔══██╗██╔══██╗██║   ██║
 ╚██████╔╝██║  ██║██████╔╝██║   ██║
  ╚═════╝ ╚═╝  ╚═╝╚═════╝ ╚═╝   ╚═╝`

const bannerCompact = "O R B I T"

const (
	title   = "AI Concept Map"
	tagline = "Explore the vast universe of Artificial Intelligence.\nFrom Machine Learning to Robotics, visualize how everything connects."
)

// orbitFrames is a satellite circling the core.
var orbitFrames = []string{
	"    ·    \n  ·   ◦  \n ·  ◉  · \n  ·   ·  \n    ·    ",
	"    ·    \n  ·   ·  \n ·  ◉  ◦ \n  ·   ·  \n    ·    ",
	"    ·    \n  ·   ·  \n ·  ◉  · \n  ·   ◦  \n    ·    ",
	"    ·    \n  ·   ·  \n ·  ◉  · \n  ·   ·  \n    ◦    ",
	"    ·    \n  ·   ·  \n ·  ◉  · \n  ◦   ·  \n    ·    ",
	"    ·    \n  ·   ·  \n ◦  ◉  · \n  ·   ·  \n    ·    ",
	"    ·    \n  ◦   ·  \n ·  ◉  · \n  ·   ·  \n    ·    ",
	"    ◦    \n  ·   ·  \n ·  ◉  · \n  ·   ·  \n    ·    ",
}

type tickMsg time.Time

// Screen is the landing screen.
type Screen struct {
	deps     *common.Deps
	explorer func() screen.Screen
	menu     components.Menu
	frame    int
	started  bool
}

var _ screen.Screen = (*Screen)(nil)

// New creates the landing screen. explorer builds the screen that
// replaces it on start.
func New(deps *common.Deps, explorer func() screen.Screen) *Screen {
	s := &Screen{deps: deps, explorer: explorer}
	s.menu = components.NewMenu(
		components.MenuItem{Key: "s", Label: "Start Exploring", Action: s.start},
		components.MenuItem{Key: "q", Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)
	return s
}

func (s *Screen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (s *Screen) Title() string    { return "" }
func (s *Screen) FullScreen() bool { return true }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if s.started {
			return s, nil
		}
		s.frame = (s.frame + 1) % len(orbitFrames)
		return s, tick()

	case common.ReloadMsg:
		if msg.Err == nil {
			s.deps.Root = msg.Doc.Root
			s.deps.Tracker.SetConcepts(msg.Doc.Root)
		}
		return s, nil

	case tea.MouseClickMsg:
		return s, s.start()

	case tea.KeyPressMsg:
		if k := msg.String(); k == " " || k == "space" {
			return s, s.start()
		}
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *Screen) start() tea.Cmd {
	if s.started {
		return nil
	}
	s.started = true
	next := s.explorer()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (s *Screen) View(width, height int) string {
	cw := components.PanelWidth(width)
	compact := layout.IsCompact(width, height)

	var sections []string
	if !compact {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Primary).Render(orbitFrames[s.frame]))
	}
	sections = append(sections, renderBanner(width, compact), theme.Title.Render(title))
	sections = append(sections, theme.Subtitle.Width(cw).Render(tagline))
	sections = append(sections, s.stats())

	sections = append(sections, s.menu.View(min(cw, 30)))

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (s *Screen) stats() string {
	m, total := s.deps.Tracker.Counts()
	line := fmt.Sprintf("%d concepts · %d quizzes", concept.Count(s.deps.Root), total)
	if m > 0 {
		line += fmt.Sprintf(" · %d mastered", m)
	}
	return theme.Hint.Render(line)
}

func renderBanner(width int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	if compact || width < 44 {
		return style.Render(bannerCompact)
	}
	return style.Render(strings.TrimPrefix(bannerArt, "\n"))
}

// KeyHints returns the footer hints.
func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "s", Description: "Start"},
		{Key: "q", Description: "Quit"},
	}
}
