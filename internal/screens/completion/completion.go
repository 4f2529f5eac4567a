// Package completion congratulates the learner once every quiz is
// mastered and offers to start over.
package completion

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/orbit/internal/router"
	"github.com/abhisek/orbit/internal/screen"
	"github.com/abhisek/orbit/internal/screens/common"
	"github.com/abhisek/orbit/internal/ui/components"
	"github.com/abhisek/orbit/internal/ui/layout"
	"github.com/abhisek/orbit/internal/ui/theme"
)

const (
	headline = "Congratulations!"
	subline  = "You have mastered the entire AI Concept Map."
	body     = "You've explored the depths of Artificial Intelligence, from the core concepts to advanced applications. This is a huge achievement in your learning journey."
)

// Screen is the completion view.
type Screen struct {
	deps       *common.Deps
	confirming bool
	err        error
}

var _ screen.Screen = (*Screen)(nil)

// New creates the completion screen.
func New(deps *common.Deps) *Screen {
	return &Screen{deps: deps}
}

func (s *Screen) Init() tea.Cmd { return nil }
func (s *Screen) Title() string { return "Complete" }
func (s *Screen) FullScreen() bool { return true }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	key := kmsg.String()

	if !s.confirming {
		if key == "enter" || key == "r" {
			s.confirming = true
		}
		return s, nil
	}

	switch key {
	case "y", "Y":
		return s, s.restart()
	case "n", "N":
		s.confirming = false
	}
	return s, nil
}

// restart clears all progress and goes back to the landing screen.
func (s *Screen) restart() tea.Cmd {
	if err := s.deps.Tracker.Reset(context.Background()); err != nil {
		s.err = err
		s.confirming = false
		s.deps.Logger.Error("reset progress", "error", err)
		return nil
	}
	s.deps.Logger.Info("progress reset")
	landing := s.deps.Landing()
	return func() tea.Msg {
		return router.ResetScreenMsg{Screen: landing}
	}
}

func (s *Screen) View(width, height int) string {
	cw := components.PanelWidth(width)

	var sections []string
	sections = append(sections,
		theme.Correct.Render("✓"),
		theme.Title.Render(headline),
		lipgloss.NewStyle().Foreground(theme.Success).Render(subline),
		components.Card(theme.Body.Render(body), cw),
	)

	if s.confirming {
		sections = append(sections, theme.ErrorText.Render("Restart and clear all progress? (y/n)"))
	} else {
		sections = append(sections, components.PillButton("Restart Journey", true, min(cw, 30)))
	}
	if s.err != nil {
		sections = append(sections, theme.ErrorText.Render("Could not reset progress: "+s.err.Error()))
	}

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

// KeyHints returns the footer hints.
func (s *Screen) KeyHints() []layout.KeyHint {
	if s.confirming {
		return []layout.KeyHint{{Key: "y", Description: "Restart"}, {Key: "n", Description: "Cancel"}}
	}
	return []layout.KeyHint{{Key: "Enter", Description: "Restart Journey"}, {Key: "Esc", Description: "Keep exploring"}}
}
