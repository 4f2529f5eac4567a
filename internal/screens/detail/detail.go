// Package detail shows one concept: its description, link, mastery, an
// optional AI insight, and its quiz.
package detail

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/insight"
	"github.com/abhisek/orbit/internal/progress"
	"github.com/abhisek/orbit/internal/screen"
	"github.com/abhisek/orbit/internal/screens/common"
	"github.com/abhisek/orbit/internal/ui/components"
	"github.com/abhisek/orbit/internal/ui/layout"
	"github.com/abhisek/orbit/internal/ui/theme"
)

// Learner-facing quiz messages.
const (
	MsgMastered = "✨ Concept Mastered! ✨"
	MsgWrong    = "Not quite! Review the material and try again later."
)

type mode int

const (
	modeReading mode = iota
	modeQuiz
)

// insightMsg carries an insight back from the background request.
type insightMsg struct {
	id   string
	text string
	err  error
}

// Screen is the concept detail view.
type Screen struct {
	deps *common.Deps
	node *concept.Node

	mode    mode
	quiz    components.MultiChoice
	outcome *progress.Outcome
	err     error

	insight        string
	insightLoading bool

	rendered      string
	renderedWidth int
}

var _ screen.Screen = (*Screen)(nil)

// New creates a detail screen for n.
func New(deps *common.Deps, n *concept.Node) *Screen {
	return &Screen{deps: deps, node: n}
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return s.node.Name
}

func (s *Screen) mastered() bool {
	return s.deps.Tracker.IsMastered(s.node.ID)
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case insightMsg:
		if msg.id != s.node.ID {
			return s, nil
		}
		s.insightLoading = false
		if msg.err != nil {
			s.deps.Logger.Warn("insight failed", "concept", msg.id, "error", msg.err)
			s.insight = insight.Message(msg.err)
		} else {
			s.insight = msg.text
		}
		return s, nil

	case tea.KeyMsg:
		if s.mode == modeQuiz {
			return s, s.quizKey(msg)
		}
		switch msg.String() {
		case "t", "enter":
			s.startQuiz()
		case "i":
			return s, s.requestInsight()
		}
	}
	return s, nil
}

func (s *Screen) startQuiz() {
	q := s.node.Quiz
	if q == nil || s.mastered() {
		return
	}
	s.mode = modeQuiz
	s.outcome = nil
	s.err = nil
	s.quiz = components.NewMultiChoice(q.Question, q.Options, q.CorrectIndex())
}

func (s *Screen) quizKey(msg tea.KeyMsg) tea.Cmd {
	if s.quiz.Submitted {
		// Any key after an answer returns to reading.
		s.mode = modeReading
		return nil
	}
	s.quiz, _ = s.quiz.Update(msg)
	if !s.quiz.Submitted {
		return nil
	}
	out, err := s.deps.Tracker.Answer(context.Background(), s.node, s.quiz.Chosen())
	if err != nil {
		s.err = err
		s.deps.Logger.Error("record quiz answer", "concept", s.node.ID, "error", err)
	}
	s.outcome = &out
	if out.NewlyMastered {
		s.deps.Logger.Info("concept mastered", "concept", s.node.ID)
	}
	return nil
}

func (s *Screen) requestInsight() tea.Cmd {
	if s.insightLoading {
		return nil
	}
	s.insightLoading = true
	gen, n := s.deps.Insight, s.node
	if gen == nil {
		gen = insight.New(nil, insight.DefaultConfig())
	}
	return func() tea.Msg {
		text, err := gen.Generate(context.Background(), n)
		return insightMsg{id: n.ID, text: text, err: err}
	}
}

func (s *Screen) View(width, height int) string {
	cw := min(width-4, 80)

	var sections []string
	sections = append(sections, lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(s.node.Name))
	if s.node.IsApplication {
		sections = append(sections, theme.Hint.Render("application"))
	}

	sections = append(sections, s.description(cw))

	if s.node.Link != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Secondary).Underline(true).Render("Learn more → "+s.node.Link))
	}

	switch {
	case s.mode == modeQuiz:
		sections = append(sections, components.Card(s.quiz.View(), cw))
	case s.mastered():
		sections = append(sections, theme.MasteredBadge.Render(MsgMastered))
	case s.node.Quiz != nil:
		sections = append(sections, components.PillButton("Test Your Knowledge", true, min(cw, 30)))
	}

	if s.outcome != nil && !s.outcome.Correct {
		sections = append(sections, theme.ErrorText.Render(MsgWrong))
	}
	if s.err != nil {
		sections = append(sections, theme.ErrorText.Render("Could not save your answer: "+s.err.Error()))
	}

	switch {
	case s.insightLoading:
		sections = append(sections, theme.Hint.Render("Generating insight…"))
	case s.insight != "":
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Accent).
			Width(cw).
			Render("💡 "+s.insight))
	}

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(content))
}

// description renders the concept description as markdown, cached per
// width.
func (s *Screen) description(width int) string {
	if s.rendered != "" && s.renderedWidth == width {
		return s.rendered
	}
	text := strings.TrimSpace(s.node.Description)
	if text == "" {
		text = "_No description available._"
	}
	out, err := renderMarkdown(text, width)
	if err != nil {
		out = theme.Body.Width(width).Render(text)
	}
	s.rendered = strings.Trim(out, "\n")
	s.renderedWidth = width
	return s.rendered
}

func renderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// KeyHints returns the footer hints for the current mode.
func (s *Screen) KeyHints() []layout.KeyHint {
	if s.mode == modeQuiz {
		if s.quiz.Submitted {
			return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
		}
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Enter", Description: "Answer"},
			{Key: "Esc", Description: "Back"},
		}
	}
	hints := []layout.KeyHint{}
	if s.node.Quiz != nil && !s.mastered() {
		hints = append(hints, layout.KeyHint{Key: "t", Description: "Take quiz"})
	}
	hints = append(hints,
		layout.KeyHint{Key: "i", Description: "AI insight"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
	return hints
}
