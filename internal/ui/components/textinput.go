package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/orbit/internal/ui/theme"
)

// SearchInput wraps bubbles/textinput as the explorer search box. It
// reports whether the value changed so the caller can refilter.
type SearchInput struct {
	Model textinput.Model
}

// NewSearchInput creates an unfocused search box.
func NewSearchInput(placeholder string, charLimit int) SearchInput {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = placeholder
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return SearchInput{Model: ti}
}

// Focus starts accepting keys.
func (s *SearchInput) Focus() tea.Cmd {
	return s.Model.Focus()
}

// Blur stops accepting keys.
func (s *SearchInput) Blur() {
	s.Model.Blur()
}

// Focused reports whether the box takes keys.
func (s SearchInput) Focused() bool {
	return s.Model.Focused()
}

// Update handles messages. changed is true when the value differs after
// the update.
func (s SearchInput) Update(msg tea.Msg) (SearchInput, tea.Cmd, bool) {
	before := s.Model.Value()
	var cmd tea.Cmd
	s.Model, cmd = s.Model.Update(msg)
	return s, cmd, s.Model.Value() != before
}

// SetValue replaces the text.
func (s *SearchInput) SetValue(v string) {
	s.Model.SetValue(v)
}

// Value returns the current input value.
func (s SearchInput) Value() string {
	return s.Model.Value()
}

// View renders the search box, with the match count when there is a query.
func (s SearchInput) View(matches int) string {
	view := s.Model.View()
	if s.Model.Value() == "" {
		return view
	}
	style := lipgloss.NewStyle().Foreground(theme.Match)
	if matches == 0 {
		style = lipgloss.NewStyle().Foreground(theme.Error)
	}
	return view + "  " + style.Render(matchLabel(matches))
}

func matchLabel(n int) string {
	switch n {
	case 0:
		return "no matches"
	case 1:
		return "1 match"
	default:
		return strconv.Itoa(n) + " matches"
	}
}
