package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestMultiChoice_EnterSubmitsSelected(t *testing.T) {
	m := NewMultiChoice("Which learns from labels?", []string{"Clustering", "Classification", "PCA"}, 1)
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("enter"))

	assert.True(t, m.Submitted)
	assert.True(t, m.IsCorrect())
	assert.Equal(t, "Classification", m.Chosen())

	// Keys after submission are ignored.
	m, _ = m.Update(key("up"))
	assert.Equal(t, 1, m.Selected)
}

func TestMultiChoice_DigitPicksDirectly(t *testing.T) {
	m := NewMultiChoice("?", []string{"a", "b", "c"}, 0)
	m, _ = m.Update(key("3"))
	assert.True(t, m.Submitted)
	assert.False(t, m.IsCorrect())
	assert.Equal(t, "c", m.Chosen())

	m.Reset()
	assert.False(t, m.Submitted)
	assert.Equal(t, "", m.Chosen())

	m, _ = m.Update(key("9"))
	assert.False(t, m.Submitted, "out of range digit is ignored")
}

func TestMultiChoice_View(t *testing.T) {
	m := NewMultiChoice("Pick one", []string{"x", "y"}, 0)
	v := m.View()
	assert.Contains(t, v, "Pick one")
	assert.Contains(t, v, "▸ 1)  x")
	assert.Contains(t, v, "2)  y")
}

func TestMenu_WrapsAndShortcuts(t *testing.T) {
	var ran []string
	m := NewMenu(
		MenuItem{Key: "s", Label: "Start Exploring", Action: func() tea.Cmd { ran = append(ran, "start"); return nil }},
		MenuItem{Key: "q", Label: "Quit", Action: func() tea.Cmd { ran = append(ran, "quit"); return nil }},
	)
	assert.Equal(t, 0, m.Selected)

	m, _ = m.Update(key("up"))
	assert.Equal(t, 1, m.Selected)
	m, _ = m.Update(key("down"))
	assert.Equal(t, 0, m.Selected)

	m, _ = m.Update(key("enter"))
	m, _ = m.Update(key("q"))
	assert.Equal(t, []string{"start", "quit"}, ran)
	assert.Equal(t, 1, m.Selected)

	v := ansi.Strip(m.View(30))
	assert.Contains(t, v, "Start Exploring  s")
	assert.Contains(t, v, "Quit  q")
}

func TestMenu_EmptyIgnoresKeys(t *testing.T) {
	m, cmd := NewMenu().Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Empty(t, m.View(30))
}

func TestProgressBar_Clamps(t *testing.T) {
	full := NewProgressBar("", 1.5, true, 20).View()
	assert.Contains(t, full, "150%")

	empty := NewProgressBar("Progress", 0, false, 30).View()
	assert.True(t, strings.HasPrefix(ansi.Strip(empty), "Progress  "))
}

func TestSearchInput_ReportsChange(t *testing.T) {
	s := NewSearchInput("search concepts", 64)
	s.Focus()

	s, _, changed := s.Update(key("g"))
	assert.True(t, changed)
	assert.Equal(t, "g", s.Value())

	_, _, changed = s.Update(key("down"))
	assert.False(t, changed)

	assert.Contains(t, s.View(0), "no matches")
	assert.Contains(t, s.View(3), "3 matches")
}

func TestPanelWidth(t *testing.T) {
	assert.Equal(t, 20, PanelWidth(10))
	assert.Equal(t, 54, PanelWidth(60))
	assert.Equal(t, 64, PanelWidth(200))
}
