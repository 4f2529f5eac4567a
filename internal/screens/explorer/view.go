package explorer

import (
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/orbit/internal/canvas"
	"github.com/abhisek/orbit/internal/ui/components"
	"github.com/abhisek/orbit/internal/ui/layout"
	"github.com/abhisek/orbit/internal/ui/theme"
)

// View draws the diagram at the size of the last WindowSizeMsg. Until one
// arrives there is nothing to lay out, so only the search and status lines
// are drawn.
func (s *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(s.topLine(width))
	b.WriteByte('\n')
	if s.cols > 0 && s.rows > 0 {
		b.WriteString(s.render(s.now()).String())
	}
	b.WriteByte('\n')
	b.WriteString(s.statusLine(width))
	return b.String()
}

func (s *Screen) render(now time.Time) *canvas.Raster {
	return canvas.Render(s.diagram.Frame(now), s.cols, s.rows)
}

// topLine is the search box on the left and the progress bar on the right.
func (s *Screen) topLine(width int) string {
	left := s.search.View(len(s.diagram.Search().Matches))
	barWidth := min(30, width/3)
	m, total := s.deps.Tracker.Counts()
	pct := 0.0
	if total > 0 {
		pct = float64(m) / float64(total)
	}
	right := components.NewProgressBar("", pct, true, barWidth).View()
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

// statusLine names the selected or focused concept, or shows a problem.
func (s *Screen) statusLine(width int) string {
	if s.status != "" {
		return theme.ErrorText.MaxWidth(width).Render(s.status)
	}
	if err := s.diagram.Err(); err != nil {
		return theme.ErrorText.MaxWidth(width).Render(err.Error())
	}
	if sel := s.diagram.Selected(); sel != nil {
		line := "selected: " + sel.Name
		if s.deps.Tracker.IsMastered(sel.ID) {
			line += "  ✓ mastered"
		}
		return theme.Selected.MaxWidth(width).Render(line)
	}
	return theme.Hint.MaxWidth(width).Render("click a concept for details · alt+click or space expands · drag to pan")
}

// KeyHints returns the footer hints, which change while searching.
func (s *Screen) KeyHints() []layout.KeyHint {
	if s.search.Focused() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
			{Key: "Esc", Description: "Clear"},
		}
	}
	return []layout.KeyHint{
		{Key: "/", Description: "Search"},
		{Key: "Tab", Description: "Focus"},
		{Key: "Enter", Description: "Details"},
		{Key: "Space", Description: "Expand"},
		{Key: "+/-", Description: "Zoom"},
		{Key: "r", Description: "Reset"},
		{Key: "q", Description: "Quit"},
	}
}
