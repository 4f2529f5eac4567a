// Package layout frames every non-fullscreen screen: a one-line header bar
// with the title and progress, the screen's content, and a one-line footer
// bar of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/orbit/internal/ui/theme"
)

const (
	MinWidth  = 60
	MinHeight = 20

	// HeaderHeight and FooterHeight are fixed: bar contents are cut to
	// one line, so screens can size themselves from ContentHeight alone.
	HeaderHeight = 3
	FooterHeight = 3

	CompactWidthThreshold  = 100
	CompactHeightThreshold = 30

	// barInset is the border plus padding around a bar's text.
	barInset = 4
)

// KeyHint is one key and what it does, shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsCompact reports whether the terminal is too small for decorations
// such as the landing banner.
func IsCompact(width, height int) bool {
	return width < CompactWidthThreshold || height < CompactHeightThreshold
}

// IsTooSmall reports whether the diagram cannot be drawn usefully.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// ContentHeight is what is left for a screen between header and footer.
func ContentHeight(totalHeight int) int {
	return max(totalHeight-HeaderHeight-FooterHeight, 0)
}

// RenderMinSizeMessage asks the user for a bigger terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"orbit needs at least %d x %d to draw the map\n\nCurrent: %d x %d",
			MinWidth, MinHeight, width, height,
		))
}

// RenderHeader draws the brand on the left, the screen title centred and
// the mastered percentage on the right. A negative percent hides it.
func RenderHeader(title string, percent float64, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("◉ orbit")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)

	right := ""
	if percent >= 0 {
		style := lipgloss.NewStyle().Foreground(theme.Accent)
		if percent >= 100 {
			style = style.Foreground(theme.Success)
		}
		right = style.Render(fmt.Sprintf("%d%% mastered", int(percent)))
	}

	inner := max(width-barInset, 0)
	bw, cw, rw := lipgloss.Width(brand), lipgloss.Width(center), lipgloss.Width(right)
	leftGap := max((inner-cw)/2-bw, 1)
	rightGap := max(inner-bw-leftGap-cw-rw, 1)

	return bar(brand+strings.Repeat(" ", leftGap)+center+strings.Repeat(" ", rightGap)+right, width)
}

// RenderFooter draws the key hints. Hints that do not fit are cut off
// rather than wrapped onto a second line.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, key.Render(h.Key)+" "+desc.Render(h.Description))
	}
	return bar(strings.Join(parts, "   "), width)
}

// bar boxes a single line of text, truncated to fit inside the border.
func bar(line string, width int) string {
	line = ansi.Truncate(line, max(width-barInset, 0), "…")
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(line)
}

// RenderFrame stacks header, content and footer, padding or clipping the
// content to ContentHeight(height).
func RenderFrame(header, content, footer string, width, height int) string {
	body := lipgloss.NewStyle().
		Width(width).
		Height(ContentHeight(height)).
		MaxHeight(ContentHeight(height)).
		Render(content)
	return header + "\n" + body + "\n" + footer
}
