package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/orbit/internal/ui/theme"
)

// PanelWidth returns the inner width used for centered panels such as the
// landing and completion screens.
func PanelWidth(frameWidth int) int {
	// Leave room for the frame border (2) and padding (4).
	return min(max(frameWidth-6, 20), 64)
}

// Frame wraps content in a rounded border, centered within the given
// dimensions.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card wraps content in a bordered card at the given width.
func Card(content string, width int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(width - 2).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(content)
}

// PillButton renders a full-width button, highlighted when selected.
func PillButton(label string, selected bool, width int) string {
	if selected {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Bold(true).
			Foreground(theme.BgDark).
			Background(theme.Secondary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Secondary).
			Padding(0, 1).
			Render("▸ " + label)
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Render(label)
}
