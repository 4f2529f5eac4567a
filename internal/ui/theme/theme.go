package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, dark background with cyan and purple accents
var (
	Primary   = lipgloss.Color("#C084FC") // Purple, concepts with children
	Secondary = lipgloss.Color("#22D3EE") // Cyan, hover and focus
	Accent    = lipgloss.Color("#3B82F6") // Blue
	Success   = lipgloss.Color("#4ADE80") // Green, mastered
	Error     = lipgloss.Color("#F43F5E") // Rose
	Match     = lipgloss.Color("#FACC15") // Yellow, search matches
	Text      = lipgloss.Color("#F1F5F9") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate, leaf concepts
	Faint     = lipgloss.Color("#475569") // Dimmed by search
	BgDark    = lipgloss.Color("#111827") // Near black
	BgCard    = lipgloss.Color("#1F2937") // Dark grey
	Border    = lipgloss.Color("#374151") // Grey
	Link      = lipgloss.Color("#64748B") // Edges
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MasteredBadge = lipgloss.NewStyle().
			Foreground(BgDark).
			Background(Success).
			Bold(true).
			Padding(0, 1)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)
