package tui

import "github.com/charmbracelet/lipgloss"

// Static styles for content elements, following the teacher's
// palette-per-concern convention (one style per semantic role rather
// than per literal color).
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	RedSuitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	BlackSuitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	SelfStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	OpponentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	ChosenMoveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	BeliefBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))
)
