package cli

import "github.com/charmbracelet/lipgloss"

// Styles shared by the list-shaped commands
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	starStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	archivedStyle = lipgloss.NewStyle().
			Faint(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	platformStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("120"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246")) // Lighter gray for dark terminals
)
