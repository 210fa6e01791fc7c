package tui

import "github.com/charmbracelet/lipgloss"

var (
	subtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))

	placeholderStyle = lipgloss.NewStyle().
				Faint(true).
				Italic(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	stoppedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	activeLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("63")).
			Bold(true)

	cursorLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpStyle = lipgloss.NewStyle().
			Faint(true)
)
