package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7ee787"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8b949e"))

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f0883e"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6e7681"))

	legendHiddenStyle = lipgloss.NewStyle().
				Strikethrough(true).
				Foreground(lipgloss.Color("#6e7681"))

	monitorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#30363d"))
)
