package tui

import "github.com/charmbracelet/lipgloss"

// Centralized style definitions for the TUI.
var (
	// Scrollback prefixes.
	mentorPrefixStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan
	youPrefixStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")) // blue

	// Narration from the authority.
	narratorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	// Errors and rewards.
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))            // red
	rewardStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")) // yellow

	// Live view chrome.
	activityStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okDotStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	pendingDotStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
)
