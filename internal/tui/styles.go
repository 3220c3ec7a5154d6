package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color("#7D56F4"))

	// Project path styling
	ProjectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	// Project or target type tag
	TagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B"))

	// Size styling
	SizeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#56B6C2"))

	// Action labels
	CleaningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	SimulatingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B"))

	SkippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	// Help text styling
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)

	// Warning styling
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B")).
			Bold(true)

	// Error styling
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	// Success styling
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	// Subtle text styling
	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// NewHuhTheme returns the form theme used by interactive prompts.
func NewHuhTheme() *huh.Theme {
	theme := huh.ThemeCharm()
	theme.Focused.Title = theme.Focused.Title.Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	theme.Focused.FocusedButton = theme.Focused.FocusedButton.Background(lipgloss.Color("#7D56F4"))
	return theme
}
