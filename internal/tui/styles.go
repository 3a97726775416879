package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	gruvboxBg0    = lipgloss.Color("#282828")
	gruvboxBg1    = lipgloss.Color("#3c3836")
	gruvboxFg0    = lipgloss.Color("#fbf1c7")
	gruvboxFg1    = lipgloss.Color("#ebdbb2")
	gruvboxFg2    = lipgloss.Color("#d5c4a1")
	gruvboxRed    = lipgloss.Color("#fb4934")
	gruvboxGreen  = lipgloss.Color("#b8bb26")
	gruvboxYellow = lipgloss.Color("#fabd2f")
	gruvboxBlue   = lipgloss.Color("#83a598")
	gruvboxAqua   = lipgloss.Color("#8ec07c")
	gruvboxOrange = lipgloss.Color("#fe8019")
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(gruvboxYellow).
			Background(gruvboxBg1).
			Padding(1, 2).
			Width(80).
			Align(lipgloss.Center)

	// Download item styles
	downloadItemStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Width(80)

	selectedDownloadStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(gruvboxYellow).
				Padding(0, 1)

	statusStyleActive = lipgloss.NewStyle().
				Foreground(gruvboxGreen).
				Bold(true)

	statusStyleQueued = lipgloss.NewStyle().
				Foreground(gruvboxYellow).
				Bold(true)

	statusStylePaused = lipgloss.NewStyle().
				Foreground(gruvboxOrange).
				Bold(true)

	statusStyleCompleted = lipgloss.NewStyle().
				Foreground(gruvboxBlue).
				Bold(true)

	statusStyleFailed = lipgloss.NewStyle().
				Foreground(gruvboxRed).
				Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(gruvboxOrange)

	detailStyle = lipgloss.NewStyle().
			Foreground(gruvboxFg2).
			Faint(true)

	// Add download form styles
	formLabelStyle = lipgloss.NewStyle().
			Foreground(gruvboxFg0).
			MarginRight(1)

	formInputStyle = lipgloss.NewStyle().
			Foreground(gruvboxFg1).
			Background(gruvboxBg1).
			Padding(0, 1)

	logLineStyle = lipgloss.NewStyle().
			Foreground(gruvboxAqua)

	// Notification box
	messageStyle = lipgloss.NewStyle().
			Padding(0, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(gruvboxGreen).
			Align(lipgloss.Center)

	errorStyle = lipgloss.NewStyle().
			Foreground(gruvboxBg0).
			Background(gruvboxRed).
			Padding(0, 1).
			Margin(1, 0).
			Width(80).
			Align(lipgloss.Center)
)
