package ui

import "github.com/charmbracelet/lipgloss"

var (
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	warnStyle    = lipgloss.NewStyle().Foreground(ColorWarning)
	infoStyle    = lipgloss.NewStyle().Foreground(ColorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	hostStyle    = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
)

// Success renders s in the success color.
func Success(s string) string { return successStyle.Render(s) }

// Error renders s in the error color.
func Error(s string) string { return errorStyle.Render(s) }

// Warn renders s in the warning color.
func Warn(s string) string { return warnStyle.Render(s) }

// Info renders s in the info color.
func Info(s string) string { return infoStyle.Render(s) }

// Muted renders s in the muted color, for timing and secondary text.
func Muted(s string) string { return mutedStyle.Render(s) }

// Host renders a host name with emphasis.
func Host(s string) string { return hostStyle.Render(s) }
