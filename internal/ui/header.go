package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version string // Version string (e.g., "v0.1.0")
	Tagline string // Optional tagline (e.g., "Remote command herder")
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders a clean branded header. No ASCII art, just the
// name, version, and a divider.
func RenderHeader(info HeaderInfo) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ColorInfo).
		Bold(true)

	versionStyle := lipgloss.NewStyle().
		Foreground(ColorSecondary)

	taglineStyle := lipgloss.NewStyle().
		Foreground(ColorMuted)

	dividerStyle := lipgloss.NewStyle().
		Foreground(ColorMuted)

	var output strings.Builder

	output.WriteString(titleStyle.Render("drover"))
	output.WriteString(" ")
	output.WriteString(versionStyle.Render(info.Version))
	output.WriteString("\n")

	if info.Tagline != "" {
		output.WriteString(taglineStyle.Render(info.Tagline))
		output.WriteString("\n")
	}

	output.WriteString(dividerStyle.Render(strings.Repeat("━", HeaderWidth)))
	output.WriteString("\n")

	return output.String()
}

// PrintHeader prints the styled header to stdout.
func PrintHeader(info HeaderInfo) {
	fmt.Print(RenderHeader(info))
}
