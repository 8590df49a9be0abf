// Package tui implements the interactive inspector: a tree browser over
// the HTML a document converts to, with a round-trip diff view.
package tui

import "github.com/charmbracelet/lipgloss"

// Adaptive colors that work on both light and dark backgrounds.
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#FF06B7", Dark: "#FF06B7"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#00A5D9", Dark: "#00D9FF"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#00AF87", Dark: "#00D787"}
	colorError   = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F87"}
	colorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#E4E4E4"}
	colorTextDim = lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#6C6C6C"}
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	NodeStyle = lipgloss.NewStyle().
			Foreground(colorText)

	AttrStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	TextPreviewStyle = lipgloss.NewStyle().
				Foreground(colorAccent)

	DiffAddStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	DiffDelStyle = lipgloss.NewStyle().
			Foreground(colorError)

	HelpStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			MarginTop(1)
)

// FormatHelp joins key hints with a dim separator.
func FormatHelp(items ...string) string {
	result := ""
	for i, item := range items {
		if i > 0 {
			result += HelpStyle.Render(" • ")
		}
		result += HelpStyle.Render(item)
	}
	return result
}
