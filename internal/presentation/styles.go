package presentation

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Color palette - warm, photography-inspired
	primaryColor   = lipgloss.Color("#E8A87C") // warm orange
	secondaryColor = lipgloss.Color("#85DCB0") // mint green
	warningColor   = lipgloss.Color("#F6AE2D") // amber
	errorColor     = lipgloss.Color("#E85D75") // soft red
	mutedColor     = lipgloss.Color("#6B7280") // gray
	dimTextColor   = lipgloss.Color("#9CA3AF")

	iconFolder  = "📁"
	iconSuccess = "✓"
	iconError   = "✗"
	iconArrow   = "→"
)

// styles are bound to a renderer so that output to a pipe or a file carries
// no escape codes.
type styles struct {
	title   lipgloss.Style
	section lipgloss.Style
	file    lipgloss.Style
	date    lipgloss.Style
	path    lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(primaryColor),
		section: r.NewStyle().Bold(true).Foreground(secondaryColor).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(mutedColor),
		file:    r.NewStyle(),
		date:    r.NewStyle().Foreground(dimTextColor),
		path:    r.NewStyle().Foreground(mutedColor).Italic(true),
		label:   r.NewStyle().Foreground(dimTextColor).Width(12),
		value:   r.NewStyle().Bold(true),
		success: r.NewStyle().Foreground(secondaryColor).Bold(true),
		warning: r.NewStyle().Foreground(warningColor),
		err:     r.NewStyle().Foreground(errorColor).Bold(true),
	}
}
