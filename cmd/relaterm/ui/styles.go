// Package ui provides the visual styling and small shared components for
// the relaterm terminal interface.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Semantic colors.
var (
	Primary     = lipgloss.Color("#2196F3") // blue
	Accent      = lipgloss.Color("#4db6ac") // teal
	Muted       = lipgloss.Color("240")
	Border      = lipgloss.Color("238")
	Destructive = lipgloss.Color("#e53935") // red
	Success     = lipgloss.Color("#8BC34A") // green
	Warning     = lipgloss.Color("#FFC107") // yellow
)

// Styles holds the styled components used across pages and panels.
type Styles struct {
	// Layout
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style
	Panel   lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Components
	Spinner  lipgloss.Style
	Divider  lipgloss.Style
	Badge    lipgloss.Style
	Selected lipgloss.Style
	Focused  lipgloss.Style
}

// DefaultStyles returns the relaterm style set.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Background(Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true),

		Body: lipgloss.NewStyle(),

		Muted: lipgloss.NewStyle().
			Foreground(Muted),

		Bold: lipgloss.NewStyle().
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Primary),

		Spinner: lipgloss.NewStyle().
			Foreground(Accent),

		Divider: lipgloss.NewStyle().
			Foreground(Border),

		Badge: lipgloss.NewStyle().
			Background(Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Bold(true),

		Focused: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true),
	}
}

// RenderDivider returns a horizontal divider.
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		width = 40
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
