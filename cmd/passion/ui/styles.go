// Package ui provides the bubbletea pages and lipgloss styling for the
// passion terminal client.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	LightForeground = lipgloss.Color("#1b2a41")
	LightAccent     = lipgloss.Color("#ff8a65")
	LightMuted      = lipgloss.Color("#6b7785")
	LightBorder     = lipgloss.Color("#dce0e5")

	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkAccent     = lipgloss.Color("#ffab91")
	DarkMuted      = lipgloss.Color("#8a97a6")
	DarkBorder     = lipgloss.Color("#2a3850")

	// Semantic colors, same in both modes.
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// Styles bundles the lipgloss styles used by the pages.
type Styles struct {
	Header   lipgloss.Style
	Title    lipgloss.Style
	Subtle   lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Card     lipgloss.Style
	Help     lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent).
			MarginBottom(1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground),
		Subtle: lipgloss.NewStyle().
			Foreground(theme.Muted),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent),
		Error: lipgloss.NewStyle().
			Foreground(Destructive),
		Success: lipgloss.NewStyle().
			Foreground(Success),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, 2),
		Help: lipgloss.NewStyle().
			Foreground(theme.Muted).
			MarginTop(1),
	}
}

// DefaultStyles returns the light-theme style set.
func DefaultStyles() Styles {
	return NewStyles(LightTheme())
}

// StylesFor picks the style set for a configured theme name.
func StylesFor(theme string) Styles {
	if theme == "dark" {
		return NewStyles(DarkTheme())
	}
	return DefaultStyles()
}
