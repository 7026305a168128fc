// Package ui provides the visual styling for the switchboard CLI, with
// light/dark terminal support.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Light mode follows the default terminal assumption; dark
// mode flips the primary pair.
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f7f7f8")
	LightForeground = lipgloss.Color("#1a1b26")
	LightPrimary    = lipgloss.Color("#3d59a1") // Indigo
	LightAccent     = lipgloss.Color("#b15c00") // Amber, darkened for light bg
	LightSecondary  = lipgloss.Color("#e9e9ec")
	LightMuted      = lipgloss.Color("#787c99")
	LightBorder     = lipgloss.Color("#d5d6db")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#1a1b26")
	DarkForeground = lipgloss.Color("#c0caf5")
	DarkPrimary    = lipgloss.Color("#7aa2f7") // Indigo, lifted
	DarkAccent     = lipgloss.Color("#ff9e64") // Amber
	DarkSecondary  = lipgloss.Color("#24283b")
	DarkMuted      = lipgloss.Color("#565f89")
	DarkBorder     = lipgloss.Color("#3b4261")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#f7768e") // Red
	Success     = lipgloss.Color("#9ece6a") // Green
	Warning     = lipgloss.Color("#e0af68") // Yellow
	Info        = lipgloss.Color("#7dcfff") // Cyan
)

// Theme holds the current color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// DetectTheme picks a theme from terminal hints, defaulting to light.
func DetectTheme() Theme {
	// COLORFGBG is "foreground;background"; ANSI indexes 0-6 and 8 are the
	// usual dark backgrounds.
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}

	if os.Getenv("SWITCHBOARD_DARK_MODE") == "1" {
		return DarkTheme()
	}

	return LightTheme()
}

// Styles holds the styled components used across the commands and the
// monitor.
type Styles struct {
	Theme Theme

	// Layout
	Header lipgloss.Style
	Footer lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Key      lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Components
	Badge     lipgloss.Style // active domain chip
	IdleBadge lipgloss.Style // no-domain chip
	TableHead lipgloss.Style
	Spinner   lipgloss.Style
	Divider   lipgloss.Style
}

// NewStyles creates a Styles instance for the given theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Key: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(12),

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
			Foreground(Info),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		IdleBadge: lipgloss.NewStyle().
			Background(theme.Secondary).
			Foreground(theme.Muted).
			Padding(0, 1),

		TableHead: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Confidence returns the style for a confidence value: strong, middling, or
// weak.
func (s Styles) Confidence(v float64) lipgloss.Style {
	switch {
	case v >= 0.7:
		return s.Success
	case v >= 0.4:
		return s.Warning
	default:
		return s.Muted
	}
}

// RenderDivider returns a horizontal divider of the given width.
func (s Styles) RenderDivider(width int) string {
	return s.Divider.Render(strings.Repeat("─", width))
}
