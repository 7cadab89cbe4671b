package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors and derived styles for the dashboard.
type Theme struct {
	Text    string
	Muted   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
	Border  string
}

// DefaultTheme is the single built-in palette.
func DefaultTheme() Theme {
	return Theme{
		Text:    "#f8f8f2",
		Muted:   "#6272a4",
		Accent:  "#bd93f9",
		Success: "#50fa7b",
		Warning: "#f1fa8c",
		Danger:  "#ff5555",
		Info:    "#8be9fd",
		Border:  "#44475a",
	}
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Section: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),

		SectionTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),
	}
}

// Styles bundles the pre-built lipgloss styles used by the renderers.
type Styles struct {
	Text         lipgloss.Style
	MutedText    lipgloss.Style
	AccentText   lipgloss.Style
	SuccessText  lipgloss.Style
	WarningText  lipgloss.Style
	DangerText   lipgloss.Style
	InfoText     lipgloss.Style
	Section      lipgloss.Style
	SectionTitle lipgloss.Style
}
