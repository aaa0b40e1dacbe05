// Package styles holds the colours and lipgloss styles of the chat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette. Every colour adapts to light and dark terminals.
type Theme struct {
	Accent     lipgloss.AdaptiveColor // titles and the user's questions
	Answer     lipgloss.AdaptiveColor
	Source     lipgloss.AdaptiveColor // citation lines
	Foreground lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Success    lipgloss.AdaptiveColor
	Warning    lipgloss.AdaptiveColor
	Error      lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor
	Bar        lipgloss.AdaptiveColor // status bar background
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// DefaultTheme uses Catppuccin Latte on light backgrounds and Mocha on dark ones.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:     adaptive("#1E66F5", "#89B4FA"),
		Answer:     adaptive("#4C4F69", "#CDD6F4"),
		Source:     adaptive("#179299", "#94E2D5"),
		Foreground: adaptive("#5C5F77", "#BAC2DE"),
		Muted:      adaptive("#8C8FA1", "#6C7086"),
		Success:    adaptive("#40A02B", "#A6E3A1"),
		Warning:    adaptive("#DF8E1D", "#F9E2AF"),
		Error:      adaptive("#D20F39", "#F38BA8"),
		Border:     adaptive("#BCC0CC", "#45475A"),
		Bar:        adaptive("#E6E9EF", "#181825"),
	}
}

// Styles are built once from a Theme and shared by all components.
type Styles struct {
	theme *Theme

	Title, Subtitle, Normal, Muted lipgloss.Style
	Selected                       lipgloss.Style
	Error, Success, Warning        lipgloss.Style

	// Conversation.
	Question, Answer, Source lipgloss.Style

	// Panels.
	InputField, Transcript, Sidebar lipgloss.Style

	StatusBar, Help lipgloss.Style
}

// NewStyles builds the styles for theme, or for DefaultTheme when theme is nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	panel := func(border lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)
	}

	return &Styles{
		theme: theme,

		Title:    fg(theme.Accent).Bold(true),
		Subtitle: fg(theme.Foreground).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Bar).Background(theme.Accent).Bold(true),
		Error:    fg(theme.Error),
		Success:  fg(theme.Success),
		Warning:  fg(theme.Warning),

		Question: fg(theme.Accent).Bold(true),
		Answer:   fg(theme.Answer),
		Source:   fg(theme.Source).Italic(true),

		InputField: panel(theme.Accent),
		Transcript: panel(theme.Border),
		Sidebar:    panel(theme.Border),

		StatusBar: fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Help:      fg(theme.Muted),
	}
}

func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

func (s *Styles) Theme() *Theme {
	return s.theme
}
