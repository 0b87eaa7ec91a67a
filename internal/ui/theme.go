// Package ui renders decorated documents to styled terminal lines.
package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the rendered document.
type Theme struct {
	Heading    lipgloss.Color // heading text
	Quote      lipgloss.Color // blockquote bar and text
	Marker     lipgloss.Color // list bullets, task brackets
	Link       lipgloss.Color // link labels and urls
	CodeBg     lipgloss.Color // fence background
	CodeText   lipgloss.Color // fence text without a lexer
	Muted      lipgloss.Color // separators, hidden-adjacent chrome
	Text       lipgloss.Color // plain text
	RowStripe  lipgloss.Color // even table rows
	TaskDone   lipgloss.Color // checked task text
	HRRule     lipgloss.Color // horizontal rules
	ReadOnlyBg lipgloss.Color // read-only tint
}

// DefaultTheme returns the default palette (gruvbox).
func DefaultTheme() *Theme {
	return &Theme{
		Heading:    lipgloss.Color("#b8bb26"), // gruvbox green
		Quote:      lipgloss.Color("#83a598"), // gruvbox aqua
		Marker:     lipgloss.Color("#fabd2f"), // gruvbox yellow
		Link:       lipgloss.Color("#83a598"), // gruvbox aqua
		CodeBg:     lipgloss.Color("#1d2021"), // gruvbox dark bg
		CodeText:   lipgloss.Color("#ebdbb2"), // gruvbox foreground
		Muted:      lipgloss.Color("#928374"), // gruvbox gray
		Text:       lipgloss.Color("#ebdbb2"), // gruvbox foreground
		RowStripe:  lipgloss.Color("#3c3836"), // gruvbox dark gray
		TaskDone:   lipgloss.Color("#928374"), // gruvbox gray
		HRRule:     lipgloss.Color("#928374"), // gruvbox gray
		ReadOnlyBg: lipgloss.Color("#32302f"), // gruvbox soft bg
	}
}

// ThemeConfig mirrors the config theme section for applying overrides.
type ThemeConfig struct {
	Heading    string
	Quote      string
	Marker     string
	Link       string
	CodeBg     string
	Muted      string
	Text       string
	ReadOnlyBg string
}

// ThemeFromConfig creates a theme with config overrides applied.
func ThemeFromConfig(cfg ThemeConfig) *Theme {
	theme := DefaultTheme()
	if cfg.Heading != "" {
		theme.Heading = lipgloss.Color(cfg.Heading)
	}
	if cfg.Quote != "" {
		theme.Quote = lipgloss.Color(cfg.Quote)
	}
	if cfg.Marker != "" {
		theme.Marker = lipgloss.Color(cfg.Marker)
	}
	if cfg.Link != "" {
		theme.Link = lipgloss.Color(cfg.Link)
	}
	if cfg.CodeBg != "" {
		theme.CodeBg = lipgloss.Color(cfg.CodeBg)
	}
	if cfg.Muted != "" {
		theme.Muted = lipgloss.Color(cfg.Muted)
		theme.HRRule = lipgloss.Color(cfg.Muted)
		theme.TaskDone = lipgloss.Color(cfg.Muted)
	}
	if cfg.Text != "" {
		theme.Text = lipgloss.Color(cfg.Text)
	}
	if cfg.ReadOnlyBg != "" {
		theme.ReadOnlyBg = lipgloss.Color(cfg.ReadOnlyBg)
	}
	return theme
}
