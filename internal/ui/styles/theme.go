// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by NewTheme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemeAuto  = "auto"
)

// Theme holds the styled components for the chat view.
type Theme struct {
	// Name is the configured theme name
	Name string

	// IsDark is the resolved background, used for markdown rendering
	IsDark bool

	ColorProfile termenv.Profile

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderModel lipgloss.Style

	// Transcript
	EmptyState     lipgloss.Style
	UserLabel      lipgloss.Style
	UserText       lipgloss.Style
	AssistantLabel lipgloss.Style
	Separator      lipgloss.Style

	// Status
	Spinner     lipgloss.Style
	LoadingText lipgloss.Style
	ErrorBanner lipgloss.Style
	Notice      lipgloss.Style

	// Input and footer
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	Help           lipgloss.Style

	// Settings dialog
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style
}

// NewTheme creates a theme. name is "dark", "light" or "auto"; anything
// else is treated as "auto", which asks the terminal for its background.
func NewTheme(name string) *Theme {
	name = strings.ToLower(name)
	var isDark bool
	switch name {
	case ThemeDark:
		isDark = true
	case ThemeLight:
		isDark = false
	default:
		name = ThemeAuto
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		Name:         name,
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.build()
	return t
}

func (t *Theme) build() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.HeaderModel = lipgloss.NewStyle().Foreground(TextSecondary)

	t.EmptyState = lipgloss.NewStyle().Foreground(TextMuted).Italic(true).Padding(1, 2)
	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.UserText = lipgloss.NewStyle().Foreground(TextPrimary).PaddingLeft(2)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.Separator = lipgloss.NewStyle().Foreground(Overlay)

	t.Spinner = lipgloss.NewStyle().Foreground(Purple)
	t.LoadingText = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.ErrorBanner = lipgloss.NewStyle().
		Foreground(Rose).
		Background(RoseDeep).
		Bold(true).
		Padding(0, 1)
	t.Notice = lipgloss.NewStyle().Foreground(Emerald)

	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.Help = lipgloss.NewStyle().Foreground(TextMuted).Padding(0, 1)

	t.Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)
	t.DialogTitle = lipgloss.NewStyle().Bold(true).Foreground(Purple).MarginBottom(1)
}

// MarkdownStyle returns the glamour standard style name for the background.
func (t *Theme) MarkdownStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}
