// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/gptwrap/internal/conversation"
	"github.com/jeranaias/gptwrap/internal/ui/styles"
)

const (
	// Title is shown in the header.
	Title = "GPT Wrapper"

	// EmptyStateText is shown before the first turn.
	EmptyStateText = "Start a conversation with GPT!"

	// LoadingText is shown while a send is in flight.
	LoadingText = "Loading..."

	inputPlaceholder = "Type a message and press Enter"
	inputCharLimit   = 16000

	// Fixed rows: header, input box (3), help footer.
	headerHeight = 1
	inputHeight  = 3
	footerHeight = 1
)

// Options configure a Model.
type Options struct {
	Theme *styles.Theme

	// WordWrap is the markdown wrap width; 0 follows the window width.
	WordWrap int

	// Endpoint is shown in the header next to the model.
	Endpoint string
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctrl     *conversation.Controller
	theme    *styles.Theme
	keys     KeyMap
	endpoint string
	wordWrap int

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model

	// renderer is rebuilt when the width or theme changes
	renderer    *glamour.TermRenderer
	renderWidth int
	rendered    map[string]string

	form *settingsForm

	// pending and cancel are set while a send started here is in flight
	pending *conversation.Pending
	cancel  context.CancelFunc

	notice string
	width  int
	height int
	ready  bool
}

// New creates a chat view driving ctrl.
func New(ctrl *conversation.Controller, opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ThemeAuto)
	}

	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.CharLimit = inputCharLimit
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	h := help.New()

	return Model{
		ctrl:     ctrl,
		theme:    theme,
		keys:     DefaultKeyMap(),
		endpoint: opts.Endpoint,
		wordWrap: opts.WordWrap,
		viewport: viewport.New(0, 0),
		input:    ti,
		spinner:  sp,
		help:     h,
		rendered: make(map[string]string),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Controller returns the controller the view drives.
func (m Model) Controller() *conversation.Controller {
	return m.ctrl
}

// SettingsOpen reports whether the settings dialog is showing.
func (m Model) SettingsOpen() bool {
	return m.form != nil
}

// =============================================================================
// LAYOUT AND RENDERING
// =============================================================================

// resize records the window size and lays the view out again.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.input.Width = width - 6
	m.ready = true

	m.layout()
	if m.renderer == nil || m.markdownWidth() != m.renderWidth {
		m.buildRenderer()
	}
	m.refresh()
}

// layout sizes the viewport to the rows left after the fixed rows and the
// error banner.
func (m *Model) layout() {
	vpHeight := m.height - headerHeight - inputHeight - footerHeight
	if m.ctrl.LastError() != "" {
		vpHeight--
	}
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
}

// markdownWidth is the wrap width for assistant turns.
func (m *Model) markdownWidth() int {
	if m.wordWrap > 0 {
		return m.wordWrap
	}
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) buildRenderer() {
	width := m.markdownWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.MarkdownStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Warn().Err(err).Msg("markdown renderer unavailable")
		r = nil
	}
	m.renderer = r
	m.renderWidth = width
	m.rendered = make(map[string]string)
}

// renderMarkdown renders an assistant turn, caching by turn ID. Content
// that fails to render is shown as plain text.
func (m *Model) renderMarkdown(id, content string) string {
	if out, ok := m.rendered[id]; ok {
		return out
	}
	out := content
	if m.renderer != nil {
		if r, err := m.renderer.Render(content); err == nil {
			out = r
		} else {
			log.Debug().Err(err).Str("turn", id).Msg("markdown render failed")
		}
	}
	m.rendered[id] = out
	return out
}

// refresh rebuilds the transcript and scrolls to the newest turn.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}
