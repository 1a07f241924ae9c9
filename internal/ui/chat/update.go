// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/gptwrap/internal/conversation"
	"github.com/jeranaias/gptwrap/internal/ui/styles"
)

// Notices shown in the footer.
const (
	noticeSaved     = "Settings saved"
	noticeCopied    = "Copied last reply"
	noticeNoReply   = "No reply to copy yet"
	noticeBusy      = "Wait for the current reply first"
	noticeCancelled = "Request cancelled"
)

// clipboardWrite is replaced in tests.
var clipboardWrite = clipboard.WriteAll

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.form != nil {
			m.form.form = m.form.form.WithWidth(m.dialogWidth())
		}
		return m, nil

	case completionMsg:
		return m.handleCompletion(msg)

	case copiedMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("clipboard write failed")
			m.notice = "Copy failed: " + msg.err.Error()
		} else {
			m.notice = noticeCopied
		}
		return m, nil

	case ConfigReloadedMsg:
		m.applyUIConfig(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.InFlight() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	if m.form != nil {
		return m.updateSettings(msg)
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(kmsg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.ctrl.InFlight() {
			if m.cancel != nil {
				m.cancel()
			}
			m.notice = noticeCancelled
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		return m.send()

	case key.Matches(msg, m.keys.Settings):
		return m.openSettings()

	case key.Matches(msg, m.keys.NewChat):
		if !m.ctrl.NewConversation() {
			m.notice = noticeBusy
			return m, nil
		}
		m.notice = ""
		m.rendered = make(map[string]string)
		m.layout()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		reply, ok := m.ctrl.LastReply()
		if !ok {
			m.notice = noticeNoReply
			return m, nil
		}
		return m, copyCmd(reply)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.ctrl.InFlight() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SENDING
// =============================================================================

// send starts a send from the input. Blank input and a send already in
// flight are ignored.
func (m Model) send() (tea.Model, tea.Cmd) {
	p, ok := m.ctrl.Begin(m.input.Value())
	if !ok {
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.pending = p
	m.cancel = cancel
	m.notice = ""
	m.input.Reset()
	m.input.Blur()
	m.layout()
	m.refresh()

	return m, tea.Batch(executeCmd(ctx, m.ctrl, p), m.spinner.Tick)
}

func executeCmd(ctx context.Context, ctrl *conversation.Controller, p *conversation.Pending) tea.Cmd {
	return func() tea.Msg {
		return completionMsg{pending: p, result: ctrl.Execute(ctx, p)}
	}
}

func (m Model) handleCompletion(msg completionMsg) (tea.Model, tea.Cmd) {
	m.ctrl.Finish(msg.pending, msg.result)
	if m.cancel != nil {
		m.cancel()
	}
	m.pending = nil
	m.cancel = nil

	m.layout()
	m.refresh()
	if m.form != nil {
		return m, nil
	}
	return m, m.input.Focus()
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboardWrite(text)}
	}
}

// =============================================================================
// SETTINGS DIALOG
// =============================================================================

func (m Model) openSettings() (tea.Model, tea.Cmd) {
	draft := m.ctrl.EditSettings()
	m.form = newSettingsForm(draft, m.dialogWidth())
	m.notice = ""
	m.input.Blur()
	return m, m.form.form.Init()
}

func (m Model) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && key.Matches(kmsg, m.keys.Close, m.keys.Cancel) {
		return m.closeSettings(false)
	}

	fm, cmd := m.form.form.Update(msg)
	if f, ok := fm.(*huh.Form); ok {
		m.form.form = f
	}

	switch m.form.state() {
	case huh.StateCompleted:
		m.form.apply()
		return m.closeSettings(true)
	case huh.StateAborted:
		return m.closeSettings(false)
	}
	return m, cmd
}

// closeSettings saves or discards the draft. A rejected save reopens the
// dialog on the same draft, with the reason in the error banner.
func (m Model) closeSettings(save bool) (tea.Model, tea.Cmd) {
	if !save {
		m.ctrl.CancelSettingsEdit()
		m.form = nil
		m.layout()
		return m, m.focusInput()
	}

	if err := m.ctrl.CommitSettingsEdit(); err != nil {
		m.form = newSettingsForm(m.ctrl.SettingsDraft(), m.dialogWidth())
		m.layout()
		return m, m.form.form.Init()
	}

	m.form = nil
	m.notice = noticeSaved
	m.layout()
	m.refresh()
	return m, m.focusInput()
}

func (m *Model) focusInput() tea.Cmd {
	if m.ctrl.InFlight() {
		return nil
	}
	return m.input.Focus()
}

func (m Model) dialogWidth() int {
	w := m.width - 8
	if w > 72 {
		w = 72
	}
	if w < 30 {
		w = 30
	}
	return w
}

// =============================================================================
// LIVE CONFIG
// =============================================================================

func (m *Model) applyUIConfig(msg ConfigReloadedMsg) {
	m.theme = styles.NewTheme(msg.UI.Theme)
	m.wordWrap = msg.UI.WordWrap
	m.input.PromptStyle = m.theme.InputPrompt
	m.spinner.Style = m.theme.Spinner
	log.Info().Str("theme", m.theme.Name).Int("word_wrap", m.wordWrap).Msg("ui config reloaded")

	if m.ready {
		m.buildRenderer()
		m.refresh()
	}
}

var _ tea.Model = Model{}
