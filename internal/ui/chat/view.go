// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gptwrap/internal/model"
	"github.com/jeranaias/gptwrap/internal/util"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return LoadingText
	}
	if m.form != nil {
		return m.renderSettings()
	}

	parts := []string{m.renderHeader(), m.viewport.View()}
	if banner := m.renderError(); banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, m.renderInput(), m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	s := m.ctrl.Settings()
	info := model.GetModelInfo(s.Model)

	right := info.Label()
	if m.endpoint != "" {
		right += " @ " + m.endpoint
	}
	title := m.theme.HeaderTitle.Render(Title)
	avail := m.width - lipgloss.Width(title) - 4
	right = m.theme.HeaderModel.Render(util.TruncateWidth(right, max(avail, 0)))

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	line := title + strings.Repeat(" ", gap) + right
	return m.theme.Header.Width(m.width).MaxWidth(m.width).Render(line)
}

// renderTranscript renders every turn, then the loading row while a send is
// in flight.
func (m *Model) renderTranscript() string {
	turns := m.ctrl.Turns()
	inFlight := m.ctrl.InFlight()
	if len(turns) == 0 && !inFlight {
		return m.theme.EmptyState.Render(EmptyStateText)
	}

	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderTurn(t))
	}
	if inFlight {
		if len(turns) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.spinner.View() + " " + m.theme.LoadingText.Render(LoadingText))
	}
	return b.String()
}

func (m *Model) renderTurn(t model.Turn) string {
	switch t.Role {
	case model.RoleAssistant:
		label := m.theme.AssistantLabel.Render(t.Role.DisplayName())
		body := strings.TrimRight(m.renderMarkdown(t.ID, t.Content), "\n")
		return label + "\n" + body + "\n"
	default:
		label := m.theme.UserLabel.Render(t.Role.DisplayName())
		body := m.theme.UserText.Width(m.markdownWidth()).Render(t.Content)
		return label + "\n" + body + "\n"
	}
}

func (m Model) renderError() string {
	msg := m.ctrl.LastError()
	if msg == "" {
		return ""
	}
	text := util.TruncateWidth(util.SingleLine("Error: "+msg), max(m.width-2, 0))
	return m.theme.ErrorBanner.Width(m.width).MaxWidth(m.width).Render(text)
}

func (m Model) renderInput() string {
	var content string
	if m.ctrl.InFlight() {
		content = m.theme.LoadingText.Render("Waiting for reply...")
	} else {
		content = m.input.View()
	}
	return m.theme.InputContainer.Width(max(m.width-2, 0)).Render(content)
}

func (m Model) renderFooter() string {
	line := m.help.View(m.keys)
	if m.notice != "" {
		line = m.theme.Notice.Render(m.notice) + "  " + line
	}
	return m.theme.Help.MaxWidth(m.width).Render(line)
}

// =============================================================================
// SETTINGS DIALOG
// =============================================================================

func (m Model) renderSettings() string {
	var b strings.Builder
	b.WriteString(m.theme.DialogTitle.Render("Settings"))
	b.WriteString("\n")
	b.WriteString(m.form.View())
	if msg := m.ctrl.LastError(); msg != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.ErrorBanner.Render(util.TruncateWidth(util.SingleLine(msg), m.dialogWidth())))
	}
	dialog := m.theme.Dialog.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}
