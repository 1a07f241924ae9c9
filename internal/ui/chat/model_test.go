// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/gptwrap/internal/cloud"
	"github.com/jeranaias/gptwrap/internal/config"
	"github.com/jeranaias/gptwrap/internal/conversation"
	"github.com/jeranaias/gptwrap/internal/settings"
	"github.com/jeranaias/gptwrap/internal/ui/styles"
)

// =============================================================================
// HELPERS
// =============================================================================

type stubCompleter struct {
	reply string
	err   error
	block bool
}

func (s stubCompleter) Complete(ctx context.Context, _ cloud.ChatRequest, _ string) (string, error) {
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.reply, s.err
}

func newTestModel(t *testing.T, c conversation.Completer) Model {
	t.Helper()
	initial := settings.Default()
	initial.Credential = "sk-test"
	ctrl := conversation.NewController(settings.NewStore(initial), c)
	m := New(ctrl, Options{Theme: styles.NewTheme(styles.ThemeDark), Endpoint: "OpenAI API"})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func keyMsg(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

// complete runs the pending send synchronously and delivers its result.
func complete(t *testing.T, m Model) Model {
	t.Helper()
	require.NotNil(t, m.pending)
	res := m.ctrl.Execute(context.Background(), m.pending)
	m, _ = update(t, m, completionMsg{pending: m.pending, result: res})
	return m
}

// =============================================================================
// RENDERING
// =============================================================================

func TestView_EmptyState(t *testing.T) {
	m := newTestModel(t, stubCompleter{})
	view := m.View()

	assert.Contains(t, view, Title)
	assert.Contains(t, view, EmptyStateText)
	assert.Contains(t, view, "GPT-3.5 Turbo")
	assert.NotContains(t, view, "Error:")
}

func TestView_BeforeWindowSize(t *testing.T) {
	ctrl := conversation.NewController(settings.NewStore(settings.Default()), stubCompleter{})
	m := New(ctrl, Options{})
	assert.Equal(t, LoadingText, m.View())
}

// =============================================================================
// SENDING
// =============================================================================

func TestSend_RoundTrip(t *testing.T) {
	m := newTestModel(t, stubCompleter{reply: "world"})
	m.input.SetValue("hello")

	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, m.ctrl.InFlight())
	assert.Equal(t, "", m.input.Value())
	assert.False(t, m.input.Focused())
	assert.Contains(t, m.viewport.View(), LoadingText)

	m = complete(t, m)
	assert.False(t, m.ctrl.InFlight())
	assert.Nil(t, m.pending)
	assert.True(t, m.input.Focused())

	turns := m.ctrl.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, "world", turns[1].Content)

	view := m.View()
	assert.Contains(t, view, "hello")
	assert.Contains(t, view, "world")
	assert.NotContains(t, view, LoadingText)
}

func TestSend_BlankInputIgnored(t *testing.T) {
	m := newTestModel(t, stubCompleter{reply: "x"})
	m.input.SetValue("   ")

	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.False(t, m.ctrl.InFlight())
	assert.Empty(t, m.ctrl.Turns())
}

func TestSend_IgnoredWhileInFlight(t *testing.T) {
	m := newTestModel(t, stubCompleter{reply: "x"})
	m.input.SetValue("first")
	m, _ = update(t, m, keyMsg(tea.KeyEnter))
	require.True(t, m.ctrl.InFlight())

	m.input.SetValue("second")
	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Len(t, m.ctrl.Turns(), 1)

	// typing is swallowed while the input is disabled
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
	assert.Equal(t, "second", m.input.Value())
}

func TestSend_ErrorShowsBanner(t *testing.T) {
	m := newTestModel(t, stubCompleter{err: &cloud.RemoteError{Endpoint: "OpenAI API", StatusCode: 401}})
	m.input.SetValue("hi")
	m, _ = update(t, m, keyMsg(tea.KeyEnter))
	m = complete(t, m)

	assert.Equal(t, "OpenAI API error: 401", m.ctrl.LastError())
	assert.Contains(t, m.View(), "Error: OpenAI API error: 401")
	assert.Len(t, m.ctrl.Turns(), 1)

	// starting the next send clears the banner
	m.input.SetValue("again")
	m, _ = update(t, m, keyMsg(tea.KeyEnter))
	assert.NotContains(t, m.View(), "Error:")
}

func TestCancel_AbortsInFlight(t *testing.T) {
	m := newTestModel(t, stubCompleter{block: true})
	m.input.SetValue("slow")

	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	require.NotEmpty(t, batch)

	done := make(chan tea.Msg, 1)
	go func() { done <- batch[0]() }()

	m, cmd = update(t, m, keyMsg(tea.KeyCtrlC))
	assert.Nil(t, cmd)
	assert.Equal(t, noticeCancelled, m.notice)

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("send did not observe cancellation")
	}
	m, _ = update(t, m, msg)

	assert.False(t, m.ctrl.InFlight())
	assert.Contains(t, m.ctrl.LastError(), context.Canceled.Error())
	assert.Len(t, m.ctrl.Turns(), 1)
}

func TestCancel_QuitsWhenIdle(t *testing.T) {
	m := newTestModel(t, stubCompleter{})
	_, cmd := update(t, m, keyMsg(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

// =============================================================================
// OTHER KEYS
// =============================================================================

func TestNewChat(t *testing.T) {
	m := newTestModel(t, stubCompleter{reply: "r"})
	m.input.SetValue("q")
	m, _ = update(t, m, keyMsg(tea.KeyEnter))

	m, _ = update(t, m, keyMsg(tea.KeyCtrlN))
	assert.Equal(t, noticeBusy, m.notice)
	assert.Len(t, m.ctrl.Turns(), 1)

	m = complete(t, m)
	m, _ = update(t, m, keyMsg(tea.KeyCtrlN))
	assert.Empty(t, m.ctrl.Turns())
	assert.Contains(t, m.View(), EmptyStateText)
}

func TestCopyLastReply(t *testing.T) {
	var copied string
	orig := clipboardWrite
	clipboardWrite = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { clipboardWrite = orig })

	m := newTestModel(t, stubCompleter{reply: "copy me"})

	m, cmd := update(t, m, keyMsg(tea.KeyCtrlY))
	assert.Nil(t, cmd)
	assert.Equal(t, noticeNoReply, m.notice)

	m.input.SetValue("q")
	m, _ = update(t, m, keyMsg(tea.KeyEnter))
	m = complete(t, m)

	m, cmd = update(t, m, keyMsg(tea.KeyCtrlY))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, "copy me", copied)
	assert.Equal(t, noticeCopied, m.notice)
}

func TestCopyFailure(t *testing.T) {
	orig := clipboardWrite
	clipboardWrite = func(string) error { return errors.New("no clipboard") }
	t.Cleanup(func() { clipboardWrite = orig })

	m := newTestModel(t, stubCompleter{})
	m, _ = update(t, m, copiedMsg{err: clipboardWrite("x")})
	assert.Contains(t, m.notice, "no clipboard")
}

func TestConfigReloaded(t *testing.T) {
	m := newTestModel(t, stubCompleter{})
	m, _ = update(t, m, ConfigReloadedMsg{UI: config.UIConfig{Theme: "light", WordWrap: 60}})

	assert.Equal(t, styles.ThemeLight, m.theme.Name)
	assert.Equal(t, 60, m.markdownWidth())
	assert.NotNil(t, m.renderer)
}

func TestResize(t *testing.T) {
	m := newTestModel(t, stubCompleter{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})

	assert.Equal(t, 60, m.viewport.Width)
	assert.Equal(t, 20-headerHeight-inputHeight-footerHeight, m.viewport.Height)
	assert.Equal(t, 56, m.renderWidth)
}
