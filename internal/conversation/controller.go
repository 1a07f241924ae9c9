// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/gptwrap/internal/cloud"
	"github.com/jeranaias/gptwrap/internal/model"
	"github.com/jeranaias/gptwrap/internal/settings"
)

// Completer performs one completion call.
type Completer interface {
	Complete(ctx context.Context, req cloud.ChatRequest, credential string) (string, error)
}

// errInterrupted is recorded if Execute never returns normally.
var errInterrupted = errors.New("request interrupted")

// =============================================================================
// PENDING SEND
// =============================================================================

// Pending is a send between Begin and Finish. Its fields are fixed at Begin.
type Pending struct {
	ID         string
	Input      string
	Request    cloud.ChatRequest
	Credential string
	StartedAt  time.Time
}

// Result is the outcome of Execute.
type Result struct {
	Content string
	Err     error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the conversation, the send state and the last error.
// The settings Store it is given is shared with the settings editor.
type Controller struct {
	conv     *model.Conversation
	settings *settings.Store
	editor   *settings.Editor
	client   Completer

	state atomic.Int32

	mu      sync.Mutex
	lastErr string
}

// NewController creates an idle controller with an empty conversation.
func NewController(store *settings.Store, client Completer) *Controller {
	return &Controller{
		conv:     model.NewConversation(),
		settings: store,
		editor:   settings.NewEditor(store),
		client:   client,
	}
}

// Begin starts a send. It returns false, and changes nothing, when input is
// blank or another send is in flight.
//
// On success the raw input has been appended as a user turn, the state is
// in-flight, the last error is cleared, and the returned Pending carries a
// request built from the current settings and the history before this turn.
func (c *Controller) Begin(input string) (*Pending, bool) {
	if strings.TrimSpace(input) == "" {
		return nil, false
	}
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateInFlight)) {
		return nil, false
	}

	history := c.conv.Snapshot()
	current := c.settings.Get()

	c.conv.Append(model.NewTurn(model.RoleUser, input))
	c.setError("")

	p := &Pending{
		ID:         uuid.NewString(),
		Input:      input,
		Request:    BuildRequest(current, history, input),
		Credential: current.Credential,
		StartedAt:  time.Now(),
	}
	log.Debug().
		Str("send", p.ID).
		Str("model", p.Request.Model).
		Int("messages", len(p.Request.Messages)).
		Msg("send started")
	return p, true
}

// Execute performs the completion call for p. It reads and writes no
// controller state, so it may run on any goroutine.
func (c *Controller) Execute(ctx context.Context, p *Pending) Result {
	content, err := c.client.Complete(ctx, p.Request, p.Credential)
	return Result{Content: content, Err: err}
}

// Finish records the outcome of p and returns the controller to idle.
// On success the content is appended as an assistant turn; on failure only
// the error message is recorded.
func (c *Controller) Finish(p *Pending, res Result) {
	defer c.state.Store(int32(StateIdle))

	logger := log.With().Str("send", p.ID).Dur("duration", time.Since(p.StartedAt)).Logger()
	if res.Err != nil {
		c.setError(res.Err.Error())
		logger.Warn().Err(res.Err).Msg("send failed")
		return
	}
	c.conv.Append(model.NewTurn(model.RoleAssistant, res.Content))
	logger.Debug().Int("chars", len(res.Content)).Msg("send completed")
}

// Send runs Begin, Execute and Finish in order. sent is false when Begin
// refused the input; err is the completion error, also kept as LastError.
func (c *Controller) Send(ctx context.Context, input string) (sent bool, err error) {
	p, ok := c.Begin(input)
	if !ok {
		return false, nil
	}

	res := Result{Err: errInterrupted}
	defer func() { c.Finish(p, res) }()

	res = c.Execute(ctx, p)
	return true, res.Err
}

// =============================================================================
// SETTINGS
// =============================================================================

// SaveSettings clears the last error and saves candidate. A rejected
// candidate leaves the stored settings unchanged and its message becomes
// the last error.
func (c *Controller) SaveSettings(candidate settings.Settings) error {
	c.setError("")
	if err := c.settings.Save(candidate); err != nil {
		c.setError(err.Error())
		return err
	}
	log.Info().Str("settings", candidate.String()).Msg("settings saved")
	return nil
}

// EditSettings opens (or returns the already open) settings draft.
func (c *Controller) EditSettings() *settings.Settings {
	return c.editor.Begin()
}

// SettingsDraft returns the open draft or nil.
func (c *Controller) SettingsDraft() *settings.Settings {
	return c.editor.Draft()
}

// EditingSettings reports whether a draft is open.
func (c *Controller) EditingSettings() bool {
	return c.editor.Editing()
}

// CommitSettingsEdit saves the open draft with SaveSettings semantics. The
// draft stays open when the save is rejected.
func (c *Controller) CommitSettingsEdit() error {
	draft := c.editor.Draft()
	if draft == nil {
		return nil
	}
	if err := c.SaveSettings(*draft); err != nil {
		return err
	}
	c.editor.Cancel()
	return nil
}

// CancelSettingsEdit discards the open draft.
func (c *Controller) CancelSettingsEdit() {
	c.editor.Cancel()
}

// =============================================================================
// CONVERSATION
// =============================================================================

// NewConversation clears the history and the last error. It is refused while
// a send is in flight.
func (c *Controller) NewConversation() bool {
	if c.InFlight() {
		return false
	}
	c.conv.Reset()
	c.setError("")
	log.Debug().Str("conversation", c.conv.ID).Msg("conversation reset")
	return true
}

// Turns returns a copy of the conversation.
func (c *Controller) Turns() []model.Turn {
	return c.conv.Snapshot()
}

// Conversation returns the underlying conversation.
func (c *Controller) Conversation() *model.Conversation {
	return c.conv
}

// LastReply returns the most recent assistant turn's content.
func (c *Controller) LastReply() (string, bool) {
	t, ok := c.conv.Last(model.RoleAssistant)
	return t.Content, ok
}

// State returns the current send state.
func (c *Controller) State() SendState {
	return SendState(c.state.Load())
}

// InFlight reports whether a send is in flight.
func (c *Controller) InFlight() bool {
	return c.State() == StateInFlight
}

// LastError returns the last error message, or "" if none.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Settings returns a copy of the stored settings.
func (c *Controller) Settings() settings.Settings {
	return c.settings.Get()
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}
