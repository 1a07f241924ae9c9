// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/gptwrap/internal/util"
)

// PreviewLength is the display width used by Conversation.Preview.
const PreviewLength = 50

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the ordered history of one chat session.
//
// Turns are only ever appended. Readers get copies, so a snapshot taken
// before a request is built cannot change underneath it.
type Conversation struct {
	mu sync.RWMutex

	ID        string
	CreatedAt time.Time

	turns []Turn
}

// NewConversation creates an empty conversation with a generated ID.
func NewConversation() *Conversation {
	return &Conversation{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		turns:     make([]Turn, 0),
	}
}

// =============================================================================
// TURN MANAGEMENT
// =============================================================================

// Append adds a turn to the end of the history.
func (c *Conversation) Append(t Turn) {
	c.mu.Lock()
	c.turns = append(c.turns, t)
	c.mu.Unlock()
}

// Snapshot returns a copy of the history in order.
func (c *Conversation) Snapshot() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// IsEmpty returns true if the conversation has no turns.
func (c *Conversation) IsEmpty() bool {
	return c.Len() == 0
}

// Last returns the most recent turn with the given role.
func (c *Conversation) Last(role Role) (Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := len(c.turns) - 1; i >= 0; i-- {
		if c.turns[i].Role == role {
			return c.turns[i], true
		}
	}
	return Turn{}, false
}

// Reset drops every turn and assigns a new conversation ID.
func (c *Conversation) Reset() {
	c.mu.Lock()
	c.turns = make([]Turn, 0)
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.mu.Unlock()
}

// Preview returns the first user turn truncated for display.
func (c *Conversation) Preview() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.turns {
		if t.Role == RoleUser {
			return util.TruncateWidth(util.SingleLine(t.Content), PreviewLength)
		}
	}
	return ""
}
