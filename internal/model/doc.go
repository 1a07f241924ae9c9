// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
//
// # Key Types
//
//   - Conversation: ordered, append-only history of one chat session
//   - Turn: a single user or assistant message with an ID and timestamp
//   - Role: turn role enumeration (user, assistant, system)
//   - ModelInfo: display information about a selectable model
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.Append(model.NewTurn(model.RoleUser, "Hello!"))
//	for _, t := range conv.Snapshot() {
//	    fmt.Printf("%s: %s\n", t.Role.DisplayName(), t.Content)
//	}
package model
