// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"github.com/jeranaias/gptwrap/internal/cloud"
	"github.com/jeranaias/gptwrap/internal/model"
	"github.com/jeranaias/gptwrap/internal/settings"
)

// BuildRequest assembles the wire payload for one send. It is a pure function
// of its arguments.
//
// Messages are: the system instruction if set, then history in order, then
// pendingInput as the final user message. ResponseFormat, Variables, Tools
// and PersistOnServer are not sent.
func BuildRequest(s settings.Settings, history []model.Turn, pendingInput string) cloud.ChatRequest {
	n := len(history) + 1
	if s.SystemInstruction != "" {
		n++
	}
	messages := make([]cloud.ChatMessage, 0, n)

	if s.SystemInstruction != "" {
		messages = append(messages, cloud.NewSystemMessage(s.SystemInstruction))
	}
	for _, t := range history {
		messages = append(messages, cloud.ChatMessage{Role: t.Role.String(), Content: t.Content})
	}
	messages = append(messages, cloud.NewUserMessage(pendingInput))

	return cloud.ChatRequest{
		Model:       s.Model,
		Messages:    messages,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxOutputTokens,
		TopP:        s.TopP,
	}
}
