// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/gptwrap/internal/cloud"
	"github.com/jeranaias/gptwrap/internal/model"
	"github.com/jeranaias/gptwrap/internal/settings"
)

func history(pairs ...string) []model.Turn {
	turns := make([]model.Turn, 0, len(pairs))
	for i, c := range pairs {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		turns = append(turns, model.NewTurn(role, c))
	}
	return turns
}

func TestBuildRequest_MessageOrder(t *testing.T) {
	tests := []struct {
		name   string
		system string
		hist   []model.Turn
		want   []cloud.ChatMessage
	}{
		{
			name: "first send",
			want: []cloud.ChatMessage{cloud.NewUserMessage("next")},
		},
		{
			name:   "first send with system",
			system: "be terse",
			want: []cloud.ChatMessage{
				cloud.NewSystemMessage("be terse"),
				cloud.NewUserMessage("next"),
			},
		},
		{
			name:   "history with system",
			system: "sys",
			hist:   history("q1", "a1"),
			want: []cloud.ChatMessage{
				cloud.NewSystemMessage("sys"),
				cloud.NewUserMessage("q1"),
				cloud.NewAssistantMessage("a1"),
				cloud.NewUserMessage("next"),
			},
		},
		{
			name: "history without system",
			hist: history("q1", "a1", "q2"),
			want: []cloud.ChatMessage{
				cloud.NewUserMessage("q1"),
				cloud.NewAssistantMessage("a1"),
				cloud.NewUserMessage("q2"),
				cloud.NewUserMessage("next"),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := settings.Default()
			s.SystemInstruction = tc.system
			req := BuildRequest(s, tc.hist, "next")
			assert.Equal(t, tc.want, req.Messages)
			assert.Len(t, req.Messages, len(tc.hist)+1+boolToInt(tc.system != ""))
		})
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestBuildRequest_CopiesSampling(t *testing.T) {
	s := settings.Default()
	s.Model = "gpt-4"
	s.Temperature = 1.7
	s.MaxOutputTokens = 99
	s.TopP = 0.3

	req := BuildRequest(s, nil, "x")
	assert.Equal(t, "gpt-4", req.Model)
	assert.Equal(t, 1.7, req.Temperature)
	assert.Equal(t, 99, req.MaxTokens)
	assert.Equal(t, 0.3, req.TopP)
}

func TestBuildRequest_UnusedFieldsNeverSent(t *testing.T) {
	base := settings.Default()
	base.Credential = "sk-secret"

	other := base
	other.ResponseFormat = settings.FormatJSON
	other.Variables = "a=1"
	other.Tools = "search"
	other.PersistOnServer = false

	h := history("q", "a")
	a, err := json.Marshal(BuildRequest(base, h, "x"))
	require.NoError(t, err)
	b, err := json.Marshal(BuildRequest(other, h, "x"))
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
	assert.NotContains(t, string(a), "sk-secret")
	assert.NotContains(t, string(a), "search")
}

func TestBuildRequest_Deterministic(t *testing.T) {
	s := settings.Default()
	s.SystemInstruction = "sys"
	h := history("q1", "a1")

	first, err := json.Marshal(BuildRequest(s, h, "next"))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(BuildRequest(s, h, "next"))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBuildRequest_DoesNotAliasHistory(t *testing.T) {
	h := history("q1", "a1")
	req := BuildRequest(settings.Default(), h, "next")
	req.Messages[0].Content = "changed"
	assert.Equal(t, "q1", h[0].Content)
}
