// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"sync"
	"testing"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{RoleSystem, "System"},
		{Role("other"), "other"},
	}
	for _, tc := range tests {
		if got := tc.role.DisplayName(); got != tc.want {
			t.Errorf("%q.DisplayName() = %q, want %q", tc.role, got, tc.want)
		}
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_AppendPreservesOrderAndContent(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewTurn(RoleUser, "  hi  "))
	conv.Append(NewTurn(RoleAssistant, "hello"))
	conv.Append(NewTurn(RoleUser, "again"))

	turns := conv.Snapshot()
	if len(turns) != 3 {
		t.Fatalf("len = %d, want 3", len(turns))
	}
	if turns[0].Content != "  hi  " {
		t.Errorf("content was modified: %q", turns[0].Content)
	}
	wantRoles := []Role{RoleUser, RoleAssistant, RoleUser}
	for i, r := range wantRoles {
		if turns[i].Role != r {
			t.Errorf("turns[%d].Role = %s, want %s", i, turns[i].Role, r)
		}
	}
}

func TestConversation_SnapshotIsCopy(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewTurn(RoleUser, "one"))

	snap := conv.Snapshot()
	snap[0].Content = "changed"
	conv.Append(NewTurn(RoleAssistant, "two"))

	if len(snap) != 1 {
		t.Errorf("snapshot grew to %d", len(snap))
	}
	if conv.Snapshot()[0].Content != "one" {
		t.Error("mutating a snapshot changed the conversation")
	}
}

func TestConversation_Last(t *testing.T) {
	conv := NewConversation()
	if _, ok := conv.Last(RoleAssistant); ok {
		t.Error("Last on empty conversation should report false")
	}
	conv.Append(NewTurn(RoleAssistant, "first"))
	conv.Append(NewTurn(RoleUser, "q"))
	conv.Append(NewTurn(RoleAssistant, "second"))

	got, ok := conv.Last(RoleAssistant)
	if !ok || got.Content != "second" {
		t.Errorf("Last(assistant) = %q, %v", got.Content, ok)
	}
}

func TestConversation_Reset(t *testing.T) {
	conv := NewConversation()
	oldID := conv.ID
	conv.Append(NewTurn(RoleUser, "x"))
	conv.Reset()

	if !conv.IsEmpty() {
		t.Errorf("Len after Reset = %d", conv.Len())
	}
	if conv.ID == oldID {
		t.Error("Reset should assign a new ID")
	}
}

func TestConversation_Preview(t *testing.T) {
	conv := NewConversation()
	if conv.Preview() != "" {
		t.Error("empty conversation should have empty preview")
	}
	conv.Append(NewTurn(RoleUser, "line one\nline two "+strings.Repeat("x", 100)))
	p := conv.Preview()
	if strings.Contains(p, "\n") {
		t.Errorf("preview contains newline: %q", p)
	}
	if !strings.HasPrefix(p, "line one line two") {
		t.Errorf("preview = %q", p)
	}
	if !strings.HasSuffix(p, "...") {
		t.Errorf("long preview should be truncated: %q", p)
	}
}

func TestConversation_ConcurrentAppend(t *testing.T) {
	conv := NewConversation()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv.Append(NewTurn(RoleUser, "m"))
			_ = conv.Snapshot()
		}()
	}
	wg.Wait()
	if conv.Len() != 100 {
		t.Errorf("Len = %d, want 100", conv.Len())
	}
}

func TestNewTurn_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTurn(RoleUser, "x").ID
		if seen[id] {
			t.Fatalf("duplicate turn ID %s", id)
		}
		seen[id] = true
	}
}

// =============================================================================
// MODEL INFO TESTS
// =============================================================================

func TestModels_Registry(t *testing.T) {
	ids := ModelIDs()
	if len(ids) != 2 || ids[0] != "gpt-3.5-turbo" || ids[1] != "gpt-4" {
		t.Errorf("ModelIDs() = %v", ids)
	}
	for _, id := range ids {
		if !IsKnown(id) {
			t.Errorf("IsKnown(%q) = false", id)
		}
	}
}

func TestGetModelInfo_Unknown(t *testing.T) {
	info := GetModelInfo("my-finetune")
	if info.ID != "my-finetune" || info.Name != "my-finetune" {
		t.Errorf("GetModelInfo(unknown) = %+v", info)
	}
	if info.Label() != "my-finetune" {
		t.Errorf("Label() = %q", info.Label())
	}
	if got := GetModelInfo("gpt-4").Label(); got != "GPT-4 (gpt-4)" {
		t.Errorf("Label() = %q", got)
	}
}
