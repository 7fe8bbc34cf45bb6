// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
)

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSession_AppendPreservesOrder(t *testing.T) {
	s := NewSession()
	s.Append(RoleUser, "first")
	s.Append(RoleAssistant, "second")
	s.Append(RoleUser, "third")

	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Len = %d, want 3", len(msgs))
	}
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if msgs[i].Content != w {
			t.Errorf("messages[%d].Content = %q, want %q", i, msgs[i].Content, w)
		}
	}
}

func TestSession_AppendGeneratesUniqueIDs(t *testing.T) {
	s := NewSession()
	a := s.Append(RoleUser, "a")
	b := s.Append(RoleUser, "b")

	if a.ID == "" || b.ID == "" {
		t.Fatal("messages must have ids")
	}
	if a.ID == b.ID {
		t.Errorf("ids should be unique, both %q", a.ID)
	}
	if a.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestSession_RemoveLastRestoresPriorState(t *testing.T) {
	s := NewSession()
	s.Append(RoleUser, "kept")
	placeholder := s.Append(RoleAssistant, "")

	removed := s.RemoveLast()
	if removed == nil || removed.ID != placeholder.ID {
		t.Fatalf("RemoveLast() = %v, want the placeholder", removed)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if s.Last().Content != "kept" {
		t.Errorf("Last().Content = %q, want kept", s.Last().Content)
	}
}

func TestSession_RemoveLastOnEmpty(t *testing.T) {
	s := NewSession()
	if got := s.RemoveLast(); got != nil {
		t.Errorf("RemoveLast() on empty = %v, want nil", got)
	}
}

func TestSession_Clear(t *testing.T) {
	s := NewSession()
	s.Append(RoleUser, "a")
	s.Append(RoleAssistant, "b")

	s.Clear()

	if !s.IsEmpty() {
		t.Errorf("session should be empty after Clear, has %d", s.Len())
	}
}

func TestSession_Title(t *testing.T) {
	s := NewSession()
	if s.Title(20) != "" {
		t.Errorf("Title on empty session = %q, want empty", s.Title(20))
	}

	s.Append(RoleSystem, "you are terse")
	s.Append(RoleUser, "short")
	s.Append(RoleUser, "second message, never the title")

	if got := s.Title(20); got != "short" {
		t.Errorf("Title(20) = %q, want the first user message", got)
	}
}

func TestSession_TitleTruncatesByDisplayWidth(t *testing.T) {
	s := NewSession()
	s.Append(RoleUser, "a rather long opening question about goroutines")

	title := s.Title(10)
	if len(title) > 13 { // 10 cells plus ellipsis slack
		t.Errorf("Title(10) = %q, too long", title)
	}
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestSession_SnapshotShape(t *testing.T) {
	s := NewSession()
	s.Append(RoleUser, "Hello")
	assistant := s.Append(RoleAssistant, "")
	assistant.AppendContent("partial")

	snapshot := s.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot length = %d, want 2", len(snapshot))
	}
	if snapshot[0].Role != "user" || snapshot[0].Content != "Hello" {
		t.Errorf("snapshot[0] = %+v", snapshot[0])
	}
	// The snapshot reflects in-progress partial content at call time.
	if snapshot[1].Role != "assistant" || snapshot[1].Content != "partial" {
		t.Errorf("snapshot[1] = %+v", snapshot[1])
	}
}

func TestSession_SnapshotDropsLocalFields(t *testing.T) {
	s := NewSession()
	msg := s.Append(RoleUser, "Hello")

	snapshot := s.Snapshot()
	// Wire messages carry role and content only; the id and timestamp
	// stay local. The struct has no other fields, so equality suffices.
	if snapshot[0].Role != msg.Role.String() || snapshot[0].Content != msg.Content {
		t.Errorf("snapshot[0] = %+v, want role/content of %+v", snapshot[0], msg)
	}
}

func TestSession_StreamingMutationVisibleInPlace(t *testing.T) {
	s := NewSession()
	assistant := s.Append(RoleAssistant, "")

	assistant.AppendContent("Hi")
	assistant.AppendContent(" there")

	if s.Last().Content != "Hi there" {
		t.Errorf("Last().Content = %q, want %q", s.Last().Content, "Hi there")
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestRole_Valid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleSystem, true},
		{RoleUser, true},
		{RoleAssistant, true},
		{Role("tool"), false},
		{Role(""), false},
	}

	for _, tc := range tests {
		if got := tc.role.Valid(); got != tc.want {
			t.Errorf("Valid(%q) = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewMessage(RoleUser, "a rather long message that needs truncation")

	preview := msg.Preview(10)
	if len(preview) > 13 { // 10 cells plus ellipsis slack
		t.Errorf("Preview(10) = %q, too long", preview)
	}

	short := NewMessage(RoleUser, "short")
	if short.Preview(10) != "short" {
		t.Errorf("Preview(10) = %q, want short", short.Preview(10))
	}
}
