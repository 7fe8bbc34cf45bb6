// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/persona"
)

// =============================================================================
// MESSAGE LABELS
// =============================================================================

func TestRenderMessage_LabelKeepsOriginatingPersona(t *testing.T) {
	m := newTestModel(t)
	tutor, _ := persona.New("Tutor", "teach", 0.7, "#34D399")
	pirate, _ := persona.New("Pirate", "arr", 1.1, "#FBBF24")

	reply := m.session.Append(model.RoleAssistant, "Here is an answer.")
	m.msgPersonas[reply.ID] = tutor

	// Switching personas must not relabel the earlier reply.
	m.activePersona = pirate

	out := m.renderMessage(reply)
	if !strings.Contains(out, "Tutor") {
		t.Errorf("label should name the originating persona, got %q", out)
	}
	if strings.Contains(out, "Pirate") {
		t.Errorf("label must not follow the active persona, got %q", out)
	}
}

func TestRenderMessage_NoPersonaUsesAssistantLabel(t *testing.T) {
	m := newTestModel(t)
	pirate, _ := persona.New("Pirate", "arr", 1.1, "#FBBF24")
	m.activePersona = pirate

	// A reply produced before any persona was active stays plain.
	reply := m.session.Append(model.RoleAssistant, "plain reply")

	out := m.renderMessage(reply)
	if !strings.Contains(out, "Assistant") {
		t.Errorf("label should fall back to Assistant, got %q", out)
	}
	if strings.Contains(out, "Pirate") {
		t.Errorf("label must not borrow the active persona, got %q", out)
	}
}

// =============================================================================
// HEADER
// =============================================================================

func TestRenderHeader_ShowsConversationTitle(t *testing.T) {
	m := newTestModel(t)
	m.SetSize(100, 40)
	m.session.Append(model.RoleUser, "explain goroutines")

	if !strings.Contains(m.renderHeader(), "explain goroutines") {
		t.Error("wide header should carry the conversation title")
	}
}

func TestRenderHeader_NarrowOmitsTitle(t *testing.T) {
	m := newTestModel(t)
	m.SetSize(50, 40)
	m.session.Append(model.RoleUser, "explain goroutines")

	if strings.Contains(m.renderHeader(), "explain goroutines") {
		t.Error("narrow header should drop the conversation title")
	}
}
