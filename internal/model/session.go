// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/jeranaias/parley/internal/ollama"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session holds the ordered message list for the active conversation.
// Exactly one session is live at a time. Message order is append-only
// insertion order; the only other mutation is RemoveLast, the rollback
// used to undo a failed exchange.
//
// All access happens on the UI event loop, so no locking is needed.
type Session struct {
	messages  []*Message
	updatedAt time.Time
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{
		messages: make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append creates a message with a fresh id and current timestamp,
// appends it, and returns it by reference so the gateway callback can
// mutate Content directly as increments arrive.
func (s *Session) Append(role Role, content string) *Message {
	msg := NewMessage(role, content)
	s.messages = append(s.messages, msg)
	s.updatedAt = time.Now()
	return msg
}

// RemoveLast pops and returns the most recent message, or nil when the
// session is empty. Used to roll back an assistant placeholder after a
// failed exchange; never used for cancellation, where partial content
// is kept.
func (s *Session) RemoveLast() *Message {
	if len(s.messages) == 0 {
		return nil
	}
	last := s.messages[len(s.messages)-1]
	s.messages = s.messages[:len(s.messages)-1]
	s.updatedAt = time.Now()
	return last
}

// Last returns the most recent message without removing it, or nil.
func (s *Session) Last() *Message {
	if len(s.messages) == 0 {
		return nil
	}
	return s.messages[len(s.messages)-1]
}

// Clear empties the session. Irreversible.
func (s *Session) Clear() {
	s.messages = make([]*Message, 0)
	s.updatedAt = time.Now()
}

// Len returns the number of messages.
func (s *Session) Len() int {
	return len(s.messages)
}

// IsEmpty returns true if there are no messages.
func (s *Session) IsEmpty() bool {
	return len(s.messages) == 0
}

// Messages returns the message list for display. Callers must not
// reorder it.
func (s *Session) Messages() []*Message {
	return s.messages
}

// UpdatedAt returns the time of the last mutation.
func (s *Session) UpdatedAt() time.Time {
	return s.updatedAt
}

// Title returns a short conversation title derived from the first user
// message, truncated to maxWidth display cells. Empty until the user
// has sent something.
func (s *Session) Title(maxWidth int) string {
	for _, msg := range s.messages {
		if msg.Role == RoleUser && !msg.IsEmpty() {
			return msg.Preview(maxWidth)
		}
	}
	return ""
}

// =============================================================================
// GATEWAY CONVERSION
// =============================================================================

// Snapshot returns the session in the wire shape the gateway submits as
// conversational context: insertion order, role and content only,
// including any in-progress partial content at the moment of the call.
// Callers snapshot before appending the assistant placeholder so the
// placeholder is excluded from the context sent upstream.
func (s *Session) Snapshot() []ollama.Message {
	snapshot := make([]ollama.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		if !msg.Role.Valid() {
			continue
		}
		snapshot = append(snapshot, ollama.Message{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}
	return snapshot
}

// FlattenPrompt renders the session as a single prompt string for the
// non-conversational generate fallback endpoint.
func (s *Session) FlattenPrompt() string {
	var out string
	for _, msg := range s.messages {
		if msg.Content == "" {
			continue
		}
		out += msg.Role.DisplayName() + ": " + msg.Content + "\n"
	}
	return out
}
