// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat
// interface. Messages are organized into the following categories:
//   - Streaming: stream start, token delivery, completion, and errors
//   - Discovery: model list delivery and selection
//   - Personas: persona list delivery and selection
//   - UI State: status expiry, error dismissal, config reload
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"time"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/ollama"
	"github.com/jeranaias/parley/internal/persona"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamStartMsg signals that a request was dispatched.
type StreamStartMsg struct {
	MessageID string
	StartTime time.Time
}

// StreamTokenMsg delivers a new content increment from the stream.
type StreamTokenMsg struct {
	MessageID string
	Token     string
	IsFirst   bool
}

// StreamDoneMsg signals that the stream settled normally.
type StreamDoneMsg struct {
	MessageID string
	Elapsed   time.Duration
}

// StreamErrorMsg signals that the stream settled with an error. The
// error carries the gateway's classification: cancellation arrives
// here too and is not treated as a failure.
type StreamErrorMsg struct {
	MessageID string
	Error     error
}

// =============================================================================
// DISCOVERY MESSAGES
// =============================================================================

// ModelsLoadedMsg delivers the list of installed models.
type ModelsLoadedMsg struct {
	Models []ollama.ModelInfo
	Error  error
}

// ModelSelectedMsg confirms a model switch.
type ModelSelectedMsg struct {
	Model string
}

// =============================================================================
// PERSONA MESSAGES
// =============================================================================

// PersonasLoadedMsg delivers the stored persona list.
type PersonasLoadedMsg struct {
	Personas []*persona.Persona
	Error    error
}

// PersonaSelectedMsg confirms a persona switch.
type PersonaSelectedMsg struct {
	Persona *persona.Persona
}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// StatusExpireMsg clears a temporary status line message.
type StatusExpireMsg struct{}

// DismissErrorMsg dismisses the current error box.
type DismissErrorMsg struct{}

// ConfigReloadedMsg delivers a live-reloaded configuration.
type ConfigReloadedMsg struct {
	Config *config.Config
}
