// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file bridges the gateway's callback-based streaming onto Bubble
// Tea's message loop. The stream runs in its own goroutine and hands
// increments over a channel; waitForStream re-arms after every message
// so delivery order is preserved.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/ollama"
)

// streamChanSize buffers enough increments that a fast stream never
// blocks on a slow render.
const streamChanSize = 256

// startStream dispatches the next exchange. The user message must
// already be in the session; this snapshots the context, appends the
// assistant placeholder, and launches the gateway call.
func (m *Model) startStream() tea.Cmd {
	snapshot := m.session.Snapshot()
	prompt := m.session.FlattenPrompt()
	placeholder := m.session.Append(model.RoleAssistant, "")

	ctx, pending := ollama.NewPendingRequest(context.Background())
	m.pendingMgr.set(pending)

	ch := make(chan tea.Msg, streamChanSize)
	m.streamCh = ch
	m.streamingMsg = placeholder
	m.streamStart = time.Now()
	m.state = StateStreaming

	var personaSnap *ollama.Persona
	if m.activePersona != nil {
		personaSnap = m.activePersona.Snapshot()
		m.msgPersonas[placeholder.ID] = m.activePersona
	}

	modelName := m.modelName
	client := m.client
	useGenerate := m.cfg.Chat.UseGenerate
	msgID := placeholder.ID
	start := m.streamStart

	go func() {
		first := true
		onIncrement := func(fragment string) {
			ch <- StreamTokenMsg{MessageID: msgID, Token: fragment, IsFirst: first}
			first = false
		}

		var err error
		if useGenerate {
			err = client.GenerateStream(ctx, modelName, prompt, personaSnap, onIncrement)
		} else {
			err = client.ChatStream(ctx, modelName, snapshot, personaSnap, onIncrement)
		}

		if err != nil {
			ch <- StreamErrorMsg{MessageID: msgID, Error: err}
		} else {
			ch <- StreamDoneMsg{MessageID: msgID, Elapsed: time.Since(start)}
		}
		close(ch)
	}()

	return tea.Batch(
		func() tea.Msg { return StreamStartMsg{MessageID: msgID, StartTime: start} },
		waitForStream(ch),
	)
}

// waitForStream returns a command that delivers the next stream message.
func waitForStream(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
