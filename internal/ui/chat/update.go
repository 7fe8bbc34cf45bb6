// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/ollama"
)

// Update handles all incoming Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// ==========================================================================
	// STREAMING
	// ==========================================================================

	case StreamStartMsg:
		return m, nil

	case StreamTokenMsg:
		if m.streamingMsg != nil && m.streamingMsg.ID == msg.MessageID {
			m.streamingMsg.AppendContent(msg.Token)
			m.refreshViewport()
		}
		return m, waitForStream(m.streamCh)

	case StreamDoneMsg:
		m.pendingMgr.settle()
		m.state = StateReady
		m.streamingMsg = nil
		m.streamCh = nil
		m.statusMsg = "Done in " + msg.Elapsed.Round(statusElapsedPrecision).String()
		m.refreshViewport()
		return m, expireStatusCmd()

	case StreamErrorMsg:
		return m.handleStreamError(msg)

	// ==========================================================================
	// DISCOVERY AND PERSONAS
	// ==========================================================================

	case ModelsLoadedMsg:
		if msg.Error != nil {
			m.statusMsg = "Model discovery failed: " + msg.Error.Error()
			if m.picker == pickerModels {
				m.picker = pickerNone
			}
			return m, expireStatusCmd()
		}
		m.models = msg.Models
		if len(m.models) == 0 && m.picker == pickerModels {
			m.picker = pickerNone
			m.statusMsg = "No models installed on the server"
			return m, expireStatusCmd()
		}
		return m, nil

	case ModelSelectedMsg:
		m.statusMsg = "Model: " + msg.Model
		return m, expireStatusCmd()

	case PersonasLoadedMsg:
		if msg.Error != nil {
			m.statusMsg = "Could not read personas: " + msg.Error.Error()
			if m.picker == pickerPersonas {
				m.picker = pickerNone
			}
			return m, expireStatusCmd()
		}
		m.personas = msg.Personas
		return m, nil

	case PersonaSelectedMsg:
		m.statusMsg = "Persona: " + msg.Persona.Name
		return m, expireStatusCmd()

	// ==========================================================================
	// UI STATE
	// ==========================================================================

	case StatusExpireMsg:
		m.statusMsg = ""
		return m, nil

	case DismissErrorMsg:
		m.lastError = nil
		if m.state == StateError {
			m.state = StateReady
		}
		return m, nil

	case ConfigReloadedMsg:
		// Same precedence as startup: a stored server URL wins over the
		// file, so editing the config never undoes an in-UI override.
		url := msg.Config.Server.URL
		if m.store != nil {
			if stored, err := m.store.ServerURL(); err == nil && stored != "" {
				url = stored
			}
		}
		if url != m.client.BaseURL() {
			m.client.SetBaseURL(url)
		}
		m.cfg = msg.Config
		m.statusMsg = "Configuration reloaded"
		return m, expireStatusCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey routes keyboard input by current state.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.pendingMgr.abort()
		return m, tea.Quit

	case "esc":
		if m.picker != pickerNone {
			m.picker = pickerNone
			return m, nil
		}
		if m.state == StateStreaming {
			// Cooperative cancel: the stream goroutine observes the
			// context and settles with a cancellation error.
			m.pendingMgr.abort()
			m.statusMsg = "Cancelling..."
			return m, nil
		}
		if m.lastError != nil {
			m.lastError = nil
			m.state = StateReady
			return m, nil
		}
		return m, nil

	case "enter":
		if m.picker != pickerNone {
			return m.pickerSelect()
		}
		return m.submitInput()

	case "up", "ctrl+p":
		if m.picker != pickerNone {
			if m.pickerIndex > 0 {
				m.pickerIndex--
			}
			return m, nil
		}

	case "down", "ctrl+n":
		if m.picker != pickerNone {
			if m.pickerIndex < m.pickerLen()-1 {
				m.pickerIndex++
			}
			return m, nil
		}

	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil

	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput dispatches the typed line as a command or chat message.
func (m Model) submitInput() (Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}

	if name, arg, ok := parseCommand(content); ok {
		m.input.Reset()
		return m.handleCommand(name, arg)
	}

	// One exchange at a time: a second send while streaming is refused,
	// not queued.
	if m.state == StateStreaming {
		m.statusMsg = "Still streaming - press Esc to cancel first"
		return m, expireStatusCmd()
	}
	if m.lastError != nil {
		m.lastError = nil
	}

	m.input.Reset()
	m.session.Append(model.RoleUser, content)
	m.refreshViewport()
	cmd := m.startStream()
	return m, cmd
}

// pickerLen returns the item count of the open overlay.
func (m Model) pickerLen() int {
	switch m.picker {
	case pickerModels:
		return len(m.models)
	case pickerPersonas:
		return len(m.personas)
	}
	return 0
}

// pickerSelect applies the highlighted overlay item.
func (m Model) pickerSelect() (Model, tea.Cmd) {
	switch m.picker {
	case pickerModels:
		if m.pickerIndex < len(m.models) {
			selected := m.models[m.pickerIndex].Name
			m.modelName = selected
			m.picker = pickerNone
			return m, m.persistModelCmd(selected)
		}
	case pickerPersonas:
		if m.pickerIndex < len(m.personas) {
			selected := m.personas[m.pickerIndex]
			m.activePersona = selected
			m.picker = pickerNone
			return m, func() tea.Msg { return PersonaSelectedMsg{Persona: selected} }
		}
	}
	m.picker = pickerNone
	return m, nil
}

// handleStreamError settles the request and maps the gateway error onto
// UI state. Cancellation keeps whatever partial content arrived; real
// failures roll the placeholder back so a retry starts clean.
func (m Model) handleStreamError(msg StreamErrorMsg) (Model, tea.Cmd) {
	m.pendingMgr.settle()
	m.streamCh = nil

	placeholder := m.streamingMsg
	m.streamingMsg = nil

	if ollama.IsCancelled(msg.Error) {
		if placeholder != nil && placeholder.IsEmpty() {
			m.session.RemoveLast()
			delete(m.msgPersonas, placeholder.ID)
		}
		m.state = StateReady
		m.statusMsg = "Cancelled"
		m.refreshViewport()
		return m, expireStatusCmd()
	}

	if placeholder != nil {
		m.session.RemoveLast()
		delete(m.msgPersonas, placeholder.ID)
	}
	m.state = StateError
	m.lastError = msg.Error
	m.refreshViewport()
	return m, nil
}
