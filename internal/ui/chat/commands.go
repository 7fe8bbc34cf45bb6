// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the slash command surface and the commands that
// talk to the gateway and persona store off the event loop.
package chat

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/export"
	"github.com/jeranaias/parley/internal/persona"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// parseCommand splits a slash command into name and argument.
// Returns ok=false for ordinary chat input.
func parseCommand(input string) (name, arg string, ok bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return "", "", false
	}
	parts := strings.SplitN(trimmed[1:], " ", 2)
	name = strings.ToLower(parts[0])
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return name, arg, true
}

// handleCommand executes a slash command and returns the updated model
// plus any follow-up command.
func (m Model) handleCommand(name, arg string) (Model, tea.Cmd) {
	switch name {
	case "help":
		m.statusMsg = "/models  /persona [name]  /export [md|json]  /clear  /quit   Esc cancels a reply"
		return m, expireStatusCmd()

	case "models":
		m.picker = pickerModels
		m.pickerIndex = 0
		return m, m.loadModelsCmd()

	case "persona", "personas":
		if arg != "" {
			return m.selectPersonaByName(arg)
		}
		m.picker = pickerPersonas
		m.pickerIndex = 0
		return m, m.loadPersonasCmd()

	case "export":
		return m.exportConversation(strings.ToLower(arg))

	case "clear":
		m.session.Clear()
		m.msgPersonas = make(map[string]*persona.Persona)
		m.statusMsg = "Conversation cleared"
		m.refreshViewport()
		return m, expireStatusCmd()

	case "quit", "exit":
		return m, tea.Quit

	default:
		m.statusMsg = fmt.Sprintf("Unknown command /%s - try /help", name)
		return m, expireStatusCmd()
	}
}

// selectPersonaByName activates a persona by case-insensitive name.
func (m Model) selectPersonaByName(name string) (Model, tea.Cmd) {
	if m.store == nil {
		m.statusMsg = "Persona store unavailable"
		return m, expireStatusCmd()
	}
	personas, err := m.store.List()
	if err != nil {
		m.statusMsg = "Could not read personas: " + err.Error()
		return m, expireStatusCmd()
	}
	for _, p := range personas {
		if strings.EqualFold(p.Name, name) {
			m.activePersona = p
			m.statusMsg = "Persona: " + p.Name
			return m, expireStatusCmd()
		}
	}
	m.statusMsg = fmt.Sprintf("No persona named %q", name)
	return m, expireStatusCmd()
}

// exportConversation writes the transcript under ~/.parley/exports.
func (m Model) exportConversation(format string) (Model, tea.Cmd) {
	if m.session.IsEmpty() {
		m.statusMsg = "Nothing to export yet"
		return m, expireStatusCmd()
	}

	exporter, err := export.ForFormat(format)
	if err != nil {
		m.statusMsg = err.Error()
		return m, expireStatusCmd()
	}

	personaName := ""
	if m.activePersona != nil {
		personaName = m.activePersona.Name
	}
	transcript := &export.Transcript{
		Messages: m.session.Messages(),
		Model:    m.modelName,
		Persona:  personaName,
		Updated:  m.session.UpdatedAt(),
	}

	dir, err := config.ConfigDir()
	if err != nil {
		m.statusMsg = "Export failed: " + err.Error()
		return m, expireStatusCmd()
	}

	path, err := export.ExportToFile(transcript, exporter, filepath.Join(dir, "exports"))
	if err != nil {
		m.statusMsg = "Export failed: " + err.Error()
		return m, expireStatusCmd()
	}
	m.statusMsg = "Exported to " + path
	return m, expireStatusCmd()
}

// =============================================================================
// ASYNC COMMANDS
// =============================================================================

// discoveryTimeout bounds the model list call independently of any
// in-flight stream.
const discoveryTimeout = 30 * time.Second

// errDiscoveryThrottled reports that a refresh was dropped by the rate
// limiter rather than sent to the server.
var errDiscoveryThrottled = errors.New("model discovery throttled, try again shortly")

// loadModelsCmd fetches the installed model list.
func (m *Model) loadModelsCmd() tea.Cmd {
	if !m.discoveryLimiter.Allow() {
		return func() tea.Msg {
			return ModelsLoadedMsg{Error: errDiscoveryThrottled}
		}
	}
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), discoveryTimeout)
		defer cancel()
		models, err := client.ListModels(ctx)
		return ModelsLoadedMsg{Models: models, Error: err}
	}
}

// loadPersonasCmd reads the stored persona list.
func (m *Model) loadPersonasCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if store == nil {
			return PersonasLoadedMsg{}
		}
		personas, err := store.List()
		return PersonasLoadedMsg{Personas: personas, Error: err}
	}
}

// persistModelCmd records the selected model for the next session.
func (m *Model) persistModelCmd(name string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if store != nil {
			if err := store.SetLastModel(name); err != nil && m.logger != nil {
				m.logger.Printf("could not persist model selection: %v", err)
			}
		}
		return ModelSelectedMsg{Model: name}
	}
}

// statusDuration is how long a transient status line stays visible.
const statusDuration = 4 * time.Second

// expireStatusCmd clears the status line after a short delay.
func expireStatusCmd() tea.Cmd {
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return StatusExpireMsg{}
	})
}

// defaultPersonas returns the presets seeded on first run.
func defaultPersonas() []*persona.Persona {
	terse, _ := persona.New("Terse", "You are a terse assistant. Answer in as few words as possible.", 0.2, "#22D3EE")
	tutor, _ := persona.New("Tutor", "You are a patient tutor. Explain concepts step by step with examples.", 0.7, "#34D399")
	pirate, _ := persona.New("Pirate", "You are a pirate. Answer every question in pirate speak.", 1.1, "#FBBF24")
	return []*persona.Persona{terse, tutor, pirate}
}

// SeedDefaultPersonas writes the built-in presets into an empty store.
// Existing personas are never touched.
func SeedDefaultPersonas(store *persona.Store) error {
	existing, err := store.List()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, p := range defaultPersonas() {
		if err := store.Save(p); err != nil {
			return err
		}
	}
	return nil
}
