// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/ollama"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// statusElapsedPrecision rounds elapsed times shown in the status line.
const statusElapsedPrecision = 100 * time.Millisecond

// headerTitleWidth bounds the conversation title in the header.
const headerTitleWidth = 32

// View renders the full chat screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.picker != pickerNone {
		b.WriteString(m.renderPicker())
	} else if m.lastError != nil {
		b.WriteString(m.renderError())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")

	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return b.String()
}

// renderHeader renders the title line with the active model and persona.
// Wider layouts also get a conversation title taken from the opening
// user message.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("parley")
	mdl := m.theme.HeaderModel.Render(m.modelName)
	parts := []string{title, mdl}
	if m.activePersona != nil {
		parts = append(parts, m.theme.PersonaLabel(m.activePersona.Color).Render(m.activePersona.Name))
	}
	if m.theme.GetLayoutMode() != styles.LayoutNarrow {
		if t := m.session.Title(headerTitleWidth); t != "" {
			parts = append(parts, m.theme.ListMeta.Render(t))
		}
	}
	return m.theme.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

// refreshViewport re-renders the transcript and follows the tail.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// renderTranscript renders every message in the session.
func (m Model) renderTranscript() string {
	if m.session.IsEmpty() {
		return m.theme.ThinkingText.Render("Send a message to start the conversation.")
	}

	var b strings.Builder
	for _, msg := range m.session.Messages() {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

// renderMessage renders a single message with its role label.
func (m Model) renderMessage(msg *model.Message) string {
	var label string
	switch msg.Role {
	case model.RoleUser:
		label = m.theme.UserLabel.Render("You")
	case model.RoleAssistant:
		// The label reflects the persona that produced this reply, not
		// whichever one is active now.
		if p, ok := m.msgPersonas[msg.ID]; ok {
			label = m.theme.PersonaLabel(p.Color).Render(p.Name)
		} else {
			label = m.theme.AssistantLabel.Render("Assistant")
		}
	default:
		label = m.theme.AssistantLabel.Render(msg.Role.DisplayName())
	}

	body := msg.Content
	streaming := m.streamingMsg != nil && m.streamingMsg.ID == msg.ID

	if streaming && body == "" {
		body = m.spinner.View() + " " + m.theme.ThinkingText.Render("thinking...")
	} else if !streaming && msg.Role == model.RoleAssistant && m.renderer != nil {
		// Markdown is rendered only once a reply settles; re-rendering
		// on every increment flickers badly.
		if rendered, err := m.renderer.Render(body); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}

	return label + "\n" + m.theme.MessageBody.Render(body) + "\n"
}

// renderPicker renders the model or persona selection overlay.
func (m Model) renderPicker() string {
	var b strings.Builder

	switch m.picker {
	case pickerModels:
		b.WriteString(m.theme.HeaderTitle.Render("Installed models"))
		b.WriteString("\n\n")
		if len(m.models) == 0 {
			b.WriteString(m.theme.ListMeta.Render("Loading..."))
		}
		for i, info := range m.models {
			line := info.Name
			if info.Size > 0 {
				line += "  " + info.FormatSize()
			}
			if i == m.pickerIndex {
				b.WriteString(m.theme.ListItemSelected.Render(line))
			} else {
				b.WriteString(m.theme.ListItem.Render(line))
			}
			b.WriteString("\n")
		}
	case pickerPersonas:
		b.WriteString(m.theme.HeaderTitle.Render("Personas"))
		b.WriteString("\n\n")
		if len(m.personas) == 0 {
			b.WriteString(m.theme.ListMeta.Render("No personas stored"))
		}
		for i, p := range m.personas {
			line := p.Name
			if p.IsDefault {
				line += "  (default)"
			}
			if i == m.pickerIndex {
				b.WriteString(m.theme.ListItemSelected.Render(line))
			} else {
				b.WriteString(m.theme.PersonaLabel(p.Color).Render(line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ShortcutDesc.Render("enter select - esc close"))
	return m.theme.ListBox.Render(b.String())
}

// renderError renders the dismissible error box.
func (m Model) renderError() string {
	title := "Request failed"
	tip := "Press Esc to dismiss, then try again."

	if ollama.IsConnectivity(m.lastError) {
		title = "Server unreachable"
		tip = "Check that the server is running, then retry with /models."
	} else if ollama.IsStream(m.lastError) {
		title = "Stream interrupted"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.ErrorTitle.Render(title),
		m.theme.ErrorMessage.Render(m.lastError.Error()),
		"",
		m.theme.ErrorTip.Render(tip),
	)
	return m.theme.ErrorBox.Render(content)
}

// renderInput renders the input line.
func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(m.width).Render(m.input.View())
}

// renderStatusBar renders the bottom status line.
func (m Model) renderStatusBar() string {
	var left string
	switch m.state {
	case StateStreaming:
		left = m.theme.StatusBusy.Render("streaming") + " " + m.spinner.View()
	case StateError:
		left = m.theme.ErrorTitle.Render("error")
	default:
		left = m.theme.StatusReady.Render("ready")
	}

	middle := ""
	if m.statusMsg != "" {
		middle = "  " + m.statusMsg
	}

	// Narrow terminals get the state and status only.
	help := ""
	if m.theme.GetLayoutMode() != styles.LayoutNarrow {
		help = "  " + m.theme.ShortcutKey.Render("esc") + m.theme.ShortcutDesc.Render(" cancel ") +
			m.theme.ShortcutKey.Render("ctrl+c") + m.theme.ShortcutDesc.Render(" quit")
	}

	return m.theme.StatusBar.Width(m.width).Render(left + middle + help)
}
