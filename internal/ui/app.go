// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui assembles the top-level Bubble Tea program.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/ui/chat"
)

// App is the root Bubble Tea model. It owns the chat view; the wrapper
// exists so the chat package can keep its concrete Update signature.
type App struct {
	chat chat.Model
}

// NewApp wraps the chat view as the program root.
func NewApp(chatModel chat.Model) App {
	return App{chat: chatModel}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return a.chat.Init()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := a.chat.Update(msg)
	a.chat = updated
	return a, cmd
}

// View implements tea.Model.
func (a App) View() string {
	return a.chat.View()
}
