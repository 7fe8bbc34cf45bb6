// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the parley TUI.
//
// The Theme struct holds every lipgloss style the UI renders with,
// built once at startup from the configured theme preference and the
// detected terminal background. Colors are AdaptiveColor pairs so the
// same style reads well on light and dark terminals; persona accents
// are applied per message via PersonaLabel.
package styles
