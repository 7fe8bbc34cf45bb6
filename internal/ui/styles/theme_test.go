// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewTheme_ThemePreference(t *testing.T) {
	dark := NewTheme("dark")
	if !dark.IsDark {
		t.Error("dark preference should force IsDark")
	}
	if dark.GlamourStyle() != "dark" {
		t.Errorf("GlamourStyle() = %q, want dark", dark.GlamourStyle())
	}

	light := NewTheme("light")
	if light.IsDark {
		t.Error("light preference should clear IsDark")
	}
	if light.GlamourStyle() != "light" {
		t.Errorf("GlamourStyle() = %q, want light", light.GlamourStyle())
	}
}

func TestTheme_GetLayoutMode(t *testing.T) {
	theme := NewTheme("dark")

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, 40)
		if got := theme.GetLayoutMode(); got != tc.want {
			t.Errorf("GetLayoutMode() at width %d = %v, want %v", tc.width, got, tc.want)
		}
	}
}

func TestTheme_PersonaLabel(t *testing.T) {
	theme := NewTheme("dark")

	// Empty color falls back to the stock assistant label.
	fallback := theme.PersonaLabel("")
	if fallback.GetBold() != theme.AssistantLabel.GetBold() {
		t.Error("empty color should reuse the assistant label style")
	}

	tinted := theme.PersonaLabel("#FF8800")
	if !tinted.GetBold() {
		t.Error("persona label should stay bold")
	}
}
