// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/jeranaias/parley/internal/ollama"
)

// =============================================================================
// PERSONA TYPE
// =============================================================================

// Persona is a named preset bundling a system prompt, a sampling
// temperature, and a display color, selectable per conversation.
type Persona struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	SystemPrompt string  `json:"system_prompt"`
	Temperature  float64 `json:"temperature"` // 0.0-2.0
	Color        string  `json:"color"`       // #RRGGBB
	IsDefault    bool    `json:"is_default"`
}

// DefaultColor is used when a persona carries no valid color.
const DefaultColor = "#7C3AED"

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validation errors.
var (
	ErrEmptyName      = errors.New("persona name must not be empty")
	ErrBadTemperature = errors.New("temperature must be in [0, 2]")
	ErrNotFound       = errors.New("persona not found")
)

// New creates a persona with a fresh id and normalized fields.
func New(name, systemPrompt string, temperature float64, color string) (*Persona, error) {
	p := &Persona{
		ID:           uuid.NewString(),
		Name:         name,
		SystemPrompt: systemPrompt,
		Temperature:  temperature,
		Color:        color,
	}
	if err := p.Normalize(); err != nil {
		return nil, err
	}
	return p, nil
}

// Normalize validates the persona at the store boundary and fills in
// defaults. Malformed entries are rejected rather than trusted.
func (p *Persona) Normalize() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return ErrBadTemperature
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if !hexColorRe.MatchString(p.Color) {
		p.Color = DefaultColor
	}
	return nil
}

// Snapshot returns the immutable per-request view the gateway reads.
// The gateway never mutates the stored persona.
func (p *Persona) Snapshot() *ollama.Persona {
	if p == nil {
		return nil
	}
	temp := p.Temperature
	return &ollama.Persona{
		SystemPrompt: p.SystemPrompt,
		Temperature:  &temp,
	}
}
