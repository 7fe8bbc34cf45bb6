// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports transcripts to indented JSON.
type JSONExporter struct{}

type jsonTranscript struct {
	Model    string        `json:"model"`
	Persona  string        `json:"persona,omitempty"`
	Updated  time.Time     `json:"updated"`
	Exported time.Time     `json:"exported"`
	Messages []jsonMessage `json:"messages"`
}

type jsonMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Export converts a transcript to JSON format.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil || len(t.Messages) == 0 {
		return nil, fmt.Errorf("transcript has no messages")
	}

	out := jsonTranscript{
		Model:    t.Model,
		Persona:  t.Persona,
		Updated:  t.Updated,
		Exported: t.Exported,
		Messages: make([]jsonMessage, 0, len(t.Messages)),
	}
	for _, msg := range t.Messages {
		out.Messages = append(out.Messages, jsonMessage{
			Role:      msg.Role.String(),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	return json.MarshalIndent(out, "", "  ")
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
