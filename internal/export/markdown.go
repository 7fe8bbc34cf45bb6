// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown with a YAML
// frontmatter header.
type MarkdownExporter struct{}

// Export converts a transcript to Markdown format.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil || len(t.Messages) == 0 {
		return nil, fmt.Errorf("transcript has no messages")
	}

	var sb strings.Builder

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("model: %s\n", t.Model))
	if t.Persona != "" {
		sb.WriteString(fmt.Sprintf("persona: %s\n", t.Persona))
	}
	sb.WriteString(fmt.Sprintf("messages: %d\n", len(t.Messages)))
	if !t.Updated.IsZero() {
		sb.WriteString(fmt.Sprintf("updated: %s\n", t.Updated.Format(time.RFC3339)))
	}
	sb.WriteString(fmt.Sprintf("exported: %s\n", t.Exported.Format(time.RFC3339)))
	sb.WriteString("generator: parley\n")
	sb.WriteString("---\n\n")

	for _, msg := range t.Messages {
		sb.WriteString("## ")
		sb.WriteString(msg.Role.DisplayName())
		sb.WriteString("\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}
