// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the current conversation to disk.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jeranaias/parley/internal/model"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Transcript is the exportable view of a conversation: the messages
// plus the context they were produced under.
type Transcript struct {
	Messages []*model.Message
	Model    string
	Persona  string
	// Updated is the session's last-mutation time; Exported is when the
	// file was written.
	Updated  time.Time
	Exported time.Time
}

// Exporter defines the interface for transcript exporters.
type Exporter interface {
	// Export converts a transcript to the target format.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g. ".md").
	FileExtension() string
}

// ForFormat returns the exporter for a format name, or an error for an
// unknown format. Recognized: "md", "markdown", "json".
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "", "md", "markdown":
		return &MarkdownExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q (use md or json)", format)
	}
}

// =============================================================================
// EXPORT TO FILE
// =============================================================================

// ExportToFile writes the transcript into dir with a timestamped file
// name and returns the full path.
func ExportToFile(t *Transcript, e Exporter, dir string) (string, error) {
	if t == nil || len(t.Messages) == 0 {
		return "", fmt.Errorf("nothing to export")
	}
	if t.Exported.IsZero() {
		t.Exported = time.Now()
	}

	data, err := e.Export(t)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	name := "conversation-" + t.Exported.Format("20060102-150405") + e.FileExtension()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
