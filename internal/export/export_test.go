// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/parley/internal/model"
)

func testTranscript() *Transcript {
	return &Transcript{
		Messages: []*model.Message{
			model.NewMessage(model.RoleUser, "What is a goroutine?"),
			model.NewMessage(model.RoleAssistant, "A goroutine is a lightweight thread."),
		},
		Model:    "gpt-oss:20b",
		Persona:  "Tutor",
		Updated:  time.Date(2025, 6, 1, 11, 58, 0, 0, time.UTC),
		Exported: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{"", ".md", false},
		{"md", ".md", false},
		{"markdown", ".md", false},
		{"json", ".json", false},
		{"pdf", "", true},
	}

	for _, tc := range tests {
		e, err := ForFormat(tc.format)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ForFormat(%q) should fail", tc.format)
			}
			continue
		}
		if err != nil {
			t.Errorf("ForFormat(%q): %v", tc.format, err)
			continue
		}
		if e.FileExtension() != tc.wantExt {
			t.Errorf("ForFormat(%q).FileExtension() = %q, want %q", tc.format, e.FileExtension(), tc.wantExt)
		}
	}
}

func TestMarkdownExport(t *testing.T) {
	data, err := (&MarkdownExporter{}).Export(testTranscript())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	out := string(data)
	for _, want := range []string{
		"model: gpt-oss:20b",
		"persona: Tutor",
		"updated: 2025-06-01T11:58:00Z",
		"## You",
		"## Assistant",
		"A goroutine is a lightweight thread.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown export missing %q", want)
		}
	}
}

func TestJSONExport(t *testing.T) {
	data, err := (&JSONExporter{}).Export(testTranscript())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var got jsonTranscript
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if got.Model != "gpt-oss:20b" || len(got.Messages) != 2 {
		t.Errorf("round trip = %+v", got)
	}
	if got.Messages[0].Role != "user" {
		t.Errorf("Messages[0].Role = %q, want user", got.Messages[0].Role)
	}
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()

	path, err := ExportToFile(testTranscript(), &MarkdownExporter{}, dir)
	if err != nil {
		t.Fatalf("ExportToFile: %v", err)
	}
	if !strings.HasSuffix(path, ".md") {
		t.Errorf("path = %q, want .md suffix", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "generator: parley") {
		t.Error("written file missing frontmatter")
	}
}

func TestExportToFile_EmptyTranscript(t *testing.T) {
	_, err := ExportToFile(&Transcript{}, &MarkdownExporter{}, t.TempDir())
	if err == nil {
		t.Error("empty transcript should not export")
	}
}
