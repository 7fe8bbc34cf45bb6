// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP gateway for communicating with an
// Ollama-compatible model server.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
)

// =============================================================================
// STREAM RECORD
// =============================================================================

// streamRecord is one NDJSON line from either streaming endpoint. The
// chat endpoint nests content under message; the generate endpoint
// carries it at the top level as response (or content on some servers).
type streamRecord struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Response   string `json:"response"`
	Content    string `json:"content"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// fragment extracts the content increment from a record, preferring the
// chat shape and falling back to the generate shape.
func (r *streamRecord) fragment() string {
	if r.Message.Content != "" {
		return r.Message.Content
	}
	if r.Response != "" {
		return r.Response
	}
	return r.Content
}

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader decodes a newline-delimited JSON response body into
// discrete content fragments. Buffering is chunk-boundary agnostic: a
// line split across two transport chunks parses once both halves have
// arrived. Lines that fail to parse are skipped, never fatal.
type StreamReader struct {
	reader *bufio.Reader
	logger *log.Logger

	// accumulator keeps everything delivered so far, for diagnostics
	// and tests. strings.Builder avoids quadratic allocations.
	accumulator strings.Builder
	fragments   int
	done        bool
}

// NewStreamReader creates a stream reader. logger may be nil.
func NewStreamReader(r io.Reader, logger *log.Logger) *StreamReader {
	return &StreamReader{
		reader: bufio.NewReader(r),
		logger: logger,
	}
}

// Process reads the stream until a done record, delivering each
// non-empty fragment through onIncrement in arrival order. Returns nil
// on a done record; io.ErrUnexpectedEOF when the connection closes
// before one; ctx.Err() when cancelled. onIncrement is never invoked
// after Process returns.
func (s *StreamReader) Process(ctx context.Context, onIncrement IncrementCallback) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return ctx.Err()
			}
			if err == io.EOF {
				// A trailing partial line after the connection closes is
				// discarded, not recovered: best-effort decoding.
				return io.ErrUnexpectedEOF
			}
			return err
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var record streamRecord
		if err := json.Unmarshal(line, &record); err != nil {
			// Servers occasionally interleave non-JSON lines; skip them
			// without losing subsequent records.
			if s.logger != nil {
				s.logger.Printf("stream: skipping malformed record (%d bytes)", len(line))
			}
			continue
		}

		if record.Error != "" {
			return errors.New(record.Error)
		}

		if fragment := record.fragment(); fragment != "" {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.accumulator.WriteString(fragment)
			s.fragments++
			onIncrement(fragment)
		}

		if record.Done {
			// Stream complete; anything still buffered is discarded.
			s.done = true
			return nil
		}
	}
}

// Accumulated returns all content delivered so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// Fragments returns the number of fragments delivered.
func (s *StreamReader) Fragments() int {
	return s.fragments
}

// Done reports whether a done record was received.
func (s *StreamReader) Done() bool {
	return s.done
}
