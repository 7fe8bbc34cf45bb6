// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"io"
	"strings"
	"testing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// chunkedReader yields its chunks one Read at a time, simulating
// arbitrary transport chunk boundaries.
type chunkedReader struct {
	chunks [][]byte
	index  int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.index >= len(r.chunks) {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[r.index])
	r.index++
	return n, nil
}

func collect(got *[]string) IncrementCallback {
	return func(fragment string) {
		*got = append(*got, fragment)
	}
}

// =============================================================================
// DECODER TESTS
// =============================================================================

func TestStreamReader_DeliversAllFragmentsBeforeDone(t *testing.T) {
	body := `{"message":{"content":"Hi"},"done":false}` + "\n" +
		`{"message":{"content":" there"},"done":false}` + "\n" +
		`{"done":true}` + "\n"

	var got []string
	reader := NewStreamReader(strings.NewReader(body), nil)
	err := reader.Process(context.Background(), collect(&got))
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if len(got) != 2 || got[0] != "Hi" || got[1] != " there" {
		t.Errorf("fragments = %v, want [Hi,  there]", got)
	}
	if reader.Accumulated() != "Hi there" {
		t.Errorf("Accumulated() = %q, want %q", reader.Accumulated(), "Hi there")
	}
	if !reader.Done() {
		t.Error("Done() should be true after a done record")
	}
}

func TestStreamReader_LineSplitAcrossChunks(t *testing.T) {
	// One record split mid-token across two transport chunks.
	reader := NewStreamReader(&chunkedReader{chunks: [][]byte{
		[]byte(`{"message":{"con`),
		[]byte(`tent":"whole"},"done":false}` + "\n"),
		[]byte(`{"done":true}` + "\n"),
	}}, nil)

	var got []string
	if err := reader.Process(context.Background(), collect(&got)); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if len(got) != 1 || got[0] != "whole" {
		t.Errorf("fragments = %v, want [whole]", got)
	}
}

func TestStreamReader_SkipsMalformedLines(t *testing.T) {
	body := `{"message":{"content":"first"},"done":false}` + "\n" +
		`this is not json` + "\n" +
		`{"message":{"content":` + "\n" + // truncated record
		`{"message":{"content":"second"},"done":false}` + "\n" +
		`{"done":true}` + "\n"

	var got []string
	reader := NewStreamReader(strings.NewReader(body), nil)
	if err := reader.Process(context.Background(), collect(&got)); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("fragments = %v, want [first second]", got)
	}
}

func TestStreamReader_EmptyFragmentsNotDelivered(t *testing.T) {
	body := `{"message":{"content":""},"done":false}` + "\n" +
		`{"message":{"role":"assistant"},"done":false}` + "\n" +
		`{"done":true}` + "\n"

	var got []string
	reader := NewStreamReader(strings.NewReader(body), nil)
	if err := reader.Process(context.Background(), collect(&got)); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if len(got) != 0 {
		t.Errorf("fragments = %v, want none", got)
	}
}

func TestStreamReader_DoneStopsBeforeTrailingBytes(t *testing.T) {
	// Content after the done record must be discarded.
	body := `{"message":{"content":"kept"},"done":false}` + "\n" +
		`{"done":true}` + "\n" +
		`{"message":{"content":"discarded"},"done":false}` + "\n"

	var got []string
	reader := NewStreamReader(strings.NewReader(body), nil)
	if err := reader.Process(context.Background(), collect(&got)); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if len(got) != 1 || got[0] != "kept" {
		t.Errorf("fragments = %v, want [kept]", got)
	}
}

func TestStreamReader_TrailingPartialLineDiscarded(t *testing.T) {
	// Stream ends without a newline or done marker: best-effort decoding
	// drops the partial tail and reports the drop.
	body := `{"message":{"content":"seen"},"done":false}` + "\n" +
		`{"message":{"content":"lost"`

	var got []string
	reader := NewStreamReader(strings.NewReader(body), nil)
	err := reader.Process(context.Background(), collect(&got))

	if err != io.ErrUnexpectedEOF {
		t.Fatalf("Process() error = %v, want io.ErrUnexpectedEOF", err)
	}
	if len(got) != 1 || got[0] != "seen" {
		t.Errorf("fragments = %v, want [seen]", got)
	}
}

func TestStreamReader_EOFWithoutDone(t *testing.T) {
	body := `{"message":{"content":"partial"},"done":false}` + "\n"

	var got []string
	reader := NewStreamReader(strings.NewReader(body), nil)
	err := reader.Process(context.Background(), collect(&got))

	if err != io.ErrUnexpectedEOF {
		t.Fatalf("Process() error = %v, want io.ErrUnexpectedEOF", err)
	}
	if reader.Done() {
		t.Error("Done() should be false without a done record")
	}
}

func TestStreamReader_GenerateShapeFallback(t *testing.T) {
	body := `{"response":"gen","done":false}` + "\n" +
		`{"content":"legacy","done":false}` + "\n" +
		`{"done":true}` + "\n"

	var got []string
	reader := NewStreamReader(strings.NewReader(body), nil)
	if err := reader.Process(context.Background(), collect(&got)); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if len(got) != 2 || got[0] != "gen" || got[1] != "legacy" {
		t.Errorf("fragments = %v, want [gen legacy]", got)
	}
}

func TestStreamReader_CancelledContextStopsDelivery(t *testing.T) {
	body := `{"message":{"content":"never"},"done":false}` + "\n" +
		`{"done":true}` + "\n"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got []string
	reader := NewStreamReader(strings.NewReader(body), nil)
	err := reader.Process(ctx, collect(&got))

	if err != context.Canceled {
		t.Fatalf("Process() error = %v, want context.Canceled", err)
	}
	if len(got) != 0 {
		t.Errorf("fragments = %v, want none after cancellation", got)
	}
}

func TestStreamReader_FragmentCount(t *testing.T) {
	body := `{"message":{"content":"a"},"done":false}` + "\n" +
		`{"message":{"content":"b"},"done":false}` + "\n" +
		`{"message":{"content":"c"},"done":false}` + "\n" +
		`{"done":true}` + "\n"

	reader := NewStreamReader(strings.NewReader(body), nil)
	if err := reader.Process(context.Background(), func(string) {}); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if reader.Fragments() != 3 {
		t.Errorf("Fragments() = %d, want 3", reader.Fragments())
	}
	if reader.Accumulated() != "abc" {
		t.Errorf("Accumulated() = %q, want abc", reader.Accumulated())
	}
}
