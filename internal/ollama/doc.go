// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP gateway for communicating with an
// Ollama-compatible model server.
//
// The gateway owns the base server address, discovers available models,
// and turns a streaming chat request into discrete content increments.
// Responses are newline-delimited JSON; the decoder buffers raw bytes,
// splits on the newline byte, skips records that fail to parse, and
// delivers each content fragment the moment its line completes.
//
// # Key Types
//
//   - Client: HTTP client for model discovery and streaming chat
//   - StreamReader: NDJSON decoder with in-order fragment delivery
//   - PendingRequest: cancellation handle for the one outstanding call
//   - ClientError: typed error taxonomy (connectivity, transport,
//     stream, cancelled)
//
// # Usage
//
// Stream a chat and append fragments to a growing message:
//
//	client := ollama.NewClient()
//	ctx, pending := ollama.NewPendingRequest(context.Background())
//	err := client.ChatStream(ctx, "llama3", msgs, persona, func(fragment string) {
//	    assistant.Content += fragment
//	})
//	pending.Settle()
//	if ollama.IsCancelled(err) {
//	    // user stopped early; partial content is kept as-is
//	}
//
// A single invocation moves through REQUEST_SENT and STREAMING and
// settles exactly once as completed, cancelled, or failed; increments
// are only delivered while streaming.
package ollama
