// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// The Model follows the Bubble Tea architecture: Update consumes
// messages, View renders, and everything that blocks (gateway calls,
// persona store reads) runs as a tea.Cmd.
//
// Streaming flow:
//  1. submitInput appends the user message and calls startStream
//  2. startStream snapshots the session, appends an empty assistant
//     placeholder, and launches the gateway call in a goroutine
//  3. the goroutine forwards increments over a channel; waitForStream
//     turns each one into a StreamTokenMsg, preserving order
//  4. StreamDoneMsg or StreamErrorMsg settles the exchange
//
// Cancellation is cooperative: Esc calls Abort on the pending request
// handle, the gateway observes the context, and the stream settles
// with a cancellation error. Partial content already rendered stays in
// the session; only real failures roll the placeholder back.
//
// One exchange is in flight at a time. A second send while streaming is
// refused with a status hint rather than queued.
package chat
