// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat session.
//
// A Session is the ordered, append-only list of messages exchanged in
// the current conversation. The assistant message returned by Append is
// mutated in place by the gateway's streaming callback; Snapshot
// produces the wire-shaped context the gateway submits upstream.
package model
