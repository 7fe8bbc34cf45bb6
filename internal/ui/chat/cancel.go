// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements thread-safe pending-request handling: the handle
// is written from the Update loop and read from the streaming goroutine,
// so access is mutex-protected.
package chat

import (
	"sync"

	"github.com/jeranaias/parley/internal/ollama"
)

// =============================================================================
// PENDING REQUEST MANAGEMENT (THREAD-SAFE)
// =============================================================================

// pendingManager tracks the in-flight request handle with mutex
// protection. IMPORTANT: This must be used as a pointer (*pendingManager)
// in Model structs to prevent copying the mutex when Bubble Tea's Update
// function returns model copies.
type pendingManager struct {
	mu      sync.Mutex
	pending *ollama.PendingRequest
}

// newPendingManager creates a new pendingManager pointer.
func newPendingManager() *pendingManager {
	return &pendingManager{}
}

// set stores the handle for a newly dispatched request.
func (pm *pendingManager) set(p *ollama.PendingRequest) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.pending = p
}

// abort requests cancellation of the in-flight request. Safe to call
// with no request pending; a settled request ignores the abort.
func (pm *pendingManager) abort() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.pending != nil {
		pm.pending.Abort()
	}
}

// settle marks the request settled and drops the handle.
func (pm *pendingManager) settle() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.pending != nil {
		pm.pending.Settle()
		pm.pending = nil
	}
}

// active reports whether a request is currently tracked.
func (pm *pendingManager) active() bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.pending != nil
}
