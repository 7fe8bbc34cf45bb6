// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP gateway for communicating with an
// Ollama-compatible model server.
package ollama

import (
	"context"
	"sync"
)

// =============================================================================
// PENDING REQUEST
// =============================================================================

// PendingRequest correlates one outstanding chat call with its
// cancellation token. The caller holds at most one live PendingRequest
// at a time; the gateway does not arbitrate concurrent chats.
//
// Abort is cooperative: it signals the transport to stop at the next
// read and causes the in-flight call to settle as a cancellation, not
// an error. Abort after natural completion is a no-op.
//
// IMPORTANT: always hold a *PendingRequest; the mutex must not be copied.
type PendingRequest struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	aborted bool
	settled bool
}

// NewPendingRequest derives a cancellable context from parent and the
// handle that aborts it. The caller passes the context into ChatStream
// or GenerateStream and calls Settle once the call returns.
func NewPendingRequest(parent context.Context) (context.Context, *PendingRequest) {
	ctx, cancel := context.WithCancel(parent)
	return ctx, &PendingRequest{cancel: cancel}
}

// Abort cancels the in-flight request. Safe to call at most once per
// the caller contract, but idempotent and a no-op after completion.
func (p *PendingRequest) Abort() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.settled || p.cancel == nil {
		return
	}
	p.aborted = true
	p.cancel()
	p.cancel = nil
}

// Settle marks the request complete and releases the cancellation
// resources. Called when the stream call returns, whatever the outcome.
func (p *PendingRequest) Settle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settled = true
	if p.cancel != nil {
		// Release the derived context even on natural completion.
		p.cancel()
		p.cancel = nil
	}
}

// Aborted reports whether the user aborted the request.
func (p *PendingRequest) Aborted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.aborted
}
