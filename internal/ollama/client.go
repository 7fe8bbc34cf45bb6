// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP gateway for communicating with an
// Ollama-compatible model server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the gateway.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes gateway errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota

	// ErrTypeConnectivity: model discovery could not complete within the
	// timeout or returned a non-success status.
	ErrTypeConnectivity

	// ErrTypeTransport: a chat request failed before any stream bytes
	// were read (network failure or non-2xx status).
	ErrTypeTransport

	// ErrTypeStream: the connection dropped mid-stream before a done
	// marker was received.
	ErrTypeStream

	// ErrTypeCancelled: the user aborted the request. Not a failure;
	// callers must not present it as one.
	ErrTypeCancelled
)

// Sentinel errors for easy checking.
var (
	ErrCancelled = &ClientError{Type: ErrTypeCancelled, Message: "request cancelled"}
)

// IsCancelled reports whether err is a user-initiated cancellation.
func IsCancelled(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeCancelled
	}
	return errors.Is(err, context.Canceled)
}

// IsConnectivity reports whether err is a discovery connectivity failure.
func IsConnectivity(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == ErrTypeConnectivity
}

// IsTransport reports whether err is a chat transport failure.
func IsTransport(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == ErrTypeTransport
}

// IsStream reports whether err is a mid-stream failure.
func IsStream(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == ErrTypeStream
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the gateway client.
type ClientConfig struct {
	// BaseURL is the server base URL (default: http://127.0.0.1:11434).
	// Uses the explicit IPv4 address instead of localhost to avoid IPv6
	// resolution issues on Windows.
	BaseURL string

	// Timeout bounds model discovery and the connection phase of a chat
	// request (default: 30s). Once streaming has begun no per-chunk
	// timeout applies; the server is trusted to emit done or close.
	Timeout time.Duration

	// DefaultModel to use if none specified.
	DefaultModel string

	// Logger receives skipped-record notices. Nil disables logging.
	Logger *log.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:11434",
		Timeout: 30 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles all HTTP interaction with the model server: model
// discovery, streaming chat, and the non-conversational generate
// fallback. It is safe for concurrent use, though the application
// contract allows at most one outstanding chat at a time.
type Client struct {
	// mu guards config.BaseURL, which a config reload may rewrite while
	// a stream goroutine is building its request.
	mu     sync.RWMutex
	config *ClientConfig

	// httpClient bounds whole-request time; used for discovery only.
	httpClient *http.Client

	// streamClient has no overall deadline. The connection phase is
	// bounded by ResponseHeaderTimeout; the body is read until done.
	streamClient *http.Client
}

// NewClient creates a gateway client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a gateway client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:11434"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		streamClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: config.Timeout,
			},
		},
	}
}

// BaseURL returns the server base URL currently in use.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.BaseURL
}

// SetBaseURL points the client at a different server. In-flight requests
// keep the URL they started with; only subsequent requests see the change.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	c.config.BaseURL = baseURL
	c.mu.Unlock()
}

// =============================================================================
// MODEL DISCOVERY
// =============================================================================

// ListModels retrieves all available models from the server. The
// returned slice preserves server order and is empty (never nil) when
// the server reports no models. No retries; the caller decides whether
// to re-invoke.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/api/tags", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnectivity, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if IsCancelled(err) {
			return nil, &ClientError{Type: ErrTypeCancelled, Message: "discovery cancelled", Cause: err}
		}
		return nil, &ClientError{Type: ErrTypeConnectivity, Message: "server unreachable", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeConnectivity,
			Message: "failed to list models: " + resp.Status,
		}
	}

	var result ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeConnectivity, Message: "failed to decode model list", Cause: err}
	}

	if result.Models == nil {
		return []ModelInfo{}, nil
	}
	return result.Models, nil
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// IncrementCallback receives one non-empty content fragment per call,
// in the exact order the transport produced them.
type IncrementCallback func(fragment string)

// ChatStream issues a streaming chat request and delivers content
// fragments through onIncrement until the server signals done.
//
// The payload prepends a system entry derived from persona.SystemPrompt
// (only when present) to the supplied messages and attaches the
// persona's temperature under options when set. Returns nil once the
// stream completes; a cancelled context settles as ErrTypeCancelled
// with no further onIncrement calls.
func (c *Client) ChatStream(ctx context.Context, model string, messages []Message, persona *Persona, onIncrement IncrementCallback) error {
	if model == "" {
		model = c.config.DefaultModel
	}

	reqBody := ChatRequest{
		Model:    model,
		Messages: buildPayloadMessages(messages, persona),
		Stream:   true,
		Options:  buildOptions(persona),
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return &ClientError{Type: ErrTypeTransport, Message: "failed to marshal request", Cause: err}
	}

	return c.stream(ctx, "/api/chat", body, onIncrement)
}

// GenerateStream issues a streaming request against the /api/generate
// fallback endpoint with a single flattened prompt. Same cancellation
// and decoding contract as ChatStream; the decoder reads the top-level
// response/content field per record instead of the nested one.
func (c *Client) GenerateStream(ctx context.Context, model string, prompt string, persona *Persona, onIncrement IncrementCallback) error {
	if model == "" {
		model = c.config.DefaultModel
	}

	reqBody := GenerateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  true,
		Options: buildOptions(persona),
	}
	if persona != nil && persona.SystemPrompt != "" {
		reqBody.System = persona.SystemPrompt
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return &ClientError{Type: ErrTypeTransport, Message: "failed to marshal request", Cause: err}
	}

	return c.stream(ctx, "/api/generate", body, onIncrement)
}

// stream runs one request through the REQUEST_SENT -> STREAMING state
// transitions and maps failures onto the error taxonomy.
func (c *Client) stream(ctx context.Context, path string, body []byte, onIncrement IncrementCallback) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+path, bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &ClientError{Type: ErrTypeCancelled, Message: "request cancelled", Cause: ctx.Err()}
		}
		return &ClientError{Type: ErrTypeTransport, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var serverErr ServerError
		if err := json.NewDecoder(resp.Body).Decode(&serverErr); err == nil && serverErr.Error != "" {
			return &ClientError{Type: ErrTypeTransport, Message: serverErr.Error}
		}
		return &ClientError{Type: ErrTypeTransport, Message: "stream request failed: " + resp.Status}
	}

	reader := NewStreamReader(resp.Body, c.config.Logger)
	err = reader.Process(ctx, onIncrement)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return &ClientError{Type: ErrTypeCancelled, Message: "request cancelled", Cause: err}
	default:
		return &ClientError{Type: ErrTypeStream, Message: "stream interrupted before completion", Cause: err}
	}
}

// buildPayloadMessages maps messages to the wire shape, prepending the
// persona's system prompt when present.
func buildPayloadMessages(messages []Message, persona *Persona) []Message {
	payload := make([]Message, 0, len(messages)+1)
	if persona != nil && persona.SystemPrompt != "" {
		payload = append(payload, NewSystemMessage(persona.SystemPrompt))
	}
	for _, m := range messages {
		payload = append(payload, Message{Role: m.Role, Content: m.Content})
	}
	return payload
}

// buildOptions attaches generation options only when the persona sets
// a temperature.
func buildOptions(persona *Persona) *Options {
	if persona == nil || persona.Temperature == nil {
		return nil
	}
	return &Options{Temperature: persona.Temperature}
}
