// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"log"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"golang.org/x/time/rate"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/ollama"
	"github.com/jeranaias/parley/internal/persona"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving streaming response
	StateError                  // Showing an error
)

// pickerKind identifies which selection overlay is open.
type pickerKind int

const (
	pickerNone pickerKind = iota
	pickerModels
	pickerPersonas
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Configuration
	cfg *config.Config

	// Dimensions
	width  int
	height int

	// Conversation
	session *model.Session

	// Gateway client and in-flight request tracking
	client     *ollama.Client
	pendingMgr *pendingManager // Pointer to avoid copying mutex during Bubble Tea updates

	// Current streaming message
	streamingMsg *model.Message
	streamCh     chan tea.Msg
	streamStart  time.Time

	// Model discovery
	models    []ollama.ModelInfo
	modelName string
	// Discovery hits the server on demand; the limiter stops a held-down
	// refresh key from hammering it.
	discoveryLimiter *rate.Limiter

	// Personas
	store         *persona.Store
	personas      []*persona.Persona
	activePersona *persona.Persona
	// msgPersonas records, by assistant message id, the persona that
	// produced the reply. Labels use this so switching personas does not
	// retroactively relabel earlier replies.
	msgPersonas map[string]*persona.Persona

	// Selection overlay
	picker      pickerKind
	pickerIndex int

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Markdown rendering
	renderer *glamour.TermRenderer

	// Error state
	lastError error

	// Status
	statusMsg string

	logger *log.Logger
}

// New creates a new chat model.
func New(cfg *config.Config, client *ollama.Client, store *persona.Store, theme *styles.Theme, logger *log.Logger) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message, or /help for commands..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 30,
	}
	sp.Style = theme.Spinner

	var renderer *glamour.TermRenderer
	if cfg.UI.RenderMarkdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(theme.GlamourStyle()),
			glamour.WithWordWrap(76),
		)
		if err == nil {
			renderer = r
		} else if logger != nil {
			logger.Printf("markdown renderer unavailable: %v", err)
		}
	}

	m := Model{
		state:            StateReady,
		theme:            theme,
		cfg:              cfg,
		session:          model.NewSession(),
		client:           client,
		pendingMgr:       newPendingManager(),
		modelName:        cfg.Chat.DefaultModel,
		discoveryLimiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		store:            store,
		msgPersonas:      make(map[string]*persona.Persona),
		viewport:         vp,
		input:            ti,
		spinner:          sp,
		renderer:         renderer,
		logger:           logger,
	}

	if store != nil {
		if def, err := store.Default(); err == nil && def != nil {
			m.activePersona = def
		}
		if last, err := store.LastModel(); err == nil && last != "" {
			m.modelName = last
		}
	}

	return m
}

// Init starts the spinner and kicks off the initial model discovery.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadModelsCmd(),
		m.loadPersonasCmd(),
	)
}

// State returns the current chat state.
func (m Model) State() State {
	return m.state
}

// ModelName returns the currently selected model.
func (m Model) ModelName() string {
	return m.modelName
}

// ActivePersona returns the currently selected persona, or nil.
func (m Model) ActivePersona() *persona.Persona {
	return m.activePersona
}

// SetSize updates the layout dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	headerHeight := 1
	inputHeight := 3
	statusHeight := 1
	m.viewport.Width = width
	m.viewport.Height = height - headerHeight - inputHeight - statusHeight
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.input.Width = width - 4
}
