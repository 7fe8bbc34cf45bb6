// parley - a single-screen terminal chat client for a locally hosted
// LLM server.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/ollama"
	"github.com/jeranaias/parley/internal/persona"
	"github.com/jeranaias/parley/internal/ui"
	"github.com/jeranaias/parley/internal/ui/chat"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--version", "-v":
			fmt.Printf("parley %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "--help", "-h":
			printUsage()
			return
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "parley is an interactive terminal application; run it in a TTY")
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`parley - terminal chat for a local LLM server

Usage:
  parley             start the chat UI
  parley --version   print version information

Configuration lives in ~/.parley/config.toml; see the generated file
for the available settings. In the UI type /help for commands.`)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	logger, logFile, err := openLogger(dir)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger.Printf("parley %s starting", Version)

	store, err := persona.Open(filepath.Join(dir, "parley.db"))
	if err != nil {
		return fmt.Errorf("could not open persona store: %w", err)
	}
	defer store.Close()

	if err := chat.SeedDefaultPersonas(store); err != nil {
		logger.Printf("could not seed personas: %v", err)
	}

	// A stored server URL wins over the config default so the UI can
	// repoint the client without editing the file.
	serverURL := cfg.Server.URL
	if stored, err := store.ServerURL(); err == nil && stored != "" {
		serverURL = stored
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      serverURL,
		Timeout:      time.Duration(cfg.Server.TimeoutSecs) * time.Second,
		DefaultModel: cfg.Chat.DefaultModel,
		Logger:       logger,
	})

	theme := styles.NewTheme(cfg.UI.Theme)
	app := ui.NewApp(chat.New(cfg, client, store, theme, logger))

	p := tea.NewProgram(app, tea.WithAltScreen())

	// Live config reload: deliver changed files into the running UI.
	configPath, err := config.ConfigPath()
	if err == nil {
		watcher, werr := config.NewWatcher(configPath, logger, func(next *config.Config) {
			p.Send(chat.ConfigReloadedMsg{Config: next})
		})
		if werr != nil {
			logger.Printf("config watcher unavailable: %v", werr)
		} else {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui error: %w", err)
	}
	logger.Printf("parley exiting")
	return nil
}

// openLogger sends debug output to ~/.parley/debug.log so it never
// corrupts the alternate screen.
func openLogger(dir string) (*log.Logger, *os.File, error) {
	path := filepath.Join(dir, "debug.log")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open log file: %w", err)
	}
	return log.New(f, "", log.LstdFlags), f, nil
}
