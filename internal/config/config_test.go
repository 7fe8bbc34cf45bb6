// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.URL != "http://127.0.0.1:11434" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSecs != 30 {
		t.Errorf("Server.TimeoutSecs = %d, want 30", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("UI.Theme = %q, want auto", cfg.UI.Theme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.URL != Default().Server.URL {
		t.Errorf("Server.URL = %q, want default", cfg.Server.URL)
	}
}

func TestLoadFromPath_PartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
url = "http://192.168.1.20:11434"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.URL != "http://192.168.1.20:11434" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want default 30", cfg.Server.TimeoutSecs)
	}
	if cfg.Chat.DefaultModel != Default().Chat.DefaultModel {
		t.Errorf("DefaultModel = %q, want default", cfg.Chat.DefaultModel)
	}
}

func TestLoadFromPath_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nbroken"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected decode error for malformed TOML")
	}
}

func TestValidate_BadURL(t *testing.T) {
	cfg := Default()
	cfg.Server.URL = "not a url"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "server.url") {
		t.Errorf("error = %v, want server.url mentioned", err)
	}
}

func TestValidate_TimeoutBounds(t *testing.T) {
	cfg := Default()
	cfg.Server.TimeoutSecs = 0
	if cfg.Validate() == nil {
		t.Error("timeout 0 should fail")
	}

	cfg.Server.TimeoutSecs = 301
	if cfg.Validate() == nil {
		t.Error("timeout 301 should fail")
	}

	cfg.Server.TimeoutSecs = 300
	if err := cfg.Validate(); err != nil {
		t.Errorf("timeout 300 should pass: %v", err)
	}
}

func TestValidate_Theme(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "solarized"
	if cfg.Validate() == nil {
		t.Error("unknown theme should fail")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PARLEY_URL", "http://10.0.0.5:11434")
	t.Setenv("PARLEY_MODEL", "llama3.2")
	t.Setenv("PARLEY_TIMEOUT_SECS", "60")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.URL != "http://10.0.0.5:11434" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Chat.DefaultModel != "llama3.2" {
		t.Errorf("DefaultModel = %q", cfg.Chat.DefaultModel)
	}
	if cfg.Server.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d", cfg.Server.TimeoutSecs)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Chat.DefaultModel = "mistral"
	cfg.UI.CompactMode = true
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}

	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if got.Chat.DefaultModel != "mistral" {
		t.Errorf("DefaultModel = %q, want mistral", got.Chat.DefaultModel)
	}
	if !got.UI.CompactMode {
		t.Error("CompactMode should survive round trip")
	}
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, nil, func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	cfg.Chat.DefaultModel = "llama3.2"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-reloaded:
		if got.Chat.DefaultModel != "llama3.2" {
			t.Errorf("DefaultModel = %q, want llama3.2", got.Chat.DefaultModel)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_KeepsPreviousOnMalformedWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, nil, func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[server\nbroken"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-reloaded:
		t.Errorf("malformed write should not deliver a config, got %+v", got)
	case <-time.After(time.Second):
		// No reload delivered: the previous config stays in effect.
	}
}
