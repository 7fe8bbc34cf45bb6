// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package persona manages reusable chat presets and persisted settings.
//
// A Persona bundles a name, system prompt, sampling temperature, and a
// display color. The Store persists personas and small app settings
// (server URL, last-selected model) in a single local bbolt file with
// JSON values.
//
// Key Types:
//   - Persona: a named preset, validated at the store boundary
//   - Store: bbolt-backed CRUD plus the settings key space
//
// Invariants:
//   - At most one persona is flagged as default; Save and SetDefault
//     clear the flag elsewhere in the same transaction.
//   - A missing settings key means "use the documented default" and is
//     never an error.
package persona
