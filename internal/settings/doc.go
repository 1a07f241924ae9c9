// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings holds the completion endpoint configuration a user edits at
// runtime: the bearer credential, the model, sampling parameters and the
// optional system instruction.
//
// # Key Types
//
//   - Settings: a plain value describing one complete configuration
//   - Store: the single owner of the current Settings; Get returns a copy,
//     Save validates and replaces atomically
//   - Editor: an in-progress edit (the settings dialog) that can be cancelled
//     without touching the Store
//   - ValidationError: returned when a candidate cannot be saved
//
// # Usage
//
//	store := settings.NewStore(settings.Default())
//	candidate := store.Get()
//	candidate.Credential = "sk-..."
//	if err := store.Save(candidate); err != nil {
//	    // err is a *settings.ValidationError
//	}
//
// Only the credential is validated. Numeric parameters are passed through as
// entered; the remote endpoint decides what it accepts.
package settings
