// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for gptwrap.
//
// Supports both TOML and YAML configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - EndpointConfig: completions endpoint URL, name, credential and timeout
//   - DefaultsConfig: the settings in effect at startup
//   - LogConfig: log level and rotating log file
//   - UIConfig: theme and word wrap, reloadable while the TUI runs
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (GPTWRAP_*, OPENAI_API_KEY)
//   - ~/.gptwrap/config.toml
//   - ~/.gptwrap/config.yaml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	store := settings.NewStore(cfg.InitialSettings())
//
// The config file is only read. Settings changed at runtime are never written
// back; SaveTOML exists for "gptwrap config init".
package config
