// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the gptwrap command line.
//
// The root command runs the full-screen chat view. Subcommands:
//
//	gptwrap chat                 line-mode chat with history and slash commands
//	gptwrap config show          print the effective config, API key redacted
//	gptwrap config path          print the config file locations
//	gptwrap config init          write a config template
//	gptwrap config get <key>     print one value, e.g. defaults.model
//	gptwrap config set <k> <v>   change one value in the config file
//	gptwrap config keys          list every config key
//	gptwrap version              print build information
//
// Persistent flags (--config, --log-level, --model, --base-url) override the
// config file and environment for the current run only.
package cli
