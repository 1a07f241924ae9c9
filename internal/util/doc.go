// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the gptwrap packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth: display-width aware truncation with ellipsis
//   - StringWidth: terminal column width of a string
//   - SingleLine: collapse whitespace runs and newlines to single spaces
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	banner := util.TruncateWidth(errMsg, width-4)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
