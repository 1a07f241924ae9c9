// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis is appended to truncated strings.
const Ellipsis = "..."

// TruncateWidth truncates s to at most maxWidth terminal columns, appending
// an ellipsis when anything was cut. Wide characters count as two columns.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(Ellipsis) {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, Ellipsis)
}

// StringWidth returns the display width of a string.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// PadRight pads s with spaces to width columns.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// SingleLine collapses every run of whitespace, newlines included, to a
// single space and trims the ends.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
