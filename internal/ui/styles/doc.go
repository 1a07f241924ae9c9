// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the gptwrap TUI.

All colors use Lip Gloss AdaptiveColor so they follow the terminal
background. A Theme bundles the styles the chat view needs and records
whether a dark or light markdown style should be used for assistant turns.

# Color System (colors.go)

	Purple  - assistant turns, selections
	Cyan    - brand, user turns
	Emerald - success (copied, saved)
	Amber   - warnings
	Rose    - errors

# Theme System (theme.go)

	theme := styles.NewTheme("auto") // "dark", "light" or "auto"
	header := theme.Header.Render("GPT Wrapper")
	renderStyle := theme.MarkdownStyle() // "dark" or "light"
*/
package styles
