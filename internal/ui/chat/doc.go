// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the full-screen chat view.
//
// The view is a Bubble Tea model that drives a conversation.Controller. A
// send is split across the event loop: Begin runs inside Update, Execute
// runs as a tea.Cmd on its own goroutine, and Finish runs when the
// completionMsg comes back. The input is disabled while a send is in flight.
//
// # Key Types
//
//   - Model: the Bubble Tea model
//   - KeyMap: key bindings, also used by the help footer
//   - ConfigReloadedMsg: live [ui] config changes sent by the config watcher
//
// # Usage
//
//	m := chat.New(ctrl, chat.Options{Theme: styles.NewTheme("auto")})
//	p := tea.NewProgram(m, tea.WithAltScreen())
//	_, err := p.Run()
package chat
