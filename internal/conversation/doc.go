// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation runs the send cycle: it turns user input into a
// completion request, calls the endpoint and records the outcome.
//
// # Key Types
//
//   - Controller: owns the conversation, the send state and the last error
//   - Pending: a send that has started but not finished
//   - Completer: the endpoint client, satisfied by *cloud.Client
//
// # Send Cycle
//
// A send has three phases so an event loop can keep all state changes on
// its own goroutine while the network call runs elsewhere:
//
//	p, ok := ctrl.Begin(input)         // appends the user turn, goes in-flight
//	if ok {
//	    res := ctrl.Execute(ctx, p)    // network call, touches no state
//	    ctrl.Finish(p, res)            // appends the reply or records the error
//	}
//
// Send runs all three in order. Begin refuses blank input and refuses while
// another send is in flight; at most one request is ever outstanding.
//
// Settings are read once, in Begin. A settings save while a request is in
// flight is accepted and applies to the next send.
package conversation
