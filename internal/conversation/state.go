// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

// SendState is the controller's send state.
type SendState int32

const (
	StateIdle SendState = iota
	StateInFlight
)

// String returns the state name.
func (s SendState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInFlight:
		return "in-flight"
	default:
		return "unknown"
	}
}
