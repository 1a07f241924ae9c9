// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import "fmt"

// RemoteError is returned when the endpoint answers with a non-2xx status.
type RemoteError struct {
	// Endpoint is the display name used in the message, e.g. "OpenAI API".
	Endpoint   string
	StatusCode int

	// Body is the raw response body, kept for logs. It is not part of Error().
	Body string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s error: %d", e.Endpoint, e.StatusCode)
}

// TransportError is returned when no usable response was received: the
// connection failed, the context ended, or the body was not valid JSON.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return fmt.Sprintf("Failed to get response from %s.", e.Endpoint)
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
