// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the client for an OpenAI-compatible chat
// completions endpoint.
//
// A Client issues exactly one POST per Complete call. There is no retry and no
// streaming: the caller gets the assistant text or a typed error.
//
// # Key Types
//
//   - Client: HTTP client for the completions endpoint
//   - ChatRequest: wire payload (model, messages, sampling parameters)
//   - RemoteError: the endpoint answered with a non-success status
//   - TransportError: the endpoint could not be reached or the body was not JSON
//
// # Usage
//
//	client := cloud.NewClient().WithTimeout(30 * time.Second)
//	text, err := client.Complete(ctx, cloud.ChatRequest{
//	    Model:    "gpt-3.5-turbo",
//	    Messages: []cloud.ChatMessage{cloud.NewUserMessage("Hello")},
//	}, apiKey)
//
// # Security
//
// The credential is sent only in the Authorization header. It is never logged;
// log lines carry a short SHA-256 fingerprint instead.
package cloud
