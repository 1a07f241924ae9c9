// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jeranaias/gptwrap/internal/cloud"
)

// =============================================================================
// RESPONSE FORMAT
// =============================================================================

// ResponseFormat is the output format requested from the model.
type ResponseFormat string

const (
	FormatText ResponseFormat = "text"
	FormatJSON ResponseFormat = "json"
)

// String returns the string representation of the format.
func (f ResponseFormat) String() string {
	return string(f)
}

// Valid reports whether f is one of the known formats.
func (f ResponseFormat) Valid() bool {
	return f == FormatText || f == FormatJSON
}

// ResponseFormats lists the selectable formats in display order.
var ResponseFormats = []ResponseFormat{FormatText, FormatJSON}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings is the full endpoint configuration used to build a request.
//
// ResponseFormat, Variables, Tools and PersistOnServer are accepted and stored
// but are not sent to the endpoint. They are reserved until the target
// endpoint's schema for them is confirmed.
type Settings struct {
	// Credential is the bearer token sent with every request.
	Credential string

	// Model is the endpoint model identifier.
	Model string

	ResponseFormat ResponseFormat

	Temperature     float64
	MaxOutputTokens int
	TopP            float64

	PersistOnServer bool
	Variables       string
	Tools           string

	// SystemInstruction is prepended as a system message when non-empty.
	SystemInstruction string
}

// Default returns the settings in effect at process start.
func Default() Settings {
	return Settings{
		Model:           "gpt-3.5-turbo",
		ResponseFormat:  FormatText,
		Temperature:     1.0,
		MaxOutputTokens: 2048,
		TopP:            1.0,
		PersistOnServer: true,
	}
}

// HasCredential reports whether a non-blank credential is set.
func (s Settings) HasCredential() bool {
	return strings.TrimSpace(s.Credential) != ""
}

// CredentialFingerprint returns a short SHA-256 fingerprint of the credential
// suitable for logs. It never exposes any part of the credential itself.
func (s Settings) CredentialFingerprint() string {
	return cloud.KeyFingerprint(s.Credential)
}

// String returns a one-line description with the credential redacted.
func (s Settings) String() string {
	return fmt.Sprintf(
		"model=%s format=%s temperature=%g max_tokens=%d top_p=%g store=%t system=%t credential=[REDACTED, fingerprint=%s]",
		s.Model, s.ResponseFormat, s.Temperature, s.MaxOutputTokens, s.TopP,
		s.PersistOnServer, s.SystemInstruction != "", s.CredentialFingerprint(),
	)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError reports why a candidate Settings value was rejected.
// Message is suitable for showing to the user as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrEmptyCredential is the message used when the credential is blank.
const ErrEmptyCredential = "API key cannot be empty."

// Validate checks the minimum required field. Nothing else is validated here.
func Validate(candidate Settings) error {
	if !candidate.HasCredential() {
		return &ValidationError{Field: "credential", Message: ErrEmptyCredential}
	}
	return nil
}

// =============================================================================
// STORE
// =============================================================================

// Store owns the current Settings.
type Store struct {
	mu      sync.RWMutex
	current Settings
}

// NewStore creates a store holding initial. initial is not validated, so a
// process may start without a credential.
func NewStore(initial Settings) *Store {
	return &Store{current: initial}
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save replaces the current settings with candidate. On validation failure
// the stored settings are left untouched and a *ValidationError is returned.
func (s *Store) Save(candidate Settings) error {
	if err := Validate(candidate); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = candidate
	s.mu.Unlock()
	return nil
}
