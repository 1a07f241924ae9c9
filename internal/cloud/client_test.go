// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{
	"id": "chatcmpl-1",
	"model": "gpt-3.5-turbo",
	"choices": [{
		"message": {"role": "assistant", "content": "Hello!"},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
}`

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testRequest() ChatRequest {
	return ChatRequest{
		Model:       "gpt-3.5-turbo",
		Messages:    []ChatMessage{NewUserMessage("hi")},
		Temperature: 1.0,
		MaxTokens:   2048,
		TopP:        1.0,
	}
}

// =============================================================================
// SUCCESS PATH
// =============================================================================

func TestComplete_Success(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, okBody)
	client := NewClient().WithBaseURL(srv.URL)

	text, err := client.Complete(context.Background(), testRequest(), "sk-test")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", text)
	assert.Equal(t, int32(1), calls.Load())
}

func TestComplete_WireFormat(t *testing.T) {
	var (
		gotMethod, gotPath, gotAuth, gotType, gotUA string
		gotBody                                      map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotUA = r.Header.Get("User-Agent")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	req := testRequest()
	req.Messages = []ChatMessage{
		NewSystemMessage("be terse"),
		NewUserMessage("q1"),
		NewAssistantMessage("a1"),
		NewUserMessage("q2"),
	}
	req.Temperature = 0

	client := NewClient().WithBaseURL(srv.URL + "/").WithUserAgent("gptwrap/test")
	_, err := client.Complete(context.Background(), req, "sk-secret")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-secret", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "gptwrap/test", gotUA)

	assert.Equal(t, "gpt-3.5-turbo", gotBody["model"])
	assert.Equal(t, 0.0, gotBody["temperature"], "zero temperature must still be sent")
	assert.Equal(t, 2048.0, gotBody["max_tokens"])
	assert.Equal(t, 1.0, gotBody["top_p"])
	assert.Len(t, gotBody, 5)

	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 4)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "be terse", first["content"])
}

// =============================================================================
// FALLBACK
// =============================================================================

func TestComplete_Fallback(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no choices field", `{"id":"x"}`},
		{"empty choices", `{"choices":[]}`},
		{"empty content", `{"choices":[{"message":{"role":"assistant","content":""}}]}`},
		{"null content", `{"choices":[{"message":{"role":"assistant","content":null}}]}`},
		{"non-string content", `{"choices":[{"message":{"content":42}}]}`},
		{"choices wrong type", `{"choices":"nope"}`},
		{"json array", `[]`},
		{"json null", `null`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, http.StatusOK, tc.body)
			text, err := NewClient().WithBaseURL(srv.URL).Complete(context.Background(), testRequest(), "sk")
			require.NoError(t, err)
			assert.Equal(t, "No response.", text)
		})
	}
}

// =============================================================================
// ERROR PATHS
// =============================================================================

func TestComplete_RemoteError(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusUnauthorized, "OpenAI API error: 401"},
		{http.StatusTooManyRequests, "OpenAI API error: 429"},
		{http.StatusInternalServerError, "OpenAI API error: 500"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			srv, calls := newTestServer(t, tc.status, `{"error":{"message":"nope"}}`)
			text, err := NewClient().WithBaseURL(srv.URL).Complete(context.Background(), testRequest(), "sk-bad")

			assert.Empty(t, text)
			var remote *RemoteError
			require.True(t, errors.As(err, &remote))
			assert.Equal(t, tc.status, remote.StatusCode)
			assert.Equal(t, tc.want, err.Error())
			assert.Contains(t, remote.Body, "nope")
			assert.Equal(t, int32(1), calls.Load(), "no retry")
		})
	}
}

func TestComplete_EndpointName(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadGateway, "")
	_, err := NewClient().WithBaseURL(srv.URL).WithEndpointName("Local proxy").
		Complete(context.Background(), testRequest(), "sk")
	require.Error(t, err)
	assert.Equal(t, "Local proxy error: 502", err.Error())
}

func TestComplete_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `<html>gateway</html>`)
	_, err := NewClient().WithBaseURL(srv.URL).Complete(context.Background(), testRequest(), "sk")

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestComplete_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient().WithBaseURL(url).Complete(context.Background(), testRequest(), "sk")
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.NotEmpty(t, err.Error())
}

func TestComplete_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewClient().WithBaseURL(srv.URL).Complete(ctx, testRequest(), "sk")
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestComplete_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient().WithBaseURL(srv.URL).WithTimeout(30 * time.Millisecond)
	_, err := client.Complete(context.Background(), testRequest(), "sk")
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
}

func TestComplete_ResponseTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", MaxResponseSize+10)))
	}))
	defer srv.Close()

	_, err := NewClient().WithBaseURL(srv.URL).Complete(context.Background(), testRequest(), "sk")
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Contains(t, err.Error(), "maximum size")
}

func TestComplete_RemoteErrorWithOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(strings.Repeat("a", MaxResponseSize+10)))
	}))
	defer srv.Close()

	_, err := NewClient().WithBaseURL(srv.URL).Complete(context.Background(), testRequest(), "sk")
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusServiceUnavailable, remote.StatusCode)
	assert.Equal(t, "OpenAI API error: 503", err.Error())
}

func TestTransportError_EmptyMessage(t *testing.T) {
	err := &TransportError{Endpoint: "OpenAI API"}
	assert.Equal(t, "Failed to get response from OpenAI API.", err.Error())
}

// =============================================================================
// CONFIGURATION
// =============================================================================

func TestClientBuilders(t *testing.T) {
	c := NewClient()
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultEndpointName, c.EndpointName())
	assert.Equal(t, DefaultTimeout, c.Timeout())

	c.WithBaseURL("http://localhost:8080/v1/").WithTimeout(0).WithEndpointName("")
	assert.Equal(t, "http://localhost:8080/v1", c.BaseURL())
	assert.Equal(t, time.Duration(0), c.Timeout())
	assert.Equal(t, DefaultEndpointName, c.EndpointName())
}

func TestKeyFingerprint(t *testing.T) {
	assert.Equal(t, "none", KeyFingerprint(""))
	fp := KeyFingerprint("sk-abc")
	assert.Len(t, fp, 8)
	assert.Equal(t, fp, KeyFingerprint("sk-abc"))
	assert.NotEqual(t, fp, KeyFingerprint("sk-abd"))
}
