// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Configuration constants for the completions endpoint.
const (
	// DefaultBaseURL is the base URL of the OpenAI API.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultEndpointName is used in error messages.
	DefaultEndpointName = "OpenAI API"

	// CompletionsPath is appended to the base URL.
	CompletionsPath = "/chat/completions"

	// DefaultTimeout is the default timeout for a completion request.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// FallbackContent is returned when a successful response carries no text.
	FallbackContent = "No response."
)

// DefaultUserAgent is sent unless WithUserAgent overrides it.
var DefaultUserAgent = "gptwrap/dev"

// sharedTransport pools connections across Clients.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        10,
	MaxIdleConnsPerHost: 2,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// Client performs chat completion requests. A Client holds no per-request
// state and is safe for concurrent use.
type Client struct {
	baseURL      string
	endpointName string
	userAgent    string
	httpClient   *http.Client
}

// NewClient creates a client for DefaultBaseURL with DefaultTimeout.
func NewClient() *Client {
	return &Client{
		baseURL:      DefaultBaseURL,
		endpointName: DefaultEndpointName,
		userAgent:    DefaultUserAgent,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: sharedTransport,
		},
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	if url != "" {
		c.baseURL = strings.TrimRight(url, "/")
	}
	return c
}

// WithEndpointName sets the name used in error messages.
func (c *Client) WithEndpointName(name string) *Client {
	if name != "" {
		c.endpointName = name
	}
	return c
}

// WithTimeout sets the overall request timeout. Zero disables it, leaving
// the caller's context as the only bound.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout >= 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithUserAgent sets the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EndpointName returns the name used in error messages.
func (c *Client) EndpointName() string {
	return c.endpointName
}

// Timeout returns the HTTP client timeout.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// KeyFingerprint returns the first 8 hex chars of the SHA-256 of key.
func KeyFingerprint(key string) string {
	if key == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:4])
}

// =============================================================================
// COMPLETION
// =============================================================================

// Complete sends req with credential as the bearer token and returns the
// assistant text.
//
// A non-2xx status returns *RemoteError. A connection failure, a cancelled
// or expired ctx, or a body that is not JSON returns *TransportError. A JSON
// body without usable content returns FallbackContent and no error.
func (c *Client) Complete(ctx context.Context, req ChatRequest, credential string) (string, error) {
	url := c.baseURL + CompletionsPath

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return "", c.transportError(errors.Wrap(err, "failed to marshal request"))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", c.transportError(errors.Wrap(err, "failed to create request"))
	}
	c.setHeaders(httpReq, credential)

	logger := log.With().
		Str("endpoint", c.endpointName).
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Str("key", KeyFingerprint(credential)).
		Logger()
	logger.Debug().Str("method", httpReq.Method).Str("path", httpReq.URL.Path).Msg("completion request")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Debug().Err(err).Dur("duration", time.Since(start)).Msg("completion transport failure")
		return "", c.transportError(err)
	}
	defer resp.Body.Close()

	logger.Debug().Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("completion response")

	// The status decides the error kind; the body is only a detail.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := readResponse(resp)
		return "", &RemoteError{
			Endpoint:   c.endpointName,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	body, err := readResponse(resp)
	if err != nil {
		return "", c.transportError(err)
	}

	content, usage, err := parseContent(body)
	if err != nil {
		return "", c.transportError(err)
	}
	if usage != nil {
		logger.Debug().
			Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Msg("completion usage")
	}
	return content, nil
}

func (c *Client) setHeaders(req *http.Request, credential string) {
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
}

func (c *Client) transportError(err error) *TransportError {
	return &TransportError{Endpoint: c.endpointName, Err: err}
}

// readResponse reads the response body with size limits to prevent memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

type usage struct {
	PromptTokens     int
	CompletionTokens int
}

// parseContent extracts the first choice's content. Only a body that is not
// JSON at all is an error; any other shape degrades to FallbackContent.
func parseContent(body []byte) (string, *usage, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", nil, errors.Wrap(err, "failed to parse response")
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return FallbackContent, nil, nil
	}
	return chatResp.GetContent(), &usage{
		PromptTokens:     chatResp.Usage.PromptTokens,
		CompletionTokens: chatResp.Usage.CompletionTokens,
	}, nil
}
