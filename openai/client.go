// Package openai is a client for the chat-completions API exposed through the
// host application's plugin proxy. It offers a single-shot call, a streaming
// call over the host's live channel transport, and an availability probe.
// Authentication, retries and request routing are the proxy's business, not
// this package's.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/llmkit/openai-plugin-client/internal/logger"
	"github.com/llmkit/openai-plugin-client/internal/transport"
	"github.com/llmkit/openai-plugin-client/live"
)

// PluginID is the identifier of the backend plugin that owns the proxy
// resources and live channels this client talks to.
const PluginID = "llm-app"

const (
	resourcesPrefix     = "/resources"
	chatCompletionsPath = "/openai/v1/chat/completions"
	settingsPath        = "/settings"
)

// Client talks to the chat-completions backend through the plugin proxy.
// Concurrent calls are independent; the only shared state is the probe's
// log-once latch.
type Client struct {
	baseURL    string
	httpClient transport.HTTPClient
	liveClient live.Client
	logger     *zerolog.Logger

	probeLogOnce sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc transport.HTTPClient) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLiveClient sets the publish/subscribe transport used by
// StreamChatCompletions. Without one, streaming calls fail.
func WithLiveClient(lc live.Client) Option {
	return func(c *Client) { c.liveClient = lc }
}

// WithLogger replaces the default logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client rooted at the proxy's base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: transport.NewHTTPClient(),
		logger:     logger.Get(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChatCompletions sends the request and returns the first choice's message
// content. Transport and decoding errors are propagated unchanged; there is
// no retry or local validation.
func (c *Client) ChatCompletions(ctx context.Context, req ChatCompletionsRequest) (string, error) {
	resp, err := c.ChatCompletionsRaw(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatCompletionsRaw sends the request and returns the full decoded response,
// for callers that need more than the first choice's content.
func (c *Client) ChatCompletionsRaw(ctx context.Context, req ChatCompletionsRequest) (*ChatCompletionsResponse, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	url := c.baseURL + resourcesPrefix + chatCompletionsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", requestID)

	c.logger.Debug().
		Str("request_id", requestID).
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Msg("Sending chat completions request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request execution error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: respBody}
	}

	var result ChatCompletionsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response body: %w", err)
	}

	return &result, nil
}
