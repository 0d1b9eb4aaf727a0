// Package upstream implements the client side of the gateway: a streaming
// chat call to the LLM backend with typed failure classification, and a
// short-timeout health probe.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/llm"
)

const (
	// chatTimeout bounds the whole chat call, connect through last body byte.
	chatTimeout = 120 * time.Second
	// healthTimeout bounds the liveness probe.
	healthTimeout = 5 * time.Second
	// maxErrorBody caps how much of a backend error response is surfaced.
	maxErrorBody = 8 * 1024
)

// Client talks to the LLM backend. It is safe for concurrent use; each call
// gets its own connection and response stream.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	healthClient *http.Client
	logger       *zap.Logger
}

// New creates a backend client for the given base URL, authenticating with
// apiKey as a bearer credential.
func New(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: chatTimeout,
		},
		healthClient: &http.Client{
			Timeout: healthTimeout,
		},
		logger: logger,
	}
}

// StreamChat sends a streaming chat request and returns the backend's line
// stream. The payload is built from extra first, then messages, stream and
// model, so reserved fields always win over metadata collisions. Failures
// before the stream opens are returned as *Error.
//
// The returned Stream holds the response body open; the caller must Close it.
func (c *Client) StreamChat(ctx context.Context, messages []llm.Message, model string, extra map[string]any) (*Stream, error) {
	payload := make(map[string]any, len(extra)+3)
	for k, v := range extra {
		payload[k] = v
	}
	payload["messages"] = messages
	payload["stream"] = true
	if model != "" {
		payload["model"] = model
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("dispatching chat request",
		zap.String("url", c.baseURL+"/v1/chat"),
		zap.Int("message_count", len(messages)),
		zap.Int("body_size", len(body)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		resp.Body.Close()
		return nil, &Error{
			Kind:    KindAuthFailed,
			Message: "authentication failed with llm service",
		}
	case resp.StatusCode != http.StatusOK:
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &Error{
			Kind:    KindBackendError,
			Message: fmt.Sprintf("llm service error: %s", errText),
		}
	}

	return NewStream(resp.Body), nil
}

// CheckHealth reports whether the backend's liveness endpoint answers 200
// within the probe timeout. Failures are never propagated.
func (c *Client) CheckHealth(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.healthClient.Do(req)
	if err != nil {
		c.logger.Debug("backend health probe failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// classifyTransportError maps an http.Client failure to a typed Error:
// deadline expiry becomes KindTimeout, everything else KindUnreachable.
func classifyTransportError(err error) *Error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{
			Kind:    KindTimeout,
			Message: "llm service request timed out",
			cause:   err,
		}
	}
	return &Error{
		Kind:    KindUnreachable,
		Message: "failed to connect to llm service",
		cause:   err,
	}
}
