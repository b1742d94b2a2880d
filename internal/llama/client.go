// Package llama talks to a locally hosted llama.cpp-style inference server.
package llama

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

const contentPath = "choices.0.message.content"

// HTTPError is returned when the inference server answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("inference server returned status %d: %s", e.StatusCode, e.Body)
}

// ShapeError is returned when a 2xx response lacks choices[0].message.content.
// Body is the raw response, kept whole for diagnosis.
type ShapeError struct {
	Body string
}

func (e *ShapeError) Error() string {
	return "unexpected response: " + e.Body
}

var errNoSlots = errors.New("no slots reported")

// Client is a thin HTTP client for the inference server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for baseURL. timeout bounds every call, including
// the full generation latency of a chat completion.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: timeout,
		},
	}
}

// Complete posts payload to /v1/chat/completions and returns the message
// content of the first choice. It never retries.
func (c *Client) Complete(ctx context.Context, payload ChatPayload) (string, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	status, data, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call inference server: %w", err)
	}
	slog.Debug("chat completion finished", "status", status, "bytes", len(data), "elapsed", time.Since(start))

	if status < 200 || status > 299 {
		return "", &HTTPError{StatusCode: status, Body: string(data)}
	}

	content := gjson.GetBytes(data, contentPath)
	if !gjson.ValidBytes(data) || content.Type != gjson.String {
		return "", &ShapeError{Body: string(data)}
	}
	return content.String(), nil
}

// Slots returns the state label of every slot reported by /slots. A slot
// object without a state is reported as "?"; a non-object entry is a
// ShapeError.
func (c *Client) Slots(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/slots", nil)
	if err != nil {
		return nil, err
	}
	status, data, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &HTTPError{StatusCode: status, Body: string(data)}
	}
	if !gjson.ValidBytes(data) {
		return nil, &ShapeError{Body: string(data)}
	}

	slots := gjson.GetBytes(data, "slots")
	if !slots.IsArray() {
		return nil, &ShapeError{Body: string(data)}
	}

	var states []string
	malformed := false
	slots.ForEach(func(_, slot gjson.Result) bool {
		if !slot.IsObject() {
			malformed = true
			return false
		}
		state := slot.Get("state")
		if state.Exists() {
			states = append(states, state.String())
		} else {
			states = append(states, "?")
		}
		return true
	})
	if malformed {
		return nil, &ShapeError{Body: string(data)}
	}
	if len(states) == 0 {
		return nil, errNoSlots
	}
	return states, nil
}

// Models calls /v1/models and returns the HTTP status code.
func (c *Client) Models(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return 0, err
	}
	status, _, err := c.do(req)
	return status, err
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, data, nil
}
