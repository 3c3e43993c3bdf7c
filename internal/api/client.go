// Package api is the client for the scribe backend REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every backend request.
const DefaultTimeout = 15 * time.Second

// ErrUnauthorized is returned for 401 responses.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a non-2xx backend response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend error (HTTP %d): %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// TokenSource yields the bearer token to attach, or "" for none.
type TokenSource interface {
	Token() (string, error)
}

// SessionStore persists the signed-in session.
type SessionStore interface {
	TokenSource
	SaveToken(token string) error
	SaveUser(data []byte) error
	ClearAll() error
}

// Client talks to the backend. Every request carries the stored bearer token
// when one is present.
type Client struct {
	baseURL string
	http    *http.Client
	session SessionStore
	logger  *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a backend client rooted at baseURL.
func New(baseURL string, session SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		session: session,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Request sends body (JSON-encoded when non-nil) to path and decodes the
// response into out. A *string out receives non-JSON bodies verbatim. 204
// responses leave out untouched. Non-2xx responses become *Error carrying the
// backend's message when it sent one.
func (c *Client) Request(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.session != nil {
		token, err := c.session.Token()
		if err != nil {
			c.logger.Warn("failed to read auth token", "error", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug("api request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{StatusCode: resp.StatusCode, Message: errorMessage(resp, data)}
	}

	return decode(resp, data, out)
}

func decode(resp *http.Response, data []byte, out any) error {
	if out == nil {
		return nil
	}

	if s, ok := out.(*string); ok && !isJSON(resp) {
		*s = string(data)
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func errorMessage(resp *http.Response, data []byte) string {
	var body struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}
	if isJSON(resp) && json.Unmarshal(data, &body) == nil {
		switch m := body.Message.(type) {
		case string:
			if m != "" {
				return m
			}
		case []any:
			parts := make([]string, 0, len(m))
			for _, p := range m {
				parts = append(parts, fmt.Sprint(p))
			}
			return strings.Join(parts, "; ")
		}
		if body.Error != "" {
			return body.Error
		}
	}

	if text := strings.TrimSpace(string(data)); text != "" && !isJSON(resp) {
		return text
	}

	return http.StatusText(resp.StatusCode)
}

func isJSON(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "json")
}
