// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package employees fetches the employee list from the remote table API and
// normalizes its positional rows into records.
package employees

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"

	"github.com/olegiv/staffboard/internal/model"
)

const (
	// DefaultBaseURL is the table API the dashboard was built against.
	DefaultBaseURL = "https://backend.jotish.in/backend_dev"
	// DefaultPath is the table data endpoint relative to the base URL.
	DefaultPath = "/gettabledata.php"
	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 15 * time.Second

	// FallbackMessage is shown when the server supplies no message of its own.
	FallbackMessage = "Unable to load employee data. Please try again later."

	// maxBodySize caps how much of a response is read.
	maxBodySize = 10 << 20
)

// ErrFetch matches every error returned by FetchEmployees.
var ErrFetch = errors.New("employee fetch failed")

// FetchError is a user-facing fetch failure. Its message is safe to display;
// the underlying transport error is only logged.
type FetchError struct {
	Message string
}

func (e *FetchError) Error() string {
	return e.Message
}

// Is reports ErrFetch as the error class.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// Config holds the remote endpoint settings.
type Config struct {
	BaseURL  string
	Path     string
	Username string
	Password string
	Timeout  time.Duration
}

// DefaultConfig returns the endpoint settings used by the original dashboard.
func DefaultConfig() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		Path:     DefaultPath,
		Username: "test",
		Password: "123456",
		Timeout:  DefaultTimeout,
	}
}

// Client calls the table API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	body       []byte
	logger     *slog.Logger
	sanitizer  *bluemonday.Policy
}

// NewClient creates a client for the configured endpoint.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	body, _ := json.Marshal(map[string]string{
		"username": cfg.Username,
		"password": cfg.Password,
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   strings.TrimSuffix(cfg.BaseURL, "/") + "/" + strings.TrimPrefix(cfg.Path, "/"),
		body:       body,
		logger:     logger,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

// Endpoint returns the full URL the client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// FetchEmployees posts the static credentials and returns the normalized rows.
// A response without a row array yields an empty list, not an error.
// Transport failures and non-2xx responses return a *FetchError.
func (c *Client) FetchEmployees(ctx context.Context) ([]model.Employee, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(c.body))
	if err != nil {
		return nil, c.fail(fmt.Errorf("building request: %w", err), nil)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(fmt.Errorf("posting to %s: %w", c.endpoint, err), nil)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.fail(fmt.Errorf("reading response: %w", err), nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(fmt.Errorf("unexpected status %d", resp.StatusCode), body)
	}

	employees, ok := NormalizeRows(body)
	if !ok {
		c.logger.Warn("unexpected employee response shape",
			"endpoint", c.endpoint,
			"status", resp.StatusCode,
			"body", truncate(string(body), 200),
		)
		return employees, nil
	}

	c.logger.Debug("employees fetched",
		"count", len(employees),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return employees, nil
}

// fail logs the raw cause and converts it into a displayable FetchError.
// A JSON error body with a "message" field supplies the displayed text.
func (c *Client) fail(cause error, body []byte) *FetchError {
	c.logger.Error("fetch employees failed", "endpoint", c.endpoint, "error", cause)

	msg := ""
	if len(body) > 0 && gjson.ValidBytes(body) {
		if m := gjson.GetBytes(body, "message"); m.Type == gjson.String {
			msg = strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(m.Str)))
		}
	}
	if msg == "" {
		msg = FallbackMessage
	}
	return &FetchError{Message: msg}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
