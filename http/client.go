package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Defaults for the retrying client.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryWait  = 1 * time.Second
)

// clientRequestIDHeader carries a generated ID per outgoing request so
// failures can be correlated with the vendor's own X-Request-Id.
const clientRequestIDHeader = "X-Client-Request-Id"

// Client wraps net/http with JSON encoding, a shared error taxonomy,
// and retry on 429/5xx honoring Retry-After.
type Client struct {
	client     *http.Client
	baseURL    string
	service    string
	maxRetries int
	retryWait  time.Duration

	// beforeRequest is invoked on every outgoing request, typically to
	// attach authentication headers.
	beforeRequest func(req *http.Request)

	// errorParser overrides default error-response parsing for vendors
	// with their own error payload shape.
	errorParser func(resp *http.Response, path string) error

	logger *slog.Logger
}

// ClientConfig configures a Client.
type ClientConfig struct {
	Client        *http.Client  // Underlying client (default: Timeout 30s)
	BaseURL       string        // API root, no trailing slash
	Service       string        // Integration name, used in errors
	MaxRetries    int           // Retry attempts on transient failures
	RetryWait     time.Duration // Initial backoff, doubled per attempt
	BeforeRequest func(req *http.Request)
	ErrorParser   func(resp *http.Response, path string) error
	Logger        *slog.Logger // Retry diagnostics (default: slog.Default)
}

// NewClient creates a retrying JSON client.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		client:        cfg.Client,
		baseURL:       cfg.BaseURL,
		service:       cfg.Service,
		maxRetries:    cfg.MaxRetries,
		retryWait:     cfg.RetryWait,
		beforeRequest: cfg.BeforeRequest,
		errorParser:   cfg.ErrorParser,
		logger:        cfg.Logger,
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.retryWait <= 0 {
		c.retryWait = DefaultRetryWait
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Get performs a GET request and decodes the JSON response into result.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request and decodes the JSON response into result.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs a PUT request and decodes the JSON response into result.
// A 204 response leaves result untouched.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do executes one logical request, retrying transient failures.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", c.service, err)
		}
	}

	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		if c.errorParser != nil {
			return c.errorParser(resp, path)
		}
		return c.parseError(resp, path)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", c.service, err)
	}

	return nil
}

// send issues the request, retrying on network errors, 429, and 5xx.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("create %s request: %w", c.service, err)
		}

		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if id, idErr := nanoid.New(); idErr == nil {
			req.Header.Set(clientRequestIDHeader, id)
		}

		if c.beforeRequest != nil {
			c.beforeRequest(req)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if attempt < c.maxRetries-1 {
				c.logger.Warn("request failed, retrying",
					"service", c.service, "method", method, "path", path,
					"attempt", attempt+1, "error", err)
				if waitErr := c.wait(ctx, c.backoff(nil, attempt)); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, fmt.Errorf("%s request failed: %w", c.service, err)
		}

		if !retryableStatus(resp.StatusCode) || attempt == c.maxRetries-1 {
			return resp, nil
		}

		wait := c.backoff(resp, attempt)
		c.logger.Warn("transient status, retrying",
			"service", c.service, "method", method, "path", path,
			"status", resp.StatusCode, "attempt", attempt+1, "wait", wait)
		_ = resp.Body.Close()
		lastErr = &APIError{
			Service:    c.service,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Endpoint:   path,
		}
		if waitErr := c.wait(ctx, wait); waitErr != nil {
			return nil, waitErr
		}
	}

	return nil, fmt.Errorf("%s: retries exhausted: %w", c.service, lastErr)
}

// wait sleeps for the given duration or until the context is canceled.
func (c *Client) wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// backoff returns how long to wait before the next attempt, preferring
// the Retry-After header over exponential backoff.
func (c *Client) backoff(resp *http.Response, attempt int) time.Duration {
	if resp != nil {
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil {
				return time.Duration(seconds) * time.Second
			}
		}
	}
	return c.retryWait * time.Duration(1<<attempt)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// parseError builds an APIError from an error response.
func (c *Client) parseError(resp *http.Response, path string) error {
	body, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{
		Service:    c.service,
		StatusCode: resp.StatusCode,
		Endpoint:   path,
		RequestID:  resp.Header.Get("X-Request-Id"),
	}

	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			apiErr.Message = errResp.Message
		} else if errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

// Service returns the integration name the client was configured with.
func (c *Client) Service() string {
	return c.service
}
