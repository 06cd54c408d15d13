package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIError is the normalized shape every failed backend call resolves to.
type APIError struct {
	Message   string         `json:"message"`
	Status    int            `json:"status"`
	Code      string         `json:"code"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// Retryable reports whether the call may succeed on retry. Only network
// failures and 5xx responses qualify; 4xx responses never do.
func (e *APIError) Retryable() bool {
	return e.Status == 0 || e.Status >= 500
}

// Client wraps outbound HTTP with bearer-token attachment and exponential
// backoff retry on network/5xx errors.
type Client struct {
	httpClient *http.Client
	token      string
	maxRetries int
	baseDelay  time.Duration
}

type Option func(*Client)

// WithToken sets the bearer token attached to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithMaxRetries overrides the retry budget (retries after the first try).
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithBaseDelay overrides the initial backoff delay.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) { c.baseDelay = d }
}

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: 2,
		baseDelay:  250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON issues a GET and decodes the response body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.DoJSON(ctx, http.MethodGet, url, nil, out)
}

// PostJSON issues a POST with a JSON body and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	return c.DoJSON(ctx, http.MethodPost, url, body, out)
}

// DoJSON runs a request with retry and normalizes failures to *APIError.
func (c *Client) DoJSON(ctx context.Context, method, url string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &APIError{
				Message:   fmt.Sprintf("encode request body: %v", err),
				Code:      "ENCODE_ERROR",
				Timestamp: time.Now(),
			}
		}
	}

	var lastErr *APIError
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		apiErr := c.attempt(ctx, method, url, payload, out)
		if apiErr == nil {
			return nil
		}
		lastErr = apiErr
		if !apiErr.Retryable() {
			break
		}
	}

	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, url string, payload []byte, out any) *APIError {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &APIError{
			Message:   err.Error(),
			Code:      "REQUEST_ERROR",
			Timestamp: time.Now(),
		}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Status 0 marks a transport-level failure.
		return &APIError{
			Message:   err.Error(),
			Code:      "NETWORK_ERROR",
			Timestamp: time.Now(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return normalizeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{
				Message:   fmt.Sprintf("decode response: %v", err),
				Status:    resp.StatusCode,
				Code:      "DECODE_ERROR",
				Timestamp: time.Now(),
			}
		}
	}

	return nil
}

// normalizeError maps an HTTP error response onto the APIError envelope,
// preferring the server's own {message, code, details} fields when present.
func normalizeError(resp *http.Response) *APIError {
	apiErr := &APIError{
		Message:   http.StatusText(resp.StatusCode),
		Status:    resp.StatusCode,
		Code:      codeForStatus(resp.StatusCode),
		Timestamp: time.Now(),
	}

	var envelope struct {
		Message string         `json:"message"`
		Error   string         `json:"error"`
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	if body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); err == nil {
		if json.Unmarshal(body, &envelope) == nil {
			if envelope.Message != "" {
				apiErr.Message = envelope.Message
			} else if envelope.Error != "" {
				apiErr.Message = envelope.Error
			}
			if envelope.Code != "" {
				apiErr.Code = envelope.Code
			}
			apiErr.Details = envelope.Details
		}
	}

	return apiErr
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case status == http.StatusForbidden:
		return "FORBIDDEN"
	case status == http.StatusNotFound:
		return "NOT_FOUND"
	case status == http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case status >= 500:
		return "SERVER_ERROR"
	default:
		return "REQUEST_FAILED"
	}
}
