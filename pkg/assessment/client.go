// Package assessment wraps the remote assessment API behind a black-box
// request function keyed by method, path, and body. Callers fetch a schema,
// render it as a form, and post the extracted payload back through the same
// client.
package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgschema "github.com/goliatone/go-schemaform/pkg/schema"
)

// Requester is the minimal surface the orchestrator depends on.
type Requester interface {
	Do(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// APIError reports a non-2xx response from the remote API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("assessment: api returned status %d", e.Status)
}

const defaultKeyHeader = "X-Api-Key"

// Client talks to the assessment API over HTTP.
type Client struct {
	baseURL   string
	apiKey    string
	keyHeader string
	http      *http.Client
}

// Ensure the implementation satisfies the public interface.
var _ Requester = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithAPIKey attaches an API key to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithKeyHeader changes the header carrying the API key.
func WithKeyHeader(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.keyHeader = name
		}
	}
}

// NewClient creates a Client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("assessment: base URL is required")
	}
	client := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyHeader: defaultKeyHeader,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Do sends one request and returns the decoded body. Bodies are serialized as
// JSON; a *form.Record payload keeps its schema-declared field order.
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("assessment: encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return nil, fmt.Errorf("assessment: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(c.keyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assessment: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("assessment: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(payload)}
	}
	return payload, nil
}

// Schema fetches and parses the schema document published at path.
func (c *Client) Schema(ctx context.Context, path string) (*pkgschema.Schema, error) {
	raw, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	parsed, err := pkgschema.ParseDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("assessment: parse schema: %w", err)
	}
	return parsed, nil
}

// RunCalculation posts an extracted payload to the calculation endpoint and
// returns the raw result.
func (c *Client) RunCalculation(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, payload)
}
