// Package client talks to the scan ingestion API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scanbatch-rest-api/internal/model"
)

// Error is a non-success response from the API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("scan api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("scan api: status %d: %s", e.StatusCode, e.Message)
}

// Client calls the ingestion API rooted at a single base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for baseURL. A zero timeout means no timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Create stores one scan via POST /scan.
func (c *Client) Create(ctx context.Context, barcode, level string) (*model.Scan, error) {
	body, err := json.Marshal(model.CreateScanInput{Barcode: barcode, Level: level})
	if err != nil {
		return nil, fmt.Errorf("failed to encode scan: %w", err)
	}

	var resp model.CreateScanResponse
	if err := c.do(ctx, http.MethodPost, "/scan", body, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return &resp.Scan, nil
}

// List fetches the scan history via GET /scans, newest first.
func (c *Client) List(ctx context.Context) ([]model.Scan, error) {
	var scans []model.Scan
	if err := c.do(ctx, http.MethodGet, "/scans", nil, http.StatusOK, &scans); err != nil {
		return nil, err
	}
	return scans, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, want int, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != want {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errBody) == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
