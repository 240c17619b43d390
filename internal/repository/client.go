// Package repository talks to the Opendatasoft portal. It implements the two
// incompatible query dialects (Explore v2.1 and Records v1) behind the common
// port.Dialect interface, plus the shared HTTP/JSON plumbing.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
)

const userAgent = "boamp-search/1.0"

// Client is the shared HTTP client for all provider endpoints. It classifies
// failures per the error taxonomy: transport errors are wrapped and surfaced
// verbatim, non-2xx statuses become *port.ProviderError.
type Client struct {
	BaseURL string
	Dataset string
	APIKey  string

	httpClient *http.Client
}

// NewClient builds a provider client. A zero timeout keeps net/http defaults.
func NewClient(baseURL, dataset, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    baseURL,
		Dataset:    dataset,
		APIKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetJSON performs a GET against a fully built URL and decodes the JSON body
// into out.
func (c *Client) GetJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &port.ProviderError{StatusCode: resp.StatusCode, URL: url}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}
