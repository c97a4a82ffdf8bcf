package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

var (
	// ErrNoBackendURL is returned by Send when no endpoint is configured.
	ErrNoBackendURL = errors.New("no backend URL configured")
	// ErrBackendRejected wraps any non-2xx reply from the backend.
	ErrBackendRejected = errors.New("backend rejected bookmarks")
)

// maxErrorBody bounds how much of a failed reply is kept for the status line.
const maxErrorBody = 4 << 10

// Client posts reshaped records to the user's ingestion endpoint.
// A failed send is reported once and never retried.
type Client struct {
	HTTP *http.Client
}

// NewClient returns a Client using hc, or http.DefaultClient when hc is nil.
func NewClient(hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{HTTP: hc}
}

// Send POSTs records as a JSON array to endpoint with an optional bearer token.
func (c *Client) Send(ctx context.Context, endpoint, bearer string, records []Record) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ErrNoBackendURL
	}
	if records == nil {
		records = []Record{}
	}
	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("invalid backend URL: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s - %s", ErrBackendRejected, resp.Status, strings.TrimSpace(string(data)))
	}

	log.Printf("Sent %d bookmarks to %s", len(records), endpoint)
	return nil
}
