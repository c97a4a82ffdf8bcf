package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
)

// ErrInvalidURL is returned when a backend URL fails validation.
var ErrInvalidURL = errors.New("invalid URL")

// ValidateBackendURL requires an http or https URL with a host.
func ValidateBackendURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// Settings reads and writes user settings kept in the key-value store.
type Settings struct {
	KV tokens.KV
	// DefaultBackendURL is used when the store holds no backend URL.
	DefaultBackendURL string
}

// BackendURL returns the stored backend URL, falling back to the default.
func (s Settings) BackendURL(ctx context.Context) (string, error) {
	v, ok, err := s.KV.Get(ctx, tokens.KeyBackendURL)
	if err != nil {
		return "", fmt.Errorf("failed to read backend URL: %w", err)
	}
	if ok && strings.TrimSpace(v) != "" {
		return v, nil
	}
	return s.DefaultBackendURL, nil
}

// SetBackendURL validates and stores the backend URL.
func (s Settings) SetBackendURL(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if err := ValidateBackendURL(raw); err != nil {
		return err
	}
	if err := s.KV.Set(ctx, tokens.KeyBackendURL, raw); err != nil {
		return fmt.Errorf("failed to save backend URL: %w", err)
	}
	return nil
}
