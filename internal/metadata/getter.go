// Package metadata holds the shared HTTP transport for the book metadata
// sources (OpenLibrary, Google Books).
package metadata

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "Bookshelf/1.0"

	// maxErrorBody caps how much of a failed response is kept for logs.
	maxErrorBody = 512
)

// Getter performs JSON GET requests against metadata sources, optionally
// routed through a relay that takes the escaped target URL as a suffix.
type Getter struct {
	http   *http.Client
	relay  string
	logger *slog.Logger
}

// Option configures a Getter.
type Option func(*Getter)

// WithRelay routes every request through prefix + url.QueryEscape(target).
func WithRelay(prefix string) Option {
	return func(g *Getter) {
		g.relay = prefix
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Getter) {
		if c != nil {
			g.http = c
		}
	}
}

// NewGetter creates a Getter. A zero timeout uses the default of 10s.
func NewGetter(timeout time.Duration, logger *slog.Logger, opts ...Option) *Getter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Getter{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolve returns the URL actually requested for target.
func (g *Getter) Resolve(target string) string {
	if g.relay == "" {
		return target
	}
	return g.relay + url.QueryEscape(target)
}

// GetJSON fetches target and decodes the JSON body into v.
//
// 404 maps to ErrNotFound and 5xx to ErrUpstream; other non-200 statuses
// are returned as plain errors.
func (g *Getter) GetJSON(ctx context.Context, target string, v any) error {
	resolved := g.Resolve(target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	g.logger.Debug("metadata request", "url", resolved)

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.UnmarshalRead(resp.Body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}
