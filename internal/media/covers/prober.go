// Package covers validates remote cover images and derives BlurHash
// placeholders from them.
package covers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"time"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// probeSize is enough to reach the header of every supported format.
	probeSize = 64 * 1024

	// maxCoverSize limits full downloads to prevent memory exhaustion.
	maxCoverSize = 10 * 1024 * 1024 // 10MB

	defaultTimeout = 15 * time.Second
)

// Sentinel errors for cover probing.
var (
	ErrEmptyURL    = errors.New("covers: empty URL")
	ErrUnavailable = errors.New("covers: image unavailable")
	ErrNotImage    = errors.New("covers: not a decodable image")
	ErrPlaceholder = errors.New("covers: placeholder image")
)

// Dimensions describes a probed image.
type Dimensions struct {
	Format string
	Width  int
	Height int
}

// Prober checks that a cover URL serves a real image.
type Prober struct {
	http   *http.Client
	logger *slog.Logger
}

// NewProber creates a prober. A nil client gets a default with a 15s timeout.
func NewProber(client *http.Client, logger *slog.Logger) *Prober {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Prober{http: client, logger: logger}
}

// Probe fetches the head of the image at url and decodes its header.
// Sources answer missing covers with a 1x1 image; that is ErrPlaceholder.
func (p *Prober) Probe(ctx context.Context, url string) (Dimensions, error) {
	data, err := p.fetch(ctx, url, probeSize, true)
	if err != nil {
		return Dimensions{}, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: %w", ErrNotImage, err)
	}

	dims := Dimensions{Format: format, Width: cfg.Width, Height: cfg.Height}
	if dims.Width <= 1 && dims.Height <= 1 {
		return dims, ErrPlaceholder
	}

	p.logger.Debug("probed cover",
		"url", url,
		"format", format,
		"width", dims.Width,
		"height", dims.Height,
	)
	return dims, nil
}

// fetch downloads at most limit bytes. With ranged set it asks the server
// for just that prefix; servers that ignore Range still get cut off.
func (p *Prober) fetch(ctx context.Context, url string, limit int64, ranged bool) ([]byte, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if ranged {
		req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", limit-1))
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	return data, nil
}
