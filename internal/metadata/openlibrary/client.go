// Package openlibrary is a client for the OpenLibrary search, works, and
// editions endpoints.
package openlibrary

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata"
)

const (
	// DefaultBaseURL is the public OpenLibrary API.
	DefaultBaseURL = "https://openlibrary.org"
	// DefaultCoversURL is the public cover image host.
	DefaultCoversURL = "https://covers.openlibrary.org"

	source       = "openlibrary"
	defaultLimit = 5
	maxLimit     = 100
)

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Client queries OpenLibrary through a shared metadata.Getter.
type Client struct {
	get       *metadata.Getter
	baseURL   string
	coversURL string
	logger    *slog.Logger
}

// New creates a client. Empty URLs fall back to the public hosts.
func New(get *metadata.Getter, baseURL, coversURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if coversURL == "" {
		coversURL = DefaultCoversURL
	}
	return &Client{
		get:       get,
		baseURL:   strings.TrimRight(baseURL, "/"),
		coversURL: strings.TrimRight(coversURL, "/"),
		logger:    logger,
	}
}

// Search runs a free-text search (q=) and returns up to limit candidates.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	return c.search(ctx, "q", query, limit)
}

// SearchTitle searches on the title field only.
func (c *Client) SearchTitle(ctx context.Context, title string, limit int) ([]domain.Candidate, error) {
	return c.search(ctx, "title", title, limit)
}

func (c *Client) search(ctx context.Context, field, query string, limit int) ([]domain.Candidate, error) {
	cleaned := CleanQuery(query)
	if cleaned == "" {
		return nil, nil
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	params := url.Values{}
	params.Set(field, cleaned)
	params.Set("limit", strconv.Itoa(limit))
	target := c.baseURL + "/search.json?" + params.Encode()

	var resp searchResponse
	if err := c.get.GetJSON(ctx, target, &resp); err != nil {
		return nil, metadata.WrapError(source, "search", target, err)
	}

	c.logger.Debug("openlibrary search results",
		"field", field,
		"query", cleaned,
		"count", len(resp.Docs),
	)

	candidates := make([]domain.Candidate, 0, len(resp.Docs))
	for i := range resp.Docs {
		candidates = append(candidates, c.toCandidate(&resp.Docs[i]))
	}
	return candidates, nil
}

// Work fetches a work record by key ("/works/OL45883W" or "OL45883W").
func (c *Client) Work(ctx context.Context, key string) (*Work, error) {
	path, err := workPath(key)
	if err != nil {
		return nil, metadata.WrapError(source, "work", key, err)
	}
	target := c.baseURL + path + ".json"

	var work Work
	if err := c.get.GetJSON(ctx, target, &work); err != nil {
		return nil, metadata.WrapError(source, "work", target, err)
	}
	return &work, nil
}

// Edition fetches an edition record by ISBN.
func (c *Client) Edition(ctx context.Context, isbn string) (*Edition, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil, metadata.WrapError(source, "edition", isbn, metadata.ErrNotFound)
	}
	target := c.baseURL + "/isbn/" + url.PathEscape(isbn) + ".json"

	var edition Edition
	if err := c.get.GetJSON(ctx, target, &edition); err != nil {
		return nil, metadata.WrapError(source, "edition", target, err)
	}
	return &edition, nil
}

// CoverURL returns the image URL for a cover ID.
func (c *Client) CoverURL(id int64, size Size) string {
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", c.coversURL, id, size)
}

func (c *Client) toCandidate(doc *searchDoc) domain.Candidate {
	cand := domain.Candidate{
		Key:              doc.Key,
		Title:            doc.Title,
		ISBNs:            doc.ISBN,
		Subjects:         doc.Subject,
		CoverID:          doc.CoverI,
		FirstPublishYear: doc.FirstPublishYear,
		PagesMedian:      doc.NumberOfPagesMedian,
	}
	if len(doc.AuthorName) > 0 {
		cand.Author = doc.AuthorName[0]
	}
	if doc.CoverI > 0 {
		cand.ThumbnailURL = c.CoverURL(doc.CoverI, SizeMedium)
		cand.CoverURL = c.CoverURL(doc.CoverI, SizeLarge)
	}
	return cand
}

// CleanQuery drops punctuation and collapses whitespace, the form the
// search endpoint matches best.
func CleanQuery(q string) string {
	q = nonWordPattern.ReplaceAllString(q, "")
	q = whitespacePattern.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}

func workPath(key string) (string, error) {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return "", fmt.Errorf("empty work key: %w", metadata.ErrNotFound)
	case strings.HasPrefix(key, "/works/"):
		return key, nil
	case strings.HasPrefix(key, "/"):
		return "", fmt.Errorf("not a work key %q: %w", key, metadata.ErrNotFound)
	default:
		return "/works/" + key, nil
	}
}
