// Package googlebooks is a client for the Google Books volumes search.
package googlebooks

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/metadata"
)

const (
	// DefaultBaseURL is the public Google Books API.
	DefaultBaseURL = "https://www.googleapis.com/books/v1"

	source        = "googlebooks"
	maxMaxResults = 40
)

// Volume is one search hit.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

// VolumeInfo is the subset of volume metadata the catalogue uses.
type VolumeInfo struct {
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	Description   string     `json:"description"`
	PublishedDate string     `json:"publishedDate"`
	Categories    []string   `json:"categories"`
	ImageLinks    ImageLinks `json:"imageLinks"`
	PageCount     int        `json:"pageCount"`
}

// ImageLinks holds the cover renditions of a volume.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// Thumbnail returns the thumbnail URL bumped to the larger zoom level.
func (v *Volume) Thumbnail() string {
	return strings.Replace(v.VolumeInfo.ImageLinks.Thumbnail, "zoom=1", "zoom=2", 1)
}

type volumesResponse struct {
	Items      []Volume `json:"items"`
	TotalItems int      `json:"totalItems"`
}

// Client queries Google Books through a shared metadata.Getter.
type Client struct {
	get     *metadata.Getter
	baseURL string
	logger  *slog.Logger
}

// New creates a client. An empty baseURL uses DefaultBaseURL.
func New(get *metadata.Getter, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		get:     get,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Search returns up to maxResults volumes for a free-text query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Volume, error) {
	query = strings.Join(strings.Fields(query), " ")
	if query == "" {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = 1
	}
	if maxResults > maxMaxResults {
		maxResults = maxMaxResults
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	target := c.baseURL + "/volumes?" + params.Encode()

	var resp volumesResponse
	if err := c.get.GetJSON(ctx, target, &resp); err != nil {
		return nil, metadata.WrapError(source, "search", target, err)
	}

	c.logger.Debug("google books search results",
		"query", query,
		"count", len(resp.Items),
	)
	return resp.Items, nil
}
