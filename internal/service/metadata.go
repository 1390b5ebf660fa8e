package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/enrich"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata/openlibrary"
	"github.com/bookshelfapp/bookshelf-server/internal/summary"
)

// MaxLookupLimit caps direct candidate searches.
const MaxLookupLimit = 20

// MetadataService exposes the enrichment pipeline pieces directly.
type MetadataService struct {
	openLibrary *openlibrary.Client
	fetcher     *enrich.Fetcher
	logger      *slog.Logger
}

// NewMetadataService creates a new metadata service.
func NewMetadataService(ol *openlibrary.Client, fetcher *enrich.Fetcher, logger *slog.Logger) *MetadataService {
	return &MetadataService{
		openLibrary: ol,
		fetcher:     fetcher,
		logger:      logger,
	}
}

// Search implements searchbox.Searcher.
func (s *MetadataService) Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	return s.openLibrary.Search(ctx, query, limit)
}

// Lookup runs a direct, non-debounced candidate search.
func (s *MetadataService) Lookup(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domainerrors.Validation("query is required")
	}
	if limit <= 0 {
		limit = 5
	}
	limit = min(limit, MaxLookupLimit)

	candidates, err := s.openLibrary.Search(ctx, query, limit)
	if err != nil {
		return nil, domainerrors.Upstream("book lookup failed", err)
	}
	if candidates == nil {
		candidates = []domain.Candidate{}
	}
	return candidates, nil
}

// Enrich implements searchbox.Enricher.
func (s *MetadataService) Enrich(ctx context.Context, c domain.Candidate) (domain.Book, enrich.Trace) {
	return s.fetcher.Enrich(ctx, c)
}

// CoverResult is the outcome of the cover chain.
type CoverResult struct {
	CoverURL string           `json:"cover_url"`
	BlurHash string           `json:"blurhash,omitempty"`
	Attempts []enrich.Attempt `json:"attempts"`
	Found    bool             `json:"found"`
}

// FindCover runs the cover chain for a title and author.
func (s *MetadataService) FindCover(ctx context.Context, title, author string) (*CoverResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domainerrors.Validation("title is required")
	}

	url, attempts := s.fetcher.FetchCover(ctx, title, strings.TrimSpace(author))
	return &CoverResult{
		CoverURL: url,
		BlurHash: s.fetcher.CoverBlurHash(ctx, url),
		Attempts: attempts,
		Found:    url != "",
	}, nil
}

// Classify maps subject headings to a genre label.
func (s *MetadataService) Classify(subjects []string) genre.Label {
	label := genre.Classify(subjects)
	return genre.Label{Name: label, Slug: genre.Slugify(label)}
}

// Genres returns every known genre label.
func (s *MetadataService) Genres() []genre.Label {
	return genre.Labels()
}

// SummaryResult is the outcome of summarizing a description.
type SummaryResult struct {
	Brief    string `json:"brief"`
	Markdown string `json:"markdown,omitempty"`
	Fallback bool   `json:"fallback"`
}

// Summarize shortens a description. When nothing usable remains, the brief
// is synthesized from the publish year, subjects, and genre.
func (s *MetadataService) Summarize(text string, firstPublishYear int, subjects []string) SummaryResult {
	brief := summary.Summarize(text)
	if brief != "" {
		return SummaryResult{Brief: brief, Markdown: summary.Markdown(text)}
	}
	return SummaryResult{
		Brief:    summary.Fallback(firstPublishYear, subjects, genre.Classify(subjects)),
		Fallback: true,
	}
}

