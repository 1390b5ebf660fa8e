// Package service provides the business logic of the catalogue: library
// operations, metadata lookups, search sessions, and preferences.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/enrich"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
	"github.com/bookshelfapp/bookshelf-server/internal/search"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

// BookService orchestrates catalogue operations.
type BookService struct {
	library   *store.Library
	index     *search.SearchIndex
	fetcher   *enrich.Fetcher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(library *store.Library, index *search.SearchIndex, fetcher *enrich.Fetcher, logger *slog.Logger) *BookService {
	return &BookService{
		library:   library,
		index:     index,
		fetcher:   fetcher,
		validator: validation.New(),
		logger:    logger,
	}
}

// AddBookInput is a manual add.
type AddBookInput struct {
	Title       string `json:"title" validate:"notblank,max=500"`
	Author      string `json:"author" validate:"notblank,max=500"`
	Genre       string `json:"genre,omitempty" validate:"omitempty,max=100,genre"`
	Description string `json:"description,omitempty" validate:"max=10000"`
	CoverURL    string `json:"cover_url,omitempty" validate:"omitempty,http_url"`
	Pages       int    `json:"pages" validate:"gte=0"`
	Read        bool   `json:"read"`
	FetchCover  bool   `json:"fetch_cover"` // Run the cover chain when CoverURL is empty
}

// ListBooks returns the catalogue in insertion order.
// A non-blank query narrows it to the books the search index matches.
func (s *BookService) ListBooks(ctx context.Context, query string) ([]domain.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" || s.index == nil {
		return s.library.List(), nil
	}

	params := search.DefaultSearchParams()
	params.Query = query
	ids, err := s.index.MatchIDs(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search catalogue: %w", err)
	}
	return s.library.Pick(ids), nil
}

// GetBook retrieves a single book by ID.
func (s *BookService) GetBook(_ context.Context, id string) (domain.Book, error) {
	book, err := s.library.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Book{}, domainerrors.NotFoundf("book %s not found", id)
		}
		return domain.Book{}, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// AddBook validates and stores a manually entered book. The attempts
// trace is non-empty only when the cover chain ran.
func (s *BookService) AddBook(ctx context.Context, in AddBookInput) (domain.Book, []enrich.Attempt, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Genre = strings.TrimSpace(in.Genre)

	if err := s.validator.Validate(in); err != nil {
		return domain.Book{}, nil, err
	}

	var attempts []enrich.Attempt
	coverURL := in.CoverURL
	if coverURL == "" && in.FetchCover && s.fetcher != nil {
		coverURL, attempts = s.fetcher.FetchCover(ctx, in.Title, in.Author)
	}

	var blurHash string
	if s.fetcher != nil {
		blurHash = s.fetcher.CoverBlurHash(ctx, coverURL)
	}

	book := domain.NewBook(domain.BookInput{
		Title:       in.Title,
		Author:      in.Author,
		Pages:       in.Pages,
		Genre:       canonicalGenre(in.Genre),
		Description: in.Description,
		Read:        in.Read,
		CoverURL:    coverURL,
		BlurHash:    blurHash,
	})

	if err := s.library.Add(book); err != nil {
		return domain.Book{}, attempts, fmt.Errorf("add book: %w", err)
	}
	return book, attempts, nil
}

// AddEnriched stores a book produced by the enrichment pipeline.
func (s *BookService) AddEnriched(book domain.Book) error {
	return s.library.Add(book)
}

// RemoveBook deletes a book. Removing an absent ID reports false.
func (s *BookService) RemoveBook(_ context.Context, id string) bool {
	return s.library.Remove(id)
}

// ToggleRead flips the read flag of a book.
func (s *BookService) ToggleRead(_ context.Context, id string) (domain.Book, error) {
	book, ok := s.library.ToggleRead(id)
	if !ok {
		return domain.Book{}, domainerrors.NotFoundf("book %s not found", id)
	}
	return book, nil
}

// canonicalGenre maps user input onto the label's canonical spelling.
func canonicalGenre(name string) string {
	if name == "" || strings.EqualFold(name, domain.GenreUncategorized) {
		return ""
	}
	for _, l := range genre.Labels() {
		if strings.EqualFold(l.Name, name) {
			return l.Name
		}
	}
	return name
}
