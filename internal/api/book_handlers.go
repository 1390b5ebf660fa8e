package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/color"
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/enrich"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the catalogue in insertion order, optionally filtered by a full-text query",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Add book",
		Description:   "Adds a manually entered book, optionally looking up its cover",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "removeBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Remove book",
		Description:   "Removes a book. Removing an unknown book is not an error",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleRemoveBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/toggle-read",
		Summary:     "Toggle read status",
		Description: "Flips the read flag of a book",
		Tags:        []string{"Books"},
	}, s.handleToggleRead)
}

// === DTOs ===

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Query string `query:"q" doc:"Full-text filter over title, author, and description"`
}

// BookResponse is a book in API responses.
type BookResponse struct {
	AddedAt       time.Time `json:"added_at"`
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Genre         string    `json:"genre" doc:"Genre label; empty when uncategorized"`
	GenreLabel    string    `json:"genre_label" doc:"Genre for display"`
	Description   string    `json:"description"`
	Synopsis      string    `json:"synopsis,omitempty" doc:"Full description as Markdown"`
	CoverURL      string    `json:"cover_url,omitempty"`
	CoverBlurHash string    `json:"cover_blurhash,omitempty"`
	CoverTint     string    `json:"cover_tint,omitempty" doc:"Placeholder tile color when there is no cover"`
	Pages         int       `json:"pages"`
	Read          bool      `json:"read"`
}

func newBookResponse(b domain.Book) BookResponse {
	resp := BookResponse{
		AddedAt:       b.AddedAt,
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		GenreLabel:    b.GenreLabel(),
		Description:   b.Description,
		Synopsis:      b.Synopsis,
		CoverURL:      b.CoverURL,
		CoverBlurHash: b.CoverBlurHash,
		Pages:         b.Pages,
		Read:          b.Read,
	}
	if !b.HasCover() {
		resp.CoverTint = color.Placeholder(b.Title, b.Author)
	}
	return resp
}

// ListBooksResponse contains the books.
type ListBooksResponse struct {
	Books []BookResponse `json:"books" doc:"Books in insertion order"`
	Total int            `json:"total" doc:"Number of books returned"`
}

// ListBooksOutput wraps the list response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// BookIDInput identifies a book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// AddBookRequest is the manual add form.
type AddBookRequest struct {
	Title       string `json:"title,omitempty" doc:"Book title (required)"`
	Author      string `json:"author,omitempty" doc:"Author name (required)"`
	Pages       int    `json:"pages,omitempty" doc:"Page count"`
	Genre       string `json:"genre,omitempty" doc:"Genre label"`
	Description string `json:"description,omitempty" doc:"Short description"`
	CoverURL    string `json:"cover_url,omitempty" doc:"Cover image URL"`
	Read        bool   `json:"read,omitempty" doc:"Whether the book has been read"`
	FetchCover  bool   `json:"fetch_cover,omitempty" doc:"Look up a cover when cover_url is empty"`
}

// AddBookInput wraps the add request for Huma.
type AddBookInput struct {
	Body AddBookRequest
}

// AddBookResponse is the created book plus the cover lookup trace.
type AddBookResponse struct {
	Book          BookResponse     `json:"book"`
	CoverAttempts []enrich.Attempt `json:"cover_attempts,omitempty" doc:"Cover sources tried, when fetch_cover ran"`
}

// AddBookOutput wraps the add response for Huma.
type AddBookOutput struct {
	Body AddBookResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	books, err := s.services.Book.ListBooks(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	resp := make([]BookResponse, len(books))
	for i, b := range books {
		resp[i] = newBookResponse(b)
	}
	return &ListBooksOutput{Body: ListBooksResponse{Books: resp, Total: len(resp)}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*AddBookOutput, error) {
	book, attempts, err := s.services.Book.AddBook(ctx, service.AddBookInput{
		Title:       input.Body.Title,
		Author:      input.Body.Author,
		Pages:       input.Body.Pages,
		Genre:       input.Body.Genre,
		Description: input.Body.Description,
		CoverURL:    input.Body.CoverURL,
		Read:        input.Body.Read,
		FetchCover:  input.Body.FetchCover,
	})
	if err != nil {
		return nil, err
	}
	return &AddBookOutput{Body: AddBookResponse{Book: newBookResponse(book), CoverAttempts: attempts}}, nil
}

func (s *Server) handleRemoveBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	s.services.Book.RemoveBook(ctx, input.ID)
	return nil, nil
}

func (s *Server) handleToggleRead(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Book.ToggleRead(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: newBookResponse(book)}, nil
}
