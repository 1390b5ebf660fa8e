// Package domain contains the core entities of the Bookshelf catalogue.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenreUncategorized is shown for books that carry no genre label.
const GenreUncategorized = "Uncategorized"

// UnknownAuthor is used when a search result has no author name.
const UnknownAuthor = "Unknown Author"

// Book is one catalogue entry.
// ID is assigned once by NewBook and never changes.
type Book struct {
	AddedAt       time.Time `json:"added_at"`
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Genre         string    `json:"genre"`
	Description   string    `json:"description"`
	Synopsis      string    `json:"synopsis,omitempty"`  // Full description as Markdown
	CoverURL      string    `json:"cover_url,omitempty"` // Empty means no cover
	CoverBlurHash string    `json:"cover_blurhash,omitempty"`
	Pages         int       `json:"pages"`
	Read          bool      `json:"read"`
}

// BookInput holds the user-supplied fields of a new book.
type BookInput struct {
	Title       string
	Author      string
	Genre       string
	Description string
	Synopsis    string
	CoverURL    string
	BlurHash    string
	Pages       int
	Read        bool
}

// NewBook creates a book with a fresh UUID.
// Negative page counts are clamped to zero.
func NewBook(in BookInput) Book {
	pages := in.Pages
	if pages < 0 {
		pages = 0
	}
	return Book{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(in.Title),
		Author:        strings.TrimSpace(in.Author),
		Pages:         pages,
		Genre:         strings.TrimSpace(in.Genre),
		Description:   in.Description,
		Synopsis:      in.Synopsis,
		Read:          in.Read,
		CoverURL:      in.CoverURL,
		CoverBlurHash: in.BlurHash,
		AddedAt:       time.Now().UTC(),
	}
}

// WithToggledRead returns a copy of the book with the read flag flipped.
func (b Book) WithToggledRead() Book {
	b.Read = !b.Read
	return b
}

// GenreLabel returns the genre for display.
func (b Book) GenreLabel() string {
	if b.Genre == "" {
		return GenreUncategorized
	}
	return b.Genre
}

// HasCover reports whether the book has a cover image URL.
func (b Book) HasCover() bool {
	return b.CoverURL != ""
}
