// Package search provides full-text search over the catalogue using Bleve.
package search

import (
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
)

// SearchDocument is the indexed form of a book.
type SearchDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	Synopsis    string `json:"synopsis,omitempty"`
	Genre       string `json:"genre"`      // Display label
	GenreSlug   string `json:"genre_slug"` // Exact-match filter
	Pages       int    `json:"pages,omitempty"`
	AddedAt     int64  `json:"added_at"` // Unix millis
	Read        bool   `json:"read"`
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
func (d *SearchDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"genre":      d.Genre,
		"genre_slug": d.GenreSlug,
		"read":       readTerm(d.Read),
		"added_at":   d.AddedAt,
	}

	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Synopsis != "" {
		m["synopsis"] = d.Synopsis
	}
	if d.Pages > 0 {
		m["pages"] = d.Pages
	}

	return m
}

// BookToSearchDocument converts a domain Book to a SearchDocument.
func BookToSearchDocument(book *domain.Book) *SearchDocument {
	label := book.GenreLabel()
	return &SearchDocument{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Description: book.Description,
		Synopsis:    book.Synopsis,
		Genre:       label,
		GenreSlug:   genre.Slugify(label),
		Pages:       book.Pages,
		AddedAt:     book.AddedAt.UnixMilli(),
		Read:        book.Read,
	}
}

// readTerm indexes the read flag as a keyword; Bleve's boolean fields
// cannot be combined into a disjunction with text filters as cleanly.
func readTerm(read bool) string {
	if read {
		return "read"
	}
	return "unread"
}
