// Package store owns the book catalogue and the persisted preferences.
//
// The catalogue lives in memory and is lost on restart; preferences are
// kept in Badger so the chosen theme survives.
package store

import (
	"context"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// EventEmitter receives change notifications. The SSE manager implements
// it; values are sse.Event.
type EventEmitter interface {
	Emit(event any)
}

// SearchIndexer keeps the full-text index in step with the catalogue.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

type noopEmitter struct{}

func (noopEmitter) Emit(any) {}

type noopIndexer struct{}

func (noopIndexer) IndexBook(context.Context, *domain.Book) error { return nil }
func (noopIndexer) DeleteBook(context.Context, string) error      { return nil }
