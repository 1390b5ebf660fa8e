package store

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/sse"
)

// Library is the in-memory catalogue, kept in insertion order.
// Every mutation notifies the event emitter and the search indexer.
type Library struct {
	eventEmitter  EventEmitter
	searchIndexer SearchIndexer
	logger        *slog.Logger
	books         []domain.Book
	mu            sync.RWMutex
}

// NewLibrary creates an empty catalogue.
func NewLibrary(logger *slog.Logger, emitter EventEmitter) *Library {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		eventEmitter:  emitter,
		searchIndexer: noopIndexer{},
		logger:        logger,
	}
}

// SetSearchIndexer sets the search indexer. The index is created after
// the library so it can be rebuilt from it.
func (l *Library) SetSearchIndexer(indexer SearchIndexer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if indexer == nil {
		indexer = noopIndexer{}
	}
	l.searchIndexer = indexer
}

// Add appends a book. The ID must be set and not already present.
func (l *Library) Add(book domain.Book) error {
	if strings.TrimSpace(book.ID) == "" {
		return invalid("add", "", "book id is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOf(book.ID) >= 0 {
		return conflict("add", book.ID, "book "+book.ID+" already exists")
	}
	l.books = append(l.books, book)

	if err := l.searchIndexer.IndexBook(context.Background(), &book); err != nil {
		l.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
	l.eventEmitter.Emit(sse.NewLibraryChangedEvent(sse.ActionAdded, book.ID, &book, len(l.books)))

	l.logger.Info("book added", "book_id", book.ID, "title", book.Title, "count", len(l.books))
	return nil
}

// Remove deletes the book with id. Removing an absent id is a no-op that
// reports false.
func (l *Library) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	l.books = slices.Delete(l.books, i, i+1)

	if err := l.searchIndexer.DeleteBook(context.Background(), id); err != nil {
		l.logger.Warn("failed to remove book from index", "book_id", id, "error", err)
	}
	l.eventEmitter.Emit(sse.NewLibraryChangedEvent(sse.ActionRemoved, id, nil, len(l.books)))

	l.logger.Info("book removed", "book_id", id, "count", len(l.books))
	return true
}

// ToggleRead flips the read flag of the book with id and returns the
// updated book. An absent id is a no-op that reports false.
func (l *Library) ToggleRead(id string) (domain.Book, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return domain.Book{}, false
	}
	l.books[i] = l.books[i].WithToggledRead()
	book := l.books[i]

	if err := l.searchIndexer.IndexBook(context.Background(), &book); err != nil {
		l.logger.Warn("failed to reindex book", "book_id", id, "error", err)
	}
	l.eventEmitter.Emit(sse.NewLibraryChangedEvent(sse.ActionReadToggled, id, &book, len(l.books)))

	return book, true
}

// Get returns the book with id, or ErrNotFound.
func (l *Library) Get(id string) (domain.Book, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.indexOf(id)
	if i < 0 {
		return domain.Book{}, notFound("get", id, "book "+id+" not found")
	}
	return l.books[i], nil
}

// List returns a copy of the catalogue in insertion order.
func (l *Library) List() []domain.Book {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.books)
}

// Pick returns the books whose IDs are in ids, in catalogue order.
// Unknown IDs are ignored.
func (l *Library) Pick(ids []string) []domain.Book {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	picked := make([]domain.Book, 0, len(ids))
	for _, b := range l.books {
		if _, ok := want[b.ID]; ok {
			picked = append(picked, b)
		}
	}
	return picked
}

// Len returns the number of books.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.books)
}

func (l *Library) indexOf(id string) int {
	return slices.IndexFunc(l.books, func(b domain.Book) bool { return b.ID == id })
}
