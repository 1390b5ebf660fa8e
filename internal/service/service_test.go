package service

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/enrich"
	"github.com/bookshelfapp/bookshelf-server/internal/media/covers"
	"github.com/bookshelfapp/bookshelf-server/internal/search"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	events []any
}

func (e *recordingEmitter) Emit(event any) { e.events = append(e.events, event) }

// stubProber accepts every URL that does not contain "broken".
type stubProber struct{}

func (stubProber) Probe(_ context.Context, url string) (covers.Dimensions, error) {
	if strings.Contains(url, "broken") {
		return covers.Dimensions{}, covers.ErrPlaceholder
	}
	return covers.Dimensions{Format: "jpeg", Width: 200, Height: 300}, nil
}

func (stubProber) BlurHash(context.Context, string) (string, error) {
	return "LEHV6nWB2yk8pyo0adR*.7kCMdnj", nil
}

// newTestFetcher returns a fetcher whose single cover step answers
// https://covers.example/{title}.jpg.
func newTestFetcher() *enrich.Fetcher {
	chain := []enrich.CoverStrategy{{
		Name: "stub",
		Find: func(_ context.Context, title, _ string) (string, error) {
			return "https://covers.example/" + strings.ReplaceAll(title, " ", "_") + ".jpg", nil
		},
	}}
	return enrich.New(chain, nil, stubProber{}, testLogger(), enrich.WithBlurHash(true))
}

type testEnv struct {
	library *store.Library
	index   *search.SearchIndex
	emitter *recordingEmitter
	books   *BookService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	emitter := &recordingEmitter{}
	library := store.NewLibrary(testLogger(), emitter)

	index, err := search.NewSearchIndex(testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	library.SetSearchIndexer(index)

	return &testEnv{
		library: library,
		index:   index,
		emitter: emitter,
		books:   NewBookService(library, index, newTestFetcher(), testLogger()),
	}
}

func mustAdd(t *testing.T, env *testEnv, title, author string) domain.Book {
	t.Helper()
	book, _, err := env.books.AddBook(context.Background(), AddBookInput{Title: title, Author: author, Pages: 100})
	require.NoError(t, err)
	return book
}
