package api

import (
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/enrich"
	"github.com/bookshelfapp/bookshelf-server/internal/media/covers"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata/googlebooks"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata/openlibrary"
	"github.com/bookshelfapp/bookshelf-server/internal/search"
	"github.com/bookshelfapp/bookshelf-server/internal/searchbox"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
	"github.com/bookshelfapp/bookshelf-server/internal/sse"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// testEnvelope is the decoded API envelope.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

func decodeEnvelope[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

// stubProber accepts every URL that does not contain "broken".
type stubProber struct{}

func (stubProber) Probe(_ context.Context, url string) (covers.Dimensions, error) {
	if strings.Contains(url, "broken") {
		return covers.Dimensions{}, covers.ErrPlaceholder
	}
	return covers.Dimensions{Format: "jpeg", Width: 200, Height: 300}, nil
}

func (stubProber) BlurHash(context.Context, string) (string, error) {
	return "", covers.ErrUnavailable
}

// fakeUpstream serves a tiny OpenLibrary: one search doc for any query
// without "zzz", and a work with a description. Everything else is 404.
type fakeUpstream struct {
	mu       sync.Mutex
	searches []string
	fail     bool
}

func (f *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q") + r.URL.Query().Get("title")

		f.mu.Lock()
		f.searches = append(f.searches, query)
		fail := f.fail
		f.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if strings.Contains(query, "zzz") {
			_, _ = io.WriteString(w, `{"docs":[]}`)
			return
		}
		_, _ = io.WriteString(w, `{"docs":[{"key":"/works/OL893415W","title":"Dune","author_name":["Frank Herbert"],"cover_i":11481354,"subject":["Science fiction","Desert"],"first_publish_year":1965,"number_of_pages_median":412}]}`)
	})
	mux.HandleFunc("/works/OL893415W.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"key":"/works/OL893415W","title":"Dune","description":{"type":"/type/text","value":"<p>Set on the desert planet Arrakis, Dune is the story of Paul Atreides. It won the Hugo.</p>"},"subjects":["Ecology"],"covers":[11481354]}`)
	})
	return mux
}

func (f *fakeUpstream) setFail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

func (f *fakeUpstream) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

// testServer wraps the API server for testing.
type testServer struct {
	*Server
	api        humatest.TestAPI
	library    *store.Library
	upstream   *fakeUpstream
	sseManager *sse.Manager
}

// setupTestServer creates a test server with all dependencies in memory.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sseManager := sse.NewManager(logger)

	library := store.NewLibrary(logger, sseManager)
	index, err := search.NewSearchIndex(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	library.SetSearchIndexer(index)

	prefs, err := store.OpenPreferences("", logger, sseManager)
	require.NoError(t, err)
	t.Cleanup(func() { _ = prefs.Close() })

	upstream := &fakeUpstream{}
	upstreamServer := httptest.NewServer(upstream.handler())
	t.Cleanup(upstreamServer.Close)

	get := metadata.NewGetter(2*time.Second, logger)
	ol := openlibrary.New(get, upstreamServer.URL, "https://covers.example", logger)
	gb := googlebooks.New(get, upstreamServer.URL, logger)
	fetcher := enrich.New(
		enrich.DefaultCoverStrategies(ol, gb),
		enrich.DefaultDescriptionStrategies(ol, gb),
		stubProber{},
		logger,
	)

	metadataService := service.NewMetadataService(ol, fetcher, logger)
	registry := searchbox.NewRegistry(searchbox.Deps{
		Searcher:  metadataService,
		Enricher:  metadataService,
		Committer: library,
		Clock:     searchbox.RealClock(),
		Logger:    logger,
	}, 20*time.Millisecond, searchbox.DefaultLimit, service.StateNotifier(sseManager))
	t.Cleanup(func() { _ = registry.Shutdown(context.Background()) })

	services := &Services{
		Book:     service.NewBookService(library, index, fetcher, logger),
		Metadata: metadataService,
		Session:  service.NewSessionService(registry, logger),
		Search:   service.NewSearchService(index, library, logger),
		Settings: service.NewSettingsService(prefs, domain.ThemeLight, logger),
	}
	health := HealthChecks{
		Preferences: prefs.Ping,
		BookCount:   library.Len,
		IndexCount:  index.DocumentCount,
	}

	s := NewServer(services, health, sseManager, Options{}, logger)

	return &testServer{
		Server:     s,
		api:        humatest.Wrap(t, s.API()),
		library:    library,
		upstream:   upstream,
		sseManager: sseManager,
	}
}

// addBook adds a book through the API and returns it.
func (ts *testServer) addBook(t *testing.T, body map[string]any) BookResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/books", body)
	require.Equal(t, http.StatusCreated, resp.Code, "add failed: %s", resp.Body.String())

	env := decodeEnvelope[AddBookResponse](t, resp.Body.Bytes())
	return env.Data.Book
}
