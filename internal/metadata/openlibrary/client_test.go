package openlibrary

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/metadata"
)

const searchFixture = `{
  "numFound": 2,
  "docs": [
    {
      "key": "/works/OL893415W",
      "title": "Dune",
      "author_name": ["Frank Herbert"],
      "isbn": ["9780441013593", "0441013597"],
      "subject": ["Science fiction", "Desert"],
      "cover_i": 11481354,
      "first_publish_year": 1965,
      "number_of_pages_median": 412
    },
    {
      "key": "/works/OL1W",
      "title": "Dune Messiah"
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	get := metadata.NewGetter(0, logger, metadata.WithHTTPClient(server.Client()))
	return New(get, server.URL, "https://covers.example", logger)
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "Dune Frank Herbert", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(searchFixture))
	})

	got, err := client.Search(context.Background(), "Dune: Frank   Herbert!", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "/works/OL893415W", got[0].Key)
	assert.Equal(t, "Frank Herbert", got[0].Author)
	assert.Equal(t, int64(11481354), got[0].CoverID)
	assert.Equal(t, "https://covers.example/b/id/11481354-M.jpg", got[0].ThumbnailURL)
	assert.Equal(t, "https://covers.example/b/id/11481354-L.jpg", got[0].CoverURL)
	assert.Equal(t, 1965, got[0].FirstPublishYear)
	assert.Equal(t, 412, got[0].PagesMedian)
	assert.Equal(t, "9780441013593", got[0].FirstISBN())

	assert.Empty(t, got[1].Author)
	assert.Empty(t, got[1].ThumbnailURL)
	assert.Empty(t, got[1].CoverURL)
}

func TestClient_SearchTitle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "The Hobbit", r.URL.Query().Get("title"))
		assert.Empty(t, r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"numFound":0,"docs":[]}`))
	})

	got, err := client.SearchTitle(context.Background(), "The Hobbit", 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_SearchBlankQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for a blank query")
	})

	got, err := client.Search(context.Background(), " ?! ", 5)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClient_SearchUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Search(context.Background(), "dune", 5)
	require.ErrorIs(t, err, metadata.ErrUpstream)

	var mdErr *metadata.Error
	require.ErrorAs(t, err, &mdErr)
	assert.Equal(t, "search", mdErr.Op)
}

func TestClient_Work(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		body     string
		wantDesc string
		wantPage int
		wantCov  int64
	}{
		{
			name:     "string description",
			key:      "/works/OL893415W",
			body:     `{"key":"/works/OL893415W","description":"Spice.","covers":[-1, 42],"number_of_pages":412,"subjects":["Ecology"]}`,
			wantDesc: "Spice.",
			wantPage: 412,
			wantCov:  42,
		},
		{
			name:     "typed description and bare key",
			key:      "OL893415W",
			body:     `{"description":{"type":"/type/text","value":"Arrakis."}}`,
			wantDesc: "Arrakis.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/works/OL893415W.json", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})

			work, err := client.Work(context.Background(), tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDesc, work.Description.String())
			assert.Equal(t, tt.wantPage, work.NumberOfPages)

			cover, ok := work.FirstCover()
			assert.Equal(t, tt.wantCov != 0, ok)
			assert.Equal(t, tt.wantCov, cover)
		})
	}
}

func TestClient_WorkRejectsNonWorkKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.Work(context.Background(), "/authors/OL1A")
	assert.ErrorIs(t, err, metadata.ErrNotFound)
}

func TestClient_Edition(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/isbn/0441013597.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"number_of_pages":896,"subjects":["Fiction"],"description":{"value":"Edition text."}}`))
	})

	edition, err := client.Edition(context.Background(), "0441013597")
	require.NoError(t, err)
	assert.Equal(t, 896, edition.NumberOfPages)
	assert.Equal(t, "Edition text.", edition.Description.String())

	_, err = client.Edition(context.Background(), "missing")
	assert.ErrorIs(t, err, metadata.ErrNotFound)
}

func TestClient_CoverURL(t *testing.T) {
	client := New(nil, "", "", slog.Default())
	assert.Equal(t, "https://covers.openlibrary.org/b/id/12645114-L.jpg", client.CoverURL(12645114, SizeLarge))
}

func TestCleanQuery(t *testing.T) {
	tests := map[string]string{
		"The Hobbit":           "The Hobbit",
		"  Dune:   Messiah!  ": "Dune Messiah",
		"J.R.R. Tolkien":       "JRR Tolkien",
		"snake_case stays":     "snake_case stays",
		"tabs\tand\nnewlines":  "tabs and newlines",
		"?!":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanQuery(in), "CleanQuery(%q)", in)
	}
}
