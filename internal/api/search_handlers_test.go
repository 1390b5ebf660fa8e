package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/search"
)

func seedCatalogue(t *testing.T, ts *testServer) {
	t.Helper()
	ts.addBook(t, map[string]any{"title": "The Hobbit", "author": "J.R.R. Tolkien", "genre": "Fantasy", "pages": 295, "read": true})
	ts.addBook(t, map[string]any{"title": "Dune", "author": "Frank Herbert", "genre": "Science Fiction", "pages": 412, "description": "A desert planet and its spice."})
	ts.addBook(t, map[string]any{"title": "1984", "author": "George Orwell", "genre": "Science Fiction", "pages": 328})
}

func TestSearch_FullText(t *testing.T) {
	ts := setupTestServer(t)
	seedCatalogue(t, ts)

	resp := ts.api.Get("/api/v1/search?q=desert")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[search.SearchResult](t, resp.Body.Bytes())
	assert.Equal(t, uint64(1), env.Data.Total)
	require.Len(t, env.Data.Hits, 1)
	assert.Equal(t, "Dune", env.Data.Hits[0].Title)
}

func TestSearch_Filters(t *testing.T) {
	ts := setupTestServer(t)
	seedCatalogue(t, ts)

	resp := ts.api.Get("/api/v1/search?genre=science-fiction&sort=pages&order=asc")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[search.SearchResult](t, resp.Body.Bytes())
	require.Len(t, env.Data.Hits, 2)
	assert.Equal(t, "1984", env.Data.Hits[0].Title)
	assert.Equal(t, "Dune", env.Data.Hits[1].Title)

	resp = ts.api.Get("/api/v1/search?read=true")
	require.Equal(t, http.StatusOK, resp.Code)
	env = decodeEnvelope[search.SearchResult](t, resp.Body.Bytes())
	require.Len(t, env.Data.Hits, 1)
	assert.Equal(t, "The Hobbit", env.Data.Hits[0].Title)
}

func TestSearch_RejectsUnknownSort(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/search?sort=color")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
