package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBook_Manual(t *testing.T) {
	ts := setupTestServer(t)

	book := ts.addBook(t, map[string]any{
		"title":  "The Hobbit",
		"author": "J.R.R. Tolkien",
		"pages":  295,
		"genre":  "Fantasy",
		"read":   true,
	})

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "The Hobbit", book.Title)
	assert.Equal(t, "Fantasy", book.GenreLabel)
	assert.Equal(t, 295, book.Pages)
	assert.True(t, book.Read)
	assert.Equal(t, 1, ts.library.Len())
}

func TestAddBook_DefaultsUnread(t *testing.T) {
	ts := setupTestServer(t)

	book := ts.addBook(t, map[string]any{"title": "Emma", "author": "Jane Austen"})
	assert.False(t, book.Read)
	assert.Equal(t, "Uncategorized", book.GenreLabel)
	assert.Empty(t, book.CoverURL)
}

func TestAddBook_FetchCover(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/books", map[string]any{
		"title":       "Dune",
		"author":      "Frank Herbert",
		"fetch_cover": true,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decodeEnvelope[AddBookResponse](t, resp.Body.Bytes())
	assert.Equal(t, "https://covers.example/b/id/11481354-L.jpg", env.Data.Book.CoverURL)
	require.NotEmpty(t, env.Data.CoverAttempts)
	assert.True(t, env.Data.CoverAttempts[0].Success)
}

func TestAddBook_Validation(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/books", map[string]any{"title": "  ", "author": "A", "pages": -1})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
	details, ok := env.Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "pages")

	assert.Equal(t, 0, ts.library.Len())
}

func TestListBooks(t *testing.T) {
	ts := setupTestServer(t)

	first := ts.addBook(t, map[string]any{"title": "The Hobbit", "author": "J.R.R. Tolkien"})
	ts.addBook(t, map[string]any{"title": "Dune", "author": "Frank Herbert"})
	third := ts.addBook(t, map[string]any{"title": "The Silmarillion", "author": "J.R.R. Tolkien"})

	resp := ts.api.Get("/api/v1/books")
	require.Equal(t, http.StatusOK, resp.Code)
	env := decodeEnvelope[ListBooksResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, 3, env.Data.Total)
	assert.Equal(t, first.ID, env.Data.Books[0].ID)

	resp = ts.api.Get("/api/v1/books?q=tolkien")
	require.Equal(t, http.StatusOK, resp.Code)
	env = decodeEnvelope[ListBooksResponse](t, resp.Body.Bytes())
	require.Equal(t, 2, env.Data.Total)
	assert.Equal(t, first.ID, env.Data.Books[0].ID)
	assert.Equal(t, third.ID, env.Data.Books[1].ID)
}

func TestGetBook(t *testing.T) {
	ts := setupTestServer(t)

	book := ts.addBook(t, map[string]any{"title": "Dune", "author": "Frank Herbert"})

	resp := ts.api.Get("/api/v1/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	env := decodeEnvelope[BookResponse](t, resp.Body.Bytes())
	assert.Equal(t, book.ID, env.Data.ID)

	resp = ts.api.Get("/api/v1/books/missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	errEnv := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", errEnv.Code)
}

func TestRemoveBook(t *testing.T) {
	ts := setupTestServer(t)

	book := ts.addBook(t, map[string]any{"title": "Dune", "author": "Frank Herbert"})

	resp := ts.api.Delete("/api/v1/books/" + book.ID)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, 0, ts.library.Len())

	// Removing again is a no-op.
	resp = ts.api.Delete("/api/v1/books/" + book.ID)
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestToggleRead(t *testing.T) {
	ts := setupTestServer(t)

	book := ts.addBook(t, map[string]any{"title": "Dune", "author": "Frank Herbert"})

	resp := ts.api.Post("/api/v1/books/" + book.ID + "/toggle-read")
	require.Equal(t, http.StatusOK, resp.Code)
	env := decodeEnvelope[BookResponse](t, resp.Body.Bytes())
	assert.True(t, env.Data.Read)

	resp = ts.api.Post("/api/v1/books/" + book.ID + "/toggle-read")
	require.Equal(t, http.StatusOK, resp.Code)
	env = decodeEnvelope[BookResponse](t, resp.Body.Bytes())
	assert.False(t, env.Data.Read)

	resp = ts.api.Post("/api/v1/books/missing/toggle-read")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, 1, ts.library.Len())
}
