package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBook_Defaults(t *testing.T) {
	b := NewBook(BookInput{Title: "  Dune ", Author: "Frank Herbert", Pages: 412})

	_, err := uuid.Parse(b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, 412, b.Pages)
	assert.False(t, b.Read)
	assert.False(t, b.HasCover())
	assert.False(t, b.AddedAt.IsZero())
}

func TestNewBook_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for range 200 {
		b := NewBook(BookInput{Title: "x", Author: "y"})
		assert.False(t, seen[b.ID])
		seen[b.ID] = true
	}
}

func TestNewBook_ClampsNegativePages(t *testing.T) {
	b := NewBook(BookInput{Title: "x", Author: "y", Pages: -3})
	assert.Equal(t, 0, b.Pages)
}

func TestWithToggledRead_IsItsOwnInverse(t *testing.T) {
	b := NewBook(BookInput{Title: "x", Author: "y", Read: true})

	once := b.WithToggledRead()
	twice := once.WithToggledRead()

	assert.False(t, once.Read)
	assert.True(t, twice.Read)
	assert.True(t, b.Read, "receiver must be untouched")
	assert.Equal(t, b.ID, twice.ID)
}

func TestGenreLabel(t *testing.T) {
	assert.Equal(t, GenreUncategorized, Book{}.GenreLabel())
	assert.Equal(t, "Fantasy", Book{Genre: "Fantasy"}.GenreLabel())
}

func TestCandidate_Helpers(t *testing.T) {
	c := Candidate{}
	assert.Equal(t, UnknownAuthor, c.AuthorOrUnknown())
	assert.Empty(t, c.FirstISBN())

	c = Candidate{Author: "Ursula K. Le Guin", ISBNs: []string{"9780441478125", "0441478123"}}
	assert.Equal(t, "Ursula K. Le Guin", c.AuthorOrUnknown())
	assert.Equal(t, "9780441478125", c.FirstISBN())
}

func TestTheme_Valid(t *testing.T) {
	assert.True(t, ThemeDark.Valid())
	assert.True(t, ThemeLight.Valid())
	assert.False(t, Theme("sepia").Valid())
	assert.False(t, Theme("").Valid())
}
