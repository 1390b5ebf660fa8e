package summary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	long := strings.Repeat("word ", 30) // 150 chars, no terminator

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"first sentence", "A cat sat. It slept.", "A cat sat."},
		{"exclamation", "Run! Hide.", "Run!"},
		{"question", "Who goes there? Nobody.", "Who goes there?"},
		{"strips tags", "<p>Bilbo <b>leaves</b> home. Later.</p>", "Bilbo leaves home."},
		{"unescapes entities", "Tom &amp; Jerry fight. Again.", "Tom & Jerry fight."},
		{"strips escaped tags", "&lt;p&gt;&lt;b&gt;Hi&lt;/b&gt; there. Bye.&lt;/p&gt;", "Hi there."},
		{"short without terminator", "  A short blurb  ", "A short blurb"},
		{"only punctuation", "...", "..."},
		{"word boundary cut", long, strings.TrimSpace(strings.Repeat("word ", 19)) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.in))
		})
	}
}

func TestSummarize_HardCutWhenNoLateSpace(t *testing.T) {
	in := "short " + strings.Repeat("x", 120)

	got := Summarize(in)

	assert.Equal(t, ("short " + strings.Repeat("x", 94))+"...", got)
	assert.Len(t, []rune(got), 103)
}

func TestSummarize_CountsRunesNotBytes(t *testing.T) {
	in := strings.Repeat("é", 100)

	assert.Equal(t, in, Summarize(in))
}

func TestMarkdown(t *testing.T) {
	t.Run("plain text untouched", func(t *testing.T) {
		assert.Equal(t, "Just text.", Markdown("  Just text.  "))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Markdown(""))
	})

	t.Run("converts html", func(t *testing.T) {
		got := Markdown("<p>A <strong>bold</strong> tale.</p>")
		assert.Contains(t, got, "**bold**")
		assert.NotContains(t, got, "<p>")
	})
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		subjects []string
		genre    string
		want     string
	}{
		{"year and subject", 1965, []string{"science fiction", "desert"}, "Science Fiction", "A Published in 1965, Science fiction book."},
		{"year only", 1937, nil, "Fantasy", "A Published in 1937 book."},
		{"subject only", 0, []string{"Dragons"}, "Fantasy", "A Dragons book."},
		{"nothing", 0, nil, "Fiction", "A Fiction book."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallback(tt.year, tt.subjects, tt.genre))
		})
	}
}
