// Package summary condenses book descriptions into a one-line blurb.
package summary

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

const (
	// maxRunes is the cut-off for descriptions without a clear first sentence.
	maxRunes = 100
	// minWordBoundary is the earliest space we will cut at; anything
	// earlier falls back to a hard cut at maxRunes.
	minWordBoundary = 80

	ellipsis = "..."
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	firstSentence     = regexp.MustCompile(`^[^.!?]+[.!?]`)
	htmlTagPattern    = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)
	leadingLowerASCII = regexp.MustCompile(`^[a-z]`)
)

// Summarize strips markup from raw and returns its first sentence, or a
// word-boundary truncation of about 100 characters when there is none.
func Summarize(raw string) string {
	if raw == "" {
		return ""
	}

	// Entity-escaped markup is still markup.
	text := tagPattern.ReplaceAllString(html.UnescapeString(raw), "")

	if sentence := firstSentence.FindString(text); sentence != "" {
		return strings.TrimSpace(sentence)
	}

	runes := []rune(text)
	if len(runes) <= maxRunes {
		return strings.TrimSpace(text)
	}

	truncated := []rune(strings.TrimSpace(string(runes[:maxRunes])))
	if cut := lastSpace(truncated); cut > minWordBoundary {
		return string(truncated[:cut]) + ellipsis
	}
	return string(truncated) + ellipsis
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}

// Markdown converts an HTML description into Markdown.
// Input without recognizable HTML is returned trimmed but otherwise unchanged.
func Markdown(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !htmlTagPattern.MatchString(strings.ToLower(raw)) {
		return raw
	}

	markdown, err := htmltomarkdown.ConvertString(raw)
	if err != nil {
		return raw
	}
	return strings.TrimSpace(markdown)
}

// Fallback builds a stand-in description when no source provided one,
// e.g. "A Published in 1965, Science fiction book.".
func Fallback(firstPublishYear int, subjects []string, genre string) string {
	var elements []string
	if firstPublishYear > 0 {
		elements = append(elements, fmt.Sprintf("Published in %d", firstPublishYear))
	}
	if len(subjects) > 0 {
		main := leadingLowerASCII.ReplaceAllStringFunc(subjects[0], strings.ToUpper)
		elements = append(elements, main)
	}

	if len(elements) == 0 {
		return "A " + genre + " book."
	}
	return "A " + strings.Join(elements, ", ") + " book."
}
