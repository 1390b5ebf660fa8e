// Package genre maps free-text subject headings to catalogue genre labels.
package genre

import "strings"

// DefaultLabel is returned when no subject matches any keyword.
const DefaultLabel = "Fiction"

type keyword struct {
	key   string
	label string
}

// keywords is checked in order; the first key found in any subject wins.
// Broad keys come first, so "science fiction" classifies as Fiction.
var keywords = []keyword{
	{"fiction", "Fiction"},
	{"general fiction", "Fiction"},
	{"non-fiction", "Non-fiction"},
	{"nonfiction", "Non-fiction"},
	{"mystery", "Mystery"},
	{"detective", "Mystery"},
	{"crime", "Mystery"},
	{"fantasy", "Fantasy"},
	{"high fantasy", "Fantasy"},
	{"science fiction", "Science Fiction"},
	{"sci-fi", "Science Fiction"},
	{"sf", "Science Fiction"},
	{"biography", "Biography"},
	{"autobiography", "Biography"},
	{"memoir", "Biography"},
	{"romance", "Romance"},
	{"love stories", "Romance"},
	{"historical", "Historical"},
	{"history", "Historical"},
	{"horror", "Horror"},
	{"terror", "Horror"},
	{"self-help", "Self-help"},
	{"self help", "Self-help"},
	{"personal development", "Self-help"},
	{"adventure", "Adventure"},
	{"thriller", "Thriller"},
	{"suspense", "Thriller"},
	{"poetry", "Poetry"},
	{"drama", "Drama"},
	{"classics", "Classics"},
	{"philosophy", "Philosophy"},
	{"psychology", "Psychology"},
	{"religion", "Religion"},
	{"spirituality", "Religion"},
}

// Classify returns the genre label for a set of subject headings.
// Matching is a case-insensitive substring test. Table order breaks ties,
// regardless of which subject matched. Empty input yields DefaultLabel.
func Classify(subjects []string) string {
	if len(subjects) == 0 {
		return DefaultLabel
	}

	lowered := make([]string, len(subjects))
	for i, s := range subjects {
		lowered[i] = strings.ToLower(s)
	}

	for _, kw := range keywords {
		for _, s := range lowered {
			if strings.Contains(s, kw.key) {
				return kw.label
			}
		}
	}

	return DefaultLabel
}

// Label is a genre with its URL slug.
type Label struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Labels returns the distinct labels in table order.
func Labels() []Label {
	seen := make(map[string]bool)
	labels := make([]Label, 0, 16)
	for _, kw := range keywords {
		if seen[kw.label] {
			continue
		}
		seen[kw.label] = true
		labels = append(labels, Label{Name: kw.label, Slug: Slugify(kw.label)})
	}
	return labels
}

// IsLabel reports whether name is one of the known labels (case-insensitive).
func IsLabel(name string) bool {
	for _, kw := range keywords {
		if strings.EqualFold(kw.label, name) {
			return true
		}
	}
	return false
}
