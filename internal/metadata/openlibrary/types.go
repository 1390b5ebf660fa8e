package openlibrary

import (
	"encoding/json/v2"
)

// Size selects a cover rendition.
type Size string

// Cover sizes served by the covers endpoint.
const (
	SizeSmall  Size = "S"
	SizeMedium Size = "M"
	SizeLarge  Size = "L"
)

type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	ISBN                []string `json:"isbn"`
	Subject             []string `json:"subject"`
	CoverI              int64    `json:"cover_i"`
	FirstPublishYear    int      `json:"first_publish_year"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
}

// Work is the subset of a work record the catalogue uses.
type Work struct {
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	Description   Text     `json:"description"`
	Subjects      []string `json:"subjects"`
	Covers        []int64  `json:"covers"`
	NumberOfPages int      `json:"number_of_pages"`
}

// Edition is the subset of an edition record (looked up by ISBN).
type Edition struct {
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	Description   Text     `json:"description"`
	Subjects      []string `json:"subjects"`
	Covers        []int64  `json:"covers"`
	NumberOfPages int      `json:"number_of_pages"`
}

// FirstCover returns the first usable cover ID of a work.
// OpenLibrary marks removed covers with -1.
func (w *Work) FirstCover() (int64, bool) {
	return firstCover(w.Covers)
}

// FirstCover returns the first usable cover ID of an edition.
func (e *Edition) FirstCover() (int64, bool) {
	return firstCover(e.Covers)
}

func firstCover(ids []int64) (int64, bool) {
	for _, id := range ids {
		if id > 0 {
			return id, true
		}
	}
	return 0, false
}

// Text is a description field, sent either as a plain string or as
// {"type": "/type/text", "value": "..."}.
type Text string

// UnmarshalJSON accepts both encodings.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}

	var typed struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	*t = Text(typed.Value)
	return nil
}

// String returns the text.
func (t Text) String() string {
	return string(t)
}
