package domain

// Candidate is one search hit from the book-metadata service.
// It is transient: it becomes a Book only when the user selects it.
type Candidate struct {
	Key              string   `json:"key,omitempty"` // Work key, e.g. "/works/OL45883W"
	Title            string   `json:"title"`
	Author           string   `json:"author,omitempty"`
	ISBNs            []string `json:"isbn,omitempty"`
	Subjects         []string `json:"subjects,omitempty"`
	CoverID          int64    `json:"cover_id,omitempty"`
	ThumbnailURL     string   `json:"thumbnail_url,omitempty"` // Medium cover for result lists
	CoverURL         string   `json:"cover_url,omitempty"`     // Large cover from the hit itself
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	PagesMedian      int      `json:"pages_median,omitempty"`
}

// AuthorOrUnknown returns the author name, or UnknownAuthor when it is missing.
func (c Candidate) AuthorOrUnknown() string {
	if c.Author == "" {
		return UnknownAuthor
	}
	return c.Author
}

// FirstISBN returns the first ISBN, if any.
func (c Candidate) FirstISBN() string {
	if len(c.ISBNs) == 0 {
		return ""
	}
	return c.ISBNs[0]
}
