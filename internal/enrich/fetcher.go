// Package enrich turns a search candidate into a catalogue book by walking
// ordered lists of metadata strategies.
package enrich

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
	"github.com/bookshelfapp/bookshelf-server/internal/media/covers"
	"github.com/bookshelfapp/bookshelf-server/internal/summary"
)

// ErrSkipped is returned by a strategy whose inputs are missing,
// e.g. an ISBN lookup for a candidate without an ISBN.
var ErrSkipped = errors.New("enrich: strategy not applicable")

var errNoResult = errors.New("no result")

// Attempt captures a single strategy outcome.
type Attempt struct {
	Strategy string `json:"strategy"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
	Success  bool   `json:"success"`
	Skipped  bool   `json:"skipped,omitempty"`
}

// CoverFunc looks up a cover URL. An empty URL with a nil error means the
// source had nothing.
type CoverFunc func(ctx context.Context, title, author string) (string, error)

// CoverStrategy is one named step of the cover chain.
type CoverStrategy struct {
	Name string
	Find CoverFunc
}

// Lookup is what a description step found. Any field may be empty.
type Lookup struct {
	Description string // Raw, possibly HTML
	CoverURL    string
	Subjects    []string
	Pages       int
}

// DescriptionFunc fetches details for a candidate.
type DescriptionFunc func(ctx context.Context, c domain.Candidate) (Lookup, error)

// DescriptionStrategy is one named step of the description chain.
type DescriptionStrategy struct {
	Name  string
	Fetch DescriptionFunc
}

// Prober validates cover URLs and hashes them.
type Prober interface {
	Probe(ctx context.Context, url string) (covers.Dimensions, error)
	BlurHash(ctx context.Context, url string) (string, error)
}

// Trace records every strategy run while enriching one candidate.
type Trace struct {
	Descriptions []Attempt `json:"descriptions"`
	Covers       []Attempt `json:"covers,omitempty"`
}

// Fetcher runs the cover and description chains.
type Fetcher struct {
	prober       Prober
	logger       *slog.Logger
	covers       []CoverStrategy
	descriptions []DescriptionStrategy
	blurHash     bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBlurHash enables BlurHash computation for chosen covers.
func WithBlurHash(enabled bool) Option {
	return func(f *Fetcher) {
		f.blurHash = enabled
	}
}

// New creates a Fetcher. A nil prober accepts every cover URL unchecked.
func New(coverChain []CoverStrategy, descriptionChain []DescriptionStrategy, prober Prober, logger *slog.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		prober:       prober,
		logger:       logger,
		covers:       coverChain,
		descriptions: descriptionChain,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchCover walks the cover chain and returns the first URL that loads.
// It never fails; an empty URL means no source had a usable cover.
func (f *Fetcher) FetchCover(ctx context.Context, title, author string) (string, []Attempt) {
	attempts := make([]Attempt, 0, len(f.covers))

	for _, s := range f.covers {
		url, err := s.Find(ctx, title, author)
		if err == nil && url == "" {
			err = errNoResult
		}
		if err == nil {
			err = f.checkCover(ctx, url)
		}

		if err != nil {
			f.logger.Debug("cover strategy failed",
				"strategy", s.Name,
				"title", title,
				"url", url,
				"error", err,
			)
			attempts = append(attempts, Attempt{Strategy: s.Name, URL: url, Error: err.Error()})
			continue
		}

		attempts = append(attempts, Attempt{Strategy: s.Name, URL: url, Success: true})
		return url, attempts
	}

	f.logger.Info("no cover found", "title", title, "author", author)
	return "", attempts
}

// FetchDescription walks the description chain, merging what each step
// finds, and stops at the first step that yields a usable description.
// Later page counts overwrite earlier ones; subjects accumulate; the first
// cover wins.
func (f *Fetcher) FetchDescription(ctx context.Context, c domain.Candidate) (Lookup, []Attempt) {
	var merged Lookup
	attempts := make([]Attempt, 0, len(f.descriptions))

	for _, s := range f.descriptions {
		part, err := s.Fetch(ctx, c)
		if err != nil {
			skipped := errors.Is(err, ErrSkipped)
			if !skipped {
				f.logger.Warn("description strategy failed",
					"strategy", s.Name,
					"title", c.Title,
					"error", err,
				)
			}
			attempts = append(attempts, Attempt{Strategy: s.Name, Error: err.Error(), Skipped: skipped})
			continue
		}

		if part.Pages > 0 {
			merged.Pages = part.Pages
		}
		merged.Subjects = append(merged.Subjects, part.Subjects...)
		if merged.CoverURL == "" {
			merged.CoverURL = part.CoverURL
		}

		if summary.Summarize(part.Description) == "" {
			attempts = append(attempts, Attempt{Strategy: s.Name, Error: errNoResult.Error()})
			continue
		}

		merged.Description = part.Description
		attempts = append(attempts, Attempt{Strategy: s.Name, Success: true})
		break
	}

	return merged, attempts
}

// Enrich builds a book from a candidate. It always returns a book; every
// missing piece falls back to a default.
func (f *Fetcher) Enrich(ctx context.Context, c domain.Candidate) (domain.Book, Trace) {
	var trace Trace

	lookup, attempts := f.FetchDescription(ctx, c)
	trace.Descriptions = attempts

	pages := c.PagesMedian
	if lookup.Pages > 0 {
		pages = lookup.Pages
	}
	subjects := append(slices.Clone(c.Subjects), lookup.Subjects...)
	label := genre.Classify(subjects)

	coverURL := f.firstLoadable(ctx, lookup.CoverURL, c.CoverURL)
	if coverURL == "" {
		coverURL, trace.Covers = f.FetchCover(ctx, c.Title, c.Author)
	}

	description := summary.Summarize(lookup.Description)
	if description == "" {
		description = summary.Fallback(c.FirstPublishYear, subjects, label)
	}

	book := domain.NewBook(domain.BookInput{
		Title:       c.Title,
		Author:      c.AuthorOrUnknown(),
		Pages:       pages,
		Genre:       label,
		Description: description,
		Synopsis:    summary.Markdown(lookup.Description),
		CoverURL:    coverURL,
		BlurHash:    f.coverBlurHash(ctx, coverURL),
	})

	f.logger.Info("enriched book",
		"title", book.Title,
		"genre", book.Genre,
		"pages", book.Pages,
		"has_cover", book.HasCover(),
	)
	return book, trace
}

// CoverBlurHash returns the BlurHash of url when enabled, or "" on any failure.
func (f *Fetcher) CoverBlurHash(ctx context.Context, url string) string {
	return f.coverBlurHash(ctx, url)
}

func (f *Fetcher) coverBlurHash(ctx context.Context, url string) string {
	if !f.blurHash || f.prober == nil || url == "" {
		return ""
	}
	hash, err := f.prober.BlurHash(ctx, url)
	if err != nil {
		f.logger.Debug("blurhash failed", "url", url, "error", err)
		return ""
	}
	return hash
}

// firstLoadable returns the first non-empty url that passes the probe.
func (f *Fetcher) firstLoadable(ctx context.Context, urls ...string) string {
	for _, url := range slices.Compact(urls) {
		if url == "" {
			continue
		}
		if err := f.checkCover(ctx, url); err != nil {
			f.logger.Debug("known cover unusable", "url", url, "error", err)
			continue
		}
		return url
	}
	return ""
}

func (f *Fetcher) checkCover(ctx context.Context, url string) error {
	if f.prober == nil {
		return nil
	}
	_, err := f.prober.Probe(ctx, url)
	return err
}
