package enrich

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/media/covers"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeProber rejects URLs containing "broken" and hashes everything else.
type fakeProber struct {
	probed []string
	hashed []string
}

func (p *fakeProber) Probe(_ context.Context, url string) (covers.Dimensions, error) {
	p.probed = append(p.probed, url)
	if strings.Contains(url, "broken") {
		return covers.Dimensions{}, covers.ErrPlaceholder
	}
	return covers.Dimensions{Format: "jpeg", Width: 300, Height: 450}, nil
}

func (p *fakeProber) BlurHash(_ context.Context, url string) (string, error) {
	p.hashed = append(p.hashed, url)
	return "LEHV6nWB2yk8pyo0adR*.7kCMdnj", nil
}

func coverStep(name, url string, err error, calls *[]string) CoverStrategy {
	return CoverStrategy{
		Name: name,
		Find: func(context.Context, string, string) (string, error) {
			*calls = append(*calls, name)
			return url, err
		},
	}
}

func descStep(name string, found Lookup, err error, calls *[]string) DescriptionStrategy {
	return DescriptionStrategy{
		Name: name,
		Fetch: func(context.Context, domain.Candidate) (Lookup, error) {
			*calls = append(*calls, name)
			return found, err
		},
	}
}

func TestFetchCover_FallsThroughToLastSource(t *testing.T) {
	var calls []string
	f := New([]CoverStrategy{
		coverStep("a", "", nil, &calls),
		coverStep("a-title", "", nil, &calls),
		coverStep("b", "https://b/cover.jpg", nil, &calls),
	}, nil, &fakeProber{}, testLogger())

	url, attempts := f.FetchCover(context.Background(), "Dune", "Frank Herbert")

	assert.Equal(t, "https://b/cover.jpg", url)
	assert.Equal(t, []string{"a", "a-title", "b"}, calls)
	require.Len(t, attempts, 3)
	assert.False(t, attempts[0].Success)
	assert.False(t, attempts[1].Success)
	assert.True(t, attempts[2].Success)
}

func TestFetchCover_ShortCircuits(t *testing.T) {
	var calls []string
	f := New([]CoverStrategy{
		coverStep("a", "https://a/cover.jpg", nil, &calls),
		coverStep("b", "https://b/cover.jpg", nil, &calls),
	}, nil, &fakeProber{}, testLogger())

	url, _ := f.FetchCover(context.Background(), "Dune", "Frank Herbert")

	assert.Equal(t, "https://a/cover.jpg", url)
	assert.Equal(t, []string{"a"}, calls)
}

func TestFetchCover_ErrorsAndBadImagesFallThrough(t *testing.T) {
	var calls []string
	prober := &fakeProber{}
	f := New([]CoverStrategy{
		coverStep("a", "", errors.New("connection refused"), &calls),
		coverStep("a-title", "https://a/broken.jpg", nil, &calls),
		coverStep("b", "https://b/cover.jpg", nil, &calls),
	}, nil, prober, testLogger())

	url, attempts := f.FetchCover(context.Background(), "Dune", "")

	assert.Equal(t, "https://b/cover.jpg", url)
	assert.Equal(t, []string{"https://a/broken.jpg", "https://b/cover.jpg"}, prober.probed)
	assert.Contains(t, attempts[0].Error, "connection refused")
	assert.Equal(t, "https://a/broken.jpg", attempts[1].URL)
	assert.Contains(t, attempts[1].Error, "placeholder")
}

func TestFetchCover_NothingFound(t *testing.T) {
	var calls []string
	f := New([]CoverStrategy{
		coverStep("a", "", nil, &calls),
		coverStep("b", "", errors.New("boom"), &calls),
	}, nil, nil, testLogger())

	url, attempts := f.FetchCover(context.Background(), "Nothing", "Nobody")

	assert.Empty(t, url)
	assert.Len(t, attempts, 2)
}

func TestFetchDescription_StopsAtFirstDescription(t *testing.T) {
	var calls []string
	f := New(nil, []DescriptionStrategy{
		descStep("work", Lookup{Subjects: []string{"fantasy"}, Pages: 300, CoverURL: "https://work/cover.jpg"}, nil, &calls),
		descStep("isbn", Lookup{Description: "An edition blurb. More.", Subjects: []string{"dragons"}, Pages: 310, CoverURL: "https://isbn/cover.jpg"}, nil, &calls),
		descStep("google", Lookup{Description: "Never reached."}, nil, &calls),
	}, nil, testLogger())

	got, attempts := f.FetchDescription(context.Background(), domain.Candidate{Title: "The Hobbit"})

	assert.Equal(t, []string{"work", "isbn"}, calls)
	assert.Equal(t, "An edition blurb. More.", got.Description)
	assert.Equal(t, 310, got.Pages)
	assert.Equal(t, []string{"fantasy", "dragons"}, got.Subjects)
	assert.Equal(t, "https://work/cover.jpg", got.CoverURL)
	require.Len(t, attempts, 2)
	assert.True(t, attempts[1].Success)
}

func TestFetchDescription_FailuresAreIsolated(t *testing.T) {
	var calls []string
	f := New(nil, []DescriptionStrategy{
		descStep("work", Lookup{}, ErrSkipped, &calls),
		descStep("isbn", Lookup{}, errors.New("timeout"), &calls),
		descStep("google", Lookup{Description: "<p>From Google.</p>"}, nil, &calls),
	}, nil, testLogger())

	got, attempts := f.FetchDescription(context.Background(), domain.Candidate{Title: "Dune"})

	assert.Equal(t, []string{"work", "isbn", "google"}, calls)
	assert.Equal(t, "<p>From Google.</p>", got.Description)
	assert.True(t, attempts[0].Skipped)
	assert.False(t, attempts[1].Skipped)
	assert.Equal(t, "timeout", attempts[1].Error)
}

func TestFetchDescription_MarkupOnlyIsNotADescription(t *testing.T) {
	var calls []string
	f := New(nil, []DescriptionStrategy{
		descStep("work", Lookup{Description: "<p></p>"}, nil, &calls),
		descStep("google", Lookup{Description: "Real text."}, nil, &calls),
	}, nil, testLogger())

	got, _ := f.FetchDescription(context.Background(), domain.Candidate{})

	assert.Equal(t, []string{"work", "google"}, calls)
	assert.Equal(t, "Real text.", got.Description)
}

func TestEnrich(t *testing.T) {
	var calls []string
	prober := &fakeProber{}
	f := New(
		[]CoverStrategy{coverStep("a", "https://a/cover.jpg", nil, &calls)},
		[]DescriptionStrategy{
			descStep("work", Lookup{
				Description: "<p>A hobbit goes <i>there</i>. And back again.</p>",
				Subjects:    []string{"Dragons"},
				Pages:       310,
				CoverURL:    "https://work/cover.jpg",
			}, nil, &calls),
		},
		prober, testLogger(), WithBlurHash(true),
	)

	book, trace := f.Enrich(context.Background(), domain.Candidate{
		Key:         "/works/OL262758W",
		Title:       "The Hobbit",
		Author:      "J.R.R. Tolkien",
		Subjects:    []string{"Fantasy fiction"},
		PagesMedian: 295,
	})

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "The Hobbit", book.Title)
	assert.Equal(t, "J.R.R. Tolkien", book.Author)
	assert.Equal(t, 310, book.Pages)
	assert.Equal(t, "Fiction", book.Genre, "first table key wins")
	assert.Equal(t, "A hobbit goes there.", book.Description)
	assert.Contains(t, book.Synopsis, "*there*")
	assert.Equal(t, "https://work/cover.jpg", book.CoverURL)
	assert.NotEmpty(t, book.CoverBlurHash)
	assert.False(t, book.Read)
	assert.Equal(t, []string{"work"}, calls, "cover chain not needed")
	assert.Empty(t, trace.Covers)
}

func TestEnrich_Defaults(t *testing.T) {
	var calls []string
	f := New(
		[]CoverStrategy{coverStep("a", "", nil, &calls)},
		[]DescriptionStrategy{descStep("work", Lookup{}, errors.New("down"), &calls)},
		nil, testLogger(),
	)

	book, trace := f.Enrich(context.Background(), domain.Candidate{
		Title:            "Dune",
		Subjects:         []string{"science fiction"},
		FirstPublishYear: 1965,
		PagesMedian:      412,
	})

	assert.Equal(t, domain.UnknownAuthor, book.Author)
	assert.Equal(t, 412, book.Pages)
	assert.Equal(t, "Fiction", book.Genre)
	assert.Equal(t, "A Published in 1965, Science fiction book.", book.Description)
	assert.Empty(t, book.CoverURL)
	assert.Empty(t, book.CoverBlurHash)
	assert.Len(t, trace.Covers, 1)
	assert.Len(t, trace.Descriptions, 1)
}

func TestEnrich_BrokenLookupCoverRunsCoverChain(t *testing.T) {
	var calls []string
	f := New(
		[]CoverStrategy{coverStep("a", "https://a/cover.jpg", nil, &calls)},
		[]DescriptionStrategy{descStep("work", Lookup{Description: "Text.", CoverURL: "https://work/broken.jpg"}, nil, &calls)},
		&fakeProber{}, testLogger(),
	)

	book, trace := f.Enrich(context.Background(), domain.Candidate{Title: "Dune", Author: "Frank Herbert"})

	assert.Equal(t, "https://a/cover.jpg", book.CoverURL)
	assert.Empty(t, book.CoverBlurHash, "blurhash disabled")
	assert.Len(t, trace.Covers, 1)
}

func TestEnrich_UsesCandidateCoverWhenLookupHasNone(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "work lookup failed", err: errors.New("404 not found")},
		{name: "work lookup skipped", err: ErrSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			prober := &fakeProber{}
			f := New(
				[]CoverStrategy{coverStep("a", "https://a/cover.jpg", nil, &calls)},
				[]DescriptionStrategy{descStep("work", Lookup{}, tt.err, &calls)},
				prober, testLogger(),
			)

			book, trace := f.Enrich(context.Background(), domain.Candidate{
				Title:    "Dune",
				Author:   "Frank Herbert",
				CoverID:  99,
				CoverURL: "https://covers/b/id/99-L.jpg",
			})

			assert.Equal(t, "https://covers/b/id/99-L.jpg", book.CoverURL)
			assert.Equal(t, []string{"work"}, calls, "cover chain not needed")
			assert.Equal(t, []string{"https://covers/b/id/99-L.jpg"}, prober.probed)
			assert.Empty(t, trace.Covers)
		})
	}
}

func TestEnrich_BrokenCandidateCoverRunsCoverChain(t *testing.T) {
	var calls []string
	prober := &fakeProber{}
	f := New(
		[]CoverStrategy{coverStep("a", "https://a/cover.jpg", nil, &calls)},
		[]DescriptionStrategy{descStep("work", Lookup{CoverURL: "https://work/broken.jpg"}, nil, &calls)},
		prober, testLogger(),
	)

	book, trace := f.Enrich(context.Background(), domain.Candidate{
		Title:    "Dune",
		CoverURL: "https://covers/broken-L.jpg",
	})

	assert.Equal(t, "https://a/cover.jpg", book.CoverURL)
	assert.Equal(t, []string{
		"https://work/broken.jpg",
		"https://covers/broken-L.jpg",
		"https://a/cover.jpg",
	}, prober.probed)
	assert.Len(t, trace.Covers, 1)
}
