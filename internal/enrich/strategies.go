package enrich

import (
	"context"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata/googlebooks"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata/openlibrary"
)

// Strategy names, as they appear in attempt traces.
const (
	StrategyOpenLibrary      = "openlibrary"
	StrategyOpenLibraryTitle = "openlibrary-title"
	StrategyOpenLibraryWork  = "openlibrary-work"
	StrategyOpenLibraryISBN  = "openlibrary-isbn"
	StrategyGoogleBooks      = "googlebooks"
)

// DefaultCoverStrategies is the standard cover chain: OpenLibrary with
// title and author, OpenLibrary with the title alone, then Google Books.
func DefaultCoverStrategies(ol *openlibrary.Client, gb *googlebooks.Client) []CoverStrategy {
	return []CoverStrategy{
		{
			Name: StrategyOpenLibrary,
			Find: func(ctx context.Context, title, author string) (string, error) {
				docs, err := ol.Search(ctx, title+" "+author, 1)
				if err != nil {
					return "", err
				}
				return openLibraryCover(ctx, ol, docs)
			},
		},
		{
			Name: StrategyOpenLibraryTitle,
			Find: func(ctx context.Context, title, _ string) (string, error) {
				docs, err := ol.SearchTitle(ctx, title, 1)
				if err != nil {
					return "", err
				}
				return openLibraryCover(ctx, ol, docs)
			},
		},
		{
			Name: StrategyGoogleBooks,
			Find: func(ctx context.Context, title, author string) (string, error) {
				volumes, err := gb.Search(ctx, title+" "+author, 1)
				if err != nil || len(volumes) == 0 {
					return "", err
				}
				return volumes[0].Thumbnail(), nil
			},
		},
	}
}

// openLibraryCover picks the search hit's cover, else its work's first cover.
func openLibraryCover(ctx context.Context, ol *openlibrary.Client, docs []domain.Candidate) (string, error) {
	if len(docs) == 0 {
		return "", nil
	}
	doc := docs[0]
	if doc.CoverID > 0 {
		return ol.CoverURL(doc.CoverID, openlibrary.SizeLarge), nil
	}
	if doc.Key == "" {
		return "", nil
	}

	work, err := ol.Work(ctx, doc.Key)
	if err != nil {
		return "", err
	}
	if id, ok := work.FirstCover(); ok {
		return ol.CoverURL(id, openlibrary.SizeLarge), nil
	}
	return "", nil
}

// DefaultDescriptionStrategies is the standard description chain: the
// work record, the edition for the first ISBN, then Google Books.
func DefaultDescriptionStrategies(ol *openlibrary.Client, gb *googlebooks.Client) []DescriptionStrategy {
	return []DescriptionStrategy{
		{
			Name: StrategyOpenLibraryWork,
			Fetch: func(ctx context.Context, c domain.Candidate) (Lookup, error) {
				if c.Key == "" {
					return Lookup{}, ErrSkipped
				}
				work, err := ol.Work(ctx, c.Key)
				if err != nil {
					return Lookup{}, err
				}
				found := Lookup{
					Description: work.Description.String(),
					Subjects:    work.Subjects,
					Pages:       work.NumberOfPages,
				}
				if id, ok := work.FirstCover(); ok {
					found.CoverURL = ol.CoverURL(id, openlibrary.SizeLarge)
				}
				return found, nil
			},
		},
		{
			Name: StrategyOpenLibraryISBN,
			Fetch: func(ctx context.Context, c domain.Candidate) (Lookup, error) {
				isbn := c.FirstISBN()
				if isbn == "" {
					return Lookup{}, ErrSkipped
				}
				edition, err := ol.Edition(ctx, isbn)
				if err != nil {
					return Lookup{}, err
				}
				return Lookup{
					Description: edition.Description.String(),
					Subjects:    edition.Subjects,
					Pages:       edition.NumberOfPages,
				}, nil
			},
		},
		{
			Name: StrategyGoogleBooks,
			Fetch: func(ctx context.Context, c domain.Candidate) (Lookup, error) {
				if strings.TrimSpace(c.Title) == "" {
					return Lookup{}, ErrSkipped
				}
				volumes, err := gb.Search(ctx, c.Title+" "+c.Author, 1)
				if err != nil {
					return Lookup{}, err
				}
				if len(volumes) == 0 {
					return Lookup{}, nil
				}
				return Lookup{
					Description: volumes[0].VolumeInfo.Description,
					CoverURL:    volumes[0].Thumbnail(),
				}, nil
			},
		},
	}
}
