package service

import (
	"context"
	"fmt"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// knownPrideCover is a cover that is known to load.
const knownPrideCover = "https://covers.openlibrary.org/b/id/12645114-L.jpg"

type sampleBook struct {
	input     domain.BookInput
	lookupArt bool
}

var sampleBooks = []sampleBook{
	{input: domain.BookInput{
		Title: "The Hobbit", Author: "J.R.R. Tolkien", Pages: 295, Genre: "Fantasy", Read: true,
		Description: "A fantasy novel about the adventures of Bilbo Baggins.",
	}, lookupArt: true},
	{input: domain.BookInput{
		Title: "1984", Author: "George Orwell", Pages: 328, Genre: "Science Fiction",
		Description: "A dystopian novel about totalitarian surveillance society.",
	}, lookupArt: true},
	{input: domain.BookInput{
		Title: "Pride and Prejudice", Author: "Jane Austen", Pages: 432, Genre: "Romance", Read: true,
		Description: "A romantic novel about the Bennet sisters in 19th century England.",
		CoverURL:    knownPrideCover,
	}},
	{input: domain.BookInput{
		Title: "Dune", Author: "Frank Herbert", Pages: 412, Genre: "Science Fiction",
		Description: "A science fiction masterpiece about a desert planet, political intrigue, and a young heir's journey to power.",
	}, lookupArt: true},
}

// SeedSampleBooks adds the sample catalogue. All covers are resolved
// before the first book is added, so the books land together.
func (s *BookService) SeedSampleBooks(ctx context.Context) error {
	inputs := make([]domain.BookInput, len(sampleBooks))
	for i, sb := range sampleBooks {
		in := sb.input
		if sb.lookupArt && s.fetcher != nil {
			in.CoverURL, _ = s.fetcher.FetchCover(ctx, in.Title, in.Author)
		}
		if s.fetcher != nil {
			in.BlurHash = s.fetcher.CoverBlurHash(ctx, in.CoverURL)
		}
		inputs[i] = in
	}

	for _, in := range inputs {
		if err := s.library.Add(domain.NewBook(in)); err != nil {
			return fmt.Errorf("seed %q: %w", in.Title, err)
		}
	}

	s.logger.Info("seeded sample books", "count", len(inputs))
	return nil
}
