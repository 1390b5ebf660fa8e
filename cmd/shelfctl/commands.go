package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/enrich"
)

func newLookupCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "lookup <query>",
		Short: "Search OpenLibrary for candidate books",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := opts.metadataService(cmd)
			candidates, err := svc.Lookup(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, candidates)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of candidates (max 20)")
	return cmd
}

// enrichResult is a looked-up book plus how it was assembled.
type enrichResult struct {
	Book  domain.Book  `json:"book"`
	Trace enrich.Trace `json:"trace"`
}

func newEnrichCmd(opts *options) *cobra.Command {
	var pick int
	cmd := &cobra.Command{
		Use:   "enrich <query>",
		Short: "Look up a book and build the full catalogue record for one candidate",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := opts.metadataService(cmd)
			candidates, err := svc.Lookup(cmd.Context(), strings.Join(args, " "), pick+1)
			if err != nil {
				return err
			}
			if pick < 0 || pick >= len(candidates) {
				return fmt.Errorf("no candidate at position %d (%d found)", pick, len(candidates))
			}
			book, trace := svc.Enrich(cmd.Context(), candidates[pick])
			return render(cmd.OutOrStdout(), opts.output, enrichResult{Book: book, Trace: trace})
		},
	}
	cmd.Flags().IntVar(&pick, "pick", 0, "zero-based candidate to enrich")
	return cmd
}

func newCoverCmd(opts *options) *cobra.Command {
	var title, author string
	cmd := &cobra.Command{
		Use:   "cover",
		Short: "Run the cover fallback chain for a title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := opts.metadataService(cmd)
			result, err := svc.FindCover(cmd.Context(), title, author)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, result)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newClassifyCmd(opts *options) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "classify [subject...]",
		Short: "Map subject headings to a catalogue genre",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := opts.metadataService(cmd)
			if list {
				return render(cmd.OutOrStdout(), opts.output, svc.Genres())
			}
			return render(cmd.OutOrStdout(), opts.output, svc.Classify(args))
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list every genre instead")
	return cmd
}

func newSummarizeCmd(opts *options) *cobra.Command {
	var year int
	var subjects []string
	cmd := &cobra.Command{
		Use:   "summarize [text]",
		Short: "Reduce a description to its first sentence (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(raw)
			}
			if strings.TrimSpace(text) == "" && year == 0 && len(subjects) == 0 {
				return errors.New("nothing to summarize")
			}

			svc := opts.metadataService(cmd)
			return render(cmd.OutOrStdout(), opts.output, svc.Summarize(text, year, subjects))
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "first publish year for the fallback text")
	cmd.Flags().StringSliceVar(&subjects, "subject", nil, "subject for the fallback text (repeatable)")
	return cmd
}
