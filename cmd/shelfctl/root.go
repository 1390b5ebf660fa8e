package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/enrich"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/media/covers"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata/googlebooks"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata/openlibrary"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	output         string
	openLibraryURL string
	coversURL      string
	googleBooksURL string
	relayURL       string
	timeout        time.Duration
	verbose        bool
}

// prober is swapped in tests so cover checks stay offline.
var newProber = func(log *slog.Logger) enrich.Prober {
	return covers.NewProber(nil, log)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "shelfctl",
		Short:         "Look up, classify, and summarize books against OpenLibrary and Google Books",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if opts.output != formatJSON && opts.output != formatYAML {
				return fmt.Errorf("unsupported output %q (use json or yaml)", opts.output)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.output, "output", "o", formatJSON, "output format: json or yaml")
	flags.StringVar(&opts.openLibraryURL, "openlibrary-url", envOr("OPENLIBRARY_URL", config.DefaultOpenLibraryURL), "OpenLibrary base URL")
	flags.StringVar(&opts.coversURL, "covers-url", envOr("OPENLIBRARY_COVERS_URL", config.DefaultCoversURL), "OpenLibrary covers base URL")
	flags.StringVar(&opts.googleBooksURL, "google-books-url", envOr("GOOGLE_BOOKS_URL", config.DefaultGoogleBooksURL), "Google Books API base URL")
	flags.StringVar(&opts.relayURL, "relay", os.Getenv("METADATA_RELAY_URL"), "relay URL prefix for upstream requests")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "upstream request timeout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log upstream attempts to stderr")

	cmd.AddCommand(
		newLookupCmd(opts),
		newEnrichCmd(opts),
		newCoverCmd(opts),
		newClassifyCmd(opts),
		newSummarizeCmd(opts),
	)
	return cmd
}

// metadataService builds the same lookup pipeline the server uses.
func (o *options) metadataService(cmd *cobra.Command) *service.MetadataService {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	log := logger.New(logger.Config{Writer: cmd.ErrOrStderr(), Level: level, NoColor: true})

	var getOpts []metadata.Option
	if o.relayURL != "" {
		getOpts = append(getOpts, metadata.WithRelay(o.relayURL))
	}
	get := metadata.NewGetter(o.timeout, log, getOpts...)

	ol := openlibrary.New(get, o.openLibraryURL, o.coversURL, log)
	gb := googlebooks.New(get, o.googleBooksURL, log)
	fetcher := enrich.New(
		enrich.DefaultCoverStrategies(ol, gb),
		enrich.DefaultDescriptionStrategies(ol, gb),
		newProber(log),
		log,
		enrich.WithBlurHash(false),
	)
	return service.NewMetadataService(ol, fetcher, log)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
