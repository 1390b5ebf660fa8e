package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/enrich"
	"github.com/bookshelfapp/bookshelf-server/internal/media/covers"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata/googlebooks"
	"github.com/bookshelfapp/bookshelf-server/internal/metadata/openlibrary"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// ProvideGetter provides the shared upstream JSON getter.
func ProvideGetter(i do.Injector) (*metadata.Getter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	var opts []metadata.Option
	if cfg.Metadata.RelayURL != "" {
		opts = append(opts, metadata.WithRelay(cfg.Metadata.RelayURL))
		log.Info("Routing metadata requests through relay", "relay", cfg.Metadata.RelayURL)
	}

	return metadata.NewGetter(cfg.Metadata.Timeout, log, opts...), nil
}

// ProvideOpenLibraryClient provides the OpenLibrary client.
func ProvideOpenLibraryClient(i do.Injector) (*openlibrary.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	get := do.MustInvoke[*metadata.Getter](i)

	return openlibrary.New(get, cfg.Metadata.OpenLibraryURL, cfg.Metadata.CoversURL, log), nil
}

// ProvideGoogleBooksClient provides the Google Books client.
func ProvideGoogleBooksClient(i do.Injector) (*googlebooks.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	get := do.MustInvoke[*metadata.Getter](i)

	return googlebooks.New(get, cfg.Metadata.GoogleBooksURL, log), nil
}

// ProvideFetcher provides the cover and description enrichment chains.
func ProvideFetcher(i do.Injector) (*enrich.Fetcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	ol := do.MustInvoke[*openlibrary.Client](i)
	gb := do.MustInvoke[*googlebooks.Client](i)

	prober := covers.NewProber(nil, log)

	return enrich.New(
		enrich.DefaultCoverStrategies(ol, gb),
		enrich.DefaultDescriptionStrategies(ol, gb),
		prober,
		log,
		enrich.WithBlurHash(cfg.Metadata.ComputeBlurHash),
	), nil
}

// ProvideMetadataService provides the lookup, classify, and summarize service.
func ProvideMetadataService(i do.Injector) (*service.MetadataService, error) {
	log := do.MustInvoke[*slog.Logger](i)
	ol := do.MustInvoke[*openlibrary.Client](i)
	fetcher := do.MustInvoke[*enrich.Fetcher](i)

	return service.NewMetadataService(ol, fetcher, log), nil
}
