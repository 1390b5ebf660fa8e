package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/enrich"
	"github.com/bookshelfapp/bookshelf-server/internal/searchbox"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// ProvideBookService provides the catalogue service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	library := do.MustInvoke[*store.Library](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	fetcher := do.MustInvoke[*enrich.Fetcher](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewBookService(library, indexHandle.SearchIndex, fetcher, log), nil
}

// RegistryHandle wraps the search box registry with shutdown capability.
type RegistryHandle struct {
	*searchbox.Registry
}

// Shutdown implements do.Shutdownable.
func (h *RegistryHandle) Shutdown() error {
	return stopWithin(h.Registry.Shutdown)
}

// ProvideSearchBoxRegistry provides the per-session search box registry.
func ProvideSearchBoxRegistry(i do.Injector) (*RegistryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	library := do.MustInvoke[*store.Library](i)
	metadataService := do.MustInvoke[*service.MetadataService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	registry := searchbox.NewRegistry(searchbox.Deps{
		Searcher:  metadataService,
		Enricher:  metadataService,
		Committer: library,
		Clock:     searchbox.RealClock(),
		Logger:    log,
	}, cfg.Search.Debounce, cfg.Search.Limit, service.StateNotifier(sseHandle.Manager),
		searchbox.WithIdleTimeout(cfg.Search.SessionTTL))

	log.Info("Search box registry ready",
		"debounce", cfg.Search.Debounce,
		"limit", cfg.Search.Limit,
		"session_ttl", cfg.Search.SessionTTL,
	)

	return &RegistryHandle{Registry: registry}, nil
}

// ProvideSessionService provides the search session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	registryHandle := do.MustInvoke[*RegistryHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewSessionService(registryHandle.Registry, log), nil
}

// ProvideSettingsService provides the theme preference service.
func ProvideSettingsService(i do.Injector) (*service.SettingsService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	prefsHandle := do.MustInvoke[*PreferencesHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewSettingsService(prefsHandle.Preferences, domain.Theme(cfg.Library.DefaultTheme), log), nil
}

// SeedSampleBooksIfEnabled adds the sample catalogue when configured to.
func SeedSampleBooksIfEnabled(i do.Injector) {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.Library.SeedSamples {
		return
	}

	bookService := do.MustInvoke[*service.BookService](i)
	log := do.MustInvoke[*slog.Logger](i)

	if err := bookService.SeedSampleBooks(context.Background()); err != nil {
		log.Error("Failed to seed sample books", "error", err)
		return
	}
	log.Info("Sample books added")
}
