// Package di provides dependency injection configuration for the Bookshelf server.
package di

import (
	"fmt"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/di/providers"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvidePreferences)
	do.Provide(injector, providers.ProvideLibrary)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Metadata layer
	do.Provide(injector, providers.ProvideGetter)
	do.Provide(injector, providers.ProvideOpenLibraryClient)
	do.Provide(injector, providers.ProvideGoogleBooksClient)
	do.Provide(injector, providers.ProvideFetcher)
	do.Provide(injector, providers.ProvideMetadataService)

	// Business services
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideSearchBoxRegistry)
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideSettingsService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap builds the graph, seeds the catalogue and starts listening.
// Resolving a service resolves everything beneath it, so only the leaves
// are named here.
func Bootstrap(injector *do.RootScope) error {
	for _, step := range []func(do.Injector) error{
		resolve[*config.Config],
		resolve[*slog.Logger],
		resolve[*service.BookService],
		resolve[*service.SearchService],
		resolve[*service.SettingsService],
		resolve[*service.SessionService],
		resolve[*providers.RegistryHandle],
	} {
		if err := step(injector); err != nil {
			return err
		}
	}

	// Samples go in before the server accepts requests.
	providers.SeedSampleBooksIfEnabled(injector)
	providers.ReindexIfStale(injector)

	return resolve[*providers.HTTPServerHandle](injector)
}

func resolve[T any](i do.Injector) error {
	if _, err := do.Invoke[T](i); err != nil {
		var zero T
		return fmt.Errorf("resolve %T: %w", zero, err)
	}
	return nil
}
