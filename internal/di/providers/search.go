package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/search"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the in-memory Bleve index and wires it to the library.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*slog.Logger](i)
	library := do.MustInvoke[*store.Library](i)

	index, err := search.NewSearchIndex(log)
	if err != nil {
		return nil, err
	}

	// Library mutations keep the index current.
	library.SetSearchIndexer(index)

	log.Info("Search index initialized")

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideSearchService provides the catalogue search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	library := do.MustInvoke[*store.Library](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewSearchService(indexHandle.SearchIndex, library, log), nil
}

// ReindexIfStale rebuilds the index when it has drifted from the library.
func ReindexIfStale(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	library := do.MustInvoke[*store.Library](i)
	log := do.MustInvoke[*slog.Logger](i)

	docCount, err := indexHandle.DocumentCount()
	if err == nil && docCount == uint64(library.Len()) {
		return
	}

	log.Info("Search index out of step with library, rebuilding",
		"documents", docCount,
		"books", library.Len(),
	)
	if err := searchService.ReindexAll(context.Background()); err != nil {
		log.Error("Search reindex failed", "error", err)
	}
}
