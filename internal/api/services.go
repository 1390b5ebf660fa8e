package api

import (
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Book     *service.BookService
	Metadata *service.MetadataService // Lookup, covers, classify, summarize
	Session  *service.SessionService  // Debounced search boxes
	Search   *service.SearchService   // Catalogue full-text search
	Settings *service.SettingsService // Theme preference
}

// HealthChecks exposes component probes to the health endpoint.
// Any field may be nil.
type HealthChecks struct {
	Preferences func() error
	BookCount   func() int
	IndexCount  func() (uint64, error)
}
