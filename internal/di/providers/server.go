package providers

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/api"
	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	return stopWithin(h.Server.Shutdown)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	prefsHandle := do.MustInvoke[*PreferencesHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	library := do.MustInvoke[*store.Library](i)

	services := &api.Services{
		Book:     do.MustInvoke[*service.BookService](i),
		Metadata: do.MustInvoke[*service.MetadataService](i),
		Session:  do.MustInvoke[*service.SessionService](i),
		Search:   do.MustInvoke[*service.SearchService](i),
		Settings: do.MustInvoke[*service.SettingsService](i),
	}

	health := api.HealthChecks{
		Preferences: prefsHandle.Ping,
		BookCount:   library.Len,
		IndexCount:  indexHandle.DocumentCount,
	}

	handler := api.NewServer(services, health, sseHandle.Manager, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Version:        Version,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Bind before returning so a taken port fails Bootstrap.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		log.Info("listening", "addr", ln.Addr().String(), "version", Version)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
