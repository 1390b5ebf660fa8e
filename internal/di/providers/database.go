package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/sse"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// SSEManagerHandle owns the event stream's delivery goroutine.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown drains queued events to connected clients, then stops the
// delivery loop.
func (h *SSEManagerHandle) Shutdown() error {
	defer h.cancel()
	return stopWithin(h.Manager.Shutdown)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*slog.Logger](i)

	manager := sse.NewManager(log)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)


	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// PreferencesHandle wraps the preference store with shutdown capability.
type PreferencesHandle struct {
	*store.Preferences
}

// Shutdown implements do.Shutdownable.
func (h *PreferencesHandle) Shutdown() error {
	return h.Close()
}

// ProvidePreferences provides the BadgerDB-backed preference store.
func ProvidePreferences(i do.Injector) (*PreferencesHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	prefs, err := store.OpenPreferences(cfg.Storage.DataPath, log, sseHandle.Manager)
	if err != nil {
		return nil, err
	}

	if cfg.Storage.DataPath == "" {
		log.Info("Preferences kept in memory")
	} else {
		log.Info("Preferences database opened", "path", cfg.Storage.DataPath)
	}

	return &PreferencesHandle{Preferences: prefs}, nil
}

// ProvideLibrary provides the in-memory catalogue.
func ProvideLibrary(i do.Injector) (*store.Library, error) {
	log := do.MustInvoke[*slog.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	return store.NewLibrary(log, sseHandle.Manager), nil
}
