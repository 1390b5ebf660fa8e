// Command api serves the Bookshelf HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/di"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := di.NewContainer()
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "bookshelf: %v\n", err)
		os.Exit(1)
	}
	log := do.MustInvoke[*slog.Logger](injector)

	<-ctx.Done()
	stop()
	log.Info("shutting down")

	// do closes handles in reverse dependency order: HTTP server first,
	// then search sessions, event stream, index and database.
	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown incomplete", "error", err)
		os.Exit(1)
	}
	log.Info("shelf closed")
}
