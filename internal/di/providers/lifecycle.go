package providers

import (
	"context"
	"time"
)

// shutdownTimeout bounds each handle's graceful stop.
const shutdownTimeout = 30 * time.Second

// stopWithin runs stop with a fresh shutdownTimeout context. do calls
// Shutdown without a context, so each handle builds its own.
func stopWithin(stop func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return stop(ctx)
}
