package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/enrich"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/searchbox"
	"github.com/bookshelfapp/bookshelf-server/internal/sse"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// SessionService manages search box sessions.
type SessionService struct {
	registry *searchbox.Registry
	logger   *slog.Logger
}

// NewSessionService creates a session service over registry.
func NewSessionService(registry *searchbox.Registry, logger *slog.Logger) *SessionService {
	return &SessionService{registry: registry, logger: logger}
}

// StateNotifier returns the registry callback that pushes each session's
// state to its SSE subscribers.
func StateNotifier(emitter store.EventEmitter) func(sessionID string, snap searchbox.Snapshot) {
	return func(sessionID string, snap searchbox.Snapshot) {
		emitter.Emit(sse.NewSearchStateEvent(sessionID, snap))
	}
}

// Open starts a new search session.
func (s *SessionService) Open(_ context.Context) (string, searchbox.Snapshot, error) {
	sessionID, ctrl, err := s.registry.Open()
	if err != nil {
		return "", searchbox.Snapshot{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to open search session")
	}
	return sessionID, ctrl.Snapshot(), nil
}

// State returns the current state of a session.
func (s *SessionService) State(_ context.Context, sessionID string) (searchbox.Snapshot, error) {
	ctrl, err := s.controller(sessionID)
	if err != nil {
		return searchbox.Snapshot{}, err
	}
	return ctrl.Snapshot(), nil
}

// Query feeds a keystroke into a session.
func (s *SessionService) Query(_ context.Context, sessionID, query string) (searchbox.Snapshot, error) {
	ctrl, err := s.controller(sessionID)
	if err != nil {
		return searchbox.Snapshot{}, err
	}
	return ctrl.Input(query), nil
}

// Select adds the shown result at index to the catalogue.
func (s *SessionService) Select(ctx context.Context, sessionID string, index int) (domain.Book, enrich.Trace, error) {
	ctrl, err := s.controller(sessionID)
	if err != nil {
		return domain.Book{}, enrich.Trace{}, err
	}

	book, trace, err := ctrl.Select(ctx, index)
	switch {
	case err == nil:
		return book, trace, nil
	case errors.Is(err, searchbox.ErrNoSuchResult):
		return domain.Book{}, trace, domainerrors.Validationf("no result at index %d", index)
	case errors.Is(err, searchbox.ErrSelecting):
		return domain.Book{}, trace, domainerrors.Conflictf("session %s is already adding a book", sessionID)
	default:
		return domain.Book{}, trace, err
	}
}

// Close ends a session. Closing an unknown session is not an error.
func (s *SessionService) Close(_ context.Context, sessionID string) {
	s.registry.Close(sessionID)
}

func (s *SessionService) controller(sessionID string) (*searchbox.Controller, error) {
	ctrl, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, domainerrors.NotFoundf("search session %s not found", sessionID)
	}
	return ctrl, nil
}
