package searchbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/id"
)

// DefaultIdleTimeout closes sessions nobody has touched for this long.
const DefaultIdleTimeout = 30 * time.Minute

type session struct {
	ctrl *Controller
	// reaper fires once the session has been idle for the registry's timeout.
	reaper *Debouncer
}

// Registry holds one Controller per open search session.
type Registry struct {
	ctx      context.Context
	cancel   context.CancelFunc
	sessions map[string]*session
	notify   func(sessionID string, snap Snapshot)
	logger   *slog.Logger
	deps     Deps
	debounce time.Duration
	idle     time.Duration
	limit    int
	mu       sync.RWMutex
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTimeout sets how long an untouched session lives. Zero or less
// keeps sessions until they are closed.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		r.idle = d
	}
}

// NewRegistry creates an empty registry. deps.Notify is ignored; state
// changes go to notify with the session ID instead.
func NewRegistry(deps Deps, debounce time.Duration, limit int, notify func(sessionID string, snap Snapshot), opts ...RegistryOption) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	if notify == nil {
		notify = func(string, Snapshot) {}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
		notify:   notify,
		logger:   logger,
		deps:     deps,
		debounce: debounce,
		idle:     DefaultIdleTimeout,
		limit:    limit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open starts a new session.
func (r *Registry) Open() (string, *Controller, error) {
	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return "", nil, err
	}

	deps := r.deps
	deps.Notify = func(snap Snapshot) { r.notify(sessionID, snap) }
	ctrl := NewController(r.ctx, deps, r.debounce, r.limit)
	sess := &session{ctrl: ctrl}
	if r.idle > 0 {
		sess.reaper = NewDebouncer(r.idle, r.deps.Clock)
	}

	r.mu.Lock()
	r.sessions[sessionID] = sess
	total := len(r.sessions)
	r.mu.Unlock()
	r.touch(sessionID, sess)

	r.logger.Debug("search session opened", "session_id", sessionID, "total_sessions", total)
	return sessionID, ctrl, nil
}

// Get returns the controller for a session and restarts its idle timer.
// Malformed IDs miss without taking the lock.
func (r *Registry) Get(sessionID string) (*Controller, bool) {
	if !id.Has(sessionID, id.PrefixSession) {
		return nil, false
	}
	r.mu.RLock()
	sess, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	r.touch(sessionID, sess)
	return sess.ctrl, true
}

// Close ends a session. It reports whether the session existed.
func (r *Registry) Close(sessionID string) bool {
	if !r.remove(sessionID, nil) {
		return false
	}
	r.logger.Debug("search session closed", "session_id", sessionID)
	return true
}

func (r *Registry) touch(sessionID string, sess *session) {
	if sess.reaper == nil {
		return
	}
	sess.reaper.Trigger(func() {
		if r.remove(sessionID, sess) {
			r.logger.Info("search session expired", "session_id", sessionID, "idle", r.idle)
		}
	})
}

// remove deletes a session. A non-nil want must still be the registered one.
func (r *Registry) remove(sessionID string, want *session) bool {
	r.mu.Lock()
	sess, ok := r.sessions[sessionID]
	if ok && want != nil && sess != want {
		ok = false
	}
	if ok {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()

	if ok {
		sess.close()
	}
	return ok
}

func (s *session) close() {
	if s.reaper != nil {
		s.reaper.Cancel()
	}
	s.ctrl.Close()
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Shutdown closes every session and cancels in-flight queries.
func (r *Registry) Shutdown(_ context.Context) error {
	r.cancel()

	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
	r.logger.Info("search sessions closed", "count", len(sessions))
	return nil
}
