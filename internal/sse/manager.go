package sse

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/id"
)

const (
	clientBuffer = 100
	queueSize    = 1000
	// historySize bounds the broadcast events kept for Last-Event-ID resume.
	historySize = 64
)

// Subscription describes what a connecting client wants to receive.
type Subscription struct {
	// SessionID also subscribes to that search session's state events.
	SessionID string
	// Topics limits delivery; empty means every topic.
	Topics []Topic
	// LastEventID replays buffered broadcast events newer than this ID.
	LastEventID uint64
}

// Client is one connected event stream.
type Client struct {
	ConnectedAt time.Time
	ID          string
	SessionID   string

	topics map[Topic]bool
	events chan Event
	done   chan struct{}
}

// Events yields events for this client. It is closed on disconnect.
func (c *Client) Events() <-chan Event { return c.events }

// Done is closed when the manager drops the client.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) wants(evt Event) bool {
	if evt.SessionID != "" && evt.SessionID != c.SessionID {
		return false
	}
	return len(c.topics) == 0 || c.topics[evt.Type.Topic()]
}

func (c *Client) close() {
	close(c.done)
	close(c.events)
}

// Manager fans queued events out to connected clients.
type Manager struct {
	logger *slog.Logger
	queue  chan Event

	mu      sync.Mutex
	clients map[string]*Client
	history []Event
	lastID  uint64
	started bool
	closed  bool
	stopped chan struct{}
}

// NewManager creates a Manager. Call Start to begin delivery.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:  logger,
		queue:   make(chan Event, queueSize),
		clients: make(map[string]*Client),
		stopped: make(chan struct{}),
	}
}

// Start delivers queued events until ctx is canceled or Shutdown drains
// the queue. It blocks; run it in its own goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()
	defer close(m.stopped)

	m.logger.Info("event stream started")
	for {
		select {
		case evt, ok := <-m.queue:
			if !ok {
				return
			}
			m.dispatch(evt)
		case <-ctx.Done():
			m.dropAll()
			return
		}
	}
}

// Shutdown stops accepting events, delivers what is queued and closes
// every client. Calling it twice is a no-op.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	started := m.started
	m.mu.Unlock()

	if !started {
		for evt := range m.queue {
			m.dispatch(evt)
		}
	} else {
		select {
		case <-m.stopped:
		case <-ctx.Done():
			m.logger.Warn("event drain timed out")
		}
	}

	m.dropAll()
	m.logger.Info("event stream stopped")
	return nil
}

// Emit queues an event. It satisfies store.EventEmitter; values that are
// not an Event are logged and ignored.
func (m *Manager) Emit(event any) {
	evt, ok := event.(Event)
	if !ok {
		m.logger.Error("ignoring non-event emission", slog.Any("value", event))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case m.queue <- evt:
	default:
		m.logger.Error("event queue full, dropping event", slog.String("event_type", string(evt.Type)))
	}
}

// Connect registers a client and replays any buffered broadcast events
// newer than sub.LastEventID that match its filters.
func (m *Manager) Connect(sub Subscription) (*Client, error) {
	clientID, err := id.Generate(id.PrefixClient)
	if err != nil {
		return nil, err
	}

	c := &Client{
		ConnectedAt: time.Now(),
		ID:          clientID,
		SessionID:   sub.SessionID,
		events:      make(chan Event, clientBuffer),
		done:        make(chan struct{}),
	}
	if len(sub.Topics) > 0 {
		c.topics = make(map[Topic]bool, len(sub.Topics))
		for _, t := range sub.Topics {
			c.topics[t] = true
		}
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	replayed := 0
	if sub.LastEventID > 0 {
		for _, evt := range m.history {
			if evt.ID > sub.LastEventID && c.wants(evt) {
				c.events <- evt
				replayed++
			}
		}
	}
	m.clients[c.ID] = c
	total := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("stream client connected",
		slog.String("client_id", c.ID),
		slog.String("session_id", c.SessionID),
		slog.Int("replayed", replayed),
		slog.Int("total_clients", total))
	return c, nil
}

// Disconnect removes a client. Unknown IDs are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	c, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
		c.close()
	}
	total := len(m.clients)
	m.mu.Unlock()

	if ok {
		m.logger.Info("stream client disconnected",
			slog.String("client_id", clientID),
			slog.Duration("duration", time.Since(c.ConnectedAt)),
			slog.Int("total_clients", total))
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// LastEventID returns the ID of the most recently dispatched event.
func (m *Manager) LastEventID() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastID
}

func (m *Manager) dispatch(evt Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	evt.ID = m.lastID
	if evt.SessionID == "" {
		if len(m.history) == historySize {
			m.history = slices.Delete(m.history, 0, 1)
		}
		m.history = append(m.history, evt)
	}

	var delivered, dropped int
	for _, c := range m.clients {
		if !c.wants(evt) {
			continue
		}
		select {
		case c.events <- evt:
			delivered++
		default:
			dropped++
			m.logger.Warn("slow client, event dropped",
				slog.String("client_id", c.ID),
				slog.String("event_type", string(evt.Type)))
		}
	}

	m.logger.Debug("event dispatched",
		slog.Uint64("id", evt.ID),
		slog.String("event_type", string(evt.Type)),
		slog.Int("delivered", delivered),
		slog.Int("dropped", dropped))
}

func (m *Manager) dropAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, c := range m.clients {
		c.close()
		delete(m.clients, key)
	}
}
