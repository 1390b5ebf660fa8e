package sse

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultHeartbeat = 30 * time.Second
	writeTimeout     = 60 * time.Second
	// retryMillis is the reconnect delay advertised to EventSource clients.
	retryMillis = 3000
)

// Handler serves the event stream at GET /api/v1/events.
//
// Query parameters:
//
//	session   also deliver search.state events for this search session
//	topics    comma-separated subset of library, search, theme
//
// A Last-Event-ID header (or last_event_id parameter) resumes after that ID.
type Handler struct {
	manager   *Manager
	logger    *slog.Logger
	heartbeat time.Duration
}

// NewHandler creates a Handler streaming from manager.
func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{manager: manager, logger: logger, heartbeat: defaultHeartbeat}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sub, err := subscriptionFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Error("event stream needs a flushable writer", slog.Any("error", err))
		return
	}

	client, err := h.manager.Connect(sub)
	if err != nil {
		h.logger.Warn("event stream unavailable", slog.Any("error", err))
		return
	}
	defer h.manager.Disconnect(client.ID)
	log := h.logger.With(slog.String("client_id", client.ID))

	if _, err := fmt.Fprintf(w, "retry: %d\n\n", retryMillis); err != nil {
		return
	}
	hello := map[string]any{
		"client_id":     client.ID,
		"session_id":    client.SessionID,
		"last_event_id": h.manager.LastEventID(),
	}
	if err := h.write(w, rc, 0, "connected", hello); err != nil {
		log.Debug("client gone before greeting", slog.Any("error", err))
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-client.Events():
			if !ok {
				return
			}
			if err := h.write(w, rc, evt.ID, string(evt.Type), evt); err != nil {
				log.Debug("client gone during send", slog.Any("error", err))
				return
			}
		case <-ticker.C:
			hb := NewHeartbeatEvent()
			if err := h.write(w, rc, 0, string(hb.Type), hb); err != nil {
				log.Debug("client gone during heartbeat", slog.Any("error", err))
				return
			}
		case <-client.Done():
			return
		case <-r.Context().Done():
			return
		}
	}
}

// write emits one SSE frame. A zero id omits the id field so the client's
// resume point only advances on dispatched events.
func (h *Handler) write(w io.Writer, rc *http.ResponseController, id uint64, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}
	if id > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}
	if err := rc.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Debug("write deadline not set", slog.Any("error", err))
	}
	return nil
}

func subscriptionFrom(r *http.Request) (Subscription, error) {
	q := r.URL.Query()
	sub := Subscription{
		SessionID: q.Get("session"),
		Topics:    ParseTopics(q.Get("topics")),
	}

	last := r.Header.Get("Last-Event-ID")
	if last == "" {
		last = q.Get("last_event_id")
	}
	if last != "" {
		n, err := strconv.ParseUint(last, 10, 64)
		if err != nil {
			return Subscription{}, fmt.Errorf("invalid last event id %q", last)
		}
		sub.LastEventID = n
	}
	return sub, nil
}
