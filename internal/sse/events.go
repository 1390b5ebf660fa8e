// Package sse implements Server-Sent Events for catalogue refreshes and
// search box state.
package sse

import (
	"errors"
	"strings"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/searchbox"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventLibraryChanged tells clients to re-render the catalogue.
	EventLibraryChanged EventType = "library.changed"
	// EventSearchState carries a search box snapshot to its session.
	EventSearchState EventType = "search.state"
	// EventThemeChanged announces a new saved theme.
	EventThemeChanged EventType = "preferences.theme"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// ErrClosed is returned by Connect after Shutdown.
var ErrClosed = errors.New("event stream closed")

// Topic groups event types for subscription filters.
type Topic string

// Topics a client can subscribe to.
const (
	TopicLibrary Topic = "library"
	TopicSearch  Topic = "search"
	TopicTheme   Topic = "theme"
)

// Topic returns the topic an event type belongs to. Heartbeats have none
// and reach every client.
func (t EventType) Topic() Topic {
	switch t {
	case EventLibraryChanged:
		return TopicLibrary
	case EventSearchState:
		return TopicSearch
	case EventThemeChanged:
		return TopicTheme
	default:
		return ""
	}
}

// ParseTopics reads a comma-separated topic list, skipping unknown names.
func ParseTopics(s string) []Topic {
	var topics []Topic
	for part := range strings.SplitSeq(s, ",") {
		switch t := Topic(strings.ToLower(strings.TrimSpace(part))); t {
		case TopicLibrary, TopicSearch, TopicTheme:
			topics = append(topics, t)
		}
	}
	return topics
}

// LibraryAction names the mutation behind a library.changed event.
type LibraryAction string

// Library mutations.
const (
	ActionAdded       LibraryAction = "added"
	ActionRemoved     LibraryAction = "removed"
	ActionReadToggled LibraryAction = "read_toggled"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	// ID is assigned at dispatch and written as the SSE id field.
	ID        uint64    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// SessionID restricts delivery to clients watching that search session.
	// Empty means broadcast to all.
	SessionID string `json:"-"`
}

// LibraryChangedEventData is the payload for library.changed.
// Book is nil for removals.
type LibraryChangedEventData struct {
	Book   *domain.Book  `json:"book,omitempty"`
	Action LibraryAction `json:"action"`
	BookID string        `json:"book_id"`
	Count  int           `json:"count"`
}

// SearchStateEventData is the payload for search.state.
type SearchStateEventData struct {
	SessionID string             `json:"session_id"`
	State     searchbox.Snapshot `json:"state"`
}

// ThemeChangedEventData is the payload for preferences.theme.
type ThemeChangedEventData struct {
	Theme domain.Theme `json:"theme"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewLibraryChangedEvent creates a library.changed event.
// count is the catalogue size after the change.
func NewLibraryChangedEvent(action LibraryAction, bookID string, book *domain.Book, count int) Event {
	return Event{
		Type: EventLibraryChanged,
		Data: LibraryChangedEventData{
			Book:   book,
			Action: action,
			BookID: bookID,
			Count:  count,
		},
		Timestamp: time.Now(),
	}
}

// NewSearchStateEvent creates a search.state event for one session.
func NewSearchStateEvent(sessionID string, snap searchbox.Snapshot) Event {
	return Event{
		Type:      EventSearchState,
		Data:      SearchStateEventData{SessionID: sessionID, State: snap},
		Timestamp: time.Now(),
		SessionID: sessionID,
	}
}

// NewThemeChangedEvent creates a preferences.theme event.
func NewThemeChangedEvent(theme domain.Theme) Event {
	return Event{
		Type:      EventThemeChanged,
		Data:      ThemeChangedEventData{Theme: theme},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
