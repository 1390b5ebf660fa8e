package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/sse"
)

// Keys are namespaced so the database can hold other state later.
const themeKey = "prefs:theme"

// Preferences is the persisted settings store.
type Preferences struct {
	db      *badger.DB
	logger  *slog.Logger
	emitter EventEmitter
}

// OpenPreferences opens the Badger database in dir. An empty dir keeps
// everything in memory.
func OpenPreferences(dir string, logger *slog.Logger, emitter EventEmitter) (*Preferences, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts = opts.WithSyncWrites(true).WithCompactL0OnClose(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &Preferences{db: db, logger: logger, emitter: emitter}, nil
}

// Close flushes and closes the database.
func (p *Preferences) Close() error {
	return p.db.Close()
}

// Ping reports whether the database can serve a read.
func (p *Preferences) Ping() error {
	if p.db.IsClosed() {
		return errors.New("preferences database closed")
	}
	return p.db.View(func(*badger.Txn) error { return nil })
}

// Theme returns the saved theme, or ErrNotFound when none was saved.
func (p *Preferences) Theme(_ context.Context) (domain.ThemePreference, error) {
	pref, err := load[domain.ThemePreference](p.db, themeKey)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return pref, notFound("theme", themeKey, "no theme saved")
	case err != nil:
		return pref, fmt.Errorf("read theme: %w", err)
	}
	return pref, nil
}

// SetTheme saves theme and announces it to stream clients.
func (p *Preferences) SetTheme(_ context.Context, theme domain.Theme) (domain.ThemePreference, error) {
	if !theme.Valid() {
		return domain.ThemePreference{}, invalid("theme", themeKey, fmt.Sprintf("unknown theme %q", theme))
	}

	pref := domain.ThemePreference{Theme: theme, UpdatedAt: time.Now().UTC()}
	if err := save(p.db, themeKey, pref); err != nil {
		return domain.ThemePreference{}, fmt.Errorf("write theme: %w", err)
	}

	p.logger.Debug("theme persisted", "theme", theme)
	p.emitter.Emit(sse.NewThemeChangedEvent(theme))
	return pref, nil
}

func load[T any](db *badger.DB, key string) (T, error) {
	var v T
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(raw []byte) error { return json.Unmarshal(raw, &v) })
	})
	return v, err
}

func save(db *badger.DB, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
}
