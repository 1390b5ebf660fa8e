// Package searchbox implements the debounced search box: keystrokes in,
// candidate lists out, and selection into the catalogue.
package searchbox

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/enrich"
)

// DefaultDebounce is the quiet period before a query is issued.
const DefaultDebounce = 300 * time.Millisecond

// DefaultLimit is the number of candidates requested per query.
const DefaultLimit = 5

// ErrNoSuchResult is returned by Select for an index outside the shown results.
var ErrNoSuchResult = errors.New("searchbox: no such result")

// ErrSelecting is returned by Select while another selection is being committed.
var ErrSelecting = errors.New("searchbox: selection already in progress")

// Status is the search box state.
type Status string

// Search box states.
const (
	StatusIdle       Status = "idle"
	StatusPending    Status = "pending"
	StatusDisplaying Status = "displaying"
)

// Placeholder is shown in place of a result list.
type Placeholder string

// Placeholders.
const (
	PlaceholderNone      Placeholder = ""
	PlaceholderLoading   Placeholder = "loading"
	PlaceholderNoResults Placeholder = "no_results"
	PlaceholderError     Placeholder = "error"
)

// Snapshot is the renderable state of a search box.
type Snapshot struct {
	Query       string             `json:"query"`
	Status      Status             `json:"status"`
	Placeholder Placeholder        `json:"placeholder,omitempty"`
	Error       string             `json:"error,omitempty"`
	Results     []domain.Candidate `json:"results"`
	Seq         uint64             `json:"seq"`
}

// Searcher runs a candidate search.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error)
}

// Enricher turns a selected candidate into a book.
type Enricher interface {
	Enrich(ctx context.Context, c domain.Candidate) (domain.Book, enrich.Trace)
}

// Committer stores a new book.
type Committer interface {
	Add(book domain.Book) error
}

// Controller is one search box.
//
// Every input and every issued query takes the next sequence number; a
// response is applied only if its number is still the latest, so a slow
// stale response can never overwrite newer state.
type Controller struct {
	ctx       context.Context
	searcher  Searcher
	enricher  Enricher
	committer Committer
	debouncer *Debouncer
	notify    func(Snapshot)
	logger    *slog.Logger
	state     Snapshot
	seq       uint64
	limit     int
	selecting bool
	mu        sync.Mutex
}

// Deps bundles a controller's collaborators.
type Deps struct {
	Searcher  Searcher
	Enricher  Enricher
	Committer Committer
	Clock     Clock
	Notify    func(Snapshot) // Called after every state change; may be nil
	Logger    *slog.Logger
}

// NewController creates an idle search box. Queries run under ctx.
func NewController(ctx context.Context, deps Deps, debounce time.Duration, limit int) *Controller {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	notify := deps.Notify
	if notify == nil {
		notify = func(Snapshot) {}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		ctx:       ctx,
		searcher:  deps.Searcher,
		enricher:  deps.Enricher,
		committer: deps.Committer,
		debouncer: NewDebouncer(debounce, deps.Clock),
		notify:    notify,
		logger:    logger,
		state:     Snapshot{Status: StatusIdle},
		limit:     limit,
	}
}

// Input handles a change of the search text.
// Blank text clears the box at once; anything else shows the loading
// placeholder and (re)starts the debounce.
func (c *Controller) Input(query string) Snapshot {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	c.seq++
	if query == "" {
		c.debouncer.Cancel()
		c.state = Snapshot{Status: StatusIdle, Seq: c.seq}
	} else {
		c.state = Snapshot{
			Query:       query,
			Status:      StatusPending,
			Placeholder: PlaceholderLoading,
			Seq:         c.seq,
		}
		c.debouncer.Trigger(func() { c.run(query) })
	}
	snap := c.state
	c.mu.Unlock()

	c.notify(snap)
	return snap
}

func (c *Controller) run(query string) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.Seq = seq
	c.mu.Unlock()

	results, err := c.searcher.Search(c.ctx, query, c.limit)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug("discarding stale search response", "query", query, "seq", seq)
		return
	}

	next := Snapshot{Query: query, Status: StatusDisplaying, Seq: seq}
	switch {
	case err != nil:
		c.logger.Warn("search failed", "query", query, "error", err)
		next.Placeholder = PlaceholderError
		next.Error = "An error occurred while searching. Please try again."
	case len(results) == 0:
		next.Placeholder = PlaceholderNoResults
	default:
		next.Results = results
	}
	c.state = next
	c.mu.Unlock()

	c.notify(next)
}

// Select enriches the shown result at index, commits it, and resets the box.
// Only one selection runs at a time; a second one fails with ErrSelecting.
func (c *Controller) Select(ctx context.Context, index int) (domain.Book, enrich.Trace, error) {
	c.mu.Lock()
	if c.selecting {
		c.mu.Unlock()
		return domain.Book{}, enrich.Trace{}, ErrSelecting
	}
	if c.state.Status != StatusDisplaying || index < 0 || index >= len(c.state.Results) {
		c.mu.Unlock()
		return domain.Book{}, enrich.Trace{}, ErrNoSuchResult
	}
	candidate := c.state.Results[index]
	c.selecting = true
	c.mu.Unlock()

	book, trace := c.enricher.Enrich(ctx, candidate)
	if err := c.committer.Add(book); err != nil {
		c.mu.Lock()
		c.selecting = false
		c.mu.Unlock()
		return domain.Book{}, trace, err
	}

	c.mu.Lock()
	c.selecting = false
	c.debouncer.Cancel()
	c.seq++
	c.state = Snapshot{Status: StatusIdle, Seq: c.seq}
	snap := c.state
	c.mu.Unlock()

	c.notify(snap)
	return book, trace, nil
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close drops any pending query and invalidates in-flight ones.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debouncer.Cancel()
	c.seq++
}
