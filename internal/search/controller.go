package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"bookfinder/internal/book"
	"bookfinder/internal/googlebooks"

	"github.com/sirupsen/logrus"
)

// ItemsPerPage is the fixed size of a result page.
const ItemsPerPage = 12

// DefaultDebounce is the quiet window for filter-driven auto-search.
const DefaultDebounce = time.Second

var (
	// ErrNoCriteria is the validation error for an all-blank submit. No
	// remote call is made when it is raised.
	ErrNoCriteria = errors.New("at least one search criterion is required")

	// ErrSearchFailed is the uniform, retryable error for any transport or
	// non-2xx failure of the remote lookup.
	ErrSearchFailed = errors.New("failed to search books, please try again")
)

// Finder is the remote lookup port the controller drives.
type Finder interface {
	Search(ctx context.Context, query string, startIndex, maxResults int) (googlebooks.SearchResult, error)
}

// Field names a filter edited through UpdateFilter.
type Field string

const (
	FieldTitle  Field = "title"
	FieldAuthor Field = "author"
	FieldGenre  Field = "genre"
)

// State is an immutable snapshot of the controller, handed to the view on
// every observable change.
type State struct {
	Filters     Filters
	Books       []book.Book
	CurrentPage int
	TotalItems  int
	Loading     bool
	Err         error
	HasSearched bool
}

// TotalPages derives the page count from the total and the fixed page size.
func (s State) TotalPages() int {
	return (s.TotalItems + ItemsPerPage - 1) / ItemsPerPage
}

// ShareQuery renders the filters and page as a shareable query string that
// DecodeQuery reproduces the same search from.
func (s State) ShareQuery() string {
	return EncodeQuery(s.Filters, s.CurrentPage).Encode()
}

// Options configures a Controller. Zero values pick sensible defaults.
type Options struct {
	// Debounce is the filter-edit quiet window; DefaultDebounce when zero.
	Debounce time.Duration
	// OnChange receives a state snapshot after every observable transition.
	OnChange func(State)
	// ScrollTop runs when a page change is accepted, before the fetch.
	ScrollTop func()
	Logger    logrus.FieldLogger
}

// Controller reconciles filter edits, debounced auto-search, explicit
// submits, page changes and the shareable URL state into one consistent
// view state. Each fetch is tagged with a request sequence; a completion
// that lost the race to a newer request is discarded, so the displayed
// state always reflects the most recently issued search.
type Controller struct {
	finder    Finder
	debounce  *Debouncer
	onChange  func(State)
	scrollTop func()
	log       logrus.FieldLogger

	mu    sync.Mutex
	state State
	seq   uint64
}

func NewController(finder Finder, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Controller{
		finder:    finder,
		debounce:  NewDebouncer(opts.Debounce),
		onChange:  opts.OnChange,
		scrollTop: opts.ScrollTop,
		log:       opts.Logger,
		state:     State{CurrentPage: 1},
	}
}

// Seed installs filters and a page decoded from a shared query string,
// without fetching. The caller decides whether to submit afterwards.
func (c *Controller) Seed(f Filters, page int) {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	c.state.Filters = f
	c.state.CurrentPage = page
	c.mu.Unlock()
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// UpdateFilter merges one filter edit into the state and schedules the
// debounced auto-search. It never contacts the remote service itself, and a
// newer edit cancels the pending auto-search before a new one is armed.
func (c *Controller) UpdateFilter(ctx context.Context, field Field, value string) {
	c.mu.Lock()
	switch field {
	case FieldTitle:
		c.state.Filters.Title = value
	case FieldAuthor:
		c.state.Filters.Author = value
	case FieldGenre:
		c.state.Filters.Genre = value
	}
	st := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(st)

	c.debounce.Schedule(func() {
		c.mu.Lock()
		blank := c.state.Filters.IsBlank()
		c.mu.Unlock()
		// The validation message is reserved for explicit submits; an edit
		// that blanks every field just cancels the auto-search.
		if blank {
			return
		}
		c.ResetPagination()
		c.Submit(ctx, 1)
	})
}

// Submit starts a search for the given page. With all filters blank it fails
// fast with ErrNoCriteria and no transport call. The fetch itself runs
// asynchronously; completion is reported through OnChange.
func (c *Controller) Submit(ctx context.Context, page int) {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	if c.state.Filters.IsBlank() {
		c.state.Err = ErrNoCriteria
		st := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(st)
		return
	}

	c.state.Loading = true
	c.state.Err = nil
	c.state.HasSearched = true
	c.seq++
	seq := c.seq
	query := BuildQuery(c.state.Filters)
	st := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(st)

	go c.fetch(ctx, seq, query, page)
}

// ChangePage re-submits for another page. It is a no-op outside
// [1, TotalPages] or while a search is in flight.
func (c *Controller) ChangePage(ctx context.Context, page int) {
	c.mu.Lock()
	ok := !c.state.Loading && page >= 1 && page <= c.state.TotalPages()
	c.mu.Unlock()
	if !ok {
		return
	}
	if c.scrollTop != nil {
		c.scrollTop()
	}
	c.Submit(ctx, page)
}

// ResetPagination rewinds to page 1 and clears the total so stale
// pagination from a previous query never leaks into a new one. Invoked
// before a brand-new filter-driven search.
func (c *Controller) ResetPagination() {
	c.mu.Lock()
	c.state.CurrentPage = 1
	c.state.TotalItems = 0
	c.mu.Unlock()
}

// Close discards any pending debounced auto-search.
func (c *Controller) Close() {
	c.debounce.Stop()
}

func (c *Controller) fetch(ctx context.Context, seq uint64, query string, page int) {
	result, err := c.finder.Search(ctx, query, (page-1)*ItemsPerPage, ItemsPerPage)

	c.mu.Lock()
	if seq != c.seq {
		// A newer request owns the state now; this response is stale.
		c.mu.Unlock()
		c.log.WithField("page", page).Debug("discarding stale search response")
		return
	}

	if err != nil {
		c.log.WithError(err).Warn("search request failed")
		c.state.Err = ErrSearchFailed
		c.state.Books = []book.Book{}
		c.state.TotalItems = 0
	} else {
		books := make([]book.Book, 0, len(result.Items))
		for _, v := range result.Items {
			books = append(books, book.FromVolume(v))
		}
		c.state.Books = books
		c.state.TotalItems = result.TotalItems
		c.state.CurrentPage = page
	}
	c.state.Loading = false
	st := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(st)
}

func (c *Controller) snapshotLocked() State {
	st := c.state
	st.Books = append([]book.Book(nil), c.state.Books...)
	return st
}

func (c *Controller) notify(st State) {
	if c.onChange != nil {
		c.onChange(st)
	}
}
