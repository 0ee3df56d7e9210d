package listing

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/satonic/satonic-admin/internal/api"
	"github.com/satonic/satonic-admin/internal/logging"
	"github.com/satonic/satonic-admin/internal/models"
)

var (
	ErrNoNextPage      = errors.New("listing: no next page")
	ErrNoPreviousPage  = errors.New("listing: no previous page")
	ErrNotOnPage       = errors.New("listing: item is not on the current page")
	ErrNothingSelected = errors.New("listing: nothing selected")
)

// Item is anything a list page can show and act on
type Item interface {
	ItemID() string
}

// Lister fetches one page of items matching filter
type Lister[T Item] func(ctx context.Context, filter api.Query, cb api.Callbacks[models.Page[T]])

// Action applies a destructive operation to the item with the given id
type Action func(ctx context.Context, id string, cb api.Callbacks[api.Empty])

// ActionKind names the destructive operation a list page offers
type ActionKind string

const (
	ActionDelete  ActionKind = "delete"
	ActionArchive ActionKind = "archive"
)

// Label is the verb shown on buttons
func (k ActionKind) Label() string {
	if k == ActionArchive {
		return "Archive"
	}
	return "Delete"
}

// EmptyState tells the page what to show when there is nothing to list
type EmptyState int

const (
	EmptyStateNone EmptyState = iota
	// EmptyStateCreate invites the user to create the first item
	EmptyStateCreate
	// EmptyStatePastEnd means a later page came back empty
	EmptyStatePastEnd
)

// Options configure a Controller
type Options[T Item] struct {
	// Scope is the filter key of the parent, e.g. tenantId
	Scope    string
	ScopeID  string
	PageSize int
	List     Lister[T]
	Kind     ActionKind
	Act      Action
	Cursor   Cursor
	Logger   logging.Logger
}

// Controller drives one paginated list page
type Controller[T Item] struct {
	opts   Options[T]
	logger logging.Logger

	mu           sync.Mutex
	cursor       Cursor
	page         models.Page[T]
	loaded       bool
	fetching     bool
	err          *api.Error
	scrollTop    bool
	selected     string
	unauthorized bool
	generation   uint64
	closed       bool
}

// NewController creates a controller positioned at opts.Cursor
func NewController[T Item](opts Options[T]) *Controller[T] {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if opts.Kind == "" {
		opts.Kind = ActionDelete
	}
	return &Controller[T]{
		opts:   opts,
		logger: logger,
		cursor: Cursor{Current: opts.Cursor.Current, Stack: append([]string(nil), opts.Cursor.Stack...)},
	}
}

// begin starts a new generation. Completions of older generations are
// discarded.
func (c *Controller[T]) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.generation
}

// live must be called with c.mu held
func (c *Controller[T]) live(gen uint64) bool {
	return !c.closed && gen == c.generation
}

func (c *Controller[T]) filter() api.Query {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := api.Query{}
	if c.opts.Scope != "" {
		q = q.Set(c.opts.Scope, c.opts.ScopeID)
	}
	if c.opts.PageSize > 0 {
		q = q.Set("pageSize", strconv.Itoa(c.opts.PageSize))
	}
	if c.cursor.Current != "" {
		q = q.Set("cursor", c.cursor.Current)
	}
	return q
}

// Load fetches the page at the current cursor. The returned error is the
// backend error of this load, if the completion was still current.
func (c *Controller[T]) Load(ctx context.Context) error {
	gen := c.begin()

	c.mu.Lock()
	c.err = nil
	c.scrollTop = false
	c.fetching = true
	c.mu.Unlock()

	var failed *api.Error
	c.opts.List(ctx, c.filter(), api.Callbacks[models.Page[T]]{
		OnSuccess: func(page models.Page[T]) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if !c.live(gen) {
				c.logger.Debug("discarding stale page", "generation", gen)
				return
			}
			c.page = page
			c.loaded = true
		},
		OnError: func(e *api.Error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if !c.live(gen) {
				c.logger.Debug("discarding stale list error", "generation", gen, "error", e)
				return
			}
			c.err = e
			c.scrollTop = true
			failed = e
		},
		OnUnauthorized: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.live(gen) {
				c.unauthorized = true
			}
		},
		OnDone: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.live(gen) {
				c.fetching = false
			}
		},
	})

	if failed != nil {
		return failed
	}
	return nil
}

// Close stops the controller; pending completions are discarded
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
}

// Next moves the cursor to the following page. Call Load afterwards.
func (c *Controller[T]) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.page.HasNextPage || c.page.NextCursor == "" {
		return ErrNoNextPage
	}
	c.cursor = c.cursor.Advance(c.page.NextCursor)
	c.selected = ""
	return nil
}

// Previous moves the cursor back one page. Call Load afterwards.
func (c *Controller[T]) Previous() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	back, ok := c.cursor.Back()
	if !ok {
		return ErrNoPreviousPage
	}
	c.cursor = back
	c.selected = ""
	return nil
}

// HasPrevious reports whether a previous page exists
func (c *Controller[T]) HasPrevious() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.cursor.IsFirst()
}

// HasNext reports whether the loaded page advertises a next page
func (c *Controller[T]) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page.HasNextPage && c.page.NextCursor != ""
}

// Cursor returns a copy of the current position
func (c *Controller[T]) Cursor() Cursor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Cursor{Current: c.cursor.Current, Stack: append([]string(nil), c.cursor.Stack...)}
}

// NextCursor is the position Next would move to
func (c *Controller[T]) NextCursor() (Cursor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.page.HasNextPage || c.page.NextCursor == "" {
		return Cursor{}, false
	}
	return c.cursor.Advance(c.page.NextCursor), true
}

// PreviousCursor is the position Previous would move to
func (c *Controller[T]) PreviousCursor() (Cursor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor.Back()
}

// Items returns the items of the loaded page
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page.Results
}

// Select marks an item on the current page for the destructive action
func (c *Controller[T]) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range c.page.Results {
		if item.ItemID() == id {
			c.selected = id
			return nil
		}
	}
	return ErrNotOnPage
}

// CancelSelection clears the selection without side effects
func (c *Controller[T]) CancelSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = ""
}

// Selected returns the selected item, if any
func (c *Controller[T]) Selected() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if c.selected == "" {
		return zero, false
	}
	for _, item := range c.page.Results {
		if item.ItemID() == c.selected {
			return item, true
		}
	}
	return zero, false
}

// Confirm runs the configured action on the selected item. On success the
// same page is fetched again. The selection is cleared either way.
func (c *Controller[T]) Confirm(ctx context.Context) error {
	c.mu.Lock()
	id := c.selected
	c.mu.Unlock()
	if id == "" {
		return ErrNothingSelected
	}

	gen := c.begin()
	var (
		failed    *api.Error
		succeeded bool
	)
	c.opts.Act(ctx, id, api.Callbacks[api.Empty]{
		OnSuccess: func(api.Empty) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.selected = ""
			if c.live(gen) {
				succeeded = true
			}
		},
		OnError: func(e *api.Error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.selected = ""
			if !c.live(gen) {
				return
			}
			c.err = e
			c.scrollTop = true
			failed = e
		},
		OnUnauthorized: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.live(gen) {
				c.unauthorized = true
			}
		},
	})

	if failed != nil {
		c.logger.Warn("list action failed", "action", string(c.opts.Kind), "id", id, "error", failed)
		return failed
	}
	if succeeded {
		c.logger.Info("list action applied", "action", string(c.opts.Kind), "id", id)
		return c.Load(ctx)
	}
	return nil
}

// EmptyState decides what an empty page shows
func (c *Controller[T]) EmptyState() EmptyState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded || len(c.page.Results) > 0 {
		return EmptyStateNone
	}
	if c.cursor.IsFirst() {
		return EmptyStateCreate
	}
	return EmptyStatePastEnd
}

// Err returns the error of the last load or action
func (c *Controller[T]) Err() *api.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ScrollTop reports whether the page should scroll to the error summary
func (c *Controller[T]) ScrollTop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scrollTop
}

// Fetching reports whether a load is in flight
func (c *Controller[T]) Fetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetching
}

// Unauthorized reports whether the backend rejected the session
func (c *Controller[T]) Unauthorized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unauthorized
}

// Kind returns the configured destructive action
func (c *Controller[T]) Kind() ActionKind {
	return c.opts.Kind
}
