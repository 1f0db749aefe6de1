package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusError     Status = "error"
	StatusEmpty     Status = "empty"
	StatusPopulated Status = "populated"
)

// Fetcher issues the GET for one page of a collection.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, q Query) (Page[T], error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc[T any] func(ctx context.Context, q Query) (Page[T], error)

func (f FetcherFunc[T]) Fetch(ctx context.Context, q Query) (Page[T], error) {
	return f(ctx, q)
}

// State is a snapshot of a view. Page always holds the last page that was
// successfully applied, so an error never empties the screen.
type State[T any] struct {
	Kind      string
	Input     Query
	Committed Query
	Page      Page[T]
	Status    Status
	Err       *apperrors.AppError
	Loading   bool
	// SearchTooShort is set when the committed term was below
	// MinSearchLength and results were cleared instead of fetched.
	SearchTooShort bool
	Seq            uint64
}

type Config[T any] struct {
	Kind          string
	Fetcher       Fetcher[T]
	Cache         *Cache
	QuietInterval time.Duration
	Initial       Query
	OnChange      func(State[T])
	Logger        *zerolog.Logger
}

var ErrClosed = errors.New("collection view is closed")

// View owns the filter, search and pagination state of one collection page
// and applies fetched results in the order requests were issued.
type View[T any] struct {
	kind     string
	fetcher  Fetcher[T]
	cache    *Cache
	debounce *Debouncer
	onChange func(State[T])
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	input     Query
	committed Query
	page      Page[T]
	status    Status
	err       *apperrors.AppError
	loading   bool
	tooShort  bool
	seq       uint64
	closed    bool
}

func NewView[T any](ctx context.Context, cfg Config[T]) *View[T] {
	initial := cfg.Initial
	if initial.Page == 0 && initial.PerPage == 0 && initial.Filters == nil {
		initial = NewQuery()
	}
	if initial.Filters == nil {
		initial.Filters = FilterState{}
	}
	initial = initial.normalized()

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("collection", cfg.Kind).Logger()
	}

	vctx, cancel := context.WithCancel(ctx)
	return &View[T]{
		kind:      cfg.Kind,
		fetcher:   cfg.Fetcher,
		cache:     cfg.Cache,
		debounce:  NewDebouncer(cfg.QuietInterval),
		onChange:  cfg.OnChange,
		logger:    logger,
		ctx:       vctx,
		cancel:    cancel,
		input:     initial,
		committed: initial.Clone(),
		page:      Page[T]{Data: []T{}, CurrentPage: 1, LastPage: 1},
		status:    StatusIdle,
	}
}

func (v *View[T]) Kind() string {
	return v.kind
}

// State returns a snapshot of the view.
func (v *View[T]) State() State[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View[T]) snapshotLocked() State[T] {
	page := v.page
	page.Data = append([]T(nil), v.page.Data...)
	return State[T]{
		Kind:           v.kind,
		Input:          v.input.Clone(),
		Committed:      v.committed.Clone(),
		Page:           page,
		Status:         v.status,
		Err:            v.err,
		Loading:        v.loading,
		SearchTooShort: v.tooShort,
		Seq:            v.seq,
	}
}

// Load fetches the committed query.
func (v *View[T]) Load(ctx context.Context) error {
	v.mu.Lock()
	q := v.committed.Clone()
	v.mu.Unlock()
	return v.fetch(ctx, q)
}

// SetSearch updates the search input immediately and commits it once the
// input has been quiet for the configured interval.
func (v *View[T]) SetSearch(term string) {
	v.edit(func(q *Query) {
		q.Search.Term = term
	})
}

// SetSearchFields changes which columns a term is matched against.
func (v *View[T]) SetSearchFields(fields []string, op Operator) {
	v.edit(func(q *Query) {
		q.Search.Fields = append([]string(nil), fields...)
		q.Search.Operator = op
	})
}

// SetFilter updates one filter. nil unsets it.
func (v *View[T]) SetFilter(key string, value any) {
	v.edit(func(q *Query) {
		q.Filters[key] = value
	})
}

// edit applies a change to the input state and resets the page in the same
// update, then schedules the commit.
func (v *View[T]) edit(change func(*Query)) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	change(&v.input)
	v.input.Page = DefaultPage
	state := v.snapshotLocked()
	v.mu.Unlock()

	v.notify(state)
	v.debounce.Trigger(v.commit)
}

func (v *View[T]) commit() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.committed = v.input.Clone()
	q := v.committed.Clone()
	v.mu.Unlock()

	if err := v.fetch(v.ctx, q); err != nil {
		v.logger.Debug().Err(err).Msg("debounced fetch failed")
	}
}

// Commit applies pending input now instead of waiting for the quiet interval.
func (v *View[T]) Commit() bool {
	return v.debounce.Flush()
}

// ClearFilters unsets every filter and the search term and returns to the
// first page as a single update, producing exactly one fetch.
func (v *View[T]) ClearFilters(ctx context.Context) error {
	v.debounce.Cancel()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.input.Filters.Reset()
	v.input.Search.Term = ""
	v.input.Page = DefaultPage
	v.committed = v.input.Clone()
	q := v.committed.Clone()
	v.mu.Unlock()

	return v.fetch(ctx, q)
}

// SetPage moves to page n, clamped to the pages known from the last result.
// A filter or search edit still waiting for the quiet interval is committed
// instead, at the first page, since n refers to the old result set.
func (v *View[T]) SetPage(ctx context.Context, n int) error {
	pending := v.debounce.Cancel()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if pending {
		v.input.Page = DefaultPage
		v.committed = v.input.Clone()
	} else {
		n = ClampPage(n, v.page.LastPage)
		v.input.Page = n
		v.committed.Page = n
	}
	q := v.committed.Clone()
	v.mu.Unlock()

	return v.fetch(ctx, q)
}

func (v *View[T]) Next(ctx context.Context) error {
	return v.SetPage(ctx, v.State().Page.CurrentPage+1)
}

func (v *View[T]) Prev(ctx context.Context) error {
	return v.SetPage(ctx, v.State().Page.CurrentPage-1)
}

// SetPerPage changes the page size and returns to the first page.
func (v *View[T]) SetPerPage(ctx context.Context, perPage int) error {
	pending := v.debounce.Cancel()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.input.PerPage = perPage
	v.input.Page = DefaultPage
	v.input = v.input.normalized()
	if pending {
		v.committed = v.input.Clone()
	} else {
		v.committed.PerPage = v.input.PerPage
		v.committed.Page = DefaultPage
	}
	q := v.committed.Clone()
	v.mu.Unlock()

	return v.fetch(ctx, q)
}

func (v *View[T]) SetSort(ctx context.Context, field string, dir Direction) error {
	pending := v.debounce.Cancel()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.input.Sort = &Sort{Field: field, Direction: dir}
	if pending {
		v.committed = v.input.Clone()
	} else {
		v.committed.Sort = &Sort{Field: field, Direction: dir}
	}
	q := v.committed.Clone()
	v.mu.Unlock()

	return v.fetch(ctx, q)
}

// Retry re-issues the committed query with identical parameters, bypassing
// any cached result.
func (v *View[T]) Retry(ctx context.Context) error {
	v.mu.Lock()
	q := v.committed.Clone()
	v.mu.Unlock()

	if v.cache != nil {
		v.cache.Delete(q.Key(v.kind))
	}
	return v.fetch(ctx, q)
}

// Refetch reloads the committed query after the kind has been invalidated.
func (v *View[T]) Refetch(ctx context.Context) error {
	return v.Retry(ctx)
}

// Invalidate drops every cached page of the kind and refetches.
func (v *View[T]) Invalidate(ctx context.Context) error {
	if v.cache != nil {
		v.cache.InvalidateKind(v.kind)
	}
	return v.Refetch(ctx)
}

// Close abandons the view. Pending commits are cancelled and results of
// requests still in flight are discarded.
func (v *View[T]) Close() {
	v.debounce.Cancel()
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.cancel()
}

func (v *View[T]) fetch(ctx context.Context, q Query) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.seq++
	seq := v.seq

	if q.Search.TooShort() {
		v.page = Page[T]{Data: []T{}, CurrentPage: 1, LastPage: 1}
		v.status = StatusEmpty
		v.err = nil
		v.loading = false
		v.tooShort = true
		state := v.snapshotLocked()
		v.mu.Unlock()

		v.notify(state)
		return nil
	}

	v.loading = true
	v.tooShort = false
	if v.status == StatusIdle {
		v.status = StatusLoading
	}
	state := v.snapshotLocked()
	v.mu.Unlock()
	v.notify(state)

	page, err := v.load(ctx, q)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	if seq != v.seq {
		v.mu.Unlock()
		v.logger.Debug().Uint64("seq", seq).Msg("discarding superseded response")
		return nil
	}
	v.loading = false

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		v.page = page.Normalize()
		v.err = nil
	case apperrors.IsNotFound(err):
		v.page = Page[T]{Data: []T{}, CurrentPage: 1, LastPage: 1}
		v.err = nil
	default:
		appErr = classify(err)
		v.err = appErr
	}

	switch {
	case v.err != nil:
		v.status = StatusError
	case v.page.Empty():
		v.status = StatusEmpty
	default:
		v.status = StatusPopulated
	}
	state = v.snapshotLocked()
	v.mu.Unlock()

	v.notify(state)
	if appErr != nil {
		return appErr
	}
	return nil
}

func (v *View[T]) load(ctx context.Context, q Query) (Page[T], error) {
	if v.cache == nil {
		return v.fetcher.Fetch(ctx, q)
	}
	val, err := v.cache.Load(ctx, q.Key(v.kind), func(ctx context.Context) (any, error) {
		return v.fetcher.Fetch(ctx, q)
	})
	if err != nil {
		return Page[T]{}, err
	}
	page, ok := val.(Page[T])
	if !ok {
		return Page[T]{}, fmt.Errorf("cached value for %s has type %T", v.kind, val)
	}
	return page, nil
}

func (v *View[T]) notify(state State[T]) {
	if v.onChange != nil {
		v.onChange(state)
	}
}

func classify(err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Network(err)
	}
	return &apperrors.AppError{
		Code:    apperrors.ErrInternal,
		Kind:    apperrors.KindServer,
		Message: err.Error(),
		Err:     err,
	}
}
