package mutation

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"

	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

// ErrMutationPending is returned when a dispatcher is asked to start a
// mutation while another one is still in flight.
var ErrMutationPending = errors.New("a mutation is already in progress")

// Backend is the write side of a REST resource.
type Backend[T any] interface {
	Kind() string
	Create(ctx context.Context, payload any) (T, error)
	Update(ctx context.Context, id string, payload any) (T, error)
	Delete(ctx context.Context, id string) error
	Action(ctx context.Context, id, action string, payload any) (T, error)
}

// Invalidator drops every cached page of an entity kind.
type Invalidator interface {
	InvalidateKind(kind string) int
}

type Config[T any] struct {
	Backend    Backend[T]
	Cache      Invalidator
	Refetch    func(ctx context.Context) error
	Translator Translator
	Logger     *zerolog.Logger
}

// Dispatcher runs create, update, delete and action requests for one
// resource. After every success the kind is invalidated and the owning
// collection re-fetched before the call returns.
type Dispatcher[T any] struct {
	backend    Backend[T]
	cache      Invalidator
	refetch    func(ctx context.Context) error
	translator Translator
	logger     zerolog.Logger

	pending atomic.Bool
}

func New[T any](cfg Config[T]) *Dispatcher[T] {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("resource", cfg.Backend.Kind()).Logger()
	}
	translator := cfg.Translator
	if translator == nil {
		translator = DefaultTranslator
	}
	return &Dispatcher[T]{
		backend:    cfg.Backend,
		cache:      cfg.Cache,
		refetch:    cfg.Refetch,
		translator: translator,
		logger:     logger,
	}
}

// Pending reports whether a mutation is in flight. Confirm buttons are
// disabled while it is true.
func (d *Dispatcher[T]) Pending() bool {
	return d.pending.Load()
}

// OnSuccess replaces the refetch hook run after a successful mutation.
func (d *Dispatcher[T]) OnSuccess(fn func(ctx context.Context) error) {
	d.refetch = fn
}

func (d *Dispatcher[T]) Create(ctx context.Context, payload any) (T, error) {
	return d.run(ctx, "create", func(ctx context.Context) (T, error) {
		return d.backend.Create(ctx, payload)
	})
}

func (d *Dispatcher[T]) Update(ctx context.Context, id string, patch any) (T, error) {
	return d.run(ctx, "update", func(ctx context.Context) (T, error) {
		return d.backend.Update(ctx, id, patch)
	})
}

func (d *Dispatcher[T]) Delete(ctx context.Context, id string) error {
	_, err := d.run(ctx, "delete", func(ctx context.Context) (T, error) {
		var zero T
		return zero, d.backend.Delete(ctx, id)
	})
	return err
}

// Action calls a state-transition endpoint, e.g. approve or reject.
func (d *Dispatcher[T]) Action(ctx context.Context, id, action string, payload any) (T, error) {
	return d.run(ctx, action, func(ctx context.Context) (T, error) {
		return d.backend.Action(ctx, id, action, payload)
	})
}

func (d *Dispatcher[T]) run(ctx context.Context, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if !d.pending.CompareAndSwap(false, true) {
		return zero, ErrMutationPending
	}
	defer d.pending.Store(false)

	result, err := fn(ctx)
	if err != nil {
		d.logger.Debug().Err(err).Str("op", op).Msg("mutation failed")
		return zero, d.mapError(err)
	}

	kind := d.backend.Kind()
	if d.cache != nil {
		removed := d.cache.InvalidateKind(kind)
		d.logger.Debug().Str("op", op).Int("invalidated", removed).Msg("collection invalidated")
	}
	if d.refetch != nil {
		if err := d.refetch(ctx); err != nil {
			d.logger.Warn().Err(err).Str("op", op).Msg("refetch after mutation failed")
		}
	}
	return result, nil
}

// mapError turns validation failures into *FieldErrors and leaves every
// other classified error untouched.
func (d *Dispatcher[T]) mapError(err error) error {
	appErr, ok := apperrors.As(err)
	if !ok {
		return apperrors.Internal(err)
	}
	if appErr.Kind != apperrors.KindValidation || len(appErr.Fields) == 0 {
		return appErr
	}
	return NewFieldErrors(appErr, d.translator)
}
