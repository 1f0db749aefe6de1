package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
	"github.com/jwalitptl/optica-admin/pkg/mutation"
	"github.com/jwalitptl/optica-admin/pkg/validator"
)

var ErrDialogClosed = errors.New("dialog is not open")

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier shows transient messages (toasts, banners, console lines).
type Notifier interface {
	Notify(level Level, message string)
}

type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

type DialogConfig[T any] struct {
	// Submit sends the draft, typically a mutation.Dispatcher method.
	Submit func(ctx context.Context, value T) (T, error)
	// Pending reports an in-flight mutation on the shared dispatcher.
	Pending   func() bool
	Wizard    *Wizard
	Validator validator.Validator
	Notifier  Notifier
	// Success is the message shown after a successful submit.
	Success string
}

// Dialog drives one create/edit form: open, edit, submit, close.
type Dialog[T any] struct {
	cfg       DialogConfig[T]
	validator validator.Validator
	draft     *Draft[T]

	mu         sync.Mutex
	open       bool
	submitting atomic.Bool
}

func NewDialog[T any](cfg DialogConfig[T]) *Dialog[T] {
	v := cfg.Validator
	if v == nil {
		v = validator.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NotifierFunc(func(Level, string) {})
	}
	var zero T
	return &Dialog[T]{cfg: cfg, validator: v, draft: NewDraft(zero)}
}

// Open starts editing initial. Any earlier draft is discarded.
func (d *Dialog[T]) Open(initial T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draft.Load(initial)
	if d.cfg.Wizard != nil {
		d.cfg.Wizard.Reset()
	}
	d.open = true
}

func (d *Dialog[T]) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Dialog[T]) Draft() *Draft[T] {
	return d.draft
}

func (d *Dialog[T]) Wizard() *Wizard {
	return d.cfg.Wizard
}

// Cancel closes the dialog and throws the draft away.
func (d *Dialog[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeLocked()
}

func (d *Dialog[T]) closeLocked() {
	d.open = false
	d.draft.Reset()
	if d.cfg.Wizard != nil {
		d.cfg.Wizard.Reset()
	}
}

// Confirmable reports whether the confirm button is enabled.
func (d *Dialog[T]) Confirmable() bool {
	if !d.IsOpen() || d.submitting.Load() {
		return false
	}
	return d.cfg.Pending == nil || !d.cfg.Pending()
}

// Submit runs the step gate, validates the whole draft and sends it.
// The dialog stays open with errors populated on any failure.
func (d *Dialog[T]) Submit(ctx context.Context) (T, error) {
	var zero T
	if !d.IsOpen() {
		return zero, ErrDialogClosed
	}
	if !d.submitting.CompareAndSwap(false, true) {
		return zero, mutation.ErrMutationPending
	}
	defer d.submitting.Store(false)

	if w := d.cfg.Wizard; w != nil && !w.CanSubmit() {
		missing := w.Missing()
		d.cfg.Notifier.Notify(LevelError, "Review every section before saving: "+strings.Join(missing, ", "))
		return zero, fmt.Errorf("%w: %s", ErrStepsNotVisited, strings.Join(missing, ", "))
	}

	value := d.draft.Value()
	if errs := d.validator.Validate(value); len(errs) > 0 {
		fe := mutation.NewFieldErrors(apperrors.Validation("", errs), nil)
		d.showFieldErrors(fe)
		return zero, fe
	}

	result, err := d.cfg.Submit(ctx, value)
	if err != nil {
		var fe *mutation.FieldErrors
		switch {
		case errors.As(err, &fe):
			d.showFieldErrors(fe)
		case errors.Is(err, mutation.ErrMutationPending):
		default:
			msg := "The request failed. Please try again."
			if appErr, ok := apperrors.As(err); ok && appErr.Message != "" {
				msg = appErr.Message
			}
			d.cfg.Notifier.Notify(LevelError, msg)
		}
		return zero, err
	}

	d.mu.Lock()
	d.closeLocked()
	d.mu.Unlock()
	if d.cfg.Success != "" {
		d.cfg.Notifier.Notify(LevelSuccess, d.cfg.Success)
	}
	return result, nil
}

func (d *Dialog[T]) showFieldErrors(fe *mutation.FieldErrors) {
	d.draft.SetErrors(fe.Fields)
	if w := d.cfg.Wizard; w != nil {
		if step, ok := w.FirstStepWith(fe.Names()); ok {
			_ = w.JumpTo(step)
		}
	}
	d.cfg.Notifier.Notify(LevelError, fe.Message)
}
