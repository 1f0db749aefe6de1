package form

import "sync"

// Draft is a record being edited before it has been accepted by the backend.
type Draft[T any] struct {
	mu      sync.Mutex
	initial T
	value   T
	errors  map[string]string
	dirty   bool
}

func NewDraft[T any](initial T) *Draft[T] {
	return &Draft[T]{initial: initial, value: initial, errors: map[string]string{}}
}

func (d *Draft[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Edit applies a change to the record. Errors of fields the change
// touches are left for the next submit to re-evaluate.
func (d *Draft[T]) Edit(change func(*T)) {
	d.mu.Lock()
	change(&d.value)
	d.dirty = true
	d.mu.Unlock()
}

func (d *Draft[T]) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// SetErrors replaces the field errors shown next to the inputs.
func (d *Draft[T]) SetErrors(errs map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors = make(map[string]string, len(errs))
	for k, v := range errs {
		d.errors[k] = v
	}
}

func (d *Draft[T]) Error(field string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errors[field]
}

func (d *Draft[T]) Errors() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string, len(d.errors))
	for k, v := range d.errors {
		out[k] = v
	}
	return out
}

func (d *Draft[T]) ClearErrors() {
	d.SetErrors(nil)
}

// Reset restores the value the draft was opened with and drops all errors.
func (d *Draft[T]) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.value = d.initial
	d.errors = map[string]string{}
	d.dirty = false
}

// Load replaces both the initial and the current value.
func (d *Draft[T]) Load(initial T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.initial = initial
	d.value = initial
	d.errors = map[string]string{}
	d.dirty = false
}
