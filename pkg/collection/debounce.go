package collection

import (
	"sync"
	"time"
)

// DefaultQuietInterval is how long input must stay unchanged before it is committed.
const DefaultQuietInterval = 500 * time.Millisecond

// Quiet reports whether interval has elapsed since the last edit.
func Quiet(lastEdit, now time.Time, interval time.Duration) bool {
	return !now.Before(lastEdit.Add(interval))
}

// Debouncer runs the most recently triggered function once input has been
// quiet for the configured interval. It is safe for concurrent use.
type Debouncer struct {
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	timer    *time.Timer
	fn       func()
	lastEdit time.Time
	gen      uint64
}

func NewDebouncer(interval time.Duration) *Debouncer {
	if interval <= 0 {
		interval = DefaultQuietInterval
	}
	return &Debouncer{interval: interval, now: time.Now}
}

func (d *Debouncer) Interval() time.Duration {
	return d.interval
}

// Trigger records an edit and replaces the pending function.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.fn = fn
	d.lastEdit = d.now()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.interval, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.fn == nil {
		d.mu.Unlock()
		return
	}
	now := d.now()
	if !Quiet(d.lastEdit, now, d.interval) {
		remaining := d.lastEdit.Add(d.interval).Sub(now)
		d.timer = time.AfterFunc(remaining, func() { d.fire(gen) })
		d.mu.Unlock()
		return
	}
	fn := d.fn
	d.fn = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// Cancel drops the pending function, if any. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.fn != nil
	d.gen++
	d.fn = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return pending
}

// Flush runs the pending function immediately instead of waiting.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.fn
	d.gen++
	d.fn = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether a function is waiting for the quiet interval.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fn != nil
}
