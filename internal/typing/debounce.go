package typing

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid-fire flag updates into at most one flush per
// window. Every Set records the latest requested value; the first Set after a
// flush arms a timer, and when it fires only the latest value is passed on.
// Close discards anything pending, so teardown never races a late flush.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	flush  func(bool)
	timer  *time.Timer
	latest bool
	closed bool
}

// NewDebouncer returns a debouncer flushing at most once per window.
func NewDebouncer(window time.Duration, flush func(bool)) *Debouncer {
	return &Debouncer{window: window, flush: flush}
}

// Set records the latest requested value and arms the flush timer if idle.
func (d *Debouncer) Set(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.latest = v
	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.fire)
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	v := d.latest
	d.mu.Unlock()

	d.flush(v)
}

// Close stops the timer and discards any pending value.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
