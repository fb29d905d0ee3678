// Package debounce provides a single-slot cancellable timer: scheduling
// replaces any pending call, so only the last call within the window
// fires. Intermediate calls are superseded, never queued.
package debounce

import (
	"sync"
	"time"
)

type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending *time.Timer
}

func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &Debouncer{delay: delay}
}

// Schedule arranges fn to run after the debounce delay, cancelling any
// previously scheduled call.
func (d *Debouncer) Schedule(fn func()) {
	if fn == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
	}
	d.pending = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		d.pending = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops any pending call without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}

// Flush runs fn immediately after cancelling any pending call. Used
// when a selection must take effect synchronously, e.g. a club switch.
func (d *Debouncer) Flush(fn func()) {
	d.Cancel()
	if fn != nil {
		fn()
	}
}
