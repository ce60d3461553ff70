package service

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of requests into one trailing invocation:
// scheduling cancels and replaces any invocation still pending, so only the
// most recent request within the window executes.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the configured delay, replacing any pending
// invocation.
func (d *Debouncer) Trigger(fn func()) {
	d.TriggerAfter(d.delay, fn)
}

// TriggerAfter schedules fn after an explicit delay, replacing any pending
// invocation.
func (d *Debouncer) TriggerAfter(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	if delay < 0 {
		delay = 0
	}
	d.timer = time.AfterFunc(delay, fn)
}

// Stop cancels any pending invocation. An invocation already started is not
// interrupted.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
