// Package debounce provides trailing-edge timers driven by an injectable clock
// so callers can advance virtual time in tests.
package debounce

import (
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

// ScheduleAfterQuiet runs fn once d has elapsed on clk. The returned cancel
// func stops the timer if it has not fired yet.
func ScheduleAfterQuiet(clk clock.Clock, fn func(), d time.Duration) (cancel func()) {
	t := clk.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Debouncer runs fn after a quiet window following the last Trigger.
// Every Trigger resets the window; only the final pending call executes.
type Debouncer struct {
	clock clock.Clock
	wait  time.Duration
	fn    func()

	mu      sync.Mutex
	cancel  func()
	gen     uint64
	stopped bool
}

// New creates a Debouncer. A nil clock uses wall time.
func New(clk clock.Clock, wait time.Duration, fn func()) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	return &Debouncer{clock: clk, wait: wait, fn: fn}
}

// Trigger (re)starts the quiet window.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.gen++
	gen := d.gen
	d.cancel = ScheduleAfterQuiet(d.clock, func() { d.fire(gen) }, d.wait)
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

// Stop cancels any pending call and ignores later triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A timer that lost the race against Stop or a newer Trigger is stale.
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.cancel = nil
	d.mu.Unlock()

	d.fn()
}
