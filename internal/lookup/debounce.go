package lookup

import (
	"sync"
	"time"
)

// DefaultDebounce is the search quiescence window. Long enough to coalesce a
// burst of keystrokes over tens of thousands of records, short enough not to
// feel laggy.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces rapid search-term updates into a single callback after
// a quiescence window. A later submission always supersedes a pending earlier
// one: when the window elapses, only the most recent term is delivered, and a
// stale timer that lost the race delivers nothing.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer builds a Debouncer. A non-positive delay falls back to the
// default window.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Submit schedules fn(term) to run after the quiescence window, cancelling
// any pending earlier submission.
func (d *Debouncer) Submit(term string, fn func(term string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.gen == gen
		d.mu.Unlock()
		// A newer submission owns the callback now.
		if !current {
			return
		}
		fn(term)
	})
}

// Stop cancels any pending submission.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
