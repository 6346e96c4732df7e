// Package rotation implements the auto-advancing index machinery behind the
// site's rotating widgets (banner carousel, promo ticker, premium text server
// rotor). Each widget instance owns one Rotator: a repeating timer that steps
// a zero-based index modulo the item count, pausable on user interaction and
// cancelled deterministically on teardown.
package rotation

import (
	"sync"
	"time"
)

// Rotator advances an index over n items every interval while running and not
// paused. Manual navigation (Next/Prev/Jump) restarts the interval countdown.
// Pausing suspends advancement without touching the index; resuming starts a
// fresh interval rather than continuing the old phase.
type Rotator struct {
	mu       sync.Mutex
	n        int
	interval time.Duration
	index    int
	paused   bool

	ticker  *time.Ticker
	stop    chan struct{}
	stopped bool

	// onAdvance, when set, is invoked after every automatic tick advance.
	// Callers use it to observe rotation without polling Index.
	onAdvance func(index int)
}

// NewRotator creates a stopped Rotator over n items. Call Start to begin
// auto-advancing. For n <= 1 the rotator never schedules a timer.
func NewRotator(n int, interval time.Duration) *Rotator {
	return &Rotator{n: n, interval: interval}
}

// OnAdvance registers a callback invoked with the new index after each
// automatic advance. The callback runs with the rotator's lock held, so Stop
// cannot return while one is in flight; it must not call back into the
// Rotator.
func (r *Rotator) OnAdvance(fn func(index int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onAdvance = fn
}

// Start launches the timer goroutine. It is a no-op for n <= 1, a
// non-positive interval, or a rotator that is already running or stopped.
func (r *Rotator) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.n <= 1 || r.interval <= 0 || r.ticker != nil || r.stopped {
		return
	}
	r.ticker = time.NewTicker(r.interval)
	r.stop = make(chan struct{})
	go r.run(r.ticker, r.stop)
}

func (r *Rotator) run(ticker *time.Ticker, stop chan struct{}) {
	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			// A tick can already sit in ticker.C when Stop runs, or this
			// goroutine can be blocked on the lock Stop holds. Either way the
			// stale tick must not advance.
			if r.stopped {
				r.mu.Unlock()
				return
			}
			if r.paused {
				r.mu.Unlock()
				continue
			}
			r.index = (r.index + 1) % r.n
			if r.onAdvance != nil {
				r.onAdvance(r.index)
			}
			r.mu.Unlock()
		case <-stop:
			return
		}
	}
}

// Stop cancels the timer goroutine. The rotator cannot be restarted; widgets
// create a fresh one when their item list changes. Safe to call repeatedly.
func (r *Rotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true
	if r.ticker != nil {
		r.ticker.Stop()
		close(r.stop)
		r.ticker = nil
	}
}

// Pause suspends auto-advancement, keeping the current index.
func (r *Rotator) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
}

// Resume re-enables auto-advancement. The next advance happens a full
// interval from now, not on the pre-pause phase.
func (r *Rotator) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.paused {
		return
	}
	r.paused = false
	if r.ticker != nil {
		r.ticker.Reset(r.interval)
	}
}

// Index returns the current zero-based index.
func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Next advances one step, wrapping at the end, and restarts the countdown.
func (r *Rotator) Next() int {
	return r.step(1)
}

// Prev steps back one, wrapping to the last item from the first.
func (r *Rotator) Prev() int {
	return r.step(-1)
}

func (r *Rotator) step(delta int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.n <= 0 {
		return 0
	}
	r.index = ((r.index+delta)%r.n + r.n) % r.n
	if r.ticker != nil {
		r.ticker.Reset(r.interval)
	}
	return r.index
}

// Jump moves directly to index i (clamped into range) and restarts the
// countdown.
func (r *Rotator) Jump(i int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.n <= 0 {
		return 0
	}
	if i < 0 {
		i = 0
	}
	if i >= r.n {
		i = r.n - 1
	}
	r.index = i
	if r.ticker != nil {
		r.ticker.Reset(r.interval)
	}
	return r.index
}
