package tracker

import (
	"sync"
	"sync/atomic"
	"time"
)

// Default eviction policy. Both values are configurable on the Registry;
// only the relationship matters: at most one sweep per interval, evicting
// records idle longer than the max age.
const (
	// DefaultMaxSessionAge is how long a session may go untouched before
	// the sweep removes it.
	DefaultMaxSessionAge = 4 * time.Hour

	// DefaultSweepInterval is the minimum spacing between two sweeps.
	DefaultSweepInterval = 30 * time.Second
)

// evictor gates an aging sweep behind a timestamp check and a CAS permit
// so the hot interaction-recording path pays a single atomic load in the
// common case and never waits on another caller's sweep.
type evictor struct {
	maxAge   time.Duration
	interval time.Duration

	next     atomic.Int64 // unix nanos of the next eligible sweep
	sweeping atomic.Bool

	// onSweep, when set, is called once per executed sweep body. Test hook.
	onSweep func()
}

// maybeSweep runs the aging sweep if the interval has elapsed and no other
// caller is already sweeping. Losing the permit race skips the sweep
// entirely; a missed sweep is picked up next interval.
func (e *evictor) maybeSweep(sessions *sync.Map) {
	now := time.Now()
	if now.UnixNano() < e.next.Load() {
		return
	}
	if !e.sweeping.CompareAndSwap(false, true) {
		return
	}
	defer func() {
		// Advance the window and release the permit even if the sweep
		// body panics; the recording path must never observe a fault.
		e.next.Store(now.Add(e.interval).UnixNano())
		e.sweeping.Store(false)
		_ = recover()
	}()

	if e.onSweep != nil {
		e.onSweep()
	}
	e.sweep(sessions, now)
}

// sweep removes every session idle longer than maxAge. Records with no
// recorded access yet are treated as not expired. Range tolerates
// concurrent inserts and deletes from other goroutines.
func (e *evictor) sweep(sessions *sync.Map, now time.Time) {
	sessions.Range(func(key, value any) bool {
		s, ok := value.(*Session)
		if !ok {
			return true
		}
		last := s.LastAccessAt()
		if last.IsZero() {
			return true
		}
		if now.Sub(last) > e.maxAge {
			sessions.Delete(key)
		}
		return true
	})
}
