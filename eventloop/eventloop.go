// Package eventloop is the cooperative single-threaded scheduler the editor
// runs on: a microtask queue plus one-shot timers, drained by the host.
package eventloop

import (
	"slices"
	"sync"
	"time"
)

// maxTurns bounds Drain so a task that keeps re-queueing itself cannot hang the host.
const maxTurns = 10000

// Loop manages microtasks and timers.
type Loop struct {
	microtasks []func()
	timers     []*timer
	nextID     int
	now        func() time.Time
	mu         sync.Mutex
}

// timer represents a scheduled one-shot callback.
type timer struct {
	id       int
	callback func()
	dueTime  time.Time
}

// New creates an empty loop using the wall clock.
func New() *Loop {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty loop reading time from now.
func NewWithClock(now func() time.Time) *Loop {
	return &Loop{nextID: 1, now: now}
}

// QueueMicrotask adds fn to the microtask queue.
// Microtasks run before any timer of the same turn.
func (l *Loop) QueueMicrotask(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.microtasks = append(l.microtasks, fn)
}

// SetTimeout schedules fn to run once after delay and returns its id.
func (l *Loop) SetTimeout(fn func(), delay time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.timers = append(l.timers, &timer{id: id, callback: fn, dueTime: l.now().Add(delay)})
	return id
}

// ClearTimeout cancels a pending timer. Unknown ids are ignored.
func (l *Loop) ClearTimeout(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timers = slices.DeleteFunc(l.timers, func(t *timer) bool { return t.id == id })
}

// RunOnce processes one iteration of the loop: it drains all microtasks, then
// runs every timer that is due, in due order. Returns true if work remains.
func (l *Loop) RunOnce() bool {
	l.drainMicrotasks()

	l.mu.Lock()
	now := l.now()
	var due []*timer
	l.timers = slices.DeleteFunc(l.timers, func(t *timer) bool {
		if t.dueTime.After(now) {
			return false
		}
		due = append(due, t)
		return true
	})
	l.mu.Unlock()

	slices.SortStableFunc(due, func(a, b *timer) int { return a.dueTime.Compare(b.dueTime) })
	for _, t := range due {
		t.callback()
		l.drainMicrotasks()
	}
	return l.HasPending()
}

func (l *Loop) drainMicrotasks() {
	for {
		l.mu.Lock()
		if len(l.microtasks) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.microtasks[0]
		l.microtasks = l.microtasks[1:]
		l.mu.Unlock()

		fn()
	}
}

// Drain runs turns until no microtask or due timer is left. Timers due in
// the future stay queued.
func (l *Loop) Drain() {
	for range maxTurns {
		l.RunOnce()
		if !l.hasRunnable() {
			return
		}
	}
}

// HasPending returns true if there are any pending microtasks or timers.
func (l *Loop) HasPending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.microtasks) > 0 || len(l.timers) > 0
}

func (l *Loop) hasRunnable() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.microtasks) > 0 {
		return true
	}
	now := l.now()
	for _, t := range l.timers {
		if !t.dueTime.After(now) {
			return true
		}
	}
	return false
}

// NextDue returns the time until the next timer is due, or 0 if none is pending
// or one is already due.
func (l *Loop) NextDue() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.timers) == 0 {
		return 0
	}
	now := l.now()
	minDuration := time.Duration(-1)
	for _, t := range l.timers {
		d := t.dueTime.Sub(now)
		if d <= 0 {
			return 0
		}
		if minDuration < 0 || d < minDuration {
			minDuration = d
		}
	}
	return minDuration
}
