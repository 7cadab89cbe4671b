// Package notify provides the bounded, time-decaying notification feed that
// the connection manager and reconciler emit human-readable events into.
package notify

import (
	"sync"
	"time"
)

// Severity classifies a notification for presentation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notification is a single feed entry. IDs are unix-millisecond derived and
// strictly increasing within a queue.
type Notification struct {
	ID        int64
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

const (
	defaultTTL = 5 * time.Second
	defaultMax = 5
)

// Queue is a bounded notification feed. The newest entry is first; pushing
// beyond the capacity silently drops the oldest. Every entry expires on its
// own TTL timer unless dismissed earlier.
type Queue struct {
	mu      sync.Mutex
	items   []Notification
	timers  map[int64]*time.Timer
	lastID  int64
	ttl     time.Duration
	max     int
	subs    []chan struct{}
	stopped bool
}

// New returns a Queue with the standard capacity (5) and TTL (5s).
func New() *Queue {
	return newQueue(defaultTTL, defaultMax)
}

func newQueue(ttl time.Duration, max int) *Queue {
	return &Queue{
		timers: make(map[int64]*time.Timer),
		ttl:    ttl,
		max:    max,
	}
}

// Push prepends a notification and returns its identifier. The queue is
// truncated to capacity; dropped entries have their expiry timers stopped.
func (q *Queue) Push(message string, severity Severity) int64 {
	q.mu.Lock()
	now := time.Now()
	id := now.UnixMilli()
	if id <= q.lastID {
		id = q.lastID + 1
	}
	q.lastID = id

	q.items = append([]Notification{{
		ID:        id,
		Message:   message,
		Severity:  severity,
		CreatedAt: now,
	}}, q.items...)

	for len(q.items) > q.max {
		dropped := q.items[len(q.items)-1]
		q.items = q.items[:len(q.items)-1]
		q.stopTimerLocked(dropped.ID)
	}

	if !q.stopped {
		q.timers[id] = time.AfterFunc(q.ttl, func() {
			q.Dismiss(id)
		})
	}
	q.mu.Unlock()
	q.notify()
	return id
}

// Dismiss removes a notification by identifier. It is idempotent: removing
// an absent identifier is not an error, and a TTL timer firing after an
// explicit dismissal finds nothing to do.
func (q *Queue) Dismiss(id int64) {
	q.mu.Lock()
	q.stopTimerLocked(id)
	idx := -1
	for i, n := range q.items {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items[:idx], q.items[idx+1:]...)
	q.mu.Unlock()
	q.notify()
}

// List returns a copy of the current feed, newest first.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	dup := make([]Notification, len(q.items))
	copy(dup, q.items)
	return dup
}

// Subscribe returns a coalescing signal channel that fires after every
// change to the feed.
func (q *Queue) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	q.mu.Lock()
	q.subs = append(q.subs, ch)
	q.mu.Unlock()
	return ch
}

// Stop cancels all pending expiry timers. Entries pushed after Stop are
// kept but no longer expire; this only happens during shutdown.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
}

func (q *Queue) stopTimerLocked(id int64) {
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
}

func (q *Queue) notify() {
	q.mu.Lock()
	subs := q.subs
	q.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
