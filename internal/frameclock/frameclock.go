// Package frameclock provides the host's once-per-refresh callback primitive.
package frameclock

import (
	"sync"
	"time"
)

// DefaultInterval approximates a 60 Hz display.
const DefaultInterval = time.Second / 60

type Handle uint64

// Scheduler runs each requested callback at most once, asynchronously, unless
// it is cancelled first.
type Scheduler interface {
	RequestTick(cb func()) Handle
	CancelTick(h Handle)
}

// Timer fires each request after a fixed interval on its own goroutine.
type Timer struct {
	interval time.Duration

	mu     sync.Mutex
	next   Handle
	timers map[Handle]*time.Timer
}

func NewTimer(interval time.Duration) *Timer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Timer{interval: interval, timers: make(map[Handle]*time.Timer)}
}

func (t *Timer) RequestTick(cb func()) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	h := t.next
	t.timers[h] = time.AfterFunc(t.interval, func() {
		t.mu.Lock()
		_, live := t.timers[h]
		delete(t.timers, h)
		t.mu.Unlock()
		if live {
			cb()
		}
	})
	return h
}

func (t *Timer) CancelTick(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if timer, ok := t.timers[h]; ok {
		timer.Stop()
		delete(t.timers, h)
	}
}

// Pending counts requests that have neither fired nor been cancelled.
func (t *Timer) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}

type request struct {
	handle Handle
	cb     func()
}

// Manual queues requests until the host calls Flush, which makes frame
// timing fully deterministic.
type Manual struct {
	mu      sync.Mutex
	next    Handle
	pending []request
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) RequestTick(cb func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	m.pending = append(m.pending, request{handle: m.next, cb: cb})
	return m.next
}

func (m *Manual) CancelTick(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, req := range m.pending {
		if req.handle == h {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

// Flush runs every callback queued before the call and returns how many ran.
// Requests made by those callbacks wait for the next Flush.
func (m *Manual) Flush() int {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, req := range batch {
		req.cb()
	}
	return len(batch)
}

func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
