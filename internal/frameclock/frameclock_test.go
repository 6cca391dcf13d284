package frameclock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManualFlushRunsQueuedOnce(t *testing.T) {
	m := NewManual()
	calls := 0
	m.RequestTick(func() { calls++ })
	m.RequestTick(func() { calls++ })
	if m.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", m.Pending())
	}
	if ran := m.Flush(); ran != 2 || calls != 2 {
		t.Fatalf("unexpected flush: ran=%d calls=%d", ran, calls)
	}
	if ran := m.Flush(); ran != 0 || calls != 2 {
		t.Fatalf("callbacks ran twice: ran=%d calls=%d", ran, calls)
	}
}

func TestManualCancelAndReentrantRequests(t *testing.T) {
	m := NewManual()
	calls := 0
	h := m.RequestTick(func() { calls++ })
	m.CancelTick(h)
	m.CancelTick(h)
	if m.Flush() != 0 || calls != 0 {
		t.Fatal("cancelled callback ran")
	}

	var loop func()
	loop = func() {
		calls++
		m.RequestTick(loop)
	}
	m.RequestTick(loop)
	m.Flush()
	m.Flush()
	if calls != 2 || m.Pending() != 1 {
		t.Fatalf("re-entrant request should wait for the next flush: calls=%d pending=%d", calls, m.Pending())
	}
}

func TestTimerFiresAndCancels(t *testing.T) {
	timer := NewTimer(time.Millisecond)
	var fired atomic.Int32
	done := make(chan struct{})
	timer.RequestTick(func() {
		fired.Add(1)
		close(done)
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	cancelled := NewTimer(50 * time.Millisecond)
	h := cancelled.RequestTick(func() { fired.Add(100) })
	cancelled.CancelTick(h)
	if cancelled.Pending() != 0 {
		t.Fatalf("expected no pending requests, got %d", cancelled.Pending())
	}
	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("unexpected fire count: %d", got)
	}
}
