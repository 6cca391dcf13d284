package viz

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"neuroviz/internal/calc"
	"neuroviz/internal/frameclock"
	"neuroviz/internal/input"
	"neuroviz/internal/render/record"
	"neuroviz/internal/scheduler"
	"neuroviz/internal/topology"
)

type harness struct {
	viz       *Visualization
	clock     *frameclock.Manual
	surface   *record.Recorder
	text      string
	completed []Completion
}

func newHarness(t *testing.T, kind topology.Kind, in input.Source) *harness {
	t.Helper()
	h := &harness{clock: frameclock.NewManual(), surface: record.New()}
	v, err := New(Config{
		Kind:       kind,
		Width:      800,
		Height:     600,
		Rand:       rand.New(rand.NewSource(11)),
		Clock:      h.clock,
		Surface:    h.surface,
		Display:    DisplayFunc(func(text string) { h.text = text }),
		Inputs:     in,
		OnComplete: func(c Completion) { h.completed = append(h.completed, c) },
	})
	if err != nil {
		t.Fatalf("new %s: %v", kind, err)
	}
	h.viz = v
	return h
}

func (h *harness) flush(n int) {
	for i := 0; i < n; i++ {
		if h.clock.Flush() == 0 {
			return
		}
	}
}

func TestNewPaintsAndReports(t *testing.T) {
	h := newHarness(t, topology.OneStage, input.Fixed{2, 3})
	if h.surface.Count(record.OpClear) != 1 {
		t.Fatalf("expected one initial paint, got %d", h.surface.Count(record.OpClear))
	}
	if h.viz.State().Running() {
		t.Fatal("new visualization should be idle")
	}
	if h.text == "" || h.text != h.viz.Report().Text() {
		t.Fatalf("display not filled: %q", h.text)
	}
	if h.clock.Pending() != 0 {
		t.Fatal("idle visualization requested a tick")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Kind: "five-stage", Width: 800, Height: 600}); !errors.Is(err, topology.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := New(Config{Kind: topology.OneStage, Width: 100, Height: 600}); !errors.Is(err, topology.ErrCanvasTooSmall) {
		t.Fatalf("expected ErrCanvasTooSmall, got %v", err)
	}
}

func TestRunCompletesOnce(t *testing.T) {
	h := newHarness(t, topology.OneStage, input.Fixed{2, 3})
	h.viz.Start()
	h.flush(1000)

	if h.viz.State().Running() {
		t.Fatal("run did not drain")
	}
	if len(h.completed) != 1 {
		t.Fatalf("expected one completion, got %d", len(h.completed))
	}
	done := h.completed[0]
	if done.Kind != topology.OneStage || done.State.Ticks != 200 || len(done.State.Signals) != 0 {
		t.Fatalf("unexpected completion: kind=%s ticks=%d signals=%d", done.Kind, done.State.Ticks, len(done.State.Signals))
	}
	if got := h.surface.Count(record.OpClear); got != 201 {
		t.Fatalf("expected a paint per tick plus the initial one, got %d", got)
	}
}

func TestStartWhileRunningKeepsOneTickPending(t *testing.T) {
	h := newHarness(t, topology.TwoStage, input.Fixed{1, 1})
	h.viz.Start()
	h.flush(5)
	h.viz.Start()
	if h.clock.Pending() != 1 {
		t.Fatalf("expected a single pending tick, got %d", h.clock.Pending())
	}
	if ticks := h.viz.State().Ticks; ticks != 5 {
		t.Fatalf("start while running restarted the run: ticks=%d", ticks)
	}
}

func TestStopFreezesStateAndPainting(t *testing.T) {
	h := newHarness(t, topology.ThreeStage, input.Fixed{1, 2})
	h.viz.Start()
	h.flush(20)
	h.viz.Stop()

	before := h.viz.State()
	paints := h.surface.Count(record.OpClear)
	h.flush(50)
	after := h.viz.State()

	if after.Running() || after.Ticks != before.Ticks || len(after.Signals) != len(before.Signals) {
		t.Fatalf("state changed after stop: before=%+v after=%+v", before, after)
	}
	if after.Signals[0].Progress != before.Signals[0].Progress {
		t.Fatal("signals advanced after stop")
	}
	if got := h.surface.Count(record.OpClear); got != paints {
		t.Fatalf("painted after stop: %d -> %d", paints, got)
	}
	if len(h.completed) != 0 {
		t.Fatal("stopped run reported completion")
	}
}

// firedClock hands every callback back to the test and ignores cancellation,
// like a host whose frame callback is already in flight.
type firedClock struct {
	callbacks []func()
}

func (c *firedClock) RequestTick(cb func()) frameclock.Handle {
	c.callbacks = append(c.callbacks, cb)
	return frameclock.Handle(len(c.callbacks))
}

func (c *firedClock) CancelTick(frameclock.Handle) {}

func TestStaleTickAfterStopIsDiscarded(t *testing.T) {
	clock := &firedClock{}
	surface := record.New()
	v, err := New(Config{Kind: topology.OneStage, Width: 800, Height: 600, Clock: clock, Surface: surface})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	v.Start()
	v.Stop()
	paints := surface.Count(record.OpClear)
	clock.callbacks[0]()
	if s := v.State(); s.Ticks != 0 || s.Running() {
		t.Fatalf("stale tick mutated state: %+v", s)
	}
	if surface.Count(record.OpClear) != paints {
		t.Fatal("stale tick painted")
	}

	v.Start()
	clock.callbacks[0]()
	if v.State().Ticks != 0 {
		t.Fatal("tick from the previous run advanced the new one")
	}
	clock.callbacks[1]()
	if v.State().Ticks != 1 {
		t.Fatalf("current tick did not advance: %d", v.State().Ticks)
	}
}

func TestResetReturnsToIdleWithFreshWeights(t *testing.T) {
	pair := input.NewPair("2", "3")
	h := newHarness(t, topology.ThreeStage, pair)
	h.viz.Start()
	h.flush(30)

	original := h.viz.Topology().Weights()
	changed := false
	for i := 0; i < 5 && !changed; i++ {
		if err := h.viz.Reset(); err != nil {
			t.Fatalf("reset: %v", err)
		}
		for key, w := range h.viz.Topology().Weights() {
			if w != original[key] {
				changed = true
			}
		}
	}
	if !changed {
		t.Fatal("reset never redrew weights")
	}

	s := h.viz.State()
	if s.Running() || s.Stage != 1 || s.Phase != scheduler.PhaseSpawning || len(s.Signals) != 0 || s.Flash != nil {
		t.Fatalf("reset did not return to the initial state: %+v", s)
	}
	if h.clock.Pending() != 0 {
		t.Fatal("reset left a tick pending")
	}
	want, err := calc.Compute(h.viz.Topology(), calc.Inputs{Input1: 2, Input2: 3})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if h.text != want.Text() {
		t.Fatalf("report out of date after reset:\n got %q\nwant %q", h.text, want.Text())
	}
}

func TestUpdateCalculationDisplayReadsInputs(t *testing.T) {
	pair := input.NewPair("2", "3")
	h := newHarness(t, topology.OneStage, pair)
	pair.Input1.Set("abc")
	pair.Input2.Set("4.5")
	h.viz.UpdateCalculationDisplay()

	if !strings.Contains(h.text, "(0 × ") || !strings.Contains(h.text, "(4.5 × ") {
		t.Fatalf("report ignores current inputs: %q", h.text)
	}
	if h.viz.Report().Inputs != (calc.Inputs{Input1: 0, Input2: 4.5}) {
		t.Fatalf("unexpected report inputs: %+v", h.viz.Report().Inputs)
	}
}

func TestResizeAppliesOnReset(t *testing.T) {
	h := newHarness(t, topology.TwoStage, input.Fixed{})
	if err := h.viz.Resize(200, 200); !errors.Is(err, topology.ErrCanvasTooSmall) {
		t.Fatalf("expected ErrCanvasTooSmall, got %v", err)
	}
	paints := h.surface.Count(record.OpClear)
	if err := h.viz.Resize(1024, 768); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if h.surface.Count(record.OpClear) != paints+1 {
		t.Fatal("resize did not repaint")
	}
	if h.viz.Topology().Width != 800 {
		t.Fatal("layout changed before reset")
	}
	if err := h.viz.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if topo := h.viz.Topology(); topo.Width != 1024 || topo.Height != 768 {
		t.Fatalf("layout ignores new size: %.0fx%.0f", topo.Width, topo.Height)
	}
}
