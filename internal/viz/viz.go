// Package viz runs one animated network: it owns the topology, the scheduler
// state and the frame clock subscription, and paints every tick.
package viz

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"neuroviz/internal/calc"
	"neuroviz/internal/frameclock"
	"neuroviz/internal/input"
	"neuroviz/internal/render"
	"neuroviz/internal/scheduler"
	"neuroviz/internal/topology"
)

// Display receives the multi-line calculation report.
type Display interface {
	SetText(text string)
}

type DisplayFunc func(text string)

func (f DisplayFunc) SetText(text string) { f(text) }

// Completion describes a run that drained on its own.
type Completion struct {
	Kind     topology.Kind
	Topology topology.Topology
	State    scheduler.State
	Report   calc.Report
	At       time.Time
}

type Config struct {
	Kind   topology.Kind
	Width  float64
	Height float64
	// Rand draws the weights. Nil uses the global source.
	Rand *rand.Rand
	// Clock defaults to a Timer at frameclock.DefaultInterval.
	Clock   frameclock.Scheduler
	Surface render.Surface
	Display Display
	Inputs  input.Source
	// OnFrame runs after every paint, outside the instance lock.
	OnFrame    func(render.Frame)
	OnComplete func(Completion)
	Now        func() time.Time
}

type Visualization struct {
	cfg Config

	mu      sync.Mutex
	width   float64
	height  float64
	topo    topology.Topology
	state   scheduler.State
	report  calc.Report
	gen     uint64
	handle  frameclock.Handle
	pending bool
}

// New builds the topology, paints the first frame and fills the display.
func New(cfg Config) (*Visualization, error) {
	kind, err := topology.ParseKind(string(cfg.Kind))
	if err != nil {
		return nil, err
	}
	cfg.Kind = kind
	if cfg.Clock == nil {
		cfg.Clock = frameclock.NewTimer(frameclock.DefaultInterval)
	}
	if cfg.Inputs == nil {
		cfg.Inputs = input.Fixed{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	v := &Visualization{cfg: cfg, width: cfg.Width, height: cfg.Height}

	v.mu.Lock()
	if err := v.setupLocked(); err != nil {
		v.mu.Unlock()
		return nil, err
	}
	frame, text := v.paintLocked(), v.report.Text()
	v.mu.Unlock()

	v.publish(frame, text, nil)
	return v, nil
}

func (v *Visualization) Kind() topology.Kind { return v.cfg.Kind }

// Start begins a run unless one is already animating.
func (v *Visualization) Start() {
	v.mu.Lock()
	if v.state.Running() {
		v.mu.Unlock()
		return
	}
	v.state = scheduler.Start(v.state)
	v.refreshReportLocked()
	text := v.report.Text()
	v.scheduleLocked()
	v.mu.Unlock()

	v.setText(text)
}

// Stop cancels the pending tick. Signals stay where they are and no further
// tick mutates or paints, even one the clock has already fired.
func (v *Visualization) Stop() {
	v.mu.Lock()
	v.stopLocked()
	v.mu.Unlock()
}

// Reset stops, rebuilds the topology with fresh weights and repaints.
func (v *Visualization) Reset() error {
	v.mu.Lock()
	v.stopLocked()
	err := v.setupLocked()
	var (
		frame render.Frame
		text  string
	)
	if err == nil {
		frame, text = v.paintLocked(), v.report.Text()
	}
	v.mu.Unlock()
	if err != nil {
		return err
	}
	v.publish(frame, text, nil)
	return nil
}

// UpdateCalculationDisplay recomputes the report from the current inputs.
func (v *Visualization) UpdateCalculationDisplay() {
	v.mu.Lock()
	v.refreshReportLocked()
	text := v.report.Text()
	v.mu.Unlock()
	v.setText(text)
}

// Resize records a new canvas size and repaints the current frame. The layout
// follows the new size on the next Reset.
func (v *Visualization) Resize(width, height float64) error {
	if width < topology.MinWidth || height < topology.MinHeight {
		return fmt.Errorf("%w: %.0fx%.0f", topology.ErrCanvasTooSmall, width, height)
	}
	v.mu.Lock()
	v.width, v.height = width, height
	frame := v.paintLocked()
	v.mu.Unlock()
	v.publish(frame, "", nil)
	return nil
}

func (v *Visualization) Topology() topology.Topology {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.topo
}

func (v *Visualization) State() scheduler.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Clone()
}

func (v *Visualization) Report() calc.Report {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.report
}

func (v *Visualization) Frame() render.Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return render.FrameOf(v.topo, v.state)
}

func (v *Visualization) setupLocked() error {
	topo, err := topology.Build(v.cfg.Kind, v.width, v.height, v.cfg.Rand)
	if err != nil {
		return fmt.Errorf("setup %s: %w", v.cfg.Kind, err)
	}
	v.topo = topo
	v.state = scheduler.Initial()
	v.refreshReportLocked()
	return nil
}

func (v *Visualization) refreshReportLocked() {
	in1, in2 := v.cfg.Inputs.Values()
	report, err := calc.Compute(v.topo, calc.Inputs{Input1: in1, Input2: in2})
	if err != nil {
		return
	}
	v.report = report
}

func (v *Visualization) stopLocked() {
	v.gen++
	if v.pending {
		v.cfg.Clock.CancelTick(v.handle)
		v.pending = false
	}
	v.state = scheduler.Stop(v.state)
}

func (v *Visualization) scheduleLocked() {
	gen := v.gen
	v.pending = true
	v.handle = v.cfg.Clock.RequestTick(func() { v.tick(gen) })
}

func (v *Visualization) tick(gen uint64) {
	v.mu.Lock()
	if gen != v.gen || !v.state.Running() {
		v.mu.Unlock()
		return
	}
	v.pending = false
	v.state = scheduler.Step(v.topo, v.state)
	frame := v.paintLocked()

	var done *Completion
	if v.state.Running() {
		v.scheduleLocked()
	} else {
		done = &Completion{
			Kind:     v.cfg.Kind,
			Topology: v.topo,
			State:    v.state.Clone(),
			Report:   v.report,
			At:       v.cfg.Now(),
		}
	}
	v.mu.Unlock()

	v.publish(frame, "", done)
}

func (v *Visualization) paintLocked() render.Frame {
	frame := render.FrameOf(v.topo, v.state)
	render.Draw(v.cfg.Surface, frame)
	return frame
}

func (v *Visualization) publish(frame render.Frame, text string, done *Completion) {
	if v.cfg.OnFrame != nil {
		v.cfg.OnFrame(frame)
	}
	if text != "" {
		v.setText(text)
	}
	if done != nil && v.cfg.OnComplete != nil {
		v.cfg.OnComplete(*done)
	}
}

func (v *Visualization) setText(text string) {
	if v.cfg.Display != nil {
		v.cfg.Display.SetText(text)
	}
}
