package scheduler

import (
	"fmt"

	"neuroviz/internal/model"
	"neuroviz/internal/topology"
)

// progressEpsilon absorbs float drift so a signal finishes after exactly
// ceil(1/speed) advances.
const progressEpsilon = 1e-9

type Status int

const (
	StatusIdle Status = iota
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Phase is where the current stage sits within its wave.
type Phase int

const (
	// PhaseSpawning means the next tick emits the stage's signals.
	PhaseSpawning Phase = iota
	PhasePropagating
	// PhaseFlashing counts the sigmoid flash down before spawning.
	PhaseFlashing
)

func (p Phase) String() string {
	switch p {
	case PhaseSpawning:
		return "spawning"
	case PhasePropagating:
		return "propagating"
	case PhaseFlashing:
		return "flashing"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type State struct {
	Status  Status         `json:"status"`
	Stage   int            `json:"stage"`
	Phase   Phase          `json:"phase"`
	Signals []model.Signal `json:"signals"`
	Flash   *model.Flash   `json:"flash,omitempty"`
	// Ticks counts ticks since the last start.
	Ticks int `json:"ticks"`
	// Flashes counts flashes created since the last start.
	Flashes int `json:"flashes"`
}

// Initial is the state of a freshly built or reset instance.
func Initial() State {
	return State{Status: StatusIdle, Stage: 1, Phase: PhaseSpawning}
}

func (s State) Running() bool { return s.Status == StatusRunning }

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	if s.Signals != nil {
		out.Signals = make([]model.Signal, len(s.Signals))
		copy(out.Signals, s.Signals)
	}
	if s.Flash != nil {
		flash := *s.Flash
		out.Flash = &flash
	}
	return out
}

// Start arms a new run. Starting a running state changes nothing.
func Start(s State) State {
	if s.Running() {
		return s
	}
	return State{Status: StatusRunning, Stage: 1, Phase: PhaseSpawning}
}

// Stop halts ticking and keeps the signals where they are.
func Stop(s State) State {
	out := s.Clone()
	out.Status = StatusIdle
	return out
}

// Advance applies elapsed ticks, stopping early once the run goes idle.
func Advance(topo topology.Topology, s State, elapsed int) State {
	for i := 0; i < elapsed && s.Running(); i++ {
		s = Step(topo, s)
	}
	return s
}

// Step is one frame of the animation. Idle states are returned unchanged.
func Step(topo topology.Topology, s State) State {
	if !s.Running() {
		return s
	}
	next := s.Clone()
	next.Ticks++

	if next.Phase == PhaseFlashing {
		if next.Flash != nil {
			next.Flash.Remaining--
		}
		if next.Flash != nil && next.Flash.Remaining > 0 {
			return next
		}
		next.Flash = nil
		next.Phase = PhaseSpawning
	}

	stage, ok := topo.Stage(next.Stage)
	if !ok {
		next.Status = StatusIdle
		next.Signals = nil
		return next
	}

	if next.Phase == PhaseSpawning {
		next.Signals = spawn(topo, stage)
		next.Phase = PhasePropagating
	}

	live := next.Signals[:0]
	for _, sig := range next.Signals {
		sig.Progress += sig.Speed
		if sig.Progress < 1-progressEpsilon {
			live = append(live, sig)
		}
	}
	next.Signals = live
	if len(live) > 0 {
		return next
	}

	following, ok := topo.Stage(next.Stage + 1)
	if !ok {
		next.Status = StatusIdle
		return next
	}
	next.Stage = following.Index
	if following.FlashTicks > 0 {
		next.Flash = &model.Flash{Intensity: 1, Remaining: following.FlashTicks}
		next.Flashes++
		next.Phase = PhaseFlashing
	} else {
		next.Phase = PhaseSpawning
	}
	return next
}

// spawn emits one signal per edge of the stage, replacing whatever was live.
func spawn(topo topology.Topology, stage topology.Stage) []model.Signal {
	edges := topo.StageEdges(stage.Index)
	out := make([]model.Signal, 0, len(edges))
	for _, e := range edges {
		from, okFrom := topo.Neuron(e.From)
		to, okTo := topo.Neuron(e.To)
		if !okFrom || !okTo {
			continue
		}
		out = append(out, model.Signal{
			Start:  from.Pos,
			End:    to.Pos,
			Speed:  stage.Speed,
			Color:  stage.Color,
			Radius: stage.SignalRadius,
			Stage:  stage.Index,
		})
	}
	return out
}

// Validate checks the structural invariants of a state.
func Validate(s State) error {
	for i, sig := range s.Signals {
		if sig.Stage != s.Stage {
			return fmt.Errorf("signal %d belongs to stage %d while stage %d is active", i, sig.Stage, s.Stage)
		}
		if sig.Progress < 0 || sig.Progress >= 1 {
			return fmt.Errorf("signal %d progress %f outside [0,1)", i, sig.Progress)
		}
	}
	if s.Flash != nil && s.Phase != PhaseFlashing {
		return fmt.Errorf("flash present in phase %s", s.Phase)
	}
	if s.Phase == PhaseFlashing && len(s.Signals) > 0 {
		return fmt.Errorf("%d signals live during flash", len(s.Signals))
	}
	return nil
}
