package topology

import (
	"errors"
	"fmt"
	"math/rand"

	"neuroviz/internal/model"
)

type Kind string

const (
	OneStage   Kind = "one-stage"
	TwoStage   Kind = "two-stage"
	ThreeStage Kind = "three-stage"
)

const (
	MinWidth  = 300.0
	MinHeight = 300.0
)

var (
	ErrUnknownKind    = errors.New("unknown topology kind")
	ErrCanvasTooSmall = errors.New("canvas too small")
)

// Kinds lists the supported topologies in display order.
func Kinds() []Kind {
	return []Kind{OneStage, TwoStage, ThreeStage}
}

func ParseKind(name string) (Kind, error) {
	switch name {
	case "one-stage", "1", "layer1":
		return OneStage, nil
	case "two-stage", "2", "layer2":
		return TwoStage, nil
	case "three-stage", "3", "layer3":
		return ThreeStage, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, name)
	}
}

// Stage describes one propagation wave: the edges tagged with Index fire
// together at Speed once the previous wave has drained.
type Stage struct {
	Index        int     `json:"index"`
	Speed        float64 `json:"speed"`
	Color        string  `json:"color"`
	SignalRadius float64 `json:"signal_radius"`
	// FlashTicks delays the spawn with a sigmoid flash of that many ticks.
	FlashTicks int `json:"flash_ticks,omitempty"`
}

type Topology struct {
	Kind    Kind           `json:"kind"`
	Width   float64        `json:"width"`
	Height  float64        `json:"height"`
	Neurons []model.Neuron `json:"neurons"`
	Edges   []model.Edge   `json:"edges"`
	Stages  []Stage        `json:"stages"`
	// Progressive hides neurons and edges of later stages until they are reached.
	Progressive bool `json:"progressive"`
}

// Build lays out the topology for a canvas and draws fresh random weights.
// Positions depend only on the canvas size.
func Build(kind Kind, width, height float64, rng *rand.Rand) (Topology, error) {
	if width < MinWidth || height < MinHeight {
		return Topology{}, fmt.Errorf("%w: %.0fx%.0f (minimum %.0fx%.0f)", ErrCanvasTooSmall, width, height, MinWidth, MinHeight)
	}
	var topo Topology
	switch kind {
	case OneStage:
		topo = buildOneStage(width, height)
	case TwoStage:
		topo = buildTwoStage(width, height)
	case ThreeStage:
		topo = buildThreeStage(width, height)
	default:
		return Topology{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	topo.Kind = kind
	topo.Width = width
	topo.Height = height
	for i := range topo.Edges {
		if topo.Edges[i].Bias {
			topo.Edges[i].Weight = model.BiasWeight
			continue
		}
		topo.Edges[i].Weight = RandomWeight(rng)
	}
	return topo, nil
}

// RandomWeight picks one of the 31 values 0.0, 0.1, ..., 3.0 uniformly.
func RandomWeight(rng *rand.Rand) model.Weight {
	var tenths int
	if rng == nil {
		tenths = rand.Intn(model.MaxWeightTenths + 1)
	} else {
		tenths = rng.Intn(model.MaxWeightTenths + 1)
	}
	w, _ := model.WeightFromTenths(tenths)
	return w
}

func (t Topology) Neuron(id string) (model.Neuron, bool) {
	for _, n := range t.Neurons {
		if n.ID == id {
			return n, true
		}
	}
	return model.Neuron{}, false
}

func (t Topology) StageEdges(index int) []model.Edge {
	var out []model.Edge
	for _, e := range t.Edges {
		if e.Stage == index {
			out = append(out, e)
		}
	}
	return out
}

func (t Topology) Stage(index int) (Stage, bool) {
	for _, s := range t.Stages {
		if s.Index == index {
			return s, true
		}
	}
	return Stage{}, false
}

// Edge returns the edge between two neurons.
func (t Topology) Edge(from, to string) (model.Edge, bool) {
	for _, e := range t.Edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return model.Edge{}, false
}

// Weights keys every edge weight by "from->to".
func (t Topology) Weights() map[string]model.Weight {
	out := make(map[string]model.Weight, len(t.Edges))
	for _, e := range t.Edges {
		out[EdgeKey(e.From, e.To)] = e.Weight
	}
	return out
}

// SetWeight replaces a non-bias edge weight.
func (t *Topology) SetWeight(from, to string, w model.Weight) error {
	for i := range t.Edges {
		e := &t.Edges[i]
		if e.From != from || e.To != to {
			continue
		}
		if e.Bias {
			return fmt.Errorf("edge %s is a bias edge", EdgeKey(from, to))
		}
		e.Weight = w
		return nil
	}
	return fmt.Errorf("edge %s not found", EdgeKey(from, to))
}

// Visible reports whether an element introduced at stage is drawn while the
// animation sits at current.
func (t Topology) Visible(stage, current int) bool {
	return !t.Progressive || stage <= current
}

func EdgeKey(from, to string) string {
	return from + "->" + to
}
