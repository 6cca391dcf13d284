package render

import (
	"neuroviz/internal/model"
	"neuroviz/internal/scheduler"
	"neuroviz/internal/topology"
)

// Palette holds the colors of one diagram style.
type Palette struct {
	Background   string
	Edge         string
	Text         string
	NeuronFill   string
	NeuronStroke string
	BiasFill     string
	BiasStroke   string
	FlashFill    string
	Caption      string
}

var (
	classicPalette = Palette{
		Background:   "#f9f9f9",
		Edge:         "#cccccc",
		Text:         "#333333",
		NeuronFill:   "#e8e8e8",
		NeuronStroke: "#667eea",
		BiasFill:     "#fff3e0",
		BiasStroke:   "#ff9800",
		FlashFill:    "#ffcccc",
		Caption:      "#666666",
	}
	layeredPalette = Palette{
		Background:   "#ffffff",
		Edge:         "#dddddd",
		Text:         "#333333",
		NeuronFill:   "#f0f0f0",
		NeuronStroke: "#333333",
		BiasFill:     "#f0f0f0",
		BiasStroke:   "#333333",
		FlashFill:    "#ffcccc",
		Caption:      "#666666",
	}
)

func PaletteFor(kind topology.Kind) Palette {
	if kind == topology.ThreeStage {
		return layeredPalette
	}
	return classicPalette
}

var (
	weightFont  = Font{Size: 12}
	labelFont   = Font{Size: 14, Bold: true}
	captionFont = Font{Size: 12, Italic: true}
)

const (
	edgeWidth      = 2.0
	flashCycle     = 50
	captionLift    = 20.0
	sigmoidCaption = "sigmoid()"
)

// Frame is everything the renderer needs for one paint.
type Frame struct {
	Topology topology.Topology `json:"topology"`
	Stage    int               `json:"stage"`
	Signals  []model.Signal    `json:"signals"`
	Flash    *model.Flash      `json:"flash,omitempty"`
}

func FrameOf(topo topology.Topology, state scheduler.State) Frame {
	s := state.Clone()
	return Frame{Topology: topo, Stage: s.Stage, Signals: s.Signals, Flash: s.Flash}
}

// FlashOn is the double-blink cadence of the sigmoid flash.
func FlashOn(remaining int) bool {
	phase := remaining % flashCycle
	return (phase > 10 && phase < 30) || (phase > 30 && phase < 50)
}

// Draw paints the frame. A nil surface draws nothing.
func Draw(s Surface, f Frame) {
	if s == nil {
		return
	}
	topo := f.Topology
	pal := PaletteFor(topo.Kind)
	stage := f.Stage
	if stage < 1 {
		stage = 1
	}

	s.Clear(Rect{W: topo.Width, H: topo.Height}, pal.Background)

	for _, e := range topo.Edges {
		if !topo.Visible(e.Stage, stage) {
			continue
		}
		from, okFrom := topo.Neuron(e.From)
		to, okTo := topo.Neuron(e.To)
		if !okFrom || !okTo {
			continue
		}
		s.DrawLine(from.Pos, to.Pos, pal.Edge, edgeWidth)
		at := model.Midpoint(from.Pos, to.Pos).Add(e.LabelOffset)
		s.DrawText(e.Weight.String(), at, weightFont, AlignCenter, pal.Text)
	}

	flashing := f.Flash != nil && FlashOn(f.Flash.Remaining)
	for _, n := range topo.Neurons {
		if !topo.Visible(n.Stage, stage) {
			continue
		}
		fill, stroke := pal.NeuronFill, pal.NeuronStroke
		switch {
		case n.Role == model.RoleBias:
			fill, stroke = pal.BiasFill, pal.BiasStroke
		case n.Role == model.RoleHidden && flashing:
			fill = pal.FlashFill
		}
		s.DrawCircle(n.Pos, n.Radius, fill, stroke)
	}

	for _, sig := range f.Signals {
		s.DrawCircle(sig.Position(), sig.Radius, sig.Color, "")
	}

	for _, n := range topo.Neurons {
		if !topo.Visible(n.Stage, stage) {
			continue
		}
		s.DrawText(n.Label, n.Pos.Add(n.LabelOffset), labelFont, AlignCenter, pal.Text)
	}

	drawActivationCaptions(s, topo, stage, pal)
}

// drawActivationCaptions labels the hidden-to-output link of every flash stage.
func drawActivationCaptions(s Surface, topo topology.Topology, current int, pal Palette) {
	for _, st := range topo.Stages {
		if st.FlashTicks <= 0 || st.Index > current {
			continue
		}
		for _, e := range topo.StageEdges(st.Index) {
			from, okFrom := topo.Neuron(e.From)
			to, okTo := topo.Neuron(e.To)
			if !okFrom || !okTo || from.Role != model.RoleHidden {
				continue
			}
			at := model.Midpoint(from.Pos, to.Pos).Add(model.Point{Y: -captionLift})
			s.DrawText(sigmoidCaption, at, captionFont, AlignCenter, pal.Caption)
		}
	}
}
