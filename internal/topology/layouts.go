package topology

import "neuroviz/internal/model"

const (
	sidePadding     = 100.0
	neuronRadius    = 15.0
	biasRadius      = 10.0
	compactRadius   = 12.0
	sigmoidFlashLen = 80
)

// Neuron ids shared by the layouts.
const (
	Input1  = "input1"
	Input2  = "input2"
	Bias1   = "bias1"
	Bias2   = "bias2"
	Hidden  = "hidden"
	Hidden1 = "hidden1"
	Hidden2 = "hidden2"
	Output  = "output"
)

var (
	upperLabel = model.Point{Y: -8}
	lowerLabel = model.Point{Y: 8}
	biasLabel  = model.Point{X: -6, Y: -6}
	biasLower  = model.Point{X: -6, Y: 6}
)

func buildOneStage(w, h float64) Topology {
	cy := h / 2
	return Topology{
		Neurons: []model.Neuron{
			{ID: Input1, Label: "Input 1", Role: model.RoleInput, Pos: model.Point{X: sidePadding, Y: cy - 60}, Radius: neuronRadius, LabelOffset: model.Point{Y: 40}, Stage: 1},
			{ID: Input2, Label: "Input 2", Role: model.RoleInput, Pos: model.Point{X: sidePadding, Y: cy + 60}, Radius: neuronRadius, LabelOffset: model.Point{Y: 40}, Stage: 1},
			{ID: Bias1, Label: "Bias", Role: model.RoleBias, Pos: model.Point{X: sidePadding, Y: cy - 120}, Radius: biasRadius, LabelOffset: model.Point{Y: 30}, Stage: 1},
			{ID: Output, Label: "Output", Role: model.RoleOutput, Pos: model.Point{X: w - sidePadding, Y: cy}, Radius: neuronRadius, LabelOffset: model.Point{Y: 40}, Stage: 1},
		},
		Edges: []model.Edge{
			{From: Input1, To: Output, Stage: 1, LabelOffset: upperLabel},
			{From: Input2, To: Output, Stage: 1, LabelOffset: lowerLabel},
			{From: Bias1, To: Output, Stage: 1, Bias: true, LabelOffset: biasLabel},
		},
		Stages: []Stage{
			{Index: 1, Speed: 0.005, Color: "#ff3333", SignalRadius: 6},
		},
	}
}

func buildTwoStage(w, h float64) Topology {
	cy := h / 2
	return Topology{
		Neurons: []model.Neuron{
			{ID: Input1, Label: "Input 1", Role: model.RoleInput, Pos: model.Point{X: sidePadding, Y: cy - 60}, Radius: neuronRadius, LabelOffset: model.Point{Y: 40}, Stage: 1},
			{ID: Input2, Label: "Input 2", Role: model.RoleInput, Pos: model.Point{X: sidePadding, Y: cy + 60}, Radius: neuronRadius, LabelOffset: model.Point{Y: 40}, Stage: 1},
			{ID: Bias1, Label: "Bias", Role: model.RoleBias, Pos: model.Point{X: sidePadding, Y: cy - 120}, Radius: biasRadius, LabelOffset: model.Point{Y: 30}, Stage: 1},
			{ID: Hidden, Label: "Hidden Output", Role: model.RoleHidden, Pos: model.Point{X: w * 0.5, Y: cy}, Radius: neuronRadius, LabelOffset: model.Point{Y: 40}, Stage: 1},
			{ID: Bias2, Label: "Bias 2", Role: model.RoleBias, Pos: model.Point{X: w * 0.5, Y: cy - 120}, Radius: biasRadius, LabelOffset: model.Point{Y: 30}, Stage: 2},
			{ID: Output, Label: "Final Output", Role: model.RoleOutput, Pos: model.Point{X: w - sidePadding, Y: cy}, Radius: neuronRadius, LabelOffset: model.Point{Y: 40}, Stage: 2},
		},
		Edges: []model.Edge{
			{From: Input1, To: Hidden, Stage: 1, LabelOffset: upperLabel},
			{From: Input2, To: Hidden, Stage: 1, LabelOffset: lowerLabel},
			{From: Bias1, To: Hidden, Stage: 1, Bias: true, LabelOffset: biasLabel},
			{From: Hidden, To: Output, Stage: 2, LabelOffset: upperLabel},
			{From: Bias2, To: Output, Stage: 2, Bias: true, LabelOffset: model.Point{Y: -6}},
		},
		Stages: []Stage{
			{Index: 1, Speed: 0.005, Color: "#ff3333", SignalRadius: 6},
			{Index: 2, Speed: 0.005, Color: "#ff3333", SignalRadius: 6, FlashTicks: sigmoidFlashLen},
		},
		Progressive: true,
	}
}

func buildThreeStage(w, h float64) Topology {
	return Topology{
		Neurons: []model.Neuron{
			{ID: Input1, Label: "Input 1", Role: model.RoleInput, Pos: model.Point{X: w * 0.15, Y: h * 0.35}, Radius: compactRadius, LabelOffset: model.Point{Y: -30}, Stage: 1},
			{ID: Input2, Label: "Input 2", Role: model.RoleInput, Pos: model.Point{X: w * 0.15, Y: h * 0.65}, Radius: compactRadius, LabelOffset: model.Point{Y: 30}, Stage: 1},
			{ID: Bias1, Label: "Bias", Role: model.RoleBias, Pos: model.Point{X: w * 0.15, Y: h * 0.5}, Radius: compactRadius, LabelOffset: model.Point{Y: 30}, Stage: 1},
			{ID: Hidden1, Label: "Hidden 1", Role: model.RoleHidden, Pos: model.Point{X: w * 0.5, Y: h * 0.35}, Radius: compactRadius, LabelOffset: model.Point{Y: -30}, Stage: 1},
			{ID: Hidden2, Label: "Hidden 2", Role: model.RoleHidden, Pos: model.Point{X: w * 0.5, Y: h * 0.65}, Radius: compactRadius, LabelOffset: model.Point{Y: 30}, Stage: 1},
			{ID: Bias2, Label: "Bias", Role: model.RoleBias, Pos: model.Point{X: w * 0.5, Y: h * 0.18}, Radius: compactRadius, LabelOffset: model.Point{Y: 30}, Stage: 1},
			{ID: Output, Label: "Output", Role: model.RoleOutput, Pos: model.Point{X: w * 0.85, Y: h * 0.5}, Radius: compactRadius, LabelOffset: model.Point{Y: -30}, Stage: 1},
		},
		Edges: []model.Edge{
			{From: Input1, To: Hidden1, Stage: 1, LabelOffset: upperLabel},
			{From: Input1, To: Hidden2, Stage: 1, LabelOffset: lowerLabel},
			{From: Input2, To: Hidden1, Stage: 1, LabelOffset: upperLabel},
			{From: Input2, To: Hidden2, Stage: 1, LabelOffset: lowerLabel},
			{From: Bias1, To: Hidden1, Stage: 1, Bias: true, LabelOffset: biasLabel},
			{From: Bias1, To: Hidden2, Stage: 1, Bias: true, LabelOffset: biasLower},
			{From: Hidden1, To: Output, Stage: 2, LabelOffset: upperLabel},
			{From: Hidden2, To: Output, Stage: 2, LabelOffset: lowerLabel},
			{From: Bias2, To: Output, Stage: 2, Bias: true, LabelOffset: biasLabel},
		},
		Stages: []Stage{
			{Index: 1, Speed: 0.003, Color: "#ef4444", SignalRadius: 8},
			{Index: 2, Speed: 0.003, Color: "#ef4444", SignalRadius: 8},
		},
	}
}
