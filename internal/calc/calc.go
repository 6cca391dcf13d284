package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"neuroviz/internal/model"
	"neuroviz/internal/nn"
	"neuroviz/internal/topology"
)

type Inputs struct {
	Input1 float64 `json:"input1"`
	Input2 float64 `json:"input2"`
}

// Report is the forward pass for one topology, values keyed by neuron id.
type Report struct {
	Kind   topology.Kind      `json:"kind"`
	Inputs Inputs             `json:"inputs"`
	Values map[string]float64 `json:"values"`
	Lines  []string           `json:"lines"`
}

func (r Report) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Output is the value of the final neuron.
func (r Report) Output() float64 {
	return r.Values[topology.Output]
}

// Compute evaluates the topology's current weights against the inputs and
// formats the arithmetic the way the panel shows it.
func Compute(topo topology.Topology, in Inputs) (Report, error) {
	values, err := nn.Forward(network(topo), map[string]float64{
		topology.Input1: in.Input1,
		topology.Input2: in.Input2,
		topology.Bias1:  1,
		topology.Bias2:  1,
	})
	if err != nil {
		return Report{}, fmt.Errorf("%s forward pass: %w", topo.Kind, err)
	}

	report := Report{Kind: topo.Kind, Inputs: in, Values: make(map[string]float64)}
	for _, n := range topo.Neurons {
		if n.Role == model.RoleHidden || n.Role == model.RoleOutput {
			report.Values[n.ID] = values[n.ID]
		}
	}

	w := func(from, to string) string {
		e, _ := topo.Edge(from, to)
		return e.Weight.String()
	}
	i1, i2 := number(in.Input1), number(in.Input2)

	switch topo.Kind {
	case topology.OneStage:
		w1, w2, wb := w(topology.Input1, topology.Output), w(topology.Input2, topology.Output), w(topology.Bias1, topology.Output)
		report.Lines = []string{
			fmt.Sprintf("Formula: Output = (Input1 × %s) + (Input2 × %s) + (Bias × %s)", w1, w2, wb),
			fmt.Sprintf("Calculation: (%s × %s) + (%s × %s) + (1 × %s) = %s", i1, w1, i2, w2, wb, fixed(values[topology.Output])),
		}
	case topology.TwoStage:
		w1, w2, wb := w(topology.Input1, topology.Hidden), w(topology.Input2, topology.Hidden), w(topology.Bias1, topology.Hidden)
		wout, wb2 := w(topology.Hidden, topology.Output), w(topology.Bias2, topology.Output)
		hidden := fixed(values[topology.Hidden])
		report.Lines = []string{
			fmt.Sprintf("Stage1: Hidden = (Input1 × %s) + (Input2 × %s) + (Bias × %s)", w1, w2, wb),
			fmt.Sprintf("Calculation: (%s×%s) + (%s×%s) + (1×%s) = %s", i1, w1, i2, w2, wb, hidden),
			"",
			fmt.Sprintf("Stage2: Final = (Hidden × %s) + (Bias2 × %s)", wout, wb2),
			fmt.Sprintf("Calculation: (%s×%s) + (1×%s) = %s", hidden, wout, wb2, fixed(values[topology.Output])),
		}
	case topology.ThreeStage:
		h1, h2 := fixed(values[topology.Hidden1]), fixed(values[topology.Hidden2])
		for _, h := range []struct{ id, name, value string }{
			{topology.Hidden1, "Hidden 1", h1},
			{topology.Hidden2, "Hidden 2", h2},
		} {
			wa, wb, wc := w(topology.Input1, h.id), w(topology.Input2, h.id), w(topology.Bias1, h.id)
			report.Lines = append(report.Lines,
				fmt.Sprintf("%s = (Input1 × %s) + (Input2 × %s) + (Bias × %s)", h.name, wa, wb, wc),
				fmt.Sprintf("Calculation: (%s×%s) + (%s×%s) + (1×%s) = %s", i1, wa, i2, wb, wc, h.value),
				"",
			)
		}
		wh1, wh2, wb2 := w(topology.Hidden1, topology.Output), w(topology.Hidden2, topology.Output), w(topology.Bias2, topology.Output)
		report.Lines = append(report.Lines,
			fmt.Sprintf("Output = (Hidden1 × %s) + (Hidden2 × %s) + (Bias × %s)", wh1, wh2, wb2),
			fmt.Sprintf("Calculation: (%s×%s) + (%s×%s) + (1×%s) = %s", h1, wh1, h2, wh2, wb2, fixed(values[topology.Output])),
		)
	default:
		return Report{}, fmt.Errorf("%w: %s", topology.ErrUnknownKind, topo.Kind)
	}
	return report, nil
}

// network lists hidden units before outputs so Forward sees finished inputs.
func network(topo topology.Topology) nn.Network {
	var net nn.Network
	for _, role := range []model.Role{model.RoleHidden, model.RoleOutput} {
		for _, n := range topo.Neurons {
			if n.Role == role {
				net.Nodes = append(net.Nodes, nn.Node{ID: n.ID, Activation: "identity"})
			}
		}
	}
	for _, e := range topo.Edges {
		net.Links = append(net.Links, nn.Link{From: e.From, To: e.To, Weight: e.Weight.Value()})
	}
	return net
}

func fixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// number prints an input the shortest way that round-trips.
func number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
