package calc

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"neuroviz/internal/model"
	"neuroviz/internal/topology"
)

// unitTopology builds a topology whose non-bias weights are all 1.0.
func unitTopology(t *testing.T, kind topology.Kind) topology.Topology {
	t.Helper()
	topo, err := topology.Build(kind, 800, 600, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	one, _ := model.WeightFromTenths(10)
	for _, e := range topo.Edges {
		if e.Bias {
			continue
		}
		if err := topo.SetWeight(e.From, e.To, one); err != nil {
			t.Fatalf("set weight: %v", err)
		}
	}
	return topo
}

func TestComputeUnitWeights(t *testing.T) {
	in := Inputs{Input1: 2, Input2: 3}
	tests := []struct {
		kind   topology.Kind
		values map[string]float64
		last   string
	}{
		{
			kind:   topology.OneStage,
			values: map[string]float64{topology.Output: 6},
			last:   "Calculation: (2 × 1.0) + (3 × 1.0) + (1 × 1.0) = 6.000",
		},
		{
			kind:   topology.TwoStage,
			values: map[string]float64{topology.Hidden: 6, topology.Output: 7},
			last:   "Calculation: (6.000×1.0) + (1×1.0) = 7.000",
		},
		{
			kind:   topology.ThreeStage,
			values: map[string]float64{topology.Hidden1: 6, topology.Hidden2: 6, topology.Output: 13},
			last:   "Calculation: (6.000×1.0) + (6.000×1.0) + (1×1.0) = 13.000",
		},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			report, err := Compute(unitTopology(t, tc.kind), in)
			if err != nil {
				t.Fatalf("compute: %v", err)
			}
			for id, want := range tc.values {
				if math.Abs(report.Values[id]-want) > 1e-9 {
					t.Fatalf("%s: got=%f want=%f", id, report.Values[id], want)
				}
			}
			if got := report.Lines[len(report.Lines)-1]; got != tc.last {
				t.Fatalf("unexpected last line:\n got=%q\nwant=%q", got, tc.last)
			}
		})
	}
}

func TestComputeUsesRandomWeightsAsDrawn(t *testing.T) {
	topo, err := topology.Build(topology.OneStage, 800, 600, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	in := Inputs{Input1: 1.5, Input2: -2}
	report, err := Compute(topo, in)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	w1, _ := topo.Edge(topology.Input1, topology.Output)
	w2, _ := topo.Edge(topology.Input2, topology.Output)
	want := 1.5*w1.Weight.Value() - 2*w2.Weight.Value() + 1
	if math.Abs(report.Output()-want) > 1e-9 {
		t.Fatalf("unexpected output: got=%f want=%f", report.Output(), want)
	}
	first := report.Lines[0]
	if !strings.Contains(first, "(Input1 × "+w1.Weight.String()+")") || !strings.HasSuffix(first, "(Bias × 1.0)") {
		t.Fatalf("weights not rendered as drawn: %q", first)
	}
	if !strings.Contains(report.Text(), "(1.5 × ") || !strings.Contains(report.Text(), "(-2 × ") {
		t.Fatalf("inputs not rendered: %q", report.Text())
	}
}

func TestComputeThreeStageLayout(t *testing.T) {
	report, err := Compute(unitTopology(t, topology.ThreeStage), Inputs{})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report.Lines) != 8 {
		t.Fatalf("expected 8 report lines, got %d:\n%s", len(report.Lines), report.Text())
	}
	if report.Lines[2] != "" || report.Lines[5] != "" {
		t.Fatalf("expected blank separators:\n%s", report.Text())
	}
	if report.Output() != 3 {
		t.Fatalf("zero inputs should leave only biases: got=%f", report.Output())
	}
}

func TestComputeUnknownKind(t *testing.T) {
	if _, err := Compute(topology.Topology{Kind: "bogus"}, Inputs{}); err == nil {
		t.Fatal("expected unknown kind error")
	}
}
