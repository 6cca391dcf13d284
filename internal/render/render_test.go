package render_test

import (
	"math/rand"
	"slices"
	"testing"

	"neuroviz/internal/model"
	"neuroviz/internal/render"
	"neuroviz/internal/render/record"
	"neuroviz/internal/scheduler"
	"neuroviz/internal/topology"
)

func build(t *testing.T, kind topology.Kind) topology.Topology {
	t.Helper()
	topo, err := topology.Build(kind, 800, 600, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return topo
}

func TestFlashOnDoubleBlink(t *testing.T) {
	tests := []struct {
		remaining int
		want      bool
	}{
		{remaining: 80, want: false},
		{remaining: 79, want: true},
		{remaining: 65, want: true},
		{remaining: 60, want: false},
		{remaining: 55, want: false},
		{remaining: 50, want: false},
		{remaining: 45, want: true},
		{remaining: 30, want: false},
		{remaining: 20, want: true},
		{remaining: 10, want: false},
		{remaining: 1, want: false},
	}
	for _, tc := range tests {
		if got := render.FlashOn(tc.remaining); got != tc.want {
			t.Fatalf("FlashOn(%d): got=%v want=%v", tc.remaining, got, tc.want)
		}
	}
}

func TestDrawOneStageFrame(t *testing.T) {
	topo := build(t, topology.OneStage)
	state := scheduler.Step(topo, scheduler.Start(scheduler.Initial()))
	rec := record.New()
	render.Draw(rec, render.FrameOf(topo, state))

	ops := rec.Ops()
	if ops[0].Kind != record.OpClear || ops[0].Fill != "#f9f9f9" {
		t.Fatalf("frame should start by clearing the background: %+v", ops[0])
	}
	if got := rec.Count(record.OpLine); got != 3 {
		t.Fatalf("expected 3 edges, got %d", got)
	}
	if got := rec.Count(record.OpCircle); got != 4+3 {
		t.Fatalf("expected 4 neurons and 3 signals, got %d circles", got)
	}
	texts := rec.Texts()
	for _, label := range []string{"Input 1", "Input 2", "Bias", "Output", "1.0"} {
		if !slices.Contains(texts, label) {
			t.Fatalf("missing text %q in %v", label, texts)
		}
	}
}

func TestDrawTwoStageRevealsSecondStage(t *testing.T) {
	topo := build(t, topology.TwoStage)

	rec := record.New()
	render.Draw(rec, render.FrameOf(topo, scheduler.Initial()))
	texts := rec.Texts()
	if slices.Contains(texts, "Final Output") || slices.Contains(texts, "sigmoid()") {
		t.Fatalf("stage 2 drawn too early: %v", texts)
	}
	if got := rec.Count(record.OpLine); got != 3 {
		t.Fatalf("expected only stage 1 edges, got %d", got)
	}

	rec.Reset()
	render.Draw(rec, render.Frame{Topology: topo, Stage: 2, Flash: &model.Flash{Intensity: 1, Remaining: 20}})
	texts = rec.Texts()
	for _, want := range []string{"Final Output", "Bias 2", "sigmoid()"} {
		if !slices.Contains(texts, want) {
			t.Fatalf("missing %q in stage 2 frame: %v", want, texts)
		}
	}
	if got := rec.Count(record.OpLine); got != 5 {
		t.Fatalf("expected all 5 edges, got %d", got)
	}
	hidden, _ := topo.Neuron(topology.Hidden)
	if fill := circleFill(rec, hidden.Pos); fill != "#ffcccc" {
		t.Fatalf("hidden neuron should flash, fill=%q", fill)
	}

	rec.Reset()
	render.Draw(rec, render.Frame{Topology: topo, Stage: 2, Flash: &model.Flash{Intensity: 1, Remaining: 30}})
	if fill := circleFill(rec, hidden.Pos); fill != "#e8e8e8" {
		t.Fatalf("hidden neuron should be dark between blinks, fill=%q", fill)
	}
}

func TestDrawSignalsAtInterpolatedPositions(t *testing.T) {
	topo := build(t, topology.ThreeStage)
	sig := model.Signal{Start: model.Point{X: 100, Y: 100}, End: model.Point{X: 300, Y: 200}, Progress: 0.5, Radius: 8, Color: "#ef4444", Stage: 1}
	rec := record.New()
	render.Draw(rec, render.Frame{Topology: topo, Stage: 1, Signals: []model.Signal{sig}})
	if fill := circleFill(rec, model.Point{X: 200, Y: 150}); fill != "#ef4444" {
		t.Fatalf("signal not drawn at midpoint, fill=%q", fill)
	}
}

func TestDrawNilSurface(t *testing.T) {
	render.Draw(nil, render.Frame{Topology: build(t, topology.OneStage)})
}

func circleFill(rec *record.Recorder, at model.Point) string {
	for _, op := range rec.Ops() {
		if op.Kind == record.OpCircle && *op.Center == at {
			return op.Fill
		}
	}
	return ""
}
