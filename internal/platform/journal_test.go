package platform

import (
	"context"
	"testing"
	"time"

	"neuroviz/internal/calc"
	"neuroviz/internal/logging"
	"neuroviz/internal/scheduler"
	"neuroviz/internal/storage"
	"neuroviz/internal/topology"
	"neuroviz/internal/viz"
)

func TestRecordOfCopiesCompletion(t *testing.T) {
	topo, err := topology.Build(topology.OneStage, 800, 600, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	report, err := calc.Compute(topo, calc.Inputs{Input1: 2, Input2: 3})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	run := RecordOf(viz.Completion{
		Kind:     topology.OneStage,
		Topology: topo,
		State:    scheduler.State{Ticks: 200},
		Report:   report,
		At:       at,
	})
	if run.ID == "" || run.SchemaVersion != storage.CurrentSchemaVersion {
		t.Fatalf("record not stamped: %+v", run)
	}
	if run.Inputs != [2]float64{2, 3} || run.Values[topology.Output] != report.Output() {
		t.Fatalf("unexpected record values: %+v", run)
	}
	if len(run.Weights) != 3 || !run.CompletedAt.Equal(at) || run.CompletedAt.Location() != time.UTC {
		t.Fatalf("unexpected record: %+v", run)
	}
	if again := RecordOf(viz.Completion{Kind: topology.OneStage}); again.ID == run.ID {
		t.Fatal("run ids repeat")
	}
}

func TestJournalLogsStoreFailures(t *testing.T) {
	store := storage.NewMemoryStore()
	hook := Journal(store, logging.Get())
	// Uninitialized memory stores reject writes; the hook must not panic.
	hook(viz.Completion{Kind: topology.OneStage, At: time.Now()})
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	hook(viz.Completion{Kind: topology.OneStage, At: time.Now()})
	runs, err := store.ListRuns(context.Background(), "", 0)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one journaled run, got %d (%v)", len(runs), err)
	}
	Journal(nil, logging.Get())(viz.Completion{})
}
