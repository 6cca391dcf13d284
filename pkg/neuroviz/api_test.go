package neuroviz

import (
	"bytes"
	"context"
	"errors"
	"image/gif"
	"testing"

	"neuroviz/internal/topology"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestClientReportIsDeterministicForSeed(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()
	req := ReportRequest{Topology: "three-stage", Input1: 2, Input2: 3, Seed: 17}
	a, err := client.Report(ctx, req)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	b, err := client.Report(ctx, req)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if a.Output != b.Output || len(a.Lines) != 8 {
		t.Fatalf("unexpected reports: %+v vs %+v", a, b)
	}
	if a.Weights["bias1->hidden1"] != "1.0" || len(a.Weights) != 9 {
		t.Fatalf("unexpected weights: %v", a.Weights)
	}
	if _, err := client.Report(ctx, ReportRequest{Topology: "bogus"}); !errors.Is(err, topology.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestClientCaptureJournalsRun(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()
	var buf bytes.Buffer
	summary, err := client.Capture(ctx, CaptureRequest{
		Topology: "one-stage",
		Input1:   1,
		Input2:   1,
		Seed:     4,
		Width:    300,
		Height:   300,
		Every:    100,
		Out:      &buf,
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if summary.Ticks != 200 || summary.Frames != 3 || summary.RunID == "" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := gif.DecodeAll(&buf); err != nil {
		t.Fatalf("decode gif: %v", err)
	}

	runs, err := client.Runs(ctx, RunsRequest{Topology: "1"})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != summary.RunID || runs[0].Output != summary.Output {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[0].Inputs != [2]float64{1, 1} {
		t.Fatalf("unexpected journaled inputs: %v", runs[0].Inputs)
	}

	if err := client.ClearRuns(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if runs, _ := client.Runs(ctx, RunsRequest{}); len(runs) != 0 {
		t.Fatalf("expected empty journal, got %d", len(runs))
	}
}

func TestClientCaptureRequiresWriter(t *testing.T) {
	client := newClient(t)
	if _, err := client.Capture(context.Background(), CaptureRequest{Topology: "one-stage"}); err == nil {
		t.Fatal("expected missing writer error")
	}
}

func TestNewRejectsUnknownStore(t *testing.T) {
	if _, err := New(Options{StoreKind: "redis"}); err == nil {
		t.Fatal("expected unsupported store error")
	}
}
