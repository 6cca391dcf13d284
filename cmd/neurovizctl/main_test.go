package main

import (
	"bytes"
	"context"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestRunRequiresKnownCommand(t *testing.T) {
	if err := run(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "usage:") {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run(context.Background(), []string{"bogus"}); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestReportPrintsEveryTopology(t *testing.T) {
	out := captureStdout(t)
	if err := run(context.Background(), []string{"report", "-store", "memory", "-seed", "3", "-input1", "2", "-input2", "3"}); err != nil {
		t.Fatalf("report: %v", err)
	}
	text := out.String()
	for _, want := range []string{"[one-stage]", "[two-stage]", "[three-stage]", "Formula: Output = ", "Stage2: Final = ", "Hidden 2 = "} {
		if !strings.Contains(text, want) {
			t.Fatalf("report missing %q:\n%s", want, text)
		}
	}
}

func TestReportSingleTopology(t *testing.T) {
	out := captureStdout(t)
	if err := run(context.Background(), []string{"report", "-topology", "2", "-seed", "1"}); err != nil {
		t.Fatalf("report: %v", err)
	}
	if text := out.String(); strings.Contains(text, "[one-stage]") || !strings.Contains(text, "[two-stage]") {
		t.Fatalf("unexpected report:\n%s", text)
	}
	if err := run(context.Background(), []string{"report", "-topology", "nine"}); err == nil {
		t.Fatal("expected unknown topology error")
	}
}

func TestCaptureWritesGIF(t *testing.T) {
	out := captureStdout(t)
	path := filepath.Join(t.TempDir(), "run.gif")
	err := run(context.Background(), []string{
		"capture", "-store", "memory", "-topology", "one-stage",
		"-width", "300", "-height", "300", "-every", "50", "-seed", "2", "-out", path,
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open gif: %v", err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("decode gif: %v", err)
	}
	if len(anim.Image) != 5 {
		t.Fatalf("unexpected frame count: %d", len(anim.Image))
	}
	if !strings.Contains(out.String(), "ticks=200") {
		t.Fatalf("unexpected summary: %s", out.String())
	}
}

func TestCaptureRemovesFileOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.gif")
	err := run(context.Background(), []string{"capture", "-store", "memory", "-width", "100", "-out", path})
	if err == nil {
		t.Fatal("expected canvas size error")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("failed capture left %s behind", path)
	}
}

func TestRunsOnEmptyJournal(t *testing.T) {
	out := captureStdout(t)
	if err := run(context.Background(), []string{"runs", "-store", "memory"}); err != nil {
		t.Fatalf("runs: %v", err)
	}
	if !strings.Contains(out.String(), "no runs recorded") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}
