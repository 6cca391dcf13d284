package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"neuroviz/internal/frameclock"
	"neuroviz/internal/input"
	"neuroviz/internal/logging"
	"neuroviz/internal/platform"
	"neuroviz/internal/storage"
	"neuroviz/internal/topology"
	"neuroviz/internal/tui"
	"neuroviz/internal/webview"
	vizapi "neuroviz/pkg/neuroviz"
)

var stdout io.Writer = os.Stdout

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "report":
		return runReport(ctx, args[1:])
	case "capture":
		return runCapture(ctx, args[1:])
	case "serve":
		return runServe(ctx, args[1:])
	case "tui":
		return runTUI(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runReport(ctx context.Context, args []string) error {
	s, err := parseSettings(flag.NewFlagSet("report", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	kinds, err := selectedKinds(s.Topology)
	if err != nil {
		return err
	}

	client, err := vizapi.New(vizapi.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	for i, kind := range kinds {
		item, err := client.Report(ctx, vizapi.ReportRequest{
			Topology: string(kind),
			Input1:   input.Parse(s.Input1),
			Input2:   input.Parse(s.Input2),
			Seed:     s.Seed,
			Width:    float64(s.Width),
			Height:   float64(s.Height),
		})
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(stdout)
		}
		fmt.Fprintf(stdout, "[%s]\n%s\n", item.Topology, strings.Join(item.Lines, "\n"))
	}
	return nil
}

func runCapture(ctx context.Context, args []string) error {
	s, err := parseSettings(flag.NewFlagSet("capture", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	name := s.Topology
	if name == "" {
		name = string(topology.TwoStage)
	}
	kind, err := topology.ParseKind(name)
	if err != nil {
		return err
	}
	out := s.Out
	if out == "" {
		out = string(kind) + ".gif"
	}

	client, err := vizapi.New(vizapi.Options{StoreKind: s.Store, DBPath: s.DBPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	summary, err := client.Capture(ctx, vizapi.CaptureRequest{
		Topology: string(kind),
		Input1:   input.Parse(s.Input1),
		Input2:   input.Parse(s.Input2),
		Seed:     s.Seed,
		Width:    s.Width,
		Height:   s.Height,
		Scale:    s.Scale,
		Every:    s.Every,
		Out:      f,
	})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(out)
		return err
	}

	size := "?"
	if info, err := os.Stat(out); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	fmt.Fprintf(stdout, "captured run_id=%s topology=%s frames=%d ticks=%d flashes=%d output=%.3f file=%s (%s)\n",
		summary.RunID, summary.Topology, summary.Frames, summary.Ticks, summary.Flashes, summary.Output, out, size)
	return nil
}

func runServe(ctx context.Context, args []string) error {
	s, err := parseSettings(flag.NewFlagSet("serve", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	store, err := storage.NewStore(s.Store, s.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	log := logging.Get()
	hub := webview.NewHub(log)
	interval := time.Duration(s.FrameIntervalMS) * time.Millisecond
	lab := platform.NewLab(platform.Config{
		Store:          store,
		SupportModules: []platform.SupportModule{hub},
		Width:          float64(s.Width),
		Height:         float64(s.Height),
		Seed:           s.Seed,
		Inputs:         input.NewPair(s.Input1, s.Input2),
		NewClock:       func(topology.Kind) frameclock.Scheduler { return frameclock.NewTimer(interval) },
		OnFrame:        hub.PublishFrame,
		OnReport:       hub.PublishReport,
		Logger:         log,
	})
	if err := lab.Init(ctx); err != nil {
		return err
	}
	defer lab.Stop(context.Background())

	return webview.NewServer(lab, hub, log).ListenAndServe(ctx, s.Addr)
}

func runTUI(ctx context.Context, args []string) error {
	s, err := parseSettings(flag.NewFlagSet("tui", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	store, err := storage.NewStore(s.Store, s.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	err = tui.Run(ctx, tui.Options{
		Store:  store,
		Width:  float64(s.Width),
		Height: float64(s.Height),
		Seed:   s.Seed,
		Inputs: input.NewPair(s.Input1, s.Input2),
		Logger: logging.New(io.Discard, logging.LevelError, ""),
	})
	if errors.Is(err, tui.ErrNotTerminal) {
		return fmt.Errorf("%w: use serve or capture instead", err)
	}
	return err
}

func runRuns(ctx context.Context, args []string) error {
	s, err := parseSettings(flag.NewFlagSet("runs", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	client, err := vizapi.New(vizapi.Options{StoreKind: s.Store, DBPath: s.DBPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, vizapi.RunsRequest{Topology: s.Topology, Limit: s.Limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(stdout, "%s %-11s inputs=(%g, %g) output=%.3f ticks=%d flashes=%d %s\n",
			r.RunID, r.Topology, r.Inputs[0], r.Inputs[1], r.Output, r.Ticks, r.Flashes, humanize.Time(r.CompletedAt))
	}
	return nil
}

func selectedKinds(name string) ([]topology.Kind, error) {
	if name == "" || name == "all" {
		return topology.Kinds(), nil
	}
	kind, err := topology.ParseKind(name)
	if err != nil {
		return nil, err
	}
	return []topology.Kind{kind}, nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: neurovizctl <report|capture|serve|tui|runs> [flags]", msg)
}
