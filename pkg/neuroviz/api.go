// Package neuroviz is the programmatic entry point: reports, GIF captures and
// the run journal without a host UI.
package neuroviz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"neuroviz/internal/calc"
	"neuroviz/internal/capture"
	"neuroviz/internal/input"
	"neuroviz/internal/platform"
	"neuroviz/internal/storage"
	"neuroviz/internal/topology"
	"neuroviz/internal/viz"
)

const (
	defaultDBPath = "neuroviz.db"
	defaultWidth  = 800
	defaultHeight = 600
	defaultLimit  = 20
)

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store storage.Store

	mu          sync.Mutex
	initialized bool
}

type ReportRequest struct {
	Topology string
	Input1   float64
	Input2   float64
	// Seed fixes the drawn weights; 0 draws fresh ones.
	Seed   int64
	Width  float64
	Height float64
}

type ReportItem struct {
	Topology string
	Lines    []string
	Values   map[string]float64
	Output   float64
	Weights  map[string]string
}

type CaptureRequest struct {
	Topology string
	Input1   float64
	Input2   float64
	Seed     int64
	Width    int
	Height   int
	Scale    float64
	Every    int
	Out      io.Writer
}

type CaptureSummary struct {
	RunID    string
	Topology string
	Frames   int
	Ticks    int
	Flashes  int
	Output   float64
}

type RunsRequest struct {
	Topology string
	Limit    int
}

type RunItem struct {
	RunID       string
	Topology    string
	Inputs      [2]float64
	Output      float64
	Ticks       int
	Flashes     int
	CompletedAt time.Time
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// Report builds a topology and returns its forward-pass arithmetic.
func (c *Client) Report(_ context.Context, req ReportRequest) (ReportItem, error) {
	kind, err := topology.ParseKind(req.Topology)
	if err != nil {
		return ReportItem{}, err
	}
	width, height := req.Width, req.Height
	if width == 0 {
		width = defaultWidth
	}
	if height == 0 {
		height = defaultHeight
	}
	topo, err := topology.Build(kind, width, height, seeded(req.Seed))
	if err != nil {
		return ReportItem{}, err
	}
	report, err := calc.Compute(topo, calc.Inputs{Input1: req.Input1, Input2: req.Input2})
	if err != nil {
		return ReportItem{}, err
	}

	weights := make(map[string]string, len(topo.Edges))
	for key, w := range topo.Weights() {
		weights[key] = w.String()
	}
	return ReportItem{
		Topology: string(kind),
		Lines:    report.Lines,
		Values:   report.Values,
		Output:   report.Output(),
		Weights:  weights,
	}, nil
}

// Capture animates one run to completion, writes it to req.Out as a GIF and
// journals the run.
func (c *Client) Capture(ctx context.Context, req CaptureRequest) (CaptureSummary, error) {
	if req.Out == nil {
		return CaptureSummary{}, errors.New("capture output writer is required")
	}
	kind, err := topology.ParseKind(req.Topology)
	if err != nil {
		return CaptureSummary{}, err
	}
	if err := c.Init(ctx); err != nil {
		return CaptureSummary{}, err
	}

	var done *viz.Completion
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	result, err := capture.Run(ctx, capture.Options{
		Kind:       kind,
		Width:      req.Width,
		Height:     req.Height,
		Scale:      req.Scale,
		Every:      req.Every,
		Seed:       seed,
		Inputs:     input.Fixed{req.Input1, req.Input2},
		OnComplete: func(completion viz.Completion) { done = &completion },
	})
	if err != nil {
		return CaptureSummary{}, err
	}
	if err := result.Encode(req.Out); err != nil {
		return CaptureSummary{}, fmt.Errorf("encode gif: %w", err)
	}

	summary := CaptureSummary{
		Topology: string(kind),
		Frames:   len(result.Animation.Image),
		Ticks:    result.Ticks,
		Flashes:  result.Flashes,
		Output:   result.Report.Output(),
	}
	if done != nil {
		run := platform.RecordOf(*done)
		if err := c.store.SaveRun(ctx, run); err != nil {
			return CaptureSummary{}, fmt.Errorf("journal run: %w", err)
		}
		summary.RunID = run.ID
	}
	return summary, nil
}

// Runs lists journaled runs, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	var filter string
	if req.Topology != "" {
		kind, err := topology.ParseKind(req.Topology)
		if err != nil {
			return nil, err
		}
		filter = string(kind)
	}

	runs, err := c.store.ListRuns(ctx, filter, req.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunItem{
			RunID:       run.ID,
			Topology:    run.Topology,
			Inputs:      run.Inputs,
			Output:      run.Values[topology.Output],
			Ticks:       run.Ticks,
			Flashes:     run.Flashes,
			CompletedAt: run.CompletedAt,
		})
	}
	return out, nil
}

// ClearRuns empties the journal.
func (c *Client) ClearRuns(ctx context.Context) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	return c.store.ClearRuns(ctx)
}

func seeded(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewSource(seed))
}
