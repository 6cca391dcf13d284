package platform

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"neuroviz/internal/calc"
	"neuroviz/internal/frameclock"
	"neuroviz/internal/input"
	"neuroviz/internal/logging"
	"neuroviz/internal/render"
	"neuroviz/internal/storage"
	"neuroviz/internal/topology"
	"neuroviz/internal/viz"
)

var ErrNotStarted = errors.New("lab is not started")

// SupportModule is a host service started and stopped with the lab.
type SupportModule interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type Config struct {
	Store          storage.Store
	SupportModules []SupportModule
	Width          float64
	Height         float64
	Seed           int64
	// Inputs is shared by every visualization.
	Inputs input.Pair
	// NewClock builds each instance's frame clock. Nil uses a Timer.
	NewClock func(kind topology.Kind) frameclock.Scheduler
	// Surface picks each instance's drawing surface. Nil draws nothing.
	Surface  func(kind topology.Kind) render.Surface
	OnFrame  func(kind topology.Kind, frame render.Frame)
	OnReport func(kind topology.Kind, report string)
	Logger   *logging.Logger
}

// Lab hosts the three visualizations side by side, wired to one input pair
// and one run journal.
type Lab struct {
	store storage.Store

	mu             sync.RWMutex
	started        bool
	vizs           map[topology.Kind]*viz.Visualization
	supportModules []SupportModule

	config Config
}

func NewLab(cfg Config) *Lab {
	if cfg.Inputs.Input1 == nil || cfg.Inputs.Input2 == nil {
		cfg.Inputs = input.NewPair("", "")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Get()
	}
	return &Lab{
		store:  cfg.Store,
		vizs:   make(map[topology.Kind]*viz.Visualization),
		config: cfg,
	}
}

// Init prepares the journal, starts support modules and builds every
// visualization. Calling it on a started lab does nothing.
func (l *Lab) Init(ctx context.Context) error {
	if l.store == nil {
		return fmt.Errorf("store is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return nil
	}
	if err := l.store.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	started := make([]SupportModule, 0, len(l.config.SupportModules))
	seen := make(map[string]bool)
	for i, module := range l.config.SupportModules {
		if module == nil {
			stopSupportModules(ctx, started)
			return fmt.Errorf("support module is nil at index %d", i)
		}
		name := module.Name()
		if name == "" {
			stopSupportModules(ctx, started)
			return fmt.Errorf("support module name is required at index %d", i)
		}
		if seen[name] {
			stopSupportModules(ctx, started)
			return fmt.Errorf("duplicate support module: %s", name)
		}
		if err := module.Start(ctx); err != nil {
			stopSupportModules(ctx, started)
			return fmt.Errorf("start support module %s: %w", name, err)
		}
		seen[name] = true
		started = append(started, module)
	}

	vizs := make(map[topology.Kind]*viz.Visualization, len(topology.Kinds()))
	for i, kind := range topology.Kinds() {
		v, err := viz.New(l.vizConfig(kind, int64(i)))
		if err != nil {
			for _, built := range vizs {
				built.Stop()
			}
			stopSupportModules(ctx, started)
			return err
		}
		vizs[kind] = v
	}

	l.vizs = vizs
	l.supportModules = started
	l.started = true
	l.config.Logger.Infof("lab started topologies=%d modules=%d", len(vizs), len(started))
	return nil
}

func (l *Lab) vizConfig(kind topology.Kind, offset int64) viz.Config {
	cfg := viz.Config{
		Kind:       kind,
		Width:      l.config.Width,
		Height:     l.config.Height,
		Rand:       rand.New(rand.NewSource(l.config.Seed + offset)),
		Inputs:     l.config.Inputs,
		OnComplete: Journal(l.store, l.config.Logger),
	}
	if l.config.Seed == 0 {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano() + offset))
	}
	if l.config.NewClock != nil {
		cfg.Clock = l.config.NewClock(kind)
	}
	if l.config.Surface != nil {
		cfg.Surface = l.config.Surface(kind)
	}
	if l.config.OnFrame != nil {
		onFrame := l.config.OnFrame
		cfg.OnFrame = func(frame render.Frame) { onFrame(kind, frame) }
	}
	if l.config.OnReport != nil {
		onReport := l.config.OnReport
		cfg.Display = viz.DisplayFunc(func(text string) { onReport(kind, text) })
	}
	return cfg
}

// Visualization returns the hosted instance for a topology.
func (l *Lab) Visualization(kind topology.Kind) (*viz.Visualization, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.started {
		return nil, ErrNotStarted
	}
	v, ok := l.vizs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", topology.ErrUnknownKind, kind)
	}
	return v, nil
}

// SetInputs updates the shared input pair and refreshes every report.
func (l *Lab) SetInputs(raw1, raw2 string) {
	l.config.Inputs.Input1.Set(raw1)
	l.config.Inputs.Input2.Set(raw2)
	l.UpdateAll()
}

func (l *Lab) Inputs() input.Pair {
	return l.config.Inputs
}

// UpdateAll recomputes the report of every visualization.
func (l *Lab) UpdateAll() {
	for _, v := range l.each() {
		v.UpdateCalculationDisplay()
	}
}

// Reports returns the current report of every visualization in display order.
func (l *Lab) Reports() []calc.Report {
	var out []calc.Report
	for _, v := range l.each() {
		out = append(out, v.Report())
	}
	return out
}

// Runs lists journaled runs, newest first.
func (l *Lab) Runs(ctx context.Context, kind topology.Kind, limit int) ([]RunSummary, error) {
	runs, err := l.store.ListRuns(ctx, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	out := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		out = append(out, summarize(run))
	}
	return out, nil
}

// Stop halts every visualization and support module.
func (l *Lab) Stop(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.started {
		return
	}
	for _, v := range l.vizs {
		v.Stop()
	}
	stopSupportModules(ctx, l.supportModules)
	l.supportModules = nil
	l.vizs = make(map[topology.Kind]*viz.Visualization)
	l.started = false
	l.config.Logger.Infof("lab stopped")
}

func (l *Lab) Started() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.started
}

func (l *Lab) ActiveSupportModules() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.supportModules))
	for _, module := range l.supportModules {
		out = append(out, module.Name())
	}
	return out
}

func (l *Lab) each() []*viz.Visualization {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*viz.Visualization, 0, len(l.vizs))
	for _, kind := range topology.Kinds() {
		if v, ok := l.vizs[kind]; ok {
			out = append(out, v)
		}
	}
	return out
}

func stopSupportModules(ctx context.Context, modules []SupportModule) {
	for i := len(modules) - 1; i >= 0; i-- {
		_ = modules[i].Stop(ctx)
	}
}
