package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"neuroviz/internal/frameclock"
	"neuroviz/internal/input"
	"neuroviz/internal/logging"
	"neuroviz/internal/platform"
	"neuroviz/internal/render"
	"neuroviz/internal/render/cells"
	"neuroviz/internal/storage"
	"neuroviz/internal/topology"
)

var ErrNotTerminal = errors.New("stdout is not a terminal")

type Options struct {
	Store  storage.Store
	Width  float64
	Height float64
	Seed   int64
	Inputs input.Pair
	Logger *logging.Logger
}

// IsTerminal reports whether fd is an interactive terminal.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Build wires a lab to manual clocks and character grids.
func Build(opts Options) (*platform.Lab, Model) {
	clocks := make(map[topology.Kind]*frameclock.Manual)
	grids := make(map[topology.Kind]*cells.Grid)
	for _, kind := range topology.Kinds() {
		clocks[kind] = frameclock.NewManual()
		grids[kind] = cells.New(GridCols, GridRows, opts.Width, opts.Height)
	}
	lab := platform.NewLab(platform.Config{
		Store:    opts.Store,
		Width:    opts.Width,
		Height:   opts.Height,
		Seed:     opts.Seed,
		Inputs:   opts.Inputs,
		NewClock: func(kind topology.Kind) frameclock.Scheduler { return clocks[kind] },
		Surface:  func(kind topology.Kind) render.Surface { return grids[kind] },
		Logger:   opts.Logger,
	})
	return lab, NewModel(lab, clocks, grids)
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if !IsTerminal(os.Stdout.Fd()) {
		return ErrNotTerminal
	}
	lab, model := Build(opts)
	if err := lab.Init(ctx); err != nil {
		return err
	}
	defer lab.Stop(context.Background())

	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
