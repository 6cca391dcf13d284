// Package capture renders a whole run offline into an animated GIF.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"io"
	"math"
	"math/rand"

	xdraw "golang.org/x/image/draw"

	"neuroviz/internal/calc"
	"neuroviz/internal/frameclock"
	"neuroviz/internal/input"
	"neuroviz/internal/render/raster"
	"neuroviz/internal/topology"
	"neuroviz/internal/viz"
)

const (
	DefaultEvery    = 4
	DefaultDelay    = 6
	DefaultMaxTicks = 10000
)

var ErrTickLimit = errors.New("run did not finish within the tick limit")

type Options struct {
	Kind   topology.Kind
	Width  int
	Height int
	// Scale shrinks each frame; values outside (0,1) keep full size.
	Scale float64
	// Every samples one frame per that many ticks.
	Every int
	// Delay is the per-frame delay in hundredths of a second.
	Delay    int
	MaxTicks int
	Seed     int64
	Inputs   input.Source
	// OnComplete receives the drained run, for journaling.
	OnComplete func(viz.Completion)
}

type Result struct {
	Animation *gif.GIF
	Report    calc.Report
	Ticks     int
	Flashes   int
}

func (r *Result) Encode(w io.Writer) error {
	if r == nil || r.Animation == nil {
		return errors.New("no animation to encode")
	}
	return gif.EncodeAll(w, r.Animation)
}

// Run animates one topology to completion on a manual clock, sampling the
// raster surface as it goes.
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts = withDefaults(opts)
	canvas, err := raster.New(opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}

	var done *viz.Completion
	clock := frameclock.NewManual()
	v, err := viz.New(viz.Config{
		Kind:    opts.Kind,
		Width:   float64(opts.Width),
		Height:  float64(opts.Height),
		Rand:    rand.New(rand.NewSource(opts.Seed)),
		Clock:   clock,
		Surface: canvas,
		Inputs:  opts.Inputs,
		OnComplete: func(c viz.Completion) {
			done = &c
		},
	})
	if err != nil {
		return nil, err
	}

	anim := &gif.GIF{LoopCount: 0}
	add := func() {
		anim.Image = append(anim.Image, quantize(canvas.Image(), opts.Scale))
		anim.Delay = append(anim.Delay, opts.Delay)
	}
	add()

	v.Start()
	ticks, sampled := 0, 0
	for clock.Flush() > 0 {
		ticks++
		sampled = ticks
		if ticks%opts.Every == 0 {
			add()
			sampled = -1
		}
		if ticks >= opts.MaxTicks {
			v.Stop()
			return nil, fmt.Errorf("%w: %s after %d ticks", ErrTickLimit, opts.Kind, ticks)
		}
		if ticks%256 == 0 {
			if err := ctx.Err(); err != nil {
				v.Stop()
				return nil, err
			}
		}
	}
	if sampled > 0 {
		add()
	}

	result := &Result{Animation: anim, Report: v.Report(), Ticks: ticks}
	if done != nil {
		result.Flashes = done.State.Flashes
		if opts.OnComplete != nil {
			opts.OnComplete(*done)
		}
	}
	return result, nil
}

func withDefaults(opts Options) Options {
	if opts.Width == 0 {
		opts.Width = 800
	}
	if opts.Height == 0 {
		opts.Height = 600
	}
	if opts.Every <= 0 {
		opts.Every = DefaultEvery
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.MaxTicks <= 0 {
		opts.MaxTicks = DefaultMaxTicks
	}
	if opts.Scale <= 0 || opts.Scale >= 1 {
		opts.Scale = 1
	}
	return opts
}

// quantize copies the frame onto the Plan 9 palette, shrinking it first when
// scale is below 1.
func quantize(src *image.RGBA, scale float64) *image.Paletted {
	var from image.Image = src
	bounds := src.Bounds()
	if scale < 1 {
		w := int(math.Max(1, math.Round(float64(bounds.Dx())*scale)))
		h := int(math.Max(1, math.Round(float64(bounds.Dy())*scale)))
		small := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.ApproxBiLinear.Scale(small, small.Bounds(), src, bounds, xdraw.Src, nil)
		from, bounds = small, small.Bounds()
	}
	out := image.NewPaletted(bounds, palette.Plan9)
	xdraw.Draw(out, bounds, from, bounds.Min, xdraw.Src)
	return out
}
