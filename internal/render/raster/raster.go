// Package raster paints frames into an RGBA image with Go fonts.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"neuroviz/internal/model"
	"neuroviz/internal/render"
)

type Canvas struct {
	img     *image.RGBA
	regular *opentype.Font
	bold    *opentype.Font
	italic  *opentype.Font
	faces   map[render.Font]font.Face
}

func New(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	italic, err := opentype.Parse(goitalic.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse italic font: %w", err)
	}
	return &Canvas{
		img:     image.NewRGBA(image.Rect(0, 0, width, height)),
		regular: regular,
		bold:    bold,
		italic:  italic,
		faces:   make(map[render.Font]font.Face),
	}, nil
}

func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Snapshot copies the current pixels.
func (c *Canvas) Snapshot() *image.RGBA {
	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}

func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

func (c *Canvas) Clear(r render.Rect, fill string) {
	col, ok := ParseHex(fill)
	if !ok {
		return
	}
	rect := image.Rect(int(r.X), int(r.Y), int(math.Ceil(r.X+r.W)), int(math.Ceil(r.Y+r.H)))
	draw.Draw(c.img, rect.Intersect(c.img.Bounds()), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *Canvas) DrawLine(from, to model.Point, stroke string, width float64) {
	col, ok := ParseHex(stroke)
	if !ok {
		return
	}
	dx := to.X - from.X
	dy := to.Y - from.Y
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps < 1 {
		steps = 1
	}
	half := math.Max(width/2, 0.5)
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		c.stamp(from.X+dx*t, from.Y+dy*t, half, col)
	}
}

func (c *Canvas) DrawCircle(center model.Point, radius float64, fill, stroke string) {
	fillCol, hasFill := ParseHex(fill)
	strokeCol, hasStroke := ParseHex(stroke)
	const ring = 1.0
	outer := radius + ring
	for y := math.Floor(center.Y - outer); y <= center.Y+outer; y++ {
		for x := math.Floor(center.X - outer); x <= center.X+outer; x++ {
			d := math.Hypot(x+0.5-center.X, y+0.5-center.Y)
			switch {
			case hasStroke && d >= radius-ring && d <= radius+ring:
				c.img.Set(int(x), int(y), strokeCol)
			case hasFill && d < radius:
				c.img.Set(int(x), int(y), fillCol)
			}
		}
	}
}

func (c *Canvas) DrawText(text string, at model.Point, f render.Font, align render.Align, fill string) {
	col, ok := ParseHex(fill)
	if !ok || text == "" {
		return
	}
	face, err := c.face(f)
	if err != nil {
		return
	}
	x := fixed.Int26_6(at.X * 64)
	if align == render.AlignCenter {
		x -= font.MeasureString(face, text) / 2
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: x, Y: fixed.Int26_6(at.Y * 64)},
	}
	d.DrawString(text)
}

func (c *Canvas) face(f render.Font) (font.Face, error) {
	if face, ok := c.faces[f]; ok {
		return face, nil
	}
	src := c.regular
	switch {
	case f.Bold:
		src = c.bold
	case f.Italic:
		src = c.italic
	}
	size := f.Size
	if size <= 0 {
		size = 12
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	c.faces[f] = face
	return face, nil
}

func (c *Canvas) stamp(cx, cy, half float64, col color.Color) {
	for y := cy - half; y <= cy+half; y += 0.5 {
		for x := cx - half; x <= cx+half; x += 0.5 {
			c.img.Set(int(x), int(y), col)
		}
	}
}

// ParseHex reads "#rgb" or "#rrggbb".
func ParseHex(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
