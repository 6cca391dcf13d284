// Package cells paints frames onto a character grid for terminals.
package cells

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"neuroviz/internal/model"
	"neuroviz/internal/render"
)

const (
	blank      = ' '
	lineRune   = '·'
	neuronRune = 'O'
	biasRune   = 'o'
	signalRune = '●'
	// biasRadius is the largest radius drawn with the small node glyph.
	biasRadius = 10.0
)

type cell struct {
	r     rune
	color string
}

// Grid maps canvas coordinates of a width x height canvas onto cols x rows cells.
type Grid struct {
	cols, rows    int
	width, height float64
	cells         []cell
}

func New(cols, rows int, width, height float64) *Grid {
	g := &Grid{cols: cols, rows: rows, width: width, height: height}
	g.cells = make([]cell, cols*rows)
	g.fill(blank, "")
	return g
}

func (g *Grid) Clear(_ render.Rect, fill string) {
	g.fill(blank, "")
}

func (g *Grid) DrawLine(from, to model.Point, stroke string, _ float64) {
	c0, r0 := g.cell(from)
	c1, r1 := g.cell(to)
	steps := max(abs(c1-c0), abs(r1-r0))
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		c := c0 + int(math.Round(float64(c1-c0)*t))
		r := r0 + int(math.Round(float64(r1-r0)*t))
		if g.at(c, r).r == blank {
			g.put(c, r, lineRune, stroke)
		}
	}
}

func (g *Grid) DrawCircle(center model.Point, radius float64, fill, stroke string) {
	c, r := g.cell(center)
	switch {
	case stroke == "":
		g.put(c, r, signalRune, fill)
	case radius <= biasRadius:
		g.put(c, r, biasRune, stroke)
	default:
		g.put(c, r, neuronRune, stroke)
	}
}

func (g *Grid) DrawText(text string, at model.Point, _ render.Font, align render.Align, fill string) {
	c, r := g.cell(at)
	runes := []rune(text)
	if align == render.AlignCenter {
		c -= len(runes) / 2
	}
	for i, ch := range runes {
		g.put(c+i, r, ch, fill)
	}
}

// String returns the grid without colors, one line per row.
func (g *Grid) String() string {
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			b.WriteRune(g.at(c, r).r)
		}
		if r < g.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Styled renders the grid with each cell in its drawn color.
func (g *Grid) Styled() string {
	styles := make(map[string]lipgloss.Style)
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			cl := g.at(c, r)
			if cl.color == "" || cl.r == blank {
				b.WriteRune(cl.r)
				continue
			}
			st, ok := styles[cl.color]
			if !ok {
				st = lipgloss.NewStyle().Foreground(lipgloss.Color(cl.color))
				styles[cl.color] = st
			}
			b.WriteString(st.Render(string(cl.r)))
		}
		if r < g.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Rune returns the glyph at a cell, or 0 outside the grid.
func (g *Grid) Rune(col, row int) rune {
	if col < 0 || col >= g.cols || row < 0 || row >= g.rows {
		return 0
	}
	return g.at(col, row).r
}

// Cell maps a canvas point to its grid cell.
func (g *Grid) Cell(p model.Point) (int, int) {
	return g.cell(p)
}

func (g *Grid) cell(p model.Point) (int, int) {
	if g.width <= 0 || g.height <= 0 {
		return 0, 0
	}
	c := int(p.X / g.width * float64(g.cols))
	r := int(p.Y / g.height * float64(g.rows))
	return c, r
}

func (g *Grid) at(c, r int) cell {
	if c < 0 || c >= g.cols || r < 0 || r >= g.rows {
		return cell{}
	}
	return g.cells[r*g.cols+c]
}

func (g *Grid) put(c, r int, ch rune, color string) {
	if c < 0 || c >= g.cols || r < 0 || r >= g.rows {
		return
	}
	g.cells[r*g.cols+c] = cell{r: ch, color: color}
}

func (g *Grid) fill(ch rune, color string) {
	for i := range g.cells {
		g.cells[i] = cell{r: ch, color: color}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
