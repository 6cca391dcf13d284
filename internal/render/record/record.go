// Package record captures draw calls as a replayable list, used to ship
// frames to browsers and to assert on what a frame painted.
package record

import (
	"neuroviz/internal/model"
	"neuroviz/internal/render"
)

type OpKind string

const (
	OpClear  OpKind = "clear"
	OpLine   OpKind = "line"
	OpCircle OpKind = "circle"
	OpText   OpKind = "text"
)

type Op struct {
	Kind   OpKind       `json:"op"`
	Rect   *render.Rect `json:"rect,omitempty"`
	From   *model.Point `json:"from,omitempty"`
	To     *model.Point `json:"to,omitempty"`
	Center *model.Point `json:"center,omitempty"`
	Radius float64      `json:"radius,omitempty"`
	Width  float64      `json:"width,omitempty"`
	Fill   string       `json:"fill,omitempty"`
	Stroke string       `json:"stroke,omitempty"`
	Text   string       `json:"text,omitempty"`
	Font   *render.Font `json:"font,omitempty"`
	Align  render.Align `json:"align,omitempty"`
}

type Recorder struct {
	ops []Op
}

func New() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Clear(rect render.Rect, fill string) {
	r.ops = append(r.ops, Op{Kind: OpClear, Rect: &rect, Fill: fill})
}

func (r *Recorder) DrawLine(from, to model.Point, stroke string, width float64) {
	r.ops = append(r.ops, Op{Kind: OpLine, From: &from, To: &to, Stroke: stroke, Width: width})
}

func (r *Recorder) DrawCircle(center model.Point, radius float64, fill, stroke string) {
	r.ops = append(r.ops, Op{Kind: OpCircle, Center: &center, Radius: radius, Fill: fill, Stroke: stroke})
}

func (r *Recorder) DrawText(text string, at model.Point, font render.Font, align render.Align, fill string) {
	r.ops = append(r.ops, Op{Kind: OpText, Center: &at, Text: text, Font: &font, Align: align, Fill: fill})
}

// Ops returns the recorded calls since the last Reset.
func (r *Recorder) Ops() []Op {
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

func (r *Recorder) Reset() {
	r.ops = r.ops[:0]
}

// Count returns how many recorded ops have the kind.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Texts lists every string drawn, in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}
