package render

import "neuroviz/internal/model"

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
)

type Font struct {
	Size   float64 `json:"size"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
}

type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Surface is the drawing context a frame is painted on. Colors are CSS hex
// strings; an empty color skips that part of the shape.
type Surface interface {
	Clear(r Rect, fill string)
	DrawLine(from, to model.Point, stroke string, width float64)
	DrawCircle(center model.Point, radius float64, fill, stroke string)
	DrawText(text string, at model.Point, font Font, align Align, fill string)
}
