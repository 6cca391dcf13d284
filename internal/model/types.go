package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Lerp returns the point at fraction t of the way from p to q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func Midpoint(p, q Point) Point {
	return p.Lerp(q, 0.5)
}

type Role string

const (
	RoleInput  Role = "input"
	RoleBias   Role = "bias"
	RoleHidden Role = "hidden"
	RoleOutput Role = "output"
)

type Neuron struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Role   Role    `json:"role"`
	Pos    Point   `json:"pos"`
	Radius float64 `json:"radius"`
	// LabelOffset positions the caption relative to Pos.
	LabelOffset Point `json:"label_offset"`
	// Stage is the propagation stage that introduces the neuron on screen.
	Stage int `json:"stage"`
}

const (
	MaxWeightTenths = 30
	biasTenths      = 10
)

// Weight is a display weight in [0.0, 3.0] with one fractional digit, held as
// an integer count of tenths so its text form never drifts.
type Weight struct {
	tenths int
}

// BiasWeight is the fixed weight of every bias edge.
var BiasWeight = Weight{tenths: biasTenths}

func WeightFromTenths(tenths int) (Weight, error) {
	if tenths < 0 || tenths > MaxWeightTenths {
		return Weight{}, fmt.Errorf("weight tenths out of range: %d", tenths)
	}
	return Weight{tenths: tenths}, nil
}

func ParseWeight(s string) (Weight, error) {
	whole, frac, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || len(frac) != 1 {
		return Weight{}, fmt.Errorf("weight %q: want one fractional digit", s)
	}
	w, err := strconv.Atoi(whole)
	if err == nil && strings.HasPrefix(whole, "-") {
		err = fmt.Errorf("negative weight")
	}
	if err != nil {
		return Weight{}, fmt.Errorf("weight %q: %w", s, err)
	}
	f, err := strconv.Atoi(frac)
	if err != nil || f < 0 {
		return Weight{}, fmt.Errorf("weight %q: bad fraction", s)
	}
	return WeightFromTenths(w*10 + f)
}

func (w Weight) Tenths() int { return w.tenths }

func (w Weight) Value() float64 { return float64(w.tenths) / 10 }

func (w Weight) String() string {
	return fmt.Sprintf("%d.%d", w.tenths/10, w.tenths%10)
}

func (w Weight) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

func (w *Weight) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseWeight(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight Weight `json:"weight"`
	Bias   bool   `json:"bias"`
	Stage  int    `json:"stage"`
	// LabelOffset shifts the weight caption away from the edge midpoint.
	LabelOffset Point `json:"label_offset"`
}

type Signal struct {
	Start    Point   `json:"start"`
	End      Point   `json:"end"`
	Progress float64 `json:"progress"`
	Speed    float64 `json:"speed"`
	Color    string  `json:"color"`
	Radius   float64 `json:"radius"`
	Stage    int     `json:"stage"`
}

// Position is the on-screen point for the signal's current progress.
func (s Signal) Position() Point {
	return s.Start.Lerp(s.End, s.Progress)
}

// Flash is the sigmoid transition cue shown between stages.
type Flash struct {
	Intensity float64 `json:"intensity"`
	Remaining int     `json:"remaining"`
}

// RunRecord is the journal entry written when an animation run drains.
type RunRecord struct {
	VersionedRecord
	ID          string             `json:"id"`
	Topology    string             `json:"topology"`
	Weights     map[string]Weight  `json:"weights"`
	Inputs      [2]float64         `json:"inputs"`
	Values      map[string]float64 `json:"values"`
	Ticks       int                `json:"ticks"`
	Flashes     int                `json:"flashes"`
	CompletedAt time.Time          `json:"completed_at"`
}
