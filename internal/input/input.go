package input

import (
	"math"
	"strconv"
	"strings"
	"sync"
)

// Source supplies the two network inputs on demand.
type Source interface {
	Values() (float64, float64)
}

// Field holds the raw text of one numeric input box.
type Field struct {
	mu  sync.RWMutex
	raw string
	set bool
}

func NewField(raw string) *Field {
	return &Field{raw: raw, set: true}
}

func (f *Field) Set(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw = raw
	f.set = true
}

func (f *Field) Raw() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.raw
}

// Value parses the field, reading anything absent or unparseable as 0.
func (f *Field) Value() float64 {
	if f == nil {
		return 0
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.set {
		return 0
	}
	return Parse(f.raw)
}

// Parse reads a decimal number, mapping failures and non-finite values to 0.
func Parse(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Pair is the shared pair of input boxes.
type Pair struct {
	Input1 *Field
	Input2 *Field
}

func NewPair(raw1, raw2 string) Pair {
	return Pair{Input1: NewField(raw1), Input2: NewField(raw2)}
}

func (p Pair) Values() (float64, float64) {
	return p.Input1.Value(), p.Input2.Value()
}

// Fixed is a constant Source.
type Fixed [2]float64

func (f Fixed) Values() (float64, float64) {
	return f[0], f[1]
}
