// Package mvarray provides the labeled 2-D grids the calibration engine
// operates on. Grids are stored row-major in flat slices with explicit
// index helpers, and carry coordinate vectors along the x and y axes.
// Pixel payloads are float32 to match sensor precision; acquisition
// timestamps are float64 epoch seconds; quality flags are uint8 bitmasks.
package mvarray

import "math"

// NaN32 is the float32 fill value for physically invalid pixels.
var NaN32 = float32(math.NaN())

// Array is a labeled 2-D float32 grid. Data is row-major: the element at
// column ix, line iy lives at Data[iy*len(X)+ix]. X and Y hold the
// coordinate values along each axis.
type Array struct {
	Name string
	Data []float32
	X    []float64
	Y    []float64
}

// New allocates a zero-filled array with the given coordinates.
func New(name string, x, y []float64) *Array {
	return &Array{
		Name: name,
		Data: make([]float32, len(x)*len(y)),
		X:    x,
		Y:    y,
	}
}

// Idx returns the flat index of column ix, line iy.
func (a *Array) Idx(ix, iy int) int { return iy*len(a.X) + ix }

// At returns the element at column ix, line iy.
func (a *Array) At(ix, iy int) float32 { return a.Data[a.Idx(ix, iy)] }

// Set stores v at column ix, line iy.
func (a *Array) Set(ix, iy int, v float32) { a.Data[a.Idx(ix, iy)] = v }

// Width returns the number of columns (x axis size).
func (a *Array) Width() int { return len(a.X) }

// Height returns the number of lines (y axis size).
func (a *Array) Height() int { return len(a.Y) }

// Clone returns a deep copy, optionally renamed. An empty name keeps the
// original name.
func (a *Array) Clone(name string) *Array {
	if name == "" {
		name = a.Name
	}
	out := &Array{
		Name: name,
		Data: make([]float32, len(a.Data)),
		X:    a.X,
		Y:    a.Y,
	}
	copy(out.Data, a.Data)
	return out
}

// Scale multiplies every element by f in place and returns the array.
func (a *Array) Scale(f float32) *Array {
	for i := range a.Data {
		a.Data[i] *= f
	}
	return a
}

// MaskWhere replaces elements for which keep returns false with NaN,
// in place, and returns the array.
func (a *Array) MaskWhere(keep func(v float32) bool) *Array {
	for i, v := range a.Data {
		if !keep(v) {
			a.Data[i] = NaN32
		}
	}
	return a
}

// SameShape reports whether b has the same axis sizes as a.
func (a *Array) SameShape(b *Array) bool {
	return b != nil && len(a.X) == len(b.X) && len(a.Y) == len(b.Y)
}

// Bitmask is a labeled 2-D uint8 grid of per-pixel quality flags.
type Bitmask struct {
	Name string
	Data []uint8
	X    []float64
	Y    []float64
}

// Idx returns the flat index of column ix, line iy.
func (m *Bitmask) Idx(ix, iy int) int { return iy*len(m.X) + ix }

// At returns the flag byte at column ix, line iy.
func (m *Bitmask) At(ix, iy int) uint8 { return m.Data[m.Idx(ix, iy)] }

// TimeGrid is a labeled 2-D float64 grid of per-pixel acquisition
// timestamps in seconds since the Unix epoch.
type TimeGrid struct {
	Name string
	Data []float64
	X    []float64
	Y    []float64
}

// Idx returns the flat index of column ix, line iy.
func (g *TimeGrid) Idx(ix, iy int) int { return iy*len(g.X) + ix }

// Row returns the iy-th scanline of timestamps as a subslice.
func (g *TimeGrid) Row(iy int) []float64 {
	w := len(g.X)
	return g.Data[iy*w : (iy+1)*w]
}

// TimeSeries is a 1-D series of per-scanline timestamps indexed by y.
type TimeSeries struct {
	Name string
	Data []float64
	Y    []float64
}
