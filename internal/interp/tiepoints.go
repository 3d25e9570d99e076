// Package interp expands coarse tie-point grids to the full image grid and
// reduces per-pixel acquisition timestamps to per-scanline values.
//
// The source files provide viewing and solar angles on a coarse tie-point
// grid without explicit coordinates. Tie-point coordinates are derived by
// subsampling the target coordinate vectors at the sampling stride, then
// the grid is linearly interpolated onto the full target coordinates,
// separably in x and y.
package interp

import (
	"fmt"

	"gonum.org/v1/gonum/interp"

	"github.com/meteosat-archive/mviri-fcdr/internal/mvarray"
)

// GeometryMismatchError indicates that a target grid size is not an exact
// integer multiple of the source grid size, so no sampling stride exists.
type GeometryMismatchError struct {
	Axis   string
	Coarse int
	Target int
}

func (e *GeometryMismatchError) Error() string {
	return fmt.Sprintf("target %s size %d is not an integer multiple of source size %d",
		e.Axis, e.Target, e.Coarse)
}

// samplingRatio returns the stride between tie points on one axis, or a
// GeometryMismatchError when the ratio is fractional or zero. A zero ratio
// (target smaller than the coarse grid) would otherwise slice the target
// coordinates with a zero stride.
func samplingRatio(axis string, coarse, target int) (int, error) {
	if coarse == 0 || target < coarse || target%coarse != 0 {
		return 0, &GeometryMismatchError{Axis: axis, Coarse: coarse, Target: target}
	}
	return target / coarse, nil
}

// subsample returns every stride-th element of coords.
func subsample(coords []float64, stride int) []float64 {
	out := make([]float64, 0, (len(coords)+stride-1)/stride)
	for i := 0; i < len(coords); i += stride {
		out = append(out, coords[i])
	}
	return out
}

// interpLine fits a piecewise-linear predictor through (xs, ys) and
// evaluates it at targets. Outside the fitted range gonum's predictor
// holds the edge value; the tie-point coordinates always start at the
// first target coordinate, so only the trailing edge extrapolates.
// A single-point line is treated as constant.
func interpLine(xs, ys, targets []float64) ([]float64, error) {
	out := make([]float64, len(targets))
	if len(xs) == 1 {
		for i := range out {
			out[i] = ys[0]
		}
		return out, nil
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fit tie-point line: %w", err)
	}
	for i, x := range targets {
		out[i] = pl.Predict(x)
	}
	return out, nil
}

// Tiepoints interpolates a coarse angle grid onto the given target
// coordinates. Both target axis sizes must be exact integer multiples of
// the corresponding coarse axis size. Requires strictly increasing
// coordinate vectors.
func Tiepoints(coarse *mvarray.Array, targetX, targetY []float64) (*mvarray.Array, error) {
	sx, err := samplingRatio("x", coarse.Width(), len(targetX))
	if err != nil {
		return nil, err
	}
	sy, err := samplingRatio("y", coarse.Height(), len(targetY))
	if err != nil {
		return nil, err
	}
	tieX := subsample(targetX, sx)
	tieY := subsample(targetY, sy)

	// Pass 1: along x, one line per coarse row.
	nx := len(targetX)
	ny := coarse.Height()
	mid := make([]float64, ny*nx)
	ys := make([]float64, coarse.Width())
	for iy := 0; iy < ny; iy++ {
		for ix := range ys {
			ys[ix] = float64(coarse.At(ix, iy))
		}
		line, err := interpLine(tieX, ys, targetX)
		if err != nil {
			return nil, err
		}
		copy(mid[iy*nx:(iy+1)*nx], line)
	}

	// Pass 2: along y, one line per target column.
	out := mvarray.New(coarse.Name, targetX, targetY)
	col := make([]float64, ny)
	for ix := 0; ix < nx; ix++ {
		for iy := 0; iy < ny; iy++ {
			col[iy] = mid[iy*nx+ix]
		}
		line, err := interpLine(tieY, col, targetY)
		if err != nil {
			return nil, err
		}
		for iy, v := range line {
			out.Set(ix, iy, float32(v))
		}
	}
	return out, nil
}
