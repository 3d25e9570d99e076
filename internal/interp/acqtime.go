package interp

import (
	"gonum.org/v1/gonum/stat"

	"github.com/meteosat-archive/mviri-fcdr/internal/mvarray"
)

// MeanScanlineTime reduces a per-pixel timestamp grid to one mean
// timestamp per scanline.
//
// The timestamps do not increase monotonically with the line number due
// to the scan pattern and rectification; consumers must not sort by time
// and assume line order.
func MeanScanlineTime(grid *mvarray.TimeGrid) *mvarray.TimeSeries {
	out := &mvarray.TimeSeries{
		Name: grid.Name,
		Data: make([]float64, len(grid.Y)),
		Y:    grid.Y,
	}
	for iy := range grid.Y {
		out.Data[iy] = stat.Mean(grid.Row(iy), nil)
	}
	return out
}

// UpsampleScanlineTime repeats each scanline timestamp so the series
// covers targetY, then relabels it with the target coordinates. The
// target size must be an exact integer multiple of the series size. If
// the sizes already match the series is returned unchanged.
func UpsampleScanlineTime(series *mvarray.TimeSeries, targetY []float64) (*mvarray.TimeSeries, error) {
	if len(targetY) == len(series.Data) {
		return series, nil
	}
	reps, err := samplingRatio("y", len(series.Data), len(targetY))
	if err != nil {
		return nil, err
	}
	out := &mvarray.TimeSeries{
		Name: series.Name,
		Data: make([]float64, 0, len(targetY)),
		Y:    targetY,
	}
	for _, v := range series.Data {
		for r := 0; r < reps; r++ {
			out.Data = append(out.Data, v)
		}
	}
	return out, nil
}
