package api

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleQuicklook renders a quick HTML scatter plot of a calibrated
// dataset using go-echarts. This is a debugging-only endpoint to eyeball
// an image without exporting it. Query params:
//   - scene, name, resolution, calibration (as for /api/dataset)
//   - max_points (optional; default 8000) to reduce payload size
func (s *Server) handleQuicklook(w http.ResponseWriter, r *http.Request) {
	engine, name, res, cal, ok := s.datasetRequest(w, r)
	if !ok {
		return
	}
	ds, err := engine.Dataset(name, res, cal)
	if err != nil {
		s.writeJSONError(w, httpStatusForError(err), err.Error())
		return
	}

	maxPoints := 8000
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}

	arr := ds.Array
	total := len(arr.Data)
	// Downsample by stride to stay within maxPoints.
	stride := 1
	if total > maxPoints {
		stride = int(math.Ceil(float64(total) / float64(maxPoints)))
	}

	data := make([]opts.ScatterData, 0, total/stride+1)
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for i := 0; i < total; i += stride {
		v := float64(arr.Data[i])
		if math.IsNaN(v) {
			continue
		}
		ix := i % arr.Width()
		iy := i / arr.Width()
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
		data = append(data, opts.ScatterData{Value: []interface{}{ix, iy, v}})
	}
	if len(data) == 0 {
		s.writeJSONError(w, http.StatusNotFound, "all pixels masked, nothing to plot")
		return
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "MVIRI Quicklook", Theme: "dark", Width: "900px", Height: "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s %s", name, arr.Name),
			Subtitle: fmt.Sprintf("resolution=%s points=%d stride=%d", res, len(data), stride),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: arr.Width(), Name: "x"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: arr.Height(), Name: "y"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(minVal),
			Max:        float32(maxVal),
			Dimension:  "2",
			InRange: &opts.VisualMapInRange{Color: []string{
				"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
				"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
			}},
		}),
	)
	scatter.AddSeries(string(cal), data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
