package fcdr

import (
	"github.com/meteosat-archive/mviri-fcdr/internal/mvarray"
)

// testCoords returns 0..n-1 as a coordinate vector.
func testCoords(n int) []float64 {
	c := make([]float64, n)
	for i := range c {
		c[i] = float64(i)
	}
	return c
}

func constArray(name string, x, y []float64, v float32) *mvarray.Array {
	a := mvarray.New(name, x, y)
	for i := range a.Data {
		a.Data[i] = v
	}
	return a
}

func f64ptr(v float64) *float64 { return &v }

// testScene builds a small scene: 4x4 high resolution grid, 2x2 low
// resolution grid, 2x2 angle tie-point grid, constant solar zenith angle.
func testScene(variant Variant, sza float32) *Scene {
	xHigh, yHigh := testCoords(4), testCoords(4)
	xLow, yLow := testCoords(2), testCoords(2)

	vis := mvarray.New("VIS", xHigh, yHigh)
	for i := range vis.Data {
		vis.Data[i] = float32(40 + i) // counts for full, factor for easy
	}
	if variant == VariantEasy {
		for i := range vis.Data {
			vis.Data[i] = float32(i) / 100
		}
	}

	ir := mvarray.New("IR", xLow, yLow)
	wv := mvarray.New("WV", xLow, yLow)
	for i := range ir.Data {
		ir.Data[i] = float32(100 + 10*i)
		wv.Data[i] = float32(50 + 5*i)
	}

	angles := map[string]*mvarray.Array{}
	for _, name := range AngleNames {
		angles[name] = constArray(name, testCoords(2), testCoords(2), sza)
	}

	return &Scene{
		Variant:             variant,
		Platform:            "MET7",
		Sensor:              "MVIRI",
		ProjectionLongitude: 57.0,
		Coefficients: map[string]float64{
			"a_wv": -1, "b_wv": 0.2,
			"bt_a_wv": -1.5, "bt_b_wv": 1200,
			"a_ir": -10, "b_ir": 0.5,
			"bt_a_ir": -2, "bt_b_ir": 1300,
			"a0_vis": 2, "a1_vis": 0, "a2_vis": 0,
			"mean_count_space_vis": 40,
			"years_since_launch":   5,
			"distance_sun_earth":   1,
			"solar_irradiance_vis": 690,
		},
		Attrs:    map[string]any{"comment": "test scene"},
		Channels: map[Channel]*mvarray.Array{ChannelVIS: vis, ChannelWV: wv, ChannelIR: ir},
		Angles:   angles,
		Other: map[string]*mvarray.Array{
			"u_independent_toa_bidirectional_reflectance": constArray(
				"u_independent_toa_bidirectional_reflectance", xHigh, yHigh, 0.01),
		},
		QualityPixelBitmask: &mvarray.Bitmask{
			Name: "quality_pixel_bitmask",
			Data: make([]uint8, 16),
			X:    xHigh,
			Y:    yHigh,
		},
		Time: &mvarray.TimeGrid{
			Name: "time",
			Data: []float64{100, 100, 200, 200},
			X:    xLow,
			Y:    yLow,
		},
		XHigh: xHigh, YHigh: yHigh,
		XLow: xLow, YLow: yLow,
		SubSatelliteLonStart: f64ptr(57.1),
		SubSatelliteLonEnd:   f64ptr(57.3),
		SubSatelliteLatStart: f64ptr(-0.2),
		SubSatelliteLatEnd:   f64ptr(0.4),
	}
}

func testEngine(variant Variant, sza float32) *Engine {
	return New(testScene(variant, sza), Options{Warnf: func(string, ...any) {}})
}
