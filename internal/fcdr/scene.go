package fcdr

import (
	"fmt"
	"math"

	"github.com/meteosat-archive/mviri-fcdr/internal/mvarray"
)

// Scene is the in-memory handoff from the file access collaborator. All
// arrays arrive with normalized (x, y) axes; coefficient values are
// keyed by the fixed identifiers of the source data format.
type Scene struct {
	Variant  Variant
	Platform string
	Sensor   string

	// ProjectionLongitude is sourced from filename metadata, not file
	// content.
	ProjectionLongitude float64

	// Coefficients holds scalar calibration coefficients and scene
	// constants: a_wv, b_wv, bt_a_wv, bt_b_wv, a_ir, b_ir, bt_a_ir,
	// bt_b_ir, a0_vis, a1_vis, a2_vis, mean_count_space_vis,
	// years_since_launch, distance_sun_earth, solar_irradiance_vis.
	Coefficients map[string]float64

	// Attrs carries the raw global scene attributes, passed through to
	// consumers unmodified.
	Attrs map[string]any

	// Channels holds the raw per-channel arrays keyed by channel name
	// (counts, or pre-computed reflectance factor for VIS in the easy
	// FCDR).
	Channels map[Channel]*mvarray.Array

	// Angles holds the coarse tie-point angle grids keyed by dataset
	// name.
	Angles map[string]*mvarray.Array

	// Other holds passthrough datasets such as uncertainties.
	Other map[string]*mvarray.Array

	// QualityPixelBitmask is evaluated for the VIS channel only.
	QualityPixelBitmask *mvarray.Bitmask

	// Time is the per-pixel acquisition timestamp grid on the low
	// resolution grid, seconds since the Unix epoch.
	Time *mvarray.TimeGrid

	// Full image coordinate vectors for the two resolution classes.
	XHigh, YHigh []float64
	XLow, YLow   []float64

	// Sub-satellite position samples at the start and end of the scan.
	// Nil when the variables are missing (they usually are in the full
	// FCDR).
	SubSatelliteLonStart *float64
	SubSatelliteLonEnd   *float64
	SubSatelliteLatStart *float64
	SubSatelliteLatEnd   *float64
}

// TargetCoords returns the full image coordinate vectors for a
// resolution class.
func (s *Scene) TargetCoords(res Resolution) (x, y []float64) {
	if res == ResolutionHigh {
		return s.XHigh, s.YHigh
	}
	return s.XLow, s.YLow
}

// ImageSize returns the number of lines of the image grid for a
// resolution class.
func (s *Scene) ImageSize(res Resolution) int {
	_, y := s.TargetCoords(res)
	return len(y)
}

// coefKeys maps (channel, calibration stage) to the identifiers of the
// offset/slope pair in Coefficients.
var coefKeys = map[Channel]map[Calibration][2]string{
	ChannelWV: {
		CalRadiance:              {"a_wv", "b_wv"},
		CalBrightnessTemperature: {"bt_a_wv", "bt_b_wv"},
	},
	ChannelIR: {
		CalRadiance:              {"a_ir", "b_ir"},
		CalBrightnessTemperature: {"bt_a_ir", "bt_b_ir"},
	},
}

// Coefficient returns a single scalar coefficient in the float32
// precision used throughout the calibration arithmetic.
func (s *Scene) Coefficient(key string) (float32, error) {
	v, ok := s.Coefficients[key]
	if !ok {
		return 0, fmt.Errorf("calibration coefficient %q not present in scene", key)
	}
	return float32(v), nil
}

// LinearCoefficients returns the offset (a) and slope (b) for an IR/WV
// calibration stage.
func (s *Scene) LinearCoefficients(ch Channel, stage Calibration) (a, b float32, err error) {
	keys, ok := coefKeys[ch][stage]
	if !ok {
		return 0, 0, fmt.Errorf("no %s coefficients defined for channel %s", stage, ch)
	}
	if a, err = s.Coefficient(keys[0]); err != nil {
		return 0, 0, err
	}
	if b, err = s.Coefficient(keys[1]); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// VISCalibrationFactor evaluates the quadratic polynomial in years since
// launch yielding the VIS count-to-radiance factor.
func (s *Scene) VISCalibrationFactor() (float32, error) {
	var vals [4]float64
	for i, key := range []string{"a0_vis", "a1_vis", "a2_vis", "years_since_launch"} {
		v, ok := s.Coefficients[key]
		if !ok {
			return 0, fmt.Errorf("calibration coefficient %q not present in scene", key)
		}
		vals[i] = v
	}
	t := vals[3]
	return float32(vals[0] + vals[1]*t + vals[2]*t*t), nil
}

// SubSatellitePoint returns the mean of the start/end sub-satellite
// position samples. A MissingAuxiliaryDataError is returned when either
// sample of a coordinate is absent or the mean is not finite.
func (s *Scene) SubSatellitePoint() (lon, lat float64, err error) {
	lon, err = meanSample("sub_satellite_longitude", s.SubSatelliteLonStart, s.SubSatelliteLonEnd)
	if err != nil {
		return 0, 0, err
	}
	lat, err = meanSample("sub_satellite_latitude", s.SubSatelliteLatStart, s.SubSatelliteLatEnd)
	if err != nil {
		return 0, 0, err
	}
	return lon, lat, nil
}

func meanSample(name string, start, end *float64) (float64, error) {
	if start == nil || end == nil {
		return 0, &MissingAuxiliaryDataError{Name: name}
	}
	mean := (*start + *end) / 2
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return 0, &MissingAuxiliaryDataError{Name: name}
	}
	return mean, nil
}
