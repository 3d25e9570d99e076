package fcdr

import (
	"fmt"
	"math"

	"github.com/meteosat-archive/mviri-fcdr/internal/mvarray"
)

// calibrate transforms one channel's raw array to the requested level.
// Shapes are preserved; physically invalid pixels become NaN instead of
// failing the whole image.
func (e *Engine) calibrate(raw *mvarray.Array, ch Channel, level Calibration) (*mvarray.Array, error) {
	if !LegalCalibration(e.scene.Variant, ch, level) {
		return nil, &InvalidCalibrationError{Channel: ch, Variant: e.scene.Variant, Level: level}
	}
	switch ch {
	case ChannelVIS:
		return e.calibrateVIS(raw, level)
	case ChannelWV, ChannelIR:
		return e.calibrateIRWV(raw, ch, level)
	}
	return nil, fmt.Errorf("don't know how to calibrate channel %s", ch)
}

func (e *Engine) calibrateVIS(raw *mvarray.Array, level Calibration) (*mvarray.Array, error) {
	if e.scene.Variant == VariantEasy {
		// Easy FCDR stores reflectance as a factor; only the percent
		// conversion remains. The legality table has already rejected
		// counts and radiance here.
		return raw.Clone("reflectance").Scale(100), nil
	}
	if level == CalCounts {
		return raw.Clone(""), nil
	}
	rad, err := e.visCountsToRadiance(raw)
	if err != nil {
		return nil, err
	}
	if level == CalRadiance {
		return rad, nil
	}
	return e.visRadianceToReflectance(rad)
}

// visCountsToRadiance applies the linear space-count calibration with
// the age-dependent calibration factor.
// Reference: MFG PUG equations (7) and (8).
func (e *Engine) visCountsToRadiance(counts *mvarray.Array) (*mvarray.Array, error) {
	aCF, err := e.scene.VISCalibrationFactor()
	if err != nil {
		return nil, err
	}
	meanCountSpace, err := e.scene.Coefficient("mean_count_space_vis")
	if err != nil {
		return nil, err
	}
	rad := counts.Clone("radiance")
	for i, c := range rad.Data {
		rad.Data[i] = (c - meanCountSpace) * aCF
	}
	return rad.MaskWhere(func(v float32) bool { return v > 0 }), nil
}

// visRadianceToReflectance converts radiance to a reflectance factor in
// percent, normalizing by the incoming solar irradiance at the actual
// sun-earth distance.
//
// Produces huge reflectances where both radiance and solar zenith angle
// are small; that behavior is documented upstream and deliberately not
// clamped here.
//
// Reference: MFG PUG equation (6).
func (e *Engine) visRadianceToReflectance(rad *mvarray.Array) (*mvarray.Array, error) {
	sza, err := e.Angles("solar_zenith_angle", ResolutionHigh)
	if err != nil {
		return nil, fmt.Errorf("solar zenith angle needed for VIS reflectance: %w", err)
	}
	if !rad.SameShape(sza) {
		return nil, fmt.Errorf("solar zenith angle grid %dx%d does not match VIS grid %dx%d",
			sza.Width(), sza.Height(), rad.Width(), rad.Height())
	}
	distSunEarth, err := e.scene.Coefficient("distance_sun_earth")
	if err != nil {
		return nil, err
	}
	solarIrradiance, err := e.scene.Coefficient("solar_irradiance_vis")
	if err != nil {
		return nil, err
	}
	dist2 := distSunEarth * distSunEarth

	refl := rad.Clone("reflectance")
	for i, r := range refl.Data {
		zen := sza.Data[i]
		// Direct illumination only: mask before taking the cosine so a
		// zenith angle of exactly 90 degrees never divides by zero.
		if !(float32(math.Abs(float64(zen))) < 90) {
			refl.Data[i] = mvarray.NaN32
			continue
		}
		cosZen := float32(math.Cos(float64(zen) * math.Pi / 180))
		refl.Data[i] = float32(math.Pi) * dist2 / (solarIrradiance * cosZen) * r * 100
	}
	return refl, nil
}

func (e *Engine) calibrateIRWV(raw *mvarray.Array, ch Channel, level Calibration) (*mvarray.Array, error) {
	if level == CalCounts {
		return raw.Clone(""), nil
	}
	rad, err := e.irwvCountsToRadiance(raw, ch)
	if err != nil {
		return nil, err
	}
	if level == CalRadiance {
		return rad, nil
	}
	return e.irwvRadianceToBrightnessTemperature(rad, ch)
}

// irwvCountsToRadiance applies the linear count calibration.
// Reference: MFG PUG equations (4.1) and (4.2).
func (e *Engine) irwvCountsToRadiance(counts *mvarray.Array, ch Channel) (*mvarray.Array, error) {
	a, b, err := e.scene.LinearCoefficients(ch, CalRadiance)
	if err != nil {
		return nil, err
	}
	rad := counts.Clone("radiance")
	for i, c := range rad.Data {
		rad.Data[i] = a + b*c
	}
	return rad.MaskWhere(func(v float32) bool { return v > 0 }), nil
}

// irwvRadianceToBrightnessTemperature converts radiance to an equivalent
// blackbody temperature using the calibration-stage-specific coefficient
// pair.
// Reference: MFG PUG equations (5.1) and (5.2).
func (e *Engine) irwvRadianceToBrightnessTemperature(rad *mvarray.Array, ch Channel) (*mvarray.Array, error) {
	a, b, err := e.scene.LinearCoefficients(ch, CalBrightnessTemperature)
	if err != nil {
		return nil, err
	}
	bt := rad.Clone("brightness_temperature")
	for i, r := range bt.Data {
		bt.Data[i] = b / (float32(math.Log(float64(r))) - a)
	}
	return bt.MaskWhere(func(v float32) bool { return v > 0 }), nil
}
