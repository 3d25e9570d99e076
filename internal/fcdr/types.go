// Package fcdr calibrates MVIRI FCDR channel data and derives the
// metadata needed to interpret it: interpolated viewing/solar angles,
// per-scanline acquisition times, orbital parameters and the
// geostationary image area.
//
// The package works on in-memory labeled arrays handed over by a file
// access collaborator; it does not open or parse files itself. Two
// product variants exist: the full FCDR carries raw counts for all
// channels, the easy FCDR carries pre-computed reflectance for the
// visible channel.
package fcdr

import "fmt"

// Channel identifies one of the three MVIRI channels.
type Channel string

const (
	ChannelVIS Channel = "VIS"
	ChannelWV  Channel = "WV"
	ChannelIR  Channel = "IR"
)

// Channels lists all channel names.
var Channels = []Channel{ChannelVIS, ChannelWV, ChannelIR}

// IsChannel reports whether name is a known channel name.
func IsChannel(name string) bool {
	switch Channel(name) {
	case ChannelVIS, ChannelWV, ChannelIR:
		return true
	}
	return false
}

// Variant distinguishes the two FCDR product flavours.
type Variant string

const (
	VariantEasy Variant = "easy"
	VariantFull Variant = "full"
)

// ParseVariant converts a string (e.g. a CLI flag) to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantEasy, VariantFull:
		return Variant(s), nil
	}
	return "", fmt.Errorf("unknown FCDR variant %q (want easy or full)", s)
}

// Calibration is the requested calibration level.
type Calibration string

const (
	CalCounts                Calibration = "counts"
	CalRadiance              Calibration = "radiance"
	CalReflectance           Calibration = "reflectance"
	CalBrightnessTemperature Calibration = "brightness_temperature"
)

// Resolution is the target grid class. The visible channel is natively
// high resolution; infrared, water vapor and the angle tie-point grids
// are natively low resolution.
type Resolution int

const (
	ResolutionLow Resolution = iota
	ResolutionHigh
)

func (r Resolution) String() string {
	if r == ResolutionHigh {
		return "high"
	}
	return "low"
}

// NativeResolution returns the native resolution class of a channel.
func NativeResolution(ch Channel) Resolution {
	if ch == ChannelVIS {
		return ResolutionHigh
	}
	return ResolutionLow
}

// AngleNames lists the viewing/solar angle datasets provided on the
// tie-point grid.
var AngleNames = []string{
	"solar_zenith_angle",
	"solar_azimuth_angle",
	"satellite_zenith_angle",
	"satellite_azimuth_angle",
}

// IsAngle reports whether name is one of the tie-point angle datasets.
func IsAngle(name string) bool {
	for _, a := range AngleNames {
		if a == name {
			return true
		}
	}
	return false
}

// otherReflectances are passthrough datasets stored as factors that are
// converted to percent on the way out.
var otherReflectances = map[string]bool{
	"u_independent_toa_bidirectional_reflectance": true,
	"u_structured_toa_bidirectional_reflectance":  true,
}

// legal enumerates the calibration levels each (variant, channel) pair
// can produce. Keeping the set as data makes the invariant testable
// instead of implied by which methods exist.
var legal = map[Variant]map[Channel]map[Calibration]bool{
	VariantFull: {
		ChannelVIS: {CalCounts: true, CalRadiance: true, CalReflectance: true},
		ChannelWV:  {CalCounts: true, CalRadiance: true, CalBrightnessTemperature: true},
		ChannelIR:  {CalCounts: true, CalRadiance: true, CalBrightnessTemperature: true},
	},
	VariantEasy: {
		// The easy FCDR provides VIS reflectance only, no counts or
		// radiance.
		ChannelVIS: {CalReflectance: true},
		ChannelWV:  {CalCounts: true, CalRadiance: true, CalBrightnessTemperature: true},
		ChannelIR:  {CalCounts: true, CalRadiance: true, CalBrightnessTemperature: true},
	},
}

// LegalCalibration reports whether level can be produced for the given
// channel and variant.
func LegalCalibration(v Variant, ch Channel, level Calibration) bool {
	return legal[v][ch][level]
}
