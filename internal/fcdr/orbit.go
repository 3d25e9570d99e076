package fcdr

import (
	"errors"

	"github.com/meteosat-archive/mviri-fcdr/internal/geos"
)

// OrbitalParameters describe the nominal projection position and, when
// the scene provides start/end sub-satellite samples, the actual
// satellite position. The actual fields are nil when the source
// variables are absent; they are never zero-filled.
type OrbitalParameters struct {
	ProjectionLongitude float64  `json:"projection_longitude"`
	ProjectionLatitude  float64  `json:"projection_latitude"`
	ProjectionAltitude  float64  `json:"projection_altitude"`
	ActualLongitude     *float64 `json:"satellite_actual_longitude,omitempty"`
	ActualLatitude      *float64 `json:"satellite_actual_latitude,omitempty"`
}

// OrbitalParameters resolves the orbital metadata for the scene. The
// easy FCDR provides satellite positions at the beginning and end of the
// scan; their mean is reported. In the full FCDR the variables are
// usually missing, which is recoverable: the actual position is simply
// omitted.
func (e *Engine) OrbitalParameters() OrbitalParameters {
	op := OrbitalParameters{
		ProjectionLongitude: e.scene.ProjectionLongitude,
		ProjectionLatitude:  0.0,
		ProjectionAltitude:  geos.Altitude,
	}
	lon, lat, err := e.scene.SubSatellitePoint()
	if err != nil {
		var missing *MissingAuxiliaryDataError
		if !errors.As(err, &missing) {
			e.warnf("sub-satellite point: %v", err)
		}
		return op
	}
	op.ActualLongitude = &lon
	op.ActualLatitude = &lat
	// Actual altitude is not available in the files.
	return op
}
