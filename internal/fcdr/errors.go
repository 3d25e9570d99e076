package fcdr

import "fmt"

// InvalidCalibrationError is returned when the requested calibration
// level cannot be produced for a channel under the loaded product
// variant. This is a usage error and is surfaced immediately; the level
// is never approximated.
type InvalidCalibrationError struct {
	Channel Channel
	Variant Variant
	Level   Calibration
}

func (e *InvalidCalibrationError) Error() string {
	return fmt.Sprintf("cannot calibrate %s to %s: not available in the %s FCDR",
		e.Channel, e.Level, e.Variant)
}

// MissingAuxiliaryDataError marks an absent optional input, such as the
// sub-satellite position samples. It is recoverable: the derived field
// is omitted from the result instead of failing the request.
type MissingAuxiliaryDataError struct {
	Name string
}

func (e *MissingAuxiliaryDataError) Error() string {
	return fmt.Sprintf("auxiliary data %q not present in scene", e.Name)
}
