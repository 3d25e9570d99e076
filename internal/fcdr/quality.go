package fcdr

import "github.com/meteosat-archive/mviri-fcdr/internal/mvarray"

// useWithCautionFlag is bit 1 of the quality pixel bitmask.
const useWithCautionFlag = 2

// applyQualityMask replaces every pixel whose bitmask is anything other
// than 0 (no flag set) with NaN. The input array is not modified.
func applyQualityMask(data *mvarray.Array, mask *mvarray.Bitmask) *mvarray.Array {
	out := data.Clone("")
	for i, flags := range mask.Data {
		if flags != 0 {
			out.Data[i] = mvarray.NaN32
		}
	}
	return out
}

// allUseWithCaution reports whether every pixel carries the "use with
// caution" flag.
func allUseWithCaution(mask *mvarray.Bitmask) bool {
	for _, flags := range mask.Data {
		if flags&useWithCautionFlag == 0 {
			return false
		}
	}
	return len(mask.Data) > 0
}

// checkVISQuality inspects the quality bitmask without touching the data
// and warns when the entire image is flagged. A fully flagged image may
// still be usable by an informed caller, so this never fails the
// request.
func (e *Engine) checkVISQuality(mask *mvarray.Bitmask) {
	if allUseWithCaution(mask) {
		e.warnf(`All pixels of the VIS channel are flagged as "use with caution". ` +
			`Use datasets "quality_pixel_bitmask" and "data_quality_bitmask" to find out why.`)
	}
}
