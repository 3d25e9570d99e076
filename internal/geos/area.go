// Package geos derives the geostationary area geometry for MVIRI images
// and provides per-pixel longitude/latitude lookup via the inverse
// geostationary projection.
//
// Reference: MFG User Handbook sections 5.2.1 and 5.3.2.1 for the
// physical constants, MFG PUG section 2 for the scan direction.
package geos

import "math"

const (
	// EquatorRadius and PoleRadius describe the reference ellipsoid in
	// meters. Altitude is the satellite height above the equator.
	EquatorRadius = 6378140.0
	PoleRadius    = 6356755.0
	Altitude      = 42164000.0 - EquatorRadius

	// FieldOfView is the full instrument field of view in degrees.
	FieldOfView = 18.0
)

// Area names for the two native resolution classes.
const (
	AreaNameVIS  = "geos_mviri_vis"
	AreaNameIRWV = "geos_mviri_ir_wv"
)

// AreaDefinition is a geostationary projection area covering one image.
// Extent is {lower-left x, lower-left y, upper-right x, upper-right y}
// in projection meters (scan angle times satellite height).
type AreaDefinition struct {
	ID          string
	Description string
	SSPLon      float64
	A           float64
	B           float64
	H           float64
	Width       int
	Height      int

	// Line/column offsets and scale factors as handed to geostationary
	// navigation: the line offset is shifted by the image size and both
	// factors are negated for the south-to-north scan direction.
	Loff float64
	Coff float64
	Lfac float64
	Cfac float64

	Extent [4]float64
}

// SamplingToLFACCFAC converts an angular sampling interval (radians per
// pixel) to the integer-scaled line/column factor used by geostationary
// navigation (counts per degree, scaled by 2^16).
func SamplingToLFACCFAC(sampling float64) float64 {
	return math.Exp2(16) / (sampling * 180 / math.Pi)
}

// scanAngleDeg converts a pixel index to a scan angle in degrees using
// the given offset and factor.
func scanAngleDeg(idx, off, fac float64) float64 {
	return (idx - off) / fac * math.Exp2(16)
}

// BuildArea derives the area definition for one resolution class.
// Line and column offsets are size/2 + 0.5; the line offset is shifted by
// the image size and both scale factors are negated to encode the
// south-to-north scan direction expected downstream.
func BuildArea(highRes bool, imageSize int, sspLon float64) *AreaDefinition {
	name := AreaNameIRWV
	if highRes {
		name = AreaNameVIS
	}
	size := float64(imageSize)
	off := size/2 + 0.5
	fac := SamplingToLFACCFAC(FieldOfView * math.Pi / 180 / size)

	loff := off - size
	coff := off
	lfac := -fac
	cfac := -fac

	// Pixel counts start at 1; the extent spans the outer edges of the
	// first and last pixels. For the south-to-north scan the line count
	// is reversed before applying offset and factor, which cancels the
	// loff shift and the lfac negation: y(L) = (L - off) / fac * 2^16.
	llx := scanAngleDeg(0.5, coff, cfac)
	urx := scanAngleDeg(size+0.5, coff, cfac)
	lly := scanAngleDeg(0.5, off, fac)
	ury := scanAngleDeg(size+0.5, off, fac)

	rad := math.Pi / 180
	return &AreaDefinition{
		ID:          name,
		Description: "MVIRI Geostationary Projection",
		SSPLon:      sspLon,
		A:           EquatorRadius,
		B:           PoleRadius,
		H:           Altitude,
		Width:       imageSize,
		Height:      imageSize,
		Loff:        loff,
		Coff:        coff,
		Lfac:        lfac,
		Cfac:        cfac,
		Extent: [4]float64{
			llx * rad * Altitude,
			lly * rad * Altitude,
			urx * rad * Altitude,
			ury * rad * Altitude,
		},
	}
}

// LonlatAt returns the geodetic longitude and latitude (degrees) of the
// pixel center at column ix, line iy. Pixels viewing past the earth limb
// return NaN, NaN.
func (d *AreaDefinition) LonlatAt(ix, iy int) (lon, lat float64) {
	px := (float64(ix) + 0.5) / float64(d.Width)
	py := (float64(iy) + 0.5) / float64(d.Height)
	x := d.Extent[0] + px*(d.Extent[2]-d.Extent[0])
	y := d.Extent[1] + py*(d.Extent[3]-d.Extent[1])
	return d.lonlat(x/d.H, y/d.H)
}

// Lonlats computes longitudes and latitudes for every pixel center,
// row-major like the image arrays.
func (d *AreaDefinition) Lonlats() (lons, lats []float64) {
	lons = make([]float64, d.Width*d.Height)
	lats = make([]float64, d.Width*d.Height)
	for iy := 0; iy < d.Height; iy++ {
		for ix := 0; ix < d.Width; ix++ {
			lon, lat := d.LonlatAt(ix, iy)
			i := iy*d.Width + ix
			lons[i] = lon
			lats[i] = lat
		}
	}
	return lons, lats
}

// lonlat inverts the geostationary projection for the scanning angles
// ax, ay (radians east and north of the sub-satellite point).
// Reference: CGMS LRIT/HRIT global specification, section 4.4.3.2.
func (d *AreaDefinition) lonlat(ax, ay float64) (lon, lat float64) {
	cosX := math.Cos(ax)
	cosY := math.Cos(ay)
	sinX := math.Sin(ax)
	sinY := math.Sin(ay)

	hc := d.H + d.A // distance from earth center
	q := d.A * d.A / (d.B * d.B)
	c := cosY*cosY + q*sinY*sinY

	sd2 := hc*cosX*cosY*hc*cosX*cosY - c*(hc*hc-d.A*d.A)
	if sd2 < 0 {
		return math.NaN(), math.NaN()
	}
	sn := (hc*cosX*cosY - math.Sqrt(sd2)) / c
	s1 := hc - sn*cosX*cosY
	s2 := sn * sinX * cosY
	s3 := sn * sinY
	sxy := math.Hypot(s1, s2)

	lon = math.Atan2(s2, s1)*180/math.Pi + d.SSPLon
	lat = math.Atan(q*s3/sxy) * 180 / math.Pi
	return lon, lat
}
