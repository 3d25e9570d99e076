package geos

import (
	"math"
	"testing"
)

func TestBuildAreaOffsetsAndFactors(t *testing.T) {
	a := BuildArea(true, 5000, 57.0)
	if a.ID != AreaNameVIS {
		t.Fatalf("area id = %q, want %q", a.ID, AreaNameVIS)
	}
	if a.Coff != 2500.5 {
		t.Fatalf("coff = %v, want 2500.5", a.Coff)
	}
	if a.Loff != 2500.5-5000 {
		t.Fatalf("loff = %v, want %v", a.Loff, 2500.5-5000)
	}
	if a.Lfac >= 0 || a.Cfac >= 0 {
		t.Fatalf("factors must be negated for S2N scan, got lfac=%v cfac=%v", a.Lfac, a.Cfac)
	}
	if a.Lfac != a.Cfac {
		t.Fatalf("line and column factors must match, got %v vs %v", a.Lfac, a.Cfac)
	}
}

func TestBuildAreaLowResName(t *testing.T) {
	a := BuildArea(false, 2500, 0)
	if a.ID != AreaNameIRWV {
		t.Fatalf("area id = %q, want %q", a.ID, AreaNameIRWV)
	}
	if a.Width != 2500 || a.Height != 2500 {
		t.Fatalf("image size = %dx%d, want 2500x2500", a.Width, a.Height)
	}
}

func TestBuildAreaExtentSymmetric(t *testing.T) {
	a := BuildArea(true, 5000, 0)
	// Full field of view is 18 degrees, so the extent spans +-9 degrees
	// of scan angle times the satellite height.
	half := 9.0 * math.Pi / 180 * Altitude
	tol := 1.0 // meters
	if math.Abs(math.Abs(a.Extent[0])-half) > tol {
		t.Fatalf("ll_x = %v, want magnitude %v", a.Extent[0], half)
	}
	if math.Abs(a.Extent[0]+a.Extent[2]) > tol {
		t.Fatalf("x extent not symmetric: %v vs %v", a.Extent[0], a.Extent[2])
	}
	if math.Abs(a.Extent[1]+a.Extent[3]) > tol {
		t.Fatalf("y extent not symmetric: %v vs %v", a.Extent[1], a.Extent[3])
	}
}

func TestSamplingToLFACCFAC(t *testing.T) {
	// One degree per pixel: factor is 2^16 counts per degree.
	got := SamplingToLFACCFAC(math.Pi / 180)
	if math.Abs(got-65536) > 1e-6 {
		t.Fatalf("factor = %v, want 65536", got)
	}
}

func TestLonlatAtSubSatellitePoint(t *testing.T) {
	a := BuildArea(true, 5000, 57.0)
	// The image center views the sub-satellite point.
	lon, lat := a.LonlatAt(2500, 2500)
	if math.Abs(lon-57.0) > 0.05 {
		t.Fatalf("center lon = %v, want 57.0", lon)
	}
	if math.Abs(lat) > 0.05 {
		t.Fatalf("center lat = %v, want 0", lat)
	}
}

func TestLonlatOffDisk(t *testing.T) {
	a := BuildArea(true, 5000, 0)
	// Image corners view past the earth limb.
	lon, lat := a.LonlatAt(0, 0)
	if !math.IsNaN(lon) || !math.IsNaN(lat) {
		t.Fatalf("corner must be off-disk, got lon=%v lat=%v", lon, lat)
	}
}

func TestLonlatsShape(t *testing.T) {
	a := BuildArea(false, 10, 0)
	lons, lats := a.Lonlats()
	if len(lons) != 100 || len(lats) != 100 {
		t.Fatalf("expected 100 lon/lat values, got %d/%d", len(lons), len(lats))
	}
	// Pixels on opposite sides of the center row must have latitudes of
	// opposite sign.
	_, latN := a.LonlatAt(5, 2)
	_, latS := a.LonlatAt(5, 7)
	if math.IsNaN(latN) || math.IsNaN(latS) {
		t.Fatalf("expected on-disk pixels, got NaN")
	}
	if latN*latS >= 0 {
		t.Fatalf("latitudes across the equator must differ in sign: %v vs %v", latN, latS)
	}
}
