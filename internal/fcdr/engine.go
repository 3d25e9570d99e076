package fcdr

import (
	"fmt"
	"log"

	"github.com/meteosat-archive/mviri-fcdr/internal/geos"
	"github.com/meteosat-archive/mviri-fcdr/internal/interp"
	"github.com/meteosat-archive/mviri-fcdr/internal/mvarray"
)

// Options configure an Engine.
type Options struct {
	// MaskBadQuality replaces VIS pixels with any quality flag set by
	// NaN. When false the bitmask is still inspected and a warning is
	// emitted if the whole image is flagged.
	MaskBadQuality bool

	// Warnf receives non-fatal warnings. Defaults to log.Printf.
	Warnf func(format string, args ...any)
}

// Engine resolves dataset requests against one loaded scene. All
// operations are pure transformations over the scene's immutable arrays
// and the two memoization caches lock internally, so one Engine may serve
// concurrent requests across channels, resolutions and datasets. Arrays
// handed out must be treated as read-only; under concurrent requests for
// the same key a cache entry may be computed more than once, with the
// last result retained.
type Engine struct {
	scene *Scene
	opts  Options

	angleCache *lruCache[angleKey, *mvarray.Array]
	acqCache   *lruCache[Resolution, *mvarray.TimeSeries]
}

type angleKey struct {
	name string
	res  Resolution
}

// New creates an engine for the given scene.
func New(scene *Scene, opts Options) *Engine {
	if opts.Warnf == nil {
		opts.Warnf = log.Printf
	}
	return &Engine{
		scene: scene,
		opts:  opts,
		// 4 angle datasets with two resolutions each.
		angleCache: newLRUCache[angleKey, *mvarray.Array](8),
		// Three channels worth of distinct resolutions.
		acqCache: newLRUCache[Resolution, *mvarray.TimeSeries](3),
	}
}

func (e *Engine) warnf(format string, args ...any) { e.opts.Warnf(format, args...) }

// Dataset is one resolved request: the calibrated or interpolated array
// plus the metadata needed to interpret it.
type Dataset struct {
	Array   *mvarray.Array
	AcqTime *mvarray.TimeSeries // per scanline, channels only
	Attrs   Attributes
}

// Attributes annotate every resolved dataset.
type Attributes struct {
	Platform          string
	Sensor            string
	RawMetadata       map[string]any
	OrbitalParameters OrbitalParameters

	// Set on reflectance datasets only.
	SunEarthDistanceCorrectionApplied bool
	SunEarthDistanceCorrectionFactor  float64
}

// Dataset resolves a request by name: channels are calibrated, angles
// interpolated from the tie-point grid, anything else passed through.
func (e *Engine) Dataset(name string, res Resolution, level Calibration) (*Dataset, error) {
	var (
		ds  *Dataset
		err error
	)
	switch {
	case IsChannel(name):
		ds, err = e.Channel(Channel(name), res, level)
	case IsAngle(name):
		var arr *mvarray.Array
		arr, err = e.Angles(name, res)
		if err == nil {
			ds = &Dataset{Array: arr}
		}
	default:
		ds, err = e.otherDataset(name)
	}
	if err != nil {
		return nil, err
	}
	e.annotate(ds)
	return ds, nil
}

// Channel calibrates one channel to the requested level and attaches the
// per-scanline acquisition time.
func (e *Engine) Channel(ch Channel, res Resolution, level Calibration) (*Dataset, error) {
	raw, ok := e.scene.Channels[ch]
	if !ok {
		return nil, fmt.Errorf("channel %s not present in scene", ch)
	}
	arr, err := e.calibrate(raw, ch, level)
	if err != nil {
		return nil, err
	}
	if ch == ChannelVIS {
		if mask := e.scene.QualityPixelBitmask; mask != nil {
			if e.opts.MaskBadQuality {
				arr = applyQualityMask(arr, mask)
			} else {
				e.checkVISQuality(mask)
			}
		}
	}
	acq, err := e.AcqTime(res)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{Array: arr, AcqTime: acq}
	if level == CalReflectance {
		e.markReflectance(ds)
	}
	return ds, nil
}

// Angles interpolates a tie-point angle grid to the requested
// resolution. Results are memoized per (name, resolution).
func (e *Engine) Angles(name string, res Resolution) (*mvarray.Array, error) {
	key := angleKey{name: name, res: res}
	if cached, ok := e.angleCache.get(key); ok {
		return cached, nil
	}
	coarse, ok := e.scene.Angles[name]
	if !ok {
		return nil, fmt.Errorf("angle dataset %q not present in scene", name)
	}
	targetX, targetY := e.scene.TargetCoords(res)
	fine, err := interp.Tiepoints(coarse, targetX, targetY)
	if err != nil {
		return nil, fmt.Errorf("interpolate %s: %w", name, err)
	}
	e.angleCache.put(key, fine)
	return fine, nil
}

// AcqTime returns the per-scanline acquisition time for a resolution
// class. The file provides per-pixel timestamps on the low resolution
// grid only; they are averaged per line and, for the high resolution
// grid, repeated in y as advised by the PUG. Results are memoized per
// resolution.
//
// The timestamps do not increase monotonically with the line number.
func (e *Engine) AcqTime(res Resolution) (*mvarray.TimeSeries, error) {
	if cached, ok := e.acqCache.get(res); ok {
		return cached, nil
	}
	if e.scene.Time == nil {
		return nil, &MissingAuxiliaryDataError{Name: "time"}
	}
	series := interp.MeanScanlineTime(e.scene.Time)
	_, targetY := e.scene.TargetCoords(res)
	series, err := interp.UpsampleScanlineTime(series, targetY)
	if err != nil {
		return nil, fmt.Errorf("upsample acquisition time: %w", err)
	}
	e.acqCache.put(res, series)
	return series, nil
}

// otherDataset passes through datasets such as uncertainties. Stored
// reflectance uncertainties are converted to percent.
func (e *Engine) otherDataset(name string) (*Dataset, error) {
	arr, ok := e.scene.Other[name]
	if !ok {
		return nil, fmt.Errorf("dataset %q not present in scene", name)
	}
	out := arr.Clone("")
	ds := &Dataset{Array: out}
	if otherReflectances[name] {
		out.Scale(100)
		e.markReflectance(ds)
	}
	return ds, nil
}

func (e *Engine) markReflectance(ds *Dataset) {
	ds.Attrs.SunEarthDistanceCorrectionApplied = true
	if d, ok := e.scene.Coefficients["distance_sun_earth"]; ok {
		ds.Attrs.SunEarthDistanceCorrectionFactor = d
	}
}

func (e *Engine) annotate(ds *Dataset) {
	ds.Attrs.Platform = e.scene.Platform
	ds.Attrs.Sensor = e.scene.Sensor
	ds.Attrs.RawMetadata = e.scene.Attrs
	ds.Attrs.OrbitalParameters = e.OrbitalParameters()
}

// AreaDefinition builds the geostationary area for a resolution class.
// Cheap pure function; computed per call, not cached.
func (e *Engine) AreaDefinition(res Resolution) *geos.AreaDefinition {
	return geos.BuildArea(res == ResolutionHigh, e.scene.ImageSize(res), e.scene.ProjectionLongitude)
}
