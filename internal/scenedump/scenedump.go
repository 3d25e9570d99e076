// Package scenedump loads a scene dump: a JSON export of the in-memory
// arrays and scalar metadata the calibration engine consumes. Producing
// the dump from the original netCDF files is the job of an external
// tool; this package is the collaborator boundary, not a file format
// reader.
package scenedump

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meteosat-archive/mviri-fcdr/internal/fcdr"
	"github.com/meteosat-archive/mviri-fcdr/internal/mvarray"
)

// MaxFileSize guards against loading unreasonably large dumps.
const MaxFileSize = 1 << 30

// Grid is one serialized labeled array.
type Grid struct {
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
	Data []float32 `json:"data"`
}

// MaskGrid is the serialized quality bitmask.
type MaskGrid struct {
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
	Data []uint8   `json:"data"`
}

// TimeGridDump is the serialized per-pixel acquisition time grid,
// seconds since the Unix epoch.
type TimeGridDump struct {
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
	Data []float64 `json:"data"`
}

// File is the on-disk scene dump layout.
type File struct {
	Variant             string             `json:"variant"`
	Platform            string             `json:"platform"`
	Sensor              string             `json:"sensor"`
	ProjectionLongitude float64            `json:"projection_longitude"`
	Coefficients        map[string]float64 `json:"coefficients"`
	Attrs               map[string]any     `json:"attrs,omitempty"`

	XHigh []float64 `json:"x"`
	YHigh []float64 `json:"y"`
	XLow  []float64 `json:"x_ir_wv"`
	YLow  []float64 `json:"y_ir_wv"`

	Channels map[string]Grid `json:"channels"`
	Angles   map[string]Grid `json:"angles,omitempty"`
	Other    map[string]Grid `json:"other,omitempty"`

	QualityPixelBitmask *MaskGrid     `json:"quality_pixel_bitmask,omitempty"`
	Time                *TimeGridDump `json:"time,omitempty"`

	SubSatelliteLonStart *float64 `json:"sub_satellite_longitude_start,omitempty"`
	SubSatelliteLonEnd   *float64 `json:"sub_satellite_longitude_end,omitempty"`
	SubSatelliteLatStart *float64 `json:"sub_satellite_latitude_start,omitempty"`
	SubSatelliteLatEnd   *float64 `json:"sub_satellite_latitude_end,omitempty"`
}

// Load reads and validates a scene dump and converts it to the engine's
// scene representation.
func Load(path string) (*fcdr.Scene, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("scene dump must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat scene dump: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("scene dump %s exceeds %d bytes", cleanPath, MaxFileSize)
	}
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read scene dump: %w", err)
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scene dump %s: %w", cleanPath, err)
	}
	return f.Scene()
}

// Scene validates the dump and builds the engine scene.
func (f *File) Scene() (*fcdr.Scene, error) {
	variant, err := fcdr.ParseVariant(f.Variant)
	if err != nil {
		return nil, err
	}
	if len(f.XHigh) == 0 || len(f.YHigh) == 0 {
		return nil, fmt.Errorf("scene dump has no high resolution coordinates")
	}

	s := &fcdr.Scene{
		Variant:              variant,
		Platform:             f.Platform,
		Sensor:               f.Sensor,
		ProjectionLongitude:  f.ProjectionLongitude,
		Coefficients:         f.Coefficients,
		Attrs:                f.Attrs,
		Channels:             map[fcdr.Channel]*mvarray.Array{},
		Angles:               map[string]*mvarray.Array{},
		Other:                map[string]*mvarray.Array{},
		XHigh:                f.XHigh,
		YHigh:                f.YHigh,
		XLow:                 f.XLow,
		YLow:                 f.YLow,
		SubSatelliteLonStart: f.SubSatelliteLonStart,
		SubSatelliteLonEnd:   f.SubSatelliteLonEnd,
		SubSatelliteLatStart: f.SubSatelliteLatStart,
		SubSatelliteLatEnd:   f.SubSatelliteLatEnd,
	}
	if s.Coefficients == nil {
		s.Coefficients = map[string]float64{}
	}

	for name, g := range f.Channels {
		if !fcdr.IsChannel(name) {
			return nil, fmt.Errorf("unknown channel %q in scene dump", name)
		}
		arr, err := toArray(name, g)
		if err != nil {
			return nil, err
		}
		s.Channels[fcdr.Channel(name)] = arr
	}
	for name, g := range f.Angles {
		arr, err := toArray(name, g)
		if err != nil {
			return nil, err
		}
		s.Angles[name] = arr
	}
	for name, g := range f.Other {
		arr, err := toArray(name, g)
		if err != nil {
			return nil, err
		}
		s.Other[name] = arr
	}

	if m := f.QualityPixelBitmask; m != nil {
		if len(m.Data) != len(m.X)*len(m.Y) {
			return nil, fmt.Errorf("quality_pixel_bitmask: %d values for a %dx%d grid",
				len(m.Data), len(m.X), len(m.Y))
		}
		s.QualityPixelBitmask = &mvarray.Bitmask{
			Name: "quality_pixel_bitmask",
			Data: m.Data,
			X:    m.X,
			Y:    m.Y,
		}
	}
	if tg := f.Time; tg != nil {
		if len(tg.Data) != len(tg.X)*len(tg.Y) {
			return nil, fmt.Errorf("time: %d values for a %dx%d grid", len(tg.Data), len(tg.X), len(tg.Y))
		}
		s.Time = &mvarray.TimeGrid{Name: "time", Data: tg.Data, X: tg.X, Y: tg.Y}
	}
	return s, nil
}

func toArray(name string, g Grid) (*mvarray.Array, error) {
	if len(g.Data) != len(g.X)*len(g.Y) {
		return nil, fmt.Errorf("%s: %d values for a %dx%d grid", name, len(g.Data), len(g.X), len(g.Y))
	}
	return &mvarray.Array{Name: name, Data: g.Data, X: g.X, Y: g.Y}, nil
}
