package scenedump

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/meteosat-archive/mviri-fcdr/internal/fcdr"
)

func writeDump(t *testing.T, f *File) string {
	t.Helper()
	raw, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal dump: %v", err)
	}
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	return path
}

func minimalDump() *File {
	return &File{
		Variant:             "full",
		Platform:            "MET7",
		Sensor:              "MVIRI",
		ProjectionLongitude: 57.0,
		Coefficients:        map[string]float64{"a_ir": -10, "b_ir": 0.5},
		XHigh:               []float64{0, 1},
		YHigh:               []float64{0, 1},
		XLow:                []float64{0},
		YLow:                []float64{0},
		Channels: map[string]Grid{
			"IR": {X: []float64{0}, Y: []float64{0}, Data: []float32{100}},
		},
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := writeDump(t, minimalDump())
	scene, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if scene.Variant != fcdr.VariantFull {
		t.Fatalf("variant = %v, want full", scene.Variant)
	}
	ir, ok := scene.Channels[fcdr.ChannelIR]
	if !ok {
		t.Fatalf("IR channel missing after load")
	}
	if ir.Data[0] != 100 {
		t.Fatalf("IR counts = %v, want 100", ir.Data[0])
	}
	if scene.ProjectionLongitude != 57.0 {
		t.Fatalf("projection longitude = %v", scene.ProjectionLongitude)
	}
}

func TestLoadRejectsNonJSON(t *testing.T) {
	if _, err := Load("scene.nc"); err == nil {
		t.Fatalf("expected error for non-json extension")
	}
}

func TestSceneRejectsBadShape(t *testing.T) {
	f := minimalDump()
	f.Channels["IR"] = Grid{X: []float64{0, 1}, Y: []float64{0}, Data: []float32{1}}
	if _, err := f.Scene(); err == nil {
		t.Fatalf("expected error for mismatched data length")
	}
}

func TestSceneRejectsUnknownChannel(t *testing.T) {
	f := minimalDump()
	f.Channels["HRV"] = Grid{X: []float64{0}, Y: []float64{0}, Data: []float32{1}}
	if _, err := f.Scene(); err == nil {
		t.Fatalf("expected error for unknown channel name")
	}
}

func TestSceneRejectsUnknownVariant(t *testing.T) {
	f := minimalDump()
	f.Variant = "medium"
	if _, err := f.Scene(); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}
