package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meteosat-archive/mviri-fcdr/internal/fcdr"
	"github.com/meteosat-archive/mviri-fcdr/internal/mvarray"
	"github.com/meteosat-archive/mviri-fcdr/internal/store"
)

func coords(n int) []float64 {
	c := make([]float64, n)
	for i := range c {
		c[i] = float64(i)
	}
	return c
}

func testScene() *fcdr.Scene {
	xHigh, yHigh := coords(4), coords(4)
	xLow, yLow := coords(2), coords(2)

	ir := mvarray.New("IR", xLow, yLow)
	for i := range ir.Data {
		ir.Data[i] = float32(100 + 10*i)
	}
	vis := mvarray.New("VIS", xHigh, yHigh)
	for i := range vis.Data {
		vis.Data[i] = float32(50 + i)
	}

	angles := map[string]*mvarray.Array{}
	for _, name := range fcdr.AngleNames {
		a := mvarray.New(name, coords(2), coords(2))
		for i := range a.Data {
			a.Data[i] = 30
		}
		angles[name] = a
	}

	return &fcdr.Scene{
		Variant:             fcdr.VariantFull,
		Platform:            "MET7",
		Sensor:              "MVIRI",
		ProjectionLongitude: 57.0,
		Coefficients: map[string]float64{
			"a_ir": -10, "b_ir": 0.5, "bt_a_ir": -2, "bt_b_ir": 1300,
			"a_wv": -1, "b_wv": 0.2, "bt_a_wv": -1.5, "bt_b_wv": 1200,
			"a0_vis": 2, "a1_vis": 0, "a2_vis": 0,
			"mean_count_space_vis": 40,
			"years_since_launch":   5,
			"distance_sun_earth":   1,
			"solar_irradiance_vis": 690,
		},
		Channels: map[fcdr.Channel]*mvarray.Array{fcdr.ChannelIR: ir, fcdr.ChannelVIS: vis},
		Angles:   angles,
		Time: &mvarray.TimeGrid{
			Name: "time",
			Data: []float64{100, 100, 200, 200},
			X:    xLow,
			Y:    yLow,
		},
		XHigh: xHigh, YHigh: yHigh,
		XLow: xLow, YLow: yLow,
	}
}

func setupServer(t *testing.T) (*Server, string) {
	t.Helper()
	db, err := store.NewDB(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sceneID, err := db.RegisterScene(store.SceneRecord{
		Platform: "MET7", Sensor: "MVIRI", Variant: "full", ProjectionLongitude: 57.0,
	})
	if err != nil {
		t.Fatalf("RegisterScene failed: %v", err)
	}

	srv := NewServer(db)
	engine := fcdr.New(testScene(), fcdr.Options{Warnf: func(string, ...any) {}})
	srv.AddScene(sceneID, engine)
	return srv, sceneID
}

func doRequest(t *testing.T, srv *Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	srv.Routes(mux)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleDataset(t *testing.T) {
	srv, sceneID := setupServer(t)
	rec := doRequest(t, srv, "/api/dataset?scene="+sceneID+"&name=IR&resolution=low&calibration=radiance")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var sum DatasetSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("bad JSON response: %v", err)
	}
	if sum.Width != 2 || sum.Height != 2 {
		t.Fatalf("summary size = %dx%d, want 2x2", sum.Width, sum.Height)
	}
	// counts 100..130 with a=-10 b=0.5 -> radiance 40..55
	if sum.Min != 40 || sum.Max != 55 {
		t.Fatalf("summary min/max = %v/%v, want 40/55", sum.Min, sum.Max)
	}
	if sum.Platform != "MET7" {
		t.Fatalf("platform = %q", sum.Platform)
	}
	if sum.AcqTimeFirst == nil || *sum.AcqTimeFirst != 100 {
		t.Fatalf("acq time not attached: %+v", sum)
	}
}

func TestHandleDatasetInvalidCalibration(t *testing.T) {
	srv, sceneID := setupServer(t)
	rec := doRequest(t, srv, "/api/dataset?scene="+sceneID+"&name=IR&resolution=low&calibration=reflectance")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}
}

func TestHandleDatasetUnknownScene(t *testing.T) {
	srv, _ := setupServer(t)
	rec := doRequest(t, srv, "/api/dataset?scene=nope&name=IR")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleScenesAndRuns(t *testing.T) {
	srv, sceneID := setupServer(t)

	rec := doRequest(t, srv, "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var scenes []store.SceneRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &scenes); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(scenes) != 1 || scenes[0].SceneID != sceneID {
		t.Fatalf("unexpected scenes: %+v", scenes)
	}

	rec = doRequest(t, srv, "/api/runs?scene="+sceneID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "[") {
		t.Fatalf("runs must be a JSON array, got %s", rec.Body.String())
	}
}

func TestHandleOrbitalParameters(t *testing.T) {
	srv, sceneID := setupServer(t)
	rec := doRequest(t, srv, "/api/orbital_parameters?scene="+sceneID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var op fcdr.OrbitalParameters
	if err := json.Unmarshal(rec.Body.Bytes(), &op); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if op.ProjectionLongitude != 57.0 {
		t.Fatalf("projection longitude = %v", op.ProjectionLongitude)
	}
	if op.ActualLongitude != nil {
		t.Fatalf("actual longitude must be omitted without samples")
	}
}

func TestHandleArea(t *testing.T) {
	srv, sceneID := setupServer(t)
	rec := doRequest(t, srv, "/api/area?scene="+sceneID+"&resolution=low")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var area areaResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &area); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if area.ID != "geos_mviri_ir_wv" || area.Width != 2 {
		t.Fatalf("unexpected area: %+v", area)
	}
}

func TestHandleQuicklook(t *testing.T) {
	srv, sceneID := setupServer(t)
	rec := doRequest(t, srv, "/debug/quicklook?scene="+sceneID+"&name=IR&resolution=low&calibration=radiance")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("content type = %q, want html", ct)
	}
	if !strings.Contains(rec.Body.String(), "echarts") {
		t.Fatalf("quicklook must embed an echarts chart")
	}
}
