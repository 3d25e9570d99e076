// Package api exposes calibrated MVIRI datasets and scene metadata over
// HTTP for inspection and archive tooling.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"sort"
	"sync"

	"github.com/meteosat-archive/mviri-fcdr/internal/fcdr"
	"github.com/meteosat-archive/mviri-fcdr/internal/store"
)

// Server serves loaded scenes and the run catalog.
type Server struct {
	db *store.DB

	mu      sync.RWMutex
	engines map[string]*fcdr.Engine
}

func NewServer(db *store.DB) *Server {
	return &Server{
		db:      db,
		engines: make(map[string]*fcdr.Engine),
	}
}

// AddScene registers a loaded scene's engine under its catalog id.
func (s *Server) AddScene(sceneID string, engine *fcdr.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engines[sceneID] = engine
}

func (s *Server) engine(sceneID string) (*fcdr.Engine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.engines[sceneID]
	return e, ok
}

// SceneIDs returns the ids of all loaded scenes, sorted.
func (s *Server) SceneIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.engines))
	for id := range s.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Routes registers all handlers on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/dataset", s.handleDataset)
	mux.HandleFunc("/api/orbital_parameters", s.handleOrbitalParameters)
	mux.HandleFunc("/api/area", s.handleArea)
	mux.HandleFunc("/debug/quicklook", s.handleQuicklook)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := s.db.Scenes()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if scenes == nil {
		scenes = []store.SceneRecord{}
	}
	s.writeJSON(w, scenes)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	sceneID := r.URL.Query().Get("scene")
	if sceneID == "" {
		s.writeJSONError(w, http.StatusBadRequest, "missing scene parameter")
		return
	}
	runs, err := s.db.Runs(sceneID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}
	s.writeJSON(w, runs)
}

// datasetRequest reads the common scene/name/resolution/calibration
// query parameters.
func (s *Server) datasetRequest(w http.ResponseWriter, r *http.Request) (*fcdr.Engine, string, fcdr.Resolution, fcdr.Calibration, bool) {
	q := r.URL.Query()
	sceneID := q.Get("scene")
	engine, ok := s.engine(sceneID)
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("scene %q not loaded", sceneID))
		return nil, "", 0, "", false
	}
	name := q.Get("name")
	if name == "" {
		s.writeJSONError(w, http.StatusBadRequest, "missing name parameter")
		return nil, "", 0, "", false
	}
	var res fcdr.Resolution
	switch q.Get("resolution") {
	case "", "high":
		res = fcdr.ResolutionHigh
	case "low":
		res = fcdr.ResolutionLow
	default:
		s.writeJSONError(w, http.StatusBadRequest, "resolution must be high or low")
		return nil, "", 0, "", false
	}
	return engine, name, res, fcdr.Calibration(q.Get("calibration")), true
}

// DatasetSummary is the JSON shape of a resolved dataset: per-image
// statistics rather than the full pixel payload.
type DatasetSummary struct {
	Name         string                 `json:"name"`
	Width        int                    `json:"width"`
	Height       int                    `json:"height"`
	ValidPixels  int64                  `json:"valid_pixels"`
	MaskedPixels int64                  `json:"masked_pixels"`
	Min          float64                `json:"min"`
	Max          float64                `json:"max"`
	Mean         float64                `json:"mean"`
	Platform     string                 `json:"platform"`
	Sensor       string                 `json:"sensor"`
	Orbital      fcdr.OrbitalParameters `json:"orbital_parameters"`
	AcqTimeFirst *float64               `json:"acq_time_first,omitempty"`
	AcqTimeLast  *float64               `json:"acq_time_last,omitempty"`
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	engine, name, res, cal, ok := s.datasetRequest(w, r)
	if !ok {
		return
	}
	ds, err := engine.Dataset(name, res, cal)
	if err != nil {
		s.writeJSONError(w, httpStatusForError(err), err.Error())
		return
	}
	s.writeJSON(w, summarize(ds))
}

func httpStatusForError(err error) int {
	var invalid *fcdr.InvalidCalibrationError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func summarize(ds *fcdr.Dataset) DatasetSummary {
	arr := ds.Array
	sum := DatasetSummary{
		Name:     arr.Name,
		Width:    arr.Width(),
		Height:   arr.Height(),
		Min:      math.Inf(1),
		Max:      math.Inf(-1),
		Platform: ds.Attrs.Platform,
		Sensor:   ds.Attrs.Sensor,
		Orbital:  ds.Attrs.OrbitalParameters,
	}
	var total float64
	for _, v := range arr.Data {
		f := float64(v)
		if math.IsNaN(f) {
			sum.MaskedPixels++
			continue
		}
		sum.ValidPixels++
		total += f
		if f < sum.Min {
			sum.Min = f
		}
		if f > sum.Max {
			sum.Max = f
		}
	}
	if sum.ValidPixels > 0 {
		sum.Mean = total / float64(sum.ValidPixels)
	} else {
		sum.Min, sum.Max = 0, 0
	}
	if ds.AcqTime != nil && len(ds.AcqTime.Data) > 0 {
		first := ds.AcqTime.Data[0]
		last := ds.AcqTime.Data[len(ds.AcqTime.Data)-1]
		sum.AcqTimeFirst = &first
		sum.AcqTimeLast = &last
	}
	return sum
}

func (s *Server) handleOrbitalParameters(w http.ResponseWriter, r *http.Request) {
	sceneID := r.URL.Query().Get("scene")
	engine, ok := s.engine(sceneID)
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("scene %q not loaded", sceneID))
		return
	}
	s.writeJSON(w, engine.OrbitalParameters())
}

type areaResponse struct {
	ID     string     `json:"id"`
	SSPLon float64    `json:"ssp_lon"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Extent [4]float64 `json:"extent"`
}

func (s *Server) handleArea(w http.ResponseWriter, r *http.Request) {
	sceneID := r.URL.Query().Get("scene")
	engine, ok := s.engine(sceneID)
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("scene %q not loaded", sceneID))
		return
	}
	res := fcdr.ResolutionHigh
	if r.URL.Query().Get("resolution") == "low" {
		res = fcdr.ResolutionLow
	}
	area := engine.AreaDefinition(res)
	s.writeJSON(w, areaResponse{
		ID:     area.ID,
		SSPLon: area.SSPLon,
		Width:  area.Width,
		Height: area.Height,
		Extent: area.Extent,
	})
}
