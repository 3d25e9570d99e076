// Package store keeps a catalog of processed scenes and calibration
// runs in a local sqlite database, so repeated processing of an archive
// can be audited and resumed.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// NewDB opens (and if needed bootstraps) the catalog database at path.
// Use ":memory:" for an ephemeral catalog.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scenes (
			scene_id          TEXT PRIMARY KEY,
			platform          TEXT,
			sensor            TEXT,
			variant           TEXT,
			projection_longitude DOUBLE,
			source            TEXT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS calibration_runs (
			run_id            TEXT PRIMARY KEY,
			scene_id          TEXT,
			dataset           TEXT,
			resolution        TEXT,
			calibration       TEXT,
			valid_pixels      BIGINT,
			masked_pixels     BIGINT,
			min_value         DOUBLE,
			max_value         DOUBLE,
			duration_ms       BIGINT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &DB{db}, nil
}

// SceneRecord describes one registered scene.
type SceneRecord struct {
	SceneID             string  `json:"scene_id"`
	Platform            string  `json:"platform"`
	Sensor              string  `json:"sensor"`
	Variant             string  `json:"variant"`
	ProjectionLongitude float64 `json:"projection_longitude"`
	Source              string  `json:"source"`
}

// RunRecord describes one calibration run over a scene dataset.
type RunRecord struct {
	RunID        string  `json:"run_id"`
	SceneID      string  `json:"scene_id"`
	Dataset      string  `json:"dataset"`
	Resolution   string  `json:"resolution"`
	Calibration  string  `json:"calibration"`
	ValidPixels  int64   `json:"valid_pixels"`
	MaskedPixels int64   `json:"masked_pixels"`
	MinValue     float64 `json:"min_value"`
	MaxValue     float64 `json:"max_value"`
	Duration     time.Duration
}

// RegisterScene inserts a scene and returns its generated id.
func (db *DB) RegisterScene(rec SceneRecord) (string, error) {
	if rec.SceneID == "" {
		rec.SceneID = uuid.NewString()
	}
	_, err := db.Exec(
		`INSERT INTO scenes (scene_id, platform, sensor, variant, projection_longitude, source)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SceneID, rec.Platform, rec.Sensor, rec.Variant, rec.ProjectionLongitude, rec.Source,
	)
	if err != nil {
		return "", fmt.Errorf("failed to register scene: %w", err)
	}
	return rec.SceneID, nil
}

// RecordRun inserts a calibration run and returns its generated id.
func (db *DB) RecordRun(rec RunRecord) (string, error) {
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	_, err := db.Exec(
		`INSERT INTO calibration_runs
		 (run_id, scene_id, dataset, resolution, calibration, valid_pixels, masked_pixels, min_value, max_value, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.SceneID, rec.Dataset, rec.Resolution, rec.Calibration,
		rec.ValidPixels, rec.MaskedPixels, rec.MinValue, rec.MaxValue, rec.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record calibration run: %w", err)
	}
	return rec.RunID, nil
}

// Runs returns the calibration runs for a scene, newest first.
func (db *DB) Runs(sceneID string) ([]RunRecord, error) {
	rows, err := db.Query(
		`SELECT run_id, scene_id, dataset, resolution, calibration, valid_pixels, masked_pixels, min_value, max_value, duration_ms
		 FROM calibration_runs WHERE scene_id = ? ORDER BY timestamp DESC`,
		sceneID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var durationMS int64
		if err := rows.Scan(&rec.RunID, &rec.SceneID, &rec.Dataset, &rec.Resolution,
			&rec.Calibration, &rec.ValidPixels, &rec.MaskedPixels,
			&rec.MinValue, &rec.MaxValue, &durationMS); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Scenes returns all registered scenes, newest first.
func (db *DB) Scenes() ([]SceneRecord, error) {
	rows, err := db.Query(
		`SELECT scene_id, platform, sensor, variant, projection_longitude, source
		 FROM scenes ORDER BY timestamp DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SceneRecord
	for rows.Next() {
		var rec SceneRecord
		if err := rows.Scan(&rec.SceneID, &rec.Platform, &rec.Sensor, &rec.Variant,
			&rec.ProjectionLongitude, &rec.Source); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
