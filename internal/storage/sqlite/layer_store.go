package sqlite

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/gob"
	"fmt"
	"time"
)

// LayerRecord is a named per-cell scalar layer belonging to a run. The
// cell values travel as a gob-encoded, gzip-compressed blob; NaN marks
// no-data cells and survives the round trip.
type LayerRecord struct {
	LayerID          *int64 // set by database after insert
	RunID            string
	Name             string // layer name, e.g. "Grad", "Ang", "TrajClas"
	Rows             int
	Cols             int
	Values           []float64
	CreatedUnixNanos int64
}

// LayerStore provides persistence for run output layers.
type LayerStore struct {
	db *sql.DB
}

// NewLayerStore creates a new LayerStore.
func NewLayerStore(db *sql.DB) *LayerStore {
	return &LayerStore{db: db}
}

// Insert writes a layer record. Values length must equal Rows*Cols.
func (s *LayerStore) Insert(rec *LayerRecord) error {
	if len(rec.Values) != rec.Rows*rec.Cols {
		return fmt.Errorf("insert layer %q: %d values for %dx%d grid",
			rec.Name, len(rec.Values), rec.Rows, rec.Cols)
	}
	if rec.CreatedUnixNanos == 0 {
		rec.CreatedUnixNanos = time.Now().UnixNano()
	}

	blob, err := serializeValues(rec.Values)
	if err != nil {
		return fmt.Errorf("serialize layer %q: %w", rec.Name, err)
	}

	query := `
		INSERT INTO run_layers (
			run_id, name, rows, cols, values_blob, created_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := s.db.Exec(query,
		rec.RunID, rec.Name, rec.Rows, rec.Cols, blob, rec.CreatedUnixNanos)
	if err != nil {
		return fmt.Errorf("insert layer %q: %w", rec.Name, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.LayerID = &id
	}
	return nil
}

// Get returns a named layer of a run.
func (s *LayerStore) Get(runID, name string) (*LayerRecord, error) {
	query := `
		SELECT layer_id, run_id, name, rows, cols, values_blob, created_unix_nanos
		FROM run_layers
		WHERE run_id = ? AND name = ?
	`

	rec := &LayerRecord{}
	var layerID int64
	var blob []byte
	err := s.db.QueryRow(query, runID, name).Scan(
		&layerID, &rec.RunID, &rec.Name, &rec.Rows, &rec.Cols, &blob, &rec.CreatedUnixNanos)
	if err != nil {
		return nil, fmt.Errorf("get layer %q: %w", name, err)
	}
	rec.LayerID = &layerID

	rec.Values, err = deserializeValues(blob)
	if err != nil {
		return nil, fmt.Errorf("deserialize layer %q: %w", name, err)
	}
	if len(rec.Values) != rec.Rows*rec.Cols {
		return nil, fmt.Errorf("layer %q blob holds %d values for %dx%d grid",
			name, len(rec.Values), rec.Rows, rec.Cols)
	}
	return rec, nil
}

// ListNames returns the layer names stored for a run.
func (s *LayerStore) ListNames(runID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT name FROM run_layers WHERE run_id = ? ORDER BY name`, runID)
	if err != nil {
		return nil, fmt.Errorf("list layer names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan layer name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// serializeValues compresses cell values using gob encoding and gzip.
func serializeValues(values []float64) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(values); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializeValues reverses serializeValues.
func deserializeValues(blob []byte) ([]float64, error) {
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	var values []float64
	if err := gob.NewDecoder(gz).Decode(&values); err != nil {
		return nil, err
	}
	return values, nil
}
