package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-data/vocc/internal/grid"
)

// Run is the persisted record of one pipeline execution.
type Run struct {
	RunID            string  `json:"run_id"`
	CreatedUnixNanos int64   `json:"created_unix_nanos"`
	Rows             int     `json:"rows"`
	Cols             int     `json:"cols"`
	OriginX          float64 `json:"origin_x"`
	OriginY          float64 `json:"origin_y"`
	DX               float64 `json:"dx"`
	DY               float64 `json:"dy"`
	Projected        bool    `json:"projected"`
	WrapX            bool    `json:"wrap_x"`
	ParamsJSON       string  `json:"params_json"`
	Notes            string  `json:"notes,omitempty"`
}

// RunStore provides persistence for pipeline runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// NewRunFromGrid builds a Run record describing the grid a pipeline ran
// over. paramsJSON should be the serialized tuning parameters.
func NewRunFromGrid(g *grid.Grid, paramsJSON, notes string) *Run {
	return &Run{
		RunID:            uuid.New().String(),
		CreatedUnixNanos: time.Now().UnixNano(),
		Rows:             g.Rows,
		Cols:             g.Cols,
		OriginX:          g.OriginX,
		OriginY:          g.OriginY,
		DX:               g.DX,
		DY:               g.DY,
		Projected:        g.Projected,
		WrapX:            g.WrapX,
		ParamsJSON:       paramsJSON,
		Notes:            notes,
	}
}

// Insert creates a new run record. If run.RunID is empty a new UUID is
// generated.
func (s *RunStore) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedUnixNanos == 0 {
		run.CreatedUnixNanos = time.Now().UnixNano()
	}
	if run.ParamsJSON == "" {
		run.ParamsJSON = "{}"
	}

	query := `
		INSERT INTO runs (
			run_id, created_unix_nanos, rows, cols,
			origin_x, origin_y, dx, dy, projected, wrap_x,
			params_json, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.RunID,
		run.CreatedUnixNanos,
		run.Rows,
		run.Cols,
		run.OriginX,
		run.OriginY,
		run.DX,
		run.DY,
		run.Projected,
		run.WrapX,
		run.ParamsJSON,
		nullString(run.Notes),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Get returns a run by ID.
func (s *RunStore) Get(runID string) (*Run, error) {
	query := `
		SELECT run_id, created_unix_nanos, rows, cols,
		       origin_x, origin_y, dx, dy, projected, wrap_x,
		       params_json, notes
		FROM runs
		WHERE run_id = ?
	`

	r := &Run{}
	var notes sql.NullString
	err := s.db.QueryRow(query, runID).Scan(
		&r.RunID, &r.CreatedUnixNanos, &r.Rows, &r.Cols,
		&r.OriginX, &r.OriginY, &r.DX, &r.DY, &r.Projected, &r.WrapX,
		&r.ParamsJSON, &notes,
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if notes.Valid {
		r.Notes = notes.String
	}
	return r, nil
}

// List returns all runs, most recent first.
func (s *RunStore) List() ([]*Run, error) {
	query := `
		SELECT run_id, created_unix_nanos, rows, cols,
		       origin_x, origin_y, dx, dy, projected, wrap_x,
		       params_json, notes
		FROM runs
		ORDER BY created_unix_nanos DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		var notes sql.NullString
		err := rows.Scan(
			&r.RunID, &r.CreatedUnixNanos, &r.Rows, &r.Cols,
			&r.OriginX, &r.OriginY, &r.DX, &r.DY, &r.Projected, &r.WrapX,
			&r.ParamsJSON, &notes,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if notes.Valid {
			r.Notes = notes.String
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Delete removes a run and, via cascade, its layers and trajectories.
func (s *RunStore) Delete(runID string) error {
	if _, err := s.db.Exec(`DELETE FROM runs WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

// nullString converts an empty string to a NULL-able value.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
