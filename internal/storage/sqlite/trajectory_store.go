package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/meridian-data/vocc/internal/trajectory"
)

// TrajectoryStore provides persistence for trajectory paths.
type TrajectoryStore struct {
	db *sql.DB
}

// NewTrajectoryStore creates a new TrajectoryStore.
func NewTrajectoryStore(db *sql.DB) *TrajectoryStore {
	return &TrajectoryStore{db: db}
}

// trajPoint is the serializable form of a path point.
type trajPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InsertBatch writes the trajectory set of a run inside one
// transaction, preserving seed order through seed_idx.
func (s *TrajectoryStore) InsertBatch(runID string, trajs []trajectory.Trajectory) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("insert trajectories: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO run_trajectories (
			traj_id, run_id, seed_idx, seed_x, seed_y, points_json
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare trajectory insert: %w", err)
	}
	defer stmt.Close()

	for i, tr := range trajs {
		id := tr.ID
		if id == "" {
			id = uuid.New().String()
		}
		points := make([]trajPoint, len(tr.Points))
		for j, p := range tr.Points {
			points[j] = trajPoint{X: p.X, Y: p.Y}
		}
		pointsJSON, err := json.Marshal(points)
		if err != nil {
			return fmt.Errorf("marshal trajectory %d: %w", i, err)
		}
		if _, err := stmt.Exec(id, runID, i, tr.Seed.X, tr.Seed.Y, string(pointsJSON)); err != nil {
			return fmt.Errorf("insert trajectory %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit trajectories: %w", err)
	}
	return nil
}

// ListByRun returns a run's trajectories in seed order.
func (s *TrajectoryStore) ListByRun(runID string) ([]trajectory.Trajectory, error) {
	query := `
		SELECT traj_id, seed_x, seed_y, points_json
		FROM run_trajectories
		WHERE run_id = ?
		ORDER BY seed_idx
	`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("list trajectories: %w", err)
	}
	defer rows.Close()

	var trajs []trajectory.Trajectory
	for rows.Next() {
		var tr trajectory.Trajectory
		var pointsJSON string
		if err := rows.Scan(&tr.ID, &tr.Seed.X, &tr.Seed.Y, &pointsJSON); err != nil {
			return nil, fmt.Errorf("scan trajectory: %w", err)
		}
		var points []trajPoint
		if err := json.Unmarshal([]byte(pointsJSON), &points); err != nil {
			return nil, fmt.Errorf("unmarshal trajectory %s: %w", tr.ID, err)
		}
		tr.Points = make([]trajectory.Point, len(points))
		for j, p := range points {
			tr.Points[j] = trajectory.Point{X: p.X, Y: p.Y}
		}
		trajs = append(trajs, tr)
	}
	return trajs, rows.Err()
}

// CountByRun returns the number of stored trajectories for a run.
func (s *TrajectoryStore) CountByRun(runID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM run_trajectories WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count trajectories: %w", err)
	}
	return n, nil
}
