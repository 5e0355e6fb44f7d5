// Package pipeline sequences the climate velocity stages over immutable
// layers: trend and mean state from the raw series, spatial gradient,
// velocity combination, trajectory integration, and flow-topology
// classification. Each stage fully computes its output before the next
// stage reads it; no stage mutates a layer it did not produce.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-data/vocc/internal/flowtopo"
	"github.com/meridian-data/vocc/internal/grid"
	"github.com/meridian-data/vocc/internal/monitoring"
	"github.com/meridian-data/vocc/internal/trajectory"
	"github.com/meridian-data/vocc/internal/velocity"
)

// Params is the flat configuration for a full pipeline run.
type Params struct {
	// MinObservations gates the per-cell trend regression.
	MinObservations int
	// GradLowerThreshold clamps near-zero gradient magnitudes.
	GradLowerThreshold float64
	// Projected disables latitude distance correction.
	Projected bool
	// CorrectForConvergence enables the integrator's two-stage
	// displacement correction.
	CorrectForConvergence bool
	// Workers caps trajectory integration concurrency (0 = NumCPU).
	Workers int
	// Flow holds the classifier thresholds; Flow.Years is also the
	// integration horizon.
	Flow flowtopo.Config
}

// Validate rejects bad parameters before any stage runs.
func (p Params) Validate() error {
	if p.MinObservations < 0 {
		return fmt.Errorf("pipeline: negative min observations %d", p.MinObservations)
	}
	if p.GradLowerThreshold < 0 {
		return fmt.Errorf("pipeline: negative gradient lower threshold %g", p.GradLowerThreshold)
	}
	return p.Flow.Validate()
}

// Results bundles every layer a run produces.
type Results struct {
	Grid           *grid.Grid
	Mean           *grid.ScalarLayer
	Trend          *grid.ScalarLayer
	Gradient       *grid.VelocityField
	Velocity       *grid.VelocityField
	Trajectories   []trajectory.Trajectory
	Classification *flowtopo.Result
}

// Run executes the full pipeline over a time-series layer. Seeds may be
// nil for one trajectory per defined-velocity cell. The context bounds
// the trajectory stage, which is the long-running one.
func Run(ctx context.Context, series *grid.TimeSeriesLayer, seeds []trajectory.Point, p Params) (*Results, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if series == nil || series.Grid == nil {
		return nil, fmt.Errorf("pipeline: nil series layer")
	}

	start := time.Now()
	mean, err := velocity.MeanState(series)
	if err != nil {
		return nil, fmt.Errorf("pipeline mean state: %w", err)
	}
	trend, err := velocity.EstimateTrend(series, p.MinObservations)
	if err != nil {
		return nil, fmt.Errorf("pipeline trend: %w", err)
	}
	gradient, err := velocity.ComputeGradient(mean, p.GradLowerThreshold, p.Projected)
	if err != nil {
		return nil, fmt.Errorf("pipeline gradient: %w", err)
	}
	vel, err := velocity.Combine(trend, gradient)
	if err != nil {
		return nil, fmt.Errorf("pipeline combine: %w", err)
	}

	trajs, err := trajectory.Integrate(ctx, vel, mean, seeds, trajectory.Options{
		Years:                 p.Flow.Years,
		CorrectForConvergence: p.CorrectForConvergence,
		Workers:               p.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline trajectories: %w", err)
	}

	classification, err := flowtopo.Classify(trajs, vel, mean, p.Flow)
	if err != nil {
		return nil, fmt.Errorf("pipeline classify: %w", err)
	}

	monitoring.Logf("pipeline complete: grid=%dx%d trajectories=%d elapsed=%s",
		series.Grid.Rows, series.Grid.Cols, len(trajs), time.Since(start).Round(time.Millisecond))

	return &Results{
		Grid:           series.Grid,
		Mean:           mean,
		Trend:          trend,
		Gradient:       gradient,
		Velocity:       vel,
		Trajectories:   trajs,
		Classification: classification,
	}, nil
}

// Layers returns the named per-cell output layers aligned to the grid,
// for export collaborators.
func (r *Results) Layers() map[string][]float64 {
	out := map[string][]float64{
		"Trend":   r.Trend.Values,
		"Grad":    r.Gradient.Mag.Values,
		"Ang":     r.Gradient.Ang.Values,
		"Voc":     r.Velocity.Mag.Values,
		"VocAng":  r.Velocity.Ang.Values,
		"PropSt":  r.Classification.PropSt.Values,
		"PropEnd": r.Classification.PropEnd.Values,
		"PropFT":  r.Classification.PropFT.Values,
	}

	classes := make([]float64, len(r.Classification.Classes))
	for i, c := range r.Classification.Classes {
		classes[i] = float64(c)
	}
	out["TrajClas"] = classes

	moves := make([]float64, len(r.Classification.Movement))
	for i, m := range r.Classification.Movement {
		moves[i] = float64(m)
	}
	out["ClassL"] = moves

	return out
}
