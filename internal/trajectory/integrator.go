package trajectory

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-data/vocc/internal/grid"
	"github.com/meridian-data/vocc/internal/units"
)

// Point is a continuous grid coordinate (lon/lat for unprojected
// grids).
type Point struct {
	X float64
	Y float64
}

// Trajectory is the immutable path of one advected particle. Points[0]
// is the seed position; the path ends at the step where the particle
// left the valid-data region or at the projection horizon.
type Trajectory struct {
	ID     string
	Seed   Point
	Points []Point
}

// Options configures trajectory integration.
type Options struct {
	// Years is the number of discrete annual steps.
	Years int
	// CorrectForConvergence enables the two-stage displacement
	// correction: the velocity resampled at the tentative end position
	// is averaged with the start velocity, damping the systematic
	// overshoot of repeated cell-constant sampling in strongly
	// convergent or divergent regions.
	CorrectForConvergence bool
	// Workers caps the number of concurrent integrations.
	// Zero means runtime.NumCPU().
	Workers int
}

// Integrate advects one particle per seed through the velocity field
// and returns the trajectories in seed order. A nil seed slice means
// one seed at the center of every cell where the field is defined.
// Seeds starting outside the valid-data region yield a single-point
// trajectory; that is a normal outcome, not an error.
//
// The mean-state layer defines the valid-data region: a particle
// terminates on entering a cell with no defined mean state.
func Integrate(ctx context.Context, field *grid.VelocityField, mean *grid.ScalarLayer, seeds []Point, opts Options) ([]Trajectory, error) {
	if field == nil || mean == nil {
		return nil, fmt.Errorf("integrate: nil input")
	}
	if err := field.Check(); err != nil {
		return nil, fmt.Errorf("integrate: %w", err)
	}
	if err := mean.CheckAligned(field.Mag); err != nil {
		return nil, fmt.Errorf("integrate: %w", err)
	}
	if opts.Years <= 0 {
		return nil, fmt.Errorf("integrate: years must be positive, got %d", opts.Years)
	}

	g := field.Grid()
	if seeds == nil {
		seeds = DefaultSeeds(field)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]Trajectory, len(seeds))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, seed := range seeds {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = integrateOne(g, field, mean, seed, opts)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("integrate: %w", err)
	}
	return out, nil
}

// DefaultSeeds returns one seed at the center of every cell where the
// velocity field is defined.
func DefaultSeeds(field *grid.VelocityField) []Point {
	g := field.Grid()
	var seeds []Point
	for idx := 0; idx < g.CellCount(); idx++ {
		if !g.ValidIdx(idx) || !field.Defined(idx) {
			continue
		}
		x, y := g.CenterIdx(idx)
		seeds = append(seeds, Point{X: x, Y: y})
	}
	return seeds
}

// integrateOne advances a single particle. Only its own position and
// path are mutated; the field and mean layers are read-only.
func integrateOne(g *grid.Grid, field *grid.VelocityField, mean *grid.ScalarLayer, seed Point, opts Options) Trajectory {
	traj := Trajectory{
		ID:     uuid.New().String(),
		Seed:   seed,
		Points: []Point{seed},
	}

	p := seed
	for step := 0; step < opts.Years; step++ {
		idx, ok := g.Locate(p.X, p.Y)
		if !ok || !g.ValidIdx(idx) || !mean.Defined(idx) || !field.Defined(idx) {
			return traj // left the valid-data region: normal termination
		}

		dx, dy, ok := displacement(g, field, idx, p)
		if !ok {
			return traj
		}
		if opts.CorrectForConvergence {
			if tIdx, ok := g.Locate(p.X+dx, p.Y+dy); ok && field.Defined(tIdx) {
				if dx2, dy2, ok := displacement(g, field, tIdx, Point{X: p.X + dx, Y: p.Y + dy}); ok {
					dx = (dx + dx2) / 2
					dy = (dy + dy2) / 2
				}
			}
		}

		p.X += dx
		p.Y += dy
		if g.WrapX && !g.Projected {
			p.X = wrapLon(g, p.X)
		}
		traj.Points = append(traj.Points, p)
	}
	return traj
}

// displacement converts one year of travel at the cell's velocity into
// grid-coordinate offsets at the particle's current latitude. ok is
// false at extreme latitudes where the longitude scale vanishes.
func displacement(g *grid.Grid, field *grid.VelocityField, idx int, p Point) (dx, dy float64, ok bool) {
	dist := math.Abs(field.Mag.At(idx)) // km/yr, direction held in Ang
	theta := units.DegToRad(field.Ang.At(idx))
	east := dist * math.Sin(theta)
	north := dist * math.Cos(theta)

	if g.Projected {
		return east, north, true
	}
	lonScale := units.LonKmPerDegree(p.Y)
	if lonScale < 1e-9 {
		return 0, 0, false // polar singularity
	}
	return east / lonScale, north / units.KmPerDegree, true
}

// wrapLon folds a longitude back into the grid's horizontal span.
func wrapLon(g *grid.Grid, x float64) float64 {
	span := float64(g.Cols) * g.DX
	west := g.OriginX - g.DX/2
	for x < west {
		x += span
	}
	for x >= west+span {
		x -= span
	}
	return x
}
