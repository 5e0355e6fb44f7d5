package flowtopo

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks non-physical classifier configuration. It is
// raised eagerly, before any computation starts.
var ErrInvalidConfig = errors.New("flowtopo: invalid configuration")

// DefaultSinkSampleEpsilon is the fraction of a cell by which the four
// sample points around a block corner are offset when locating the
// block's member cells. Any value in (0, 0.5) selects the same members;
// the offset only exists to break ties at exact cell boundaries.
const DefaultSinkSampleEpsilon = 0.01

// Config holds the flat threshold set for flow-topology classification.
type Config struct {
	// TrajectoriesPerSeed is the expected number of trajectories
	// originating per seed cell, used to put starting counts on the
	// same per-cell basis as the raster.
	TrajectoriesPerSeed int
	// Years is the projection horizon and must match the integrator.
	Years int
	// NonMovingDistance and SlowMovingDistance split projected travel
	// distance |velocity| * years into non/slow/fast moving, in the
	// grid's distance units (km when unprojected).
	NonMovingDistance  float64
	SlowMovingDistance float64
	// EndingPercent, StartingPercent and ThroughFlowPercent are
	// percentages of a cell's total trajectory traffic.
	EndingPercent      float64
	StartingPercent    float64
	ThroughFlowPercent float64
	// DateLineCrossing enables the seam block in the internal-sink
	// scan for grids that wrap at the date line.
	DateLineCrossing bool
	// SinkSampleEpsilon is the corner sample offset as a fraction of a
	// cell. Zero selects DefaultSinkSampleEpsilon.
	SinkSampleEpsilon float64
}

// Validate rejects non-physical thresholds before any computation
// starts.
func (c Config) Validate() error {
	if c.TrajectoriesPerSeed <= 0 {
		return fmt.Errorf("%w: trajectories per seed must be positive, got %d", ErrInvalidConfig, c.TrajectoriesPerSeed)
	}
	if c.Years <= 0 {
		return fmt.Errorf("%w: years must be positive, got %d", ErrInvalidConfig, c.Years)
	}
	if c.NonMovingDistance < 0 {
		return fmt.Errorf("%w: negative non-moving distance %g", ErrInvalidConfig, c.NonMovingDistance)
	}
	if c.SlowMovingDistance < c.NonMovingDistance {
		return fmt.Errorf("%w: slow-moving distance %g below non-moving distance %g",
			ErrInvalidConfig, c.SlowMovingDistance, c.NonMovingDistance)
	}
	for name, pct := range map[string]float64{
		"ending":       c.EndingPercent,
		"starting":     c.StartingPercent,
		"through-flow": c.ThroughFlowPercent,
	} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%w: %s percent %g outside [0,100]", ErrInvalidConfig, name, pct)
		}
	}
	if c.SinkSampleEpsilon < 0 || c.SinkSampleEpsilon >= 0.5 {
		return fmt.Errorf("%w: sink sample epsilon %g outside [0,0.5)", ErrInvalidConfig, c.SinkSampleEpsilon)
	}
	return nil
}

// epsilon returns the configured corner sample offset, defaulted.
func (c Config) epsilon() float64 {
	if c.SinkSampleEpsilon == 0 {
		return DefaultSinkSampleEpsilon
	}
	return c.SinkSampleEpsilon
}
