package flowtopo

import (
	"fmt"
	"math"

	"github.com/meridian-data/vocc/internal/grid"
	"github.com/meridian-data/vocc/internal/trajectory"
)

// FlowClass is a cell's role in the aggregate flow topology.
type FlowClass int

// Flow classes in priority order. Earlier classes take precedence when
// multiple rules match a cell.
const (
	ClassUndefined FlowClass = iota
	ClassNonMoving
	ClassSlowMoving
	ClassInternalSink
	ClassBoundarySink
	ClassSource
	ClassRelativeSink
	ClassCorridor
	ClassDivergence
	ClassConvergence
)

var flowClassNames = map[FlowClass]string{
	ClassUndefined:    "undefined",
	ClassNonMoving:    "non-moving",
	ClassSlowMoving:   "slow-moving",
	ClassInternalSink: "internal sink",
	ClassBoundarySink: "boundary sink",
	ClassSource:       "source",
	ClassRelativeSink: "relative sink",
	ClassCorridor:     "corridor",
	ClassDivergence:   "divergence",
	ClassConvergence:  "convergence",
}

func (c FlowClass) String() string {
	if name, ok := flowClassNames[c]; ok {
		return name
	}
	return fmt.Sprintf("FlowClass(%d)", int(c))
}

// MovementClass buckets a cell by projected travel distance.
type MovementClass int

const (
	MoveUndefined MovementClass = iota
	MoveNone
	MoveSlow
	MoveFast
)

// Result is the classification layer plus the intermediate per-cell
// statistics that justify each category. All slices are indexed by
// linear cell index and aligned to Grid.
type Result struct {
	Grid *grid.Grid

	// Per-cell trajectory percentages of total cell traffic.
	PropSt  *grid.ScalarLayer // trajectories starting here
	PropEnd *grid.ScalarLayer // trajectories ending here
	PropFT  *grid.ScalarLayer // trajectories flowing through

	Movement     []MovementClass
	InternalSink []bool
	BoundarySink []bool
	Classes      []FlowClass
}

// Classify aggregates the trajectory set into per-cell statistics and
// assigns every cell with a defined velocity one of the nine flow
// classes. The rule order is fixed: movement classes trump sinks, sinks
// trump the traffic-percentage rules, and the percentage rules apply
// first-match-wins in the order source, relative sink, corridor,
// divergence, convergence. Identical inputs produce identical output.
func Classify(trajs []trajectory.Trajectory, field *grid.VelocityField, mean *grid.ScalarLayer, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if field == nil || mean == nil {
		return nil, fmt.Errorf("classify: nil input")
	}
	if err := field.Check(); err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	if err := mean.CheckAligned(field.Mag); err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	g := field.Grid()
	res := &Result{
		Grid:         g,
		PropSt:       grid.NewScalarLayer(g),
		PropEnd:      grid.NewScalarLayer(g),
		PropFT:       grid.NewScalarLayer(g),
		Movement:     make([]MovementClass, g.CellCount()),
		InternalSink: internalSinks(field, cfg),
		BoundarySink: boundarySinks(field, mean),
		Classes:      make([]FlowClass, g.CellCount()),
	}

	trajEnd, trajTouch := countTraffic(g, trajs)

	for idx := 0; idx < g.CellCount(); idx++ {
		if !g.ValidIdx(idx) || !field.Defined(idx) {
			continue
		}

		// TrajThrough floors at zero: a seed cell that is also a
		// terminal cell (ice-locked regions) must not double count.
		start := float64(cfg.TrajectoriesPerSeed)
		end := float64(trajEnd[idx])
		through := float64(trajTouch[idx]) - end - start
		if through < 0 {
			through = 0
		}
		total := start + end + through
		res.PropSt.Set(idx, 100*start/total)
		res.PropEnd.Set(idx, 100*end/total)
		res.PropFT.Set(idx, 100*through/total)

		res.Movement[idx] = movementClass(field.Mag.At(idx), cfg)
		res.Classes[idx] = cellClass(res, idx, cfg)
	}
	return res, nil
}

// countTraffic maps the trajectory set onto the grid: how many
// trajectories end in each cell, and how many distinct trajectories
// touch each cell at least once.
func countTraffic(g *grid.Grid, trajs []trajectory.Trajectory) (end, touch []int) {
	end = make([]int, g.CellCount())
	touch = make([]int, g.CellCount())
	seen := make(map[int]bool)
	for _, tr := range trajs {
		if len(tr.Points) == 0 {
			continue
		}
		clear(seen)
		for _, p := range tr.Points {
			if idx, ok := g.Locate(p.X, p.Y); ok && !seen[idx] {
				seen[idx] = true
				touch[idx]++
			}
		}
		last := tr.Points[len(tr.Points)-1]
		if idx, ok := g.Locate(last.X, last.Y); ok {
			end[idx]++
		}
	}
	return end, touch
}

// movementClass buckets |velocity| * years against the two distance
// thresholds.
func movementClass(vel float64, cfg Config) MovementClass {
	dist := math.Abs(vel) * float64(cfg.Years)
	switch {
	case dist < cfg.NonMovingDistance:
		return MoveNone
	case dist < cfg.SlowMovingDistance:
		return MoveSlow
	default:
		return MoveFast
	}
}

// cellClass applies the ordered rule table for one cell.
func cellClass(res *Result, idx int, cfg Config) FlowClass {
	switch res.Movement[idx] {
	case MoveNone:
		return ClassNonMoving
	case MoveSlow:
		return ClassSlowMoving
	}
	if res.InternalSink[idx] {
		return ClassInternalSink
	}
	if res.BoundarySink[idx] {
		return ClassBoundarySink
	}

	propEnd := res.PropEnd.At(idx)
	propSt := res.PropSt.At(idx)
	propFT := res.PropFT.At(idx)
	switch {
	case propEnd == 0:
		return ClassSource
	case propEnd > cfg.EndingPercent && propSt < cfg.StartingPercent:
		return ClassRelativeSink
	case propFT > cfg.ThroughFlowPercent:
		return ClassCorridor
	case propEnd < propSt:
		return ClassDivergence
	default:
		return ClassConvergence
	}
}
