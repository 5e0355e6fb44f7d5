package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/meridian-data/vocc/internal/flowtopo"
	"github.com/meridian-data/vocc/internal/grid"
)

func testParams() Params {
	return Params{
		MinObservations:    3,
		GradLowerThreshold: 0.0001,
		Projected:          true,
		Flow: flowtopo.Config{
			TrajectoriesPerSeed: 1,
			Years:               10,
			NonMovingDistance:   1,
			SlowMovingDistance:  2,
			EndingPercent:       25,
			StartingPercent:     25,
			ThroughFlowPercent:  50,
		},
	}
}

// warmingSeries builds a 4x4 projected grid where every cell warms at
// 0.1 per year and the mean state rises by 2 per km eastward. The cell
// at (1, 1) has no observations at all.
func warmingSeries(t *testing.T) *grid.TimeSeriesLayer {
	t.Helper()
	g, err := grid.New(4, 4, 0, 0, 1, 1)
	if err != nil {
		t.Fatalf("grid.New returned error: %v", err)
	}
	g.Projected = true
	series := grid.NewTimeSeriesLayer(g)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if row == 1 && col == 1 {
				continue
			}
			idx := g.Idx(row, col)
			for yr := 0; yr < 10; yr++ {
				series.Append(idx, float64(yr), 2*float64(col)+0.1*float64(yr))
			}
		}
	}
	return series
}

func TestRunEndToEnd(t *testing.T) {
	series := warmingSeries(t)
	res, err := Run(context.Background(), series, nil, testParams())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	g := series.Grid
	empty := g.Idx(1, 1)
	const tol = 1e-9
	for idx := 0; idx < g.CellCount(); idx++ {
		if idx == empty {
			if res.Trend.Defined(idx) {
				t.Fatalf("cell %d has no observations but a defined trend", idx)
			}
			if res.Velocity.Defined(idx) {
				t.Fatalf("cell %d has no observations but a defined velocity", idx)
			}
			if res.Classification.Classes[idx] != flowtopo.ClassUndefined {
				t.Fatalf("cell %d class = %v, want undefined", idx, res.Classification.Classes[idx])
			}
			continue
		}
		if got := res.Trend.At(idx); math.Abs(got-0.1) > tol {
			t.Fatalf("cell %d trend = %v, want 0.1", idx, got)
		}
		if got := res.Gradient.Mag.At(idx); math.Abs(got-2) > tol {
			t.Fatalf("cell %d gradient = %v, want 2", idx, got)
		}
		if got := res.Gradient.Ang.At(idx); math.Abs(got-90) > tol {
			t.Fatalf("cell %d gradient angle = %v, want 90", idx, got)
		}
		if got := res.Velocity.Mag.At(idx); math.Abs(got-0.05) > tol {
			t.Fatalf("cell %d velocity = %v, want 0.05", idx, got)
		}
		if got := res.Velocity.Ang.At(idx); math.Abs(got-90) > tol {
			t.Fatalf("cell %d velocity angle = %v, want 90", idx, got)
		}
		// 0.05 km/yr over 10 years stays under the non-moving distance
		if got := res.Classification.Classes[idx]; got != flowtopo.ClassNonMoving {
			t.Fatalf("cell %d class = %v, want %v", idx, got, flowtopo.ClassNonMoving)
		}
	}

	if want := g.CellCount() - 1; len(res.Trajectories) != want {
		t.Fatalf("got %d trajectories, want one per observed cell (%d)", len(res.Trajectories), want)
	}
}

func TestRunLayerNames(t *testing.T) {
	series := warmingSeries(t)
	res, err := Run(context.Background(), series, nil, testParams())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	layers := res.Layers()
	names := []string{"Trend", "Grad", "Ang", "Voc", "VocAng", "PropSt", "PropEnd", "PropFT", "TrajClas", "ClassL"}
	if len(layers) != len(names) {
		t.Fatalf("got %d layers, want %d", len(layers), len(names))
	}
	for _, name := range names {
		values, ok := layers[name]
		if !ok {
			t.Fatalf("missing layer %q", name)
		}
		if len(values) != series.Grid.CellCount() {
			t.Fatalf("layer %q has %d values, want %d", name, len(values), series.Grid.CellCount())
		}
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	series := warmingSeries(t)

	if _, err := Run(context.Background(), nil, nil, testParams()); err == nil {
		t.Fatalf("expected rejection of nil series")
	}

	p := testParams()
	p.MinObservations = -1
	if _, err := Run(context.Background(), series, nil, p); err == nil {
		t.Fatalf("expected rejection of negative min observations")
	}

	p = testParams()
	p.Flow.Years = 0
	if _, err := Run(context.Background(), series, nil, p); err == nil {
		t.Fatalf("expected rejection of zero-year horizon")
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, warmingSeries(t), nil, testParams()); err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}
