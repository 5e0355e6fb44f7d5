package velocity

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/meridian-data/vocc/internal/grid"
)

// MinTrendObservations is the default minimum number of valid samples a
// cell needs before its slope is trusted. Cells below the threshold
// produce no-data rather than an error.
const MinTrendObservations = 3

// EstimateTrend fits an ordinary least squares slope of value against
// time for every valid cell and returns the per-cell slope layer in
// variable units per time unit. Cells with fewer than minObs valid
// samples produce no-data; computation continues for the rest.
func EstimateTrend(series *grid.TimeSeriesLayer, minObs int) (*grid.ScalarLayer, error) {
	if series == nil || series.Grid == nil {
		return nil, fmt.Errorf("estimate trend: nil series layer")
	}
	if minObs < 2 {
		minObs = 2 // a slope needs at least two points
	}

	g := series.Grid
	out := grid.NewScalarLayer(g)
	for idx := 0; idx < g.CellCount(); idx++ {
		if !g.ValidIdx(idx) {
			continue
		}
		samples := series.ValidSamples(idx)
		if len(samples) < minObs {
			continue // InsufficientData: stays no-data
		}
		times := make([]float64, len(samples))
		values := make([]float64, len(samples))
		for i, s := range samples {
			times[i] = s.Time
			values[i] = s.Value
		}
		_, slope := stat.LinearRegression(times, values, nil, false)
		out.Set(idx, slope)
	}
	return out, nil
}

// MeanState averages each cell's valid samples into a climatological
// mean layer. Cells with no valid samples stay no-data.
func MeanState(series *grid.TimeSeriesLayer) (*grid.ScalarLayer, error) {
	if series == nil || series.Grid == nil {
		return nil, fmt.Errorf("mean state: nil series layer")
	}
	g := series.Grid
	out := grid.NewScalarLayer(g)
	for idx := 0; idx < g.CellCount(); idx++ {
		if !g.ValidIdx(idx) {
			continue
		}
		samples := series.ValidSamples(idx)
		if len(samples) == 0 {
			continue
		}
		values := make([]float64, len(samples))
		for i, s := range samples {
			values[i] = s.Value
		}
		out.Set(idx, stat.Mean(values, nil))
	}
	return out, nil
}
