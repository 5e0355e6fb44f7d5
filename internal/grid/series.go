package grid

import "math"

// Sample is one (time, value) observation of a climatic variable at a
// cell. Time is an offset in the analysis time unit (typically years).
type Sample struct {
	Time  float64
	Value float64
}

// TimeSeriesLayer holds an ordered per-cell sequence of samples aligned
// to a Grid. Cells may have missing samples (NaN values) or no samples
// at all.
type TimeSeriesLayer struct {
	Grid    *Grid
	Samples [][]Sample
}

// NewTimeSeriesLayer creates an empty series layer aligned to g.
func NewTimeSeriesLayer(g *Grid) *TimeSeriesLayer {
	return &TimeSeriesLayer{Grid: g, Samples: make([][]Sample, g.CellCount())}
}

// Append adds a sample to a cell's series.
func (t *TimeSeriesLayer) Append(idx int, time, value float64) {
	t.Samples[idx] = append(t.Samples[idx], Sample{Time: time, Value: value})
}

// ValidSamples returns the samples at a cell with NaN values removed.
func (t *TimeSeriesLayer) ValidSamples(idx int) []Sample {
	var out []Sample
	for _, s := range t.Samples[idx] {
		if !math.IsNaN(s.Value) {
			out = append(out, s)
		}
	}
	return out
}
