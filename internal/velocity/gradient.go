package velocity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/meridian-data/vocc/internal/grid"
	"github.com/meridian-data/vocc/internal/units"
)

// gradientWeights is the fixed weighting of the six directional
// estimates per axis. The two through-focal differences (positions 1
// and 4) get double weight.
var gradientWeights = []float64{1, 2, 1, 1, 2, 1}

// ComputeGradient estimates the spatial gradient of the mean-state
// layer at every valid cell and returns it as a magnitude layer (Grad,
// variable units per km, or per grid unit when projected) paired with a
// compass angle layer (Ang, degrees, 0 = north).
//
// Each axis combines six finite differences over the 8-neighborhood:
// the two through-focal differences plus the four adjacent pairs in the
// flanking rows (WE axis) or columns (NS axis). Missing neighbors
// contribute no term. East-west differences on unprojected grids are
// divided by the longitude distance at the pair's own latitude.
//
// When exactly one axis has no defined term, that axis is taken as 0;
// when both axes are undefined the cell is no-data. Magnitudes below
// lowerThreshold are raised to the threshold to guard against spurious
// velocities when a trend is later divided by a near-zero gradient.
func ComputeGradient(mean *grid.ScalarLayer, lowerThreshold float64, projected bool) (*grid.VelocityField, error) {
	if mean == nil || mean.Grid == nil {
		return nil, fmt.Errorf("compute gradient: nil mean layer")
	}
	if lowerThreshold < 0 {
		return nil, fmt.Errorf("compute gradient: negative lower threshold %g", lowerThreshold)
	}

	g := mean.Grid
	field := grid.NewVelocityField(g)

	for row := 0; row < g.Rows; row++ {
		// East-west cell distances for the three rows the estimates
		// span, at each row's own latitude.
		dWEn := weDistance(g, row-1, projected)
		dWEf := weDistance(g, row, projected)
		dWEs := weDistance(g, row+1, projected)
		dNS := nsDistance(g, projected)

		for col := 0; col < g.Cols; col++ {
			idx := g.Idx(row, col)
			if !g.Valid(row, col) || !mean.Defined(idx) {
				continue
			}
			focal := mean.At(idx)
			climN := g.NeighborValue(mean, row, col, -1, 0)
			climNE := g.NeighborValue(mean, row, col, -1, 1)
			climE := g.NeighborValue(mean, row, col, 0, 1)
			climSE := g.NeighborValue(mean, row, col, 1, 1)
			climS := g.NeighborValue(mean, row, col, 1, 0)
			climSW := g.NeighborValue(mean, row, col, 1, -1)
			climW := g.NeighborValue(mean, row, col, 0, -1)
			climNW := g.NeighborValue(mean, row, col, -1, -1)

			weGrad, weOK := weightedMean([]float64{
				(climN - climNW) / dWEn,
				(focal - climW) / dWEf,
				(climS - climSW) / dWEs,
				(climNE - climN) / dWEn,
				(climE - focal) / dWEf,
				(climSE - climS) / dWEs,
			})
			nsGrad, nsOK := weightedMean([]float64{
				(climNW - climW) / dNS,
				(climN - focal) / dNS,
				(climNE - climE) / dNS,
				(climW - climSW) / dNS,
				(focal - climS) / dNS,
				(climE - climSE) / dNS,
			})

			switch {
			case !weOK && !nsOK:
				continue // fully isolated cell: no-data
			case !weOK:
				weGrad = 0
			case !nsOK:
				nsGrad = 0
			}

			mag := math.Hypot(weGrad, nsGrad)
			if mag < lowerThreshold {
				mag = lowerThreshold
			}
			field.Mag.Set(idx, mag)
			field.Ang.Set(idx, compassBearing(weGrad, nsGrad))
		}
	}
	return field, nil
}

// weDistance is the physical east-west distance between adjacent cell
// centers in the given row. Rows off the grid still yield a finite
// value; estimates using them are NaN and drop out of the mean.
func weDistance(g *grid.Grid, row int, projected bool) float64 {
	if projected {
		return g.DX
	}
	return units.LonKmPerDegree(g.Lat(row)) * g.DX
}

// nsDistance is the physical north-south distance between adjacent cell
// centers.
func nsDistance(g *grid.Grid, projected bool) float64 {
	if projected {
		return g.DY
	}
	return units.KmPerDegree * g.DY
}

// weightedMean combines the six directional estimates using
// gradientWeights, skipping NaN terms. ok is false when no term is
// defined.
func weightedMean(terms []float64) (mean float64, ok bool) {
	var vals, weights []float64
	for i, t := range terms {
		if !math.IsNaN(t) && !math.IsInf(t, 0) {
			vals = append(vals, t)
			weights = append(weights, gradientWeights[i])
		}
	}
	if len(vals) == 0 {
		return math.NaN(), false
	}
	return stat.Mean(vals, weights), true
}

// compassBearing converts gradient components (east-positive we,
// north-positive ns) to a compass bearing in [0, 360) with explicit
// quadrant handling: 0 = north, 90 = east.
func compassBearing(we, ns float64) float64 {
	switch {
	case ns > 0 && we >= 0: // NE quadrant
		return units.RadToDeg(math.Atan(we / ns))
	case ns < 0: // SE and SW quadrants
		return 180 + units.RadToDeg(math.Atan(we/ns))
	case ns > 0 && we < 0: // NW quadrant
		return 360 + units.RadToDeg(math.Atan(we/ns))
	case ns == 0 && we > 0: // due east
		return 90
	case ns == 0 && we < 0: // due west
		return 270
	}
	return 0 // both components zero: due north by convention
}
