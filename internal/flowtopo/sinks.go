package flowtopo

import (
	"github.com/meridian-data/vocc/internal/grid"
)

// sinkRefAngles are the reference angle pairs for the inward-pointing
// test, in block member order NW, NE, SW, SE. A member points toward
// the block's shared corner when its velocity angle falls strictly
// between its pair.
var sinkRefAngles = [4][2]float64{
	{180, 90},  // NW member must point south-east
	{270, 180}, // NE member must point south-west
	{90, 0},    // SW member must point north-east
	{360, 270}, // SE member must point north-west
}

// pointsInward tests the quadrant condition by sign:
// (angle - ref1) * (ref2 - angle) > 0.
func pointsInward(ang float64, ref [2]float64) bool {
	return (ang-ref[0])*(ref[1]-ang) > 0
}

// internalSinks scans every 2x2 block of cells for locally endorheic
// points: all four velocity angles aiming back at the block's shared
// corner. All four member cells of a matching block are flagged.
//
// Members are found by sampling four points offset by a small fraction
// of a cell around the corner. When the grid wraps at the date line the
// scan includes the seam block, whose east column is column 0.
func internalSinks(field *grid.VelocityField, cfg Config) []bool {
	g := field.Grid()
	flags := make([]bool, g.CellCount())
	eps := cfg.epsilon()

	westCols := g.Cols - 1
	if cfg.DateLineCrossing && g.WrapX {
		westCols = g.Cols
	}

	for row := 0; row < g.Rows-1; row++ {
		for cw := 0; cw < westCols; cw++ {
			// Corner shared by the block whose north-west member is
			// (row, cw).
			xw, yn := g.Center(row, cw)
			xc := xw + g.DX/2
			yc := yn - g.DY/2

			samples := [4][2]float64{
				{xc - eps*g.DX, yc + eps*g.DY}, // NW
				{xc + eps*g.DX, yc + eps*g.DY}, // NE
				{xc - eps*g.DX, yc - eps*g.DY}, // SW
				{xc + eps*g.DX, yc - eps*g.DY}, // SE
			}

			var members [4]int
			ok := true
			for i, s := range samples {
				idx, found := g.Locate(s[0], s[1])
				if !found || !g.ValidIdx(idx) || !field.Defined(idx) {
					ok = false
					break
				}
				members[i] = idx
			}
			if !ok {
				continue
			}

			inward := true
			for i, idx := range members {
				if !pointsInward(field.Ang.At(idx), sinkRefAngles[i]) {
					inward = false
					break
				}
			}
			if inward {
				for _, idx := range members {
					flags[idx] = true
				}
			}
		}
	}
	return flags
}

// boundarySinks flags data-edge cells whose every valid neighbor sits
// on the "downhill" side of the cell's ongoing change: a warming cell
// with no cooler neighbor, or a cooling cell with no warmer neighbor,
// has no escape route. Cells with exactly zero velocity are excluded
// (permanently frozen, not sinks).
func boundarySinks(field *grid.VelocityField, mean *grid.ScalarLayer) []bool {
	g := field.Grid()
	flags := make([]bool, g.CellCount())

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			idx := g.Idx(row, col)
			if !g.IsBoundary(row, col) || !field.Defined(idx) || !mean.Defined(idx) {
				continue
			}
			vel := field.Mag.At(idx)
			if vel == 0 {
				continue
			}
			own := mean.At(idx)
			sink := true
			for _, nIdx := range g.ValidNeighbors(row, col) {
				if !mean.Defined(nIdx) {
					continue
				}
				nv := mean.At(nIdx)
				if (vel > 0 && nv < own) || (vel < 0 && nv > own) {
					sink = false
					break
				}
			}
			flags[idx] = sink
		}
	}
	return flags
}
