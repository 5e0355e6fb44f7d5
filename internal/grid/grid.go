package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when two layers or grids that must be
// aligned differ in shape or geometry.
var ErrDimensionMismatch = errors.New("grid: dimensions do not match")

// Grid describes a regular 2-D grid of cell centers. Row 0 is the
// northernmost (largest-Y) row; column 0 is the westernmost column.
// For unprojected grids, X/Y are degrees of longitude/latitude and cell
// coordinates refer to cell centers. A Grid is constructed once from an
// external raster source and is read-only afterwards.
type Grid struct {
	Rows, Cols int
	OriginX    float64 // center X of cell (row 0, col 0)
	OriginY    float64 // center Y of cell (row 0, col 0)
	DX, DY     float64 // cell size in grid units (degrees when unprojected)
	Projected  bool    // true: X/Y are planar units, no latitude correction
	WrapX      bool    // true: columns wrap horizontally (date-line crossing)

	mask []bool // len Rows*Cols; true = valid data cell
}

// New creates a Grid with every cell valid.
func New(rows, cols int, originX, originY, dx, dy float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid: invalid shape %dx%d", rows, cols)
	}
	if dx <= 0 || dy <= 0 {
		return nil, fmt.Errorf("grid: invalid resolution %gx%g", dx, dy)
	}
	mask := make([]bool, rows*cols)
	for i := range mask {
		mask[i] = true
	}
	return &Grid{
		Rows: rows, Cols: cols,
		OriginX: originX, OriginY: originY,
		DX: dx, DY: dy,
		mask: mask,
	}, nil
}

// SetMask replaces the validity mask. The slice length must equal the
// cell count.
func (g *Grid) SetMask(mask []bool) error {
	if len(mask) != g.CellCount() {
		return fmt.Errorf("grid: mask length %d, want %d: %w", len(mask), g.CellCount(), ErrDimensionMismatch)
	}
	g.mask = make([]bool, len(mask))
	copy(g.mask, mask)
	return nil
}

// SetInvalid marks a single cell as no-data (land/ice mask).
func (g *Grid) SetInvalid(row, col int) {
	if g.InBounds(row, col) {
		g.mask[g.Idx(row, col)] = false
	}
}

// CellCount returns the total number of cells, valid or not.
func (g *Grid) CellCount() int { return g.Rows * g.Cols }

// Idx maps (row, col) to a linear cell index. The caller must ensure the
// cell is in bounds.
func (g *Grid) Idx(row, col int) int { return row*g.Cols + col }

// RowCol maps a linear cell index back to (row, col).
func (g *Grid) RowCol(idx int) (row, col int) {
	return idx / g.Cols, idx % g.Cols
}

// InBounds reports whether (row, col) addresses a cell of the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// Valid reports whether the cell exists and carries data.
func (g *Grid) Valid(row, col int) bool {
	return g.InBounds(row, col) && g.mask[g.Idx(row, col)]
}

// ValidIdx reports whether the linear cell index addresses a valid cell.
func (g *Grid) ValidIdx(idx int) bool {
	return idx >= 0 && idx < len(g.mask) && g.mask[idx]
}

// Center returns the center coordinates of cell (row, col).
func (g *Grid) Center(row, col int) (x, y float64) {
	return g.OriginX + float64(col)*g.DX, g.OriginY - float64(row)*g.DY
}

// CenterIdx returns the center coordinates of the cell at a linear index.
func (g *Grid) CenterIdx(idx int) (x, y float64) {
	r, c := g.RowCol(idx)
	return g.Center(r, c)
}

// Lat returns the latitude (Y coordinate) of a row's cell centers.
func (g *Grid) Lat(row int) float64 { return g.OriginY - float64(row)*g.DY }

// Neighbor resolves the cell offset (dRow, dCol) from (row, col),
// wrapping columns when the grid crosses the date line. ok is false when
// the neighbor falls off the grid.
func (g *Grid) Neighbor(row, col, dRow, dCol int) (r, c int, ok bool) {
	r = row + dRow
	c = col + dCol
	if g.WrapX {
		if c < 0 {
			c += g.Cols
		} else if c >= g.Cols {
			c -= g.Cols
		}
	}
	if !g.InBounds(r, c) {
		return 0, 0, false
	}
	return r, c, true
}

// NeighborValue returns the value of layer at the (dRow, dCol) neighbor
// of (row, col), or NaN when the neighbor is out of bounds, masked, or
// carries no data in the layer.
func (g *Grid) NeighborValue(layer *ScalarLayer, row, col, dRow, dCol int) float64 {
	r, c, ok := g.Neighbor(row, col, dRow, dCol)
	if !ok || !g.mask[g.Idx(r, c)] {
		return math.NaN()
	}
	return layer.Values[g.Idx(r, c)]
}

// neighborOffsets is the 8-neighborhood in (dRow, dCol) order
// N, NE, E, SE, S, SW, W, NW with row 0 at the north edge.
var neighborOffsets = [8][2]int{
	{-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1},
}

// ValidNeighbors returns the linear indices of the valid 8-neighbors of
// (row, col).
func (g *Grid) ValidNeighbors(row, col int) []int {
	var out []int
	for _, d := range neighborOffsets {
		r, c, ok := g.Neighbor(row, col, d[0], d[1])
		if ok && g.mask[g.Idx(r, c)] {
			out = append(out, g.Idx(r, c))
		}
	}
	return out
}

// IsBoundary reports whether a valid cell touches the data edge: at
// least one of its 8 neighbor positions is out of bounds or masked.
func (g *Grid) IsBoundary(row, col int) bool {
	if !g.Valid(row, col) {
		return false
	}
	for _, d := range neighborOffsets {
		r, c, ok := g.Neighbor(row, col, d[0], d[1])
		if !ok || !g.mask[g.Idx(r, c)] {
			return true
		}
	}
	return false
}

// Locate maps a continuous coordinate to the linear index of the cell
// containing it. Longitudes are normalized into the grid's span when the
// grid wraps. ok is false for points outside the grid.
func (g *Grid) Locate(x, y float64) (idx int, ok bool) {
	if g.WrapX {
		span := float64(g.Cols) * g.DX
		west := g.OriginX - g.DX/2
		for x < west {
			x += span
		}
		for x >= west+span {
			x -= span
		}
	}
	col := int(math.Floor((x - (g.OriginX - g.DX/2)) / g.DX))
	row := int(math.Floor(((g.OriginY + g.DY/2) - y) / g.DY))
	if !g.InBounds(row, col) {
		return 0, false
	}
	return g.Idx(row, col), true
}

// SameShape reports whether two grids have identical shape and geometry.
func (g *Grid) SameShape(o *Grid) bool {
	return o != nil && g.Rows == o.Rows && g.Cols == o.Cols &&
		g.OriginX == o.OriginX && g.OriginY == o.OriginY &&
		g.DX == o.DX && g.DY == o.DY &&
		g.Projected == o.Projected && g.WrapX == o.WrapX
}
