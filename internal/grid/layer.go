package grid

import (
	"fmt"
	"math"
)

// ScalarLayer is a per-cell real value aligned to a Grid. NaN marks
// no-data. A layer is written only by the stage that produced it and is
// read-only once handed downstream.
type ScalarLayer struct {
	Grid   *Grid
	Values []float64
}

// NewScalarLayer creates a layer aligned to g with every cell no-data.
func NewScalarLayer(g *Grid) *ScalarLayer {
	values := make([]float64, g.CellCount())
	for i := range values {
		values[i] = math.NaN()
	}
	return &ScalarLayer{Grid: g, Values: values}
}

// At returns the value at a linear cell index (NaN for no-data).
func (l *ScalarLayer) At(idx int) float64 { return l.Values[idx] }

// Set stores a value at a linear cell index.
func (l *ScalarLayer) Set(idx int, v float64) { l.Values[idx] = v }

// Defined reports whether the cell carries data.
func (l *ScalarLayer) Defined(idx int) bool { return !math.IsNaN(l.Values[idx]) }

// CheckAligned returns ErrDimensionMismatch when the two layers are not
// built on grids of identical shape.
func (l *ScalarLayer) CheckAligned(o *ScalarLayer) error {
	if o == nil || !l.Grid.SameShape(o.Grid) {
		return fmt.Errorf("scalar layers not aligned: %w", ErrDimensionMismatch)
	}
	if len(l.Values) != len(o.Values) {
		return fmt.Errorf("scalar layer lengths %d vs %d: %w", len(l.Values), len(o.Values), ErrDimensionMismatch)
	}
	return nil
}

// VelocityField pairs a magnitude layer with an angle layer. Angles are
// compass bearings in degrees (0 = geographic north, clockwise) and are
// defined only where the magnitude is defined.
type VelocityField struct {
	Mag *ScalarLayer
	Ang *ScalarLayer
}

// NewVelocityField creates an all-no-data field aligned to g.
func NewVelocityField(g *Grid) *VelocityField {
	return &VelocityField{Mag: NewScalarLayer(g), Ang: NewScalarLayer(g)}
}

// Grid returns the grid both member layers are aligned to.
func (f *VelocityField) Grid() *Grid { return f.Mag.Grid }

// Defined reports whether the field carries a vector at the cell.
func (f *VelocityField) Defined(idx int) bool {
	return f.Mag.Defined(idx) && f.Ang.Defined(idx)
}

// Check validates the internal alignment of the field.
func (f *VelocityField) Check() error {
	if f.Mag == nil || f.Ang == nil {
		return fmt.Errorf("velocity field missing a layer: %w", ErrDimensionMismatch)
	}
	return f.Mag.CheckAligned(f.Ang)
}
