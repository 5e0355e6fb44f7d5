package velocity

import (
	"fmt"

	"github.com/meridian-data/vocc/internal/grid"
	"github.com/meridian-data/vocc/internal/units"
)

// Combine divides the temporal trend by the spatial gradient magnitude
// to produce the climate velocity field. The magnitude keeps the
// trend's sign: negative means movement opposite to the spatial
// gradient. The angle equals the gradient angle for non-negative
// trends and is rotated 180 degrees for negative trends, so the angle
// layer always points in the direction conditions are displacing.
// No-data in either input propagates to the output.
func Combine(trend *grid.ScalarLayer, gradient *grid.VelocityField) (*grid.VelocityField, error) {
	if trend == nil || gradient == nil {
		return nil, fmt.Errorf("combine velocity: nil input")
	}
	if err := gradient.Check(); err != nil {
		return nil, fmt.Errorf("combine velocity: %w", err)
	}
	if err := trend.CheckAligned(gradient.Mag); err != nil {
		return nil, fmt.Errorf("combine velocity: %w", err)
	}

	g := trend.Grid
	field := grid.NewVelocityField(g)
	for idx := 0; idx < g.CellCount(); idx++ {
		if !trend.Defined(idx) || !gradient.Defined(idx) {
			continue
		}
		slope := trend.At(idx)
		mag := gradient.Mag.At(idx)
		if mag == 0 {
			// only reachable when the gradient lower threshold is zero
			continue
		}
		vel := slope / mag
		ang := gradient.Ang.At(idx)
		if slope < 0 {
			ang = units.NormalizeBearing(ang + 180)
		}
		field.Mag.Set(idx, vel)
		field.Ang.Set(idx, ang)
	}
	return field, nil
}
