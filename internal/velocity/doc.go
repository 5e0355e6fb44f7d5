// Package velocity builds the climate velocity field: per-cell temporal
// trends, per-cell spatial gradients from the 8-neighborhood, and the
// combination of the two into a signed velocity magnitude paired with a
// compass direction.
//
// Responsibilities: trend regression, gradient estimation with
// latitude-dependent distance correction, velocity combination.
// Key types: the output layers are grid.ScalarLayer and
// grid.VelocityField; this package adds no types of its own beyond
// parameter structs.
//
// Dependency rule: velocity may depend on grid and units, never on
// trajectory or flowtopo.
package velocity
