// Package grid owns the spatial index underlying every pipeline stage.
//
// Responsibilities: regular 2-D grid geometry, the validity mask,
// 8-neighbor adjacency with optional date-line wraparound, row/col to
// linear-index mapping, and the aligned layer types (ScalarLayer,
// TimeSeriesLayer, VelocityField) that stages exchange.
//
// Dependency rule: grid depends on nothing above it. No velocity maths
// or classification logic is allowed in this package.
package grid
