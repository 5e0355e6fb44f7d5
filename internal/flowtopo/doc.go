// Package flowtopo classifies every grid cell by its role in the
// aggregate climate flow.
//
// Responsibilities: per-cell trajectory statistics, movement class from
// projected travel distance, endorheic (internal) sink detection over
// 2x2 blocks, boundary sink detection on data-edge cells, and the final
// nine-way classification applied as an ordered rule table.
//
// Classification requires the full trajectory set to be materialized
// first; within this package the block and edge scans are independent
// per cell.
package flowtopo
