// Package trajectory advects point particles through a discretized
// climate velocity field.
//
// Each seed is integrated independently over a fixed number of annual
// steps, sampling the velocity at the particle's current cell and
// terminating normally when the particle leaves the valid-data region.
// Seeds are partitioned across workers and results concatenated in seed
// order, so output is deterministic for any worker count.
package trajectory
