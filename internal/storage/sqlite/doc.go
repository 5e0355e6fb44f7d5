// Package sqlite persists pipeline run results: run metadata, named
// per-cell output layers as compressed blobs, and trajectory paths.
//
// No classification or velocity maths is allowed in this package; it
// stores what the pipeline produced and hands it back unchanged.
package sqlite
