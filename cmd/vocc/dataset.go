package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/meridian-data/vocc/internal/grid"
)

// dataset is the on-disk JSON form of a gridded time series. Raster
// decoding proper (GeoTIFF, NetCDF, reprojection) belongs to external
// collaborators; this decoder only accepts the already-regular form.
type dataset struct {
	Rows      int     `json:"rows"`
	Cols      int     `json:"cols"`
	OriginX   float64 `json:"origin_x"`
	OriginY   float64 `json:"origin_y"`
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	Projected bool    `json:"projected"`
	WrapX     bool    `json:"wrap_x"`

	// Mask is optional; absent means every cell is valid.
	Mask []bool `json:"mask,omitempty"`

	// Times holds the time offsets; Values[t][cell] the matching
	// grids. null entries become missing samples.
	Times  []float64    `json:"times"`
	Values [][]*float64 `json:"values"`
}

// loadDataset reads a dataset file into a time-series layer.
func loadDataset(path string) (*grid.TimeSeriesLayer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var ds dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(ds.Times) != len(ds.Values) {
		return nil, fmt.Errorf("dataset has %d times but %d value grids", len(ds.Times), len(ds.Values))
	}

	g, err := grid.New(ds.Rows, ds.Cols, ds.OriginX, ds.OriginY, ds.DX, ds.DY)
	if err != nil {
		return nil, fmt.Errorf("dataset grid: %w", err)
	}
	g.Projected = ds.Projected
	g.WrapX = ds.WrapX
	if ds.Mask != nil {
		if err := g.SetMask(ds.Mask); err != nil {
			return nil, fmt.Errorf("dataset mask: %w", err)
		}
	}

	series := grid.NewTimeSeriesLayer(g)
	for t, values := range ds.Values {
		if len(values) != g.CellCount() {
			return nil, fmt.Errorf("value grid %d has %d cells, want %d", t, len(values), g.CellCount())
		}
		for idx, v := range values {
			if !g.ValidIdx(idx) || v == nil || math.IsNaN(*v) {
				continue
			}
			series.Append(idx, ds.Times[t], *v)
		}
	}
	return series, nil
}
