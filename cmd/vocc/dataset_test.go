package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing dataset file: %v", err)
	}
	return path
}

func TestLoadDataset(t *testing.T) {
	path := writeDataset(t, `{
		"rows": 2, "cols": 2,
		"origin_x": -179.5, "origin_y": 89.5,
		"dx": 1, "dy": 1,
		"wrap_x": true,
		"times": [0, 1],
		"values": [
			[10, 11, null, 13],
			[10.5, 11.5, 12.5, 13.5]
		]
	}`)

	series, err := loadDataset(path)
	if err != nil {
		t.Fatalf("loadDataset returned error: %v", err)
	}

	g := series.Grid
	if g.Rows != 2 || g.Cols != 2 || g.OriginX != -179.5 || g.OriginY != 89.5 {
		t.Errorf("grid geometry not decoded: %+v", g)
	}
	if !g.WrapX || g.Projected {
		t.Errorf("grid flags not decoded: WrapX=%v Projected=%v", g.WrapX, g.Projected)
	}

	// cell 2 has a null at t=0, so only the t=1 sample survives
	if got := len(series.ValidSamples(2)); got != 1 {
		t.Errorf("cell 2 has %d samples, want 1", got)
	}
	samples := series.ValidSamples(0)
	if len(samples) != 2 {
		t.Fatalf("cell 0 has %d samples, want 2", len(samples))
	}
	if samples[0].Time != 0 || samples[0].Value != 10 || samples[1].Time != 1 || samples[1].Value != 10.5 {
		t.Errorf("cell 0 samples = %+v", samples)
	}
}

func TestLoadDatasetMask(t *testing.T) {
	path := writeDataset(t, `{
		"rows": 1, "cols": 3,
		"dx": 1, "dy": 1,
		"mask": [true, false, true],
		"times": [0],
		"values": [[1, 2, 3]]
	}`)

	series, err := loadDataset(path)
	if err != nil {
		t.Fatalf("loadDataset returned error: %v", err)
	}
	if series.Grid.ValidIdx(1) {
		t.Errorf("masked cell reported valid")
	}
	if got := len(series.ValidSamples(1)); got != 0 {
		t.Errorf("masked cell collected %d samples, want 0", got)
	}
	if got := len(series.ValidSamples(0)); got != 1 {
		t.Errorf("valid cell collected %d samples, want 1", got)
	}
}

func TestLoadDatasetRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed JSON", `{"rows": }`},
		{"time and value count mismatch", `{
			"rows": 1, "cols": 1, "dx": 1, "dy": 1,
			"times": [0, 1], "values": [[1]]
		}`},
		{"bad grid shape", `{
			"rows": 0, "cols": 2, "dx": 1, "dy": 1,
			"times": [], "values": []
		}`},
		{"short value grid", `{
			"rows": 2, "cols": 2, "dx": 1, "dy": 1,
			"times": [0], "values": [[1, 2, 3]]
		}`},
		{"mask length mismatch", `{
			"rows": 1, "cols": 2, "dx": 1, "dy": 1,
			"mask": [true],
			"times": [], "values": []
		}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeDataset(t, tc.content)
			if _, err := loadDataset(path); err == nil {
				t.Fatalf("expected loadDataset to reject %s", tc.name)
			}
		})
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	if _, err := loadDataset(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
