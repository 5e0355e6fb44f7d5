package sqlite

import (
	"testing"

	"github.com/meridian-data/vocc/internal/grid"
)

func insertTestRun(t *testing.T, store *RunStore, notes string) *Run {
	t.Helper()
	run := &Run{
		Rows:       4,
		Cols:       6,
		OriginX:    -179.5,
		OriginY:    89.5,
		DX:         1,
		DY:         1,
		WrapX:      true,
		ParamsJSON: `{"years":50}`,
		Notes:      notes,
	}
	if err := store.Insert(run); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	return run
}

func TestRunStoreRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	store := NewRunStore(db)

	run := insertTestRun(t, store, "baseline sst run")
	if run.RunID == "" {
		t.Fatalf("Insert did not assign a run ID")
	}
	if run.CreatedUnixNanos == 0 {
		t.Fatalf("Insert did not assign a creation time")
	}

	got, err := store.Get(run.RunID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if *got != *run {
		t.Errorf("Get = %+v, want %+v", got, run)
	}
}

func TestRunStoreEmptyNotes(t *testing.T) {
	db := setupTestDB(t)
	store := NewRunStore(db)

	run := insertTestRun(t, store, "")
	got, err := store.Get(run.RunID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Notes != "" {
		t.Errorf("Notes = %q, want empty", got.Notes)
	}
}

func TestRunStoreGetMissing(t *testing.T) {
	db := setupTestDB(t)
	store := NewRunStore(db)

	if _, err := store.Get("no-such-run"); err == nil {
		t.Fatalf("expected error for missing run")
	}
}

func TestRunStoreDuplicateID(t *testing.T) {
	db := setupTestDB(t)
	store := NewRunStore(db)

	run := insertTestRun(t, store, "")
	dup := *run
	if err := store.Insert(&dup); err == nil {
		t.Fatalf("expected primary key violation on duplicate run ID")
	}
}

func TestRunStoreListMostRecentFirst(t *testing.T) {
	db := setupTestDB(t)
	store := NewRunStore(db)

	older := &Run{CreatedUnixNanos: 100, Rows: 2, Cols: 2, DX: 1, DY: 1}
	newer := &Run{CreatedUnixNanos: 200, Rows: 2, Cols: 2, DX: 1, DY: 1}
	if err := store.Insert(older); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if err := store.Insert(newer); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].RunID != newer.RunID || runs[1].RunID != older.RunID {
		t.Errorf("runs not ordered most recent first: %s, %s", runs[0].RunID, runs[1].RunID)
	}
}

func TestRunStoreDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	runs := NewRunStore(db)
	layers := NewLayerStore(db)

	run := insertTestRun(t, runs, "")
	layer := &LayerRecord{
		RunID:  run.RunID,
		Name:   "Voc",
		Rows:   4,
		Cols:   6,
		Values: make([]float64, 24),
	}
	if err := layers.Insert(layer); err != nil {
		t.Fatalf("Insert layer returned error: %v", err)
	}

	if err := runs.Delete(run.RunID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := runs.Get(run.RunID); err == nil {
		t.Fatalf("run still present after delete")
	}
	names, err := layers.ListNames(run.RunID)
	if err != nil {
		t.Fatalf("ListNames returned error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("layers survived run delete: %v", names)
	}
}

func TestNewRunFromGrid(t *testing.T) {
	g, err := grid.New(3, 5, -10, 45, 0.5, 0.5)
	if err != nil {
		t.Fatalf("grid.New returned error: %v", err)
	}
	g.Projected = true

	run := NewRunFromGrid(g, `{"projected":true}`, "")
	if run.RunID == "" || run.CreatedUnixNanos == 0 {
		t.Fatalf("identity fields not populated: %+v", run)
	}
	if run.Rows != 3 || run.Cols != 5 || run.OriginX != -10 || run.OriginY != 45 ||
		run.DX != 0.5 || run.DY != 0.5 || !run.Projected || run.WrapX {
		t.Errorf("grid fields not copied: %+v", run)
	}
	if run.ParamsJSON != `{"projected":true}` {
		t.Errorf("ParamsJSON = %q", run.ParamsJSON)
	}
}
