// Command vocc runs the climate velocity pipeline over a gridded
// time-series dataset and persists the output layers and trajectories.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/meridian-data/vocc/internal/config"
	"github.com/meridian-data/vocc/internal/db"
	"github.com/meridian-data/vocc/internal/pipeline"
	"github.com/meridian-data/vocc/internal/storage/sqlite"
	"github.com/meridian-data/vocc/internal/units"
	"github.com/meridian-data/vocc/internal/version"
)

var (
	inputPath     = flag.String("input", "", "Path to the gridded time-series dataset (JSON)")
	configPath    = flag.String("config", "", "Path to a tuning config JSON (optional)")
	dbPath        = flag.String("db", "vocc.db", "Path to the results database")
	migrationsDir = flag.String("migrations", "internal/db/migrations", "Path to the migrations directory")
	notes         = flag.String("notes", "", "Free-form notes stored with the run")
	outputUnits   = flag.String("units", units.KMYR, "Velocity units for the persisted Voc layer ("+units.GetValidUnitsString()+")")
	showVersion   = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("vocc %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *inputPath == "" {
		log.Fatal("An input dataset is required (-input)")
	}
	if !units.IsValid(*outputUnits) {
		log.Fatalf("invalid -units %q, valid units are: %s", *outputUnits, units.GetValidUnitsString())
	}

	tuning, err := config.LoadDefaultTuningConfig()
	if err != nil {
		log.Fatalf("failed to load default tuning config: %v", err)
	}
	if *configPath != "" {
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	series, err := loadDataset(*inputPath)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	log.Printf("loaded dataset: %dx%d grid, %d cells",
		series.Grid.Rows, series.Grid.Cols, series.Grid.CellCount())

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()
	if err := database.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Interrupt cancels the long-running trajectory stage without
	// corrupting layers already written.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	params := tuning.Params()
	results, err := pipeline.Run(ctx, series, nil, params)
	if err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}

	if err := persistResults(database, results, params, *notes, *outputUnits); err != nil {
		log.Fatalf("failed to persist results: %v", err)
	}
}

// persistResults writes the run record, every output layer, and the
// trajectory set. The Voc magnitude layer is converted to targetUnits
// before it is stored; all other layers are unit-free.
func persistResults(database *db.DB, results *pipeline.Results, params pipeline.Params, notes, targetUnits string) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return err
	}

	run := sqlite.NewRunFromGrid(results.Grid, string(paramsJSON), notes)
	if err := sqlite.NewRunStore(database.DB).Insert(run); err != nil {
		return err
	}

	layerStore := sqlite.NewLayerStore(database.DB)
	for name, values := range results.Layers() {
		if name == "Voc" {
			values = convertVelocityLayer(values, targetUnits)
		}
		rec := &sqlite.LayerRecord{
			RunID:  run.RunID,
			Name:   name,
			Rows:   results.Grid.Rows,
			Cols:   results.Grid.Cols,
			Values: values,
		}
		if err := layerStore.Insert(rec); err != nil {
			return err
		}
	}

	if err := sqlite.NewTrajectoryStore(database.DB).InsertBatch(run.RunID, results.Trajectories); err != nil {
		return err
	}

	log.Printf("run %s persisted: %d layers, %d trajectories",
		run.RunID, len(results.Layers()), len(results.Trajectories))
	return nil
}

// convertVelocityLayer converts a km/yr magnitude layer to targetUnits
// without touching the pipeline's copy. NaN cells stay NaN.
func convertVelocityLayer(values []float64, targetUnits string) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = units.ConvertVelocity(v, targetUnits)
	}
	return out
}
