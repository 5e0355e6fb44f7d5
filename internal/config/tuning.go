// Package config loads and validates the flat JSON tuning file for
// pipeline runs.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meridian-data/vocc/internal/flowtopo"
	"github.com/meridian-data/vocc/internal/pipeline"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tuning parameters.
// Fields omitted from the JSON file fall back to defaults via the Get*
// methods, so partial configs are safe.
type TuningConfig struct {
	// Trend and gradient params
	MinObservations    *int     `json:"min_observations,omitempty"`
	GradLowerThreshold *float64 `json:"grad_lower_threshold,omitempty"`
	Projected          *bool    `json:"projected,omitempty"`

	// Trajectory params
	Years                 *int  `json:"years,omitempty"`
	CorrectForConvergence *bool `json:"correct_for_convergence,omitempty"`
	Workers               *int  `json:"workers,omitempty"`

	// Classifier params
	TrajectoriesPerSeed *int     `json:"trajectories_per_seed,omitempty"`
	NonMovingDistance   *float64 `json:"non_moving_distance,omitempty"`
	SlowMovingDistance  *float64 `json:"slow_moving_distance,omitempty"`
	EndingPercent       *float64 `json:"ending_percent,omitempty"`
	StartingPercent     *float64 `json:"starting_percent,omitempty"`
	ThroughFlowPercent  *float64 `json:"through_flow_percent,omitempty"`
	DateLineCrossing    *bool    `json:"date_line_crossing,omitempty"`
	SinkSampleEpsilon   *float64 `json:"sink_sample_epsilon,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and stay under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDefaultTuningConfig loads the canonical defaults file at
// DefaultConfigPath, relative to the working directory. A missing file
// is not an error: every Get* accessor carries the same built-in
// default, so an empty config is returned instead. A present but
// malformed file is an error.
func LoadDefaultTuningConfig() (*TuningConfig, error) {
	cfg, err := LoadTuningConfig(DefaultConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		return EmptyTuningConfig(), nil
	}
	return cfg, err
}

// Validate checks that the configuration values are valid. The
// threshold cross-checks live in flowtopo.Config.Validate and
// pipeline.Params.Validate; this catches per-field nonsense early.
func (c *TuningConfig) Validate() error {
	if c.MinObservations != nil && *c.MinObservations < 0 {
		return fmt.Errorf("min_observations must be non-negative, got %d", *c.MinObservations)
	}
	if c.GradLowerThreshold != nil && *c.GradLowerThreshold < 0 {
		return fmt.Errorf("grad_lower_threshold must be non-negative, got %g", *c.GradLowerThreshold)
	}
	if c.Years != nil && *c.Years <= 0 {
		return fmt.Errorf("years must be positive, got %d", *c.Years)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.TrajectoriesPerSeed != nil && *c.TrajectoriesPerSeed <= 0 {
		return fmt.Errorf("trajectories_per_seed must be positive, got %d", *c.TrajectoriesPerSeed)
	}
	for name, v := range map[string]*float64{
		"ending_percent":       c.EndingPercent,
		"starting_percent":     c.StartingPercent,
		"through_flow_percent": c.ThroughFlowPercent,
	} {
		if v != nil && (*v < 0 || *v > 100) {
			return fmt.Errorf("%s must be between 0 and 100, got %g", name, *v)
		}
	}
	return nil
}

// GetMinObservations returns the min_observations value or the default.
func (c *TuningConfig) GetMinObservations() int {
	if c.MinObservations == nil {
		return 3 // default
	}
	return *c.MinObservations
}

// GetGradLowerThreshold returns the grad_lower_threshold value or the default.
func (c *TuningConfig) GetGradLowerThreshold() float64 {
	if c.GradLowerThreshold == nil {
		return 0.0001 // default
	}
	return *c.GradLowerThreshold
}

// GetProjected returns the projected value or the default.
func (c *TuningConfig) GetProjected() bool {
	if c.Projected == nil {
		return false // default: unprojected lon/lat grid
	}
	return *c.Projected
}

// GetYears returns the years value or the default.
func (c *TuningConfig) GetYears() int {
	if c.Years == nil {
		return 50 // default
	}
	return *c.Years
}

// GetCorrectForConvergence returns the correct_for_convergence value or the default.
func (c *TuningConfig) GetCorrectForConvergence() bool {
	if c.CorrectForConvergence == nil {
		return true // default
	}
	return *c.CorrectForConvergence
}

// GetWorkers returns the workers value or the default.
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0 // default: one worker per CPU
	}
	return *c.Workers
}

// GetTrajectoriesPerSeed returns the trajectories_per_seed value or the default.
func (c *TuningConfig) GetTrajectoriesPerSeed() int {
	if c.TrajectoriesPerSeed == nil {
		return 1 // default
	}
	return *c.TrajectoriesPerSeed
}

// GetNonMovingDistance returns the non_moving_distance value or the default.
func (c *TuningConfig) GetNonMovingDistance() float64 {
	if c.NonMovingDistance == nil {
		return 20 // default, km over the horizon
	}
	return *c.NonMovingDistance
}

// GetSlowMovingDistance returns the slow_moving_distance value or the default.
func (c *TuningConfig) GetSlowMovingDistance() float64 {
	if c.SlowMovingDistance == nil {
		return 100 // default, km over the horizon
	}
	return *c.SlowMovingDistance
}

// GetEndingPercent returns the ending_percent value or the default.
func (c *TuningConfig) GetEndingPercent() float64 {
	if c.EndingPercent == nil {
		return 25 // default
	}
	return *c.EndingPercent
}

// GetStartingPercent returns the starting_percent value or the default.
func (c *TuningConfig) GetStartingPercent() float64 {
	if c.StartingPercent == nil {
		return 25 // default
	}
	return *c.StartingPercent
}

// GetThroughFlowPercent returns the through_flow_percent value or the default.
func (c *TuningConfig) GetThroughFlowPercent() float64 {
	if c.ThroughFlowPercent == nil {
		return 50 // default
	}
	return *c.ThroughFlowPercent
}

// GetDateLineCrossing returns the date_line_crossing value or the default.
func (c *TuningConfig) GetDateLineCrossing() bool {
	if c.DateLineCrossing == nil {
		return false // default
	}
	return *c.DateLineCrossing
}

// GetSinkSampleEpsilon returns the sink_sample_epsilon value or the default.
func (c *TuningConfig) GetSinkSampleEpsilon() float64 {
	if c.SinkSampleEpsilon == nil {
		return flowtopo.DefaultSinkSampleEpsilon
	}
	return *c.SinkSampleEpsilon
}

// Params converts the tuning config into pipeline parameters.
func (c *TuningConfig) Params() pipeline.Params {
	return pipeline.Params{
		MinObservations:       c.GetMinObservations(),
		GradLowerThreshold:    c.GetGradLowerThreshold(),
		Projected:             c.GetProjected(),
		CorrectForConvergence: c.GetCorrectForConvergence(),
		Workers:               c.GetWorkers(),
		Flow: flowtopo.Config{
			TrajectoriesPerSeed: c.GetTrajectoriesPerSeed(),
			Years:               c.GetYears(),
			NonMovingDistance:   c.GetNonMovingDistance(),
			SlowMovingDistance:  c.GetSlowMovingDistance(),
			EndingPercent:       c.GetEndingPercent(),
			StartingPercent:     c.GetStartingPercent(),
			ThroughFlowPercent:  c.GetThroughFlowPercent(),
			DateLineCrossing:    c.GetDateLineCrossing(),
			SinkSampleEpsilon:   c.GetSinkSampleEpsilon(),
		},
	}
}
