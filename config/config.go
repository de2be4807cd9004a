// Package config loads the solver's run configuration from YAML (via
// viper, for env/flag overlay support) into a plain struct the rest of
// the solver consumes directly, never passing viper itself around.
//
// Grounded on github.com/niceyeti-tabular's tabular/reinforcement
// FromYaml: read the file with viper, then re-marshal/unmarshal through
// yaml.v3 into the target struct so the consuming packages never import
// viper themselves.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/routeforge/vrpcore/telemetry"
)

// TerminationConfig mirrors evolution.Composite's children in
// YAML-loadable form.
type TerminationConfig struct {
	MaxGenerations          int     `yaml:"max_generations"`
	MaxWallTimeSeconds       float64 `yaml:"max_wall_time_seconds"`
	CoVThreshold             float64 `yaml:"coefficient_of_variation_threshold"`
	CoVMinGenerations        int     `yaml:"coefficient_of_variation_min_generations"`
}

// PopulationConfig configures the initial population and its variant.
type PopulationConfig struct {
	MaxSize          int                `yaml:"max_size"`
	QuotaFraction    float64            `yaml:"quota_fraction"`
	MethodWeights    map[string]float64 `yaml:"method_weights"`
	Elitist          bool               `yaml:"elitist"`
	EliteSize        int                `yaml:"elite_size"`
	DiversitySize    int                `yaml:"diversity_size"`
	ExploitAfterGens int                `yaml:"exploit_after_generations"`
}

// HyperHeuristicConfig selects and parameterizes the hyper-heuristic
// variant.
type HyperHeuristicConfig struct {
	Variant string  `yaml:"variant"` // "static" or "dynamic"
	Epsilon float64 `yaml:"epsilon"`
	Alpha   float64 `yaml:"alpha"`
}

// Config is the complete, YAML-loadable configuration surface for one
// solve run.
type Config struct {
	Termination     TerminationConfig   `yaml:"termination"`
	Population      PopulationConfig    `yaml:"population"`
	HyperHeuristic   HyperHeuristicConfig `yaml:"hyper_heuristic"`
	RandomSeed       int64               `yaml:"random_seed"`
	Parallelism      int                 `yaml:"parallelism"`
	ParentsPerGen    int                 `yaml:"parents_per_generation"`
	MaxJobsPerRuin   int                 `yaml:"max_jobs_per_ruin"`
	MaxRoutesPerRuin int                 `yaml:"max_routes_per_ruin"`
	TelemetryMode    string              `yaml:"telemetry_mode"` // "none","basic","progress","full"
	// DashboardAddr is the HTTP address the live-progress websocket
	// dashboard listens on when TelemetryMode is "progress" or "full".
	DashboardAddr string `yaml:"dashboard_addr"`
}

// Default returns a Config with conservative, always-terminating
// defaults, suitable when no file is supplied.
func Default() Config {
	return Config{
		Termination: TerminationConfig{
			MaxGenerations:    200,
			MaxWallTimeSeconds: 30,
		},
		Population: PopulationConfig{
			MaxSize:       20,
			QuotaFraction: 0.5,
		},
		HyperHeuristic: HyperHeuristicConfig{
			Variant: "static",
		},
		RandomSeed:    1,
		Parallelism:   1,
		ParentsPerGen: 4,
		TelemetryMode: "none",
		DashboardAddr: ":8098",
	}
}

// Load reads path (YAML) via viper and unmarshals it into a Config
// seeded with Default() values, so a partial file only overrides the
// fields it sets.
func Load(path string) (Config, error) {
	cfg := Default()

	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	raw := map[string]interface{}{}
	if err := vp.Unmarshal(&raw); err != nil {
		return cfg, fmt.Errorf("config: unmarshal via viper: %w", err)
	}
	spec, err := yaml.Marshal(raw)
	if err != nil {
		return cfg, fmt.Errorf("config: remarshal: %w", err)
	}
	if err := yaml.Unmarshal(spec, &cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal into Config: %w", err)
	}
	return cfg, nil
}

// TelemetryModeValue maps the config's TelemetryMode string to telemetry.Mode.
func (c Config) TelemetryModeValue() telemetry.Mode {
	switch c.TelemetryMode {
	case "basic":
		return telemetry.ModeBasic
	case "progress":
		return telemetry.ModeOnlyProgress
	case "full":
		return telemetry.ModeFull
	default:
		return telemetry.ModeNone
	}
}
