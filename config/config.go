// Package config provides configuration loading and access for the trainer.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Evaluation speed modes.
const (
	ModeRealtime = "realtime"
	ModeBatched  = "batched"
)

// Operator names accepted in update.operators.
const (
	OpLerp   = "lerp"
	OpMutate = "mutate"
	OpEvolve = "evolve"
)

// Mutation policies accepted in update.mutate_policy.
const (
	MutateReplace = "replace"
	MutateBlend   = "blend"
)

// Config holds all trainer configuration parameters.
type Config struct {
	Network    NetworkConfig    `yaml:"network"`
	Population PopulationConfig `yaml:"population"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Selection  SelectionConfig  `yaml:"selection"`
	Update     UpdateConfig     `yaml:"update"`
	Parallel   ParallelConfig   `yaml:"parallel"`
	Env        EnvConfig        `yaml:"env"`
	Screen     ScreenConfig     `yaml:"screen"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Bookmarks  BookmarksConfig  `yaml:"bookmarks"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// NetworkConfig holds the controller topology.
type NetworkConfig struct {
	Inputs     int    `yaml:"inputs"`
	Hidden     int    `yaml:"hidden"`
	Outputs    int    `yaml:"outputs"`
	Activation string `yaml:"activation"` // "approx" or "exact"
}

// PopulationConfig holds population sizing.
type PopulationConfig struct {
	Size int `yaml:"size"`
}

// EvaluationConfig holds the evaluation window and pacing.
type EvaluationConfig struct {
	CycleTime  float64 `yaml:"cycle_time"`  // Seconds of simulated time per generation
	DT         float64 `yaml:"dt"`          // Seconds per tick
	Mode       string  `yaml:"mode"`        // "realtime" (1 tick per update) or "batched"
	BatchTicks int     `yaml:"batch_ticks"` // Ticks per update in batched mode
}

// SelectionConfig holds the champion slack constants.
type SelectionConfig struct {
	AcceptSlack float64 `yaml:"accept_slack"` // Added to a new champion's score
	RejectSlack float64 `yaml:"reject_slack"` // Added to the champion's score when not beaten
}

// UpdateConfig holds the operator chain applied to non-champions.
type UpdateConfig struct {
	Operators    []string `yaml:"operators"` // Subset of lerp, mutate, evolve; always applied in that order
	CopyRate     float64  `yaml:"copy_rate"`
	MutateRate   float64  `yaml:"mutate_rate"`
	EvolveRate   float64  `yaml:"evolve_rate"`
	MutatePolicy string   `yaml:"mutate_policy"` // "replace" or "blend"
}

// ParallelConfig holds worker settings.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold"` // Below this many individuals, step single-threaded
}

// EnvConfig holds the follow environment parameters.
type EnvConfig struct {
	SpawnMin     float64 `yaml:"spawn_min"`
	SpawnMax     float64 `yaml:"spawn_max"`
	HeightMin    float64 `yaml:"height_min"`
	HeightMax    float64 `yaml:"height_max"`
	TargetSpread float64 `yaml:"target_spread"`
	ForceScale   float64 `yaml:"force_scale"`
	Gravity      float64 `yaml:"gravity"`
	Drag         float64 `yaml:"drag"`
	BrakeFactor  float64 `yaml:"brake_factor"` // Max velocity fraction removed per second by the brake output
	Score        string  `yaml:"score"`        // "squared" or "euclidean"
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	Scale     float64 `yaml:"scale"` // Pixels per world unit
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow          int `yaml:"perf_window"`           // Generations averaged by the perf collector
	BookmarkHistorySize int `yaml:"bookmark_history_size"` // Generations of history kept by the bookmark detector
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	Breakthrough BreakthroughConfig `yaml:"breakthrough"`
	Stagnation   StagnationConfig   `yaml:"stagnation"`
	Collapse     CollapseConfig     `yaml:"collapse"`
}

// BreakthroughConfig triggers when the winner beats the rolling mean winner score by a factor.
type BreakthroughConfig struct {
	Ratio float64 `yaml:"ratio"` // winner <= mean * ratio
}

// StagnationConfig triggers after this many generations without a new champion.
type StagnationConfig struct {
	Generations int `yaml:"generations"`
}

// CollapseConfig triggers when this fraction of the population is degenerate.
type CollapseConfig struct {
	DegenerateFraction float64 `yaml:"degenerate_fraction"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32       float32 // Evaluation.DT as float32
	EvalTicks  int     // Ticks per evaluation window
	BurstTicks int     // Ticks per trainer update for the configured mode
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate rejects configurations the trainer cannot run.
func (c *Config) Validate() error {
	n := c.Network
	if n.Inputs <= 0 || n.Hidden <= 0 || n.Outputs <= 0 {
		return fmt.Errorf("network: layer sizes must be > 0, got %d-%d-%d", n.Inputs, n.Hidden, n.Outputs)
	}
	if c.Population.Size <= 0 {
		return fmt.Errorf("population: size must be > 0, got %d", c.Population.Size)
	}
	if c.Evaluation.DT <= 0 || c.Evaluation.CycleTime <= 0 {
		return fmt.Errorf("evaluation: dt and cycle_time must be > 0")
	}
	switch c.Evaluation.Mode {
	case ModeRealtime, ModeBatched:
	default:
		return fmt.Errorf("evaluation: unknown mode %q", c.Evaluation.Mode)
	}
	for _, op := range c.Update.Operators {
		switch op {
		case OpLerp, OpMutate, OpEvolve:
		default:
			return fmt.Errorf("update: unknown operator %q", op)
		}
	}
	for name, r := range map[string]float64{
		"copy_rate":   c.Update.CopyRate,
		"mutate_rate": c.Update.MutateRate,
		"evolve_rate": c.Update.EvolveRate,
	} {
		if r < 0 || r > 1 {
			return fmt.Errorf("update: %s must be in [0, 1], got %v", name, r)
		}
	}
	switch c.Update.MutatePolicy {
	case MutateReplace, MutateBlend:
	default:
		return fmt.Errorf("update: unknown mutate_policy %q", c.Update.MutatePolicy)
	}
	if c.Parallel.Workers < 0 {
		return fmt.Errorf("parallel: workers must be >= 0")
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call again after mutating evaluation settings at runtime.
func (c *Config) ComputeDerived() {
	c.Derived.DT32 = float32(c.Evaluation.DT)

	c.Derived.EvalTicks = int(c.Evaluation.CycleTime/c.Evaluation.DT + 0.5)
	if c.Derived.EvalTicks < 1 {
		c.Derived.EvalTicks = 1
	}

	c.Derived.BurstTicks = 1
	if c.Evaluation.Mode == ModeBatched && c.Evaluation.BatchTicks > 1 {
		c.Derived.BurstTicks = c.Evaluation.BatchTicks
	}
}

// HasOperator reports whether the update chain includes op.
func (c *Config) HasOperator(op string) bool {
	return slices.Contains(c.Update.Operators, op)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Clone returns a deep copy that can be edited independently.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Update.Operators = slices.Clone(c.Update.Operators)
	return &cp
}
