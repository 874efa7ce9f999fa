// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Traits    TraitsConfig    `yaml:"traits"`
	Energy    EnergyConfig    `yaml:"energy"`
	Mutation  MutationConfig  `yaml:"mutation"`
	Movement  MovementConfig  `yaml:"movement"`
	Camera    CameraConfig    `yaml:"camera"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds arena dimensions and starting populations.
// The arena is the square [-size/2, size/2] on the horizontal plane.
type WorldConfig struct {
	Size             float64 `yaml:"size"`
	InitialCreatures int     `yaml:"initial_creatures"`
	InitialFood      int     `yaml:"initial_food"`
}

// Range is a closed interval used for trait spawn ranges and mutation draws.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Span returns the width of the range.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// TraitsConfig holds the spawn ranges for the three heritable traits.
type TraitsConfig struct {
	Speed Range `yaml:"speed"`
	Size  Range `yaml:"size"`
	Sight Range `yaml:"sight"`
}

// EnergyConfig holds the energy economy constants.
// Drain per tick is 0.5*(size*size_factor)^3*(speed*speed_factor)^2 +
// sight*sight_factor, fixed at birth.
type EnergyConfig struct {
	Start       float64 `yaml:"start"`        // Energy at world-init spawn
	Food        float64 `yaml:"food"`         // Energy gained per food item
	Mate        float64 `yaml:"mate"`         // Child start energy; also the mating eligibility gate
	SpeedFactor float64 `yaml:"speed_factor"` // Drain formula scaling for speed
	SizeFactor  float64 `yaml:"size_factor"`  // Drain formula scaling for size
	SightFactor float64 `yaml:"sight_factor"` // Drain formula scaling for sight
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Chance float64 `yaml:"chance"` // Per-trait probability of an additive perturbation
}

// MovementConfig holds movement parameters.
type MovementConfig struct {
	WanderSigma float64 `yaml:"wander_sigma"` // Std dev of the random turn when no target is visible
}

// CameraConfig holds the one-time 3D camera setup for graphical mode.
type CameraConfig struct {
	Position [3]float64 `yaml:"position"`
	Target   [3]float64 `yaml:"target"`
	FovY     float64    `yaml:"fovy"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindowTicks int `yaml:"stats_window_ticks"`
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

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated;
// malformed configuration is rejected here rather than surfacing mid-simulation.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
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

	return cfg, nil
}

// Validate checks the configuration for values the simulation cannot run with.
func (c *Config) Validate() error {
	if c.World.Size <= 0 {
		return fmt.Errorf("world.size must be positive, got %v", c.World.Size)
	}
	if c.World.InitialCreatures < 1 {
		return fmt.Errorf("world.initial_creatures must be at least 1, got %d", c.World.InitialCreatures)
	}
	if c.World.InitialFood < 1 {
		return fmt.Errorf("world.initial_food must be at least 1, got %d", c.World.InitialFood)
	}

	for _, tr := range []struct {
		name string
		r    Range
	}{
		{"traits.speed", c.Traits.Speed},
		{"traits.size", c.Traits.Size},
		{"traits.sight", c.Traits.Sight},
	} {
		if tr.r.Min <= 0 {
			return fmt.Errorf("%s.min must be positive, got %v", tr.name, tr.r.Min)
		}
		if tr.r.Max < tr.r.Min {
			return fmt.Errorf("%s.max must be >= min, got [%v, %v]", tr.name, tr.r.Min, tr.r.Max)
		}
	}

	if c.Energy.Start <= 0 {
		return fmt.Errorf("energy.start must be positive, got %v", c.Energy.Start)
	}
	if c.Energy.Food < 0 {
		return fmt.Errorf("energy.food must be non-negative, got %v", c.Energy.Food)
	}
	if c.Energy.Mate <= 0 {
		return fmt.Errorf("energy.mate must be positive, got %v", c.Energy.Mate)
	}

	if c.Mutation.Chance < 0 || c.Mutation.Chance > 1 {
		return fmt.Errorf("mutation.chance must be in [0, 1], got %v", c.Mutation.Chance)
	}

	if c.Movement.WanderSigma < 0 {
		return fmt.Errorf("movement.wander_sigma must be non-negative, got %v", c.Movement.WanderSigma)
	}

	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		return fmt.Errorf("camera.fovy must be in (0, 180), got %v", c.Camera.FovY)
	}

	if c.Telemetry.StatsWindowTicks < 1 {
		return fmt.Errorf("telemetry.stats_window_ticks must be at least 1, got %d", c.Telemetry.StatsWindowTicks)
	}

	for i, v := range c.Camera.Position {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("camera.position[%d] is not finite", i)
		}
	}

	return nil
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
