// Package main provides CMA-ES search for simulation parameters that keep
// the creature population alive for as long as possible.
package main

import (
	"math"

	"github.com/pthm-cable/selection/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters. Trait
// spawn ranges stay locked so tuning shapes the environment rather than
// the creatures.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "food_energy", Path: "energy.food", Min: 10, Max: 200, Default: 50},
			{Name: "mate_energy", Path: "energy.mate", Min: 20, Max: 300, Default: 100},
			{Name: "sight_factor", Path: "energy.sight_factor", Min: 0.001, Max: 0.1, Default: 0.01},
			{Name: "mutation_chance", Path: "mutation.chance", Min: 0, Max: 0.5, Default: 0.05},
			{Name: "initial_food", Path: "world.initial_food", Min: 10, Max: 200, Default: 40},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies clamped parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	cfg.Energy.Food = values[0]
	cfg.Energy.Mate = values[1]
	cfg.Energy.SightFactor = values[2]
	cfg.Mutation.Chance = values[3]
	cfg.World.InitialFood = int(math.Round(values[4]))
}
