package main

import (
	"log/slog"

	"github.com/pthm-cable/selection/config"
	"github.com/pthm-cable/selection/sim"
)

// FitnessEvaluator scores parameter vectors by running headless
// simulations across multiple seeds.
type FitnessEvaluator struct {
	params   *ParamVector
	maxTicks int64
	seeds    []int64
	baseCfg  *config.Config

	lastQuality float64
}

// NewFitnessEvaluator creates an evaluator over the given seeds.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:   params,
		maxTicks: maxTicks,
		seeds:    seeds,
		baseCfg:  baseCfg,
	}
}

// Evaluate runs one simulation per seed with the candidate parameters and
// returns a fitness to minimize. Longer survival is better; a surviving
// population at the tick cap earns a bonus proportional to its size
// relative to the founding population.
func (e *FitnessEvaluator) Evaluate(raw []float64) float64 {
	clamped := e.params.Clamp(raw)

	cfg := *e.baseCfg
	e.params.ApplyToConfig(&cfg, clamped)
	if err := cfg.Validate(); err != nil {
		slog.Warn("candidate config rejected", "error", err)
		return 0 // worst fitness: no survival at all
	}

	var totalSurvival, totalQuality float64
	for _, seed := range e.seeds {
		survival, quality := e.runOnce(&cfg, seed)
		totalSurvival += survival
		totalQuality += quality
	}

	n := float64(len(e.seeds))
	meanSurvival := totalSurvival / n
	meanQuality := totalQuality / n
	e.lastQuality = meanQuality

	return -(meanSurvival * (1 + 0.2*meanQuality))
}

// LastQuality returns the population quality of the most recent evaluation.
func (e *FitnessEvaluator) LastQuality() float64 {
	return e.lastQuality
}

// runOnce runs a single headless simulation and returns the tick count
// survived plus the final population relative to the founding one.
func (e *FitnessEvaluator) runOnce(cfg *config.Config, seed int64) (survival, quality float64) {
	s, err := sim.New(cfg, sim.Options{Seed: seed})
	if err != nil {
		slog.Warn("failed to create evaluation sim", "seed", seed, "error", err)
		return 0, 0
	}
	defer s.Close()

	for s.Tick() < e.maxTicks {
		if !s.Step() {
			break
		}
	}

	survival = float64(s.Tick())
	quality = float64(s.Population()) / float64(cfg.World.InitialCreatures)
	return survival, quality
}
