package systems

import (
	"math/rand"

	"github.com/pthm-cable/selection/components"
	"github.com/pthm-cable/selection/config"
)

// DeriveDrain computes the fixed per-tick energy cost from a genome:
// 0.5*(size*sizeFactor)^3 * (speed*speedFactor)^2 + sight*sightFactor.
// Big, fast bodies pay cubically and quadratically; sight is nearly free.
func DeriveDrain(g components.Genome, energy config.EnergyConfig) float64 {
	size := g.Size * energy.SizeFactor
	speed := g.Speed * energy.SpeedFactor
	return 0.5*size*size*size*speed*speed + g.Sight*energy.SightFactor
}

// RandomGenome draws each trait uniformly from its configured spawn range.
func RandomGenome(rng *rand.Rand, traits config.TraitsConfig) components.Genome {
	return components.Genome{
		Speed: uniformIn(rng, traits.Speed),
		Size:  uniformIn(rng, traits.Size),
		Sight: uniformIn(rng, traits.Sight),
	}
}

// Inherit builds a child genome by choosing each trait independently from
// one of the two parents. There is no blending and no whole-parent copy.
func Inherit(rng *rand.Rand, a, b components.Genome) components.Genome {
	child := components.Genome{Speed: a.Speed, Size: a.Size, Sight: a.Sight}
	if rng.Intn(2) == 1 {
		child.Speed = b.Speed
	}
	if rng.Intn(2) == 1 {
		child.Size = b.Size
	}
	if rng.Intn(2) == 1 {
		child.Sight = b.Sight
	}
	return child
}

// Mutate perturbs each trait independently with the given chance, adding a
// draw from that trait's spawn range. The addition is unclamped: repeated
// mutation can push a trait well past its spawn range.
func Mutate(rng *rand.Rand, g components.Genome, traits config.TraitsConfig, chance float64) components.Genome {
	if rng.Float64() < chance {
		g.Speed += uniformIn(rng, traits.Speed)
	}
	if rng.Float64() < chance {
		g.Size += uniformIn(rng, traits.Size)
	}
	if rng.Float64() < chance {
		g.Sight += uniformIn(rng, traits.Sight)
	}
	return g
}

// uniformIn draws uniformly from [r.Min, r.Max).
func uniformIn(rng *rand.Rand, r config.Range) float64 {
	return r.Min + rng.Float64()*r.Span()
}
