package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/selection/components"
	"github.com/pthm-cable/selection/config"
)

func testTraits() config.TraitsConfig {
	return config.TraitsConfig{
		Speed: config.Range{Min: 0.05, Max: 0.15},
		Size:  config.Range{Min: 1.0, Max: 2.0},
		Sight: config.Range{Min: 15.0, Max: 25.0},
	}
}

func TestDeriveDrain(t *testing.T) {
	energy := config.EnergyConfig{SpeedFactor: 1.0, SizeFactor: 1.0, SightFactor: 0.01}
	g := components.Genome{Speed: 0.1, Size: 2.0, Sight: 20.0}

	// 0.5 * 2^3 * 0.1^2 + 20 * 0.01 = 0.04 + 0.2
	want := 0.24
	if got := DeriveDrain(g, energy); math.Abs(got-want) > 1e-12 {
		t.Errorf("DeriveDrain = %v, want %v", got, want)
	}
}

func TestDeriveDrainAppliesFactors(t *testing.T) {
	energy := config.EnergyConfig{SpeedFactor: 2.0, SizeFactor: 0.5, SightFactor: 0.1}
	g := components.Genome{Speed: 1.0, Size: 2.0, Sight: 10.0}

	// 0.5 * (2*0.5)^3 * (1*2)^2 + 10 * 0.1 = 2 + 1
	want := 3.0
	if got := DeriveDrain(g, energy); math.Abs(got-want) > 1e-12 {
		t.Errorf("DeriveDrain = %v, want %v", got, want)
	}
}

func TestRandomGenomeWithinRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	traits := testTraits()

	for i := 0; i < 100; i++ {
		g := RandomGenome(rng, traits)
		if g.Speed < traits.Speed.Min || g.Speed > traits.Speed.Max {
			t.Fatalf("speed %v outside spawn range", g.Speed)
		}
		if g.Size < traits.Size.Min || g.Size > traits.Size.Max {
			t.Fatalf("size %v outside spawn range", g.Size)
		}
		if g.Sight < traits.Sight.Min || g.Sight > traits.Sight.Max {
			t.Fatalf("sight %v outside spawn range", g.Sight)
		}
	}
}

func TestInheritTraitsComeFromParents(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := components.Genome{Speed: 0.05, Size: 1.0, Sight: 15.0}
	b := components.Genome{Speed: 0.15, Size: 2.0, Sight: 25.0}

	sawMixed := false
	for i := 0; i < 200; i++ {
		child := Inherit(rng, a, b)

		if child.Speed != a.Speed && child.Speed != b.Speed {
			t.Fatalf("speed %v matches neither parent", child.Speed)
		}
		if child.Size != a.Size && child.Size != b.Size {
			t.Fatalf("size %v matches neither parent", child.Size)
		}
		if child.Sight != a.Sight && child.Sight != b.Sight {
			t.Fatalf("sight %v matches neither parent", child.Sight)
		}

		// Traits are chosen independently, not copied wholesale from one parent
		fromA := child.Speed == a.Speed
		if (child.Size == a.Size) != fromA || (child.Sight == a.Sight) != fromA {
			sawMixed = true
		}
	}

	if !sawMixed {
		t.Error("200 children never mixed traits across parents")
	}
}

func TestMutateNeverApplies(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	traits := testTraits()
	g := components.Genome{Speed: 0.1, Size: 1.5, Sight: 20.0}

	for i := 0; i < 100; i++ {
		m := Mutate(rng, g, traits, 0.0)
		if m != g {
			t.Fatalf("chance 0 mutated genome: %+v -> %+v", g, m)
		}
	}
}

func TestMutateAlwaysApplies(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	traits := testTraits()
	g := components.Genome{Speed: 0.1, Size: 1.5, Sight: 20.0}

	for i := 0; i < 100; i++ {
		m := Mutate(rng, g, traits, 1.0)

		// Spawn range minimums are positive, so every trait must move up
		if m.Speed <= g.Speed || m.Size <= g.Size || m.Sight <= g.Sight {
			t.Fatalf("chance 1 left a trait unchanged: %+v -> %+v", g, m)
		}

		// Perturbation is bounded by the trait's spawn range
		if m.Speed > g.Speed+traits.Speed.Max || m.Size > g.Size+traits.Size.Max || m.Sight > g.Sight+traits.Sight.Max {
			t.Fatalf("perturbation exceeded spawn range: %+v -> %+v", g, m)
		}
	}
}

func TestMutateIsUnbounded(t *testing.T) {
	// Repeated mutation accumulates without a ceiling.
	rng := rand.New(rand.NewSource(9))
	traits := testTraits()
	g := components.Genome{Speed: 0.1, Size: 1.5, Sight: 20.0}

	for i := 0; i < 50; i++ {
		g = Mutate(rng, g, traits, 1.0)
	}

	if g.Sight <= traits.Sight.Max {
		t.Errorf("sight %v should have grown past its spawn ceiling %v", g.Sight, traits.Sight.Max)
	}
}
