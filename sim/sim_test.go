package sim

import (
	"context"
	"math"
	"testing"

	"github.com/pthm-cable/selection/components"
	"github.com/pthm-cable/selection/config"
	"github.com/pthm-cable/selection/systems"
	"github.com/pthm-cable/selection/telemetry"
)

const floatTol = 1e-9

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	// Deterministic offspring traits for assertions
	cfg.Mutation.Chance = 0
	return cfg
}

// newEmptySim builds a sim with no creatures or food so tests can place
// entities by hand.
func newEmptySim(t *testing.T, cfg *config.Config, opts Options) *Sim {
	t.Helper()
	s, err := newSim(cfg, opts)
	if err != nil {
		t.Fatalf("newSim: %v", err)
	}
	return s
}

func TestNewSpawnsConfiguredPopulation(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, Options{Seed: 42})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := s.Population(); got != cfg.World.InitialCreatures {
		t.Errorf("population = %d, want %d", got, cfg.World.InitialCreatures)
	}
	if got := s.FoodCount(); got != cfg.World.InitialFood {
		t.Errorf("food count = %d, want %d", got, cfg.World.InitialFood)
	}

	half := cfg.World.Size / 2
	s.EachCreature(func(pos components.Position, genome components.Genome) {
		if pos.X < -half || pos.X > half || pos.Z < -half || pos.Z > half {
			t.Errorf("creature spawned out of bounds at (%v, %v)", pos.X, pos.Z)
		}
		if math.Abs(pos.Y-genome.Size/2) > floatTol {
			t.Errorf("creature rest height = %v, want %v", pos.Y, genome.Size/2)
		}
	})
}

func TestStepDrainsExactEnergy(t *testing.T) {
	cfg := testConfig(t)
	s := newEmptySim(t, cfg, Options{Seed: 1})

	genome := components.Genome{Speed: 0.1, Size: 1.5, Sight: 20}
	e := s.spawnCreature(0, 0, genome, 500, 0, 0)
	// Food within sight but out of eating reach, so the creature chases
	// without gaining energy.
	s.spawnFood(10, 0)

	s.Step()

	want := 500 - systems.DeriveDrain(genome, cfg.Energy)
	if got := s.energyMap.Get(e).Value; math.Abs(got-want) > floatTol {
		t.Errorf("energy after one tick = %v, want %v", got, want)
	}
}

func TestEatingGainsEnergyAndReplacesFood(t *testing.T) {
	cfg := testConfig(t)
	s := newEmptySim(t, cfg, Options{Seed: 1})

	genome := components.Genome{Speed: 0.1, Size: 2, Sight: 20}
	e := s.spawnCreature(0, 0, genome, 500, 0, 0)
	// Within eating reach of size/2 = 1 even accounting for the height gap.
	s.spawnFood(0.2, 0)

	before := s.FoodCount()
	s.Step()

	want := 500 - systems.DeriveDrain(genome, cfg.Energy) + cfg.Energy.Food
	if got := s.energyMap.Get(e).Value; math.Abs(got-want) > floatTol {
		t.Errorf("energy after eating = %v, want %v", got, want)
	}

	if got := s.FoodCount(); got != before {
		t.Errorf("food count after eating = %d, want %d", got, before)
	}

	// The replacement is a fresh, uneaten item.
	eaten := 0
	total := 0
	query := s.foodFilter.Query()
	for query.Next() {
		_, food := query.Get()
		total++
		if food.Eaten {
			eaten++
		}
	}
	if total != before || eaten != 0 {
		t.Errorf("food state after replacement: total=%d eaten=%d, want total=%d eaten=0", total, eaten, before)
	}
}

func TestCreatureMovesTowardFood(t *testing.T) {
	cfg := testConfig(t)
	s := newEmptySim(t, cfg, Options{Seed: 1})

	genome := components.Genome{Speed: 0.1, Size: 1, Sight: 20}
	e := s.spawnCreature(0, 0, genome, 500, 0, 0)
	s.spawnFood(10, 0)

	s.Step()

	pos := s.posMap.Get(e)
	if math.Abs(pos.X-genome.Speed) > floatTol {
		t.Errorf("pos.X after step = %v, want %v", pos.X, genome.Speed)
	}
	if math.Abs(pos.Z) > floatTol {
		t.Errorf("pos.Z after step = %v, want 0", pos.Z)
	}
}

func TestOneSidedMatingProducesOneChild(t *testing.T) {
	cfg := testConfig(t)
	s := newEmptySim(t, cfg, Options{Seed: 1})

	genomeA := components.Genome{Speed: 0.1, Size: 1.5, Sight: 20}
	genomeB := components.Genome{Speed: 0.12, Size: 1.8, Sight: 18}
	// A clears the mating gate; B does not, so only A initiates.
	a := s.spawnCreature(0, 0, genomeA, 400, 0, 0)
	b := s.spawnCreature(1, 0, genomeB, 80, 0, 0)
	// Food far outside sight so both creatures court or wander.
	s.spawnFood(60, 60)

	s.Step()

	if got := s.Population(); got != 3 {
		t.Fatalf("population after mating = %d, want 3", got)
	}

	child, ok := s.byID[3]
	if !ok {
		t.Fatal("child entity not registered")
	}

	childEnergy := s.energyMap.Get(child)
	if math.Abs(childEnergy.Value-cfg.Energy.Mate) > floatTol {
		t.Errorf("child energy = %v, want %v", childEnergy.Value, cfg.Energy.Mate)
	}

	childGenome := s.genomeMap.Get(child)
	for _, tr := range []struct {
		name    string
		got     float64
		parentA float64
		parentB float64
	}{
		{"speed", childGenome.Speed, genomeA.Speed, genomeB.Speed},
		{"size", childGenome.Size, genomeA.Size, genomeB.Size},
		{"sight", childGenome.Sight, genomeA.Sight, genomeB.Sight},
	} {
		if tr.got != tr.parentA && tr.got != tr.parentB {
			t.Errorf("child %s = %v, want one of %v or %v", tr.name, tr.got, tr.parentA, tr.parentB)
		}
	}

	// Child spawns where the initiating parent ended the tick.
	parentPos := s.posMap.Get(a)
	childPos := s.posMap.Get(child)
	if childPos.X != parentPos.X || childPos.Z != parentPos.Z {
		t.Errorf("child at (%v, %v), want parent position (%v, %v)",
			childPos.X, childPos.Z, parentPos.X, parentPos.Z)
	}
	if math.Abs(childPos.Y-childGenome.Size/2) > floatTol {
		t.Errorf("child rest height = %v, want %v", childPos.Y, childGenome.Size/2)
	}

	// Both parents pay half the mating cost.
	cost := cfg.Energy.Mate / 2
	wantA := 400 - systems.DeriveDrain(genomeA, cfg.Energy) - cost
	wantB := 80 - systems.DeriveDrain(genomeB, cfg.Energy) - cost
	if got := s.energyMap.Get(a).Value; math.Abs(got-wantA) > floatTol {
		t.Errorf("initiator energy = %v, want %v", got, wantA)
	}
	if got := s.energyMap.Get(b).Value; math.Abs(got-wantB) > floatTol {
		t.Errorf("partner energy = %v, want %v", got, wantB)
	}

	if got := s.Lineage().ChildCount(1); got != 1 {
		t.Errorf("initiator child count = %d, want 1", got)
	}
	if got := s.Lineage().ChildCount(2); got != 1 {
		t.Errorf("partner child count = %d, want 1", got)
	}
}

func TestMutualMatingProducesTwoChildren(t *testing.T) {
	cfg := testConfig(t)
	s := newEmptySim(t, cfg, Options{Seed: 1})

	genome := components.Genome{Speed: 0.1, Size: 1.5, Sight: 20}
	a := s.spawnCreature(0, 0, genome, 400, 0, 0)
	b := s.spawnCreature(1, 0, genome, 400, 0, 0)
	s.spawnFood(60, 60)

	s.Step()

	if got := s.Population(); got != 4 {
		t.Fatalf("population after mutual mating = %d, want 4", got)
	}

	// Each pairing debits both partners, so two pairings cost a full
	// mate charge per parent.
	want := 400 - systems.DeriveDrain(genome, cfg.Energy) - cfg.Energy.Mate
	if got := s.energyMap.Get(a).Value; math.Abs(got-want) > floatTol {
		t.Errorf("parent a energy = %v, want %v", got, want)
	}
	if got := s.energyMap.Get(b).Value; math.Abs(got-want) > floatTol {
		t.Errorf("parent b energy = %v, want %v", got, want)
	}

	if got := s.Lineage().ChildCount(1); got != 2 {
		t.Errorf("parent a child count = %d, want 2", got)
	}
}

func TestStarvedPeerInvisibleLaterInPass(t *testing.T) {
	cfg := testConfig(t)
	s := newEmptySim(t, cfg, Options{Seed: 1})

	// First creature starves on its own step; the second, stepped after
	// it, must not perceive or court the corpse.
	starving := components.Genome{Speed: 0.1, Size: 1.5, Sight: 20}
	courting := components.Genome{Speed: 0.1, Size: 1.5, Sight: 20}
	s.spawnCreature(0, 0, starving, 0.0001, 0, 0)
	b := s.spawnCreature(1.2, 0, courting, 400, 0, 0)
	// Food far outside sight so the survivor would court if it saw a peer.
	s.spawnFood(60, 60)

	s.Step()

	if got := s.Population(); got != 1 {
		t.Fatalf("population after tick = %d, want 1 (no mating with the dead)", got)
	}
	if got := s.Lineage().ChildCount(1); got != 0 {
		t.Errorf("dead creature credited with %d children, want 0", got)
	}
	if got := s.Lineage().ChildCount(2); got != 0 {
		t.Errorf("survivor credited with %d children, want 0", got)
	}
	// The survivor found no target, so it wandered instead of courting.
	if got := s.orgMap.Get(b).MateID; got != 0 {
		t.Errorf("survivor mate ID = %d, want 0", got)
	}
	want := 400 - systems.DeriveDrain(courting, cfg.Energy)
	if got := s.energyMap.Get(b).Value; math.Abs(got-want) > floatTol {
		t.Errorf("survivor energy = %v, want %v (no mating cost)", got, want)
	}
}

func TestStarvationRemovesCreature(t *testing.T) {
	cfg := testConfig(t)
	s := newEmptySim(t, cfg, Options{Seed: 1})

	genome := components.Genome{Speed: 0.1, Size: 1, Sight: 20}
	s.spawnCreature(0, 0, genome, 0.0001, 0, 0)
	s.spawnFood(10, 0)

	alive := s.Step()

	if alive {
		t.Error("Step reported survivors after the only creature starved")
	}
	if got := s.Population(); got != 0 {
		t.Errorf("population = %d, want 0", got)
	}
	if got := s.DeadCount(); got != 1 {
		t.Errorf("dead count = %d, want 1", got)
	}
	if _, ok := s.byID[1]; ok {
		t.Error("dead creature still in ID index")
	}
	// Lineage records outlive the creature.
	if s.Lineage().Get(1) == nil {
		t.Error("lineage record dropped on death")
	}
}

func TestExtinctSimRefusesToTick(t *testing.T) {
	cfg := testConfig(t)
	s := newEmptySim(t, cfg, Options{Seed: 1})
	s.spawnFood(0, 0)

	if s.Step() {
		t.Error("Step returned true with no creatures")
	}
	if !s.Extinct() {
		t.Error("sim not marked extinct")
	}
	if got := s.Tick(); got != 0 {
		t.Errorf("tick advanced to %d during extinction", got)
	}
}

// captureStore records census appends for assertions.
type captureStore struct {
	rows  []telemetry.CensusRow
	runID string
}

func (c *captureStore) Init(ctx context.Context) error { return nil }

func (c *captureStore) AppendCensus(ctx context.Context, runID string, rows []telemetry.CensusRow) error {
	c.runID = runID
	c.rows = append(c.rows, rows...)
	return nil
}

func (c *captureStore) SaveRunSummary(ctx context.Context, summary telemetry.RunSummary) error {
	return nil
}

func (c *captureStore) Close() error { return nil }

func TestCensusEmittedPerTick(t *testing.T) {
	cfg := testConfig(t)
	store := &captureStore{}
	s := newEmptySim(t, cfg, Options{Seed: 1, RunID: "run-1", Store: store})

	genomeA := components.Genome{Speed: 0.1, Size: 1.5, Sight: 20}
	genomeB := components.Genome{Speed: 0.12, Size: 1.8, Sight: 18}
	s.spawnCreature(-5, 0, genomeA, 500, 0, 0)
	s.spawnCreature(5, 0, genomeB, 500, 0, 0)
	s.spawnFood(10, 0)

	s.Step()

	if store.runID != "run-1" {
		t.Errorf("census run ID = %q, want %q", store.runID, "run-1")
	}
	if len(store.rows) != 2 {
		t.Fatalf("census rows = %d, want 2", len(store.rows))
	}

	first := store.rows[0]
	if first.Tick != 0 || first.CreatureID != 1 {
		t.Errorf("first row = tick %d creature %d, want tick 0 creature 1", first.Tick, first.CreatureID)
	}
	if first.Speed != genomeA.Speed || first.Size != genomeA.Size || first.Sight != genomeA.Sight {
		t.Errorf("first row traits = (%v, %v, %v), want genome values", first.Speed, first.Size, first.Sight)
	}

	s.Step()
	if len(store.rows) != 4 {
		t.Errorf("census rows after two ticks = %d, want 4", len(store.rows))
	}
	if got := store.rows[2].Tick; got != 1 {
		t.Errorf("second tick rows carry tick %d, want 1", got)
	}
}

func TestDyingCreatureStillCounted(t *testing.T) {
	cfg := testConfig(t)
	store := &captureStore{}
	s := newEmptySim(t, cfg, Options{Seed: 1, Store: store})

	genome := components.Genome{Speed: 0.1, Size: 1, Sight: 20}
	s.spawnCreature(0, 0, genome, 0.0001, 0, 0)
	s.spawnFood(10, 0)

	s.Step()

	// The creature starved this tick but still appears in the census.
	if len(store.rows) != 1 {
		t.Fatalf("census rows = %d, want 1", len(store.rows))
	}
}

func TestBoundsHoldOverManyTicks(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, Options{Seed: 7})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	half := cfg.World.Size / 2
	for i := 0; i < 200 && !s.Extinct(); i++ {
		s.Step()
		s.EachCreature(func(pos components.Position, genome components.Genome) {
			if pos.X < -half-floatTol || pos.X > half+floatTol ||
				pos.Z < -half-floatTol || pos.Z > half+floatTol {
				t.Fatalf("creature escaped arena at tick %d: (%v, %v)", s.Tick(), pos.X, pos.Z)
			}
		})
		if got := s.FoodCount(); got != cfg.World.InitialFood {
			t.Fatalf("food count drifted to %d at tick %d", got, s.Tick())
		}
	}
}
