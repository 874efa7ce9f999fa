// Package sim drives the natural-selection arena: creatures forage, court,
// reproduce, and starve inside a bounded square, one synchronous tick at a
// time. Entity state lives in an ark ECS world; all mutation happens on the
// single tick goroutine.
package sim

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/selection/components"
	"github.com/pthm-cable/selection/config"
	"github.com/pthm-cable/selection/telemetry"
)

// foodRestHeight is the fixed vertical coordinate of food items.
const foodRestHeight = 0.25

// Options configures a simulation run.
type Options struct {
	Seed      int64
	RunID     string
	StartedAt time.Time
	LogStats  bool
	OutputDir string

	// Store receives census appends when non-nil. The sim owns neither
	// the store's lifetime nor its format.
	Store telemetry.Store
}

// Sim owns the creature and food collections and advances them tick by tick.
type Sim struct {
	cfg *config.Config
	rng *rand.Rand

	world *ecs.World

	creatureMapper *ecs.Map5[
		components.Position,
		components.Heading,
		components.Genome,
		components.Energy,
		components.Organism,
	]
	creatureFilter *ecs.Filter5[
		components.Position,
		components.Heading,
		components.Genome,
		components.Energy,
		components.Organism,
	]
	foodMapper *ecs.Map2[components.Position, components.Food]
	foodFilter *ecs.Filter2[components.Position, components.Food]

	// Individual component mappers for lookups
	posMap     *ecs.Map1[components.Position]
	headingMap *ecs.Map1[components.Heading]
	genomeMap  *ecs.Map1[components.Genome]
	energyMap  *ecs.Map1[components.Energy]
	orgMap     *ecs.Map1[components.Organism]
	foodMap    *ecs.Map1[components.Food]

	// Creature lookup by stable ID (offspring references stay IDs)
	byID   map[uint32]ecs.Entity
	nextID uint32

	// Telemetry
	lineage   *telemetry.Lineage
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	store     telemetry.Store
	runID     string
	startedAt time.Time
	logStats  bool

	// State
	tick       int64
	population int
	foodCount  int
	deadCount  int
	extinct    bool
	seed       int64
}

// New constructs a simulation from validated configuration, spawns the
// initial population and food, and opens output files when configured.
func New(cfg *config.Config, opts Options) (*Sim, error) {
	s, err := newSim(cfg, opts)
	if err != nil {
		return nil, err
	}

	s.spawnInitialPopulation()
	s.spawnInitialFood()

	if s.output != nil {
		if err := s.output.WriteConfig(cfg); err != nil {
			slog.Warn("failed to write config snapshot", "error", err)
		}
	}

	return s, nil
}

// newSim builds an empty simulation without initial spawns. Tests use it
// directly to place creatures and food by hand.
func newSim(cfg *config.Config, opts Options) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	world := ecs.NewWorld()

	startedAt := opts.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir, startedAt)
	if err != nil {
		return nil, err
	}

	s := &Sim{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		world: world,
		creatureMapper: ecs.NewMap5[
			components.Position,
			components.Heading,
			components.Genome,
			components.Energy,
			components.Organism,
		](world),
		creatureFilter: ecs.NewFilter5[
			components.Position,
			components.Heading,
			components.Genome,
			components.Energy,
			components.Organism,
		](world),
		foodMapper: ecs.NewMap2[components.Position, components.Food](world),
		foodFilter: ecs.NewFilter2[components.Position, components.Food](world),
		posMap:     ecs.NewMap1[components.Position](world),
		headingMap: ecs.NewMap1[components.Heading](world),
		genomeMap:  ecs.NewMap1[components.Genome](world),
		energyMap:  ecs.NewMap1[components.Energy](world),
		orgMap:     ecs.NewMap1[components.Organism](world),
		foodMap:    ecs.NewMap1[components.Food](world),
		byID:       make(map[uint32]ecs.Entity),
		nextID:     1,
		lineage:    telemetry.NewLineage(),
		collector:  telemetry.NewCollector(cfg.Telemetry.StatsWindowTicks),
		output:     output,
		store:      opts.Store,
		runID:      opts.RunID,
		startedAt:  startedAt,
		logStats:   opts.LogStats,
		seed:       opts.Seed,
	}

	return s, nil
}

// Tick returns the number of completed ticks.
func (s *Sim) Tick() int64 {
	return s.tick
}

// Population returns the number of living creatures.
func (s *Sim) Population() int {
	return s.population
}

// FoodCount returns the number of food items, constant across ticks.
func (s *Sim) FoodCount() int {
	return s.foodCount
}

// DeadCount returns the number of creatures that have starved so far.
func (s *Sim) DeadCount() int {
	return s.deadCount
}

// Extinct reports whether the population has died out. A sim with an
// extinct population refuses to tick.
func (s *Sim) Extinct() bool {
	return s.extinct
}

// Bounds returns the arena edge length.
func (s *Sim) Bounds() float64 {
	return s.cfg.World.Size
}

// Lineage exposes the offspring tracker for inspection.
func (s *Sim) Lineage() *telemetry.Lineage {
	return s.lineage
}

// Close flushes the run summary and closes output files.
func (s *Sim) Close() error {
	s.saveRunSummary()

	if s.output != nil {
		return s.output.Close()
	}
	return nil
}

// EachCreature calls fn with each living creature's position and genome.
// Used by the rendering collaborator; dead creatures are never visited
// because removal happens before the tick returns.
func (s *Sim) EachCreature(fn func(pos components.Position, genome components.Genome)) {
	query := s.creatureFilter.Query()
	for query.Next() {
		pos, _, genome, energy, _ := query.Get()
		if !energy.Alive {
			continue
		}
		fn(*pos, *genome)
	}
}

// EachFood calls fn with each food item's position.
func (s *Sim) EachFood(fn func(pos components.Position)) {
	query := s.foodFilter.Query()
	for query.Next() {
		pos, _ := query.Get()
		fn(*pos)
	}
}
