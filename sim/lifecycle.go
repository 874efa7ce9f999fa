package sim

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/selection/components"
	"github.com/pthm-cable/selection/systems"
)

// spawnInitialPopulation creates the founding creatures with random genomes
// at random arena positions.
func (s *Sim) spawnInitialPopulation() {
	for i := 0; i < s.cfg.World.InitialCreatures; i++ {
		genome := systems.RandomGenome(s.rng, s.cfg.Traits)
		x, z := s.randomArenaPoint()
		s.spawnCreature(x, z, genome, s.cfg.Energy.Start, 0, 0)
	}

	slog.Info("spawned initial population",
		"creatures", s.cfg.World.InitialCreatures,
	)
}

// spawnInitialFood seeds the arena with food items. The food count stays
// fixed for the lifetime of the run; eaten items are replaced in place.
func (s *Sim) spawnInitialFood() {
	for i := 0; i < s.cfg.World.InitialFood; i++ {
		x, z := s.randomArenaPoint()
		s.spawnFood(x, z)
	}
}

// spawnCreature adds a creature entity at (x, z) with the given genome and
// starting energy, registers it in the ID index and the lineage tracker,
// and returns the entity. Parent IDs of 0 mark a founding creature.
func (s *Sim) spawnCreature(x, z float64, genome components.Genome, energy float64, parentA, parentB uint32) ecs.Entity {
	id := s.nextID
	s.nextID++

	entity := s.creatureMapper.NewEntity(
		&components.Position{X: x, Y: genome.Size / 2, Z: z},
		&components.Heading{Angle: s.rng.Float64() * 2 * math.Pi},
		&genome,
		&components.Energy{
			Value: energy,
			Drain: systems.DeriveDrain(genome, s.cfg.Energy),
			Alive: true,
		},
		&components.Organism{ID: id},
	)

	s.byID[id] = entity
	s.lineage.Register(id, s.tick, parentA, parentB)
	s.population++

	return entity
}

// spawnFood adds a food entity at (x, z).
func (s *Sim) spawnFood(x, z float64) ecs.Entity {
	entity := s.foodMapper.NewEntity(
		&components.Position{X: x, Y: foodRestHeight, Z: z},
		&components.Food{},
	)
	s.foodCount++
	return entity
}

// removeCreature deletes a creature entity and its ID index entry. The
// lineage record is kept so offspring counts survive the death.
func (s *Sim) removeCreature(entity ecs.Entity, id uint32) {
	delete(s.byID, id)
	s.creatureMapper.Remove(entity)
	s.population--
	s.deadCount++
}

// replaceFood removes an eaten food item and spawns a fresh one at a
// random position, keeping the arena's food count constant.
func (s *Sim) replaceFood(entity ecs.Entity) {
	s.foodMapper.Remove(entity)
	s.foodCount--
	x, z := s.randomArenaPoint()
	s.spawnFood(x, z)
}

// randomArenaPoint returns uniform horizontal coordinates inside the arena.
func (s *Sim) randomArenaPoint() (x, z float64) {
	half := s.cfg.World.Size / 2
	x = s.rng.Float64()*s.cfg.World.Size - half
	z = s.rng.Float64()*s.cfg.World.Size - half
	return x, z
}
