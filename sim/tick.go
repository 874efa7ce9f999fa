package sim

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/selection/components"
	"github.com/pthm-cable/selection/systems"
	"github.com/pthm-cable/selection/telemetry"
)

// creatureRef is one membership-snapshot entry. The snapshot fixes which
// creatures act this tick; component state is read live, so creatures
// later in the pass see the moves of earlier ones.
type creatureRef struct {
	entity ecs.Entity
	id     uint32
}

// Step advances the simulation by one tick: every creature drains, perceives,
// eats, and moves; matings resolve into births; the starved are removed;
// eaten food is replaced; and the census is emitted. Returns false once the
// population is extinct.
func (s *Sim) Step() bool {
	if s.population == 0 {
		if !s.extinct {
			s.extinct = true
			slog.Warn("population extinct", "tick", s.tick, "dead_total", s.deadCount)
		}
		return false
	}

	creatures := s.snapshotCreatures()
	foods := s.snapshotFood()

	creaturePositions := make([]components.Position, len(creatures))
	for i, cr := range creatures {
		creaturePositions[i] = *s.posMap.Get(cr.entity)
	}
	foodPositions := make([]components.Position, len(foods))
	for i, f := range foods {
		foodPositions[i] = *s.posMap.Get(f)
	}

	// Liveness mask over the snapshot. A creature that starves during the
	// pass drops out of later creatures' perception immediately, even
	// though its entity is not removed until tick end.
	aliveMask := make([]bool, len(creatures))
	for i := range aliveMask {
		aliveMask[i] = true
	}

	rows := make([]telemetry.CensusRow, 0, len(creatures))
	for i, cr := range creatures {
		s.stepCreature(i, cr, creatures, foods, creaturePositions, foodPositions, aliveMask)
		creaturePositions[i] = *s.posMap.Get(cr.entity)
		aliveMask[i] = s.energyMap.Get(cr.entity).Alive
		rows = append(rows, s.censusRow(cr))
	}

	s.processMatings(creatures)
	s.removeDead(creatures)
	s.replenishFood(foods)

	s.tick++
	s.emitTelemetry(rows)

	return s.population > 0
}

// snapshotCreatures fixes the set of creatures that act this tick.
// Creatures born during the tick are excluded until the next one.
func (s *Sim) snapshotCreatures() []creatureRef {
	refs := make([]creatureRef, 0, s.population)
	query := s.creatureFilter.Query()
	for query.Next() {
		_, _, _, _, org := query.Get()
		refs = append(refs, creatureRef{entity: query.Entity(), id: org.ID})
	}
	return refs
}

// snapshotFood fixes the set of food items visible this tick. Replacement
// food spawned at tick end is excluded until the next one.
func (s *Sim) snapshotFood() []ecs.Entity {
	entities := make([]ecs.Entity, 0, s.foodCount)
	query := s.foodFilter.Query()
	for query.Next() {
		entities = append(entities, query.Entity())
	}
	return entities
}

// stepCreature runs one creature's tick: drain, perceive, select a target,
// eat, steer, advance, and check for starvation.
func (s *Sim) stepCreature(idx int, cr creatureRef, creatures []creatureRef, foods []ecs.Entity, creaturePositions, foodPositions []components.Position, aliveMask []bool) {
	pos := s.posMap.Get(cr.entity)
	heading := s.headingMap.Get(cr.entity)
	genome := s.genomeMap.Get(cr.entity)
	energy := s.energyMap.Get(cr.entity)
	org := s.orgMap.Get(cr.entity)

	energy.Value -= energy.Drain

	foodIdx, distFood := systems.Nearest(*pos, foodPositions)
	peerIdx, distPeer := systems.NearestPeer(*pos, idx, creaturePositions, aliveMask)

	org.MateID = 0
	target := systems.SelectTarget(distFood, distPeer, genome.Sight, energy.Value, s.cfg.Energy.Mate)

	// A creature eats whenever food is within reach, whether or not it was
	// chasing it. Two creatures reaching the same item in one tick both
	// gain energy; the item is replaced once.
	if foodIdx >= 0 && distFood <= genome.Size/2 {
		energy.Value += s.cfg.Energy.Food
		s.foodMap.Get(foods[foodIdx]).Eaten = true
	}

	switch target {
	case systems.TargetMate:
		org.MateID = creatures[peerIdx].id
		systems.FaceTarget(heading, *pos, creaturePositions[peerIdx])
	case systems.TargetFood:
		// foodIdx is -1 only in hand-built worlds with no food at all;
		// validated configs always carry at least one item.
		if foodIdx >= 0 {
			systems.FaceTarget(heading, *pos, foodPositions[foodIdx])
			break
		}
		systems.Wander(heading, s.rng, s.cfg.Movement.WanderSigma)
	default:
		systems.Wander(heading, s.rng, s.cfg.Movement.WanderSigma)
	}

	systems.Advance(pos, *heading, genome.Speed, genome.Size, s.cfg.World.Size)

	if energy.Value <= 0 {
		energy.Alive = false
	}
}

// processMatings resolves this tick's courtships into births. A creature
// that selected a mate reproduces when the partner ends the tick within
// mating reach; the partner's own choice does not matter, so a mutual
// pair can yield two children. The child spawns at the initiating
// parent's position and both parents split the mating cost.
func (s *Sim) processMatings(creatures []creatureRef) {
	for _, cr := range creatures {
		org := s.orgMap.Get(cr.entity)
		if org.MateID == 0 {
			continue
		}

		mateEntity, ok := s.byID[org.MateID]
		if !ok {
			continue
		}

		pos := s.posMap.Get(cr.entity)
		matePos := s.posMap.Get(mateEntity)
		genome := s.genomeMap.Get(cr.entity)
		mateGenome := s.genomeMap.Get(mateEntity)

		if systems.Distance(*pos, *matePos) >= systems.MatingReach(*genome, *mateGenome) {
			continue
		}

		childGenome := systems.Mutate(
			s.rng,
			systems.Inherit(s.rng, *genome, *mateGenome),
			s.cfg.Traits,
			s.cfg.Mutation.Chance,
		)

		child := s.spawnCreature(pos.X, pos.Z, childGenome, s.cfg.Energy.Mate, cr.id, org.MateID)
		childID := s.orgMap.Get(child).ID

		cost := s.cfg.Energy.Mate / 2
		s.energyMap.Get(cr.entity).Value -= cost
		s.energyMap.Get(mateEntity).Value -= cost

		s.lineage.RecordChild(cr.id, childID)
		s.lineage.RecordChild(org.MateID, childID)
		s.collector.RecordBirth()
	}
}

// removeDead deletes creatures that starved this tick. Mating costs applied
// after the movement pass can push a parent below zero; such a parent
// survives until the next tick's drain check, matching the one-tick grace
// the step order implies.
func (s *Sim) removeDead(creatures []creatureRef) {
	for _, cr := range creatures {
		if s.energyMap.Get(cr.entity).Alive {
			continue
		}
		s.removeCreature(cr.entity, cr.id)
		s.collector.RecordDeath()
	}
}

// replenishFood replaces every item eaten this tick, keeping the food
// count constant.
func (s *Sim) replenishFood(foods []ecs.Entity) {
	for _, f := range foods {
		if !s.foodMap.Get(f).Eaten {
			continue
		}
		s.replaceFood(f)
		s.collector.RecordFoodConsumed()
	}
}

// censusRow captures one creature's entry after its step. Children counts
// exclude births resolved later in the same tick.
func (s *Sim) censusRow(cr creatureRef) telemetry.CensusRow {
	genome := s.genomeMap.Get(cr.entity)
	org := s.orgMap.Get(cr.entity)

	return telemetry.CensusRow{
		Tick:       s.tick,
		CreatureID: cr.id,
		Speed:      genome.Speed,
		Size:       genome.Size,
		Sight:      genome.Sight,
		Children:   s.lineage.ChildCount(cr.id),
		HasMate:    org.MateID != 0,
	}
}
