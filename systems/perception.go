// Package systems implements the per-tick decision logic as pure functions
// over component values, keeping the ECS plumbing out of the hot path.
package systems

import (
	"math"

	"github.com/pthm-cable/selection/components"
)

// Target identifies what a creature moves toward this tick.
type Target uint8

const (
	TargetNone Target = iota
	TargetFood
	TargetMate
)

// Distance returns the straight Euclidean distance between two positions.
// The vertical coordinate counts: creatures rest at size/2 and food at its
// own height, so the metric matches what consumption and sight checks see.
func Distance(a, b components.Position) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dz := b.Z - a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Nearest returns the index of the position in candidates closest to self,
// and its distance. Equal distances resolve to the earliest index, so ties
// follow insertion order. Returns (-1, +Inf) for an empty slice.
func Nearest(self components.Position, candidates []components.Position) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range candidates {
		if d := Distance(self, c); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// NearestPeer is Nearest with one index excluded and an optional liveness
// mask, keeping a creature out of its own neighbor search and creatures
// that already starved this pass out of everyone's. A nil mask treats all
// candidates as alive.
func NearestPeer(self components.Position, selfIdx int, candidates []components.Position, alive []bool) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range candidates {
		if i == selfIdx {
			continue
		}
		if alive != nil && !alive[i] {
			continue
		}
		if d := Distance(self, c); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// SelectTarget applies the per-tick target policy. A creature that sees
// neither food nor a peer wanders. When both are visible and the peer is
// strictly closer, the creature courts the peer only if its energy exceeds
// the mating gate; otherwise it goes for food.
func SelectTarget(distFood, distPeer, sight, energy, mateEnergy float64) Target {
	if distFood > sight && distPeer > sight {
		return TargetNone
	}
	if distFood > distPeer && energy > mateEnergy {
		return TargetMate
	}
	return TargetFood
}

// MatingReach is the proximity threshold under which two creatures
// reproduce: half the sum of their sizes.
func MatingReach(a, b components.Genome) float64 {
	return (a.Size + b.Size) / 2
}
