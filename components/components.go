// Package components defines ECS components for the simulation.
package components

// Position represents an entity's world position. X and Z span the
// horizontal plane; Y is the resting height (half the creature's edge
// length, or the fixed food height) and is not a physics degree of freedom.
type Position struct {
	X, Y, Z float64
}

// Heading is the direction of travel in radians on the horizontal plane.
type Heading struct {
	Angle float64
}

// Genome holds the three heritable traits. Values are fixed for the
// creature's lifetime; evolution happens only through inheritance and
// mutation at birth.
type Genome struct {
	Speed float64
	Size  float64
	Sight float64
}

// Energy holds a creature's energy state. Drain is derived from the
// genome once at birth and never changes.
type Energy struct {
	Value float64
	Drain float64
	Alive bool
}

// Organism holds identity and transient per-tick mating state.
// MateID is the entity ID of the reproduction target selected this tick
// (0 = none); it is cleared and recomputed every tick.
type Organism struct {
	ID     uint32
	MateID uint32
}

// Food marks a stationary resource point. Eaten is set by the creature
// that consumes it and resolved by the world in the same tick.
type Food struct {
	Eaten bool
}
