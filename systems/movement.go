package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/selection/components"
)

// FaceTarget points the heading straight at the target on the horizontal
// plane. The angle convention is atan2(dx, dz): zero faces +Z, movement is
// (sin, cos).
func FaceTarget(h *components.Heading, self, target components.Position) {
	h.Angle = math.Atan2(target.X-self.X, target.Z-self.Z)
}

// Wander perturbs the heading by a Gaussian turn with the given standard
// deviation. Used when no target is in sight.
func Wander(h *components.Heading, rng *rand.Rand, sigma float64) {
	h.Angle += sigma * rng.NormFloat64()
}

// Advance moves the position by speed along the heading, pins the vertical
// coordinate back to the resting height, and clamps every coordinate into
// [-bounds/2, bounds/2].
func Advance(pos *components.Position, h components.Heading, speed, size, bounds float64) {
	pos.X += speed * math.Sin(h.Angle)
	pos.Z += speed * math.Cos(h.Angle)
	pos.Y = size / 2

	half := bounds / 2
	pos.X = clamp(pos.X, -half, half)
	pos.Y = clamp(pos.Y, -half, half)
	pos.Z = clamp(pos.Z, -half, half)
}

// clamp restricts a value to [min, max].
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
