// Package physics provides a small 2D rigid-body simulation: bodies with
// convex shapes, a uniform-grid broad-phase, SAT narrow-phase, impulse
// contact resolution, fixed joints and resting-body detection.
//
// The coordinate system is y-up. Rotations are in radians, counter-clockwise.
package physics

import (
	"errors"
	"math"
)

const epsilon = 1e-6

var (
	// ErrUnknownBody is returned when removing a body the world does not hold.
	ErrUnknownBody = errors.New("physics: body not in world")
	// ErrUnknownJoint is returned when removing a joint the world does not hold.
	ErrUnknownJoint = errors.New("physics: joint not in world")
)

// Settings holds the tunables of a World.
type Settings struct {
	Gravity    Vector
	TimeStep   float64 // seconds per Step
	Iterations int     // contact solver passes per step

	CellSize float64 // broad-phase grid cell size

	// Positional correction: penetration below Slop is left alone, a
	// Correction fraction of the rest is removed each step.
	Slop       float64
	Correction float64

	Resting RestingSettings
}

// RestingSettings configures resting-body detection. A body that touches
// something and moves slower than both thresholds for Steps consecutive
// steps is put to rest.
type RestingSettings struct {
	Enabled         bool
	VelocityEpsilon float64
	AngularEpsilon  float64
	Steps           int
}

// DefaultSettings returns the settings used by the game levels.
func DefaultSettings() Settings {
	return Settings{
		Gravity:    Vector{0, -10},
		TimeStep:   0.05,
		Iterations: 10,
		CellSize:   64,
		Slop:       0.05,
		Correction: 0.4,
		Resting: RestingSettings{
			Enabled:         true,
			VelocityEpsilon: 1,
			AngularEpsilon:  1,
			Steps:           10,
		},
	}
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Vector) float64 {
	return math.Sqrt(DistanceSquared(a, b))
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(a, b Vector) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}

// CirclesOverlap checks if two circles overlap.
func CirclesOverlap(a Vector, ra float64, b Vector, rb float64) bool {
	minDist := ra + rb
	return DistanceSquared(a, b) < minDist*minDist
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clampAbs(v, limit float64) float64 {
	if limit <= 0 {
		return v
	}
	return math.Max(-limit, math.Min(limit, v))
}
