package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector is a 2D vector value.
type Vector struct {
	X, Y float64
}

// Vec is shorthand for Vector{x, y}.
func Vec(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

func (v Vector) Add(o Vector) Vector    { return Vector{v.X + o.X, v.Y + o.Y} }
func (v Vector) Sub(o Vector) Vector    { return Vector{v.X - o.X, v.Y - o.Y} }
func (v Vector) Scale(s float64) Vector { return Vector{v.X * s, v.Y * s} }
func (v Vector) Neg() Vector            { return Vector{-v.X, -v.Y} }
func (v Vector) Dot(o Vector) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vector) LenSqr() float64        { return v.X*v.X + v.Y*v.Y }
func (v Vector) Len() float64           { return math.Sqrt(v.LenSqr()) }
func (v Vector) IsZero() bool           { return v.X == 0 && v.Y == 0 }
func (v Vector) Cross(o Vector) float64 { return v.X*o.Y - v.Y*o.X }
func (v Vector) Perp() Vector           { return Vector{-v.Y, v.X} }
func (v Vector) Finite() bool           { return finite(v.X) && finite(v.Y) }
func (v Vector) vec2() mgl64.Vec2       { return mgl64.Vec2{v.X, v.Y} }
func fromVec2(v mgl64.Vec2) Vector      { return Vector{v[0], v[1]} }

// Normalize returns the unit vector in the direction of v.
// The zero vector normalizes to itself.
func (v Vector) Normalize() Vector {
	l := v.Len()
	if l < epsilon {
		return Vector{}
	}
	return Vector{v.X / l, v.Y / l}
}

// Rotate returns v rotated counter-clockwise by angle radians.
func (v Vector) Rotate(angle float64) Vector {
	return fromVec2(mgl64.Rotate2D(angle).Mul2x1(v.vec2()))
}

// crossSV is the cross product of a scalar angular velocity and a vector.
func crossSV(s float64, v Vector) Vector {
	return Vector{-s * v.Y, s * v.X}
}

// transform maps body-local coordinates to world coordinates.
type transform struct {
	pos Vector
	rot mgl64.Mat2
}

func newTransform(pos Vector, angle float64) transform {
	return transform{pos: pos, rot: mgl64.Rotate2D(angle)}
}

func (t transform) apply(v Vector) Vector {
	return fromVec2(t.rot.Mul2x1(v.vec2())).Add(t.pos)
}

// applyDir rotates a direction without translating it.
func (t transform) applyDir(v Vector) Vector {
	return fromVec2(t.rot.Mul2x1(v.vec2()))
}

func (t transform) invert(v Vector) Vector {
	return fromVec2(t.rot.Transpose().Mul2x1(v.Sub(t.pos).vec2()))
}

func (t transform) invertDir(v Vector) Vector {
	return fromVec2(t.rot.Transpose().Mul2x1(v.vec2()))
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vector
}

// Overlaps reports whether the boxes intersect (touching counts).
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y
}

func (b AABB) valid() bool {
	return b.Min.Finite() && b.Max.Finite()
}
