package physics

import "math"

// Body is a rigid body. A body with zero mass is static: it never moves and
// behaves as infinitely heavy in collisions.
type Body struct {
	Name string

	Position        Vector
	Rotation        float64
	Velocity        Vector
	AngularVelocity float64

	// MaxVelocity clamps each velocity component to ±limit. Zero means unlimited.
	MaxVelocity        Vector
	MaxAngularVelocity float64

	Restitution     float64
	StaticFriction  float64
	DynamicFriction float64

	shape      Shape
	mass       float64
	invMass    float64
	inertia    float64
	invInertia float64
	rotatable  bool
	coerced    bool

	force  Vector
	torque float64

	resting   bool
	restSteps int

	excluded map[*Body]struct{}
	touching map[*Body]struct{}
}

// NewBody creates a dynamic body. A non-positive or non-finite mass makes
// the body static.
func NewBody(name string, shape Shape, mass float64) *Body {
	b := &Body{
		Name:            name,
		shape:           shape,
		rotatable:       true,
		StaticFriction:  0.4,
		DynamicFriction: 0.2,
		excluded:        make(map[*Body]struct{}),
		touching:        make(map[*Body]struct{}),
	}
	if mass <= 0 || !finite(mass) {
		b.coerced = mass != 0
		mass = 0
	}
	b.setMass(mass)
	return b
}

// NewStaticBody creates an immovable body.
func NewStaticBody(name string, shape Shape) *Body {
	return NewBody(name, shape, 0)
}

func (b *Body) setMass(mass float64) {
	b.mass = mass
	b.invMass, b.inertia, b.invInertia = 0, 0, 0
	if mass == 0 {
		return
	}
	b.invMass = 1 / mass
	b.inertia = b.shape.Inertia(mass)
	if b.rotatable && b.inertia > epsilon {
		b.invInertia = 1 / b.inertia
	}
}

func (b *Body) Shape() Shape         { return b.shape }
func (b *Body) Mass() float64        { return b.mass }
func (b *Body) InvMass() float64     { return b.invMass }
func (b *Body) Inertia() float64     { return b.inertia }
func (b *Body) Static() bool         { return b.mass == 0 }
func (b *Body) Rotatable() bool      { return b.rotatable }
func (b *Body) Resting() bool        { return b.resting }
func (b *Body) Force() Vector        { return b.force }
func (b *Body) Torque() float64      { return b.torque }
func (b *Body) Bounds() AABB         { return b.shape.Bounds(b.Position, b.Rotation) }
func (b *Body) immovable() bool      { return b.mass == 0 || b.resting }
func (b *Body) String() string       { return b.Name }
func (b *Body) transform() transform { return newTransform(b.Position, b.Rotation) }

// SetRotatable locks or unlocks rotation. A locked body has infinite inertia.
func (b *Body) SetRotatable(rotatable bool) {
	b.rotatable = rotatable
	if !rotatable {
		b.AngularVelocity = 0
	}
	b.setMass(b.mass)
}

// SetMaxVelocity sets the per-component linear velocity clamp.
func (b *Body) SetMaxVelocity(x, y float64) {
	b.MaxVelocity = Vector{math.Abs(x), math.Abs(y)}
}

// SetResting puts the body to rest or wakes it. Static bodies are never resting.
func (b *Body) SetResting(resting bool) {
	if b.Static() {
		return
	}
	b.resting = resting
	b.restSteps = 0
	if resting {
		b.Velocity = Vector{}
		b.AngularVelocity = 0
	}
}

func (b *Body) wake() {
	if b.resting {
		b.SetResting(false)
	}
}

// AddForce accumulates a force for the next step and wakes the body.
func (b *Body) AddForce(f Vector) {
	if b.Static() || !f.Finite() {
		return
	}
	b.force = b.force.Add(f)
	if !f.IsZero() {
		b.wake()
	}
}

// AddTorque accumulates torque for the next step.
func (b *Body) AddTorque(t float64) {
	if b.Static() || !finite(t) {
		return
	}
	b.torque += t
	if t != 0 {
		b.wake()
	}
}

// ClearForces resets the force and torque accumulators.
func (b *Body) ClearForces() {
	b.force = Vector{}
	b.torque = 0
}

// ExcludeBody disables collision between b and other in both directions.
func (b *Body) ExcludeBody(other *Body) {
	if other == nil || other == b {
		return
	}
	b.excluded[other] = struct{}{}
	other.excluded[b] = struct{}{}
}

// IncludeBody re-enables collision between b and other.
func (b *Body) IncludeBody(other *Body) {
	if other == nil {
		return
	}
	delete(b.excluded, other)
	delete(other.excluded, b)
}

// Excludes reports whether collision with other is disabled.
func (b *Body) Excludes(other *Body) bool {
	_, ok := b.excluded[other]
	return ok
}

// Touching returns the bodies b was in contact with during the last step.
func (b *Body) Touching() []*Body {
	out := make([]*Body, 0, len(b.touching))
	for o := range b.touching {
		out = append(out, o)
	}
	return out
}

// IsTouching reports whether b touched other during the last step.
func (b *Body) IsTouching(other *Body) bool {
	_, ok := b.touching[other]
	return ok
}

// TouchingCount returns the number of bodies touched during the last step.
func (b *Body) TouchingCount() int {
	return len(b.touching)
}

func (b *Body) touch(other *Body) {
	b.touching[other] = struct{}{}
	other.touching[b] = struct{}{}
}

func (b *Body) untouch(other *Body) {
	delete(b.touching, other)
	delete(other.touching, b)
}

// Vertices returns the world-space outline of a polygonal body, or nil for circles.
func (b *Body) Vertices() []Vector {
	p := b.shape.hull()
	if p == nil {
		return nil
	}
	t := b.transform()
	out := make([]Vector, len(p.vertices))
	for i, v := range p.vertices {
		out[i] = t.apply(v)
	}
	return out
}

// Integrate advances the body by dt under gravity: velocity first, then
// position (semi-implicit Euler). Static and resting bodies do not move.
func (b *Body) Integrate(dt float64, gravity Vector) {
	b.integrateVelocity(dt, gravity)
	b.integratePosition(dt)
}

func (b *Body) integrateVelocity(dt float64, gravity Vector) {
	if b.immovable() {
		return
	}
	b.Velocity = b.Velocity.Add(b.force.Scale(b.invMass).Add(gravity).Scale(dt))
	if b.rotatable {
		b.AngularVelocity += b.torque * b.invInertia * dt
	}
	b.clampVelocity()
}

func (b *Body) integratePosition(dt float64) {
	if b.immovable() {
		b.Velocity = Vector{}
		b.AngularVelocity = 0
		return
	}
	b.clampVelocity()
	pos := b.Position.Add(b.Velocity.Scale(dt))
	rot := b.Rotation
	if b.rotatable {
		rot += b.AngularVelocity * dt
	}
	if !pos.Finite() || !finite(rot) {
		b.Velocity = Vector{}
		b.AngularVelocity = 0
		return
	}
	b.Position = pos
	b.Rotation = rot
}

func (b *Body) clampVelocity() {
	if !b.Velocity.Finite() {
		b.Velocity = Vector{}
	}
	if !finite(b.AngularVelocity) || !b.rotatable {
		b.AngularVelocity = 0
	}
	b.Velocity.X = clampAbs(b.Velocity.X, b.MaxVelocity.X)
	b.Velocity.Y = clampAbs(b.Velocity.Y, b.MaxVelocity.Y)
	b.AngularVelocity = clampAbs(b.AngularVelocity, b.MaxAngularVelocity)
}

// KineticEnergy returns the linear plus rotational kinetic energy.
func (b *Body) KineticEnergy() float64 {
	if b.Static() {
		return 0
	}
	return 0.5*b.mass*b.Velocity.LenSqr() + 0.5*b.inertia*b.AngularVelocity*b.AngularVelocity
}

// PotentialEnergy returns the gravitational potential energy relative to the origin.
func (b *Body) PotentialEnergy(gravity Vector) float64 {
	if b.Static() {
		return 0
	}
	return -b.mass * gravity.Dot(b.Position)
}
