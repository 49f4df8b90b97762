package physics

import "math"

// Arbiter holds the contacts between one pair of bodies for a single step
// and resolves them.
type Arbiter struct {
	A, B     *Body
	Manifold Manifold

	restitution     float64
	staticFriction  float64
	dynamicFriction float64
}

func effectiveInvMass(b *Body) float64 {
	if b.immovable() {
		return 0
	}
	return b.invMass
}

func effectiveInvInertia(b *Body) float64 {
	if b.immovable() {
		return 0
	}
	return b.invInertia
}

// preStep mixes the material parameters. Contacts whose relative speed is
// no larger than what gravity adds in one step are treated as resting
// contacts and get no bounce.
func (arb *Arbiter) preStep(gravity Vector, dt float64) {
	a, b := arb.A, arb.B
	arb.restitution = math.Sqrt(math.Max(a.Restitution, 0) * math.Max(b.Restitution, 0))
	arb.staticFriction = math.Sqrt(math.Max(a.StaticFriction, 0) * math.Max(b.StaticFriction, 0))
	arb.dynamicFriction = math.Sqrt(math.Max(a.DynamicFriction, 0) * math.Max(b.DynamicFriction, 0))

	restingSpeed := gravity.Scale(dt).LenSqr() + epsilon
	for i := range arb.Manifold.Count {
		p := arb.Manifold.Points[i]
		if relativeVelocity(a, b, p.Sub(a.Position), p.Sub(b.Position)).LenSqr() < restingSpeed {
			arb.restitution = 0
		}
	}
}

func relativeVelocity(a, b *Body, ra, rb Vector) Vector {
	va := a.Velocity.Add(crossSV(a.AngularVelocity, ra))
	vb := b.Velocity.Add(crossSV(b.AngularVelocity, rb))
	return vb.Sub(va)
}

// applyImpulse performs one solver pass over the contacts: a normal impulse
// with restitution followed by a Coulomb friction impulse.
func (arb *Arbiter) applyImpulse() {
	a, b := arb.A, arb.B
	m := &arb.Manifold
	invMassA, invMassB := effectiveInvMass(a), effectiveInvMass(b)
	invInertiaA, invInertiaB := effectiveInvInertia(a), effectiveInvInertia(b)
	if invMassA+invMassB <= epsilon {
		return
	}
	count := float64(m.Count)

	for i := range m.Count {
		ra := m.Points[i].Sub(a.Position)
		rb := m.Points[i].Sub(b.Position)

		rv := relativeVelocity(a, b, ra, rb)
		contactVel := rv.Dot(m.Normal)
		if contactVel > 0 {
			// Separating.
			continue
		}

		raCrossN := ra.Cross(m.Normal)
		rbCrossN := rb.Cross(m.Normal)
		invMassSum := invMassA + invMassB + raCrossN*raCrossN*invInertiaA + rbCrossN*rbCrossN*invInertiaB

		j := -(1 + arb.restitution) * contactVel / invMassSum / count
		impulse := m.Normal.Scale(j)
		applyPairImpulse(a, b, ra, rb, impulse, invMassA, invMassB, invInertiaA, invInertiaB)

		rv = relativeVelocity(a, b, ra, rb)
		tangent := rv.Sub(m.Normal.Scale(rv.Dot(m.Normal))).Normalize()
		jt := -rv.Dot(tangent) / invMassSum / count
		if math.Abs(jt) <= epsilon {
			continue
		}

		var friction Vector
		if math.Abs(jt) < j*arb.staticFriction {
			friction = tangent.Scale(jt)
		} else {
			friction = tangent.Scale(-j * arb.dynamicFriction)
		}
		applyPairImpulse(a, b, ra, rb, friction, invMassA, invMassB, invInertiaA, invInertiaB)
	}
}

func applyPairImpulse(a, b *Body, ra, rb, impulse Vector, invMassA, invMassB, invInertiaA, invInertiaB float64) {
	if invMassA > 0 {
		a.Velocity = a.Velocity.Sub(impulse.Scale(invMassA))
		a.AngularVelocity -= invInertiaA * ra.Cross(impulse)
	}
	if invMassB > 0 {
		b.Velocity = b.Velocity.Add(impulse.Scale(invMassB))
		b.AngularVelocity += invInertiaB * rb.Cross(impulse)
	}
}

// correctPosition pushes the bodies apart by a fraction of the penetration
// beyond the allowed slop.
func (arb *Arbiter) correctPosition(slop, percent float64) {
	a, b := arb.A, arb.B
	invMassA, invMassB := effectiveInvMass(a), effectiveInvMass(b)
	sum := invMassA + invMassB
	if sum <= epsilon {
		return
	}
	k := math.Max(arb.Manifold.Penetration-slop, 0) / sum * percent
	correction := arb.Manifold.Normal.Scale(k)
	a.Position = a.Position.Sub(correction.Scale(invMassA))
	b.Position = b.Position.Add(correction.Scale(invMassB))
}
