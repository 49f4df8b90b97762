package physics

// DefaultJointBias is the fraction of positional error a FixedJoint removes per step.
const DefaultJointBias = 0.2

// FixedJoint welds body B to body A at the offset and relative rotation they
// had when the joint was created. The weld point is B's centre. Drift is
// pulled back gradually: each step removes Bias of the remaining error, so
// there is no overshoot.
type FixedJoint struct {
	A, B *Body
	Bias float64

	offset      Vector  // B's position in A's local frame
	relRotation float64 // B.Rotation - A.Rotation
}

// NewFixedJoint records the current relative pose of a and b.
func NewFixedJoint(a, b *Body) *FixedJoint {
	return &FixedJoint{
		A:           a,
		B:           b,
		Bias:        DefaultJointBias,
		offset:      a.transform().invert(b.Position),
		relRotation: b.Rotation - a.Rotation,
	}
}

// Offset returns B's recorded position in A's local frame.
func (j *FixedJoint) Offset() Vector {
	return j.offset
}

// Anchor returns where B should be, in world space.
func (j *FixedJoint) Anchor() Vector {
	return j.A.transform().apply(j.offset)
}

// Error returns the current distance between B and its anchor.
func (j *FixedJoint) Error() float64 {
	return Distance(j.Anchor(), j.B.Position)
}

// AngleError returns how far the relative rotation drifted from the recorded one.
func (j *FixedJoint) AngleError() float64 {
	return j.A.Rotation + j.relRotation - j.B.Rotation
}

// wakeTogether keeps both ends of the joint in the same resting state.
func (j *FixedJoint) wakeTogether() {
	if j.A.resting != j.B.resting {
		j.A.wake()
		j.B.wake()
	}
}

// solve applies the impulse that makes the relative velocity at the weld
// point, and the relative angular velocity, remove Bias of the current
// error over dt. Point and angle rows are solved together; when neither
// body can rotate only the point rows remain.
func (j *FixedJoint) solve(dt float64) {
	if dt <= 0 {
		return
	}
	a, b := j.A, j.B
	mA, mB := effectiveInvMass(a), effectiveInvMass(b)
	iA, iB := effectiveInvInertia(a), effectiveInvInertia(b)
	if mA+mB <= epsilon {
		return
	}

	anchor := j.Anchor()
	rA := anchor.Sub(a.Position)
	// B is welded at its centre.
	var rB Vector

	vA := a.Velocity.Add(crossSV(a.AngularVelocity, rA))
	vB := b.Velocity.Add(crossSV(b.AngularVelocity, rB))
	rhs := anchor.Sub(b.Position).Scale(j.Bias / dt).Sub(vB.Sub(vA))
	rhsAngle := j.AngleError()*j.Bias/dt - (b.AngularVelocity - a.AngularVelocity)

	k11 := mA + mB + rA.Y*rA.Y*iA + rB.Y*rB.Y*iB
	k12 := -rA.Y*rA.X*iA - rB.Y*rB.X*iB
	k13 := -rA.Y*iA - rB.Y*iB
	k22 := mA + mB + rA.X*rA.X*iA + rB.X*rB.X*iB
	k23 := rA.X*iA + rB.X*iB
	k33 := iA + iB

	var p Vector
	var angular float64
	if k33 > 0 {
		var ok bool
		p, angular, ok = solve33(
			[3][3]float64{{k11, k12, k13}, {k12, k22, k23}, {k13, k23, k33}},
			[3]float64{rhs.X, rhs.Y, rhsAngle},
		)
		if !ok {
			return
		}
	} else {
		det := k11*k22 - k12*k12
		if det == 0 {
			return
		}
		p = Vec((k22*rhs.X-k12*rhs.Y)/det, (k11*rhs.Y-k12*rhs.X)/det)
	}
	if !p.Finite() || !finite(angular) {
		return
	}

	a.Velocity = a.Velocity.Sub(p.Scale(mA))
	a.AngularVelocity -= iA * (rA.Cross(p) + angular)
	b.Velocity = b.Velocity.Add(p.Scale(mB))
	b.AngularVelocity += iB * (rB.Cross(p) + angular)
}

// solve33 solves k·x = r for a symmetric 3x3 k with Cramer's rule.
func solve33(k [3][3]float64, r [3]float64) (Vector, float64, bool) {
	det3 := func(c0, c1, c2 [3]float64) float64 {
		return c0[0]*(c1[1]*c2[2]-c1[2]*c2[1]) -
			c1[0]*(c0[1]*c2[2]-c0[2]*c2[1]) +
			c2[0]*(c0[1]*c1[2]-c0[2]*c1[1])
	}
	// Columns of k; k is symmetric so rows and columns coincide.
	c0, c1, c2 := k[0], k[1], k[2]
	det := det3(c0, c1, c2)
	if det == 0 || !finite(det) {
		return Vector{}, 0, false
	}
	x := det3(r, c1, c2) / det
	y := det3(c0, r, c2) / det
	z := det3(c0, c1, r) / det
	return Vec(x, y), z, true
}
