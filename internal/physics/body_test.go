package physics

import (
	"math"
	"testing"
)

func TestNonPositiveMassIsStatic(t *testing.T) {
	for _, mass := range []float64{0, -3, math.NaN()} {
		b := NewBody("b", NewBox(1, 1), mass)
		if !b.Static() || b.InvMass() != 0 {
			t.Fatalf("expected mass %v to produce a static body, got mass=%f inv=%f", mass, b.Mass(), b.InvMass())
		}
	}
}

func TestStaticBodyNeverMoves(t *testing.T) {
	b := NewStaticBody("wall", NewBox(10, 10))
	b.Position = Vec(3, 4)
	b.AddForce(Vec(1000, 1000))
	b.Velocity = Vec(5, 5)
	for range 100 {
		b.Integrate(0.05, Vec(0, -10))
	}
	if b.Position != Vec(3, 4) {
		t.Fatalf("expected static body to stay at (3,4), got=%+v", b.Position)
	}
	if !b.Force().IsZero() {
		t.Fatalf("expected static body to ignore forces, got=%+v", b.Force())
	}
}

func TestMaxVelocityClamp(t *testing.T) {
	b := NewBody("b", NewBox(1, 1), 1)
	b.SetMaxVelocity(30, 80)
	for range 50 {
		b.AddForce(Vec(10000, -10000))
		b.Integrate(0.05, Vec(0, -10))
		b.ClearForces()
		if math.Abs(b.Velocity.X) > 30 || math.Abs(b.Velocity.Y) > 80 {
			t.Fatalf("expected velocity within (30,80), got=%+v", b.Velocity)
		}
	}
	if b.Velocity.X != 30 || b.Velocity.Y != -80 {
		t.Fatalf("expected velocity pinned at (30,-80), got=%+v", b.Velocity)
	}
}

func TestNonRotatableBodyKeepsOrientation(t *testing.T) {
	b := NewBody("b", NewBox(2, 2), 1)
	b.SetRotatable(false)
	b.AngularVelocity = 3
	b.AddTorque(100)
	b.Integrate(0.05, Vector{})
	if b.Rotation != 0 || b.AngularVelocity != 0 {
		t.Fatalf("expected no rotation, got rot=%f w=%f", b.Rotation, b.AngularVelocity)
	}
}

func TestExcludeBodyIsSymmetric(t *testing.T) {
	a := NewBody("a", NewBox(1, 1), 1)
	b := NewBody("b", NewBox(1, 1), 1)
	a.ExcludeBody(b)
	if !a.Excludes(b) || !b.Excludes(a) {
		t.Fatal("expected exclusion in both directions")
	}
	b.IncludeBody(a)
	if a.Excludes(b) || b.Excludes(a) {
		t.Fatal("expected exclusion removed in both directions")
	}
	a.ExcludeBody(a)
	if a.Excludes(a) {
		t.Fatal("expected a body not to exclude itself")
	}
}

func TestAddForceWakesRestingBody(t *testing.T) {
	b := NewBody("b", NewBox(1, 1), 1)
	b.Velocity = Vec(1, 1)
	b.SetResting(true)
	if !b.Resting() || !b.Velocity.IsZero() {
		t.Fatalf("expected resting body with zero velocity, got resting=%v v=%+v", b.Resting(), b.Velocity)
	}
	b.AddForce(Vec(0, 1))
	if b.Resting() {
		t.Fatal("expected AddForce to wake the body")
	}
}

func TestNonFiniteForceIgnored(t *testing.T) {
	b := NewBody("b", NewBox(1, 1), 1)
	b.AddForce(Vec(math.Inf(1), 0))
	b.Integrate(0.05, Vector{})
	if !b.Position.Finite() || !b.Velocity.Finite() {
		t.Fatalf("expected finite state, got pos=%+v v=%+v", b.Position, b.Velocity)
	}
}
