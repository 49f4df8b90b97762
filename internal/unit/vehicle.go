package unit

import (
	"fmt"

	"github.com/tomz197/airclash/internal/physics"
)

const (
	scoutEnginePower = 300
	scoutMaxVelX     = 30
	scoutMaxVelY     = 80
	scoutWheelRadius = 8
)

// Scout is a light ground vehicle: a chassis carried by two wheels that are
// welded to it with fixed joints.
type Scout struct {
	base

	// EnginePower scales the horizontal drive force applied to the wheels.
	EnginePower float64

	chassis *physics.Body
	wheels  []*physics.Body
	parts   []*physics.Body
	joints  []*physics.FixedJoint
}

// NewScout builds a scout at the origin and registers it with reg.
func NewScout(reg *Registry, name string) *Scout {
	s := &Scout{EnginePower: scoutEnginePower}
	s.chassis = physics.NewBody(name+"/chassis", physics.NewBox(50, 15), 3)
	s.chassis.SetMaxVelocity(scoutMaxVelX, scoutMaxVelY)
	s.parts = append(s.parts, s.chassis)
	for i := range 2 {
		w := physics.NewBody(fmt.Sprintf("%s/wheel%d", name, i), physics.NewCircle(scoutWheelRadius), 1)
		w.SetMaxVelocity(scoutMaxVelX, scoutMaxVelY)
		s.wheels = append(s.wheels, w)
		s.parts = append(s.parts, w)
	}
	// Joints record the relative pose, so lay the parts out first.
	s.SetPosition(physics.Vector{})
	for _, w := range s.wheels {
		s.joints = append(s.joints, physics.NewFixedJoint(s.chassis, w))
	}
	s.init(reg, s, KindVehicle, name)
	return s
}

func (s *Scout) BodyParts() []*physics.Body    { return s.parts }
func (s *Scout) Joints() []*physics.FixedJoint { return s.joints }
func (s *Scout) Position() physics.Vector      { return s.chassis.Position }
func (s *Scout) Chassis() *physics.Body        { return s.chassis }
func (s *Scout) Wheels() []*physics.Body       { return s.wheels }
func (s *Scout) AddForce(f physics.Vector)     { s.chassis.AddForce(f) }

// SetPosition places the chassis at p with the wheels below its ends.
func (s *Scout) SetPosition(p physics.Vector) {
	s.chassis.Position = p
	s.wheels[0].Position = p.Add(physics.Vec(-20, -10))
	s.wheels[1].Position = p.Add(physics.Vec(20, -10))
}

// Move drives the wheels that currently touch something. A vehicle cannot
// climb on its own, so a straight upward direction is ignored.
func (s *Scout) Move(dir physics.Vector) {
	if dir.X == 0 && dir.Y > 0 {
		return
	}
	f := physics.Vec(dir.X*s.EnginePower, dir.Y)
	for _, w := range s.wheels {
		if w.TouchingCount() > 0 {
			w.AddForce(f)
		}
	}
}

// Setup applies the default exclusions and keeps the wheels from colliding
// with their own chassis.
func (s *Scout) Setup() {
	s.base.Setup()
	for _, w := range s.wheels {
		s.chassis.ExcludeBody(w)
	}
}
