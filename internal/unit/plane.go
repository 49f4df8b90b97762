package unit

import "github.com/tomz197/airclash/internal/physics"

const droneThrust = 100

// Drone is a single-body flying unit that does not rotate.
type Drone struct {
	base
	body  *physics.Body
	parts []*physics.Body
}

// NewDrone builds a drone at the origin and registers it with reg.
func NewDrone(reg *Registry, name string) *Drone {
	d := &Drone{body: physics.NewBody(name+"/body", physics.NewBox(30, 30), 1)}
	d.body.SetRotatable(false)
	d.body.SetMaxVelocity(30, 40)
	d.parts = []*physics.Body{d.body}
	d.init(reg, d, KindPlane, name)
	return d
}

func (d *Drone) BodyParts() []*physics.Body    { return d.parts }
func (d *Drone) Joints() []*physics.FixedJoint { return nil }
func (d *Drone) Position() physics.Vector      { return d.body.Position }
func (d *Drone) SetPosition(p physics.Vector)  { d.body.Position = p }
func (d *Drone) AddForce(f physics.Vector)     { d.body.AddForce(f) }

// Move thrusts in any direction, including straight up.
func (d *Drone) Move(dir physics.Vector) {
	d.body.SetResting(false)
	d.body.AddForce(dir.Scale(droneThrust))
}
