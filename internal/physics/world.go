package physics

import (
	"fmt"
	"io"
	"math"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// World owns bodies and joints and advances them in fixed time steps.
// Structural changes and stepping are serialized by an internal lock.
type World struct {
	mu       sync.RWMutex
	settings Settings
	logger   *log.Logger

	bodies   []*Body
	members  map[*Body]struct{}
	joints   []*FixedJoint
	arbiters []*Arbiter
	bounds   []AABB
	grid     *SpatialGrid
	steps    uint64
}

// NewWorld creates an empty world. A nil logger discards log output.
func NewWorld(settings Settings, logger *log.Logger) *World {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &World{
		settings: settings,
		logger:   logger,
		members:  make(map[*Body]struct{}),
		grid:     NewSpatialGrid(settings.CellSize),
	}
}

// Settings returns the current world settings.
func (w *World) Settings() Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.settings
}

// SetSettings replaces the world settings. The broad-phase grid is rebuilt
// when the cell size changes.
func (w *World) SetSettings(s Settings) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s.CellSize != w.settings.CellSize {
		w.grid = NewSpatialGrid(s.CellSize)
	}
	w.settings = s
}

// Gravity returns the gravity vector.
func (w *World) Gravity() Vector {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.settings.Gravity
}

// SetGravity sets the gravity vector.
func (w *World) SetGravity(g Vector) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settings.Gravity = g
}

// AddBody adds b to the world. Adding a body twice is a no-op.
func (w *World) AddBody(b *Body) {
	if b == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.members[b]; ok {
		return
	}
	if b.coerced {
		w.logger.Warn("body mass must be positive, treating as static", "body", b.Name)
	}
	w.members[b] = struct{}{}
	w.bodies = append(w.bodies, b)
}

// RemoveBody removes b and every joint attached to it. Bodies that were
// touching b are woken.
func (w *World) RemoveBody(b *Body) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.members[b]; !ok {
		name := "<nil>"
		if b != nil {
			name = b.Name
		}
		w.logger.Warn("remove of unknown body", "body", name)
		return fmt.Errorf("remove %q: %w", name, ErrUnknownBody)
	}
	delete(w.members, b)
	w.bodies = slices.DeleteFunc(w.bodies, func(o *Body) bool { return o == b })
	w.joints = slices.DeleteFunc(w.joints, func(j *FixedJoint) bool { return j.A == b || j.B == b })
	w.arbiters = slices.DeleteFunc(w.arbiters, func(a *Arbiter) bool { return a.A == b || a.B == b })
	for o := range b.touching {
		o.untouch(b)
		o.wake()
	}
	return nil
}

// HasBody reports whether b is part of the world.
func (w *World) HasBody(b *Body) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.members[b]
	return ok
}

// AddJoint adds j to the world. Adding a joint twice is a no-op.
func (w *World) AddJoint(j *FixedJoint) {
	if j == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if slices.Contains(w.joints, j) {
		return
	}
	w.joints = append(w.joints, j)
}

// RemoveJoint removes j from the world.
func (w *World) RemoveJoint(j *FixedJoint) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := slices.Index(w.joints, j)
	if i < 0 {
		w.logger.Warn("remove of unknown joint")
		return ErrUnknownJoint
	}
	w.joints = slices.Delete(w.joints, i, i+1)
	return nil
}

// Bodies returns a snapshot of the bodies in insertion order.
func (w *World) Bodies() []*Body {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.bodies)
}

// Joints returns a snapshot of the joints.
func (w *World) Joints() []*FixedJoint {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.joints)
}

// Arbiters returns the contact pairs found by the last step.
func (w *World) Arbiters() []*Arbiter {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.arbiters)
}

// ContactPoints returns every contact found by the last step.
func (w *World) ContactPoints() []Contact {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []Contact
	for _, arb := range w.arbiters {
		out = append(out, arb.Manifold.Contacts()...)
	}
	return out
}

// Counts returns the number of bodies, joints and arbiters.
func (w *World) Counts() (bodies, joints, arbiters int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.bodies), len(w.joints), len(w.arbiters)
}

// StepCount returns how many steps have run since the last Clear.
func (w *World) StepCount() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.steps
}

// TotalEnergy returns the kinetic plus potential energy of all dynamic bodies.
func (w *World) TotalEnergy() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	total := 0.0
	for _, b := range w.bodies {
		total += b.KineticEnergy() + b.PotentialEnergy(w.settings.Gravity)
	}
	return total
}

// Clear removes all bodies, joints and arbiters.
func (w *World) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bodies = nil
	w.joints = nil
	w.arbiters = nil
	w.bounds = nil
	clear(w.members)
	w.grid.Clear()
	w.steps = 0
}

// Step advances the simulation by one time step:
//
//	forces and gravity → broad-phase → narrow-phase → joint and contact
//	impulses → integration and position correction → resting flags → clear forces
func (w *World) Step() {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.settings
	dt := s.TimeStep
	if dt <= 0 || !finite(dt) {
		return
	}

	for _, b := range w.bodies {
		b.integrateVelocity(dt, s.Gravity)
	}

	w.detect()

	for _, arb := range w.arbiters {
		arb.preStep(s.Gravity, dt)
	}
	for _, j := range w.joints {
		j.wakeTogether()
	}
	// Contacts and joints share the iterations so a composite body reacts
	// to its contacts as a whole.
	for range max(s.Iterations, 1) {
		for _, j := range w.joints {
			j.solve(dt)
		}
		for _, arb := range w.arbiters {
			arb.applyImpulse()
		}
	}

	for _, b := range w.bodies {
		b.integratePosition(dt)
	}
	for _, arb := range w.arbiters {
		arb.correctPosition(s.Slop, s.Correction)
	}

	w.updateResting()

	for _, b := range w.bodies {
		b.ClearForces()
	}
	w.steps++
}

// detect rebuilds the broad-phase grid and the arbiter list. Touching sets
// of moving bodies are rebuilt from scratch; immovable pairs keep theirs.
func (w *World) detect() {
	for _, b := range w.bodies {
		if b.immovable() {
			continue
		}
		for o := range b.touching {
			delete(o.touching, b)
		}
		clear(b.touching)
	}

	w.arbiters = w.arbiters[:0]
	w.bounds = w.bounds[:0]
	w.grid.Clear()
	for i, b := range w.bodies {
		box := b.Bounds()
		w.bounds = append(w.bounds, box)
		w.grid.Insert(box, i)
	}

	vel := w.settings.Resting.VelocityEpsilon
	w.grid.QueryPairs(len(w.bodies), func(i, j int) {
		a, b := w.bodies[i], w.bodies[j]
		if a == b || (a.immovable() && b.immovable()) || a.Excludes(b) {
			return
		}
		if !w.bounds[i].Overlaps(w.bounds[j]) {
			return
		}
		m, ok := Collide(a, b)
		if !ok {
			return
		}
		if a.resting && moving(b, vel) {
			a.wake()
		}
		if b.resting && moving(a, vel) {
			b.wake()
		}
		w.arbiters = append(w.arbiters, &Arbiter{A: a, B: b, Manifold: m})
		a.touch(b)
	})
}

func moving(b *Body, threshold float64) bool {
	return !b.immovable() && b.Velocity.LenSqr() > threshold*threshold
}

// updateResting puts slow touching bodies to rest. Jointed bodies count as
// supported through their partners and only rest together.
func (w *World) updateResting() {
	r := w.settings.Resting
	if !r.Enabled {
		return
	}
	jointed := make(map[*Body]bool, 2*len(w.joints))
	for _, j := range w.joints {
		jointed[j.A], jointed[j.B] = true, true
	}
	for _, b := range w.bodies {
		if b.immovable() {
			continue
		}
		supported := len(b.touching) > 0 || jointed[b]
		if supported && b.Velocity.Len() < r.VelocityEpsilon &&
			math.Abs(b.AngularVelocity) < r.AngularEpsilon {
			b.restSteps++
		} else {
			b.restSteps = 0
		}
	}
	for _, j := range w.joints {
		if j.A.Static() || j.B.Static() {
			continue
		}
		n := min(j.A.restSteps, j.B.restSteps)
		j.A.restSteps, j.B.restSteps = n, n
	}
	for _, b := range w.bodies {
		if !b.immovable() && b.restSteps >= max(r.Steps, 1) {
			b.SetResting(true)
		}
	}
}
