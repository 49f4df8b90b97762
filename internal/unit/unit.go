// Package unit groups physics bodies and joints into game units: vehicles,
// planes and buildings that move, get selected and collide as one entity.
package unit

import (
	"slices"
	"sync"

	"github.com/tomz197/airclash/internal/physics"
)

// Kind tags the variant of a unit.
type Kind int

const (
	KindVehicle Kind = iota
	KindPlane
	KindModule
)

func (k Kind) String() string {
	switch k {
	case KindVehicle:
		return "vehicle"
	case KindPlane:
		return "plane"
	case KindModule:
		return "module"
	default:
		return "unknown"
	}
}

// Movement directions handed to Unit.Move.
var (
	Left  = physics.Vec(-1, 0)
	Right = physics.Vec(1, 0)
	Up    = physics.Vec(0, 1)
	Down  = physics.Vec(0, -1)
)

// Unit is one controllable entity made of bodies and joints that are added
// to and removed from the world together.
type Unit interface {
	Kind() Kind
	Name() string

	// BodyParts and Joints return the unit's own slices; callers must not modify them.
	BodyParts() []*physics.Body
	Joints() []*physics.FixedJoint

	Position() physics.Vector
	SetPosition(p physics.Vector)

	// AddForce applies an impulse-like force, e.g. a jump.
	AddForce(f physics.Vector)
	// Move drives the unit in a direction such as Left or Right.
	Move(dir physics.Vector)

	Select()
	Unselect()
	Selected() bool

	// Setup runs after the unit's bodies were added to the world.
	Setup()
	// Delete removes the unit from its registry.
	Delete()
}

// base carries the state every unit variant shares.
type base struct {
	reg      *Registry
	self     Unit
	kind     Kind
	name     string
	selected bool
}

func (b *base) init(reg *Registry, self Unit, kind Kind, name string) {
	if reg == nil {
		reg = NewRegistry()
	}
	b.reg, b.self, b.kind, b.name = reg, self, kind, name
	reg.register(self)
}

func (b *base) Kind() Kind     { return b.kind }
func (b *base) Name() string   { return b.name }
func (b *base) Selected() bool { return b.selected }
func (b *base) Unselect()      { b.selected = false }

// Select unselects every unit and module of the registry first, so exactly
// one of them is selected afterwards.
func (b *base) Select() {
	b.reg.UnselectAll()
	b.selected = true
}

// Setup excludes collisions between this unit and the others it must never
// touch: units against every module, modules against everything.
func (b *base) Setup() {
	others := b.reg.Modules()
	if b.kind == KindModule {
		others = b.reg.All()
	}
	parts := b.self.BodyParts()
	for _, o := range others {
		if o == b.self {
			continue
		}
		for _, p := range o.BodyParts() {
			for _, q := range parts {
				p.ExcludeBody(q)
			}
		}
	}
}

func (b *base) Delete() {
	b.selected = false
	b.reg.unregister(b.self)
}

// Registry tracks the live units and modules of one level.
type Registry struct {
	mu      sync.RWMutex
	units   []Unit
	modules []Unit
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) register(u Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := &r.units
	if u.Kind() == KindModule {
		list = &r.modules
	}
	if !slices.Contains(*list, u) {
		*list = append(*list, u)
	}
}

func (r *Registry) unregister(u Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	del := func(o Unit) bool { return o == u }
	if u.Kind() == KindModule {
		r.modules = slices.DeleteFunc(r.modules, del)
	} else {
		r.units = slices.DeleteFunc(r.units, del)
	}
}

// Units returns the registered vehicles and planes.
func (r *Registry) Units() []Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.units)
}

// Modules returns the registered buildings.
func (r *Registry) Modules() []Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.modules)
}

// All returns units followed by modules.
func (r *Registry) All() []Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Concat(r.units, r.modules)
}

// Contains reports whether u is registered.
func (r *Registry) Contains(u Unit) bool {
	return slices.Contains(r.All(), u)
}

// Selected returns the selected unit or nil.
func (r *Registry) Selected() Unit {
	for _, u := range r.All() {
		if u.Selected() {
			return u
		}
	}
	return nil
}

// UnselectAll unselects every unit and module.
func (r *Registry) UnselectAll() {
	for _, u := range r.All() {
		u.Unselect()
	}
}

// Clear forgets every unit.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units = nil
	r.modules = nil
}
