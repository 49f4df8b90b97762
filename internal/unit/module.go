package unit

import (
	"fmt"
	"slices"

	"github.com/tomz197/airclash/internal/physics"
)

const (
	moduleThrust  = 100
	moduleMaxVelX = 30
	moduleMaxVelY = 80
)

// Attachable is a module that can occupy slots of an HQ grid.
type Attachable interface {
	Unit
	Body() *physics.Body
	GridWidth() int
	GridHeight() int
}

func newModuleBody(name string, size float64) *physics.Body {
	b := physics.NewBody(name, physics.NewBox(size, size), 1)
	b.SetRotatable(false)
	b.SetMaxVelocity(moduleMaxVelX, moduleMaxVelY)
	return b
}

// HQ is the central building. Modules attach to a square grid of slots
// centred on it; the centre slot is the HQ itself.
type HQ struct {
	base

	body      *physics.Body
	cellSize  float64
	halfWidth int
	slots     []Attachable
	modules   []Attachable
	parts     []*physics.Body
	joints    []*physics.FixedJoint
	buildMenu bool
}

// NewHQ builds an HQ whose grid spans [-halfWidth, halfWidth] on both axes
// with cells of cellSize world units.
func NewHQ(reg *Registry, name string, halfWidth int, cellSize float64) *HQ {
	halfWidth = max(halfWidth, 0)
	side := 2*halfWidth + 1
	h := &HQ{
		body:      newModuleBody(name+"/body", cellSize),
		cellSize:  cellSize,
		halfWidth: halfWidth,
		slots:     make([]Attachable, side*side),
	}
	h.parts = []*physics.Body{h.body}
	h.slots[h.slot(0, 0)] = h
	h.modules = []Attachable{h}
	h.init(reg, h, KindModule, name)
	return h
}

func (h *HQ) Body() *physics.Body           { return h.body }
func (h *HQ) BodyParts() []*physics.Body    { return h.parts }
func (h *HQ) Joints() []*physics.FixedJoint { return h.joints }
func (h *HQ) Position() physics.Vector      { return h.body.Position }
func (h *HQ) SetPosition(p physics.Vector)  { h.body.Position = p }
func (h *HQ) GridWidth() int                { return 1 }
func (h *HQ) GridHeight() int               { return 1 }
func (h *HQ) HalfWidth() int                { return h.halfWidth }
func (h *HQ) CellSize() float64             { return h.cellSize }
func (h *HQ) BuildMenu() bool               { return h.buildMenu }

// AddForce does nothing: the HQ is too heavy to jump.
func (h *HQ) AddForce(physics.Vector) {}

// Modules returns the HQ and every attached module in attach order.
func (h *HQ) Modules() []Attachable {
	return h.modules
}

func (h *HQ) inGrid(gx, gy int) bool {
	return gx >= -h.halfWidth && gx <= h.halfWidth && gy >= -h.halfWidth && gy <= h.halfWidth
}

func (h *HQ) slot(gx, gy int) int {
	side := 2*h.halfWidth + 1
	return (gy+h.halfWidth)*side + gx + h.halfWidth
}

// ModuleAt returns the module occupying grid slot (gx, gy), or nil.
func (h *HQ) ModuleAt(gx, gy int) Attachable {
	if !h.inGrid(gx, gy) {
		return nil
	}
	return h.slots[h.slot(gx, gy)]
}

// SlotPosition returns the world position of grid slot (gx, gy).
func (h *HQ) SlotPosition(gx, gy int) physics.Vector {
	return h.body.Position.Add(physics.Vec(float64(gx), float64(gy)).Scale(h.cellSize))
}

// AddModule welds m to the HQ with its lower left cell at slot (gx, gy).
// It reports false and changes nothing when any covered slot is outside the
// grid or already taken; the caller then owns m and must delete it.
func (h *HQ) AddModule(m Attachable, gx, gy int) bool {
	if m == nil || Attachable(h) == m {
		return false
	}
	w, ht := max(m.GridWidth(), 1), max(m.GridHeight(), 1)
	for dy := range ht {
		for dx := range w {
			if !h.inGrid(gx+dx, gy+dy) || h.slots[h.slot(gx+dx, gy+dy)] != nil {
				return false
			}
		}
	}

	h.body.ExcludeBody(m.Body())
	m.SetPosition(h.SlotPosition(gx, gy))
	h.parts = append(h.parts, m.Body())
	h.joints = append(h.joints, physics.NewFixedJoint(h.body, m.Body()))
	h.modules = append(h.modules, m)
	for dy := range ht {
		for dx := range w {
			h.slots[h.slot(gx+dx, gy+dy)] = m
		}
	}
	return true
}

// RemoveModule frees the slots of m and drops its body and weld. It returns
// the weld so the caller can take it out of the world; ok is false when m
// is not attached.
func (h *HQ) RemoveModule(m Attachable) (joint *physics.FixedJoint, ok bool) {
	if m == nil || Attachable(h) == m {
		return nil, false
	}
	i := slices.Index(h.modules, m)
	if i < 0 {
		return nil, false
	}
	h.modules = slices.Delete(h.modules, i, i+1)
	for k, s := range h.slots {
		if s == m {
			h.slots[k] = nil
		}
	}
	body := m.Body()
	h.parts = slices.DeleteFunc(h.parts, func(b *physics.Body) bool { return b == body })
	h.joints = slices.DeleteFunc(h.joints, func(j *physics.FixedJoint) bool {
		if j.B == body {
			joint = j
			return true
		}
		return false
	})
	return joint, true
}

// Move wakes every part and pushes it in dir.
func (h *HQ) Move(dir physics.Vector) {
	f := dir.Scale(moduleThrust)
	for _, b := range h.parts {
		b.SetResting(false)
		b.AddForce(f)
	}
}

// Select opens the build menu.
func (h *HQ) Select() {
	h.base.Select()
	h.buildMenu = true
}

// Unselect closes the build menu.
func (h *HQ) Unselect() {
	h.base.Unselect()
	h.buildMenu = false
}

// Block is a plain one-cell building block.
type Block struct {
	base
	body  *physics.Body
	parts []*physics.Body
}

// NewBlock builds a block of the given edge length and registers it with reg.
func NewBlock(reg *Registry, name string, size float64) *Block {
	b := &Block{body: newModuleBody(name+"/body", size)}
	b.parts = []*physics.Body{b.body}
	b.init(reg, b, KindModule, name)
	return b
}

func (b *Block) Body() *physics.Body           { return b.body }
func (b *Block) BodyParts() []*physics.Body    { return b.parts }
func (b *Block) Joints() []*physics.FixedJoint { return nil }
func (b *Block) Position() physics.Vector      { return b.body.Position }
func (b *Block) SetPosition(p physics.Vector)  { b.body.Position = p }
func (b *Block) GridWidth() int                { return 1 }
func (b *Block) GridHeight() int               { return 1 }
func (b *Block) AddForce(f physics.Vector)     { b.body.AddForce(f) }

// Move pushes the block in dir.
func (b *Block) Move(dir physics.Vector) {
	b.body.SetResting(false)
	b.body.AddForce(dir.Scale(moduleThrust))
}

func (b *Block) String() string {
	return fmt.Sprintf("block %s at %v", b.name, b.body.Position)
}
