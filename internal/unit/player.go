package unit

import "slices"

// Player owns an ordered fleet and cycles the selection through it.
type Player struct {
	Name string

	units   []Unit
	current int
}

// NewPlayer returns a player without units.
func NewPlayer(name string) *Player {
	return &Player{Name: name}
}

// AddUnit appends u to the fleet.
func (p *Player) AddUnit(u Unit) {
	if u == nil || slices.Contains(p.units, u) {
		return
	}
	p.units = append(p.units, u)
}

// RemoveUnit drops u from the fleet, keeping the current index in range.
func (p *Player) RemoveUnit(u Unit) {
	p.units = slices.DeleteFunc(p.units, func(o Unit) bool { return o == u })
	if p.current >= len(p.units) {
		p.current = 0
	}
}

// Units returns the fleet in order.
func (p *Player) Units() []Unit {
	return p.units
}

// SelectedUnit returns the unit the selection cursor points at, or nil.
func (p *Player) SelectedUnit() Unit {
	if len(p.units) == 0 {
		return nil
	}
	return p.units[p.current]
}

// SelectIndex selects the i-th unit of the fleet.
func (p *Player) SelectIndex(i int) Unit {
	if i < 0 || i >= len(p.units) {
		return nil
	}
	p.current = i
	u := p.units[i]
	u.Select()
	return u
}

// SelectNext advances to the next unit, wrapping around, and selects it.
func (p *Player) SelectNext() Unit {
	if len(p.units) == 0 {
		return nil
	}
	return p.SelectIndex((p.current + 1) % len(p.units))
}

// Clear drops the whole fleet.
func (p *Player) Clear() {
	p.units = nil
	p.current = 0
}
