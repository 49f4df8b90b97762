package physics

import "math"

// maxCellSpan caps how many cells one body may occupy per axis. Larger
// bodies are bucketed into the overflow list and paired with everyone.
const maxCellSpan = 256

// SpatialGrid is a uniform grid for broad-phase collision detection in an
// unbounded world. Bodies are inserted by bounding box and index, then every
// pair sharing at least one cell is reported once.
//
// Cells are keyed by integer coordinates so the world needs no fixed extent.
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64 // 1 / cellSize (precomputed to avoid division)
	cells       map[cellKey]*gridCell
	used        []*gridCell
	overflow    []int
	seen        map[pairKey]struct{}
}

type cellKey struct {
	col, row int
}

type pairKey struct {
	i, j int
}

// gridCell stores the indices of bodies overlapping a grid cell.
// The slice is reused between steps (reset to [:0]) to avoid allocations.
type gridCell struct {
	items []int
}

// NewSpatialGrid creates a grid with the given cell size. Non-positive
// sizes fall back to 64.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 || !finite(cellSize) {
		cellSize = 64
	}
	return &SpatialGrid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cells:       make(map[cellKey]*gridCell),
		seen:        make(map[pairKey]struct{}),
	}
}

// CellSize returns the edge length of a cell.
func (g *SpatialGrid) CellSize() float64 {
	return g.cellSize
}

// Clear removes all items from the grid without deallocating cell memory.
func (g *SpatialGrid) Clear() {
	for _, c := range g.used {
		c.items = c.items[:0]
	}
	g.used = g.used[:0]
	g.overflow = g.overflow[:0]
	clear(g.seen)
}

// Insert adds an item (identified by index) to every cell its box overlaps.
// Boxes with non-finite bounds are ignored.
func (g *SpatialGrid) Insert(box AABB, index int) {
	if !box.valid() {
		return
	}
	minCol, minRow := g.posToCell(box.Min)
	maxCol, maxRow := g.posToCell(box.Max)
	if maxCol-minCol > maxCellSpan || maxRow-minRow > maxCellSpan {
		g.overflow = append(g.overflow, index)
		return
	}
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			key := cellKey{col, row}
			c, ok := g.cells[key]
			if !ok {
				c = &gridCell{}
				g.cells[key] = c
			}
			if len(c.items) == 0 {
				g.used = append(g.used, c)
			}
			c.items = append(c.items, index)
		}
	}
}

// QueryPairs calls fn once for each pair of items sharing a cell, with i < j.
// Overflow items are paired with every other item.
func (g *SpatialGrid) QueryPairs(all int, fn func(i, j int)) {
	emit := func(i, j int) {
		if i == j {
			return
		}
		if i > j {
			i, j = j, i
		}
		key := pairKey{i, j}
		if _, ok := g.seen[key]; ok {
			return
		}
		g.seen[key] = struct{}{}
		fn(i, j)
	}

	for _, c := range g.used {
		for a := 0; a < len(c.items); a++ {
			for b := a + 1; b < len(c.items); b++ {
				emit(c.items[a], c.items[b])
			}
		}
	}
	for _, i := range g.overflow {
		for j := range all {
			emit(i, j)
		}
	}
}

// posToCell converts world coordinates to grid cell coordinates.
func (g *SpatialGrid) posToCell(p Vector) (col, row int) {
	col = int(math.Floor(p.X * g.invCellSize))
	row = int(math.Floor(p.Y * g.invCellSize))
	return col, row
}
