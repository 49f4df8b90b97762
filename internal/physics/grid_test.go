package physics

import "testing"

func TestSpatialGridReportsPairsOnce(t *testing.T) {
	g := NewSpatialGrid(10)
	// A wide box spanning many cells and two small boxes inside it.
	g.Insert(AABB{Min: Vec(0, 0), Max: Vec(95, 5)}, 0)
	g.Insert(AABB{Min: Vec(12, 1), Max: Vec(28, 4)}, 1)
	g.Insert(AABB{Min: Vec(25, 1), Max: Vec(35, 4)}, 2)
	g.Insert(AABB{Min: Vec(500, 500), Max: Vec(501, 501)}, 3)

	counts := make(map[pairKey]int)
	g.QueryPairs(4, func(i, j int) {
		if i >= j {
			t.Fatalf("expected i < j, got i=%d j=%d", i, j)
		}
		counts[pairKey{i, j}]++
	})

	want := []pairKey{{0, 1}, {0, 2}, {1, 2}}
	if len(counts) != len(want) {
		t.Fatalf("expected %d pairs, got=%v", len(want), counts)
	}
	for _, k := range want {
		if counts[k] != 1 {
			t.Fatalf("expected pair %v once, got=%d", k, counts[k])
		}
	}
}

func TestSpatialGridClearReusesCells(t *testing.T) {
	g := NewSpatialGrid(10)
	g.Insert(AABB{Min: Vec(0, 0), Max: Vec(1, 1)}, 0)
	g.Insert(AABB{Min: Vec(0, 0), Max: Vec(1, 1)}, 1)
	g.Clear()
	g.Insert(AABB{Min: Vec(0, 0), Max: Vec(1, 1)}, 0)

	pairs := 0
	g.QueryPairs(1, func(i, j int) { pairs++ })
	if pairs != 0 {
		t.Fatalf("expected no pairs after clear, got=%d", pairs)
	}
	if len(g.cells) != 1 {
		t.Fatalf("expected the cell to be reused, got=%d cells", len(g.cells))
	}
}

func TestSpatialGridNegativeCoordinates(t *testing.T) {
	g := NewSpatialGrid(64)
	g.Insert(AABB{Min: Vec(-15, -5), Max: Vec(-5, 5)}, 0)
	g.Insert(AABB{Min: Vec(-8, -2), Max: Vec(-1, 2)}, 1)

	pairs := 0
	g.QueryPairs(2, func(i, j int) { pairs++ })
	if pairs != 1 {
		t.Fatalf("expected 1 pair across negative cells, got=%d", pairs)
	}
}
