package level

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/tomz197/airclash/internal/config"
	"github.com/tomz197/airclash/internal/physics"
	"github.com/tomz197/airclash/internal/unit"
)

func threePointLevel() *Level {
	l := New(config.Default(), nil)
	l.SetDescription(Description{
		Name:     "test",
		Width:    200,
		Geometry: []physics.Vector{physics.Vec(0, 100), physics.Vec(100, 120), physics.Vec(200, 90)},
	})
	return l
}

func flatLevel() *Level {
	l := New(config.Default(), nil)
	l.SetDescription(Description{
		Name:     "flat",
		Width:    800,
		Geometry: []physics.Vector{physics.Vec(0, 100), physics.Vec(400, 100), physics.Vec(800, 100)},
	})
	return l
}

type pose struct {
	pos physics.Vector
	rot float64
}

func snapshot(bodies []*physics.Body) []pose {
	var out []pose
	for _, b := range bodies {
		out = append(out, pose{b.Position, b.Rotation})
	}
	return out
}

func TestInitBuildsFloorAndWalls(t *testing.T) {
	l := threePointLevel()
	if err := l.Init(); err != nil {
		t.Fatal(err)
	}
	bodies := l.World().Bodies()
	if len(bodies) != 5 || len(l.Parts()) != 5 {
		t.Fatalf("expected 5 static bodies, got=%d (parts=%d)", len(bodies), len(l.Parts()))
	}
	for _, b := range bodies {
		if !b.Static() {
			t.Fatalf("expected %s to be static", b.Name)
		}
	}
	before := snapshot(bodies)
	for range 100 {
		l.World().Step()
	}
	after := snapshot(l.World().Bodies())
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("expected %s unchanged, got %v -> %v", bodies[i].Name, before[i], after[i])
		}
	}
}

func TestInitIsIdempotent(t *testing.T) {
	l := threePointLevel()
	if err := l.Init(); err != nil {
		t.Fatal(err)
	}
	first := snapshot(l.World().Bodies())
	var firstVerts [][]physics.Vector
	for _, b := range l.Parts() {
		firstVerts = append(firstVerts, b.Vertices())
	}

	if err := l.Init(); err != nil {
		t.Fatal(err)
	}
	second := snapshot(l.World().Bodies())
	if len(first) != len(second) {
		t.Fatalf("expected %d bodies after second init, got=%d", len(first), len(second))
	}
	for i, b := range l.Parts() {
		if first[i] != second[i] {
			t.Fatalf("expected same pose for %s, got %v vs %v", b.Name, first[i], second[i])
		}
		vs := b.Vertices()
		for k := range vs {
			if vs[k] != firstVerts[i][k] {
				t.Fatalf("expected same geometry for %s, got %v vs %v", b.Name, vs, firstVerts[i])
			}
		}
	}
}

func TestFloorQuadCoversProfile(t *testing.T) {
	l := threePointLevel()
	if err := l.Init(); err != nil {
		t.Fatal(err)
	}
	ground := l.Parts()[0]
	b := ground.Bounds()
	if math.Abs(b.Min.X) > 1e-9 || math.Abs(b.Max.X-100) > 1e-9 || math.Abs(b.Min.Y) > 1e-9 || math.Abs(b.Max.Y-120) > 1e-9 {
		t.Fatalf("expected first quad to span (0,0)-(100,120), got=%+v", b)
	}
	top := l.Parts()[4]
	if top.Position != physics.Vec(100, 5000) {
		t.Fatalf("expected top wall centred over the level, got=%v", top.Position)
	}
}

func TestInitWithoutGeometry(t *testing.T) {
	l := New(config.Default(), nil)
	l.SetDescription(Description{Geometry: []physics.Vector{physics.Vec(0, 0)}})
	if err := l.Init(); !errors.Is(err, ErrNoGeometry) {
		t.Fatalf("expected ErrNoGeometry, got=%v", err)
	}
}

func TestResetSpawnsFleet(t *testing.T) {
	l := flatLevel()
	if err := l.Reset(); err != nil {
		t.Fatal(err)
	}
	p := l.Player()
	if len(p.Units()) != 2 {
		t.Fatalf("expected scout and hq, got=%d units", len(p.Units()))
	}
	scout, ok := p.SelectedUnit().(*unit.Scout)
	if !ok || !scout.Selected() {
		t.Fatalf("expected the scout selected, got=%v", p.SelectedUnit())
	}
	if scout.Position() != ScoutSpawn {
		t.Fatalf("expected scout at %v, got=%v", ScoutSpawn, scout.Position())
	}
	bodies, joints, _ := l.World().Counts()
	if bodies != 5+3+1 || joints != 2 {
		t.Fatalf("expected 9 bodies and 2 joints, got bodies=%d joints=%d", bodies, joints)
	}

	if err := l.Reset(); err != nil {
		t.Fatal(err)
	}
	if bodies, _, _ := l.World().Counts(); bodies != 9 {
		t.Fatalf("expected reset to rebuild the same world, got=%d bodies", bodies)
	}
	if len(l.Registry().All()) != 2 {
		t.Fatalf("expected old units dropped from the registry, got=%d", len(l.Registry().All()))
	}
}

func TestAttachBlockAndUnitExclusion(t *testing.T) {
	l := flatLevel()
	if err := l.Reset(); err != nil {
		t.Fatal(err)
	}
	if !l.AttachBlock(1, 0) {
		t.Fatal("expected block to attach at (1,0)")
	}
	if l.AttachBlock(1, 0) {
		t.Fatal("expected occupied slot to be rejected")
	}
	if l.AttachBlock(l.Config().GridHalfWidth+1, 0) {
		t.Fatal("expected out of range slot to be rejected")
	}
	if got := len(l.Registry().Modules()); got != 2 {
		t.Fatalf("expected hq and one block registered, got=%d", got)
	}
	_, joints, _ := l.World().Counts()
	if joints != 3 {
		t.Fatalf("expected scout joints plus the block joint, got=%d", joints)
	}

	scout := l.Player().Units()[0]
	for _, m := range l.Registry().Modules() {
		for _, a := range scout.BodyParts() {
			for _, b := range m.BodyParts() {
				if !a.Excludes(b) || !b.Excludes(a) {
					t.Fatalf("expected %s and %s mutually excluded", a.Name, b.Name)
				}
			}
		}
	}

	for range 50 {
		l.Step()
	}
	for _, arb := range l.World().Arbiters() {
		if arb.A.Excludes(arb.B) {
			t.Fatalf("expected no contact between excluded %s and %s", arb.A.Name, arb.B.Name)
		}
	}
}

func TestRemoveUnit(t *testing.T) {
	l := flatLevel()
	if err := l.Reset(); err != nil {
		t.Fatal(err)
	}
	scout := l.Player().Units()[0]
	if err := l.RemoveUnit(scout); err != nil {
		t.Fatal(err)
	}
	bodies, joints, _ := l.World().Counts()
	if bodies != 6 || joints != 0 {
		t.Fatalf("expected only statics and hq left, got bodies=%d joints=%d", bodies, joints)
	}
	if err := l.RemoveUnit(scout); !errors.Is(err, physics.ErrUnknownBody) {
		t.Fatalf("expected ErrUnknownBody on second removal, got=%v", err)
	}
	if len(l.Player().Units()) != 1 {
		t.Fatalf("expected scout gone from the fleet, got=%d", len(l.Player().Units()))
	}
}

func TestContactPointsFollowConfig(t *testing.T) {
	l := flatLevel()
	if err := l.Reset(); err != nil {
		t.Fatal(err)
	}
	l.Step()
	if l.ContactPoints() != nil {
		t.Fatal("expected no contacts while drawing is off")
	}
	cfg := l.Config()
	cfg.DrawContacts = true
	l.ApplyConfig(cfg)
	found := false
	for range 40 {
		l.Step()
		if len(l.ContactPoints()) > 0 {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected contacts while the units land")
	}
}

func TestInfo(t *testing.T) {
	l := threePointLevel()
	if err := l.Init(); err != nil {
		t.Fatal(err)
	}
	info := l.Info()
	for _, want := range []string{"Name: test", "Bodies: 5", "Joints: 0", "(100,120)"} {
		if !strings.Contains(info, want) {
			t.Fatalf("expected %q in info, got=%q", want, info)
		}
	}
}

func spawnScout(t *testing.T) (*Level, *unit.Scout) {
	t.Helper()
	l := flatLevel()
	if err := l.Reset(); err != nil {
		t.Fatal(err)
	}
	scout, ok := l.Player().SelectedUnit().(*unit.Scout)
	if !ok {
		t.Fatalf("expected the scout selected, got=%v", l.Player().SelectedUnit())
	}
	return l, scout
}

func TestScoutStaysUprightOnFlatGround(t *testing.T) {
	l, scout := spawnScout(t)
	for range 200 {
		l.Step()
	}
	if rot := scout.Chassis().Rotation; math.Abs(rot) > 0.1 {
		t.Fatalf("expected the scout upright, got rotation=%f", rot)
	}
	for _, w := range scout.Wheels() {
		if w.TouchingCount() == 0 {
			t.Fatalf("expected %s on the ground", w.Name)
		}
	}
	for _, j := range scout.Joints() {
		if e := j.Error(); e > 1 {
			t.Fatalf("expected the wheels to stay welded, got error=%f", e)
		}
	}
}

func TestScoutDrivesRight(t *testing.T) {
	l, scout := spawnScout(t)
	for range 40 {
		l.Step()
	}
	start := scout.Position().X
	for range 40 {
		scout.Move(unit.Right)
		l.Step()
	}
	if dx := scout.Position().X - start; dx < 50 {
		t.Fatalf("expected the scout to drive right, moved dx=%f", dx)
	}
	if rot := scout.Chassis().Rotation; math.Abs(rot) > 0.5 {
		t.Fatalf("expected the scout to stay on its wheels, got rotation=%f", rot)
	}
}

func TestRemoveAttachedBlockFreesSlot(t *testing.T) {
	l := flatLevel()
	if err := l.Reset(); err != nil {
		t.Fatal(err)
	}
	if !l.AttachBlock(1, 0) {
		t.Fatal("expected block to attach at (1,0)")
	}
	block, ok := l.HQ().ModuleAt(1, 0).(*unit.Block)
	if !ok {
		t.Fatalf("expected a block at (1,0), got=%v", l.HQ().ModuleAt(1, 0))
	}
	if err := l.RemoveUnit(block); err != nil {
		t.Fatal(err)
	}
	if l.HQ().ModuleAt(1, 0) != nil {
		t.Fatal("expected the slot freed")
	}
	if l.World().HasBody(block.Body()) || l.Registry().Contains(block) {
		t.Fatal("expected the block gone from world and registry")
	}
	if _, joints, _ := l.World().Counts(); joints != 2 {
		t.Fatalf("expected only the scout joints, got=%d", joints)
	}

	if !l.AttachBlock(2, 0) {
		t.Fatal("expected block to attach at (2,0)")
	}
	if l.World().HasBody(block.Body()) {
		t.Fatal("expected the removed block to stay out of the world")
	}
	if !l.AttachBlock(1, 0) {
		t.Fatal("expected the freed slot to accept a new block")
	}
}

func TestRemoveHQRemovesItsModules(t *testing.T) {
	l := flatLevel()
	if err := l.Reset(); err != nil {
		t.Fatal(err)
	}
	hq := l.HQ()
	if !l.AttachBlock(1, 0) || !l.AttachBlock(0, 1) {
		t.Fatal("expected blocks to attach")
	}
	if err := l.RemoveUnit(hq); err != nil {
		t.Fatal(err)
	}
	if l.HQ() != nil {
		t.Fatal("expected no HQ after removal")
	}
	if got := len(l.Registry().Modules()); got != 0 {
		t.Fatalf("expected no modules registered, got=%d", got)
	}
	bodies, joints, _ := l.World().Counts()
	if bodies != 5+3 || joints != 2 {
		t.Fatalf("expected statics and scout only, got bodies=%d joints=%d", bodies, joints)
	}
	if l.AttachBlock(1, 0) {
		t.Fatal("expected no attachment without an HQ")
	}
}
