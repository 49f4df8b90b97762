package physics

import (
	"math"
	"testing"
)

func TestCollideCircles(t *testing.T) {
	a := NewBody("a", NewCircle(1), 1)
	b := NewBody("b", NewCircle(1), 1)
	b.Position = Vec(1.5, 0)

	m, ok := Collide(a, b)
	if !ok {
		t.Fatal("expected overlapping circles to collide")
	}
	if !near(m.Penetration, 0.5, 1e-9) {
		t.Fatalf("expected penetration 0.5, got=%f", m.Penetration)
	}
	if !near(m.Normal.X, 1, 1e-9) || !near(m.Normal.Y, 0, 1e-9) {
		t.Fatalf("expected normal (1,0), got=%+v", m.Normal)
	}

	b.Position = Vec(3, 0)
	if _, ok := Collide(a, b); ok {
		t.Fatal("expected separated circles not to collide")
	}
}

func TestCollideBoxOnBox(t *testing.T) {
	ground := NewStaticBody("ground", NewBox(100, 10))
	box := NewBody("box", NewBox(10, 10), 1)
	box.Position = Vec(0, 9)

	m, ok := Collide(ground, box)
	if !ok {
		t.Fatal("expected boxes to collide")
	}
	if m.Count != 2 {
		t.Fatalf("expected 2 contact points, got=%d", m.Count)
	}
	if !near(m.Normal.Y, 1, 1e-9) {
		t.Fatalf("expected normal pointing up from ground, got=%+v", m.Normal)
	}
	if !near(m.Penetration, 1, 1e-9) {
		t.Fatalf("expected penetration 1, got=%f", m.Penetration)
	}

	// Reversed order flips the normal.
	m, ok = Collide(box, ground)
	if !ok || !near(m.Normal.Y, -1, 1e-9) {
		t.Fatalf("expected downward normal for reversed pair, got=%+v ok=%v", m.Normal, ok)
	}
}

func TestCollideCircleOnBox(t *testing.T) {
	ground := NewStaticBody("ground", NewBox(100, 10))
	ball := NewBody("ball", NewCircle(2), 1)
	ball.Position = Vec(3, 6.5)

	m, ok := Collide(ball, ground)
	if !ok {
		t.Fatal("expected circle to touch box")
	}
	if !near(m.Normal.Y, -1, 1e-9) {
		t.Fatalf("expected normal from circle down into box, got=%+v", m.Normal)
	}
	if !near(m.Penetration, 0.5, 1e-9) {
		t.Fatalf("expected penetration 0.5, got=%f", m.Penetration)
	}

	m, ok = Collide(ground, ball)
	if !ok || !near(m.Normal.Y, 1, 1e-9) {
		t.Fatalf("expected upward normal for box→circle, got=%+v ok=%v", m.Normal, ok)
	}
}

func TestCollideCircleCentreInsideBox(t *testing.T) {
	box := NewStaticBody("box", NewBox(20, 20))
	ball := NewBody("ball", NewCircle(5), 1)
	ball.Position = Vec(0, 7)

	m, ok := Collide(ball, box)
	if !ok {
		t.Fatal("expected a sunken circle to collide")
	}
	// 3 below the top face plus the full radius.
	if !near(m.Penetration, 8, 1e-9) {
		t.Fatalf("expected penetration 8, got=%f", m.Penetration)
	}
	if !near(m.Normal.Y, -1, 1e-9) {
		t.Fatalf("expected normal towards the box, got=%+v", m.Normal)
	}
}

func TestCollideCircleOnBoxCorner(t *testing.T) {
	box := NewStaticBody("box", NewBox(10, 10))
	ball := NewBody("ball", NewCircle(1), 1)
	ball.Position = Vec(5.5, 5.5)

	m, ok := Collide(ball, box)
	if !ok {
		t.Fatal("expected circle to touch the corner")
	}
	if m.Points[0] != Vec(5, 5) {
		t.Fatalf("expected contact on the corner, got=%+v", m.Points[0])
	}
	if !near(m.Normal.X, -math.Sqrt2/2, 1e-9) || !near(m.Normal.Y, -math.Sqrt2/2, 1e-9) {
		t.Fatalf("expected diagonal normal, got=%+v", m.Normal)
	}
}

func TestCollideLineAsFloor(t *testing.T) {
	floor := NewStaticBody("floor", NewLine(Vec(-50, 0), Vec(50, 0)))
	box := NewBody("box", NewBox(4, 4), 1)
	box.Position = Vec(0, 1.5)

	m, ok := Collide(floor, box)
	if !ok {
		t.Fatal("expected box to touch the segment")
	}
	if !near(math.Abs(m.Normal.Y), 1, 1e-9) {
		t.Fatalf("expected vertical normal, got=%+v", m.Normal)
	}
}

func TestCollideDegenerateNeverTouches(t *testing.T) {
	flat := NewStaticBody("flat", NewPolygon(Vec(0, 0), Vec(1, 0), Vec(2, 0)))
	box := NewBody("box", NewBox(10, 10), 1)
	if _, ok := Collide(flat, box); ok {
		t.Fatal("expected degenerate polygon to produce no contacts")
	}
}
