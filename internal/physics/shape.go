package physics

import "math"

// ShapeKind identifies the concrete shape behind a Shape.
type ShapeKind int

const (
	KindBox ShapeKind = iota
	KindCircle
	KindPolygon
	KindLine
)

func (k ShapeKind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindCircle:
		return "circle"
	case KindPolygon:
		return "polygon"
	case KindLine:
		return "line"
	}
	return "unknown"
}

// Shape is a collision shape in body-local space. Boxes and lines collide
// as convex polygons.
type Shape interface {
	Kind() ShapeKind
	Area() float64
	// Inertia returns the moment of inertia about the body origin for the given mass.
	Inertia(mass float64) float64
	// Bounds returns the world-space bounding box at the given pose.
	Bounds(pos Vector, rot float64) AABB

	// hull returns the polygon used by the narrow-phase, or nil for circles.
	hull() *Polygon
}

// Circle is a circle centred on the body origin.
type Circle struct {
	Radius float64
}

// NewCircle creates a circle shape. Negative radii are treated as zero.
func NewCircle(radius float64) *Circle {
	return &Circle{Radius: math.Max(radius, 0)}
}

func (c *Circle) Kind() ShapeKind { return KindCircle }
func (c *Circle) Area() float64   { return math.Pi * c.Radius * c.Radius }
func (c *Circle) hull() *Polygon  { return nil }

func (c *Circle) Inertia(mass float64) float64 {
	return 0.5 * mass * c.Radius * c.Radius
}

func (c *Circle) Bounds(pos Vector, _ float64) AABB {
	r := Vector{c.Radius, c.Radius}
	return AABB{Min: pos.Sub(r), Max: pos.Add(r)}
}

// Polygon is a convex polygon. Vertices are stored counter-clockwise with
// outward face normals; normals[i] belongs to the edge vertices[i]→vertices[i+1].
type Polygon struct {
	vertices   []Vector
	normals    []Vector
	degenerate bool
}

// NewPolygon creates a convex polygon from vertices in body-local space.
// Clockwise input is reversed, repeated vertices are dropped. A polygon
// with fewer than two distinct vertices, or three or more collinear ones,
// is degenerate and never collides. Two vertices form a segment.
func NewPolygon(vertices ...Vector) *Polygon {
	p := &Polygon{}
	for _, v := range vertices {
		if !v.Finite() {
			continue
		}
		if n := len(p.vertices); n > 0 && DistanceSquared(p.vertices[n-1], v) < epsilon*epsilon {
			continue
		}
		p.vertices = append(p.vertices, v)
	}
	for len(p.vertices) > 1 && DistanceSquared(p.vertices[0], p.vertices[len(p.vertices)-1]) < epsilon*epsilon {
		p.vertices = p.vertices[:len(p.vertices)-1]
	}

	switch area := signedArea(p.vertices); {
	case len(p.vertices) < 2:
		p.degenerate = true
	case len(p.vertices) > 2 && math.Abs(area) < epsilon:
		p.degenerate = true
	case area < 0:
		for i, j := 0, len(p.vertices)-1; i < j; i, j = i+1, j-1 {
			p.vertices[i], p.vertices[j] = p.vertices[j], p.vertices[i]
		}
	}

	if !p.degenerate {
		p.normals = make([]Vector, len(p.vertices))
		for i, v := range p.vertices {
			e := p.vertices[(i+1)%len(p.vertices)].Sub(v)
			p.normals[i] = Vector{e.Y, -e.X}.Normalize()
		}
	}
	return p
}

func (p *Polygon) Kind() ShapeKind { return KindPolygon }
func (p *Polygon) hull() *Polygon  { return p }

// Degenerate reports whether the polygon is excluded from collision.
func (p *Polygon) Degenerate() bool { return p.degenerate }

// Vertices returns a copy of the local-space vertices.
func (p *Polygon) Vertices() []Vector {
	return append([]Vector(nil), p.vertices...)
}

func (p *Polygon) Area() float64 {
	return math.Abs(signedArea(p.vertices))
}

// Inertia follows the triangle-fan formula with the third vertex at the
// origin. Flat polygons fall back to a rod about the origin.
func (p *Polygon) Inertia(mass float64) float64 {
	area := p.Area()
	if area < epsilon {
		r := 0.0
		for _, v := range p.vertices {
			r = math.Max(r, v.LenSqr())
		}
		return mass * r / 3
	}
	density := mass / area
	inertia := 0.0
	n := len(p.vertices)
	for i := range n {
		p1 := p.vertices[i]
		p2 := p.vertices[(i+1)%n]
		d := p1.Cross(p2)
		intx2 := p1.X*p1.X + p2.X*p1.X + p2.X*p2.X
		inty2 := p1.Y*p1.Y + p2.Y*p1.Y + p2.Y*p2.Y
		inertia += (0.25 / 3 * d) * (intx2 + inty2)
	}
	return math.Abs(density * inertia)
}

func (p *Polygon) Bounds(pos Vector, rot float64) AABB {
	return boundsOf(p.vertices, newTransform(pos, rot))
}

// Box is an axis-aligned rectangle centred on the body origin.
type Box struct {
	Width, Height float64
	poly          *Polygon
}

// NewBox creates a width×height box.
func NewBox(width, height float64) *Box {
	hw, hh := math.Abs(width)/2, math.Abs(height)/2
	return &Box{
		Width:  math.Abs(width),
		Height: math.Abs(height),
		poly:   NewPolygon(Vec(hw, -hh), Vec(hw, hh), Vec(-hw, hh), Vec(-hw, -hh)),
	}
}

func (b *Box) Kind() ShapeKind { return KindBox }
func (b *Box) Area() float64   { return b.Width * b.Height }
func (b *Box) hull() *Polygon  { return b.poly }

func (b *Box) Inertia(mass float64) float64 {
	return mass * (b.Width*b.Width + b.Height*b.Height) / 12
}

func (b *Box) Bounds(pos Vector, rot float64) AABB {
	return b.poly.Bounds(pos, rot)
}

// Line is a segment between two body-local points.
type Line struct {
	A, B Vector
	poly *Polygon
}

// NewLine creates a segment shape.
func NewLine(a, b Vector) *Line {
	return &Line{A: a, B: b, poly: NewPolygon(a, b)}
}

func (l *Line) Kind() ShapeKind { return KindLine }
func (l *Line) Area() float64   { return 0 }
func (l *Line) hull() *Polygon  { return l.poly }

func (l *Line) Inertia(mass float64) float64 {
	return l.poly.Inertia(mass)
}

func (l *Line) Bounds(pos Vector, rot float64) AABB {
	return l.poly.Bounds(pos, rot)
}

func signedArea(vs []Vector) float64 {
	area := 0.0
	for i, v := range vs {
		area += v.Cross(vs[(i+1)%len(vs)])
	}
	return area / 2
}

func boundsOf(local []Vector, t transform) AABB {
	if len(local) == 0 {
		return AABB{Min: t.pos, Max: t.pos}
	}
	first := t.apply(local[0])
	box := AABB{Min: first, Max: first}
	for _, v := range local[1:] {
		w := t.apply(v)
		box.Min.X = math.Min(box.Min.X, w.X)
		box.Min.Y = math.Min(box.Min.Y, w.Y)
		box.Max.X = math.Max(box.Max.X, w.X)
		box.Max.Y = math.Max(box.Max.Y, w.Y)
	}
	return box
}
