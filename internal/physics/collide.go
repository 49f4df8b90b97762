package physics

import "math"

// Contact is a single contact point.
type Contact struct {
	Position    Vector
	Normal      Vector // unit normal pointing from body A to body B
	Penetration float64
}

// Manifold is the contact information between two bodies.
type Manifold struct {
	Normal      Vector // from A to B
	Penetration float64
	Points      [2]Vector
	Count       int
}

// Contacts expands the manifold into individual contacts.
func (m Manifold) Contacts() []Contact {
	out := make([]Contact, m.Count)
	for i := range m.Count {
		out[i] = Contact{Position: m.Points[i], Normal: m.Normal, Penetration: m.Penetration}
	}
	return out
}

// Collide runs the narrow-phase test between a and b. It reports false when
// the bodies are separated or either shape is degenerate.
func Collide(a, b *Body) (Manifold, bool) {
	pa, pb := a.shape.hull(), b.shape.hull()
	if (pa != nil && pa.degenerate) || (pb != nil && pb.degenerate) {
		return Manifold{}, false
	}

	var m Manifold
	switch {
	case pa == nil && pb == nil:
		m = circleCircle(a, b)
	case pa == nil:
		m = circlePolygon(a, b, pb)
	case pb == nil:
		m = circlePolygon(b, a, pa)
		m.Normal = m.Normal.Neg()
	default:
		m = polygonPolygon(a, pa, b, pb)
	}
	if m.Count == 0 || !m.Normal.Finite() || !finite(m.Penetration) {
		return Manifold{}, false
	}
	return m, true
}

func circleCircle(a, b *Body) Manifold {
	var m Manifold
	ra := a.shape.(*Circle).Radius
	rb := b.shape.(*Circle).Radius

	if !CirclesOverlap(a.Position, ra, b.Position, rb) {
		return m
	}
	normal := b.Position.Sub(a.Position)
	distance := normal.Len()
	m.Count = 1
	if distance == 0 {
		m.Penetration = ra
		m.Normal = Vector{1, 0}
		m.Points[0] = a.Position
		return m
	}
	m.Penetration = ra + rb - distance
	m.Normal = normal.Scale(1 / distance)
	m.Points[0] = a.Position.Add(m.Normal.Scale(ra))
	return m
}

// circlePolygon collides circle body a with polygon body b. The normal
// points from the circle towards the polygon.
func circlePolygon(a, b *Body, poly *Polygon) Manifold {
	var m Manifold
	radius := a.shape.(*Circle).Radius
	tb := b.transform()

	// Circle centre in polygon space.
	center := tb.invert(a.Position)

	separation := -math.MaxFloat64
	face := 0
	for i, v := range poly.vertices {
		s := poly.normals[i].Dot(center.Sub(v))
		if s > radius {
			return m
		}
		if s > separation {
			separation = s
			face = i
		}
	}

	v1 := poly.vertices[face]
	v2 := poly.vertices[(face+1)%len(poly.vertices)]

	if separation < epsilon {
		// Centre inside the polygon.
		m.Count = 1
		m.Normal = tb.applyDir(poly.normals[face]).Neg()
		m.Points[0] = a.Position.Add(m.Normal.Scale(radius))
		m.Penetration = radius - separation
		return m
	}

	dot1 := center.Sub(v1).Dot(v2.Sub(v1))
	dot2 := center.Sub(v2).Dot(v1.Sub(v2))
	m.Penetration = radius - separation

	switch {
	case dot1 <= 0:
		if DistanceSquared(center, v1) > radius*radius {
			return m
		}
		m.Count = 1
		m.Normal = tb.applyDir(v1.Sub(center)).Normalize()
		m.Points[0] = tb.apply(v1)
	case dot2 <= 0:
		if DistanceSquared(center, v2) > radius*radius {
			return m
		}
		m.Count = 1
		m.Normal = tb.applyDir(v2.Sub(center)).Normalize()
		m.Points[0] = tb.apply(v2)
	default:
		n := poly.normals[face]
		if center.Sub(v1).Dot(n) > radius {
			return m
		}
		m.Count = 1
		m.Normal = tb.applyDir(n).Neg()
		m.Points[0] = a.Position.Add(m.Normal.Scale(radius))
	}
	return m
}

func polygonPolygon(a *Body, pa *Polygon, b *Body, pb *Polygon) Manifold {
	var m Manifold
	ta, tb := a.transform(), b.transform()

	faceA, penA := leastPenetrationAxis(pa, ta, pb, tb)
	if penA >= 0 {
		return m
	}
	faceB, penB := leastPenetrationAxis(pb, tb, pa, ta)
	if penB >= 0 {
		return m
	}

	ref, refT, inc, incT, refIndex := pa, ta, pb, tb, faceA
	flip := false
	if !biasGreaterThan(penA, penB) {
		ref, refT, inc, incT, refIndex = pb, tb, pa, ta, faceB
		flip = true
	}

	incident := incidentFace(ref, refT, inc, incT, refIndex)

	v1 := refT.apply(ref.vertices[refIndex])
	v2 := refT.apply(ref.vertices[(refIndex+1)%len(ref.vertices)])

	side := v2.Sub(v1).Normalize()
	refNormal := Vector{side.Y, -side.X}
	refC := refNormal.Dot(v1)
	negSide := -side.Dot(v1)
	posSide := side.Dot(v2)

	if clip(side.Neg(), negSide, &incident) < 2 {
		return m
	}
	if clip(side, posSide, &incident) < 2 {
		return m
	}

	m.Normal = refNormal
	if flip {
		m.Normal = refNormal.Neg()
	}

	for _, p := range incident {
		if sep := refNormal.Dot(p) - refC; sep <= 0 {
			m.Points[m.Count] = p
			m.Penetration += -sep
			m.Count++
		}
	}
	if m.Count > 0 {
		m.Penetration /= float64(m.Count)
	}
	return m
}

// leastPenetrationAxis returns the face of a with the largest separation
// from b. A non-negative distance means a separating axis exists.
func leastPenetrationAxis(a *Polygon, ta transform, b *Polygon, tb transform) (int, float64) {
	bestIndex := 0
	bestDistance := -math.MaxFloat64
	for i, n := range a.normals {
		// Face normal and vertex of a in b's model space.
		normal := tb.invertDir(ta.applyDir(n))
		vertex := tb.invert(ta.apply(a.vertices[i]))
		support := b.support(normal.Neg())
		if d := normal.Dot(support.Sub(vertex)); d > bestDistance {
			bestDistance = d
			bestIndex = i
		}
	}
	return bestIndex, bestDistance
}

// support returns the vertex furthest along dir.
func (p *Polygon) support(dir Vector) Vector {
	best := -math.MaxFloat64
	var vertex Vector
	for _, v := range p.vertices {
		if proj := v.Dot(dir); proj > best {
			best = proj
			vertex = v
		}
	}
	return vertex
}

// incidentFace finds the face of inc most anti-parallel to the reference
// normal and returns it in world space.
func incidentFace(ref *Polygon, refT transform, inc *Polygon, incT transform, index int) [2]Vector {
	refNormal := incT.invertDir(refT.applyDir(ref.normals[index]))

	face := 0
	minDot := math.MaxFloat64
	for i, n := range inc.normals {
		if d := refNormal.Dot(n); d < minDot {
			minDot = d
			face = i
		}
	}
	return [2]Vector{
		incT.apply(inc.vertices[face]),
		incT.apply(inc.vertices[(face+1)%len(inc.vertices)]),
	}
}

// clip keeps the part of face behind the plane n·x = c and returns the
// number of points left.
func clip(n Vector, c float64, face *[2]Vector) int {
	sp := 0
	out := *face

	da := n.Dot(face[0]) - c
	db := n.Dot(face[1]) - c

	if da <= 0 {
		out[sp] = face[0]
		sp++
	}
	if db <= 0 {
		out[sp] = face[1]
		sp++
	}
	if da*db < 0 && sp < 2 {
		alpha := da / (da - db)
		out[sp] = face[0].Add(face[1].Sub(face[0]).Scale(alpha))
		sp++
	}

	*face = out
	return sp
}

func biasGreaterThan(a, b float64) bool {
	return a >= b*0.95+a*0.01
}
