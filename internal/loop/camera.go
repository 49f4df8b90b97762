package loop

import (
	"github.com/tomz197/airclash/internal/draw"
	"github.com/tomz197/airclash/internal/physics"
)

// Camera maps the y-up world onto the y-down logical view.
type Camera struct {
	Left   float64 // world x of the view's left edge
	Bottom float64 // world y of the view's bottom edge
	Scale  float64 // world units per logical unit
	Width  float64 // logical view width
	Height float64 // logical view height
}

func (c Camera) WorldWidth() float64  { return c.Width * c.Scale }
func (c Camera) WorldHeight() float64 { return c.Height * c.Scale }

// Follow centres the view on target, keeping it inside the level
// horizontally and never below the ground line.
func (c *Camera) Follow(target physics.Vector, levelWidth float64) {
	ww, wh := c.WorldWidth(), c.WorldHeight()
	c.Left = min(max(target.X-ww/2, 0), max(levelWidth-ww, 0))
	c.Bottom = max(target.Y-wh/2, 0)
}

// ToView converts a world position to logical view coordinates.
func (c Camera) ToView(p physics.Vector) draw.Point {
	return draw.Point{
		X: (p.X - c.Left) / c.Scale,
		Y: c.Height - (p.Y-c.Bottom)/c.Scale,
	}
}

// Visible reports whether a world box intersects the view.
func (c Camera) Visible(b physics.AABB) bool {
	return b.Max.X >= c.Left && b.Min.X <= c.Left+c.WorldWidth() &&
		b.Max.Y >= c.Bottom && b.Min.Y <= c.Bottom+c.WorldHeight()
}
