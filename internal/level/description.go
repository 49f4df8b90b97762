package level

import (
	"fmt"
	"strings"

	"github.com/tomz197/airclash/internal/physics"
)

// Description is a decoded level: the floor's top profile from left to
// right in ground-up coordinates and the level width.
type Description struct {
	Name     string
	Width    int
	Geometry []physics.Vector
}

func (d Description) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s  Width: %d\nGeometry:", d.Name, d.Width)
	for i, p := range d.Geometry {
		if i%4 == 0 {
			sb.WriteString("\n ")
		}
		fmt.Fprintf(&sb, " (%g,%g)", p.X, p.Y)
	}
	return sb.String()
}
