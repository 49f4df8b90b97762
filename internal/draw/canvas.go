package draw

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// cell states as rendered in the terminal.
const (
	cellEmpty byte = iota
	cellUpper
	cellLower
	cellFull
	cellDirty // unknown terminal content, always rewritten
)

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// Supports scaling from logical coordinates to actual terminal pixels.
// Render only writes cells that changed since the previous frame.
type Canvas struct {
	termWidth      int    // Actual terminal columns
	termHeight     int    // Actual terminal rows
	subPixelHeight int    // termHeight * 2
	pixels         []bool // Flat slice: [y * termWidth + x] - true if pixel is set
	shown          []byte // Cell states last written to the terminal

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64 // in sub-pixels
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// 0-based terminal offsets of the render area when the terminal is
	// larger than the max resolution.
	offsetCol int
	offsetRow int

	renderBuf       strings.Builder
	numBuf          [20]byte
	scaledBuf       []Point
	intersectionBuf []float64
	polygonBuf      []Point
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// logicalWidth/Height define the coordinate space used by the renderer.
// termWidth/Height are the actual terminal dimensions.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{logicalWidth: logicalWidth, logicalHeight: logicalHeight}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth, termHeight = max(termWidth, 0), max(termHeight, 0)
	if c.pixels == nil || termWidth != c.termWidth || termHeight != c.termHeight {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]bool, c.subPixelHeight*termWidth)
		c.shown = make([]byte, termHeight*termWidth)
		c.ForceRedraw()
	}
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// ForceRedraw makes the next Render rewrite every cell, e.g. after the
// terminal was cleared.
func (c *Canvas) ForceRedraw() {
	for i := range c.shown {
		c.shown[i] = cellDirty
	}
}

// Invalidate marks n cells starting at 1-based canvas column col of row as
// overwritten by text, so the next Render restores them.
func (c *Canvas) Invalidate(col, row, n int) {
	if row < 1 || row > c.termHeight {
		return
	}
	for x := max(col, 1); x < col+n && x <= c.termWidth; x++ {
		c.shown[(row-1)*c.termWidth+x-1] = cellDirty
	}
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.ForceRedraw()
	}
	c.offsetCol = col
	c.offsetRow = row
}

func (c *Canvas) OffsetCol() int         { return c.offsetCol }
func (c *Canvas) OffsetRow() int         { return c.offsetRow }
func (c *Canvas) LogicalWidth() float64  { return c.logicalWidth }
func (c *Canvas) LogicalHeight() float64 { return c.logicalHeight }
func (c *Canvas) TerminalWidth() int     { return c.termWidth }
func (c *Canvas) TerminalHeight() int    { return c.termHeight }

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// setPixel sets a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = true
	}
}

func (c *Canvas) toPixel(p Point) (int, int) {
	return int(math.Round(p.X * c.scaleX)), int(math.Round(p.Y * c.scaleY))
}

// SetFloat sets a pixel using float logical coordinates (applies scaling).
func (c *Canvas) SetFloat(x, y float64) {
	c.setPixel(c.toPixel(Point{x, y}))
}

// DrawLine draws a line on the canvas. Coordinates are in logical space.
func (c *Canvas) DrawLine(p1, p2 Point) {
	x1, y1 := c.toPixel(p1)
	x2, y2 := c.toPixel(p2)
	c.line(x1, y1, x2, y2)
}

// line rasterises a segment in pixel space using Bresenham's algorithm.
// Segments far outside the canvas are skipped.
func (c *Canvas) line(x1, y1, x2, y2 int) {
	if (x1 < 0 && x2 < 0) || (y1 < 0 && y2 < 0) ||
		(x1 >= c.termWidth && x2 >= c.termWidth) || (y1 >= c.subPixelHeight && y2 >= c.subPixelHeight) {
		return
	}
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.setPixel(x1, y1)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon draws a polygon on the canvas.
// If filled is true, the interior is filled using scanline algorithm.
func (c *Canvas) DrawPolygon(points []Point, filled bool) {
	switch len(points) {
	case 0:
		return
	case 1:
		c.SetFloat(points[0].X, points[0].Y)
		return
	case 2:
		c.DrawLine(points[0], points[1])
		return
	}
	if filled {
		c.fillPolygon(points)
	}
	n := len(points)
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n])
	}
}

// DrawCircle draws the outline of a circle. Unequal axis scales turn it
// into an ellipse in pixel space.
func (c *Canvas) DrawCircle(center Point, radius float64) {
	rx, ry := radius*c.scaleX, radius*c.scaleY
	cx, cy := center.X*c.scaleX, center.Y*c.scaleY
	if rx < 0.5 && ry < 0.5 {
		c.setPixel(int(math.Round(cx)), int(math.Round(cy)))
		return
	}
	steps := max(8, int(2*math.Pi*math.Max(rx, ry)))
	px, py := int(math.Round(cx+rx)), int(math.Round(cy))
	for i := 1; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x, y := int(math.Round(cx+rx*math.Cos(a))), int(math.Round(cy+ry*math.Sin(a)))
		c.line(px, py, x, y)
		px, py = x, y
	}
}

// fillPolygon fills a polygon using scanline algorithm.
// Works in pixel space for proper scaling.
func (c *Canvas) fillPolygon(points []Point) {
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]
	for i, p := range points {
		scaled[i] = Point{X: p.X * c.scaleX, Y: p.Y * c.scaleY}
	}

	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	yStart := max(int(math.Floor(minY)), 0)
	yEnd := min(int(math.Ceil(maxY)), c.subPixelHeight-1)

	for y := yStart; y <= yEnd; y++ {
		scanY := float64(y) + 0.5
		intersections := c.intersectionBuf[:0]
		n := len(scaled)
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]
			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				intersections = append(intersections, p1.X+t*(p2.X-p1.X))
			}
		}
		c.intersectionBuf = intersections
		sort.Float64s(intersections)

		for i := 0; i+1 < len(intersections); i += 2 {
			xStart := max(int(math.Ceil(intersections[i])), 0)
			xEnd := min(int(math.Floor(intersections[i+1])), c.termWidth-1)
			for x := xStart; x <= xEnd; x++ {
				c.setPixel(x, y)
			}
		}
	}
}

// Render writes the cells that changed since the last Render using
// half-block characters.
func (c *Canvas) Render(w io.Writer) error {
	c.renderBuf.Reset()
	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth
		for col := 0; col < c.termWidth; col++ {
			top := c.pixels[topOffset+col]
			bottom := c.pixels[bottomOffset+col]

			state := cellEmpty
			switch {
			case top && bottom:
				state = cellFull
			case top:
				state = cellUpper
			case bottom:
				state = cellLower
			}
			idx := row*c.termWidth + col
			if c.shown[idx] == state {
				continue
			}
			c.shown[idx] = state

			c.renderBuf.WriteString("\033[")
			c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row+1+c.offsetRow), 10))
			c.renderBuf.WriteByte(';')
			c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col+1+c.offsetCol), 10))
			c.renderBuf.WriteByte('H')
			switch state {
			case cellFull:
				c.renderBuf.WriteRune(BlockFull)
			case cellUpper:
				c.renderBuf.WriteRune(BlockUpperHalf)
			case cellLower:
				c.renderBuf.WriteRune(BlockLowerHalf)
			default:
				c.renderBuf.WriteByte(' ')
			}
		}
	}
	_, err := io.WriteString(w, c.renderBuf.String())
	return err
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
func (c *Canvas) RenderBorder(w io.Writer) error {
	hasH := c.offsetCol >= 1 // room for left/right bars
	hasV := c.offsetRow >= 1 // room for top/bottom bars
	if !hasH && !hasV {
		return nil
	}

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	bar := strings.Repeat("─", c.termWidth)

	var buf strings.Builder
	move := func(row, col int) {
		buf.WriteString("\033[" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "H")
	}
	if hasV {
		if hasH {
			move(top, left)
			buf.WriteString("┌" + bar + "┐")
			move(bottom, left)
			buf.WriteString("└" + bar + "┘")
		} else {
			move(top, c.offsetCol+1)
			buf.WriteString(bar)
			move(bottom, c.offsetCol+1)
			buf.WriteString(bar)
		}
	}
	if hasH {
		for row := c.offsetRow + 1; row <= c.offsetRow+c.termHeight; row++ {
			move(row, left)
			buf.WriteString("│")
			move(row, right)
			buf.WriteString("│")
		}
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

// LogicalToTerminal converts logical coordinates to the 1-based canvas
// position (col, row) of the cell containing them.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(Point{x, y})
	return px + 1, py/2 + 1
}

// InView reports whether the 1-based canvas position is on the canvas.
func (c *Canvas) InView(col, row int) bool {
	return col >= 1 && col <= c.termWidth && row >= 1 && row <= c.termHeight
}

// BorrowPoints returns a reusable slice of Points with the given length.
// The returned slice is only valid until the next call to BorrowPoints.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.polygonBuf) < n {
		c.polygonBuf = make([]Point, n)
	}
	return c.polygonBuf[:n]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
