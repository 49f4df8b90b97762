package draw

import (
	"bytes"
	"strings"
	"testing"
)

func writes(t *testing.T, c *Canvas) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func cellsWritten(s string) int {
	return strings.Count(s, "\033[")
}

func TestRenderOnlyChangedCells(t *testing.T) {
	c := NewScaledCanvas(8, 4, 8, 8)

	if got := cellsWritten(writes(t, c)); got != 32 {
		t.Fatalf("expected first frame to write every cell, got=%d", got)
	}
	if got := writes(t, c); got != "" {
		t.Fatalf("expected unchanged frame to write nothing, got=%q", got)
	}

	c.SetFloat(2, 3)
	out := writes(t, c)
	if got := cellsWritten(out); got != 1 {
		t.Fatalf("expected one changed cell, got=%d", got)
	}
	if !strings.Contains(out, "\033[2;3H"+string(BlockLowerHalf)) {
		t.Fatalf("expected lower half block at row 2 col 3, got=%q", out)
	}

	c.Clear()
	if out := writes(t, c); out != "\033[2;3H " {
		t.Fatalf("expected cleared cell blanked, got=%q", out)
	}
}

func TestForceRedrawAndInvalidate(t *testing.T) {
	c := NewScaledCanvas(6, 3, 6, 6)
	writes(t, c)

	c.Invalidate(5, 2, 4)
	if got := cellsWritten(writes(t, c)); got != 2 {
		t.Fatalf("expected invalidation clipped to two cells, got=%d", got)
	}

	c.ForceRedraw()
	if got := cellsWritten(writes(t, c)); got != 18 {
		t.Fatalf("expected full redraw, got=%d", got)
	}

	c.SetOffset(2, 1)
	out := writes(t, c)
	if got := cellsWritten(out); got != 18 {
		t.Fatalf("expected redraw after offset change, got=%d", got)
	}
	if !strings.HasPrefix(out, "\033[2;3H") {
		t.Fatalf("expected offset applied to first cell, got=%q", out[:8])
	}
}

func TestResizeKeepsLogicalSpace(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	c.Resize(20, 10)
	if c.TerminalWidth() != 20 || c.TerminalHeight() != 10 {
		t.Fatalf("expected 20x10, got=%dx%d", c.TerminalWidth(), c.TerminalHeight())
	}
	if col, row := c.LogicalToTerminal(50, 50); col != 11 || row != 6 {
		t.Fatalf("expected center at (11,6), got=(%d,%d)", col, row)
	}
	if !c.InView(20, 10) || c.InView(21, 1) || c.InView(1, 0) {
		t.Fatal("unexpected InView result")
	}
}

func TestDrawCircle(t *testing.T) {
	c := NewScaledCanvas(20, 10, 20, 20)
	c.DrawCircle(Point{10, 10}, 5)

	on := func(x, y int) bool { return c.pixels[y*c.termWidth+x] }
	for _, p := range [][2]int{{15, 10}, {5, 10}, {10, 15}, {10, 5}} {
		if !on(p[0], p[1]) {
			t.Fatalf("expected outline pixel at %v", p)
		}
	}
	if on(10, 10) {
		t.Fatal("expected circle interior to stay empty")
	}
}

func TestFilledPolygon(t *testing.T) {
	c := NewScaledCanvas(10, 5, 10, 10)
	c.DrawPolygon([]Point{{1, 1}, {8, 1}, {8, 8}, {1, 8}}, true)
	if !c.pixels[4*c.termWidth+4] {
		t.Fatal("expected interior filled")
	}
	if c.pixels[9*c.termWidth+9] {
		t.Fatal("expected outside left empty")
	}
}

func TestFrameWriterOffset(t *testing.T) {
	var buf bytes.Buffer
	f := NewFrameWriter(&buf, 3, 1)
	f.Text(2, 2, "hi")
	if f.Pending() == 0 {
		t.Fatal("expected buffered output")
	}
	if buf.Len() != 0 {
		t.Fatal("expected nothing written before flush")
	}
	if err := f.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "\033[3;5Hhi" {
		t.Fatalf("expected offset cursor move, got=%q", got)
	}
	if f.Pending() != 0 {
		t.Fatal("expected empty frame after flush")
	}
}

type countingWriter struct {
	writes []int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes = append(w.writes, len(p))
	return len(p), nil
}

func TestFrameWriterFlushesInChunks(t *testing.T) {
	out := &countingWriter{}
	f := NewFrameWriter(out, 0, 0)
	f.ClearScreen()
	_, _ = f.Write(bytes.Repeat([]byte("x"), 3*flushChunk))
	if err := f.Flush(); err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, n := range out.writes {
		if n > 2*flushChunk {
			t.Fatalf("expected writes bounded by the buffer, got=%d", n)
		}
		total += n
	}
	if want := len(seqClearScreen) + 3*flushChunk; total != want {
		t.Fatalf("expected %d bytes written, got=%d", want, total)
	}
}
