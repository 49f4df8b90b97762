package draw

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
)

const (
	seqClearScreen = "\033[H\033[2J"
	seqHideCursor  = "\033[?25l"
	seqShowCursor  = "\033[?25h"
)

// flushChunk bounds a single write to the session output.
const flushChunk = 4096

// FrameWriter collects the output of one frame: the changed canvas cells
// followed by the HUD and console text laid over them. Text positions are
// canvas coordinates; the centering offset of the view is added here.
// Nothing reaches the terminal before Flush.
type FrameWriter struct {
	frame bytes.Buffer
	out   *bufio.Writer
	num   [20]byte

	offCol int
	offRow int
}

// NewFrameWriter returns a FrameWriter sending frames to w.
func NewFrameWriter(w io.Writer, offsetCol, offsetRow int) *FrameWriter {
	return &FrameWriter{
		out:    bufio.NewWriterSize(w, 2*flushChunk),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset moves the view after a resize.
func (f *FrameWriter) SetOffset(offsetCol, offsetRow int) {
	f.offCol = offsetCol
	f.offRow = offsetRow
}

// Write appends raw terminal output, such as a rendered canvas.
func (f *FrameWriter) Write(p []byte) (int, error) {
	return f.frame.Write(p)
}

// ClearScreen queues a full terminal clear, used when the state changes and
// the previous overlay must not linger.
func (f *FrameWriter) ClearScreen() {
	f.frame.WriteString(seqClearScreen)
}

// Text places s at the 1-based canvas cell (col, row). s may carry styling.
func (f *FrameWriter) Text(col, row int, s string) {
	f.frame.WriteString("\033[")
	f.frame.Write(strconv.AppendInt(f.num[:0], int64(row+f.offRow), 10))
	f.frame.WriteByte(';')
	f.frame.Write(strconv.AppendInt(f.num[:0], int64(col+f.offCol), 10))
	f.frame.WriteByte('H')
	f.frame.WriteString(s)
}

// Pending returns the size of the unsent frame.
func (f *FrameWriter) Pending() int {
	return f.frame.Len()
}

// Flush sends the frame in chunks of at most flushChunk bytes and starts a
// new one.
func (f *FrameWriter) Flush() error {
	for data := f.frame.Bytes(); len(data) > 0; {
		n := min(len(data), flushChunk)
		if _, err := f.out.Write(data[:n]); err != nil {
			f.frame.Reset()
			return err
		}
		data = data[n:]
	}
	f.frame.Reset()
	return f.out.Flush()
}

// TermSizeFunc reports the terminal size in cells.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc asks the local terminal on stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// TermSize calls sizeFunc, or DefaultTermSizeFunc when it is nil.
func TermSize(sizeFunc TermSizeFunc) (width, height int, err error) {
	if sizeFunc == nil {
		sizeFunc = DefaultTermSizeFunc
	}
	return sizeFunc()
}

// ClearScreen clears the terminal and homes the cursor.
func ClearScreen(w io.Writer) {
	_, _ = io.WriteString(w, seqClearScreen)
}

// HideCursor hides the terminal cursor for the duration of a session.
func HideCursor(w io.Writer) {
	_, _ = io.WriteString(w, seqHideCursor)
}

// ShowCursor restores the terminal cursor.
func ShowCursor(w io.Writer) {
	_, _ = io.WriteString(w, seqShowCursor)
}
