// Package input turns the raw terminal byte stream into per-frame key state.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a movement key is considered "held" after its
// last press. Terminals only report repeats, not releases.
const keyHoldDuration = 60 * time.Millisecond

// Key bytes with a fixed meaning.
const (
	KeyCtrlC     = '\x03'
	KeyTab       = '\t'
	KeyEscape    = '\x1b'
	KeyBackspace = '\b'
	KeyDelete    = '\x7f'
	KeyConsole   = '`'
)

// Input represents the current frame's input state.
type Input struct {
	// Held movement keys.
	Left  bool
	Right bool
	Up    bool
	Down  bool

	// Keys pressed during this frame.
	Quit     bool
	Jump     bool
	Next     bool
	Build    bool
	Console  bool
	Contacts bool
	Reset    bool
	Enter    bool
	Escape   bool

	// Closed is set once the underlying reader is exhausted.
	Closed bool
	// Pressed holds the raw bytes of this frame, arrow sequences removed.
	Pressed []byte
}

// keyState tracks the last time each movement key was pressed.
type keyState struct {
	left  time.Time
	right time.Time
	up    time.Time
	down  time.Time
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ResetKeyInput forgets held keys, e.g. when focus moves to the console.
func ResetKeyInput(s *Stream) {
	s.state = keyState{}
}

// ReadInput drains all available bytes from the stream (non-blocking).
// Arrow escape sequences update the movement state; everything else is
// reported as pressed this frame.
func ReadInput(s *Stream) Input {
	return s.read(time.Now())
}

func (s *Stream) drain() []byte {
	var buf []byte
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				return buf
			}
			buf = append(buf, b)
		default:
			return buf
		}
	}
	return buf
}

func (s *Stream) read(now time.Time) Input {
	return s.parse(s.drain(), now)
}

func (s *Stream) parse(buf []byte, now time.Time) Input {
	in := Input{Closed: s.closed}
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == KeyEscape && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				s.state.up = now
			case 'B':
				s.state.down = now
			case 'C':
				s.state.right = now
			case 'D':
				s.state.left = now
			}
			i += 2
			continue
		}

		in.Pressed = append(in.Pressed, b)
		applyByte(&s.state, &in, b, now)
	}

	in.Left = now.Sub(s.state.left) < keyHoldDuration
	in.Right = now.Sub(s.state.right) < keyHoldDuration
	in.Up = now.Sub(s.state.up) < keyHoldDuration
	in.Down = now.Sub(s.state.down) < keyHoldDuration
	return in
}

// applyByte updates the key state and the frame flags for one byte.
func applyByte(state *keyState, in *Input, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', KeyCtrlC:
		in.Quit = true
	case 'a', 'A':
		state.left = now
	case 'd', 'D':
		state.right = now
	case 'w', 'W':
		state.up = now
	case 's', 'S':
		state.down = now
	case ' ':
		in.Jump = true
	case KeyTab:
		in.Next = true
	case 'b', 'B':
		in.Build = true
	case 'c', 'C':
		in.Contacts = true
	case 'r', 'R':
		in.Reset = true
	case KeyConsole:
		in.Console = true
	case '\n', '\r':
		in.Enter = true
	case KeyEscape:
		in.Escape = true
	}
}
