// Package loop runs one interactive game session on a terminal: it reads
// keys, steps the level at a fixed frame rate and renders the view.
package loop

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tomz197/airclash/internal/config"
	"github.com/tomz197/airclash/internal/console"
	"github.com/tomz197/airclash/internal/draw"
	"github.com/tomz197/airclash/internal/input"
	"github.com/tomz197/airclash/internal/level"
)

// View resolution in logical units. One logical unit covers ViewScale
// world units.
const (
	ViewWidth  = 240
	ViewHeight = 120 // sub-pixels, so 60 terminal rows
)

// Max render resolution; larger terminals get a centered, bordered view.
const (
	MaxTermWidth  = 240
	MaxTermHeight = 60
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

const (
	jumpTimeout    = 60 // frames between jumps
	jumpForce      = 50000
	cursorCooldown = 6   // frames between build cursor moves
	statusFrames   = 100 // frames a status message stays visible
)

// Options configures a session.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	Config       config.Config
	Logger       *log.Logger
	// Renderer styles the HUD. Defaults to a renderer on the session writer.
	Renderer *lipgloss.Renderer
	// Level is used as is when set; otherwise Config.Level is loaded.
	Level *level.Level
	// Done ends the session when closed, e.g. on server shutdown.
	Done <-chan struct{}
}

// Session handles rendering and input for a single terminal.
type Session struct {
	level   *level.Level
	console *console.Console
	logger  *log.Logger

	canvas       *draw.Canvas
	frame        *draw.FrameWriter
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc
	done         <-chan struct{}
	styles       styles
	camera       Camera

	state         State
	prevState     State
	consoleReturn State
	running       bool
	lastInput     time.Time
	isInactive    bool
	wasInactive   bool

	jumpTimeout    int
	cursorX        int
	cursorY        int
	cursorCooldown int
	line           []byte
	status         string
	statusTimer    int
}

// Run creates a session on r and w and blocks until the player quits or
// the input closes.
func Run(r *bufio.Reader, w io.Writer, opts Options) error {
	s, err := NewSession(r, w, opts)
	if err != nil {
		return err
	}
	return s.Run()
}

// NewSession prepares the level and the canvas for one player.
func NewSession(r *bufio.Reader, w io.Writer, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = lipgloss.NewRenderer(w)
	}

	l := opts.Level
	if l == nil {
		l = level.New(opts.Config, logger)
		if err := l.Load(opts.Config.Level); err != nil {
			return nil, fmt.Errorf("load level: %w", err)
		}
	}
	if len(l.Units()) == 0 {
		if err := l.Reset(); err != nil {
			return nil, fmt.Errorf("reset level: %w", err)
		}
	}

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := draw.TermSize(termSizeFunc)
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, ViewWidth, ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	s := &Session{
		level:        l,
		console:      console.New(l, logger.With("component", "console")),
		logger:       logger,
		canvas:       canvas,
		frame:        draw.NewFrameWriter(w, offsetCol, offsetRow),
		writer:       w,
		inputStream:  input.StartStream(r),
		termSizeFunc: termSizeFunc,
		done:         opts.Done,
		styles:       newStyles(renderer),
		camera:       Camera{Scale: l.Config().ViewScale, Width: ViewWidth, Height: ViewHeight},
		state:        StateStart,
		prevState:    StateStart,
		running:      true,
		lastInput:    time.Now(),
		cursorX:      1,
	}
	s.followSelected()
	return s, nil
}

// Run starts the frame loop. Blocks until the session ends.
func (s *Session) Run() error {
	draw.HideCursor(s.writer)
	defer draw.ShowCursor(s.writer)
	draw.ClearScreen(s.writer)

	for s.running {
		frameStart := time.Now()

		select {
		case <-s.done:
			s.running = false
			continue
		default:
		}

		in := input.ReadInput(s.inputStream)
		s.trackActivity(in)
		s.update(in)
		s.updateScreen()

		if err := s.drawFrame(); err != nil {
			return err
		}

		elapsed := time.Since(frameStart)
		if target := s.frameTime(); elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	s.logger.Info("session ended", "player", s.level.Player().Name)
	draw.ClearScreen(s.writer)
	return nil
}

func (s *Session) frameTime() time.Duration {
	return time.Second / time.Duration(s.level.Config().FrameRate)
}

// trackActivity warns and then disconnects idle players.
func (s *Session) trackActivity(in input.Input) {
	switch idle := time.Since(s.lastInput).Seconds(); {
	case len(in.Pressed) > 0:
		s.lastInput = time.Now()
		s.isInactive = false
	case idle > InactivityDisconnectUser:
		s.logger.Info("disconnecting inactive player", "idle", idle)
		s.running = false
	case idle > InactivityWarnUser:
		s.isInactive = true
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (s *Session) updateScreen() {
	termWidth, termHeight, err := draw.TermSize(s.termSizeFunc)
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != s.canvas.TerminalWidth() || renderHeight != s.canvas.TerminalHeight() ||
		offsetCol != s.canvas.OffsetCol() || offsetRow != s.canvas.OffsetRow() {
		draw.ClearScreen(s.writer)
		s.canvas.ForceRedraw()
	}

	s.canvas.Resize(renderWidth, renderHeight)
	s.canvas.SetOffset(offsetCol, offsetRow)
	s.frame.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(max(termWidth, 0), MaxTermWidth)
	renderHeight = min(max(termHeight, 0), MaxTermHeight)
	offsetCol = (max(termWidth, 0) - renderWidth) / 2
	offsetRow = (max(termHeight, 0) - renderHeight) / 2
	return
}
