package loop

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/tomz197/airclash/internal/input"
	"github.com/tomz197/airclash/internal/physics"
	"github.com/tomz197/airclash/internal/unit"
)

// State is the current phase of a session.
type State int

const (
	StateStart    State = iota // Title screen
	StatePlaying               // Driving the selected unit
	StateBuilding              // Placing blocks on the HQ grid
	StateConsole               // Typing console commands
)

func (st State) String() string {
	switch st {
	case StateStart:
		return "start"
	case StatePlaying:
		return "playing"
	case StateBuilding:
		return "building"
	case StateConsole:
		return "console"
	}
	return fmt.Sprintf("State(%d)", int(st))
}

// update applies one frame of input and advances the world.
func (s *Session) update(in input.Input) {
	quit := in.Quit
	if s.state == StateConsole {
		quit = bytes.IndexByte(in.Pressed, input.KeyCtrlC) >= 0
	}
	if quit || in.Closed {
		s.running = false
		return
	}
	if s.statusTimer > 0 {
		s.statusTimer--
	}

	switch s.state {
	case StateStart:
		s.updateStartState(in)
	case StatePlaying:
		s.updatePlayingState(in)
	case StateBuilding:
		s.updateBuildingState(in)
	case StateConsole:
		s.updateConsoleState(in)
	}

	if s.state != StateStart {
		s.level.Step()
	}
	s.followSelected()
}

func (s *Session) followSelected() {
	s.camera.Scale = s.level.Config().ViewScale
	if sel := s.level.Player().SelectedUnit(); sel != nil {
		s.camera.Follow(sel.Position(), float64(s.level.Description().Width))
	}
}

func (s *Session) setStatus(format string, args ...any) {
	s.status = fmt.Sprintf(format, args...)
	s.statusTimer = statusFrames
}

// updateStartState handles the title screen.
func (s *Session) updateStartState(in input.Input) {
	if in.Jump || in.Enter {
		input.ResetKeyInput(s.inputStream)
		s.state = StatePlaying
	}
}

// updatePlayingState handles driving the selected unit.
func (s *Session) updatePlayingState(in input.Input) {
	switch {
	case in.Escape:
		s.state = StateStart
		return
	case in.Console:
		s.openConsole()
		return
	case in.Build:
		s.enterBuild()
		return
	}
	if in.Reset {
		if err := s.level.Reset(); err != nil {
			s.logger.Error("reset failed", "err", err)
		}
		s.jumpTimeout = 0
		s.setStatus("level reset")
	}
	if in.Contacts {
		cfg := s.level.Config()
		cfg.DrawContacts = !cfg.DrawContacts
		s.level.ApplyConfig(cfg)
	}
	if in.Next {
		if u := s.level.Player().SelectNext(); u != nil {
			s.setStatus("selected %s", u.Name())
		}
	}
	if s.jumpTimeout > 0 {
		s.jumpTimeout--
	}

	sel := s.level.Player().SelectedUnit()
	if sel == nil {
		return
	}
	moveSelected(sel, in)
	if in.Jump && s.jumpTimeout == 0 {
		sel.AddForce(physics.Vec(0, jumpForce))
		s.jumpTimeout = jumpTimeout
	}
}

func moveSelected(u unit.Unit, in input.Input) {
	if in.Left {
		u.Move(unit.Left)
	}
	if in.Right {
		u.Move(unit.Right)
	}
	if in.Up {
		u.Move(unit.Up)
	}
	if in.Down {
		u.Move(unit.Down)
	}
}

// enterBuild selects the HQ, which opens its build menu.
func (s *Session) enterBuild() {
	hq := s.level.HQ()
	if hq == nil {
		s.setStatus("no HQ to build on")
		return
	}
	player := s.level.Player()
	i := slices.IndexFunc(player.Units(), func(u unit.Unit) bool { return u == unit.Unit(hq) })
	if i < 0 {
		return
	}
	player.SelectIndex(i)
	s.state = StateBuilding
}

// updateBuildingState moves the grid cursor and places blocks.
func (s *Session) updateBuildingState(in input.Input) {
	switch {
	case in.Escape, in.Build:
		s.state = StatePlaying
		return
	case in.Console:
		s.openConsole()
		return
	}
	hq := s.level.HQ()
	if hq == nil || !hq.Selected() {
		s.state = StatePlaying
		return
	}

	if s.cursorCooldown > 0 {
		s.cursorCooldown--
	} else {
		dx, dy := 0, 0
		if in.Left {
			dx--
		}
		if in.Right {
			dx++
		}
		if in.Up {
			dy++
		}
		if in.Down {
			dy--
		}
		if dx != 0 || dy != 0 {
			hw := hq.HalfWidth()
			s.cursorX = min(max(s.cursorX+dx, -hw), hw)
			s.cursorY = min(max(s.cursorY+dy, -hw), hw)
			s.cursorCooldown = cursorCooldown
		}
	}

	if in.Enter {
		if s.level.AttachBlock(s.cursorX, s.cursorY) {
			s.setStatus("block placed at (%d,%d)", s.cursorX, s.cursorY)
		} else {
			s.setStatus("cannot place a block at (%d,%d)", s.cursorX, s.cursorY)
		}
	}
}

func (s *Session) openConsole() {
	input.ResetKeyInput(s.inputStream)
	s.consoleReturn = s.state
	s.state = StateConsole
	s.line = s.line[:0]
}

// updateConsoleState feeds typed bytes into the command line.
func (s *Session) updateConsoleState(in input.Input) {
	for _, b := range in.Pressed {
		switch {
		case b == input.KeyConsole || b == input.KeyEscape:
			input.ResetKeyInput(s.inputStream)
			s.state = s.consoleReturn
			return
		case b == '\r' || b == '\n':
			line := string(s.line)
			s.line = s.line[:0]
			// Errors end up in the console history.
			_, _ = s.console.Execute(line)
		case b == input.KeyBackspace || b == input.KeyDelete:
			if len(s.line) > 0 {
				s.line = s.line[:len(s.line)-1]
			}
		case b >= ' ' && b < input.KeyDelete:
			s.line = append(s.line, b)
		}
	}
}
