package loop

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/airclash/internal/console"
	"github.com/tomz197/airclash/internal/physics"
	"github.com/tomz197/airclash/internal/unit"
)

// styles holds the lipgloss styles of the text overlays.
type styles struct {
	hud     lipgloss.Style
	hint    lipgloss.Style
	status  lipgloss.Style
	title   lipgloss.Style
	console lipgloss.Style
	prompt  lipgloss.Style
	contact lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		hud:     r.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
		hint:    r.NewStyle().Foreground(lipgloss.Color("8")),
		status:  r.NewStyle().Foreground(lipgloss.Color("11")),
		title:   r.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		console: r.NewStyle().Foreground(lipgloss.Color("10")).Background(lipgloss.Color("0")),
		prompt:  r.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("0")).Bold(true),
		contact: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// drawFrame draws the current frame.
func (s *Session) drawFrame() error {
	// On state or inactivity transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	if s.state != s.prevState || s.isInactive != s.wasInactive {
		s.frame.ClearScreen()
		s.canvas.ForceRedraw()
		s.prevState = s.state
		s.wasInactive = s.isInactive
	}

	s.canvas.Clear()
	s.drawWorld()
	if s.state == StateBuilding || (s.state == StateConsole && s.consoleReturn == StateBuilding) {
		s.drawBuildCursor()
	}

	if err := s.canvas.Render(s.frame); err != nil {
		return err
	}
	if err := s.canvas.RenderBorder(s.frame); err != nil {
		return err
	}

	s.drawContacts()
	s.drawUI()
	return s.frame.Flush()
}

// drawWorld draws every visible body. Static geometry is filled.
func (s *Session) drawWorld() {
	for _, b := range s.level.World().Bodies() {
		if !s.camera.Visible(b.Bounds()) {
			continue
		}
		if c, ok := b.Shape().(*physics.Circle); ok {
			center := s.camera.ToView(b.Position)
			s.canvas.DrawCircle(center, c.Radius/s.camera.Scale)
			// Spoke so that rolling is visible.
			rim := s.camera.ToView(b.Position.Add(physics.Vec(c.Radius, 0).Rotate(b.Rotation)))
			s.canvas.DrawLine(center, rim)
			continue
		}
		vs := b.Vertices()
		points := s.canvas.BorrowPoints(len(vs))
		for i, v := range vs {
			points[i] = s.camera.ToView(v)
		}
		s.canvas.DrawPolygon(points, b.Static())
	}
}

// drawBuildCursor outlines the HQ grid slot under the cursor.
func (s *Session) drawBuildCursor() {
	hq := s.level.HQ()
	if hq == nil {
		return
	}
	center := hq.SlotPosition(s.cursorX, s.cursorY)
	h := hq.CellSize()/2 + s.camera.Scale
	corners := [4]physics.Vector{
		center.Add(physics.Vec(-h, -h)),
		center.Add(physics.Vec(h, -h)),
		center.Add(physics.Vec(h, h)),
		center.Add(physics.Vec(-h, h)),
	}
	points := s.canvas.BorrowPoints(len(corners))
	for i, v := range corners {
		points[i] = s.camera.ToView(v)
	}
	s.canvas.DrawPolygon(points, false)
}

// drawContacts marks contact points with a cross.
func (s *Session) drawContacts() {
	mark := s.styles.contact.Render("×")
	for _, c := range s.level.ContactPoints() {
		p := s.camera.ToView(c.Position)
		col, row := s.canvas.LogicalToTerminal(p.X, p.Y)
		if s.canvas.InView(col, row) {
			s.writeText(col, row, mark)
		}
	}
}

// writeText writes text over the canvas and marks the covered cells so
// the canvas restores them on the next frame.
func (s *Session) writeText(col, row int, text string) {
	if row < 1 || row > s.canvas.TerminalHeight() || col < 1 {
		return
	}
	s.frame.Text(col, row, text)
	s.canvas.Invalidate(col, row, lipgloss.Width(text))
}

// fit cuts text to at most width runes and pads it to exactly width.
func fit(text string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(text)
	if len(r) > width {
		r = r[:width]
	}
	return string(r) + spaces(width-len(r))
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// drawUI draws the text overlay of the current state.
func (s *Session) drawUI() {
	termWidth := s.canvas.TerminalWidth()
	termHeight := s.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if s.isInactive {
		s.drawInactivityScreen(centerX, centerY)
		return
	}

	switch s.state {
	case StateStart:
		s.drawStartScreen(centerX, centerY)
	case StatePlaying, StateBuilding:
		s.drawHUD(termWidth, termHeight)
	case StateConsole:
		s.drawHUD(termWidth, termHeight)
		s.drawConsole(termWidth, termHeight)
	}
}

// drawCentered writes lines centered on column centerX, starting at row.
func (s *Session) drawCentered(centerX, row int, style lipgloss.Style, lines ...string) {
	for i, line := range lines {
		s.writeText(centerX-len([]rune(line))/2, row+i, style.Render(line))
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (s *Session) drawInactivityScreen(centerX, centerY int) {
	s.drawCentered(centerX, centerY-2, s.styles.title, "INACTIVITY WARNING")
	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(InactivityDisconnectUser-time.Since(s.lastInput).Seconds()),
	)
	s.drawCentered(centerX, centerY, s.styles.hud, msg)
	s.drawCentered(centerX, centerY+2, s.styles.hint, "Press any key to continue")
}

var titleArt = []string{
	`    _   ___ ___  ___ _      _   ___ _  _  `,
	`   /_\ |_ _| _ \/ __| |    /_\ / __| || | `,
	`  / _ \ | ||   / (__| |__ / _ \\__ \ __ | `,
	` /_/ \_\___|_|_\\___|____/_/ \_\___/_||_| `,
	`                                          `,
}

var controls = [][2]string{
	{"A D / < >", "Drive"},
	{"W S / ^ v", "Thrust"},
	{"SPACE", "Jump"},
	{"TAB", "Next unit"},
	{"B", "Build"},
	{"`", "Console"},
	{"C", "Contacts"},
	{"R", "Reset"},
	{"Q", "Quit"},
}

// controlLines renders the controls with dot leaders of equal width.
func controlLines() []string {
	const width = 28
	lines := make([]string, len(controls))
	for i, c := range controls {
		lines[i] = c[0] + " " + strings.Repeat(".", max(width-len(c[0])-len(c[1])-2, 1)) + " " + c[1]
	}
	return lines
}

// drawStartScreen draws the title screen.
func (s *Session) drawStartScreen(centerX, centerY int) {
	titleStartY := centerY - 9
	s.drawCentered(centerX, titleStartY, s.styles.title, titleArt...)

	row := titleStartY + len(titleArt) + 1
	s.drawCentered(centerX, row, s.styles.hud, "~ "+s.level.Description().Name+" ~")

	row += 2
	s.drawCentered(centerX, row, s.styles.hud, "Controls")
	lines := controlLines()
	s.drawCentered(centerX, row+1, s.styles.hint, lines...)

	// Blinking start prompt
	prompt := ">>  Press SPACE to Start  <<"
	if time.Now().UnixMilli()/600%2 != 0 {
		prompt = spaces(len(prompt))
	}
	s.drawCentered(centerX, row+len(lines)+2, s.styles.status, prompt)
}

// drawHUD draws the in-game status lines.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (s *Session) drawHUD(termWidth, termHeight int) {
	player := s.level.Player()
	left := player.Name
	if sel := player.SelectedUnit(); sel != nil {
		left += "  " + describeUnit(sel)
	}
	half := termWidth / 2
	s.writeText(2, 1, s.styles.hud.Render(fit(left, half-2)))

	bodies, joints, arbiters := s.level.World().Counts()
	counts := fmt.Sprintf("Bodies %-4d Joints %-4d Arbiters %-4d", bodies, joints, arbiters)
	counts = fit(counts, min(len(counts), half))
	s.writeText(termWidth-len(counts), 1, s.styles.hud.Render(counts))

	if s.statusTimer > 0 {
		s.writeText(2, 2, s.styles.status.Render(fit(s.status, min(len(s.status), termWidth-2))))
	}

	energy := fmt.Sprintf("Energy %-12.1f", s.level.World().TotalEnergy())
	s.writeText(2, termHeight, s.styles.hud.Render(fit(energy, min(len(energy), half-2))))

	hint := "arrows drive  space jump  tab next  b build  ` console  q quit"
	if s.state == StateBuilding {
		hint = fmt.Sprintf("slot (%d,%d)  arrows move  enter place  b/esc done", s.cursorX, s.cursorY)
	}
	hint = fit(hint, min(len(hint), half))
	s.writeText(termWidth-len(hint), termHeight, s.styles.hint.Render(hint))
}

func describeUnit(u unit.Unit) string {
	p := u.Position()
	text := fmt.Sprintf("%s [%s] X:%-6.0f Y:%-6.0f", u.Name(), u.Kind(), p.X, p.Y)
	if hq, ok := u.(*unit.HQ); ok && hq.BuildMenu() {
		text += " build"
	}
	return text
}

// drawConsole draws the command history and the edit line at the bottom.
func (s *Session) drawConsole(termWidth, termHeight int) {
	rows := max(min(10, termHeight/3), 2)
	history := s.console.History(rows - 1)
	top := termHeight - rows

	for i := 0; i < rows-1; i++ {
		line := ""
		if j := i - (rows - 1 - len(history)); j >= 0 {
			line = history[j]
		}
		s.writeText(1, top+i, s.styles.console.Render(fit(line, termWidth)))
	}

	edit := console.Prompt + string(s.line) + "_"
	if r := []rune(edit); len(r) > termWidth {
		edit = string(r[len(r)-termWidth:])
	}
	s.writeText(1, termHeight-1, s.styles.prompt.Render(fit(edit, termWidth)))
}
