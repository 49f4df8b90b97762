// Package level owns the physics world of one game: static floor geometry,
// the bounding walls and the units that live in it.
package level

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/tomz197/airclash/internal/config"
	"github.com/tomz197/airclash/internal/physics"
	"github.com/tomz197/airclash/internal/unit"
)

// ErrNoGeometry reports an Init without a usable floor profile.
var ErrNoGeometry = errors.New("level needs at least two floor points")

const (
	wallThickness = 10
	wallHeight    = 5000
)

// Spawn points used by Reset.
var (
	ScoutSpawn = physics.Vec(330, 200)
	HQSpawn    = physics.Vec(150, 200)
)

// Level runs the world of one game session.
type Level struct {
	cfg    config.Config
	logger *log.Logger

	desc     Description
	world    *physics.World
	parts    []*physics.Body
	units    []unit.Unit
	registry *unit.Registry
	player   *unit.Player
	hq       *unit.HQ
	blocks   int
}

// New creates an empty level. A nil logger discards everything.
func New(cfg config.Config, logger *log.Logger) *Level {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Level{
		cfg:      cfg,
		logger:   logger,
		world:    physics.NewWorld(cfg.PhysicsSettings(), logger.With("component", "physics")),
		registry: unit.NewRegistry(),
		player:   unit.NewPlayer(cfg.PlayerName),
	}
}

// Load reads the level file at path and uses it as the description.
func (l *Level) Load(path string) error {
	d, err := Load(path)
	if err != nil {
		return err
	}
	l.logger.Info("level loaded", "name", d.Name, "points", len(d.Geometry), "width", d.Width)
	l.SetDescription(d)
	return nil
}

func (l *Level) SetDescription(d Description) { l.desc = d }
func (l *Level) Description() Description     { return l.desc }
func (l *Level) World() *physics.World        { return l.world }
func (l *Level) Registry() *unit.Registry     { return l.registry }
func (l *Level) Player() *unit.Player         { return l.player }
func (l *Level) Config() config.Config        { return l.cfg }

// HQ returns the headquarters created by Reset, or nil.
func (l *Level) HQ() *unit.HQ {
	return l.hq
}

// Parts returns the static floor and wall bodies.
func (l *Level) Parts() []*physics.Body {
	return l.parts
}

// Units returns the units added to the level in order.
func (l *Level) Units() []unit.Unit {
	return l.units
}

// Init empties the world and rebuilds the static geometry from the
// description. Calling it twice yields the same world.
func (l *Level) Init() error {
	geom := l.desc.Geometry
	if len(geom) < 2 {
		return fmt.Errorf("init %q: %w", l.desc.Name, ErrNoGeometry)
	}
	l.world.Clear()
	l.world.SetGravity(l.cfg.Gravity())
	l.units = nil
	l.parts = nil

	for i := 1; i < len(geom); i++ {
		prev, cur := geom[i-1], geom[i]
		quad := []physics.Vector{
			physics.Vec(prev.X, 0),
			physics.Vec(cur.X, 0),
			cur,
			prev,
		}
		center := centroid(quad)
		for k := range quad {
			quad[k] = quad[k].Sub(center)
		}
		b := physics.NewStaticBody(fmt.Sprintf("ground%d", i), physics.NewPolygon(quad...))
		b.Position = center
		l.addPart(b)
	}

	width := geom[len(geom)-1].X
	left := physics.NewStaticBody("left", physics.NewBox(wallThickness, wallHeight))
	left.Position = physics.Vec(-wallThickness, wallHeight/2)
	right := physics.NewStaticBody("right", physics.NewBox(wallThickness, wallHeight))
	right.Position = physics.Vec(width, wallHeight/2)
	top := physics.NewStaticBody("top", physics.NewBox(width, wallThickness))
	top.Position = physics.Vec(width/2, wallHeight)
	l.addPart(left)
	l.addPart(right)
	l.addPart(top)

	l.logger.Debug("level built", "floor", len(geom)-1, "walls", 3)
	return nil
}

func (l *Level) addPart(b *physics.Body) {
	l.parts = append(l.parts, b)
	l.world.AddBody(b)
}

// centroid averages the points; good enough as a body origin for a
// convex quad.
func centroid(ps []physics.Vector) physics.Vector {
	var c physics.Vector
	for _, p := range ps {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(ps)))
}

// AddUnit adds the unit's bodies and joints that are not in the world yet
// and runs its Setup. Re-adding a unit after it changed is allowed.
func (l *Level) AddUnit(u unit.Unit) {
	if u == nil {
		return
	}
	for _, b := range u.BodyParts() {
		l.world.AddBody(b)
	}
	for _, j := range u.Joints() {
		l.world.AddJoint(j)
	}
	if !slices.Contains(l.units, u) {
		l.units = append(l.units, u)
	}
	u.Setup()
}

// RemoveUnit takes the unit's bodies and joints out of the world and
// deletes it from the registry. A removed module is detached from the HQ;
// removing the HQ removes every module attached to it first.
func (l *Level) RemoveUnit(u unit.Unit) error {
	if u == nil || !slices.Contains(l.units, u) {
		return fmt.Errorf("remove unit: %w", physics.ErrUnknownBody)
	}
	var errs []error
	if l.hq != nil {
		if u == unit.Unit(l.hq) {
			for _, m := range slices.Clone(l.hq.Modules()) {
				if m == unit.Attachable(l.hq) || !slices.Contains(l.units, unit.Unit(m)) {
					continue
				}
				errs = append(errs, l.RemoveUnit(m))
			}
			l.hq = nil
		} else if m, ok := u.(unit.Attachable); ok {
			if j, ok := l.hq.RemoveModule(m); ok && j != nil {
				if err := l.world.RemoveJoint(j); err != nil && !errors.Is(err, physics.ErrUnknownJoint) {
					errs = append(errs, err)
				}
			}
		}
	}
	for _, j := range u.Joints() {
		if err := l.world.RemoveJoint(j); err != nil && !errors.Is(err, physics.ErrUnknownJoint) {
			errs = append(errs, err)
		}
	}
	for _, b := range u.BodyParts() {
		if err := l.world.RemoveBody(b); err != nil {
			errs = append(errs, err)
		}
	}
	l.units = slices.DeleteFunc(l.units, func(o unit.Unit) bool { return o == u })
	l.player.RemoveUnit(u)
	u.Delete()
	return errors.Join(errs...)
}

// Step advances the world by one frame of sub-steps.
func (l *Level) Step() {
	for range l.cfg.SubSteps {
		l.world.Step()
	}
}

// Reset rebuilds the level and spawns a fresh scout and HQ for the player,
// with the scout selected.
func (l *Level) Reset() error {
	if err := l.Init(); err != nil {
		return err
	}
	l.registry.Clear()
	l.player.Clear()
	l.player.Name = l.cfg.PlayerName
	l.blocks = 0

	scout := unit.NewScout(l.registry, "scout")
	scout.SetPosition(ScoutSpawn)
	l.AddUnit(scout)
	l.hq = unit.NewHQ(l.registry, "hq", l.cfg.GridHalfWidth, l.cfg.GridCellSize)
	l.hq.SetPosition(HQSpawn)
	l.AddUnit(l.hq)

	l.player.AddUnit(scout)
	l.player.AddUnit(l.hq)
	l.player.SelectIndex(0)
	l.logger.Info("level reset", "name", l.desc.Name, "player", l.player.Name)
	return nil
}

// AttachBlock builds a block and welds it to the HQ at grid slot (gx, gy).
// A block that does not fit is deleted again.
func (l *Level) AttachBlock(gx, gy int) bool {
	if l.hq == nil {
		return false
	}
	l.blocks++
	b := unit.NewBlock(l.registry, fmt.Sprintf("block%d", l.blocks), l.cfg.GridCellSize)
	if !l.hq.AddModule(b, gx, gy) {
		b.Delete()
		l.logger.Debug("block rejected", "x", gx, "y", gy)
		return false
	}
	l.AddUnit(b)
	l.AddUnit(l.hq)
	return true
}

// ContactPoints returns the current contacts when contact drawing is on.
func (l *Level) ContactPoints() []physics.Contact {
	if !l.cfg.DrawContacts {
		return nil
	}
	return l.world.ContactPoints()
}

// Info describes the level and the state of the world.
func (l *Level) Info() string {
	bodies, joints, arbiters := l.world.Counts()
	return fmt.Sprintf("%s\nWorld Info: Total Energy: %.2f  Bodies: %d  Joints: %d  Arbiters: %d",
		l.desc, l.world.TotalEnergy(), bodies, joints, arbiters)
}

// ApplyConfig switches to cfg. Physics settings take effect immediately.
func (l *Level) ApplyConfig(cfg config.Config) {
	l.cfg = cfg
	l.world.SetSettings(cfg.PhysicsSettings())
	l.player.Name = cfg.PlayerName
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		l.logger.SetLevel(lvl)
	}
}
