// Package machine drives the sector state machines: doors move a sector's
// ceiling, platforms move its floor. At most one machine runs per sector.
// Every tick in which a machine moves a surface it appends one
// event.HeightChanged carrying the new absolute height; the orchestrator
// collects them with Drain.
package machine

import (
	"go.uber.org/zap"

	"github.com/fixedtick/levelsim/internal/core/event"
	"github.com/fixedtick/levelsim/internal/fixed"
	"github.com/fixedtick/levelsim/internal/level"
	"github.com/fixedtick/levelsim/internal/thinker"
)

// Speed selects a per-kind speed from Config.
type Speed int

const (
	SpeedSlow Speed = iota
	SpeedNormal
	SpeedFast
	SpeedVeryFast
)

var speedNames = [...]string{"slow", "normal", "fast", "very-fast"}

func (s Speed) String() string {
	if s < 0 || int(s) >= len(speedNames) {
		return "unknown"
	}
	return speedNames[s]
}

// Config holds movement rates in units per tick and wait times in ticks.
type Config struct {
	DoorSpeed  [4]fixed.Fixed // indexed by Speed
	DoorWait   int
	DoorReopen int // hold time of a close-wait-open door
	PlatSpeed  [4]fixed.Fixed
	PlatWait   int
}

func DefaultConfig() Config {
	u := fixed.FromInt[int]
	return Config{
		DoorSpeed:  [4]fixed.Fixed{u(2), u(2), u(8), u(16)},
		DoorWait:   150,
		DoorReopen: 1050,
		PlatSpeed:  [4]fixed.Fixed{u(1), u(4), u(8), u(8)},
		PlatWait:   105,
	}
}

func (c Config) doorSpeed(s Speed) fixed.Fixed {
	if s < 0 || int(s) >= len(c.DoorSpeed) {
		s = SpeedNormal
	}
	return c.DoorSpeed[s]
}

func (c Config) platSpeed(s Speed) fixed.Fixed {
	if s < 0 || int(s) >= len(c.PlatSpeed) {
		s = SpeedNormal
	}
	return c.PlatSpeed[s]
}

// Obstruction reports whether everything resting in a sector still fits
// between the given floor and ceiling. Machines consult it before closing a
// door or raising a floor.
type Obstruction interface {
	Fits(sector int, floor, ceiling fixed.Fixed) bool
}

// Machine is a door or a platform.
type Machine interface {
	Sector() int
	// think advances one tick and reports whether the machine is finished.
	think(m *Manager) bool
}

type Manager struct {
	lvl   *level.Level
	cfg   Config
	log   *zap.Logger
	sched *thinker.Scheduler[Machine]

	bySector    map[int]thinker.Handle
	obstruction Obstruction
	events      []event.HeightChanged
}

func NewManager(lvl *level.Level, cfg Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		lvl:      lvl,
		cfg:      cfg,
		log:      log,
		sched:    thinker.New[Machine](),
		bySector: make(map[int]thinker.Handle),
	}
}

// SetObstruction installs the fit check. Without one nothing ever obstructs.
func (m *Manager) SetObstruction(o Obstruction) { m.obstruction = o }

func (m *Manager) fits(sector int, floor, ceiling fixed.Fixed) bool {
	return m.obstruction == nil || m.obstruction.Fits(sector, floor, ceiling)
}

// Active reports whether a machine currently owns sector.
func (m *Manager) Active(sector int) bool {
	_, ok := m.bySector[sector]
	return ok
}

// Machine returns the machine owning sector.
func (m *Manager) Machine(sector int) (Machine, bool) {
	h, ok := m.bySector[sector]
	if !ok {
		return nil, false
	}
	return m.sched.Get(h)
}

// Len is the number of running machines.
func (m *Manager) Len() int { return m.sched.Len() }

// Each visits running machines in start order.
func (m *Manager) Each(fn func(Machine)) {
	m.sched.Each(func(_ thinker.Handle, mc Machine) { fn(mc) })
}

func (m *Manager) start(mc Machine) bool {
	sector := mc.Sector()
	if m.Active(sector) {
		m.log.Debug("activation rejected: sector busy", zap.Int("sector", sector))
		return false
	}
	m.bySector[sector] = m.sched.Register(mc, m.run)
	return true
}

func (m *Manager) run(h thinker.Handle, mc Machine) {
	if mc.think(m) {
		m.stop(h, mc)
	}
}

func (m *Manager) stop(h thinker.Handle, mc Machine) {
	m.sched.Unregister(h)
	delete(m.bySector, mc.Sector())
	m.log.Debug("sector machine finished", zap.Int("sector", mc.Sector()))
}

// Tick runs every machine once, in start order.
func (m *Manager) Tick() {
	m.sched.RunTick()
}

// Drain returns the height changes accumulated since the last call.
func (m *Manager) Drain() []event.HeightChanged {
	out := m.events
	m.events = nil
	return out
}

func (m *Manager) setFloor(sector int, h fixed.Fixed) {
	sec := &m.lvl.Sectors[sector]
	if sec.Floor == h {
		return
	}
	sec.Floor = h
	m.events = append(m.events, event.HeightChanged{Sector: sector, Surface: event.Floor, Height: h})
}

func (m *Manager) setCeiling(sector int, h fixed.Fixed) {
	sec := &m.lvl.Sectors[sector]
	if sec.Ceiling == h {
		return
	}
	sec.Ceiling = h
	m.events = append(m.events, event.HeightChanged{Sector: sector, Surface: event.Ceiling, Height: h})
}

// step moves cur toward target by speed and clamps on reaching or passing it.
func step(cur, target, speed fixed.Fixed) (next fixed.Fixed, arrived bool) {
	if cur < target {
		next = cur + speed
		if next >= target || next < cur {
			return target, true
		}
		return next, false
	}
	next = cur - speed
	if next <= target || next > cur {
		return target, true
	}
	return next, false
}
