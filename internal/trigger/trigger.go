// Package trigger connects player actions and movement to the sector
// machines: using a line, and walking across one.
package trigger

import (
	"sort"

	"go.uber.org/zap"

	"github.com/fixedtick/levelsim/internal/core/ecs"
	"github.com/fixedtick/levelsim/internal/fixed"
	"github.com/fixedtick/levelsim/internal/geom"
	"github.com/fixedtick/levelsim/internal/level"
	"github.com/fixedtick/levelsim/internal/machine"
	"github.com/fixedtick/levelsim/internal/mobj"
	"github.com/fixedtick/levelsim/internal/trig"
)

type Params struct {
	UseRange fixed.Fixed
}

func DefaultParams() Params {
	return Params{UseRange: fixed.FromInt(64)}
}

// Activation records one attempt to fire a line special.
type Activation struct {
	Line     int
	Class    Class
	Entity   ecs.EntityID
	Accepted bool
}

type System struct {
	lvl      *level.Level
	machines *machine.Manager
	table    Table
	tables   *trig.Tables
	p        Params
	log      *zap.Logger

	activated map[int]struct{} // once-only lines that have fired
	pending   []Activation
	scratch   []int
}

func New(lvl *level.Level, machines *machine.Manager, table Table, tables *trig.Tables, p Params, log *zap.Logger) *System {
	if log == nil {
		log = zap.NewNop()
	}
	return &System{
		lvl:       lvl,
		machines:  machines,
		table:     table,
		tables:    tables,
		p:         p,
		log:       log,
		activated: make(map[int]struct{}),
	}
}

// Fired reports whether a once-only line has already fired.
func (s *System) Fired(line int) bool {
	_, ok := s.activated[line]
	return ok
}

// Drain returns the activation attempts recorded since the last call.
func (s *System) Drain() []Activation {
	out := s.pending
	s.pending = nil
	return out
}

// Use fires a use-class line for mo. It fails if mo is farther than the use
// range from the line, the line has no use special, the special refuses mo,
// a once-only line already fired, or no target sector accepted.
func (s *System) Use(mo *mobj.Mobj, line int) bool {
	x1, y1, x2, y2, ok := s.lvl.LineEnds(line)
	if !ok {
		return false
	}
	if geom.DistanceToSegment(mo.X, mo.Y, x1, y1, x2, y2) > s.p.UseRange {
		return false
	}
	return s.use(mo, line)
}

func (s *System) use(mo *mobj.Mobj, line int) bool {
	sp, ok := s.table[s.lvl.Lines[line].Special]
	if !ok || sp.Class != ClassUse {
		return false
	}
	return s.activate(mo, line, sp)
}

// UseLines traces from mo along its facing for the use range and uses the
// first line hit. Two-sided lines with an opening and no use special are
// passed through; anything else stops the trace.
func (s *System) UseLines(mo *mobj.Mobj) bool {
	r := s.p.UseRange
	x2 := mo.X + fixed.Mul(r, s.tables.Cosine(mo.Angle))
	y2 := mo.Y + fixed.Mul(r, s.tables.Sine(mo.Angle))

	type hit struct {
		t    fixed.Fixed
		line int
	}
	var hits []hit
	s.lvl.LinesInBox(mo.X, mo.Y, x2, y2, func(line int) bool {
		lx1, ly1, lx2, ly2, ok := s.lvl.LineEnds(line)
		if !ok {
			return true
		}
		if t, ok := geom.Intersect(mo.X, mo.Y, x2, y2, lx1, ly1, lx2, ly2); ok {
			hits = append(hits, hit{t, line})
		}
		return true
	})
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].t != hits[j].t {
			return hits[i].t < hits[j].t
		}
		return hits[i].line < hits[j].line
	})

	for _, h := range hits {
		if sp, ok := s.table[s.lvl.Lines[h.line].Special]; ok && sp.Class == ClassUse {
			return s.use(mo, h.line)
		}
		if !s.passable(h.line) {
			return false
		}
	}
	return false
}

func (s *System) passable(line int) bool {
	front, back := s.lvl.LineSectors(line)
	if front < 0 || back < 0 {
		return false
	}
	f, b := &s.lvl.Sectors[front], &s.lvl.Sectors[back]
	return fixed.Min(f.Ceiling, b.Ceiling) > fixed.Max(f.Floor, b.Floor)
}

// CheckWalkCrossings fires every walk-class line crossed by the move from
// (prevX, prevY) to mo's position, in line index order. It returns how many
// fired. A move ending on a line crosses it; a move starting on one does not.
func (s *System) CheckWalkCrossings(mo *mobj.Mobj, prevX, prevY fixed.Fixed) int {
	if prevX == mo.X && prevY == mo.Y {
		return 0
	}
	s.scratch = s.scratch[:0]
	s.lvl.LinesInBox(prevX, prevY, mo.X, mo.Y, func(line int) bool {
		if sp, ok := s.table[s.lvl.Lines[line].Special]; ok && sp.Class == ClassWalk {
			s.scratch = append(s.scratch, line)
		}
		return true
	})
	sort.Ints(s.scratch)

	fired := 0
	for _, line := range s.scratch {
		x1, y1, x2, y2, ok := s.lvl.LineEnds(line)
		if !ok {
			continue
		}
		if t, ok := geom.Intersect(prevX, prevY, mo.X, mo.Y, x1, y1, x2, y2); !ok || t == 0 {
			continue
		}
		if s.activate(mo, line, s.table[s.lvl.Lines[line].Special]) {
			fired++
		}
	}
	return fired
}

func (s *System) activate(mo *mobj.Mobj, line int, sp Special) bool {
	ok := s.tryActivate(mo, line, sp)
	s.pending = append(s.pending, Activation{Line: line, Class: sp.Class, Entity: mo.ID, Accepted: ok})
	if ok {
		s.log.Debug("line activated",
			zap.Int("line", line),
			zap.Int("special", s.lvl.Lines[line].Special),
			zap.String("class", string(sp.Class)))
	}
	return ok
}

func (s *System) tryActivate(mo *mobj.Mobj, line int, sp Special) bool {
	switch mo.Type {
	case mobj.Player:
	case mobj.Monster:
		if !sp.Monsters {
			return false
		}
	default:
		return false
	}
	if sp.Key != 0 && !mo.Keys.Has(sp.Key) {
		return false
	}
	if sp.Once && s.Fired(line) {
		return false
	}

	accepted := false
	for _, sector := range s.targets(line, sp) {
		if s.apply(sector, sp) {
			accepted = true
		}
	}
	if accepted && sp.Once {
		s.activated[line] = struct{}{}
	}
	return accepted
}

// targets are the sector behind a manual line, or every sector sharing the
// line's tag.
func (s *System) targets(line int, sp Special) []int {
	if sp.Manual {
		back := s.lvl.SideSector(line, 1)
		if back < 0 {
			return nil
		}
		return []int{back}
	}
	return s.lvl.SectorsByTag(s.lvl.Lines[line].Tag)
}

func (s *System) apply(sector int, sp Special) bool {
	m := s.machines
	switch sp.Action {
	case ActionDoor:
		return m.ActivateDoor(sector, machine.DoorNormal, sp.Speed)
	case ActionDoorOpen:
		return m.ActivateDoor(sector, machine.DoorOpen, sp.Speed)
	case ActionDoorClose:
		return m.ActivateDoor(sector, machine.DoorClose, sp.Speed)
	case ActionDoorCloseWaitOpen:
		return m.ActivateDoor(sector, machine.DoorCloseWaitOpen, sp.Speed)
	case ActionLift:
		return m.ActivatePlat(sector, machine.PlatDownWaitUpStay, sp.Speed)
	case ActionPlatPerpetual:
		return m.ActivatePlat(sector, machine.PlatPerpetual, sp.Speed)
	case ActionPlatStop:
		return m.StopPlat(sector)
	}
	return false
}
