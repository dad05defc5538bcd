// Package movement integrates actor momentum against level geometry, one
// tick at a time.
package movement

import (
	"go.uber.org/zap"

	"github.com/fixedtick/levelsim/internal/bsp"
	"github.com/fixedtick/levelsim/internal/fixed"
	"github.com/fixedtick/levelsim/internal/geom"
	"github.com/fixedtick/levelsim/internal/level"
	"github.com/fixedtick/levelsim/internal/mobj"
	"github.com/fixedtick/levelsim/internal/trig"
)

// Params are the physics constants of a level.
type Params struct {
	MaxStep   fixed.Fixed // highest floor rise crossed in one tick
	MaxMove   fixed.Fixed // per-axis cap on horizontal momentum; 0 disables
	Friction  fixed.Fixed // momentum multiplier while grounded
	StopSpeed fixed.Fixed // below this on both axes, grounded momentum snaps to zero
	Gravity   fixed.Fixed // subtracted from MomZ per airborne tick
}

func DefaultParams() Params {
	return Params{
		MaxStep:   fixed.FromInt(24),
		MaxMove:   fixed.FromInt(30),
		Friction:  0xE800,
		StopSpeed: 0x1000,
		Gravity:   fixed.FracUnit,
	}
}

// Outcome describes what the horizontal part of a tick did.
type Outcome int

const (
	Still        Outcome = iota // no horizontal momentum
	Moved                       // full move committed
	SlidX                       // only the x component fit
	SlidY                       // only the y component fit
	Blocked                     // a step fit on neither axis; momentum zeroed
	StepRejected                // entered a sector that is too high or too low; move reverted
)

var outcomeNames = [...]string{"still", "moved", "slid-x", "slid-y", "blocked", "step-rejected"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

type Mover struct {
	lvl *level.Level
	idx *bsp.Index
	p   Params
	log *zap.Logger
}

func New(lvl *level.Level, idx *bsp.Index, p Params, log *zap.Logger) *Mover {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mover{lvl: lvl, idx: idx, p: p, log: log}
}

func (m *Mover) Params() Params { return m.p }

// Place resolves the actor's sector and puts it on that sector's floor. It
// returns false, leaving the actor untouched, when the position is outside
// every known sector.
func (m *Mover) Place(mo *mobj.Mobj) bool {
	if !m.refresh(mo, mo.X, mo.Y) {
		m.log.Debug("unresolved spawn position",
			zap.Int32("x", int32(mo.X)), zap.Int32("y", int32(mo.Y)))
		return false
	}
	mo.Z = mo.FloorZ
	return true
}

// Thrust adds move units along angle to the actor's momentum.
func (m *Mover) Thrust(mo *mobj.Mobj, angle fixed.Angle, move fixed.Fixed, t *trig.Tables) {
	mo.MomX += fixed.Mul(move, t.Cosine(angle))
	mo.MomY += fixed.Mul(move, t.Sine(angle))
}

// Integrate advances mo by one tick: horizontal move with axis retries,
// step check, vertical clamp, then friction or gravity.
func (m *Mover) Integrate(mo *mobj.Mobj) Outcome {
	out := Still
	if mo.MomX != 0 || mo.MomY != 0 {
		out = m.moveXY(mo)
	}
	m.vertical(mo)
	return out
}

// moveXY caps the momentum and walks it in steps no longer than the actor's
// radius, so every wall between start and end touches some checked circle.
// A blocked step keeps the progress of the steps before it. A rejected step
// reverts the whole tick's move.
func (m *Mover) moveXY(mo *mobj.Mobj) Outcome {
	if m.p.MaxMove > 0 {
		mo.MomX = fixed.Clamp(mo.MomX, -m.p.MaxMove, m.p.MaxMove)
		mo.MomY = fixed.Clamp(mo.MomY, -m.p.MaxMove, m.p.MaxMove)
	}
	startX, startY, startZ := mo.X, mo.Y, mo.Z
	startSector, startFloor, startCeil := mo.Sector, mo.FloorZ, mo.CeilingZ

	n := m.steps(mo)
	stepX, stepY := mo.MomX/fixed.Fixed(n), mo.MomY/fixed.Fixed(n)
	lastX, lastY := mo.MomX-stepX*fixed.Fixed(n-1), mo.MomY-stepY*fixed.Fixed(n-1)

	out := Moved
	for i := 1; i <= n; i++ {
		dx, dy := stepX, stepY
		if i == n {
			dx, dy = lastX, lastY
		}
		// A slide on an earlier step dropped the other axis.
		if mo.MomX == 0 {
			dx = 0
		}
		if mo.MomY == 0 {
			dy = 0
		}
		if dx == 0 && dy == 0 {
			continue
		}

		res := m.step(mo, dx, dy)
		if res == Blocked {
			// Only the horizontal momentum is zeroed; a falling actor keeps MomZ.
			mo.MomX, mo.MomY = 0, 0
			return Blocked
		}
		if !m.fits(mo, startZ) {
			mo.X, mo.Y = startX, startY
			mo.Sector, mo.FloorZ, mo.CeilingZ = startSector, startFloor, startCeil
			mo.Stop()
			return StepRejected
		}
		if res != Moved {
			out = res
		}
	}
	return out
}

// steps is the number of sub-moves needed to keep each one within the radius.
func (m *Mover) steps(mo *mobj.Mobj) int {
	r := int64(mo.Radius)
	if r <= 0 {
		return 1
	}
	longest := max(fixed.Abs64(mo.MomX), fixed.Abs64(mo.MomY))
	if longest <= r {
		return 1
	}
	return int((longest + r - 1) / r)
}

// step tries (dx,dy), then x alone, then y alone.
func (m *Mover) step(mo *mobj.Mobj, dx, dy fixed.Fixed) Outcome {
	if m.try(mo, mo.X+dx, mo.Y+dy) {
		return Moved
	}
	if dx != 0 && dy != 0 {
		if m.try(mo, mo.X+dx, mo.Y) {
			mo.MomY = 0
			return SlidX
		}
		if m.try(mo, mo.X, mo.Y+dy) {
			mo.MomX = 0
			return SlidY
		}
	}
	return Blocked
}

// try commits (x,y) if no blocking line touches the actor's circle there and
// the point lies in a known sector.
func (m *Mover) try(mo *mobj.Mobj, x, y fixed.Fixed) bool {
	if m.Blocked(mo, x, y) {
		return false
	}
	if !m.refresh(mo, x, y) {
		return false
	}
	mo.X, mo.Y = x, y
	return true
}

// Blocked reports whether an actor of mo's radius at (x,y) would touch a line
// that blocks it.
func (m *Mover) Blocked(mo *mobj.Mobj, x, y fixed.Fixed) bool {
	r := mo.Radius
	hit := false
	m.lvl.LinesInBox(x-r, y-r, x+r, y+r, func(line int) bool {
		if !m.blocks(mo, line) {
			return true
		}
		x1, y1, x2, y2, ok := m.lvl.LineEnds(line)
		if !ok {
			return true
		}
		if geom.Touches(x, y, r, x1, y1, x2, y2) {
			hit = true
			return false
		}
		return true
	})
	return hit
}

func (m *Mover) blocks(mo *mobj.Mobj, line int) bool {
	if !m.lvl.TwoSided(line) {
		return true
	}
	flags := m.lvl.Lines[line].Flags
	if flags&level.LineBlocking != 0 {
		return true
	}
	return mo.Type == mobj.Monster && flags&level.LineBlockMonsters != 0
}

func (m *Mover) refresh(mo *mobj.Mobj, x, y fixed.Fixed) bool {
	sector := m.idx.SectorAt(x, y)
	if sector < 0 {
		return false
	}
	sec := &m.lvl.Sectors[sector]
	mo.Sector, mo.FloorZ, mo.CeilingZ = sector, sec.Floor, sec.Ceiling
	return true
}

// fits checks the sector just entered: the floor may rise by at most MaxStep
// over the actor's previous z, and the opening must hold the actor's height.
func (m *Mover) fits(mo *mobj.Mobj, prevZ fixed.Fixed) bool {
	if mo.FloorZ-prevZ > m.p.MaxStep {
		return false
	}
	return mo.CeilingZ-mo.FloorZ >= mo.Height
}

func (m *Mover) vertical(mo *mobj.Mobj) {
	mo.Z += mo.MomZ
	if top := mo.CeilingZ - mo.Height; mo.Z > top {
		mo.Z = top
		mo.MomZ = 0
	}
	// A floor rise within MaxStep lands here as a single-tick snap up.
	if mo.Z < mo.FloorZ {
		mo.Z = mo.FloorZ
		mo.MomZ = 0
	}

	if mo.Z <= mo.FloorZ {
		mo.MomZ = 0
		m.friction(mo)
		return
	}
	if !mo.Flags.Has(mobj.NoGravity) {
		mo.MomZ -= m.p.Gravity
	}
}

func (m *Mover) friction(mo *mobj.Mobj) {
	if fixed.Abs(mo.MomX) < m.p.StopSpeed && fixed.Abs(mo.MomY) < m.p.StopSpeed {
		mo.MomX, mo.MomY = 0, 0
		return
	}
	mo.MomX = fixed.Mul(mo.MomX, m.p.Friction)
	mo.MomY = fixed.Mul(mo.MomY, m.p.Friction)
}
