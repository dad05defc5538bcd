package machine

import (
	"go.uber.org/zap"

	"github.com/fixedtick/levelsim/internal/fixed"
)

type DoorKind int

const (
	DoorNormal        DoorKind = iota // open, wait, close
	DoorOpen                          // open and stay open
	DoorClose                         // close and stay closed
	DoorCloseWaitOpen                 // close, wait, reopen
)

var doorKindNames = [...]string{"normal", "open", "close", "close-wait-open"}

func (k DoorKind) String() string {
	if k < 0 || int(k) >= len(doorKindNames) {
		return "unknown"
	}
	return doorKindNames[k]
}

type DoorState int

const (
	DoorClosed DoorState = iota
	DoorOpening
	DoorOpened
	DoorWaiting
	DoorClosing
)

var doorStateNames = [...]string{"closed", "opening", "open", "waiting", "closing"}

func (s DoorState) String() string {
	if s < 0 || int(s) >= len(doorStateNames) {
		return "unknown"
	}
	return doorStateNames[s]
}

// doorLip keeps an open door's ceiling just below the surrounding ceilings.
var doorLip = fixed.FromInt(4)

// Door moves a sector's ceiling between its floor and Top.
type Door struct {
	sector int
	Kind   DoorKind
	State  DoorState
	Speed  fixed.Fixed
	Top    fixed.Fixed
	Wait   int // ticks left in DoorWaiting

	// state entered when the wait runs out
	after DoorState
}

func (d *Door) Sector() int { return d.sector }

// ActivateDoor starts a door on sector. It returns false if the sector is
// unknown or already has a machine.
func (m *Manager) ActivateDoor(sector int, kind DoorKind, speed Speed) bool {
	if !m.lvl.ValidSector(sector) {
		return false
	}
	sec := &m.lvl.Sectors[sector]
	d := &Door{sector: sector, Kind: kind, Speed: m.cfg.doorSpeed(speed), Top: sec.Ceiling}

	switch kind {
	case DoorNormal, DoorOpen:
		if top, ok := m.lvl.LowestNeighborCeiling(sector); ok {
			d.Top = top - doorLip
		}
		d.State = DoorOpening
	case DoorClose, DoorCloseWaitOpen:
		d.State = DoorClosing
	default:
		return false
	}
	if !m.start(d) {
		return false
	}
	m.log.Debug("door activated",
		zap.Int("sector", sector),
		zap.Stringer("kind", kind),
		zap.Stringer("speed", speed))
	return true
}

func (d *Door) think(m *Manager) bool {
	sec := &m.lvl.Sectors[d.sector]
	switch d.State {
	case DoorWaiting:
		d.Wait--
		if d.Wait <= 0 {
			d.State = d.after
		}
		return false

	case DoorOpening:
		next, arrived := step(sec.Ceiling, d.Top, d.Speed)
		m.setCeiling(d.sector, next)
		if !arrived {
			return false
		}
		switch d.Kind {
		case DoorNormal:
			d.wait(m.cfg.DoorWait, DoorClosing)
			return false
		default:
			d.State = DoorOpened
			return true
		}

	case DoorClosing:
		next, arrived := step(sec.Ceiling, sec.Floor, d.Speed)
		if !m.fits(d.sector, sec.Floor, next) {
			// Something is in the way: go back up without moving this tick.
			d.State = DoorOpening
			return false
		}
		m.setCeiling(d.sector, next)
		if !arrived {
			return false
		}
		if d.Kind == DoorCloseWaitOpen {
			d.wait(m.cfg.DoorReopen, DoorOpening)
			return false
		}
		d.State = DoorClosed
		return true
	}
	return true
}

func (d *Door) wait(ticks int, then DoorState) {
	d.State, d.Wait, d.after = DoorWaiting, ticks, then
	if ticks <= 0 {
		d.State = then
	}
}
