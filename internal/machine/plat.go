package machine

import (
	"go.uber.org/zap"

	"github.com/fixedtick/levelsim/internal/fixed"
)

type PlatKind int

const (
	PlatPerpetual      PlatKind = iota // loop between the lowest and highest neighbour floors
	PlatDownWaitUpStay                 // lift: lower, wait, return and stop
)

var platKindNames = [...]string{"perpetual", "down-wait-up-stay"}

func (k PlatKind) String() string {
	if k < 0 || int(k) >= len(platKindNames) {
		return "unknown"
	}
	return platKindNames[k]
}

type PlatState int

const (
	PlatUp PlatState = iota
	PlatDown
	PlatWaiting
)

var platStateNames = [...]string{"up", "down", "waiting"}

func (s PlatState) String() string {
	if s < 0 || int(s) >= len(platStateNames) {
		return "unknown"
	}
	return platStateNames[s]
}

// Plat moves a sector's floor between Low and High.
type Plat struct {
	sector int
	Kind   PlatKind
	State  PlatState
	Speed  fixed.Fixed
	Low    fixed.Fixed
	High   fixed.Fixed
	Wait   int

	after PlatState
}

func (p *Plat) Sector() int { return p.sector }

// ActivatePlat starts a platform on sector. Perpetual platforms start moving
// down. It returns false if the sector is unknown or already has a machine.
func (m *Manager) ActivatePlat(sector int, kind PlatKind, speed Speed) bool {
	if !m.lvl.ValidSector(sector) {
		return false
	}
	floor := m.lvl.Sectors[sector].Floor
	p := &Plat{sector: sector, Kind: kind, Speed: m.cfg.platSpeed(speed), Low: floor, High: floor, State: PlatDown}
	if low, ok := m.lvl.LowestNeighborFloor(sector); ok && low < p.Low {
		p.Low = low
	}
	switch kind {
	case PlatPerpetual:
		if high, ok := m.lvl.HighestNeighborFloor(sector); ok && high > p.High {
			p.High = high
		}
	case PlatDownWaitUpStay:
	default:
		return false
	}
	if !m.start(p) {
		return false
	}
	m.log.Debug("platform activated",
		zap.Int("sector", sector),
		zap.Stringer("kind", kind),
		zap.Stringer("speed", speed))
	return true
}

// StopPlat removes the platform running on sector, leaving its floor where it
// is. It returns false if no platform is running there.
func (m *Manager) StopPlat(sector int) bool {
	h, ok := m.bySector[sector]
	if !ok {
		return false
	}
	mc, _ := m.sched.Get(h)
	if _, isPlat := mc.(*Plat); !isPlat {
		return false
	}
	m.stop(h, mc)
	return true
}

func (p *Plat) think(m *Manager) bool {
	sec := &m.lvl.Sectors[p.sector]
	switch p.State {
	case PlatWaiting:
		p.Wait--
		if p.Wait <= 0 {
			p.State = p.after
		}
		return false

	case PlatDown:
		next, arrived := step(sec.Floor, p.Low, p.Speed)
		m.setFloor(p.sector, next)
		if arrived {
			p.wait(m.cfg.PlatWait, PlatUp)
		}
		return false

	case PlatUp:
		next, arrived := step(sec.Floor, p.High, p.Speed)
		if !m.fits(p.sector, next, sec.Ceiling) {
			p.State = PlatDown
			return false
		}
		m.setFloor(p.sector, next)
		if !arrived {
			return false
		}
		if p.Kind == PlatDownWaitUpStay {
			return true
		}
		p.wait(m.cfg.PlatWait, PlatDown)
		return false
	}
	return true
}

func (p *Plat) wait(ticks int, then PlatState) {
	p.State, p.Wait, p.after = PlatWaiting, ticks, then
	if ticks <= 0 {
		p.State = then
	}
}
