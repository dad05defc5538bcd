package system

import (
	coresys "github.com/fixedtick/levelsim/internal/core/system"
	"github.com/fixedtick/levelsim/internal/sim"
)

// SectorSystem advances doors and platforms. Phase 3 (Sectors).
type SectorSystem struct {
	world *sim.World
}

func NewSectorSystem(w *sim.World) *SectorSystem {
	return &SectorSystem{world: w}
}

func (s *SectorSystem) Phase() coresys.Phase { return coresys.PhaseSectors }

func (s *SectorSystem) Update(_ uint64) {
	s.world.RunMachines()
}
