package system

import (
	coresys "github.com/fixedtick/levelsim/internal/core/system"
	"github.com/fixedtick/levelsim/internal/sim"
)

// OutputSystem delivers the tick's queued events to subscribers.
// Phase 5 (Output).
type OutputSystem struct {
	world *sim.World
}

func NewOutputSystem(w *sim.World) *OutputSystem {
	return &OutputSystem{world: w}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ uint64) {
	s.world.Bus.Dispatch()
}
