package system

import (
	coresys "github.com/fixedtick/levelsim/internal/core/system"
	"github.com/fixedtick/levelsim/internal/sim"
)

// ThinkerSystem runs one scheduler pass. Phase 2 (Thinkers).
type ThinkerSystem struct {
	world *sim.World
}

func NewThinkerSystem(w *sim.World) *ThinkerSystem {
	return &ThinkerSystem{world: w}
}

func (s *ThinkerSystem) Phase() coresys.Phase { return coresys.PhaseThinkers }

func (s *ThinkerSystem) Update(_ uint64) {
	s.world.RunThinkers()
}
