package system

import (
	coresys "github.com/fixedtick/levelsim/internal/core/system"
	"github.com/fixedtick/levelsim/internal/sim"
)

// InputSystem samples one command per controlled actor and applies it.
// Phase 0 (Input). It also opens the tick on the world, so it must be the
// first system registered.
type InputSystem struct {
	world  *sim.World
	source sim.InputSource
}

func NewInputSystem(w *sim.World, src sim.InputSource) *InputSystem {
	if src == nil {
		src = sim.IdleInput{}
	}
	return &InputSystem{world: w, source: src}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(tick uint64) {
	s.world.BeginTick(tick)
	for _, id := range s.world.Players() {
		ctrl, ok := s.world.Controllers.Get(id)
		if !ok {
			continue
		}
		s.world.ApplyCommand(id, s.source.Sample(tick, ctrl.Player))
	}
}
