package system

import (
	coresys "github.com/fixedtick/levelsim/internal/core/system"
	"github.com/fixedtick/levelsim/internal/sim"
)

// MovementSystem integrates every input-driven actor. Phase 1 (Movement).
// Thinker-driven actors integrate from their own thinker.
type MovementSystem struct {
	world *sim.World
}

func NewMovementSystem(w *sim.World) *MovementSystem {
	return &MovementSystem{world: w}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMovement }

func (s *MovementSystem) Update(_ uint64) {
	s.world.MoveControlled()
}
