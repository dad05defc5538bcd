package system

import (
	coresys "github.com/fixedtick/levelsim/internal/core/system"
	"github.com/fixedtick/levelsim/internal/sim"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end
// and samples the thinker and machine populations. Phase 6 (Cleanup).
type CleanupSystem struct {
	world   *sim.World
	metrics *sim.Metrics
}

func NewCleanupSystem(w *sim.World, m *sim.Metrics) *CleanupSystem {
	return &CleanupSystem{world: w, metrics: m}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ uint64) {
	s.world.Flush()
	if s.metrics != nil {
		s.metrics.Population(s.world.Thinkers.Len(), s.world.Machines.Len())
	}
}
