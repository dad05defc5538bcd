// Package system holds the per-phase systems that drive a sim.World through
// one logical tick.
package system

import (
	"go.uber.org/zap"

	coresys "github.com/fixedtick/levelsim/internal/core/system"
	"github.com/fixedtick/levelsim/internal/sim"
)

// RegisterAll adds the full tick pipeline to r.
func RegisterAll(r *coresys.Runner, w *sim.World, src sim.InputSource, m *sim.Metrics, log *zap.Logger) {
	r.Register(NewInputSystem(w, src))
	r.Register(NewMovementSystem(w))
	r.Register(NewThinkerSystem(w))
	r.Register(NewSectorSystem(w))
	r.Register(NewTriggerSystem(w, m, log))
	r.Register(NewOutputSystem(w))
	r.Register(NewCleanupSystem(w, m))
}
