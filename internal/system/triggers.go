package system

import (
	"go.uber.org/zap"

	coresys "github.com/fixedtick/levelsim/internal/core/system"
	"github.com/fixedtick/levelsim/internal/sim"
)

// TriggerSystem checks walk crossings and accounts for every line activation
// of the tick, uses included. Phase 4 (Triggers).
type TriggerSystem struct {
	world   *sim.World
	metrics *sim.Metrics
	log     *zap.Logger
}

func NewTriggerSystem(w *sim.World, m *sim.Metrics, log *zap.Logger) *TriggerSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &TriggerSystem{world: w, metrics: m, log: log}
}

func (s *TriggerSystem) Phase() coresys.Phase { return coresys.PhaseTriggers }

func (s *TriggerSystem) Update(tick uint64) {
	for _, a := range s.world.CheckCrossings() {
		if s.metrics != nil {
			s.metrics.Activation(string(a.Class), a.Accepted)
		}
		s.log.Debug("line activated",
			zap.Uint64("tick", tick),
			zap.Int("line", a.Line),
			zap.String("class", string(a.Class)),
			zap.Bool("accepted", a.Accepted))
	}
}
