package system

// Phase defines execution ordering within a single logical tick.
type Phase int

const (
	PhaseInput    Phase = iota // 0: sample commands, turn and thrust, use
	PhaseMovement              // 1: integrate controlled entities
	PhaseThinkers              // 2: scheduler pass
	PhaseSectors               // 3: doors and platforms
	PhaseTriggers              // 4: walk crossings
	PhaseOutput                // 5: deliver outbound events
	PhaseCleanup               // 6: destroy queued entities
)

var phaseNames = [...]string{"input", "movement", "thinkers", "sectors", "triggers", "output", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is one step of the tick. tick is the number of the tick being run,
// starting at 1.
type System interface {
	Phase() Phase
	Update(tick uint64)
}
