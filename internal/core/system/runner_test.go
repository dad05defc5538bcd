package system

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	phase Phase
	name  string
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }
func (r recorder) Update(tick uint64) {
	*r.log = append(*r.log, fmt.Sprintf("%d:%s", tick, r.name))
}

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{PhaseCleanup, "cleanup", &log})
	r.Register(recorder{PhaseTriggers, "triggers", &log})
	r.Register(recorder{PhaseInput, "input", &log})
	r.Register(recorder{PhaseTriggers, "triggers2", &log})
	r.Register(recorder{PhaseMovement, "move", &log})

	r.Tick(7)
	assert.Equal(t, []string{"7:input", "7:move", "7:triggers", "7:triggers2", "7:cleanup"}, log)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "sectors", PhaseSectors.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
