package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixedtick/levelsim/internal/config"
	"github.com/fixedtick/levelsim/internal/core/event"
	coresys "github.com/fixedtick/levelsim/internal/core/system"
	"github.com/fixedtick/levelsim/internal/fixed"
	"github.com/fixedtick/levelsim/internal/level"
	"github.com/fixedtick/levelsim/internal/scripting"
	"github.com/fixedtick/levelsim/internal/sim"
	"github.com/fixedtick/levelsim/internal/system"
	"github.com/fixedtick/levelsim/internal/trig"
)

func TestWorldOptionsMatchDefaults(t *testing.T) {
	assert.Equal(t, sim.DefaultOptions(), worldOptions(config.Default()))
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := config.Load("../../config/levelsim.toml")
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultOptions(), worldOptions(cfg))
}

func TestDemoRun(t *testing.T) {
	lvl, err := level.Load("../../data/levels/demo.yaml", nil)
	require.NoError(t, err)
	opts := worldOptions(config.Default())
	opts.Tables = trig.New()
	scripts, err := scripting.NewEngine("../../scripts", opts.Tables, nil)
	require.NoError(t, err)
	defer scripts.Close()
	input, err := sim.LoadRecordedInput("../../data/input/demo.yaml")
	require.NoError(t, err)

	opts.Scripts = scripts
	w, err := sim.NewWorld(lvl, opts, nil)
	require.NoError(t, err)
	assert.Same(t, opts.Tables, w.Tables)
	require.Equal(t, 3, w.Mobjs.Len())
	require.Equal(t, 2, w.Thinkers.Len())

	var used []uint64
	event.Subscribe(w.Bus, func(ev event.LineActivated) {
		if !ev.Walk {
			used = append(used, ev.Tick)
		}
	})

	runner := coresys.NewRunner()
	system.RegisterAll(runner, w, input, nil, nil)
	for tick := uint64(1); tick <= 60; tick++ {
		runner.Tick(tick)
	}

	assert.Equal(t, []uint64{20}, used)
	door := lvl.Sectors[1]
	assert.Equal(t, fixed.FromInt(82), door.Ceiling, "two units a tick since tick 20")
}
