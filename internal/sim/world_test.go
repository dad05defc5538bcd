package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fixedtick/levelsim/internal/core/ecs"
	"github.com/fixedtick/levelsim/internal/core/event"
	"github.com/fixedtick/levelsim/internal/fixed"
	"github.com/fixedtick/levelsim/internal/level"
	"github.com/fixedtick/levelsim/internal/level/leveltest"
	"github.com/fixedtick/levelsim/internal/machine"
	"github.com/fixedtick/levelsim/internal/mobj"
	"github.com/fixedtick/levelsim/internal/scripting"
	"github.com/fixedtick/levelsim/internal/trig"
)

var u = leveltest.Units

// doorRoom: a closed manual door (sector 0) in front of an open room.
func doorRoom() *leveltest.Fixture {
	f := leveltest.Row(nil,
		leveltest.Room{Width: 64, Floor: 0, Ceiling: 0},
		leveltest.Room{Width: 128, Floor: 0, Ceiling: 128},
	)
	f.Level.Lines[f.Boundary(1)].Special = 1
	return f
}

func newTestWorld(t *testing.T, lvl *level.Level, opts Options) *World {
	t.Helper()
	w, err := NewWorld(lvl, opts, nil)
	require.NoError(t, err)
	return w
}

func spawn(t *testing.T, w *World, kind mobj.Type, x, y, deg int) ecs.EntityID {
	t.Helper()
	id, err := w.Spawn(kind, u(x), u(y), fixed.DegreesToAngle(deg), "")
	require.NoError(t, err)
	return id
}

func TestNewWorldSpawnsThings(t *testing.T) {
	f := leveltest.Row(nil,
		leveltest.Room{Width: 128, Floor: 0, Ceiling: 128},
		leveltest.Room{Width: 128, Floor: 16, Ceiling: 128},
	)
	f.Level.Things = []level.Thing{
		{X: u(64), Y: u(128), Kind: level.ThingPlayer},
		{X: u(192), Y: u(128), Kind: level.ThingMonster},
		{X: u(200), Y: u(200), Kind: level.ThingMonster, Script: "wander"},
		{X: u(100), Y: u(40), Kind: level.ThingDecoration},
	}
	core, logs := observer.New(zapcore.WarnLevel)

	w, err := NewWorld(f.Level, DefaultOptions(), zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, 3, w.Mobjs.Len())
	require.Len(t, w.Players(), 1)
	assert.Equal(t, 1, w.Thinkers.Len(), "only the monster thinks")
	assert.Equal(t, 1, logs.FilterMessage("thing not spawned").Len())

	var monster *mobj.Mobj
	w.Mobjs.Each(func(_ ecs.EntityID, mo *mobj.Mobj) {
		if mo.Type == mobj.Monster {
			monster = mo
		}
	})
	require.NotNil(t, monster)
	assert.Equal(t, 1, monster.Sector)
	assert.Equal(t, u(16), monster.Z)
	assert.Equal(t, u(20), monster.Radius)
}

func TestSpawnErrors(t *testing.T) {
	f := doorRoom()
	f.Level.SubSectors[1].NumSegs = 0
	w := newTestWorld(t, f.Level, DefaultOptions())

	_, err := w.Spawn(mobj.Monster, u(128), u(128), 0, "")
	assert.ErrorIs(t, err, ErrOutsideLevel)

	_, err = w.Spawn(mobj.Monster, u(32), u(128), 0, "wander")
	assert.ErrorIs(t, err, ErrUnknownScript)
	assert.Zero(t, w.Mobjs.Len())
}

func TestApplyCommandTurnsAndThrusts(t *testing.T) {
	w := newTestWorld(t, doorRoom().Level, DefaultOptions())
	id := spawn(t, w, mobj.Player, 128, 128, 0)
	mo, _ := w.Mobj(id)

	w.ApplyCommand(id, Command{Forward: 25})
	assert.Equal(t, fixed.Fixed(25*0x800), mo.MomX)
	assert.Zero(t, mo.MomY)

	mo.Stop()
	w.ApplyCommand(id, Command{Strafe: 10})
	assert.Zero(t, mo.MomX)
	assert.Equal(t, fixed.Fixed(-10*0x600), mo.MomY, "strafe right is clockwise of facing")

	w.ApplyCommand(id, Command{Turn: 0x4000})
	assert.Equal(t, fixed.Ang90, mo.Angle)
}

func TestNoThrustInTheAir(t *testing.T) {
	w := newTestWorld(t, doorRoom().Level, DefaultOptions())
	id := spawn(t, w, mobj.Player, 128, 128, 0)
	mo, _ := w.Mobj(id)
	mo.Z = u(40)

	w.ApplyCommand(id, Command{Forward: 25, Turn: 0x4000})
	assert.Zero(t, mo.MomX)
	assert.Equal(t, fixed.Ang90, mo.Angle, "turning still works")
}

func TestUseFiresOnPressOnly(t *testing.T) {
	w := newTestWorld(t, doorRoom().Level, DefaultOptions())
	id := spawn(t, w, mobj.Player, 96, 128, 180)
	use := Command{Buttons: ButtonUse}

	w.ApplyCommand(id, use)
	acts := w.CheckCrossings()
	require.Len(t, acts, 1)
	assert.True(t, acts[0].Accepted)
	assert.True(t, w.Machines.Active(0))

	w.ApplyCommand(id, use)
	assert.Empty(t, w.CheckCrossings(), "held button does not repeat")

	w.ApplyCommand(id, Command{})
	w.ApplyCommand(id, use)
	acts = w.CheckCrossings()
	require.Len(t, acts, 1)
	assert.False(t, acts[0].Accepted, "door already moving")
}

func TestHeightEventsReachSubscribers(t *testing.T) {
	w := newTestWorld(t, doorRoom().Level, DefaultOptions())
	id := spawn(t, w, mobj.Player, 96, 128, 180)

	var got []event.HeightChanged
	event.Subscribe(w.Bus, func(ev event.HeightChanged) { got = append(got, ev) })
	var lines []event.LineActivated
	event.Subscribe(w.Bus, func(ev event.LineActivated) { lines = append(lines, ev) })

	w.BeginTick(7)
	w.ApplyCommand(id, Command{Buttons: ButtonUse})
	w.RunMachines()
	w.CheckCrossings()
	assert.Empty(t, got, "queued until dispatch")

	w.Bus.Dispatch()
	require.Len(t, got, 1)
	assert.Equal(t, event.HeightChanged{Tick: 7, Sector: 0, Surface: event.Ceiling, Height: u(2)}, got[0])
	require.Len(t, lines, 1)
	assert.Equal(t, event.LineActivated{Tick: 7, Line: 1, Entity: id}, lines[0])
}

func TestRidersFollowLoweringFloor(t *testing.T) {
	f := leveltest.Row(nil,
		leveltest.Room{Width: 128, Floor: 64, Ceiling: 160, Tag: 1},
		leveltest.Room{Width: 128, Floor: 0, Ceiling: 160},
	)
	w := newTestWorld(t, f.Level, DefaultOptions())
	rider := spawn(t, w, mobj.Player, 64, 128, 0)
	other := spawn(t, w, mobj.Player, 192, 128, 0)
	mo, _ := w.Mobj(rider)
	require.Equal(t, u(64), mo.Z)

	require.True(t, w.Machines.ActivatePlat(0, machine.PlatDownWaitUpStay, machine.SpeedNormal))
	w.RunMachines()
	assert.Equal(t, u(60), mo.FloorZ)
	assert.Equal(t, u(60), mo.Z)
	assert.True(t, mo.OnFloor())

	bystander, _ := w.Mobj(other)
	assert.Zero(t, bystander.Z)
}

func TestAirborneActorKeepsHeightWhenFloorDrops(t *testing.T) {
	f := leveltest.Row(nil,
		leveltest.Room{Width: 128, Floor: 64, Ceiling: 200, Tag: 1},
		leveltest.Room{Width: 128, Floor: 0, Ceiling: 200},
	)
	w := newTestWorld(t, f.Level, DefaultOptions())
	id := spawn(t, w, mobj.Monster, 64, 128, 0)
	mo, _ := w.Mobj(id)
	mo.Z = u(100)

	require.True(t, w.Machines.ActivatePlat(0, machine.PlatDownWaitUpStay, machine.SpeedNormal))
	w.RunMachines()
	assert.Equal(t, u(100), mo.Z)
	assert.Equal(t, u(60), mo.FloorZ)
}

func TestFitsCountsSolidActorsInSector(t *testing.T) {
	w := newTestWorld(t, doorRoom().Level, DefaultOptions())
	spawn(t, w, mobj.Player, 128, 128, 0)

	assert.True(t, w.Fits(1, 0, u(56)))
	assert.False(t, w.Fits(1, 0, u(55)))
	assert.True(t, w.Fits(0, 0, 0), "nobody inside the door")
}

func TestDoorReopensOnActor(t *testing.T) {
	f := leveltest.Row(nil,
		leveltest.Room{Width: 128, Floor: 0, Ceiling: 128},
		leveltest.Room{Width: 128, Floor: 0, Ceiling: 128},
	)
	w := newTestWorld(t, f.Level, DefaultOptions())
	spawn(t, w, mobj.Player, 64, 128, 0)

	require.True(t, w.Machines.ActivateDoor(0, machine.DoorClose, machine.SpeedVeryFast))
	for i := 0; i < 10; i++ {
		w.RunMachines()
	}
	assert.GreaterOrEqual(t, f.Level.Sectors[0].Ceiling-f.Level.Sectors[0].Floor, u(56))
}

func TestWalkCrossingEmitsEvent(t *testing.T) {
	f := leveltest.Row(nil,
		leveltest.Room{Width: 128, Floor: 0, Ceiling: 128},
		leveltest.Room{Width: 128, Floor: 0, Ceiling: 128},
		leveltest.Room{Width: 128, Floor: 64, Ceiling: 160, Tag: 3},
	)
	f.Level.Lines[f.Boundary(1)].Special = 88
	f.Level.Lines[f.Boundary(1)].Tag = 3
	w := newTestWorld(t, f.Level, DefaultOptions())
	id := spawn(t, w, mobj.Player, 100, 128, 0)
	mo, _ := w.Mobj(id)

	var lines []event.LineActivated
	event.Subscribe(w.Bus, func(ev event.LineActivated) { lines = append(lines, ev) })

	w.BeginTick(1)
	mo.MomX = u(20)
	w.MoveControlled()
	require.Equal(t, u(120), mo.X)
	assert.Empty(t, w.CheckCrossings())

	w.BeginTick(2)
	w.MoveControlled()
	acts := w.CheckCrossings()
	require.Len(t, acts, 1)
	assert.True(t, acts[0].Accepted)
	assert.True(t, w.Machines.Active(2))

	w.Bus.Dispatch()
	assert.Equal(t, []event.LineActivated{{Tick: 2, Line: 1, Entity: id, Walk: true}}, lines)
}

func TestRemoveAndFlush(t *testing.T) {
	w := newTestWorld(t, doorRoom().Level, DefaultOptions())
	id := spawn(t, w, mobj.Monster, 128, 128, 0)
	require.Equal(t, 1, w.Thinkers.Len())

	var removed []ecs.EntityID
	event.Subscribe(w.Bus, func(ev event.EntityRemoved) { removed = append(removed, ev.Entity) })

	w.Remove(id)
	w.Remove(id)
	assert.Zero(t, w.Thinkers.Len(), "thinker stops at once")
	_, ok := w.Mobj(id)
	assert.True(t, ok, "still readable until cleanup")

	assert.Equal(t, 1, w.Flush())
	assert.Zero(t, w.Flush())
	_, ok = w.Mobj(id)
	assert.False(t, ok)

	w.Bus.Dispatch()
	assert.Equal(t, []ecs.EntityID{id}, removed)
}

func TestScriptedThinker(t *testing.T) {
	tables := trig.New()
	scripts, err := scripting.NewEngine(t.TempDir(), tables, nil)
	require.NoError(t, err)
	t.Cleanup(scripts.Close)
	require.NoError(t, scripts.LoadString(`
function drift(ent, tick)
  if tick >= 3 then
    return { remove = true }
  end
  return { momx = to_fixed(4) }
end
`))
	opts := DefaultOptions()
	opts.Scripts = scripts
	opts.Tables = tables
	w := newTestWorld(t, doorRoom().Level, opts)
	assert.Same(t, tables, w.Tables, "one table set shared with the scripts")
	id, err := w.Spawn(mobj.Decoration, u(128), u(128), 0, "drift")
	require.NoError(t, err)
	mo, _ := w.Mobj(id)

	for tick := uint64(1); tick <= 2; tick++ {
		w.BeginTick(tick)
		w.RunThinkers()
	}
	assert.Greater(t, mo.X, u(128))

	w.BeginTick(3)
	w.RunThinkers()
	assert.Zero(t, w.Thinkers.Len())
	assert.Equal(t, 1, w.Flush())
}
