package movement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixedtick/levelsim/internal/bsp"
	"github.com/fixedtick/levelsim/internal/fixed"
	"github.com/fixedtick/levelsim/internal/level"
	"github.com/fixedtick/levelsim/internal/level/leveltest"
	"github.com/fixedtick/levelsim/internal/mobj"
	"github.com/fixedtick/levelsim/internal/trig"
)

var u = leveltest.Units

// stairs: floors 0, 16, 64 then a room too low to stand in.
func stairs() *leveltest.Fixture {
	return leveltest.Row(nil,
		leveltest.Room{Width: 256, Floor: 0, Ceiling: 128},
		leveltest.Room{Width: 256, Floor: 16, Ceiling: 128},
		leveltest.Room{Width: 256, Floor: 64, Ceiling: 128},
		leveltest.Room{Width: 256, Floor: 0, Ceiling: 40},
	)
}

func newMover(f *leveltest.Fixture) *Mover {
	return New(f.Level, bsp.New(f.Level, nil), DefaultParams(), nil)
}

func spawn(t *testing.T, m *Mover, kind mobj.Type, x, y int) *mobj.Mobj {
	t.Helper()
	mo := mobj.New(kind, u(x), u(y), u(16), u(56))
	require.True(t, m.Place(mo))
	return mo
}

func TestFreeMove(t *testing.T) {
	m := newMover(stairs())
	mo := spawn(t, m, mobj.Player, 128, 128)
	mo.MomX = u(8)

	assert.Equal(t, Moved, m.Integrate(mo))
	assert.Equal(t, u(136), mo.X)
	assert.Equal(t, u(128), mo.Y)
	assert.Equal(t, fixed.Mul(u(8), 0xE800), mo.MomX, "grounded friction")
}

func TestSlideKeepsXWhenYBlocked(t *testing.T) {
	m := newMover(stairs())
	mo := spawn(t, m, mobj.Player, 128, 20)
	mo.MomX, mo.MomY = u(8), u(-8)

	assert.Equal(t, SlidX, m.Integrate(mo))
	assert.Equal(t, u(136), mo.X)
	assert.Equal(t, u(20), mo.Y)
	assert.Equal(t, fixed.Fixed(0), mo.MomY)
	assert.Equal(t, fixed.Mul(u(8), 0xE800), mo.MomX)
}

func TestSlideKeepsYWhenXBlocked(t *testing.T) {
	m := newMover(stairs())
	mo := spawn(t, m, mobj.Player, 20, 128)
	mo.MomX, mo.MomY = u(-8), u(8)

	assert.Equal(t, SlidY, m.Integrate(mo))
	assert.Equal(t, u(20), mo.X)
	assert.Equal(t, u(136), mo.Y)
	assert.Equal(t, fixed.Fixed(0), mo.MomX)
}

func TestCornerBlocksBothAxes(t *testing.T) {
	m := newMover(stairs())
	mo := spawn(t, m, mobj.Player, 20, 20)
	mo.MomX, mo.MomY = u(-8), u(-8)

	assert.Equal(t, Blocked, m.Integrate(mo))
	assert.Equal(t, u(20), mo.X)
	assert.Equal(t, u(20), mo.Y)
	assert.True(t, mo.Still())
}

func TestTouchingWallWithoutMomentumStaysPut(t *testing.T) {
	m := newMover(stairs())
	mo := spawn(t, m, mobj.Player, 10, 128)
	require.True(t, m.Blocked(mo, mo.X, mo.Y), "circle overlaps the west wall")

	for i := 0; i < 3; i++ {
		assert.Equal(t, Still, m.Integrate(mo))
		assert.Equal(t, u(10), mo.X)
		assert.Equal(t, u(128), mo.Y)
		assert.Equal(t, fixed.Fixed(0), mo.Z)
	}
}

func TestStepUpSnapsToFloor(t *testing.T) {
	m := newMover(stairs())
	mo := spawn(t, m, mobj.Player, 240, 128)
	mo.MomX = u(32)

	assert.Equal(t, Moved, m.Integrate(mo))
	assert.Equal(t, u(272), mo.X)
	assert.Equal(t, 1, mo.Sector)
	assert.Equal(t, u(16), mo.FloorZ)
	assert.Equal(t, u(16), mo.Z)
	assert.Equal(t, fixed.Fixed(0), mo.MomZ)
}

func TestStepTooHighReverts(t *testing.T) {
	m := newMover(stairs())
	mo := spawn(t, m, mobj.Player, 496, 128)
	require.Equal(t, u(16), mo.Z)
	mo.MomX = u(32)

	assert.Equal(t, StepRejected, m.Integrate(mo))
	assert.Equal(t, u(496), mo.X)
	assert.Equal(t, 1, mo.Sector)
	assert.Equal(t, u(16), mo.FloorZ)
	assert.Equal(t, u(16), mo.Z)
	assert.True(t, mo.Still())
}

func TestLowOpeningReverts(t *testing.T) {
	m := newMover(stairs())
	mo := spawn(t, m, mobj.Player, 752, 128)
	mo.MomX = u(32)

	assert.Equal(t, StepRejected, m.Integrate(mo))
	assert.Equal(t, u(752), mo.X)
	assert.Equal(t, 2, mo.Sector)
}

func TestTwoSidedLineBlocksOnlyWhenFlagged(t *testing.T) {
	f := stairs()
	f.Level.Lines[f.Boundary(1)].Flags |= level.LineBlocking
	m := newMover(f)
	mo := spawn(t, m, mobj.Player, 232, 128)
	mo.MomX = u(16)

	assert.Equal(t, Blocked, m.Integrate(mo))
	assert.Equal(t, u(232), mo.X)
}

func TestMonsterBlockingLine(t *testing.T) {
	f := stairs()
	f.Level.Lines[f.Boundary(1)].Flags |= level.LineBlockMonsters
	m := newMover(f)

	monster := spawn(t, m, mobj.Monster, 232, 128)
	monster.MomX = u(16)
	assert.Equal(t, Blocked, m.Integrate(monster))

	player := spawn(t, m, mobj.Player, 232, 128)
	player.MomX = u(16)
	assert.Equal(t, Moved, m.Integrate(player))
}

func TestGravityLandsOnFloor(t *testing.T) {
	m := newMover(stairs())
	mo := spawn(t, m, mobj.Player, 128, 128)
	mo.Z = u(50)
	mo.MomZ = u(-10)

	var zs []fixed.Fixed
	for i := 0; i < 5; i++ {
		m.Integrate(mo)
		zs = append(zs, mo.Z)
		if i < 4 {
			assert.Equal(t, u(-11-i), mo.MomZ, "tick %d", i+1)
		}
	}
	assert.Equal(t, []fixed.Fixed{u(40), u(29), u(17), u(4), u(0)}, zs)
	assert.Equal(t, fixed.Fixed(0), mo.MomZ)
	assert.True(t, mo.OnFloor())
}

func TestCeilingClamp(t *testing.T) {
	m := newMover(stairs())
	mo := spawn(t, m, mobj.Player, 128, 128)
	mo.Z = u(50)
	mo.MomZ = u(30)

	m.Integrate(mo)
	assert.Equal(t, u(72), mo.Z)
	assert.Equal(t, u(-1), mo.MomZ, "clamped to zero, then one tick of gravity")
}

func TestNoGravityHovers(t *testing.T) {
	m := newMover(stairs())
	mo := mobj.New(mobj.Projectile, u(128), u(128), u(8), u(8))
	require.True(t, m.Place(mo))
	mo.Z = u(30)

	m.Integrate(mo)
	assert.Equal(t, u(30), mo.Z)
	assert.Equal(t, fixed.Fixed(0), mo.MomZ)
}

func TestFrictionSnapsSlowMomentum(t *testing.T) {
	m := newMover(stairs())
	mo := spawn(t, m, mobj.Player, 128, 128)
	mo.MomX, mo.MomY = 0x800, -0x800

	assert.Equal(t, Moved, m.Integrate(mo))
	assert.Equal(t, u(128)+0x800, mo.X)
	assert.Equal(t, u(128)-0x800, mo.Y)
	assert.True(t, mo.Still())
}

func TestUnresolvedSectorBlocks(t *testing.T) {
	f := stairs()
	f.Level.SubSectors[1].NumSegs = 0
	m := newMover(f)

	lost := mobj.New(mobj.Player, u(384), u(128), u(16), u(56))
	assert.False(t, m.Place(lost))
	assert.Equal(t, mobj.NoSector, lost.Sector)

	mo := spawn(t, m, mobj.Player, 250, 128)
	mo.MomX = u(16)
	assert.Equal(t, Blocked, m.Integrate(mo))
	assert.Equal(t, u(250), mo.X)
}

func TestMomentumCappedAtMaxMove(t *testing.T) {
	m := newMover(leveltest.Row(nil, leveltest.Room{Width: 2048, Floor: 0, Ceiling: 128}))
	mo := spawn(t, m, mobj.Player, 128, 128)
	mo.MomX, mo.MomY = u(38), u(-38)

	assert.Equal(t, Moved, m.Integrate(mo))
	assert.Equal(t, u(158), mo.X)
	assert.Equal(t, u(98), mo.Y)
	assert.Equal(t, fixed.Mul(u(30), 0xE800), mo.MomX)
}

func TestFullThrustStopsAtOuterWall(t *testing.T) {
	m := newMover(leveltest.Row(nil, leveltest.Room{Width: 2048, Floor: 0, Ceiling: 128}))
	tables := trig.New()
	mo := spawn(t, m, mobj.Player, 128, 128)

	blocked := 0
	for i := 0; i < 200; i++ {
		m.Thrust(mo, 0, 127*0x800, tables)
		if m.Integrate(mo) == Blocked {
			blocked++
		}
		require.LessOrEqual(t, mo.MomX, u(30), "tick %d", i)
		require.LessOrEqual(t, mo.X, u(2048)-mo.Radius, "tick %d", i)
	}
	assert.Positive(t, blocked)
	assert.Greater(t, mo.X, u(2020))
	assert.Equal(t, 0, mo.Sector)
}

func TestFastMoveCannotSkipBlockingLine(t *testing.T) {
	f := stairs()
	f.Level.Lines[f.Boundary(1)].Flags |= level.LineBlocking
	m := newMover(f)
	mo := spawn(t, m, mobj.Player, 239, 128)
	mo.MomX = u(38)

	assert.Equal(t, Blocked, m.Integrate(mo))
	assert.Equal(t, u(239), mo.X)
	assert.Equal(t, 0, mo.Sector)
	assert.Equal(t, fixed.Fixed(0), mo.MomX)
}

func TestLongMoveStopsAtFirstBlockedStep(t *testing.T) {
	f := stairs()
	f.Level.Lines[f.Boundary(1)].Flags |= level.LineBlocking
	m := newMover(f)
	mo := spawn(t, m, mobj.Player, 220, 128)
	mo.MomX = u(30)

	assert.Equal(t, Blocked, m.Integrate(mo))
	assert.Equal(t, u(235), mo.X, "first 15-unit step fits, second would touch the line")
}

func TestThrust(t *testing.T) {
	m := newMover(stairs())
	tables := trig.New()
	mo := &mobj.Mobj{}

	m.Thrust(mo, 0, u(2), tables)
	assert.Equal(t, u(2), mo.MomX)
	assert.Equal(t, fixed.Fixed(0), mo.MomY)

	m.Thrust(mo, fixed.Ang90, u(2), tables)
	assert.Equal(t, u(2), mo.MomX)
	assert.Equal(t, u(2), mo.MomY)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "slid-x", SlidX.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
