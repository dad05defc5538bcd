package bsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fixedtick/levelsim/internal/level"
	"github.com/fixedtick/levelsim/internal/level/leveltest"
)

func fiveRooms() *leveltest.Fixture {
	rooms := make([]leveltest.Room, 5)
	for i := range rooms {
		rooms[i] = leveltest.Room{Width: 128 + 32*i, Floor: 8 * i, Ceiling: 128}
	}
	return leveltest.Row(nil, rooms...)
}

func TestVisibleLeavesEachOnce(t *testing.T) {
	f := fiveRooms()
	ix := New(f.Level, nil)

	all := []int{0, 1, 2, 3, 4}
	for room := range all {
		x, y := f.Center(room)
		leaves := ix.VisibleLeaves(x, y)
		assert.ElementsMatch(t, all, leaves, "from room %d", room)
		require.NotEmpty(t, leaves)
		assert.Equal(t, room, leaves[0], "containing leaf comes first")
	}

	// Points near the corners of the extent.
	for _, p := range [][2]int{{1, 1}, {1, 255}, {f.Xs[5] - 1, 1}, {f.Xs[5] - 1, 255}} {
		leaves := ix.VisibleLeaves(leveltest.Units(p[0]), leveltest.Units(p[1]))
		assert.ElementsMatch(t, all, leaves)
	}
}

func TestVisibleLeavesFrontToBack(t *testing.T) {
	f := fiveRooms()
	ix := New(f.Level, nil)

	x, y := f.Center(0)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, ix.VisibleLeaves(x, y))

	x, y = f.Center(4)
	assert.Equal(t, []int{4, 3, 2, 1, 0}, ix.VisibleLeaves(x, y))
}

func TestLocate(t *testing.T) {
	f := fiveRooms()
	ix := New(f.Level, nil)

	for room := 0; room < 5; room++ {
		x, y := f.Center(room)
		assert.Equal(t, room, ix.LeafAt(x, y))
		assert.Equal(t, room, ix.SectorAt(x, y))
		assert.Equal(t, room, ix.OwnerSector(room))
	}
	// On a partition line the point belongs to side 0, the room to the right.
	assert.Equal(t, 1, ix.SectorAt(leveltest.Units(f.Xs[1]), leveltest.Units(10)))
	assert.Equal(t, NoSector, ix.OwnerSector(99))
	assert.Equal(t, NoSector, ix.OwnerSector(-1))
}

func TestZeroNodesIsOneLeaf(t *testing.T) {
	f := leveltest.Row(nil, leveltest.Room{Width: 256, Ceiling: 128})
	require.Empty(t, f.Level.Nodes)
	ix := New(f.Level, nil)

	assert.Equal(t, []int{0}, ix.VisibleLeaves(leveltest.Units(5000), leveltest.Units(-5000)))
	assert.Equal(t, 0, ix.LeafAt(0, 0))
	assert.Equal(t, 0, ix.SectorAt(leveltest.Units(10), leveltest.Units(10)))

	// Several subsectors but no nodes: all of them are visible.
	f.Level.SubSectors = append(f.Level.SubSectors, f.Level.SubSectors[0], f.Level.SubSectors[0])
	ix = New(f.Level, nil)
	assert.Equal(t, []int{0, 1, 2}, ix.VisibleLeaves(0, 0))
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

func refKinds(logs *observer.ObservedLogs) []level.RefKind {
	var kinds []level.RefKind
	for _, e := range logs.All() {
		for _, fld := range e.Context {
			if re, ok := fld.Interface.(*level.RefError); ok {
				kinds = append(kinds, re.Kind)
			}
		}
	}
	return kinds
}

func TestInvalidChildStopsDescending(t *testing.T) {
	f := fiveRooms()
	l := f.Level
	root := len(l.Nodes) - 1
	// Root's left subtree (rooms 0,1) now points nowhere.
	l.Nodes[root].Children[1] = level.NodeChild(42)

	log, logs := observed()
	ix := New(l, log)

	x, y := f.Center(3)
	assert.ElementsMatch(t, []int{2, 3, 4}, ix.VisibleLeaves(x, y))
	assert.Contains(t, refKinds(logs), level.RefNodeChild)

	x, y = f.Center(0)
	assert.Equal(t, -1, ix.LeafAt(x, y))
	assert.Equal(t, NoSector, ix.SectorAt(x, y))
}

func TestInvalidLeafIndex(t *testing.T) {
	f := fiveRooms()
	l := f.Level
	l.Nodes[len(l.Nodes)-1].Children[1] = level.LeafChild(77)

	log, logs := observed()
	ix := New(l, log)

	x, y := f.Center(4)
	assert.ElementsMatch(t, []int{2, 3, 4}, ix.VisibleLeaves(x, y))
	assert.Contains(t, refKinds(logs), level.RefLeaf)
}

func TestCyclicTreeTerminates(t *testing.T) {
	f := fiveRooms()
	l := f.Level
	root := len(l.Nodes) - 1
	l.Nodes[root].Children[1] = level.NodeChild(root)

	log, logs := observed()
	ix := New(l, log)

	x, y := f.Center(0)
	assert.Equal(t, -1, ix.LeafAt(x, y))
	assert.ElementsMatch(t, []int{2, 3, 4}, ix.VisibleLeaves(x, y))
	assert.Contains(t, refKinds(logs), level.RefNodeDepth)
}

func TestUnresolvableOwners(t *testing.T) {
	f := fiveRooms()
	l := f.Level
	l.SubSectors[1].NumSegs = 0
	l.SubSectors[2].FirstSeg = 1000
	l.Segs[l.SubSectors[3].FirstSeg].Line = 5000

	log, logs := observed()
	l.Link(log)
	ix := New(l, log)

	assert.Equal(t, 0, ix.OwnerSector(0))
	assert.Equal(t, NoSector, ix.OwnerSector(1))
	assert.Equal(t, NoSector, ix.OwnerSector(2))
	assert.Equal(t, NoSector, ix.OwnerSector(3))
	assert.Equal(t, 4, ix.OwnerSector(4))

	kinds := refKinds(logs)
	assert.Contains(t, kinds, level.RefEmptySubSector)
	assert.Contains(t, kinds, level.RefSeg)
	assert.Contains(t, kinds, level.RefLine)

	x, y := f.Center(1)
	assert.Equal(t, NoSector, ix.SectorAt(x, y))
}
