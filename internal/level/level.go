// Package level holds the in-memory level geometry consumed by the
// simulation: vertices, lines, sides, sectors, BSP nodes and subsectors.
// Geometry is read-only to the core except for sector floor and ceiling
// heights, which only the sector machines write.
package level

import (
	"go.uber.org/zap"

	"github.com/fixedtick/levelsim/internal/fixed"
)

type Vertex struct {
	X, Y fixed.Fixed
}

// LineFlags follow the classic linedef flag bits.
type LineFlags uint16

const (
	LineBlocking      LineFlags = 0x0001
	LineBlockMonsters LineFlags = 0x0002
	LineTwoSided      LineFlags = 0x0004
)

type Line struct {
	V1, V2  int
	Flags   LineFlags
	Special int
	Tag     int
	Sides   [2]int // front, back; -1 = none
}

type Side struct {
	Sector int
}

type Sector struct {
	Floor   fixed.Fixed
	Ceiling fixed.Fixed
	Light   int
	Special int
	Tag     int
}

// Seg is a wall fragment: a piece of a line bounding one subsector.
type Seg struct {
	V1, V2 int
	Line   int
	Side   int // 0 front, 1 back
}

// SubSector is a convex BSP leaf: a contiguous run of segs.
type SubSector struct {
	FirstSeg int
	NumSegs  int
}

type Node struct {
	X, Y, DX, DY fixed.Fixed
	Children     [2]Child // side 0, side 1
}

// ThingKind classifies a spawn point.
type ThingKind string

const (
	ThingPlayer     ThingKind = "player"
	ThingMonster    ThingKind = "monster"
	ThingDecoration ThingKind = "decoration"
)

type Thing struct {
	X, Y   fixed.Fixed
	Angle  fixed.Angle
	Kind   ThingKind
	Script string
}

// Level is the decoded geometry plus indexes derived by Link.
type Level struct {
	Name       string
	Vertices   []Vertex
	Lines      []Line
	Sides      []Side
	Sectors    []Sector
	Segs       []Seg
	SubSectors []SubSector
	Nodes      []Node
	Things     []Thing

	byTag     map[int][]int
	neighbors [][]int
	validLine []bool
	blockmap  *BlockMap
	log       *zap.Logger
}

// Link validates references and builds the derived indexes. It must run once
// after the arrays are filled and before the level is queried. Bad references
// are reported and degraded, never fatal.
func (l *Level) Link(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	l.log = log

	l.validLine = make([]bool, len(l.Lines))
	for i, ln := range l.Lines {
		if !l.validVertex(ln.V1) || !l.validVertex(ln.V2) {
			l.report(&RefError{Kind: RefVertex, Index: i, Ref: ln.V1})
			continue
		}
		l.validLine[i] = true
	}

	l.byTag = make(map[int][]int)
	for i, s := range l.Sectors {
		if s.Tag != 0 {
			l.byTag[s.Tag] = append(l.byTag[s.Tag], i)
		}
	}

	l.neighbors = make([][]int, len(l.Sectors))
	for i := range l.Lines {
		front, back := l.LineSectors(i)
		if front < 0 || back < 0 || front == back {
			continue
		}
		l.addNeighbor(front, back)
		l.addNeighbor(back, front)
	}

	l.blockmap = newBlockMap(l)
}

func (l *Level) addNeighbor(s, n int) {
	for _, have := range l.neighbors[s] {
		if have == n {
			return
		}
	}
	l.neighbors[s] = append(l.neighbors[s], n)
}

func (l *Level) validVertex(v int) bool { return v >= 0 && v < len(l.Vertices) }

// ValidSector reports whether s indexes a sector.
func (l *Level) ValidSector(s int) bool { return s >= 0 && s < len(l.Sectors) }

func (l *Level) report(err *RefError) {
	l.log.Warn("geometry reference", zap.Error(err))
}

// Logger is the diagnostic channel the level was linked with.
func (l *Level) Logger() *zap.Logger { return l.log }

// LineEnds returns a line's endpoints. ok is false for lines whose vertex
// references were rejected by Link.
func (l *Level) LineEnds(line int) (x1, y1, x2, y2 fixed.Fixed, ok bool) {
	if line < 0 || line >= len(l.Lines) || !l.validLine[line] {
		return 0, 0, 0, 0, false
	}
	ln := &l.Lines[line]
	a, b := l.Vertices[ln.V1], l.Vertices[ln.V2]
	return a.X, a.Y, b.X, b.Y, true
}

// SideSector resolves side (0 front, 1 back) of line to a sector, or -1.
// A side index pointing outside the side array is reported.
func (l *Level) SideSector(line, side int) int {
	if line < 0 || line >= len(l.Lines) {
		l.report(&RefError{Kind: RefLine, Index: line, Ref: line})
		return -1
	}
	si := l.Lines[line].Sides[side&1]
	if si < 0 {
		return -1
	}
	if si >= len(l.Sides) {
		l.report(&RefError{Kind: RefSide, Index: line, Ref: si})
		return -1
	}
	sec := l.Sides[si].Sector
	if !l.ValidSector(sec) {
		l.report(&RefError{Kind: RefSector, Index: si, Ref: sec})
		return -1
	}
	return sec
}

// LineSectors returns the front and back sector of a line, -1 where absent.
func (l *Level) LineSectors(line int) (front, back int) {
	return l.SideSector(line, 0), l.SideSector(line, 1)
}

// TwoSided reports whether a line has sectors on both sides.
func (l *Level) TwoSided(line int) bool {
	front, back := l.LineSectors(line)
	return front >= 0 && back >= 0
}

// SectorsByTag lists sectors carrying tag, in index order. Tag 0 matches nothing.
func (l *Level) SectorsByTag(tag int) []int {
	return l.byTag[tag]
}

// Neighbors lists sectors sharing a two-sided line with s.
func (l *Level) Neighbors(s int) []int {
	if !l.ValidSector(s) {
		return nil
	}
	return l.neighbors[s]
}

// LowestNeighborCeiling returns the lowest ceiling among neighbours of s.
func (l *Level) LowestNeighborCeiling(s int) (fixed.Fixed, bool) {
	return l.neighborExtreme(s, func(sec *Sector) fixed.Fixed { return sec.Ceiling }, false)
}

func (l *Level) LowestNeighborFloor(s int) (fixed.Fixed, bool) {
	return l.neighborExtreme(s, func(sec *Sector) fixed.Fixed { return sec.Floor }, false)
}

func (l *Level) HighestNeighborFloor(s int) (fixed.Fixed, bool) {
	return l.neighborExtreme(s, func(sec *Sector) fixed.Fixed { return sec.Floor }, true)
}

func (l *Level) neighborExtreme(s int, field func(*Sector) fixed.Fixed, highest bool) (fixed.Fixed, bool) {
	ns := l.Neighbors(s)
	if len(ns) == 0 {
		return 0, false
	}
	best := field(&l.Sectors[ns[0]])
	for _, n := range ns[1:] {
		v := field(&l.Sectors[n])
		if (highest && v > best) || (!highest && v < best) {
			best = v
		}
	}
	return best, true
}

// LinesInBox calls fn for every line whose blockmap cells overlap the box,
// each line at most once. fn returning false stops the scan.
func (l *Level) LinesInBox(x1, y1, x2, y2 fixed.Fixed, fn func(line int) bool) {
	l.blockmap.query(x1, y1, x2, y2, fn)
}
