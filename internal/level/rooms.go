package level

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixedtick/levelsim/internal/fixed"
)

// RowSpec describes a level made of rectangular rooms laid left to right
// along +x, each its own sector and subsector. Boundary k is the wall between
// room k-1 and room k; boundaries 0 and len(Rooms) are the solid outer walls.
type RowSpec struct {
	Name       string         `yaml:"name"`
	Depth      int            `yaml:"depth"` // y extent of every room
	Rooms      []RoomSpec     `yaml:"rooms"`
	Boundaries []BoundarySpec `yaml:"boundaries"`
	Things     []ThingSpec    `yaml:"things"`
}

type RoomSpec struct {
	Name    string `yaml:"name"`
	Width   int    `yaml:"width"`
	Floor   int    `yaml:"floor"`
	Ceiling int    `yaml:"ceiling"`
	Light   int    `yaml:"light"` // 0 means 160
	Tag     int    `yaml:"tag"`
}

// BoundarySpec puts a special on an inner boundary. A boundary's front side
// faces room At unless FacingBack, in which case it faces room At-1; manual
// specials act on the sector behind the front side.
type BoundarySpec struct {
	At         int  `yaml:"at"`
	Special    int  `yaml:"special"`
	Tag        int  `yaml:"tag"`
	FacingBack bool `yaml:"facing_back"`
}

const defaultLight = 160

var ErrBadRow = errors.New("bad room row")

// BoundaryLine is the line index of boundary k in a built row.
func BoundaryLine(k int) int { return k }

// BuildRow lays out spec, derives a balanced BSP split on the room
// boundaries and links the result.
func BuildRow(spec RowSpec, log *zap.Logger) (*Level, error) {
	n := len(spec.Rooms)
	if n == 0 {
		return nil, fmt.Errorf("%w: no rooms", ErrBadRow)
	}
	if spec.Depth <= 0 {
		return nil, fmt.Errorf("%w: depth %d", ErrBadRow, spec.Depth)
	}
	xs := make([]int, n+1)
	for i, r := range spec.Rooms {
		if r.Width <= 0 {
			return nil, fmt.Errorf("%w: room %d width %d", ErrBadRow, i, r.Width)
		}
		xs[i+1] = xs[i] + r.Width
	}
	bounds := make(map[int]BoundarySpec, len(spec.Boundaries))
	for _, b := range spec.Boundaries {
		if b.At <= 0 || b.At >= n {
			return nil, fmt.Errorf("%w: boundary %d is not between two rooms", ErrBadRow, b.At)
		}
		if _, dup := bounds[b.At]; dup {
			return nil, fmt.Errorf("%w: boundary %d given twice", ErrBadRow, b.At)
		}
		bounds[b.At] = b
	}
	things, err := decodeThings(spec.Things)
	if err != nil {
		return nil, err
	}

	l := &Level{Name: spec.Name, Things: things}
	for _, x := range xs {
		l.Vertices = append(l.Vertices,
			Vertex{X: fixed.FromInt(x)},
			Vertex{X: fixed.FromInt(x), Y: fixed.FromInt(spec.Depth)})
	}
	for _, r := range spec.Rooms {
		light := r.Light
		if light == 0 {
			light = defaultLight
		}
		l.Sectors = append(l.Sectors, Sector{
			Floor:   fixed.FromInt(r.Floor),
			Ceiling: fixed.FromInt(r.Ceiling),
			Light:   light,
			Tag:     r.Tag,
		})
	}
	addSide := func(sector int) int {
		l.Sides = append(l.Sides, Side{Sector: sector})
		return len(l.Sides) - 1
	}

	for k := 0; k <= n; k++ {
		ln := Line{V1: 2 * k, V2: 2*k + 1, Sides: [2]int{-1, -1}}
		b := bounds[k]
		switch {
		case k == 0:
			ln.Flags = LineBlocking
			ln.Sides[0] = addSide(0)
		case k == n:
			ln.V1, ln.V2 = 2*k+1, 2*k
			ln.Flags = LineBlocking
			ln.Sides[0] = addSide(n - 1)
		case b.FacingBack:
			ln.V1, ln.V2 = 2*k+1, 2*k
			ln.Flags = LineTwoSided
			ln.Sides[0] = addSide(k - 1)
			ln.Sides[1] = addSide(k)
		default:
			ln.Flags = LineTwoSided
			ln.Sides[0] = addSide(k)
			ln.Sides[1] = addSide(k - 1)
		}
		ln.Special, ln.Tag = b.Special, b.Tag
		l.Lines = append(l.Lines, ln)
	}
	walls := len(l.Lines)
	for i := 0; i < n; i++ {
		l.Lines = append(l.Lines,
			Line{V1: 2 * (i + 1), V2: 2 * i, Flags: LineBlocking, Sides: [2]int{addSide(i), -1}},
			Line{V1: 2*i + 1, V2: 2*(i+1) + 1, Flags: LineBlocking, Sides: [2]int{addSide(i), -1}})
	}

	// facing is the side of boundary k that looks into room.
	facing := func(k, room int) int {
		if l.Sides[l.Lines[k].Sides[0]].Sector == room {
			return 0
		}
		return 1
	}
	for i := 0; i < n; i++ {
		first := len(l.Segs)
		l.Segs = append(l.Segs,
			Seg{V1: 2 * (i + 1), V2: 2 * i, Line: walls + 2*i},
			Seg{V1: 2 * (i + 1), V2: 2*(i+1) + 1, Line: i + 1, Side: facing(i+1, i)},
			Seg{V1: 2*i + 1, V2: 2*(i+1) + 1, Line: walls + 2*i + 1},
			Seg{V1: 2*i + 1, V2: 2 * i, Line: i, Side: facing(i, i)})
		l.SubSectors = append(l.SubSectors, SubSector{FirstSeg: first, NumSegs: 4})
	}

	if n > 1 {
		splitRow(l, xs, spec.Depth, 0, n)
	}
	l.Link(log)
	return l, nil
}

// splitRow appends the subtree for rooms [lo,hi) and returns its root. The
// right half is side 0 of each partition and is built first.
func splitRow(l *Level, xs []int, depth, lo, hi int) Child {
	if hi-lo == 1 {
		return LeafChild(lo)
	}
	mid := (lo + hi) / 2
	right := splitRow(l, xs, depth, mid, hi)
	left := splitRow(l, xs, depth, lo, mid)
	l.Nodes = append(l.Nodes, Node{
		X:        fixed.FromInt(xs[mid]),
		DY:       fixed.FromInt(depth),
		Children: [2]Child{right, left},
	})
	return NodeChild(len(l.Nodes) - 1)
}
