package level

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fixedtick/levelsim/internal/fixed"
)

// The YAML level description stands in for the binary level loader. Units are
// whole map units; raw BSP children carry LeafBit exactly like the binary
// format does and are decoded here, once.

type fileVertex struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type fileLine struct {
	V1      int    `yaml:"v1"`
	V2      int    `yaml:"v2"`
	Flags   uint16 `yaml:"flags"`
	Special int    `yaml:"special,omitempty"`
	Tag     int    `yaml:"tag,omitempty"`
	Sides   []int  `yaml:"sides,flow"`
}

type fileSide struct {
	Sector int `yaml:"sector"`
}

type fileSector struct {
	Floor   int `yaml:"floor"`
	Ceiling int `yaml:"ceiling"`
	Light   int `yaml:"light"`
	Special int `yaml:"special,omitempty"`
	Tag     int `yaml:"tag,omitempty"`
}

type fileSeg struct {
	V1   int `yaml:"v1"`
	V2   int `yaml:"v2"`
	Line int `yaml:"line"`
	Side int `yaml:"side"`
}

type fileSubSector struct {
	FirstSeg int `yaml:"first_seg"`
	NumSegs  int `yaml:"num_segs"`
}

type fileNode struct {
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	DX       int    `yaml:"dx"`
	DY       int    `yaml:"dy"`
	Children [2]int `yaml:"children,flow"`
}

// ThingSpec is a spawn point as written in level files: whole units and
// degrees.
type ThingSpec struct {
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Angle  int    `yaml:"angle"` // degrees
	Kind   string `yaml:"kind"`
	Script string `yaml:"script,omitempty"`
}

type levelFile struct {
	Name       string          `yaml:"name"`
	Vertices   []fileVertex    `yaml:"vertices"`
	Lines      []fileLine      `yaml:"lines"`
	Sides      []fileSide      `yaml:"sides"`
	Sectors    []fileSector    `yaml:"sectors"`
	Segs       []fileSeg       `yaml:"segs"`
	SubSectors []fileSubSector `yaml:"subsectors"`
	Nodes      []fileNode      `yaml:"nodes"`
	Things     []ThingSpec     `yaml:"things"`
}

// Load reads a YAML level description and links it.
func Load(path string, log *zap.Logger) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	l, err := Parse(raw, log)
	if err != nil {
		return nil, fmt.Errorf("parse level %s: %w", path, err)
	}
	return l, nil
}

// Parse decodes a YAML level description and links it.
func Parse(raw []byte, log *zap.Logger) (*Level, error) {
	var f levelFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}

	l := &Level{
		Name:       f.Name,
		Vertices:   make([]Vertex, len(f.Vertices)),
		Lines:      make([]Line, len(f.Lines)),
		Sides:      make([]Side, len(f.Sides)),
		Sectors:    make([]Sector, len(f.Sectors)),
		Segs:       make([]Seg, len(f.Segs)),
		SubSectors: make([]SubSector, len(f.SubSectors)),
		Nodes:      make([]Node, len(f.Nodes)),
	}
	for i, v := range f.Vertices {
		l.Vertices[i] = Vertex{X: fixed.FromInt(v.X), Y: fixed.FromInt(v.Y)}
	}
	for i, ln := range f.Lines {
		sides := [2]int{-1, -1}
		if len(ln.Sides) > 2 {
			return nil, fmt.Errorf("line %d: %d sides", i, len(ln.Sides))
		}
		copy(sides[:], ln.Sides)
		l.Lines[i] = Line{
			V1:      ln.V1,
			V2:      ln.V2,
			Flags:   LineFlags(ln.Flags),
			Special: ln.Special,
			Tag:     ln.Tag,
			Sides:   sides,
		}
	}
	for i, s := range f.Sides {
		l.Sides[i] = Side{Sector: s.Sector}
	}
	for i, s := range f.Sectors {
		l.Sectors[i] = Sector{
			Floor:   fixed.FromInt(s.Floor),
			Ceiling: fixed.FromInt(s.Ceiling),
			Light:   s.Light,
			Special: s.Special,
			Tag:     s.Tag,
		}
	}
	for i, s := range f.Segs {
		l.Segs[i] = Seg{V1: s.V1, V2: s.V2, Line: s.Line, Side: s.Side}
	}
	for i, ss := range f.SubSectors {
		l.SubSectors[i] = SubSector{FirstSeg: ss.FirstSeg, NumSegs: ss.NumSegs}
	}
	for i, n := range f.Nodes {
		l.Nodes[i] = Node{
			X:        fixed.FromInt(n.X),
			Y:        fixed.FromInt(n.Y),
			DX:       fixed.FromInt(n.DX),
			DY:       fixed.FromInt(n.DY),
			Children: [2]Child{DecodeChild(n.Children[0]), DecodeChild(n.Children[1])},
		}
	}
	things, err := decodeThings(f.Things)
	if err != nil {
		return nil, err
	}
	l.Things = things

	l.Link(log)
	return l, nil
}

func decodeThings(specs []ThingSpec) ([]Thing, error) {
	things := make([]Thing, 0, len(specs))
	for i, th := range specs {
		kind := ThingKind(th.Kind)
		switch kind {
		case ThingPlayer, ThingMonster, ThingDecoration:
		default:
			return nil, fmt.Errorf("thing %d: unknown kind %q", i, th.Kind)
		}
		things = append(things, Thing{
			X:      fixed.FromInt(th.X),
			Y:      fixed.FromInt(th.Y),
			Angle:  fixed.DegreesToAngle(th.Angle),
			Kind:   kind,
			Script: th.Script,
		})
	}
	return things, nil
}
