package level

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Encode writes l in the YAML level format read by Parse. Coordinates and
// heights are truncated to whole units and angles rounded to degrees.
func Encode(l *Level) ([]byte, error) {
	f := levelFile{
		Name:       l.Name,
		Vertices:   make([]fileVertex, len(l.Vertices)),
		Lines:      make([]fileLine, len(l.Lines)),
		Sides:      make([]fileSide, len(l.Sides)),
		Sectors:    make([]fileSector, len(l.Sectors)),
		Segs:       make([]fileSeg, len(l.Segs)),
		SubSectors: make([]fileSubSector, len(l.SubSectors)),
		Nodes:      make([]fileNode, len(l.Nodes)),
		Things:     make([]ThingSpec, len(l.Things)),
	}
	for i, v := range l.Vertices {
		f.Vertices[i] = fileVertex{X: v.X.Int(), Y: v.Y.Int()}
	}
	for i, ln := range l.Lines {
		sides := []int{ln.Sides[0]}
		if ln.Sides[1] >= 0 {
			sides = append(sides, ln.Sides[1])
		}
		f.Lines[i] = fileLine{V1: ln.V1, V2: ln.V2, Flags: uint16(ln.Flags), Special: ln.Special, Tag: ln.Tag, Sides: sides}
	}
	for i, s := range l.Sides {
		f.Sides[i] = fileSide{Sector: s.Sector}
	}
	for i, s := range l.Sectors {
		f.Sectors[i] = fileSector{Floor: s.Floor.Int(), Ceiling: s.Ceiling.Int(), Light: s.Light, Special: s.Special, Tag: s.Tag}
	}
	for i, s := range l.Segs {
		f.Segs[i] = fileSeg{V1: s.V1, V2: s.V2, Line: s.Line, Side: s.Side}
	}
	for i, ss := range l.SubSectors {
		f.SubSectors[i] = fileSubSector{FirstSeg: ss.FirstSeg, NumSegs: ss.NumSegs}
	}
	for i, n := range l.Nodes {
		f.Nodes[i] = fileNode{
			X: n.X.Int(), Y: n.Y.Int(), DX: n.DX.Int(), DY: n.DY.Int(),
			Children: [2]int{n.Children[0].Raw(), n.Children[1].Raw()},
		}
	}
	for i, th := range l.Things {
		f.Things[i] = ThingSpec{
			X:      th.X.Int(),
			Y:      th.Y.Int(),
			Angle:  int(math.Round(th.Angle.Degrees())) % 360,
			Kind:   string(th.Kind),
			Script: th.Script,
		}
	}
	out, err := yaml.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("encode level: %w", err)
	}
	return out, nil
}

// Save encodes l to path, preceded by an optional comment header.
func Save(l *Level, path, comment string) error {
	out, err := Encode(l)
	if err != nil {
		return err
	}
	if comment != "" {
		out = append([]byte(comment+"\n\n"), out...)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write level %s: %w", path, err)
	}
	return nil
}
