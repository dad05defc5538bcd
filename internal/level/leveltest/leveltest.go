// Package leveltest builds small, fully linked room rows for tests and knows
// where their lines are.
package leveltest

import (
	"go.uber.org/zap"

	"github.com/fixedtick/levelsim/internal/fixed"
	"github.com/fixedtick/levelsim/internal/level"
)

type Room struct {
	Width   int
	Floor   int
	Ceiling int
	Tag     int
}

// DefaultDepth is the y extent of every room.
const DefaultDepth = 256

type Fixture struct {
	Level *level.Level
	Xs    []int // boundary x positions, len(rooms)+1
	Depth int
}

// Row builds rooms left to right starting at x=0. Boundary k separates room
// k-1 (back side) from room k (front side); boundaries 0 and n are one-sided.
func Row(log *zap.Logger, rooms ...Room) *Fixture {
	spec := level.RowSpec{Name: "fixture", Depth: DefaultDepth}
	f := &Fixture{Xs: make([]int, len(rooms)+1), Depth: DefaultDepth}
	for i, r := range rooms {
		spec.Rooms = append(spec.Rooms, level.RoomSpec{Width: r.Width, Floor: r.Floor, Ceiling: r.Ceiling, Tag: r.Tag})
		f.Xs[i+1] = f.Xs[i] + r.Width
	}
	l, err := level.BuildRow(spec, log)
	if err != nil {
		panic(err)
	}
	f.Level = l
	return f
}

// Boundary is the line at boundary k.
func (f *Fixture) Boundary(k int) int { return level.BoundaryLine(k) }

func (f *Fixture) Bottom(room int) int { return len(f.Xs) + 2*room }
func (f *Fixture) Top(room int) int { return len(f.Xs) + 2*room + 1 }

// Center of room i.
func (f *Fixture) Center(room int) (x, y fixed.Fixed) {
	return fixed.FromInt((f.Xs[room] + f.Xs[room+1]) / 2), fixed.FromInt(f.Depth / 2)
}

// Units is shorthand for fixed.FromInt.
func Units(n int) fixed.Fixed { return fixed.FromInt(n) }
