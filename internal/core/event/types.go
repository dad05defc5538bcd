package event

import (
	"github.com/fixedtick/levelsim/internal/core/ecs"
	"github.com/fixedtick/levelsim/internal/fixed"
)

// Surface names the moving plane of a sector.
type Surface int

const (
	Floor Surface = iota
	Ceiling
)

func (s Surface) String() string {
	if s == Ceiling {
		return "ceiling"
	}
	return "floor"
}

// HeightChanged carries the new absolute height of a sector surface.
type HeightChanged struct {
	Tick    uint64
	Sector  int
	Surface Surface
	Height  fixed.Fixed
}

// LineActivated is emitted when a trigger line fired at least one machine.
type LineActivated struct {
	Tick   uint64
	Line   int
	Entity ecs.EntityID
	Walk   bool
}

// EntityRemoved is emitted by the cleanup phase.
type EntityRemoved struct {
	Tick   uint64
	Entity ecs.EntityID
}
