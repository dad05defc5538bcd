// Package mobj defines the simulated actor moved by the movement code and
// driven by thinkers.
package mobj

import (
	"github.com/fixedtick/levelsim/internal/core/ecs"
	"github.com/fixedtick/levelsim/internal/fixed"
)

type Flags uint32

const (
	Solid Flags = 1 << iota
	Shootable
	NoGravity
	Float
	Pickup
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

type Type int

const (
	Player Type = iota
	Monster
	Decoration
	Projectile
)

var typeNames = [...]string{"player", "monster", "decoration", "projectile"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// Keys is the set of key cards an actor carries.
type Keys uint8

const (
	BlueKey Keys = 1 << iota
	YellowKey
	RedKey
)

func (k Keys) Has(key Keys) bool { return k&key == key }

// NoSector marks an actor whose position could not be resolved.
const NoSector = -1

// Mobj is one simulated actor. FloorZ, CeilingZ and Sector are a cache of the
// containing sector, refreshed by the movement code.
type Mobj struct {
	ID   ecs.EntityID
	Type Type

	X, Y, Z          fixed.Fixed
	MomX, MomY, MomZ fixed.Fixed
	Angle            fixed.Angle

	Radius fixed.Fixed
	Height fixed.Fixed

	FloorZ   fixed.Fixed
	CeilingZ fixed.Fixed
	Sector   int

	Flags  Flags
	Health int
	Keys   Keys
}

// New returns an actor of the given size with no resolved sector.
func New(t Type, x, y fixed.Fixed, radius, height fixed.Fixed) *Mobj {
	mo := &Mobj{
		Type:   t,
		X:      x,
		Y:      y,
		Radius: radius,
		Height: height,
		Sector: NoSector,
		Health: 100,
	}
	switch t {
	case Player, Monster:
		mo.Flags = Solid | Shootable
	case Decoration:
		mo.Flags = Solid
	case Projectile:
		mo.Flags = NoGravity
	}
	return mo
}

// OnFloor reports whether the actor rests on its cached floor.
func (mo *Mobj) OnFloor() bool { return mo.Z <= mo.FloorZ }

// Still reports zero momentum on all axes.
func (mo *Mobj) Still() bool { return mo.MomX == 0 && mo.MomY == 0 && mo.MomZ == 0 }

// Stop zeroes all momentum.
func (mo *Mobj) Stop() { mo.MomX, mo.MomY, mo.MomZ = 0, 0, 0 }
