// Package trig holds the fixed-point sine, cosine and tangent lookup tables.
//
// Tables are built once by New and are immutable afterwards. There is no
// package-level table: the simulation context owns one *Tables and passes it
// to whatever needs trigonometry.
package trig

import (
	"math"

	"github.com/fixedtick/levelsim/internal/fixed"
)

const (
	// FineAngles is the number of samples per full turn.
	FineAngles = 8192
	FineMask   = FineAngles - 1
	// AngleToFineShift reduces a 32-bit angle to a fine index.
	AngleToFineShift = 19

	// The sine table spans 5/4 of a turn so cosine reads it a quarter turn on.
	sineLen     = FineAngles * 5 / 4
	quarterTurn = FineAngles / 4

	// Tangent has period π, so half as many entries at the same resolution.
	tangentLen  = FineAngles / 2
	tangentMask = tangentLen - 1
)

type Tables struct {
	sine    [sineLen]fixed.Fixed
	tangent [tangentLen]fixed.Fixed
}

// New samples the tables. This is the only place floating-point trigonometry
// runs; lookups are integer only.
func New() *Tables {
	t := &Tables{}
	for i := 0; i < FineAngles; i++ {
		rad := 2 * math.Pi * float64(i) / FineAngles
		t.sine[i] = fixed.Fixed(math.Round(math.Sin(rad) * float64(fixed.FracUnit)))
	}
	copy(t.sine[FineAngles:], t.sine[:sineLen-FineAngles])
	for i := range t.tangent {
		rad := math.Pi * float64(i) / tangentLen
		v := math.Tan(rad) * float64(fixed.FracUnit)
		switch {
		case i == tangentLen/2 || v >= math.MaxInt32:
			t.tangent[i] = fixed.MaxFixed
		case v <= math.MinInt32:
			t.tangent[i] = fixed.MinFixed
		default:
			t.tangent[i] = fixed.Fixed(math.Round(v))
		}
	}
	return t
}

// Fine returns the fine-angle index of a.
func Fine(a fixed.Angle) int {
	return int(uint32(a)>>AngleToFineShift) & FineMask
}

func (t *Tables) Sine(a fixed.Angle) fixed.Fixed {
	return t.sine[Fine(a)]
}

func (t *Tables) Cosine(a fixed.Angle) fixed.Fixed {
	return t.sine[Fine(a)+quarterTurn]
}

// Tangent saturates at ±90°.
func (t *Tables) Tangent(a fixed.Angle) fixed.Fixed {
	return t.tangent[int(uint32(a)>>AngleToFineShift)&tangentMask]
}
