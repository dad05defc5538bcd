package trig

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fixedtick/levelsim/internal/fixed"
)

func TestCardinalValues(t *testing.T) {
	tab := New()

	assert.Equal(t, fixed.Fixed(0), tab.Sine(0))
	assert.Equal(t, fixed.FracUnit, tab.Sine(fixed.Ang90))
	assert.Equal(t, fixed.Fixed(0), tab.Sine(fixed.Ang180))
	assert.Equal(t, -fixed.FracUnit, tab.Sine(fixed.Ang270))

	assert.Equal(t, fixed.FracUnit, tab.Cosine(0))
	assert.Equal(t, fixed.Fixed(0), tab.Cosine(fixed.Ang90))
	assert.Equal(t, -fixed.FracUnit, tab.Cosine(fixed.Ang180))
}

func TestCosineIsShiftedSine(t *testing.T) {
	tab := New()
	for _, deg := range []int{0, 13, 45, 90, 137, 200, 300, 359} {
		a := fixed.DegreesToAngle(deg)
		assert.Equal(t, tab.Sine(a.Add(fixed.Ang90)), tab.Cosine(a), "deg=%d", deg)
	}
}

func TestSineCloseToFloat(t *testing.T) {
	tab := New()
	for deg := 0; deg < 360; deg += 7 {
		a := fixed.DegreesToAngle(deg)
		want := fixed.FromFloat(math.Sin(float64(deg) * math.Pi / 180))
		assert.InDelta(t, float64(want), float64(tab.Sine(a)), 60, "deg=%d", deg)
	}
}

func TestTangent(t *testing.T) {
	tab := New()
	assert.Equal(t, fixed.Fixed(0), tab.Tangent(0))
	assert.InDelta(t, float64(fixed.FracUnit), float64(tab.Tangent(fixed.Ang45)), 1)
	assert.Equal(t, fixed.MaxFixed, tab.Tangent(fixed.Ang90))
	// Period π.
	assert.Equal(t, tab.Tangent(fixed.Ang45), tab.Tangent(fixed.Ang45+fixed.Ang180))
}

func TestTablesAreIndependent(t *testing.T) {
	a, b := New(), New()
	assert.Equal(t, a.Sine(fixed.Ang45), b.Sine(fixed.Ang45))
	assert.NotSame(t, a, b)
}
