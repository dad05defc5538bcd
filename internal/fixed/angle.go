package fixed

import "math"

// Angle is a binary angle: the full turn is the 2^32 modulus and arithmetic
// wraps silently. Never sign-extend an Angle; use AngleDelta for signed
// differences.
type Angle uint32

const (
	Ang45  Angle = 0x20000000
	Ang90  Angle = 0x40000000
	Ang180 Angle = 0x80000000
	Ang270 Angle = 0xc0000000
)

// DegreesToAngle maps whole degrees onto the circle; any integer is accepted.
func DegreesToAngle(deg int) Angle {
	d := int64(deg) % 360
	if d < 0 {
		d += 360
	}
	return Angle((d << 32) / 360)
}

// DegreesToAngleF is for interop only.
func DegreesToAngleF(deg float64) Angle {
	turns := deg / 360
	turns -= math.Floor(turns)
	return Angle(uint64(turns * (1 << 32)))
}

// RadiansToAngle is for interop only.
func RadiansToAngle(rad float64) Angle {
	return DegreesToAngleF(rad * 180 / math.Pi)
}

func (a Angle) Degrees() float64 {
	return float64(a) * 360 / (1 << 32)
}

func (a Angle) Radians() float64 {
	return float64(a) * 2 * math.Pi / (1 << 32)
}

func (a Angle) Add(b Angle) Angle { return a + b }
func (a Angle) Sub(b Angle) Angle { return a - b }

// AngleDelta returns a−b as a signed quantity. A positive result means a is
// reached from b by the shorter counter-clockwise rotation.
func AngleDelta(a, b Angle) int32 {
	return int32(a - b)
}

// Turn applies a signed rotation, wrapping.
func (a Angle) Turn(delta int32) Angle {
	return a + Angle(uint32(delta))
}
