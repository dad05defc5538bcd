// Package fixed implements the 16.16 fixed-point scalar and the 32-bit binary
// angle used by every part of the simulation. All physics arithmetic goes
// through this package so that repeated runs produce identical results.
package fixed

import (
	"errors"
	"math"

	"golang.org/x/exp/constraints"
)

// Fixed is a 16.16 signed fixed-point scalar. 1.0 == FracUnit.
type Fixed int32

const (
	FracBits = 16
	FracUnit = Fixed(1 << FracBits)

	MaxFixed = Fixed(math.MaxInt32)
	MinFixed = Fixed(math.MinInt32)
)

// ErrDivisionByZero is the ArithmeticError raised by Div for an exact zero divisor.
// Overflow is not an error; it saturates.
var ErrDivisionByZero = errors.New("fixed: division by zero")

// FromInt converts a whole number of map units. Valid for |n| < 32768.
func FromInt[T constraints.Integer](n T) Fixed {
	return Fixed(int32(int64(n) << FracBits))
}

// FromFloat is for interop with non-fixed consumers only, never internal physics.
func FromFloat(f float64) Fixed {
	return Fixed(f * float64(FracUnit))
}

// Int truncates toward zero.
func (f Fixed) Int() int {
	return int(f / FracUnit)
}

// Float is for interop with non-fixed consumers only.
func (f Fixed) Float() float64 {
	return float64(f) / float64(FracUnit)
}

// Mul forms the 64-bit product and rescales by FracBits. Results outside the
// int32 range saturate.
func Mul(a, b Fixed) Fixed {
	return saturate((int64(a) * int64(b)) >> FracBits)
}

// Div divides a by b. A zero divisor fails with ErrDivisionByZero. When
// |a|>>14 >= |b| the quotient would not fit and Div saturates to the extreme
// matching the sign of the result.
func Div(a, b Fixed) (Fixed, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	if Abs64(a)>>14 >= Abs64(b) {
		if (a ^ b) < 0 {
			return MinFixed, nil
		}
		return MaxFixed, nil
	}
	return Fixed((int64(a) << FracBits) / int64(b)), nil
}

// Abs saturates |MinFixed| to MaxFixed.
func Abs(f Fixed) Fixed {
	return saturate(Abs64(f))
}

// Abs64 widens before negating so MinFixed is safe.
func Abs64[T constraints.Signed](v T) int64 {
	w := int64(v)
	if w < 0 {
		return -w
	}
	return w
}

func Min(a, b Fixed) Fixed {
	if a < b {
		return a
	}
	return b
}

func Max(a, b Fixed) Fixed {
	if a > b {
		return a
	}
	return b
}

// Clamp limits v to [lo, hi]. lo wins if the range is empty.
func Clamp(v, lo, hi Fixed) Fixed {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

func saturate(v int64) Fixed {
	if v > math.MaxInt32 {
		return MaxFixed
	}
	if v < math.MinInt32 {
		return MinFixed
	}
	return Fixed(v)
}
