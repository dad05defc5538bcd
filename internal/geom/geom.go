// Package geom provides the integer 2D predicates shared by the spatial
// index, movement and triggers. Coordinates are fixed.Fixed; internally they
// are reduced to 1/4096 unit in int64 so that cross products of full-map
// deltas cannot overflow, and squared terms go through 128-bit intermediates.
package geom

import (
	"math"
	"math/bits"

	"github.com/fixedtick/levelsim/internal/fixed"
)

const precShift = 4

func reduce(v fixed.Fixed) int64 { return int64(v) >> precShift }

func expand(v uint64) fixed.Fixed {
	v <<= precShift
	if v > math.MaxInt32 {
		return fixed.MaxFixed
	}
	return fixed.Fixed(v)
}

// Side returns the cross product of the direction (dx,dy) with the vector from
// (ox,oy) to (px,py). Only the sign is meaningful.
func Side(px, py, ox, oy, dx, dy fixed.Fixed) int64 {
	vx, vy := reduce(px)-reduce(ox), reduce(py)-reduce(oy)
	return reduce(dx)*vy - reduce(dy)*vx
}

// DistanceToSegment is the distance from p to the closest point of segment ab,
// not of the infinite line through it.
func DistanceToSegment(px, py, ax, ay, bx, by fixed.Fixed) fixed.Fixed {
	lx, ly := reduce(bx)-reduce(ax), reduce(by)-reduce(ay)
	vx, vy := reduce(px)-reduce(ax), reduce(py)-reduce(ay)
	len2 := lx*lx + ly*ly
	dot := vx*lx + vy*ly

	var d2 uint64
	switch {
	case len2 == 0 || dot <= 0:
		d2 = uint64(vx*vx + vy*vy)
	case dot >= len2:
		wx, wy := reduce(px)-reduce(bx), reduce(py)-reduce(by)
		d2 = uint64(wx*wx + wy*wy)
	default:
		c := uint64(fixed.Abs64(vx*ly - vy*lx))
		hi, lo := bits.Mul64(c, c)
		d2, _ = bits.Div64(hi, lo, uint64(len2))
	}
	return expand(isqrt(d2))
}

// Touches reports whether a circle of radius r at p intersects segment ab.
// Walls have no thickness.
func Touches(px, py, r, ax, ay, bx, by fixed.Fixed) bool {
	return DistanceToSegment(px, py, ax, ay, bx, by) < r
}

// Intersect tests segment p1p2 against q1q2 with the parametric form, both
// parameters in [0,1]. t is the position of the hit along p1p2 as a fraction
// of FracUnit. Parallel segments never intersect.
func Intersect(p1x, p1y, p2x, p2y, q1x, q1y, q2x, q2y fixed.Fixed) (t fixed.Fixed, ok bool) {
	rx, ry := reduce(p2x)-reduce(p1x), reduce(p2y)-reduce(p1y)
	sx, sy := reduce(q2x)-reduce(q1x), reduce(q2y)-reduce(q1y)
	d := rx*sy - ry*sx
	if d == 0 {
		return 0, false
	}
	qx, qy := reduce(q1x)-reduce(p1x), reduce(q1y)-reduce(p1y)
	tn := qx*sy - qy*sx
	un := qx*ry - qy*rx
	if d < 0 {
		d, tn, un = -d, -tn, -un
	}
	if tn < 0 || tn > d || un < 0 || un > d {
		return 0, false
	}
	hi, lo := uint64(tn)>>(64-fixed.FracBits), uint64(tn)<<fixed.FracBits
	q, _ := bits.Div64(hi, lo, uint64(d))
	return fixed.Fixed(q), true
}

// isqrt is floor(sqrt(n)).
func isqrt(n uint64) uint64 {
	var res uint64
	bit := uint64(1) << 62
	for bit > n {
		bit >>= 2
	}
	for bit != 0 {
		if n >= res+bit {
			n -= res + bit
			res = res>>1 + bit
		} else {
			res >>= 1
		}
		bit >>= 2
	}
	return res
}
