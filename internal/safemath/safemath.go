package safemath

import (
	"errors"
	"math/bits"

	"github.com/holiman/uint256"
)

var (
	ErrOverflow       = errors.New("number overflow")
	ErrDivisionByZero = errors.New("division by zero")
)

func Add64(a, b uint64) (uint64, bool) {
	v, carry := bits.Add64(a, b, 0)
	return v, carry == 0
}

func Sub64(a, b uint64) (uint64, bool) {
	v, borrow := bits.Sub64(a, b, 0)
	return v, borrow == 0
}

func Mul64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// SaturatingSub64 returns a-b, or 0 when b > a.
func SaturatingSub64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// MulDiv64 computes floor(a*b/d) with a 256-bit intermediate product.
func MulDiv64(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivisionByZero
	}
	x, y, z := uint256.NewInt(a), uint256.NewInt(b), uint256.NewInt(d)
	q, overflow := new(uint256.Int).MulDivOverflow(x, y, z)
	if overflow || !q.IsUint64() {
		return 0, ErrOverflow
	}
	return q.Uint64(), nil
}
