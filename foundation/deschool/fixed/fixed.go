// Package fixed implements 18 decimal fixed point arithmetic over 256 bit
// unsigned integers. A value v represents the real number v / 1e18.
package fixed

import (
	"errors"

	"github.com/holiman/uint256"
)

// Decimals is the number of decimals carried by a fixed point value.
const Decimals = 18

var (
	// Unit is the fixed point representation of 1.
	Unit = uint256.NewInt(1_000_000_000_000_000_000)

	// Log2E is log2(e) scaled by Unit.
	Log2E = uint256.NewInt(1_442_695_040_888_963_407)

	// Ln2 is ln(2) scaled by Unit.
	Ln2 = uint256.NewInt(693_147_180_559_945_309)

	twoUnit  = uint256.NewInt(2_000_000_000_000_000_000)
	halfUnit = uint256.NewInt(500_000_000_000_000_000)
)

// Set of errors returned by the package.
var (
	ErrOverflow  = errors.New("fixed point overflow")
	ErrDivByZero = errors.New("fixed point division by zero")
	ErrLogDomain = errors.New("logarithm of a value below one")
)

// =============================================================================

// New returns n whole units as a fixed point value.
func New(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), Unit)
}

// MulDiv returns floor(x * y / d) computed with a 512 bit intermediate.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivByZero
	}

	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}

	return z, nil
}

// MulDivUp returns ceil(x * y / d) computed with a 512 bit intermediate.
func MulDivUp(x, y, d *uint256.Int) (*uint256.Int, error) {
	z, err := MulDiv(x, y, d)
	if err != nil {
		return nil, err
	}

	if new(uint256.Int).MulMod(x, y, d).IsZero() {
		return z, nil
	}

	if _, overflow := z.AddOverflow(z, uint256.NewInt(1)); overflow {
		return nil, ErrOverflow
	}

	return z, nil
}

// Mul returns floor(x * y / Unit).
func Mul(x, y *uint256.Int) (*uint256.Int, error) {
	return MulDiv(x, y, Unit)
}

// Div returns floor(x * Unit / y).
func Div(x, y *uint256.Int) (*uint256.Int, error) {
	return MulDiv(x, Unit, y)
}

// DivUp returns ceil(x * Unit / y).
func DivUp(x, y *uint256.Int) (*uint256.Int, error) {
	return MulDivUp(x, Unit, y)
}

// Min returns a copy of the smaller of the two values.
func Min(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return x.Clone()
	}
	return y.Clone()
}

// =============================================================================

// Log2 returns the binary logarithm of x for x >= 1. The integer part comes
// from the position of the most significant bit and every fractional bit is
// produced by squaring the normalized remainder.
func Log2(x *uint256.Int) (*uint256.Int, error) {
	if x.Lt(Unit) {
		return nil, ErrLogDomain
	}

	n := new(uint256.Int).Div(x, Unit).BitLen() - 1
	result := new(uint256.Int).Mul(uint256.NewInt(uint64(n)), Unit)

	// y is x / 2^n and sits in [1, 2).
	y := new(uint256.Int).Rsh(x, uint(n))
	if y.Eq(Unit) {
		return result, nil
	}

	delta := halfUnit.Clone()
	for !delta.IsZero() {
		y.Mul(y, y)
		y.Div(y, Unit)

		if !y.Lt(twoUnit) {
			result.Add(result, delta)
			y.Rsh(y, 1)
		}

		delta.Rsh(delta, 1)
	}

	return result, nil
}

// Ln returns the natural logarithm of x for x >= 1.
func Ln(x *uint256.Int) (*uint256.Int, error) {
	l2, err := Log2(x)
	if err != nil {
		return nil, err
	}

	return MulDiv(l2, Unit, Log2E)
}

// Exp returns e^x. The argument is reduced by multiples of ln(2) so the
// Taylor series only runs over [0, ln 2) and the result is shifted back.
func Exp(x *uint256.Int) (*uint256.Int, error) {
	k := new(uint256.Int).Div(x, Ln2)
	if k.GtUint64(255) {
		return nil, ErrOverflow
	}

	r := new(uint256.Int).Sub(x, new(uint256.Int).Mul(k, Ln2))

	sum := Unit.Clone()
	term := Unit.Clone()
	for i := uint64(1); ; i++ {
		term.Mul(term, r)
		term.Div(term, new(uint256.Int).Mul(uint256.NewInt(i), Unit))
		if term.IsZero() {
			break
		}
		sum.Add(sum, term)
	}

	shift := uint(k.Uint64())
	if sum.BitLen()+int(shift) > 256 {
		return nil, ErrOverflow
	}

	return sum.Lsh(sum, shift), nil
}

// ExpNegUp returns e^-x rounded up. Arguments large enough that the result
// is below the smallest representable value return that smallest value.
func ExpNegUp(x *uint256.Int) (*uint256.Int, error) {
	e, err := Exp(x)
	if err != nil {
		if errors.Is(err, ErrOverflow) {
			return uint256.NewInt(1), nil
		}
		return nil, err
	}

	return MulDivUp(Unit, Unit, e)
}
