package router

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// DivPrecision is the number of decimal digits kept by high-precision
// division. Reserves reach 10^24+ magnitude, so anything below ~22
// significant digits drifts.
const DivPrecision = 24

func init() {
	decimal.DivisionPrecision = DivPrecision
}

// Object pool for uint256 temporaries on the pricing hot path.

var uint256Pool = sync.Pool{
	New: func() interface{} {
		return new(uint256.Int)
	},
}

// GetU256 gets a uint256.Int from the pool
func GetU256() *uint256.Int {
	return uint256Pool.Get().(*uint256.Int)
}

// PutU256 returns a uint256.Int to the pool
func PutU256(v *uint256.Int) {
	v.Clear()
	uint256Pool.Put(v)
}

// Div returns a/b at fixed precision. A zero divisor is an error the
// caller must handle, never a silent zero.
func Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return a.Div(b), nil
}

// DivBig divides two integer amounts into a fixed-precision quotient.
func DivBig(a, b *big.Int) (decimal.Decimal, error) {
	if a == nil || b == nil || b.Sign() == 0 {
		return decimal.Zero, ErrDivisionByZero
	}
	return decimal.NewFromBigInt(a, 0).Div(decimal.NewFromBigInt(b, 0)), nil
}

// ToFixed normalizes any numeric input to the canonical fixed-precision
// representation used throughout the engine.
func ToFixed(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case *big.Int:
		if v == nil {
			return decimal.Zero, fmt.Errorf("nil big.Int")
		}
		return decimal.NewFromBigInt(v, 0), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("not a number: %q", v)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported numeric type %T", value)
	}
}

// MulDivFloor computes floor(a*b/c) exactly. Operands that fit 256 bits
// take the uint256 path; anything larger falls back to big.Int.
func MulDivFloor(a, b, c *big.Int) (*big.Int, error) {
	if c == nil || c.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	if a == nil || b == nil {
		return nil, fmt.Errorf("nil operand")
	}

	if a.Sign() >= 0 && b.Sign() >= 0 {
		ua := GetU256()
		ub := GetU256()
		uc := GetU256()
		defer func() {
			PutU256(ua)
			PutU256(ub)
			PutU256(uc)
		}()

		if !ua.SetFromBig(a) && !ub.SetFromBig(b) && !uc.SetFromBig(c) {
			prod, overflow := new(uint256.Int).MulOverflow(ua, ub)
			if !overflow {
				prod.Div(prod, uc)
				return prod.ToBig(), nil
			}
		}
	}

	prod := new(big.Int).Mul(a, b)
	return prod.Div(prod, c), nil
}

// MulDivCeil computes ceil(a*b/c) exactly.
func MulDivCeil(a, b, c *big.Int) (*big.Int, error) {
	if c == nil || c.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	if a == nil || b == nil {
		return nil, fmt.Errorf("nil operand")
	}
	prod := new(big.Int).Mul(a, b)
	quo, rem := new(big.Int).QuoRem(prod, c, new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo, nil
}
