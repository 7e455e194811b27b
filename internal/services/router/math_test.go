package router

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

// TestMulDivFloorMatchesBigInt cross-checks the uint256 fast path against
// plain big.Int arithmetic, including operands past 256 bits.
func TestMulDivFloorMatchesBigInt(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 300) // forces the big.Int path
	tests := []struct {
		name    string
		a, b, c *big.Int
	}{
		{"small", big.NewInt(2_000_000), big.NewInt(100_000), big.NewInt(1_100_000)},
		{"wei scale", bigPow10(24), bigPow10(21), bigPow10(22)},
		{"prod overflows 256 bits", bigPow10(40), bigPow10(40), bigPow10(3)},
		{"operand overflows 256 bits", huge, big.NewInt(7), big.NewInt(13)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MulDivFloor(tt.a, tt.b, tt.c)
			if err != nil {
				t.Fatalf("MulDivFloor failed: %v", err)
			}
			want := new(big.Int).Mul(tt.a, tt.b)
			want.Div(want, tt.c)
			if got.Cmp(want) != 0 {
				t.Errorf("MulDivFloor = %s, want %s", got, want)
			}
		})
	}
}

// TestMulDivCeil checks the ceiling against exact and inexact quotients.
func TestMulDivCeil(t *testing.T) {
	tests := []struct {
		a, b, c, want int64
	}{
		{10, 10, 4, 25},  // exact
		{10, 10, 3, 34},  // 33.3 rounds up
		{1, 1, 1000, 1},  // tiny quotient still rounds up
		{0, 5, 7, 0},     // zero stays zero
	}
	for _, tt := range tests {
		got, err := MulDivCeil(big.NewInt(tt.a), big.NewInt(tt.b), big.NewInt(tt.c))
		if err != nil {
			t.Fatalf("MulDivCeil(%d, %d, %d) failed: %v", tt.a, tt.b, tt.c, err)
		}
		if got.Int64() != tt.want {
			t.Errorf("MulDivCeil(%d, %d, %d) = %s, want %d", tt.a, tt.b, tt.c, got, tt.want)
		}
	}
}

// TestDivisionByZero verifies every division helper surfaces the sentinel.
func TestDivisionByZero(t *testing.T) {
	if _, err := MulDivFloor(big.NewInt(1), big.NewInt(1), big.NewInt(0)); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("MulDivFloor err = %v, want ErrDivisionByZero", err)
	}
	if _, err := MulDivCeil(big.NewInt(1), big.NewInt(1), big.NewInt(0)); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("MulDivCeil err = %v, want ErrDivisionByZero", err)
	}
	if _, err := Div(decimal.NewFromInt(1), decimal.Zero); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Div err = %v, want ErrDivisionByZero", err)
	}
	if _, err := DivBig(big.NewInt(1), big.NewInt(0)); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("DivBig err = %v, want ErrDivisionByZero", err)
	}
}

// TestDivBigPrecision verifies wei-scale quotients keep enough digits to
// distinguish adjacent reserves.
func TestDivBigPrecision(t *testing.T) {
	a := new(big.Int).Add(bigPow10(24), big.NewInt(1))
	b := bigPow10(24)
	q, err := DivBig(a, b)
	if err != nil {
		t.Fatalf("DivBig failed: %v", err)
	}
	if q.Equal(decimal.NewFromInt(1)) {
		t.Errorf("quotient %s lost the 10^-24 difference", q)
	}
}

// TestToFixed covers the supported numeric input types.
func TestToFixed(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
		ok    bool
	}{
		{"decimal", decimal.NewFromInt(42), "42", true},
		{"big.Int", big.NewInt(42), "42", true},
		{"int", 42, "42", true},
		{"int64", int64(-7), "-7", true},
		{"uint64", uint64(18446744073709551615), "18446744073709551615", true},
		{"float64", 2.5, "2.5", true},
		{"string", "123456789012345678901234567890", "123456789012345678901234567890", true},
		{"bad string", "nope", "", false},
		{"unsupported", struct{}{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToFixed(tt.value)
			if tt.ok != (err == nil) {
				t.Fatalf("err = %v, ok = %v", err, tt.ok)
			}
			if tt.ok && got.String() != tt.want {
				t.Errorf("ToFixed = %s, want %s", got, tt.want)
			}
		})
	}
}

func bigPow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

// BenchmarkMulDivFloorU256 benchmarks the pooled uint256 fast path.
func BenchmarkMulDivFloorU256(b *testing.B) {
	x := bigPow10(24)
	y := bigPow10(21)
	z := bigPow10(22)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = MulDivFloor(x, y, z)
	}
}

// BenchmarkMulDivFloorBig benchmarks the big.Int fallback path.
func BenchmarkMulDivFloorBig(b *testing.B) {
	x := bigPow10(40)
	y := bigPow10(40)
	z := bigPow10(3)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = MulDivFloor(x, y, z)
	}
}
