package typedvalue

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal carries an arbitrary-precision decimal as an unscaled integer plus
// a scale, exactly as §4.2 requires: never as a binary float, and the
// canonical string form preserves the trailing zeros the scale demands.
type Decimal struct {
	Unscaled *big.Int
	Scale    int32
}

// NewDecimal constructs a Decimal, rejecting a negative scale per §4.2.
func NewDecimal(unscaled *big.Int, scale int32) (Decimal, error) {
	if scale < 0 {
		return Decimal{}, illegalArgument("decimal scale %d is negative", scale)
	}
	return Decimal{Unscaled: unscaled, Scale: scale}, nil
}

// DecimalFromString parses the wire representation (unscaled integer as a
// decimal string, scale as int) used by both serializers.
func DecimalFromString(unscaled string, scale int32) (Decimal, error) {
	n, ok := new(big.Int).SetString(unscaled, 10)
	if !ok {
		return Decimal{}, illegalArgument("invalid unscaled decimal digits %q", unscaled)
	}
	return NewDecimal(n, scale)
}

// DecimalFromShopspring adapts a shopspring/decimal.Decimal, which is the
// type application code on either side of the protocol is expected to work
// with, into the wire's unscaled+scale pair.
func DecimalFromShopspring(d decimal.Decimal) (Decimal, error) {
	exp := d.Exponent()
	if exp > 0 {
		// Normalize a positive exponent (e.g. 5E2) into scale zero by
		// folding the power of ten into the unscaled value, so the wire
		// scale is never negative.
		pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
		return NewDecimal(new(big.Int).Mul(d.Coefficient(), pow), 0)
	}
	return NewDecimal(new(big.Int).Set(d.Coefficient()), -exp)
}

// Decimal returns the shopspring representation for arithmetic and display.
func (d Decimal) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(d.Unscaled, -d.Scale)
}

// String renders the canonical decimal string demanded by scale, preserving
// trailing zeros (e.g. unscaled=1234567890, scale=5 -> "12345.67890").
func (d Decimal) String() string {
	neg := d.Unscaled.Sign() < 0
	digits := new(big.Int).Abs(d.Unscaled).String()

	if d.Scale == 0 {
		if neg {
			return "-" + digits
		}
		return digits
	}

	if int32(len(digits)) <= d.Scale {
		digits = strings.Repeat("0", int(d.Scale)-len(digits)+1) + digits
	}

	split := len(digits) - int(d.Scale)
	out := digits[:split] + "." + digits[split:]
	if neg {
		out = "-" + out
	}
	return out
}

// Equal compares two Decimals by numeric value and scale, matching the
// round-trip property in §8 (exact string AND numeric equality).
func (d Decimal) Equal(o Decimal) bool {
	return d.Scale == o.Scale && d.Unscaled.Cmp(o.Unscaled) == 0
}
