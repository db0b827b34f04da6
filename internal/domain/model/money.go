package model

import (
	"github.com/shopspring/decimal"
)

// Money is a fixed-point amount in the gateway currency (IRR for all the
// Shaparak gateways). It wraps a decimal so callers can carry fractional
// values; gateways that only accept plain integers truncate via Int64.
type Money struct {
	value decimal.Decimal
}

func NewMoney(v int64) Money {
	return Money{value: decimal.NewFromInt(v)}
}

func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{value: d}
}

// ParseMoney parses a decimal string such as "50000" or "50000.75".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: d}, nil
}

// Int64 truncates toward zero. This is intentionally lossy: every gateway on
// the wire takes a whole number of Rials, and the truncation here must match
// the one used when the request envelope was built so that verify-phase amount
// comparisons never fail on fractional leftovers.
func (m Money) Int64() int64 {
	return m.value.IntPart()
}

func (m Money) Decimal() decimal.Decimal { return m.value }

func (m Money) IsZero() bool { return m.value.IsZero() }

func (m Money) IsPositive() bool { return m.value.IsPositive() }

func (m Money) Equal(other Money) bool { return m.value.Equal(other.value) }

// EqualTruncated reports whether both amounts truncate to the same integer
// Rial value. Gateway-asserted amounts are compared with this, matching the
// request-phase truncation.
func (m Money) EqualTruncated(other Money) bool {
	return m.Int64() == other.Int64()
}

func (m Money) String() string { return m.value.String() }
