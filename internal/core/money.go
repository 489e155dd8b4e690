// Package core defines the domain types shared by every layer: money,
// dates, transactions, budgets and goals, plus parsing and display
// helpers for monetary amounts.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-supplied decimal string to cents with
// half-up rounding on the third decimal place. Both dot and comma
// decimal separators are accepted. The result is always positive; the
// caller applies the sign convention for the transaction kind.
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("12,345") -> 1235 (rounds up)
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(decimal.NewFromInt(math.MaxInt64 / 100)) {
		return 0, ErrInvalidAmount
	}
	v := cents.IntPart()
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// MarshalJSON renders Money as its cent count, so wire payloads carry
// exact integers instead of floats.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Cents, 10)), nil
}

// UnmarshalJSON accepts a bare integer cent count.
func (m *Money) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Cents = v
	return nil
}

// Float returns the decimal value as float64 for display and ratio
// computations. Cents remain the unit for storage and arithmetic.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// FromFloat converts a float amount to cents with half-up rounding.
// Non-finite input maps to zero cents.
func FromFloat(v float64) Money {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Money{}
	}
	return Money{Cents: int64(math.Round(v * 100))}
}
