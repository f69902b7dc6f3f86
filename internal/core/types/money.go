// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept on every materialised amount.
const MoneyScale int32 = 2

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

var hundred = decimal.NewFromInt(100)

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value at money scale.
func Zero() Money {
	return decimal.Zero.Round(MoneyScale)
}

// Round rounds half-up (midpoint away from zero) to the given number of places.
func Round(amount Money, places int32) Money {
	return amount.Round(places)
}

// RoundMoney rounds to MoneyScale.
func RoundMoney(amount Money) Money {
	return amount.Round(MoneyScale)
}

// Percent returns amount × rate / 100 rounded to MoneyScale.
// The division is a decimal shift, so no precision is lost before the single rounding step.
func Percent(amount, rate Money) Money {
	return RoundMoney(amount.Mul(rate).Shift(-2))
}

// IsPercentage reports whether rate lies within [0, 100].
func IsPercentage(rate Money) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(hundred)
}

// OrDefault returns the wrapped value when set, def otherwise.
func OrDefault(v decimal.NullDecimal, def Money) Money {
	if v.Valid {
		return v.Decimal
	}
	return def
}
