// Package types provides common type aliases and money primitives.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimal is an exact decimal value with full precision.
// Used for VAT rates and tax arithmetic to avoid floating-point drift.
type Decimal = decimal.Decimal

// NewDecimalFromString parses an exact decimal from its string form.
// This is the preferred way to construct VAT percentages.
func NewDecimalFromString(s string) (Decimal, error) {
	return decimal.NewFromString(s)
}

// MustDecimal parses an exact decimal, panics on error.
// Use only for constants and tests.
func MustDecimal(s string) Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MinorUnits represents a monetary value in minor currency units (cents, kopecks).
// Storage: int64 - sufficient for ±922 trillion minor units.
type MinorUnits int64

func (m MinorUnits) IsZero() bool { return m == 0 }
func (m MinorUnits) IsPositive() bool { return m > 0 }
func (m MinorUnits) IsNegative() bool { return m < 0 }
func (m MinorUnits) Neg() MinorUnits { return -m }
func (m MinorUnits) Abs() MinorUnits {
	if m < 0 {
		return -m
	}
	return m
}

// Decimal returns the value as an exact decimal of minor units.
func (m MinorUnits) Decimal() Decimal {
	return decimal.NewFromInt(int64(m))
}

// Currency is an ISO 4217 alphabetic code ("USD", "EUR").
type Currency string

// IsValid reports whether the code is exactly 3 uppercase letters.
func (c Currency) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (c Currency) String() string { return string(c) }

// Amount is a monetary value tagged with its currency.
// The zero value ({0, ""}) means "no amount".
type Amount struct {
	Value    MinorUnits `db:"value" json:"value"`
	Currency Currency   `db:"currency" json:"currency"`
}

// NewAmount creates an Amount in minor units.
func NewAmount(value int64, currency Currency) Amount {
	return Amount{Value: MinorUnits(value), Currency: currency}
}

// IsSet reports whether the amount carries a currency.
func (a Amount) IsSet() bool { return a.Currency != "" }

// String formats the amount as "<minor units> <code>" for logs and errors.
func (a Amount) String() string {
	return fmt.Sprintf("%d %s", int64(a.Value), a.Currency)
}

var oneHundred = decimal.NewFromInt(100)

// WithVAT returns value grossed up by the given VAT percentage,
// computed with exact decimal arithmetic and rounded to the nearest minor unit.
func WithVAT(value MinorUnits, vatPercentage Decimal) MinorUnits {
	multiplier := decimal.NewFromInt(1).Add(vatPercentage.Div(oneHundred))
	gross := value.Decimal().Mul(multiplier)
	return MinorUnits(gross.Round(0).IntPart())
}

// WithoutVAT strips the given VAT percentage from a gross value,
// rounding to the nearest minor unit.
func WithoutVAT(gross MinorUnits, vatPercentage Decimal) MinorUnits {
	divisor := decimal.NewFromInt(1).Add(vatPercentage.Div(oneHundred))
	net := gross.Decimal().Div(divisor)
	return MinorUnits(net.Round(0).IntPart())
}
