package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency_IsValid(t *testing.T) {
	valid := []Currency{"EUR", "USD", "SEK"}
	for _, c := range valid {
		assert.True(t, c.IsValid(), "%s", c)
	}

	invalid := []Currency{"", "EU", "EURO", "eur", "E1R", "E R"}
	for _, c := range invalid {
		assert.False(t, c.IsValid(), "%q", c)
	}
}

func TestWithVAT(t *testing.T) {
	vat19 := MustDecimal("19")

	assert.Equal(t, MinorUnits(1190), WithVAT(1000, vat19))
	assert.Equal(t, MinorUnits(0), WithVAT(0, vat19))
	assert.Equal(t, MinorUnits(-1190), WithVAT(-1000, vat19))

	// 999 * 1.07 = 1068.93, rounds to nearest minor unit
	assert.Equal(t, MinorUnits(1069), WithVAT(999, MustDecimal("7")))

	// fractional VAT rates stay exact
	assert.Equal(t, MinorUnits(1255), WithVAT(1000, MustDecimal("25.5")))
}

func TestWithoutVAT(t *testing.T) {
	vat19 := MustDecimal("19")

	assert.Equal(t, MinorUnits(1000), WithoutVAT(1190, vat19))
	assert.Equal(t, MinorUnits(2000), WithoutVAT(2380, vat19))

	// zero rate is the identity
	assert.Equal(t, MinorUnits(1234), WithoutVAT(1234, Decimal{}))
}

func TestMinorUnits_Helpers(t *testing.T) {
	assert.True(t, MinorUnits(0).IsZero())
	assert.True(t, MinorUnits(5).IsPositive())
	assert.True(t, MinorUnits(-5).IsNegative())
	assert.Equal(t, MinorUnits(5), MinorUnits(-5).Abs())
	assert.Equal(t, MinorUnits(-5), MinorUnits(5).Neg())
}

func TestAmount(t *testing.T) {
	a := NewAmount(1999, "EUR")
	assert.True(t, a.IsSet())
	assert.Equal(t, "1999 EUR", a.String())

	assert.False(t, Amount{}.IsSet())
}
