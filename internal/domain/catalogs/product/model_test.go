package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

func strPtr(s string) *string { return &s }

func TestProduct_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid simple product", func(t *testing.T) {
		p := NewProduct("TS-001", "Basic T-Shirt", KindSimple)
		p.SetPrice("EUR", 1999)
		assert.NoError(t, p.Validate(ctx))
	})

	t.Run("unknown kind", func(t *testing.T) {
		p := NewProduct("TS-001", "Basic T-Shirt", Kind("bundle"))
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("variant requires master", func(t *testing.T) {
		p := NewProduct("TS-001-M", "Basic T-Shirt (M)", KindVariant)
		assert.Error(t, p.Validate(ctx))

		p.VariantMasterID = strPtr(id.New().String())
		assert.NoError(t, p.Validate(ctx))
	})

	t.Run("non-variant cannot reference a master", func(t *testing.T) {
		p := NewProduct("TS-001", "Basic T-Shirt", KindSimple)
		p.VariantMasterID = strPtr(id.New().String())
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("negative price", func(t *testing.T) {
		p := NewProduct("TS-001", "Basic T-Shirt", KindSimple)
		p.Prices = []Price{{Currency: "EUR", Value: -1}}
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("invalid price currency", func(t *testing.T) {
		p := NewProduct("TS-001", "Basic T-Shirt", KindSimple)
		p.Prices = []Price{{Currency: "eur", Value: 100}}
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("duplicate price currency", func(t *testing.T) {
		p := NewProduct("TS-001", "Basic T-Shirt", KindSimple)
		p.Prices = []Price{
			{Currency: "EUR", Value: 100},
			{Currency: "EUR", Value: 200},
		}
		err := p.Validate(ctx)
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})
}

func TestProduct_SetPrice_Upserts(t *testing.T) {
	p := NewProduct("TS-001", "Basic T-Shirt", KindSimple)

	p.SetPrice("EUR", 1999)
	p.SetPrice("USD", 2199)
	p.SetPrice("EUR", 1899)

	require.Len(t, p.Prices, 2)

	amount, ok := p.FindPriceByCurrency("EUR")
	require.True(t, ok)
	assert.Equal(t, types.MinorUnits(1899), amount.Value)

	_, ok = p.FindPriceByCurrency("GBP")
	assert.False(t, ok)
}

func TestProduct_MovementSurface(t *testing.T) {
	p := NewProduct("TS-001", "Basic T-Shirt", KindVariantMaster)

	assert.Equal(t, "TS-001", p.GetNumber())
	assert.True(t, p.IsVariantMaster())
	assert.False(t, NewProduct("TS-001-M", "Basic T-Shirt (M)", KindVariant).IsVariantMaster())
}
