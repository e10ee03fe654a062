package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/movement"
)

type stubProduct struct {
	id     id.ID
	prices map[types.Currency]types.MinorUnits
}

func (p *stubProduct) GetID() id.ID          { return p.id }
func (p *stubProduct) GetNumber() string     { return "TS-001" }
func (p *stubProduct) IsVariantMaster() bool { return false }

func (p *stubProduct) FindPriceByCurrency(currency types.Currency) (types.Amount, bool) {
	v, ok := p.prices[currency]
	return types.Amount{Value: v, Currency: currency}, ok
}

func TestFromMovement_MonetaryViews(t *testing.T) {
	product := &stubProduct{
		id: id.New(),
		// 23.80 EUR incl. 19% VAT = 20.00 EUR net
		prices: map[types.Currency]types.MinorUnits{"EUR": 2380},
	}

	m, err := movement.New(-3, types.NewAmount(1800, "EUR"), types.MustDecimal("19"), movement.TypeRegulation, product, "")
	require.NoError(t, err)

	resp := FromMovement(m)
	assert.Equal(t, "EUR", resp.Currency)

	value := func(mr *MoneyResponse) int64 {
		require.NotNil(t, mr)
		assert.Equal(t, "EUR", mr.Currency)
		return mr.Value
	}

	assert.Equal(t, int64(1800), value(resp.Price))
	assert.Equal(t, int64(2000), value(resp.RetailPrice))
	assert.Equal(t, int64(5400), value(resp.TotalPrice))
	assert.Equal(t, int64(6000), value(resp.TotalRetailPrice))
	assert.Equal(t, int64(200), value(resp.Discount))
	assert.Equal(t, int64(600), value(resp.TotalDiscount))

	assert.Equal(t, int64(2142), value(resp.PriceInclVat))
	assert.Equal(t, int64(2380), value(resp.RetailPriceInclVat))
	assert.Equal(t, int64(6426), value(resp.TotalPriceInclVat))
	assert.Equal(t, int64(7140), value(resp.TotalRetailPriceInclVat))
	assert.Equal(t, int64(238), value(resp.DiscountInclVat))
	assert.Equal(t, int64(714), value(resp.TotalDiscountInclVat))
}
