package movement

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

type stubProduct struct {
	id            id.ID
	number        string
	prices        map[types.Currency]types.MinorUnits
	variantMaster bool
}

func (p *stubProduct) GetID() id.ID { return p.id }
func (p *stubProduct) GetNumber() string { return p.number }
func (p *stubProduct) IsVariantMaster() bool { return p.variantMaster }

func (p *stubProduct) FindPriceByCurrency(currency types.Currency) (types.Amount, bool) {
	value, ok := p.prices[currency]
	if !ok {
		return types.Amount{}, false
	}
	return types.Amount{Value: value, Currency: currency}, true
}

func newStubProduct() *stubProduct {
	return &stubProduct{id: id.New(), number: "TS-001"}
}

type stubOrder struct {
	externalID string
	placedAt   time.Time
}

func (o *stubOrder) GetExternalID() string { return o.externalID }
func (o *stubOrder) GetPlacedAt() time.Time { return o.placedAt }

type stubLine struct {
	id       id.ID
	quantity int64
	price    types.Amount
	vat      types.Decimal
	product  Product
	order    Order
	number   string
}

func (l *stubLine) GetID() id.ID { return l.id }
func (l *stubLine) GetQuantity() int64 { return l.quantity }
func (l *stubLine) GetUnitPriceExclVAT() types.Amount { return l.price }
func (l *stubLine) GetVATPercentage() types.Decimal { return l.vat }
func (l *stubLine) GetProduct() Product { return l.product }
func (l *stubLine) GetOrder() Order { return l.order }
func (l *stubLine) GetProductNumber() string { return l.number }

func amountValue(t *testing.T, get func() (types.Amount, error)) int64 {
	t.Helper()
	a, err := get()
	require.NoError(t, err)
	return int64(a.Value)
}

func TestNew_DerivedTotals(t *testing.T) {
	product := newStubProduct()
	product.prices = map[types.Currency]types.MinorUnits{
		// 23.80 EUR incl. 19% VAT = 20.00 EUR net
		"EUR": 2380,
	}

	m, err := New(-3, types.NewAmount(1800, "EUR"), types.MustDecimal("19"), TypeSale, product, "Order 1001")
	require.NoError(t, err)

	assert.Equal(t, int64(-3), m.Quantity())
	assert.Equal(t, types.Currency("EUR"), m.Currency())

	// retail comes from the price list, net of VAT
	assert.Equal(t, int64(2000), amountValue(t, m.RetailPrice))
	assert.Equal(t, int64(1800), amountValue(t, m.Price))

	// totals use the absolute quantity
	assert.Equal(t, int64(5400), amountValue(t, m.TotalPrice))
	assert.Equal(t, int64(6000), amountValue(t, m.TotalRetailPrice))
	assert.Equal(t, int64(200), amountValue(t, m.Discount))
	assert.Equal(t, int64(600), amountValue(t, m.TotalDiscount))
}

func TestNew_RetailFallsBackToUnitPrice(t *testing.T) {
	product := newStubProduct() // no price list entries

	m, err := New(5, types.NewAmount(1500, "USD"), types.MustDecimal("7"), TypeDelivery, product, "")
	require.NoError(t, err)

	assert.Equal(t, int64(1500), amountValue(t, m.RetailPrice))
	assert.Equal(t, int64(0), amountValue(t, m.Discount))
}

func TestNew_NilProduct(t *testing.T) {
	_, err := New(1, types.NewAmount(100, "EUR"), types.Decimal{}, TypeDelivery, nil, "")
	assert.True(t, apperror.IsCode(err, apperror.CodeProductUnset))
}

func TestNew_NegativeVAT(t *testing.T) {
	_, err := New(1, types.NewAmount(100, "EUR"), types.MustDecimal("-1"), TypeDelivery, newStubProduct(), "")
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestSetPrice_CurrencyIsFixedByFirstAssignment(t *testing.T) {
	m, err := New(1, types.NewAmount(100, "EUR"), types.Decimal{}, TypeDelivery, newStubProduct(), "")
	require.NoError(t, err)

	// same currency is fine
	require.NoError(t, m.SetPrice(types.NewAmount(120, "EUR")))

	err = m.SetPrice(types.NewAmount(120, "USD"))
	assert.True(t, apperror.IsCode(err, apperror.CodeCurrencyMismatch))

	err = m.SetRetailPrice(types.NewAmount(130, "USD"))
	assert.True(t, apperror.IsCode(err, apperror.CodeCurrencyMismatch))
}

func TestSetPrice_RejectsInvalidCurrencyCode(t *testing.T) {
	m, err := New(1, types.NewAmount(100, "EUR"), types.Decimal{}, TypeDelivery, newStubProduct(), "")
	require.NoError(t, err)

	for _, code := range []string{"", "EU", "EURO", "eur", "E1R"} {
		err := m.SetPrice(types.NewAmount(100, types.Currency(code)))
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "code %q", code)
	}
}

func TestVATInclusiveViews(t *testing.T) {
	m, err := New(2, types.NewAmount(1000, "EUR"), types.MustDecimal("19"), TypeDelivery, newStubProduct(), "")
	require.NoError(t, err)

	assert.Equal(t, int64(1190), amountValue(t, m.PriceInclVAT))
	assert.Equal(t, int64(2380), amountValue(t, m.TotalPriceInclVAT))

	// 7% of 999 = 1068.93, rounds to 1069
	require.NoError(t, m.SetVATPercentage(types.MustDecimal("7")))
	require.NoError(t, m.SetPrice(types.NewAmount(999, "EUR")))
	assert.Equal(t, int64(1069), amountValue(t, m.PriceInclVAT))
}

func TestCopy_NewIdentitySameValues(t *testing.T) {
	m, err := New(-2, types.NewAmount(500, "EUR"), types.MustDecimal("19"), TypeSale, newStubProduct(), "ref")
	require.NoError(t, err)

	c := m.Copy()
	assert.NotEqual(t, m.GetID(), c.GetID())
	assert.Equal(t, m.Quantity(), c.Quantity())
	assert.Equal(t, m.ProductID(), c.ProductID())
	assert.Equal(t, m.Reference(), c.Reference())
}

func TestInverse_NegatesQuantity(t *testing.T) {
	m, err := New(-4, types.NewAmount(500, "EUR"), types.MustDecimal("19"), TypeSale, newStubProduct(), "")
	require.NoError(t, err)

	inv := m.Inverse()
	assert.Equal(t, int64(4), inv.Quantity())
	assert.Equal(t, int64(2000), amountValue(t, inv.TotalPrice))
}

func TestDiff(t *testing.T) {
	product := newStubProduct()

	a, err := New(-5, types.NewAmount(500, "EUR"), types.MustDecimal("19"), TypeSale, product, "")
	require.NoError(t, err)
	b, err := New(-3, types.NewAmount(500, "EUR"), types.MustDecimal("19"), TypeSale, product, "")
	require.NoError(t, err)

	// -(a.quantity - b.quantity) = -(-5 - -3) = 2
	d, err := a.Diff(b)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.Quantity())
}

func TestDiff_ProductMismatch(t *testing.T) {
	a, err := New(-5, types.NewAmount(500, "EUR"), types.MustDecimal("19"), TypeSale, newStubProduct(), "")
	require.NoError(t, err)
	b, err := New(-3, types.NewAmount(500, "EUR"), types.MustDecimal("19"), TypeSale, newStubProduct(), "")
	require.NoError(t, err)

	_, err = a.Diff(b)
	assert.True(t, apperror.IsCode(err, apperror.CodeProductMismatch))
}

func TestMonetaryGetters_CurrencyUnset(t *testing.T) {
	m := &StockMovement{}
	_, err := m.Price()
	assert.True(t, apperror.IsCode(err, apperror.CodeCurrencyUnset))
	_, err = m.TotalDiscountInclVAT()
	assert.True(t, apperror.IsCode(err, apperror.CodeCurrencyUnset))
}

func TestFromOrderLine(t *testing.T) {
	product := newStubProduct()
	placed := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	line := &stubLine{
		id:       id.New(),
		quantity: 2,
		price:    types.NewAmount(1800, "EUR"),
		vat:      types.MustDecimal("19"),
		product:  product,
		order:    &stubOrder{externalID: "100042", placedAt: placed},
		number:   "TS-001",
	}

	m, err := FromOrderLine(line)
	require.NoError(t, err)

	assert.Equal(t, int64(-2), m.Quantity())
	assert.Equal(t, TypeSale, m.Type())
	assert.Equal(t, "Order 100042", m.Reference())
	assert.Equal(t, placed, m.CreatedAt())
	require.NotNil(t, m.OrderLineID())
	assert.Equal(t, line.id, *m.OrderLineID())

	assert.NoError(t, m.Validate(context.Background()))
}

func TestFromOrderLine_UnresolvedProduct(t *testing.T) {
	line := &stubLine{id: id.New(), quantity: 1, number: "TS-001"}
	_, err := FromOrderLine(line)
	assert.True(t, apperror.IsCode(err, apperror.CodeProductUnset))
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	product := newStubProduct()

	newMovement := func(quantity int64, typ Type) *StockMovement {
		m, err := New(quantity, types.NewAmount(500, "EUR"), types.MustDecimal("19"), typ, product, "")
		if err != nil {
			t.Fatal(err)
		}
		return m
	}

	t.Run("zero quantity", func(t *testing.T) {
		m := newMovement(1, TypeDelivery)
		m.SetQuantity(0)
		assertViolation(t, m.Validate(ctx), "quantity_nonzero")
	})

	t.Run("sale must be negative", func(t *testing.T) {
		m := newMovement(3, TypeSale)
		assertViolation(t, m.Validate(ctx), "sale_quantity_negative")
	})

	t.Run("sale needs order line", func(t *testing.T) {
		m := newMovement(-3, TypeSale)
		assertViolation(t, m.Validate(ctx), "sale_order_line")

		m.MarkOrderLineRemoved()
		assert.NoError(t, m.Validate(ctx))
	})

	t.Run("return must be positive", func(t *testing.T) {
		m := newMovement(-1, TypeReturn)
		assertViolation(t, m.Validate(ctx), "return_quantity_positive")
	})

	t.Run("delivery must be positive", func(t *testing.T) {
		m := newMovement(-1, TypeDelivery)
		assertViolation(t, m.Validate(ctx), "delivery_quantity_positive")
	})

	t.Run("regulation allows either sign", func(t *testing.T) {
		assert.NoError(t, newMovement(-2, TypeRegulation).Validate(ctx))
		assert.NoError(t, newMovement(2, TypeRegulation).Validate(ctx))
	})

	t.Run("complaint must reduce stock", func(t *testing.T) {
		m := newMovement(2, TypeReturn)
		m.SetComplaint(true)
		assertViolation(t, m.Validate(ctx), "complaint_quantity_negative")
	})

	t.Run("unknown type", func(t *testing.T) {
		m := newMovement(1, TypeDelivery)
		m.SetType(Type("teleport"))
		assertViolation(t, m.Validate(ctx), "type_known")
	})

	t.Run("price requires retail", func(t *testing.T) {
		m := newMovement(1, TypeDelivery)
		require.NoError(t, m.SetRetailPrice(types.NewAmount(0, "EUR")))
		assertViolation(t, m.Validate(ctx), "price_requires_retail")
	})

	t.Run("no discount without retail", func(t *testing.T) {
		// retail 0 with price 500 leaves a derived discount of -500
		m := newMovement(1, TypeDelivery)
		require.NoError(t, m.SetRetailPrice(types.NewAmount(0, "EUR")))
		assertViolation(t, m.Validate(ctx), "no_discount_without_retail")
	})

	t.Run("reference too long", func(t *testing.T) {
		m := newMovement(1, TypeDelivery)
		m.SetReference(strings.Repeat("x", MaxReferenceLength+1))
		assertViolation(t, m.Validate(ctx), "reference_length")
	})

	t.Run("variant master product", func(t *testing.T) {
		master := newStubProduct()
		master.variantMaster = true
		m, err := New(1, types.NewAmount(500, "EUR"), types.Decimal{}, TypeDelivery, master, "")
		require.NoError(t, err)
		assertViolation(t, m.Validate(ctx), "product_not_variant_master")
	})

	t.Run("all violations reported at once", func(t *testing.T) {
		m := newMovement(1, TypeSale)
		m.SetQuantity(0)
		err := m.Validate(ctx)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		violations, ok := appErr.Details["violations"].([]apperror.Violation)
		require.True(t, ok)
		assert.GreaterOrEqual(t, len(violations), 2)
	})
}

func assertViolation(t *testing.T, err error, rule string) {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	violations, ok := appErr.Details["violations"].([]apperror.Violation)
	require.True(t, ok, "expected violations detail")
	for _, v := range violations {
		if v.Rule == rule {
			return
		}
	}
	t.Fatalf("violation %q not found in %v", rule, violations)
}
