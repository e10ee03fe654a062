package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/movement"
)

type stubProduct struct {
	id     id.ID
	number string
}

func (p *stubProduct) GetID() id.ID { return p.id }
func (p *stubProduct) GetNumber() string { return p.number }
func (p *stubProduct) IsVariantMaster() bool { return false }

func (p *stubProduct) FindPriceByCurrency(types.Currency) (types.Amount, bool) {
	return types.Amount{}, false
}

func newTestOrder() *Order {
	return NewOrder("100042", time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC))
}

func newTestLine(t *testing.T) (*Line, *stubProduct) {
	t.Helper()
	o := newTestOrder()
	p := &stubProduct{id: id.New(), number: "TS-001"}
	line := o.AddLine(p, p.GetNumber(), 2, types.NewAmount(1800, "EUR"), types.MustDecimal("19"))
	return line, p
}

func saleMovement(t *testing.T, line *Line) *movement.StockMovement {
	t.Helper()
	m, err := movement.FromOrderLine(line)
	require.NoError(t, err)
	return m
}

func otherProductMovement(t *testing.T) *movement.StockMovement {
	t.Helper()
	p := &stubProduct{id: id.New(), number: "MUG-010"}
	m, err := movement.New(1, types.NewAmount(899, "EUR"), types.MustDecimal("19"), movement.TypeReturn, p, "")
	require.NoError(t, err)
	return m
}

func TestOrder_AddLine(t *testing.T) {
	o := newTestOrder()
	p := &stubProduct{id: id.New(), number: "TS-001"}

	first := o.AddLine(p, p.GetNumber(), 2, types.NewAmount(1800, "EUR"), types.MustDecimal("19"))
	second := o.AddLine(p, p.GetNumber(), 1, types.NewAmount(899, "EUR"), types.MustDecimal("19"))

	assert.Equal(t, 1, first.LineNo)
	assert.Equal(t, 2, second.LineNo)
	assert.Len(t, o.Lines, 2)
	assert.Same(t, o, first.GetOrder().(*Order))
	assert.NoError(t, o.Validate(context.Background()))
}

func TestOrder_ValidateRejectsBadLine(t *testing.T) {
	o := newTestOrder()
	p := &stubProduct{id: id.New(), number: "TS-001"}
	o.AddLine(p, p.GetNumber(), 0, types.NewAmount(1800, "EUR"), types.Decimal{})

	err := o.Validate(context.Background())
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestLine_AddMovement_IdempotentByIdentity(t *testing.T) {
	line, _ := newTestLine(t)
	m := saleMovement(t, line)

	require.NoError(t, line.AddMovement(m))
	require.NoError(t, line.AddMovement(m))

	assert.Len(t, line.Movements(), 1)
}

func TestLine_AddMovement_ProductMismatch(t *testing.T) {
	line, _ := newTestLine(t)
	require.NoError(t, line.AddMovement(saleMovement(t, line)))

	err := line.AddMovement(otherProductMovement(t))
	assert.True(t, apperror.IsCode(err, apperror.CodeProductMismatch))
	assert.Len(t, line.Movements(), 1)
}

func TestLine_AddMovements_Atomic(t *testing.T) {
	line, _ := newTestLine(t)

	good := saleMovement(t, line)
	alsoGood := saleMovement(t, line)
	bad := otherProductMovement(t)

	err := line.AddMovements([]*movement.StockMovement{good, alsoGood, bad})
	assert.True(t, apperror.IsCode(err, apperror.CodeProductMismatch))

	// a failing batch must leave the collection untouched
	assert.Empty(t, line.Movements())

	require.NoError(t, line.AddMovements([]*movement.StockMovement{good, alsoGood}))
	assert.Len(t, line.Movements(), 2)
}

func TestLine_AddMovements_SkipsDuplicates(t *testing.T) {
	line, _ := newTestLine(t)
	m := saleMovement(t, line)

	require.NoError(t, line.AddMovement(m))
	require.NoError(t, line.AddMovements([]*movement.StockMovement{m, saleMovement(t, line)}))

	assert.Len(t, line.Movements(), 2)
}

func TestLine_EffectiveMovement(t *testing.T) {
	line, _ := newTestLine(t)

	assert.Nil(t, line.EffectiveMovement())

	sale := saleMovement(t, line) // quantity -2
	require.NoError(t, line.AddMovement(sale))

	partialReturn := sale.Inverse()
	partialReturn.SetQuantity(1)
	partialReturn.SetType(movement.TypeReturn)
	require.NoError(t, line.AddMovement(partialReturn))

	effective := line.EffectiveMovement()
	require.NotNil(t, effective)
	assert.Equal(t, int64(-1), effective.Quantity())

	// the template is the last-added record
	assert.Equal(t, movement.TypeReturn, effective.Type())
	assert.NotEqual(t, partialReturn.GetID(), effective.GetID())

	// folding does not mutate the attached records
	assert.Equal(t, int64(-2), sale.Quantity())
	assert.Equal(t, int64(1), partialReturn.Quantity())
}

func TestLine_EffectiveMovement_NetZero(t *testing.T) {
	line, _ := newTestLine(t)

	sale := saleMovement(t, line)
	require.NoError(t, line.AddMovement(sale))
	require.NoError(t, line.AddMovement(sale.Inverse()))

	effective := line.EffectiveMovement()
	require.NotNil(t, effective)
	assert.Equal(t, int64(0), effective.Quantity())
}
