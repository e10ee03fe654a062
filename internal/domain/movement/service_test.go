package movement

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

type passthroughTxManager struct {
	readOnlyCalls int
}

func (*passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *passthroughTxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m.readOnlyCalls++
	return fn(ctx)
}

type fakeRepo struct {
	records map[id.ID]*StockMovement
	order   []id.ID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[id.ID]*StockMovement)}
}

func (r *fakeRepo) Create(ctx context.Context, m *StockMovement) error {
	r.records[m.GetID()] = m
	r.order = append(r.order, m.GetID())
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, movementID id.ID) (*StockMovement, error) {
	m, ok := r.records[movementID]
	if !ok {
		return nil, apperror.NewNotFound("stock movement", movementID.String())
	}
	return m, nil
}

func (r *fakeRepo) ListByProduct(ctx context.Context, productID id.ID, filter ListFilter) ([]*StockMovement, error) {
	var out []*StockMovement
	for _, mid := range r.order {
		if m := r.records[mid]; m.ProductID() == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByOrderLine(ctx context.Context, orderLineID id.ID) ([]*StockMovement, error) {
	var out []*StockMovement
	for _, mid := range r.order {
		m := r.records[mid]
		if lineID := m.OrderLineID(); lineID != nil && *lineID == orderLineID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkOrderLineRemoved(ctx context.Context, orderLineID id.ID) error {
	for _, m := range r.records {
		if lineID := m.OrderLineID(); lineID != nil && *lineID == orderLineID {
			m.MarkOrderLineRemoved()
		}
	}
	return nil
}

type fakeResolver struct {
	products map[id.ID]Product
}

func (r *fakeResolver) ResolveProduct(ctx context.Context, productID id.ID) (Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

type fakeAuditor struct {
	entries map[id.ID][]AuditRecord
}

func newFakeAuditor() *fakeAuditor {
	return &fakeAuditor{entries: make(map[id.ID][]AuditRecord)}
}

func (a *fakeAuditor) RecordChange(ctx context.Context, entityType string, entityID id.ID, action string, changes any) error {
	b, err := json.Marshal(changes)
	if err != nil {
		return err
	}
	// newest first, matching the store's read order
	a.entries[entityID] = append([]AuditRecord{{
		Action:    action,
		Changes:   b,
		CreatedAt: time.Now().UTC(),
	}}, a.entries[entityID]...)
	return nil
}

func (a *fakeAuditor) EntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]AuditRecord, error) {
	records := a.entries[entityID]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *stubProduct) {
	t.Helper()
	repo := newFakeRepo()
	product := newStubProduct()
	resolver := &fakeResolver{products: map[id.ID]Product{product.id: product}}
	return NewService(repo, &passthroughTxManager{}, resolver, nil), repo, product
}

func TestService_Create(t *testing.T) {
	svc, repo, product := newTestService(t)

	m, err := svc.Create(context.Background(), CreateParams{
		Quantity:      10,
		UnitPrice:     types.NewAmount(1500, "EUR"),
		VATPercentage: types.MustDecimal("19"),
		Type:          TypeDelivery,
		ProductID:     product.id,
		Reference:     "PO-7",
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), m.GetID())
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.Quantity())
	assert.Equal(t, TypeDelivery, stored.Type())
}

func TestService_Create_UnknownProduct(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateParams{
		Quantity:  1,
		UnitPrice: types.NewAmount(100, "EUR"),
		Type:      TypeDelivery,
		ProductID: id.New(),
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
	assert.Empty(t, repo.records)
}

func TestService_Create_InvalidRecordNotPersisted(t *testing.T) {
	svc, repo, product := newTestService(t)

	// delivery with negative quantity violates the sign rule
	_, err := svc.Create(context.Background(), CreateParams{
		Quantity:  -1,
		UnitPrice: types.NewAmount(100, "EUR"),
		Type:      TypeDelivery,
		ProductID: product.id,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	assert.Empty(t, repo.records)
}

func TestService_Reverse(t *testing.T) {
	svc, repo, product := newTestService(t)
	ctx := context.Background()

	orig, err := svc.Create(ctx, CreateParams{
		Quantity:  5,
		UnitPrice: types.NewAmount(100, "EUR"),
		Type:      TypeDelivery,
		ProductID: product.id,
		Reference: "PO-7",
		Complaint: false,
	})
	require.NoError(t, err)

	inv, err := svc.Reverse(ctx, orig.GetID())
	require.NoError(t, err)

	assert.Equal(t, int64(-5), inv.Quantity())
	assert.Equal(t, TypeRegulation, inv.Type())
	assert.False(t, inv.Complaint())
	assert.Equal(t, "Reversal of PO-7", inv.Reference())

	// both the original and the reversal are in the ledger
	assert.Len(t, repo.records, 2)
}

func TestService_Reverse_TruncatesReference(t *testing.T) {
	svc, _, product := newTestService(t)
	ctx := context.Background()

	orig, err := svc.Create(ctx, CreateParams{
		Quantity:  1,
		UnitPrice: types.NewAmount(100, "EUR"),
		Type:      TypeDelivery,
		ProductID: product.id,
		Reference: strings.Repeat("r", MaxReferenceLength),
	})
	require.NoError(t, err)

	inv, err := svc.Reverse(ctx, orig.GetID())
	require.NoError(t, err)
	assert.Len(t, inv.Reference(), MaxReferenceLength)
}

func TestService_ListByProduct_ReadOnly(t *testing.T) {
	repo := newFakeRepo()
	product := newStubProduct()
	resolver := &fakeResolver{products: map[id.ID]Product{product.id: product}}
	txManager := &passthroughTxManager{}
	svc := NewService(repo, txManager, resolver, nil)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateParams{
		Quantity:  3,
		UnitPrice: types.NewAmount(100, "EUR"),
		Type:      TypeDelivery,
		ProductID: product.id,
	})
	require.NoError(t, err)

	ms, err := svc.ListByProduct(ctx, product.id, ListFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, m.GetID(), ms[0].GetID())

	// reads go through a read-only transaction
	assert.Equal(t, 1, txManager.readOnlyCalls)
}

func TestService_History(t *testing.T) {
	repo := newFakeRepo()
	product := newStubProduct()
	resolver := &fakeResolver{products: map[id.ID]Product{product.id: product}}
	auditor := newFakeAuditor()
	svc := NewService(repo, &passthroughTxManager{}, resolver, auditor)
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateParams{
		Quantity:  5,
		UnitPrice: types.NewAmount(100, "EUR"),
		Type:      TypeDelivery,
		ProductID: product.id,
		Reference: "PO-7",
	})
	require.NoError(t, err)

	inv, err := svc.Reverse(ctx, m.GetID())
	require.NoError(t, err)

	records, err := svc.History(ctx, m.GetID(), 50)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "create", records[0].Action)
	assert.NotEmpty(t, records[0].Changes)

	records, err = svc.History(ctx, inv.GetID(), 50)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "reverse", records[0].Action)
}

func TestService_History_UnknownMovement(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.History(context.Background(), id.New(), 50)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestService_History_AuditingDisabled(t *testing.T) {
	svc, repo, product := newTestService(t)
	ctx := context.Background()

	m, err := New(1, types.NewAmount(100, "EUR"), types.Decimal{}, TypeDelivery, product, "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, m))

	records, err := svc.History(ctx, m.GetID(), 50)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestService_MarkOrderLineRemoved(t *testing.T) {
	svc, repo, product := newTestService(t)
	ctx := context.Background()

	lineID := id.New()
	m, err := New(-1, types.NewAmount(100, "EUR"), types.Decimal{}, TypeSale, product, "")
	require.NoError(t, err)
	m.orderLineID = &lineID
	require.NoError(t, repo.Create(ctx, m))

	require.NoError(t, svc.MarkOrderLineRemoved(ctx, lineID))

	stored, err := repo.GetByID(ctx, m.GetID())
	require.NoError(t, err)
	assert.True(t, stored.OrderLineRemoved())
}
