package movement

import (
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Snapshot is the persisted form of a StockMovement.
// Derived totals are not stored: Restore recomputes them, so the
// arithmetic invariants cannot drift from what the database holds.
type Snapshot struct {
	ID        id.ID     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Quantity  int64  `db:"quantity"`
	Complaint bool   `db:"complaint"`
	Reference string `db:"reference"`

	Currency    types.Currency   `db:"currency"`
	Price       types.MinorUnits `db:"price"`
	RetailPrice types.MinorUnits `db:"retail_price"`

	VATPercentage string `db:"vat_percentage"`

	Type Type `db:"type"`

	ProductID        id.ID  `db:"product_id"`
	ProductIsMaster  bool   `db:"product_is_master"`
	OrderLineID      *id.ID `db:"order_line_id"`
	OrderLineRemoved bool   `db:"order_line_removed"`
}

// Snapshot exports the record state for persistence.
func (m *StockMovement) Snapshot() Snapshot {
	return Snapshot{
		ID:               m.id,
		CreatedAt:        m.createdAt,
		UpdatedAt:        m.updatedAt,
		Quantity:         m.quantity,
		Complaint:        m.complaint,
		Reference:        m.reference,
		Currency:         m.currency,
		Price:            m.price,
		RetailPrice:      m.retailPrice,
		VATPercentage:    m.vatPercentage.String(),
		Type:             m.typ,
		ProductID:        m.productID,
		ProductIsMaster:  m.productIsMaster,
		OrderLineID:      m.OrderLineID(),
		OrderLineRemoved: m.orderLineRemoved,
	}
}

// Restore rebuilds a record from its persisted form, recomputing the
// derived totals. Used by repositories only.
func Restore(s Snapshot) (*StockMovement, error) {
	vat, err := types.NewDecimalFromString(s.VATPercentage)
	if err != nil {
		return nil, err
	}

	m := &StockMovement{
		id:               s.ID,
		createdAt:        s.CreatedAt,
		updatedAt:        s.UpdatedAt,
		quantity:         s.Quantity,
		complaint:        s.Complaint,
		reference:        s.Reference,
		currency:         s.Currency,
		price:            s.Price,
		retailPrice:      s.RetailPrice,
		vatPercentage:    vat,
		typ:              s.Type,
		productID:        s.ProductID,
		productIsMaster:  s.ProductIsMaster,
		orderLineRemoved: s.OrderLineRemoved,
	}
	if s.OrderLineID != nil {
		lineID := *s.OrderLineID
		m.orderLineID = &lineID
	}
	m.recompute()

	return m, nil
}
