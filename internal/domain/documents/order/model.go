// Package order provides the sales Order document and its lines.
// An order line owns the ordered collection of stock movements recorded
// against it and can fold them into a single effective movement.
package order

import (
	"context"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/movement"
)

// Order represents a customer order imported from the shop.
type Order struct {
	entity.Document

	// ExternalID is the order number in the originating shop system
	ExternalID string `db:"external_id" json:"externalId"`

	// Table part: ordered lines
	Lines []*Line `db:"-" json:"lines"`
}

// NewOrder creates a new order document.
// The document date is the moment the order was placed in the shop,
// not the moment it was imported.
func NewOrder(externalID string, placedAt time.Time) *Order {
	doc := entity.NewDocument()
	doc.Date = placedAt.UTC()
	doc.Number = externalID

	return &Order{
		Document:   doc,
		ExternalID: externalID,
		Lines:      make([]*Line, 0),
	}
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}

	if o.ExternalID == "" {
		return apperror.NewValidation("external order ID is required").
			WithDetail("field", "externalId")
	}

	for i, line := range o.Lines {
		if err := line.Validate(ctx); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr.WithDetail("lineNo", i+1)
			}
			return err
		}
	}

	return nil
}

// AddLine appends a line for a product and returns it.
func (o *Order) AddLine(product movement.Product, productNumber string, quantity int64, unitPrice types.Amount, vatPercentage types.Decimal) *Line {
	line := &Line{
		LineID:        id.New(),
		LineNo:        len(o.Lines) + 1,
		ProductID:     product.GetID(),
		ProductNumber: productNumber,
		Quantity:      quantity,
		UnitPrice:     unitPrice.Value,
		Currency:      unitPrice.Currency,
		VATPercentage: vatPercentage,
		order:         o,
		product:       product,
		movements:     make([]*movement.StockMovement, 0),
	}
	o.Lines = append(o.Lines, line)
	return line
}

// --- movement.Order implementation ---

// GetExternalID returns the shop-side order number.
func (o *Order) GetExternalID() string { return o.ExternalID }

// GetPlacedAt returns the moment the order was placed.
func (o *Order) GetPlacedAt() time.Time { return o.Date }

var _ movement.Order = (*Order)(nil)

// Line is one product position of an order.
// Its movement collection is initialized at construction and mutated
// only through AddMovement/AddMovements.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID     id.ID  `db:"product_id" json:"productId"`
	ProductNumber string `db:"product_number" json:"productNumber"`

	Quantity int64 `db:"quantity" json:"quantity"`

	// UnitPrice is the actual unit price excl. VAT, in minor units
	UnitPrice types.MinorUnits `db:"unit_price" json:"unitPrice"`
	Currency  types.Currency   `db:"currency" json:"currency"`

	VATPercentage types.Decimal `db:"-" json:"vatPercentage"`

	order     *Order
	product   movement.Product
	movements []*movement.StockMovement
}

// Validate checks line invariants.
func (l *Line) Validate(ctx context.Context) error {
	if id.IsNil(l.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if l.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if l.UnitPrice < 0 {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	if !l.Currency.IsValid() {
		return apperror.NewValidation("currency must be a 3-letter ISO code").
			WithDetail("field", "currency")
	}
	if l.VATPercentage.IsNegative() {
		return apperror.NewValidation("VAT percentage cannot be negative").
			WithDetail("field", "vatPercentage")
	}
	return nil
}

// AttachOrder wires the back-reference after rehydration (repository use).
func (l *Line) AttachOrder(o *Order) { l.order = o }

// AttachProduct wires the resolved product reference (repository/service use).
func (l *Line) AttachProduct(p movement.Product) { l.product = p }

// --- movement.OrderLine implementation ---

func (l *Line) GetID() id.ID { return l.LineID }
func (l *Line) GetQuantity() int64 { return l.Quantity }
func (l *Line) GetProductNumber() string { return l.ProductNumber }

// GetUnitPriceExclVAT returns the actual unit price excl. VAT.
func (l *Line) GetUnitPriceExclVAT() types.Amount {
	return types.Amount{Value: l.UnitPrice, Currency: l.Currency}
}

func (l *Line) GetVATPercentage() types.Decimal { return l.VATPercentage }

// GetProduct returns the resolved product, or nil when unresolved.
func (l *Line) GetProduct() movement.Product { return l.product }

// GetOrder returns the owning order.
func (l *Line) GetOrder() movement.Order { return l.order }

var _ movement.OrderLine = (*Line)(nil)

// --- Movement aggregation ---

// Movements returns the attached records in insertion order.
func (l *Line) Movements() []*movement.StockMovement {
	out := make([]*movement.StockMovement, len(l.movements))
	copy(out, l.movements)
	return out
}

// AddMovement attaches a record to the line.
//
// All records on one line must reference the same product as the first
// attached record. Re-adding a record already present (by identity) is
// a no-op.
func (l *Line) AddMovement(rec *movement.StockMovement) error {
	if err := l.checkMovement(rec); err != nil {
		return err
	}
	if l.hasMovement(rec) {
		return nil
	}
	l.movements = append(l.movements, rec)
	return nil
}

// AddMovements attaches records atomically: either every record is
// accepted or the collection is left untouched.
func (l *Line) AddMovements(recs []*movement.StockMovement) error {
	anchor := l.firstProductID()
	for _, rec := range recs {
		if err := l.checkMovementAgainst(anchor, rec); err != nil {
			return err
		}
		if anchor == nil {
			pid := rec.ProductID()
			anchor = &pid
		}
	}
	for _, rec := range recs {
		if !l.hasMovement(rec) {
			l.movements = append(l.movements, rec)
		}
	}
	return nil
}

// EffectiveMovement folds all attached records into one net movement.
//
// The last-added record serves as the template for every field except
// quantity, which becomes the sum over all records. Returns nil when
// no records are attached.
func (l *Line) EffectiveMovement() *movement.StockMovement {
	if len(l.movements) == 0 {
		return nil
	}

	var sum int64
	for _, rec := range l.movements {
		sum += rec.Quantity()
	}

	effective := l.movements[len(l.movements)-1].Copy()
	effective.SetQuantity(sum)
	return effective
}

func (l *Line) checkMovement(rec *movement.StockMovement) error {
	return l.checkMovementAgainst(l.firstProductID(), rec)
}

func (l *Line) checkMovementAgainst(anchor *id.ID, rec *movement.StockMovement) error {
	if anchor == nil {
		return nil
	}
	if *anchor != rec.ProductID() {
		return apperror.NewProductMismatch(anchor.String(), rec.ProductID().String()).
			WithDetail("orderLineId", l.LineID.String())
	}
	return nil
}

func (l *Line) firstProductID() *id.ID {
	if len(l.movements) == 0 {
		return nil
	}
	pid := l.movements[0].ProductID()
	return &pid
}

func (l *Line) hasMovement(rec *movement.StockMovement) bool {
	for _, existing := range l.movements {
		if existing.GetID() == rec.GetID() {
			return true
		}
	}
	return false
}
