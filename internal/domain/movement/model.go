// Package movement provides the stock movement record.
// A movement is a single signed inventory delta for a product, with
// price, discount and VAT bookkeeping in a single currency.
package movement

import (
	"context"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Type defines the business nature of a stock movement.
type Type string

const (
	// TypeSale reduces stock when an order line is sold
	TypeSale Type = "sale"
	// TypeReturn increases stock when goods come back
	TypeReturn Type = "return"
	// TypeRegulation is a manual stock correction, either sign
	TypeRegulation Type = "regulation"
	// TypeDelivery increases stock on inbound delivery
	TypeDelivery Type = "delivery"
)

// IsValid reports whether the type is one of the known movement types.
func (t Type) IsValid() bool {
	switch t {
	case TypeSale, TypeReturn, TypeRegulation, TypeDelivery:
		return true
	}
	return false
}

// MaxReferenceLength bounds the free-form reference field.
const MaxReferenceLength = 191

// Product is the read surface a movement needs from the product catalog.
// Implemented by catalogs/product.Product; tests use stubs.
type Product interface {
	GetID() id.ID

	// GetNumber returns the product number (SKU).
	GetNumber() string

	// FindPriceByCurrency returns the VAT-inclusive retail price listed
	// for the currency, and whether such an entry exists.
	FindPriceByCurrency(currency types.Currency) (types.Amount, bool)

	// IsVariantMaster reports whether the product is an abstract parent SKU
	// that cannot be stocked or sold directly.
	IsVariantMaster() bool
}

// Order is the read surface a movement needs from an order.
type Order interface {
	GetExternalID() string
	GetPlacedAt() time.Time
}

// OrderLine is the read surface a movement needs from an order line.
type OrderLine interface {
	GetID() id.ID
	GetQuantity() int64
	GetUnitPriceExclVAT() types.Amount
	GetVATPercentage() types.Decimal
	GetProduct() Product // nil when the line has no product
	GetOrder() Order
	GetProductNumber() string
}

// StockMovement is one recorded inventory delta.
//
// Fields are unexported so every monetary mutation goes through the
// currency-checking setters and the derived totals never go stale.
// Repositories rehydrate records through Restore/Snapshot.
type StockMovement struct {
	id        id.ID
	createdAt time.Time
	updatedAt time.Time

	// quantity is signed: negative = outgoing, positive = incoming
	quantity  int64
	complaint bool
	reference string

	// currency is fixed by the first monetary setter and never changes
	currency types.Currency

	// unit amounts in minor units, excl. VAT
	price       types.MinorUnits
	retailPrice types.MinorUnits

	// derived, recomputed on every quantity/price/retailPrice mutation
	totalPrice       types.MinorUnits
	totalRetailPrice types.MinorUnits
	discount         types.MinorUnits
	totalDiscount    types.MinorUnits

	vatPercentage types.Decimal

	typ Type

	// non-owning references
	productID        id.ID
	productIsMaster  bool
	orderLineID      *id.ID
	orderLineRemoved bool
}

// New creates a movement record for a product.
//
// The unit price establishes the record currency. The retail price comes
// from the product price list entry for that currency (a VAT-inclusive
// list price, converted to excl-VAT at the given rate); when the product
// has no entry, the unit price itself is used as the retail price.
func New(quantity int64, unitPrice types.Amount, vatPercentage types.Decimal, typ Type, product Product, reference string) (*StockMovement, error) {
	if product == nil {
		return nil, apperror.NewProductUnset("movement")
	}
	if vatPercentage.IsNegative() {
		return nil, apperror.NewValidation("VAT percentage cannot be negative").
			WithDetail("field", "vatPercentage")
	}

	now := time.Now().UTC()
	m := &StockMovement{
		id:              id.New(),
		createdAt:       now,
		updatedAt:       now,
		quantity:        quantity,
		reference:       reference,
		vatPercentage:   vatPercentage,
		typ:             typ,
		productID:       product.GetID(),
		productIsMaster: product.IsVariantMaster(),
	}

	if err := m.SetPrice(unitPrice); err != nil {
		return nil, err
	}

	retail := unitPrice
	if listPrice, ok := product.FindPriceByCurrency(unitPrice.Currency); ok {
		retail = types.Amount{
			Value:    types.WithoutVAT(listPrice.Value, vatPercentage),
			Currency: listPrice.Currency,
		}
	}
	if err := m.SetRetailPrice(retail); err != nil {
		return nil, err
	}

	return m, nil
}

// FromOrderLine builds the sale movement for an order line.
//
// A sale always reduces stock, so quantity is the negated line quantity.
// Timestamps are taken from the order's placement time: the movement
// conceptually happened when the order was placed, not when it was recorded.
func FromOrderLine(line OrderLine) (*StockMovement, error) {
	product := line.GetProduct()
	if product == nil {
		return nil, apperror.NewProductUnset("order line").
			WithDetail("orderLineId", line.GetID().String()).
			WithDetail("productNumber", line.GetProductNumber())
	}

	order := line.GetOrder()
	m, err := New(
		-line.GetQuantity(),
		line.GetUnitPriceExclVAT(),
		line.GetVATPercentage(),
		TypeSale,
		product,
		"Order "+order.GetExternalID(),
	)
	if err != nil {
		return nil, err
	}

	lineID := line.GetID()
	m.orderLineID = &lineID
	placed := order.GetPlacedAt()
	m.createdAt = placed
	m.updatedAt = placed

	return m, nil
}

// Copy returns a value copy of the record under a new identity.
func (m *StockMovement) Copy() *StockMovement {
	c := *m
	c.id = id.New()
	if m.orderLineID != nil {
		lineID := *m.orderLineID
		c.orderLineID = &lineID
	}
	return &c
}

// Inverse returns a copy with the quantity negated, representing the
// reversal of this movement.
func (m *StockMovement) Inverse() *StockMovement {
	c := m.Copy()
	c.SetQuantity(-m.quantity)
	return c
}

// Diff returns the movement needed to go from other's quantity to this
// record's quantity: a copy of other with quantity -(m.quantity - other.quantity).
// Both records must reference the same product.
func (m *StockMovement) Diff(other *StockMovement) (*StockMovement, error) {
	if m.productID != other.productID {
		return nil, apperror.NewProductMismatch(m.productID.String(), other.productID.String())
	}

	d := other.Copy()
	d.SetQuantity(-(m.quantity - other.quantity))
	return d, nil
}

// --- Mutators ---

// SetQuantity updates the signed quantity and recomputes all totals.
func (m *StockMovement) SetQuantity(quantity int64) {
	m.quantity = quantity
	m.recompute()
	m.touch()
}

// SetPrice sets the actual unit price excl. VAT.
// The first monetary setter fixes the record currency.
func (m *StockMovement) SetPrice(price types.Amount) error {
	if err := m.adoptCurrency(price.Currency); err != nil {
		return err
	}
	m.price = price.Value
	m.recompute()
	m.touch()
	return nil
}

// SetRetailPrice sets the undiscounted reference unit price excl. VAT.
func (m *StockMovement) SetRetailPrice(retail types.Amount) error {
	if err := m.adoptCurrency(retail.Currency); err != nil {
		return err
	}
	m.retailPrice = retail.Value
	m.recompute()
	m.touch()
	return nil
}

// SetVATPercentage updates the VAT rate applied by the *InclVAT views.
func (m *StockMovement) SetVATPercentage(vat types.Decimal) error {
	if vat.IsNegative() {
		return apperror.NewValidation("VAT percentage cannot be negative").
			WithDetail("field", "vatPercentage")
	}
	m.vatPercentage = vat
	m.touch()
	return nil
}

// SetComplaint flags the movement as caused by a customer complaint.
func (m *StockMovement) SetComplaint(complaint bool) {
	m.complaint = complaint
	m.touch()
}

// SetReference updates the free-form description.
func (m *StockMovement) SetReference(reference string) {
	m.reference = reference
	m.touch()
}

// SetType updates the movement type.
func (m *StockMovement) SetType(typ Type) {
	m.typ = typ
	m.touch()
}

// MarkOrderLineRemoved records that the referenced order line was deleted
// elsewhere, so validation no longer requires a live reference.
func (m *StockMovement) MarkOrderLineRemoved() {
	m.orderLineRemoved = true
	m.touch()
}

// adoptCurrency fixes the record currency on first monetary assignment
// and rejects any later assignment in a different currency.
func (m *StockMovement) adoptCurrency(currency types.Currency) error {
	if !currency.IsValid() {
		return apperror.NewValidation("currency must be a 3-letter ISO code").
			WithDetail("value", string(currency))
	}
	if m.currency == "" {
		m.currency = currency
		return nil
	}
	if m.currency != currency {
		return apperror.NewCurrencyMismatch(string(m.currency), string(currency))
	}
	return nil
}

// recompute refreshes all four derived totals from quantity/price/retailPrice.
// Idempotent and order-independent.
func (m *StockMovement) recompute() {
	abs := m.quantity
	if abs < 0 {
		abs = -abs
	}
	m.totalPrice = m.price * types.MinorUnits(abs)
	m.totalRetailPrice = m.retailPrice * types.MinorUnits(abs)
	m.discount = m.retailPrice - m.price
	m.totalDiscount = m.totalRetailPrice - m.totalPrice
}

func (m *StockMovement) touch() {
	m.updatedAt = time.Now().UTC()
}

// --- Accessors ---

func (m *StockMovement) GetID() id.ID { return m.id }
func (m *StockMovement) CreatedAt() time.Time { return m.createdAt }
func (m *StockMovement) UpdatedAt() time.Time { return m.updatedAt }
func (m *StockMovement) Quantity() int64 { return m.quantity }
func (m *StockMovement) Complaint() bool { return m.complaint }
func (m *StockMovement) Reference() string { return m.reference }
func (m *StockMovement) Currency() types.Currency { return m.currency }
func (m *StockMovement) VATPercentage() types.Decimal { return m.vatPercentage }
func (m *StockMovement) Type() Type { return m.typ }
func (m *StockMovement) ProductID() id.ID { return m.productID }
func (m *StockMovement) OrderLineRemoved() bool { return m.orderLineRemoved }

// OrderLineID returns the linked order line ID, or nil when unlinked.
func (m *StockMovement) OrderLineID() *id.ID {
	if m.orderLineID == nil {
		return nil
	}
	lineID := *m.orderLineID
	return &lineID
}

// Monetary getters fail with a currency-unset error until the first
// monetary setter has established the record currency.

func (m *StockMovement) Price() (types.Amount, error) {
	return m.amount("price", m.price)
}

func (m *StockMovement) RetailPrice() (types.Amount, error) {
	return m.amount("retailPrice", m.retailPrice)
}

func (m *StockMovement) TotalPrice() (types.Amount, error) {
	return m.amount("totalPrice", m.totalPrice)
}

func (m *StockMovement) TotalRetailPrice() (types.Amount, error) {
	return m.amount("totalRetailPrice", m.totalRetailPrice)
}

func (m *StockMovement) Discount() (types.Amount, error) {
	return m.amount("discount", m.discount)
}

func (m *StockMovement) TotalDiscount() (types.Amount, error) {
	return m.amount("totalDiscount", m.totalDiscount)
}

// VAT-inclusive views: value * (1 + vat/100), exact decimal arithmetic.

func (m *StockMovement) PriceInclVAT() (types.Amount, error) {
	return m.amountInclVAT("price", m.price)
}

func (m *StockMovement) RetailPriceInclVAT() (types.Amount, error) {
	return m.amountInclVAT("retailPrice", m.retailPrice)
}

func (m *StockMovement) TotalPriceInclVAT() (types.Amount, error) {
	return m.amountInclVAT("totalPrice", m.totalPrice)
}

func (m *StockMovement) TotalRetailPriceInclVAT() (types.Amount, error) {
	return m.amountInclVAT("totalRetailPrice", m.totalRetailPrice)
}

func (m *StockMovement) DiscountInclVAT() (types.Amount, error) {
	return m.amountInclVAT("discount", m.discount)
}

func (m *StockMovement) TotalDiscountInclVAT() (types.Amount, error) {
	return m.amountInclVAT("totalDiscount", m.totalDiscount)
}

func (m *StockMovement) amount(field string, value types.MinorUnits) (types.Amount, error) {
	if m.currency == "" {
		return types.Amount{}, apperror.NewCurrencyUnset(field)
	}
	return types.Amount{Value: value, Currency: m.currency}, nil
}

func (m *StockMovement) amountInclVAT(field string, value types.MinorUnits) (types.Amount, error) {
	a, err := m.amount(field, value)
	if err != nil {
		return a, err
	}
	a.Value = types.WithVAT(a.Value, m.vatPercentage)
	return a, nil
}

// --- Validation ---

// Validate checks every record invariant and reports all violations at once.
// Run by the service immediately before a record is durably written.
func (m *StockMovement) Validate(ctx context.Context) error {
	var violations []apperror.Violation

	add := func(rule, message string) {
		violations = append(violations, apperror.Violation{
			Rule:    rule,
			Message: message,
			Context: m.violationContext(),
		})
	}

	if m.quantity == 0 {
		add("quantity_nonzero", "quantity must not be zero")
	}

	if !m.typ.IsValid() {
		add("type_known", "unknown movement type")
	}

	switch m.typ {
	case TypeSale:
		if m.quantity >= 0 {
			add("sale_quantity_negative", "a sale must have a negative quantity")
		}
		if m.orderLineID == nil && !m.orderLineRemoved {
			add("sale_order_line", "a sale must reference an order line unless the line was removed")
		}
	case TypeReturn:
		if m.quantity <= 0 {
			add("return_quantity_positive", "a return must have a positive quantity")
		}
	case TypeDelivery:
		if m.quantity <= 0 {
			add("delivery_quantity_positive", "a delivery must have a positive quantity")
		}
	}

	if m.complaint && m.quantity >= 0 {
		add("complaint_quantity_negative", "a complaint movement must have a negative quantity")
	}

	if m.price > 0 && m.retailPrice <= 0 {
		add("price_requires_retail", "a non-zero price requires a positive retail price")
	}

	if m.retailPrice == 0 && m.discount != 0 {
		add("no_discount_without_retail", "discount must be zero when retail price is zero")
	}

	if m.price < 0 {
		add("price_nonnegative", "price cannot be negative")
	}

	if m.retailPrice < 0 {
		add("retail_price_nonnegative", "retail price cannot be negative")
	}

	if len(m.reference) > MaxReferenceLength {
		add("reference_length", "reference exceeds 191 characters")
	}

	if m.vatPercentage.IsNegative() {
		add("vat_nonnegative", "VAT percentage cannot be negative")
	}

	if id.IsNil(m.productID) {
		add("product_required", "movement must reference a product")
	} else if m.productIsMaster {
		add("product_not_variant_master", "movement cannot reference a variant master product")
	}

	if len(violations) == 0 {
		return nil
	}
	return apperror.NewInvalid(violations)
}

// violationContext carries the identifiers needed to locate the record.
func (m *StockMovement) violationContext() map[string]any {
	c := map[string]any{
		"movementId": m.id.String(),
		"productId":  m.productID.String(),
	}
	if m.orderLineID != nil {
		c["orderLineId"] = m.orderLineID.String()
	}
	return c
}
