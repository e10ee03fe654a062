// Package product provides the Product catalog.
// A product carries VAT-inclusive retail prices per currency and may be
// a plain article, a variant, or a variant master grouping its variants.
package product

import (
	"context"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/movement"
)

// Kind defines the variant role of a product.
type Kind string

const (
	// KindSimple is a standalone article without variants
	KindSimple Kind = "simple"
	// KindVariant is one concrete variant of a master product
	KindVariant Kind = "variant"
	// KindVariantMaster groups variants and is never stocked itself
	KindVariantMaster Kind = "variant_master"
)

// Price is one VAT-inclusive retail price of a product.
type Price struct {
	Currency types.Currency   `db:"currency" json:"currency"`
	Value    types.MinorUnits `db:"value" json:"value"`
}

// Product represents a sellable article.
// Code doubles as the product number (SKU).
type Product struct {
	entity.Catalog

	// Kind defines the variant role
	Kind Kind `db:"kind" json:"kind"`

	// Barcode is the item barcode (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// VariantMasterID links a variant to its master product
	VariantMasterID *string `db:"variant_master_id" json:"variantMasterId,omitempty"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`

	// Table part: retail prices per currency, VAT inclusive
	Prices []Price `db:"-" json:"prices"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string, kind Kind) *Product {
	return &Product{
		Catalog: entity.NewCatalog(code, name),
		Kind:    kind,
		Prices:  make([]Price, 0),
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidKind(p.Kind) {
		return apperror.NewValidation("invalid product kind").
			WithDetail("field", "kind").
			WithDetail("value", string(p.Kind))
	}

	if p.Kind == KindVariant && (p.VariantMasterID == nil || *p.VariantMasterID == "") {
		return apperror.NewValidation("variant requires a variant master reference").
			WithDetail("field", "variantMasterId")
	}
	if p.Kind != KindVariant && p.VariantMasterID != nil {
		return apperror.NewValidation("only variants may reference a variant master").
			WithDetail("field", "variantMasterId")
	}

	seen := make(map[types.Currency]struct{}, len(p.Prices))
	for _, price := range p.Prices {
		if !price.Currency.IsValid() {
			return apperror.NewValidation("price currency must be a 3-letter ISO code").
				WithDetail("field", "prices").
				WithDetail("currency", string(price.Currency))
		}
		if price.Value < 0 {
			return apperror.NewValidation("price cannot be negative").
				WithDetail("field", "prices").
				WithDetail("currency", string(price.Currency))
		}
		if _, dup := seen[price.Currency]; dup {
			return apperror.NewValidation("duplicate price currency").
				WithDetail("field", "prices").
				WithDetail("currency", string(price.Currency))
		}
		seen[price.Currency] = struct{}{}
	}

	return nil
}

// SetPrice sets or replaces the retail price for a currency.
func (p *Product) SetPrice(currency types.Currency, value types.MinorUnits) {
	for i := range p.Prices {
		if p.Prices[i].Currency == currency {
			p.Prices[i].Value = value
			return
		}
	}
	p.Prices = append(p.Prices, Price{Currency: currency, Value: value})
}

// --- movement.Product implementation ---

// GetID returns the product ID.
func (p *Product) GetID() id.ID {
	return p.ID
}

// GetNumber returns the product number (SKU).
func (p *Product) GetNumber() string {
	return p.Code
}

// FindPriceByCurrency returns the VAT-inclusive retail price for the
// currency, if one is maintained.
func (p *Product) FindPriceByCurrency(currency types.Currency) (types.Amount, bool) {
	for _, price := range p.Prices {
		if price.Currency == currency {
			return types.Amount{Value: price.Value, Currency: price.Currency}, true
		}
	}
	return types.Amount{}, false
}

// IsVariantMaster reports whether the product only groups variants.
// Variant masters are never stocked directly.
func (p *Product) IsVariantMaster() bool {
	return p.Kind == KindVariantMaster
}

var _ movement.Product = (*Product)(nil)

func isValidKind(k Kind) bool {
	switch k {
	case KindSimple, KindVariant, KindVariantMaster:
		return true
	}
	return false
}
