package dto

import (
	"stockledger/internal/core/types"
	"stockledger/internal/domain/catalogs/product"
)

// ProductPriceDTO is one VAT-inclusive retail price.
type ProductPriceDTO struct {
	Currency string `json:"currency" binding:"required,len=3"`
	Value    int64  `json:"value" binding:"min=0"`
}

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Code            string            `json:"code" binding:"required"`
	Name            string            `json:"name" binding:"required"`
	Kind            string            `json:"kind" binding:"required"`
	Barcode         *string           `json:"barcode"`
	VariantMasterID *string           `json:"variantMasterId"`
	Description     *string           `json:"description"`
	Prices          []ProductPriceDTO `json:"prices"`
}

// UpdateProductRequest for updating products.
type UpdateProductRequest struct {
	Name        *string           `json:"name"`
	Barcode     *string           `json:"barcode"`
	Description *string           `json:"description"`
	Prices      []ProductPriceDTO `json:"prices"`
	Version     int               `json:"version" binding:"required,min=1"`
}

// ProductResponse contains product fields.
type ProductResponse struct {
	BaseResponse
	Code            string            `json:"code"`
	Name            string            `json:"name"`
	Kind            string            `json:"kind"`
	Barcode         *string           `json:"barcode,omitempty"`
	VariantMasterID *string           `json:"variantMasterId,omitempty"`
	Description     *string           `json:"description,omitempty"`
	Prices          []ProductPriceDTO `json:"prices"`
}

// FromProduct creates ProductResponse from a product.
func FromProduct(p *product.Product) ProductResponse {
	prices := make([]ProductPriceDTO, 0, len(p.Prices))
	for _, price := range p.Prices {
		prices = append(prices, ProductPriceDTO{
			Currency: string(price.Currency),
			Value:    int64(price.Value),
		})
	}

	return ProductResponse{
		BaseResponse:    FromBaseCatalog(p.BaseCatalog),
		Code:            p.Code,
		Name:            p.Name,
		Kind:            string(p.Kind),
		Barcode:         p.Barcode,
		VariantMasterID: p.VariantMasterID,
		Description:     p.Description,
		Prices:          prices,
	}
}

// FromProducts converts a slice of products.
func FromProducts(ps []*product.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromProduct(p))
	}
	return out
}

// ToPrices converts price DTOs to the domain form.
func (r CreateProductRequest) ToPrices() []product.Price {
	return toPrices(r.Prices)
}

// ToPrices converts price DTOs to the domain form.
func (r UpdateProductRequest) ToPrices() []product.Price {
	return toPrices(r.Prices)
}

func toPrices(dtos []ProductPriceDTO) []product.Price {
	prices := make([]product.Price, 0, len(dtos))
	for _, p := range dtos {
		prices = append(prices, product.Price{
			Currency: types.Currency(p.Currency),
			Value:    types.MinorUnits(p.Value),
		})
	}
	return prices
}
