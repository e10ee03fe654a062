package product

import (
	"context"

	"stockledger/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// FindByBarcode retrieves a product by barcode.
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)

	// ListVariants retrieves the variants of a variant master.
	ListVariants(ctx context.Context, masterID string) ([]*Product, error)
}
