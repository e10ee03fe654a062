package product

import (
	"context"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain"
	"stockledger/internal/domain/movement"
)

// Service provides business logic for the Product catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if p.Code == "" {
		return apperror.NewValidation("product number is required").
			WithDetail("field", "code")
	}

	if exists, err := s.repo.ExistsByCode(ctx, p.Code); err == nil && exists {
		return apperror.NewConflict("product with this number already exists").
			WithDetail("code", p.Code)
	}

	if p.Barcode != nil && *p.Barcode != "" {
		if exists, _ := s.checkBarcodeExists(ctx, *p.Barcode, p.ID); exists {
			return apperror.NewConflict("product with this barcode already exists").
				WithDetail("barcode", p.Barcode)
		}
	}

	return nil
}

// prepareForUpdate handles uniqueness checks.
func (s *Service) prepareForUpdate(ctx context.Context, p *Product) error {
	if p.Barcode != nil && *p.Barcode != "" {
		if exists, _ := s.checkBarcodeExists(ctx, *p.Barcode, p.ID); exists {
			return apperror.NewConflict("product with this barcode already exists").
				WithDetail("barcode", p.Barcode)
		}
	}

	return nil
}

// --- Entity-specific methods ---

// FindByBarcode retrieves a product by barcode.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (*Product, error) {
	return s.repo.FindByBarcode(ctx, barcode)
}

// ListVariants retrieves the variants of a variant master.
func (s *Service) ListVariants(ctx context.Context, masterID string) ([]*Product, error) {
	return s.repo.ListVariants(ctx, masterID)
}

// ResolveProduct implements movement.ProductResolver.
// Soft-deleted products cannot receive new movements.
func (s *Service) ResolveProduct(ctx context.Context, productID id.ID) (movement.Product, error) {
	p, err := s.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.DeletionMark {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

// checkBarcodeExists checks if barcode is already used by another product.
func (s *Service) checkBarcodeExists(ctx context.Context, barcode string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return false, nil
	}
	return existing.ID != excludeID, nil
}
