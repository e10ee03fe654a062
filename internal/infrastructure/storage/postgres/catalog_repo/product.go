package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/id"
	"stockledger/internal/domain"
	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/infrastructure/storage/postgres"
)

var productColumns = postgres.ExtractDBColumns[product.Product]()

// ProductRepo implements product.Repository.
// Prices live in a separate table (product_prices) and are loaded with
// every product read.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"products",
			productColumns,
			func() *product.Product { return &product.Product{} },
		),
	}
}

var _ product.Repository = (*ProductRepo)(nil)

// Create inserts the product and its price list.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	if err := r.BaseCatalogRepo.Create(ctx, p); err != nil {
		return err
	}
	return r.savePrices(ctx, p)
}

// Update modifies the product and replaces its price list.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	if err := r.BaseCatalogRepo.Update(ctx, p); err != nil {
		return err
	}

	q := r.Builder().
		Delete("product_prices").
		Where(squirrel.Eq{"product_id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete prices: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete prices: %w", err)
	}

	return r.savePrices(ctx, p)
}

// GetByID retrieves a product with prices.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, err := r.BaseCatalogRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := r.loadPrices(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByCode retrieves a product by product number, with prices.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	p, err := r.BaseCatalogRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := r.loadPrices(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List retrieves products with filtering; prices are loaded per page.
func (r *ProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	result, err := r.BaseCatalogRepo.List(ctx, filter)
	if err != nil {
		return result, err
	}
	for _, p := range result.Items {
		if err := r.loadPrices(ctx, p); err != nil {
			return result, err
		}
	}
	return result, nil
}

// FindByBarcode retrieves a product by barcode.
func (r *ProductRepo) FindByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	q := r.Builder().
		Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"barcode": barcode}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	p, err := r.FindOne(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := r.loadPrices(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListVariants retrieves the variants of a variant master.
func (r *ProductRepo) ListVariants(ctx context.Context, masterID string) ([]*product.Product, error) {
	q := r.Builder().
		Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"variant_master_id": masterID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}

	for _, p := range items {
		if err := r.loadPrices(ctx, p); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *ProductRepo) savePrices(ctx context.Context, p *product.Product) error {
	if len(p.Prices) == 0 {
		return nil
	}

	q := r.Builder().
		Insert("product_prices").
		Columns("product_id", "currency", "value")
	for _, price := range p.Prices {
		q = q.Values(p.ID, price.Currency, price.Value)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert prices: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert prices: %w", err)
	}
	return nil
}

func (r *ProductRepo) loadPrices(ctx context.Context, p *product.Product) error {
	q := r.Builder().
		Select("currency", "value").
		From("product_prices").
		Where(squirrel.Eq{"product_id": p.ID}).
		OrderBy("currency")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	var prices []product.Price
	if err := pgxscan.Select(ctx, r.Querier(ctx), &prices, sql, args...); err != nil {
		return fmt.Errorf("load prices: %w", err)
	}
	p.Prices = prices
	return nil
}
