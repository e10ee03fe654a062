package movement

import (
	"context"
	"time"

	"stockledger/internal/core/id"
)

// Repository defines persistence operations for stock movements.
// Movements are append-only: they are never updated in place, only
// created, flagged (order line removed) or complemented by reversals.
type Repository interface {
	// Create inserts a new movement record
	Create(ctx context.Context, m *StockMovement) error

	// GetByID retrieves a movement by ID
	GetByID(ctx context.Context, movementID id.ID) (*StockMovement, error)

	// ListByProduct retrieves movement history for a product
	ListByProduct(ctx context.Context, productID id.ID, filter ListFilter) ([]*StockMovement, error)

	// ListByOrderLine retrieves all movements linked to an order line,
	// in insertion order
	ListByOrderLine(ctx context.Context, orderLineID id.ID) ([]*StockMovement, error)

	// MarkOrderLineRemoved flags every movement referencing the order line,
	// decoupling validation from the deleted entity
	MarkOrderLineRemoved(ctx context.Context, orderLineID id.ID) error
}

// ListFilter for filtering movement history.
type ListFilter struct {
	Type     *Type
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
