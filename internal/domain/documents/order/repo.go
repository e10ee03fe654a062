package order

import (
	"context"
	"time"

	"stockledger/internal/core/id"
)

// Repository defines the interface for Order persistence.
// Orders are written whole (header plus lines); lines are only ever
// removed individually, never edited in place.
type Repository interface {
	// Create inserts the order header and all lines
	Create(ctx context.Context, o *Order) error

	// GetByID retrieves an order with its lines in line order
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// GetByExternalID retrieves an order by shop-side number
	GetByExternalID(ctx context.Context, externalID string) (*Order, error)

	// List retrieves orders with filtering and pagination
	List(ctx context.Context, filter ListFilter) ([]*Order, error)

	// DeleteLine removes a single line from an order
	DeleteLine(ctx context.Context, orderID, lineID id.ID) error
}

// ListFilter for filtering orders.
type ListFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
