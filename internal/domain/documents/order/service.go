package order

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/movement"
	"stockledger/pkg/logger"
)

// Service provides business operations for orders.
type Service struct {
	repo      Repository
	txManager tx.Manager
	products  movement.ProductResolver
	movements *movement.Service
}

// NewService creates a new order service.
func NewService(repo Repository, txManager tx.Manager, products movement.ProductResolver, movements *movement.Service) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		products:  products,
		movements: movements,
	}
}

// LineParams holds the caller-supplied fields for one order line.
type LineParams struct {
	ProductID     id.ID
	Quantity      int64
	UnitPrice     types.Amount // excl. VAT
	VATPercentage types.Decimal
}

// CreateParams holds the caller-supplied fields for a new order.
type CreateParams struct {
	ExternalID string
	PlacedAt   time.Time
	Comment    string
	Lines      []LineParams
}

// Create builds, validates and persists an order with its lines.
// The product number of each line is snapshotted from the catalog so
// the order stays readable after catalog changes.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Order, error) {
	existing, err := s.repo.GetByExternalID(ctx, params.ExternalID)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflict("order with this external ID already exists").
			WithDetail("externalId", params.ExternalID)
	}

	o := NewOrder(params.ExternalID, params.PlacedAt)
	o.Comment = params.Comment

	for _, lp := range params.Lines {
		p, err := s.products.ResolveProduct(ctx, lp.ProductID)
		if err != nil {
			return nil, err
		}
		o.AddLine(p, p.GetNumber(), lp.Quantity, lp.UnitPrice, lp.VATPercentage)
	}

	if err := o.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order created",
		"order_id", o.GetID(),
		"external_id", o.ExternalID,
		"lines", len(o.Lines),
	)

	return o, nil
}

// GetByID retrieves an order with its lines.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// GetByExternalID retrieves an order by shop-side number.
func (s *Service) GetByExternalID(ctx context.Context, externalID string) (*Order, error) {
	return s.repo.GetByExternalID(ctx, externalID)
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	return s.repo.List(ctx, filter)
}

// RecordSale creates the sale movement for every line of the order.
// All movements are written in one transaction: a failing line rolls
// back the whole recording.
func (s *Service) RecordSale(ctx context.Context, orderID id.ID) ([]*movement.StockMovement, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	created := make([]*movement.StockMovement, 0, len(o.Lines))
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, line := range o.Lines {
			if err := s.resolveLine(ctx, o, line); err != nil {
				return err
			}
			m, err := s.movements.CreateFromOrderLine(ctx, line)
			if err != nil {
				return err
			}
			created = append(created, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale recorded",
		"order_id", o.GetID(),
		"movements", len(created),
	)

	return created, nil
}

// RemoveLine deletes an order line and decouples its movements.
// The movements survive the deletion: they keep their order line
// reference but are flagged so validation no longer demands it.
func (s *Service) RemoveLine(ctx context.Context, orderID, lineID id.ID) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if _, err := s.findLine(o, lineID); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteLine(ctx, orderID, lineID); err != nil {
			return fmt.Errorf("delete order line: %w", err)
		}
		return s.movements.MarkOrderLineRemoved(ctx, lineID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "order line removed",
		"order_id", orderID,
		"line_id", lineID,
	)

	return nil
}

// EffectiveMovement folds all movements recorded against a line into
// one net movement. Returns nil when the line has no movements.
func (s *Service) EffectiveMovement(ctx context.Context, orderID, lineID id.ID) (*movement.StockMovement, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	line, err := s.findLine(o, lineID)
	if err != nil {
		return nil, err
	}

	recs, err := s.movements.ListByOrderLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if err := line.AddMovements(recs); err != nil {
		return nil, err
	}

	return line.EffectiveMovement(), nil
}

// resolveLine wires the product and order references a rehydrated line
// needs before movement construction.
func (s *Service) resolveLine(ctx context.Context, o *Order, line *Line) error {
	line.AttachOrder(o)
	if line.GetProduct() != nil {
		return nil
	}
	p, err := s.products.ResolveProduct(ctx, line.ProductID)
	if err != nil {
		return err
	}
	line.AttachProduct(p)
	return nil
}

func (s *Service) findLine(o *Order, lineID id.ID) (*Line, error) {
	for _, line := range o.Lines {
		if line.LineID == lineID {
			return line, nil
		}
	}
	return nil, apperror.NewNotFound("order line", lineID.String())
}
