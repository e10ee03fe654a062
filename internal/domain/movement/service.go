// Package movement provides the stock movement service.
package movement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/core/types"
	"stockledger/pkg/logger"
)

// ProductResolver loads products for movement construction.
// Implemented by the product catalog service.
type ProductResolver interface {
	ResolveProduct(ctx context.Context, productID id.ID) (Product, error)
}

// AuditRecord is one audit trail entry for a movement.
type AuditRecord struct {
	Action    string
	UserID    string
	Changes   json.RawMessage
	CreatedAt time.Time
}

// Auditor records and reads an audit trail of persisted movement changes.
// Implemented by the postgres audit store; may be nil to disable auditing.
type Auditor interface {
	RecordChange(ctx context.Context, entityType string, entityID id.ID, action string, changes any) error
	EntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]AuditRecord, error)
}

const auditEntityType = "StockMovement"

// Service provides business operations for stock movements.
type Service struct {
	repo      Repository
	txManager tx.ReadOnlyManager
	products  ProductResolver
	auditor   Auditor
}

// NewService creates a new movement service.
func NewService(repo Repository, txManager tx.ReadOnlyManager, products ProductResolver, auditor Auditor) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		products:  products,
		auditor:   auditor,
	}
}

// CreateParams holds the caller-supplied fields for a new movement.
type CreateParams struct {
	Quantity      int64
	UnitPrice     types.Amount
	VATPercentage types.Decimal
	Type          Type
	ProductID     id.ID
	Reference     string
	Complaint     bool
}

// Create builds, validates and persists a movement record.
func (s *Service) Create(ctx context.Context, params CreateParams) (*StockMovement, error) {
	product, err := s.products.ResolveProduct(ctx, params.ProductID)
	if err != nil {
		return nil, err
	}

	m, err := New(params.Quantity, params.UnitPrice, params.VATPercentage, params.Type, product, params.Reference)
	if err != nil {
		return nil, err
	}
	if params.Complaint {
		m.SetComplaint(true)
	}

	if err := s.save(ctx, m, "create"); err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock movement created",
		"movement_id", m.GetID(),
		"product_id", m.ProductID(),
		"type", m.Type(),
		"quantity", m.Quantity(),
	)

	return m, nil
}

// CreateFromOrderLine builds and persists the sale movement for an order line.
func (s *Service) CreateFromOrderLine(ctx context.Context, line OrderLine) (*StockMovement, error) {
	m, err := FromOrderLine(line)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, m, "create"); err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock movement created from order line",
		"movement_id", m.GetID(),
		"order_line_id", line.GetID(),
		"quantity", m.Quantity(),
	)

	return m, nil
}

// Reverse persists the inverse of an existing movement as a regulation,
// undoing its stock effect. The complaint flag is cleared because the
// reversal is a correction, not a complaint.
func (s *Service) Reverse(ctx context.Context, movementID id.ID) (*StockMovement, error) {
	orig, err := s.repo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}

	inv := orig.Inverse()
	inv.SetType(TypeRegulation)
	inv.SetComplaint(false)
	inv.SetReference(truncateReference("Reversal of " + orig.Reference()))

	if err := s.save(ctx, inv, "reverse"); err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock movement reversed",
		"movement_id", orig.GetID(),
		"reversal_id", inv.GetID(),
	)

	return inv, nil
}

// GetByID retrieves a movement by ID.
func (s *Service) GetByID(ctx context.Context, movementID id.ID) (*StockMovement, error) {
	return s.repo.GetByID(ctx, movementID)
}

// ListByProduct retrieves movement history for a product.
func (s *Service) ListByProduct(ctx context.Context, productID id.ID, filter ListFilter) ([]*StockMovement, error) {
	var ms []*StockMovement
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		ms, err = s.repo.ListByProduct(ctx, productID, filter)
		return err
	})
	return ms, err
}

// ListByOrderLine retrieves all movements linked to an order line.
func (s *Service) ListByOrderLine(ctx context.Context, orderLineID id.ID) ([]*StockMovement, error) {
	var ms []*StockMovement
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		ms, err = s.repo.ListByOrderLine(ctx, orderLineID)
		return err
	})
	return ms, err
}

// History retrieves the audit trail of a movement, newest first.
// Returns an empty trail when auditing is disabled.
func (s *Service) History(ctx context.Context, movementID id.ID, limit int) ([]AuditRecord, error) {
	var records []AuditRecord
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, movementID); err != nil {
			return err
		}
		if s.auditor == nil {
			return nil
		}
		var err error
		records, err = s.auditor.EntityHistory(ctx, auditEntityType, movementID, limit)
		return err
	})
	return records, err
}

// MarkOrderLineRemoved flags all movements of a deleted order line.
func (s *Service) MarkOrderLineRemoved(ctx context.Context, orderLineID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.MarkOrderLineRemoved(ctx, orderLineID)
	})
	if err != nil {
		return fmt.Errorf("mark order line removed: %w", err)
	}

	logger.Info(ctx, "movements decoupled from removed order line",
		"order_line_id", orderLineID,
	)

	return nil
}

// save validates the record and writes it durably, with an audit entry.
// Validation runs here, immediately before the write, so derived records
// (inverse, diff) are checked against the same invariants as fresh ones.
func (s *Service) save(ctx context.Context, m *StockMovement, action string) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, m); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.auditor != nil {
		if err := s.auditor.RecordChange(ctx, auditEntityType, m.GetID(), action, m.Snapshot()); err != nil {
			// The movement is already durable; a failed audit entry is not fatal.
			logger.Warn(ctx, "audit entry failed", "movement_id", m.GetID(), "error", err)
		}
	}

	return nil
}

func truncateReference(ref string) string {
	if len(ref) > MaxReferenceLength {
		return ref[:MaxReferenceLength]
	}
	return ref
}
