// Package movement_repo provides the PostgreSQL stock movement repository.
package movement_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/movement"
	"stockledger/internal/infrastructure/storage/postgres"
)

const tableName = "stock_movements"

var movementColumns = postgres.ExtractDBColumns[movement.Snapshot]()

// MovementRepo implements movement.Repository.
// Records are stored in their snapshot form; derived totals are
// recomputed on read, never persisted.
type MovementRepo struct {
	txManager *postgres.TxManager
}

// NewMovementRepo creates a new stock movement repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{txManager: txManager}
}

var _ movement.Repository = (*MovementRepo)(nil)

func (r *MovementRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new movement record.
func (r *MovementRepo) Create(ctx context.Context, m *movement.StockMovement) error {
	data := postgres.StructToMap(m.Snapshot())

	q := r.builder().
		Insert(tableName).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", tableName, err)
	}

	return nil
}

// GetByID retrieves a movement by ID.
func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (*movement.StockMovement, error) {
	q := r.builder().
		Select(movementColumns...).
		From(tableName).
		Where(squirrel.Eq{"id": movementID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var snap movement.Snapshot
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &snap, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock movement", movementID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	return movement.Restore(snap)
}

// ListByProduct retrieves movement history for a product, newest first.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID id.ID, filter movement.ListFilter) ([]*movement.StockMovement, error) {
	q := r.builder().
		Select(movementColumns...).
		From(tableName).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC", "id DESC")

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	return r.selectMovements(ctx, q)
}

// ListByOrderLine retrieves all movements linked to an order line, in
// insertion order. IDs are time-ordered (UUIDv7), so the id tiebreak
// keeps records inserted in the same instant stable.
func (r *MovementRepo) ListByOrderLine(ctx context.Context, orderLineID id.ID) ([]*movement.StockMovement, error) {
	q := r.builder().
		Select(movementColumns...).
		From(tableName).
		Where(squirrel.Eq{"order_line_id": orderLineID}).
		OrderBy("created_at ASC", "id ASC")

	return r.selectMovements(ctx, q)
}

// MarkOrderLineRemoved flags every movement referencing the order line.
func (r *MovementRepo) MarkOrderLineRemoved(ctx context.Context, orderLineID id.ID) error {
	q := r.builder().
		Update(tableName).
		Set("order_line_removed", true).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"order_line_id": orderLineID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("mark order line removed: %w", err)
	}

	return nil
}

func (r *MovementRepo) selectMovements(ctx context.Context, q squirrel.SelectBuilder) ([]*movement.StockMovement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var snaps []movement.Snapshot
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &snaps, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	movements := make([]*movement.StockMovement, 0, len(snaps))
	for _, snap := range snaps {
		m, err := movement.Restore(snap)
		if err != nil {
			return nil, fmt.Errorf("restore movement %s: %w", snap.ID, err)
		}
		movements = append(movements, m)
	}

	return movements, nil
}
