// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/documents/order"
	"stockledger/internal/infrastructure/storage/postgres"
)

const (
	orderTable = "orders"
	lineTable  = "order_lines"
)

var orderColumns = postgres.ExtractDBColumns[order.Order]()

// lineRow is the persisted form of an order line.
// VAT is stored as text to keep the decimal exact.
type lineRow struct {
	OrderID       id.ID            `db:"order_id"`
	LineID        id.ID            `db:"line_id"`
	LineNo        int              `db:"line_no"`
	ProductID     id.ID            `db:"product_id"`
	ProductNumber string           `db:"product_number"`
	Quantity      int64            `db:"quantity"`
	UnitPrice     types.MinorUnits `db:"unit_price"`
	Currency      types.Currency   `db:"currency"`
	VATPercentage string           `db:"vat_percentage"`
}

var lineColumns = postgres.ExtractDBColumns[lineRow]()

// OrderRepo implements order.Repository.
type OrderRepo struct {
	txManager *postgres.TxManager
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{txManager: txManager}
}

var _ order.Repository = (*OrderRepo)(nil)

func (r *OrderRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the order header and all lines.
func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	data := postgres.StructToMap(o)

	filteredData := make(map[string]any, len(orderColumns))
	for _, col := range orderColumns {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.builder().
		Insert(orderTable).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", orderTable, err)
	}

	if len(o.Lines) == 0 {
		return nil
	}

	lq := r.builder().
		Insert(lineTable).
		Columns(lineColumns...)
	for _, line := range o.Lines {
		lq = lq.Values(
			o.ID, line.LineID, line.LineNo,
			line.ProductID, line.ProductNumber,
			line.Quantity, line.UnitPrice, line.Currency,
			line.VATPercentage.String(),
		)
	}

	sql, args, err = lq.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", lineTable, err)
	}

	return nil
}

// GetByID retrieves an order with its lines in line order.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*order.Order, error) {
	return r.getOne(ctx, squirrel.Eq{"id": orderID}, orderID.String())
}

// GetByExternalID retrieves an order by shop-side number.
func (r *OrderRepo) GetByExternalID(ctx context.Context, externalID string) (*order.Order, error) {
	return r.getOne(ctx, squirrel.Eq{"external_id": externalID}, externalID)
}

// List retrieves orders with filtering and pagination.
// Lines are loaded per order; listings are small and admin-facing.
func (r *OrderRepo) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	q := r.builder().
		Select(orderColumns...).
		From(orderTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("date DESC", "id DESC")

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.ToDate})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var orders []*order.Order
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	for _, o := range orders {
		if err := r.loadLines(ctx, o); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// DeleteLine removes a single line from an order.
func (r *OrderRepo) DeleteLine(ctx context.Context, orderID, lineID id.ID) error {
	q := r.builder().
		Delete(lineTable).
		Where(squirrel.Eq{"order_id": orderID}).
		Where(squirrel.Eq{"line_id": lineID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete line: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("order line", lineID.String())
	}

	return nil
}

func (r *OrderRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*order.Order, error) {
	q := r.builder().
		Select(orderColumns...).
		From(orderTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var o order.Order
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", key)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := r.loadLines(ctx, &o); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *OrderRepo) loadLines(ctx context.Context, o *order.Order) error {
	q := r.builder().
		Select(lineColumns...).
		From(lineTable).
		Where(squirrel.Eq{"order_id": o.ID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	var rows []lineRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return fmt.Errorf("load lines: %w", err)
	}

	o.Lines = make([]*order.Line, 0, len(rows))
	for _, row := range rows {
		vat, err := types.NewDecimalFromString(row.VATPercentage)
		if err != nil {
			return fmt.Errorf("parse vat of line %s: %w", row.LineID, err)
		}

		line := &order.Line{
			LineID:        row.LineID,
			LineNo:        row.LineNo,
			ProductID:     row.ProductID,
			ProductNumber: row.ProductNumber,
			Quantity:      row.Quantity,
			UnitPrice:     row.UnitPrice,
			Currency:      row.Currency,
			VATPercentage: vat,
		}
		line.AttachOrder(o)
		o.Lines = append(o.Lines, line)
	}

	return nil
}
